// Package gwputpart implements the multipart-part write action (C4): the
// stage graph that drives one `PUT /{bucket}/{object}?uploadId=&partNumber=`
// request from bucket lookup through object-container write to the final
// S3 response, exactly as described in gwaction's Pipeline/Stage contract.
package gwputpart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ajay-paratmandali/s3gw/internal/gwaction"
	"github.com/ajay-paratmandali/s3gw/internal/gwerrors"
	"github.com/ajay-paratmandali/s3gw/internal/gwmetadata"
	"github.com/ajay-paratmandali/s3gw/internal/gwmetrics"
	"github.com/ajay-paratmandali/s3gw/internal/gwrequest"
	"github.com/ajay-paratmandali/s3gw/internal/gwstore"
	"github.com/ajay-paratmandali/s3gw/internal/logger"
	"github.com/ajay-paratmandali/s3gw/internal/telemetry"
)

// ActionName is the value recorded against gwmetrics/telemetry for this
// action, and the Span name StartActionSpan derives from it.
const ActionName = "put_part"

// StreamChunkSize is the payload chunk size the streaming loop's threshold
// listener waits for, nominally the backing store's preferred write unit.
const StreamChunkSize = 256 * 1024

// Action drives one part-write request through the stage graph described
// in the package doc. It is constructed per request and discarded after
// Done(); gwaction.Registry, not Action, owns its lifetime.
type Action struct {
	req       *gwrequest.Context
	index     gwstore.Index
	container gwstore.Container

	storeMetrics  gwmetrics.StoreMetrics
	actionMetrics gwmetrics.ActionMetrics

	account string

	pipeline   *gwaction.Pipeline
	ctx        context.Context
	partNumber int
	uploadID   string

	bucket    *gwmetadata.Bucket
	multipart *gwmetadata.MultipartUpload
	partOne   *gwmetadata.Part
	part      *gwmetadata.Part
	writer    gwstore.Writer

	offset        uint64
	totalToStream int64

	actionStart time.Time
}

// New constructs the action for req, parsing uploadId/partNumber from the
// query string, and wires up its stage graph. It does not start the
// pipeline; call Start for that.
func New(ctx context.Context, req *gwrequest.Context, index gwstore.Index, container gwstore.Container,
	storeMetrics gwmetrics.StoreMetrics, actionMetrics gwmetrics.ActionMetrics, account string) (*Action, error) {

	partNumber, err := parsePartNumber(req.Query("partNumber"))
	if err != nil {
		return nil, err
	}
	uploadID := req.Query("uploadId")
	if uploadID == "" {
		return nil, fmt.Errorf("gwputpart: missing uploadId query parameter")
	}

	a := &Action{
		req:           req,
		index:         index,
		container:     container,
		storeMetrics:  storeMetrics,
		actionMetrics: actionMetrics,
		account:       account,
		ctx:           ctx,
		partNumber:    partNumber,
		uploadID:      uploadID,
	}
	a.pipeline = gwaction.NewPipeline(req.RequestID())
	a.setupSteps()
	return a, nil
}

// parsePartNumber validates the partNumber query parameter is a base-10
// integer >= 1.
func parsePartNumber(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("gwputpart: invalid partNumber %q", raw)
	}
	return n, nil
}

func (a *Action) setupSteps() {
	a.pipeline.AddTask(a.stage("fetch_bucket_info", a.fetchBucketInfo))
	a.pipeline.AddTask(a.stage("fetch_multipart_metadata", a.fetchMultipartMetadata))
	if a.partNumber != 1 {
		a.pipeline.AddTask(a.stage("fetch_firstpart_info", a.fetchFirstPartInfo))
	}
	a.pipeline.AddTask(a.stage("create_object", a.createObject))
	a.pipeline.AddTask(a.stage("initiate_data_streaming", a.initiateDataStreaming))
	a.pipeline.AddTask(a.stage("save_metadata", a.saveMetadata))
	a.pipeline.AddTask(a.stage("send_response_to_s3_client", a.sendResponseToS3Client))
}

// stage wraps fn with per-stage tracing and duration metrics, and keeps
// a.ctx pointing at the stage's span so nested store/metadata spans parent
// correctly.
func (a *Action) stage(name string, fn func()) gwaction.Stage {
	return func() {
		start := time.Now()
		spanCtx, span := telemetry.StartStageSpan(a.ctx, name,
			telemetry.RequestID(a.req.RequestID()), telemetry.Bucket(a.req.Bucket()),
			telemetry.Object(a.req.Object()), telemetry.UploadID(a.uploadID),
			telemetry.PartNumber(a.partNumber))
		prevCtx := a.ctx
		a.ctx = spanCtx
		fn()
		a.ctx = prevCtx
		span.End()
		gwmetrics.ObserveStage(a.actionMetrics, ActionName, name, time.Since(start), nil)
	}
}

// Start begins the stage graph, recording an action-level span that ends
// when Start returns. For a streamed body, the stages after
// initiate_data_streaming run later on the body's producer goroutine,
// outside this span.
func (a *Action) Start() {
	a.actionStart = time.Now()
	ctx, span := telemetry.StartActionSpan(a.ctx, ActionName,
		telemetry.RequestID(a.req.RequestID()), telemetry.Bucket(a.req.Bucket()),
		telemetry.Object(a.req.Object()), telemetry.UploadID(a.uploadID),
		telemetry.PartNumber(a.partNumber))
	a.ctx = ctx
	defer span.End()
	a.pipeline.Start(ctx)
}

// fetch_bucket_info: pause ingestion unless the body is already frozen,
// then load the per-object record the bucket's index holds for this key.
func (a *Action) fetchBucketInfo() {
	if !a.req.BufferedInput().Frozen() {
		a.req.Pause()
	}

	a.bucket = gwmetadata.NewBucket(a.account, a.req.Bucket(), a.req.Object())
	if _, err := a.bucket.Load(a.ctx, a.index); err != nil {
		logger.ErrorCtx(a.ctx, "fetch_bucket_info failed", logger.Bucket(a.req.Bucket()), logger.Err(err))
	}
	a.pipeline.Next()
}

// fetch_multipart_metadata: load the multipart descriptor; a missing
// descriptor, or a backend failure loading it, short-circuits straight to
// the response stage rather than proceeding with a.multipart.OID unset.
func (a *Action) fetchMultipartMetadata() {
	a.multipart = gwmetadata.NewMultipartUpload(a.account, a.req.Bucket(), a.req.Object(), a.uploadID)
	if _, err := a.multipart.Load(a.ctx, a.index); err != nil {
		logger.ErrorCtx(a.ctx, "fetch_multipart_metadata failed", logger.UploadID(a.uploadID), logger.Err(err))
	}
	switch a.multipart.State() {
	case gwmetadata.StateMissing, gwmetadata.StateFailed:
		a.req.Resume()
		a.sendResponseToS3Client()
		return
	}
	a.pipeline.Next()
}

// fetch_firstpart_info (conditional, partNumber != 1): load part 1's
// record, needed for its content length to compute this part's offset. A
// missing part-1 record short-circuits to a retryable response, since part
// k may simply have arrived before part 1; a backend failure loading it
// short-circuits to an internal error instead, since the offset can't be
// trusted either way.
func (a *Action) fetchFirstPartInfo() {
	if !a.req.BufferedInput().Frozen() {
		a.req.Pause()
	}

	a.partOne = gwmetadata.NewPart(a.account, a.req.Bucket(), a.req.Object(), a.uploadID, 1)
	if _, err := a.partOne.Load(a.ctx, a.index); err != nil {
		logger.ErrorCtx(a.ctx, "fetch_firstpart_info failed", logger.UploadID(a.uploadID), logger.Err(err))
	}
	switch a.partOne.State() {
	case gwmetadata.StateMissing, gwmetadata.StateFailed:
		a.req.Resume()
		a.sendResponseToS3Client()
		return
	}
	a.pipeline.Next()
}

// create_object: for part 1, allocate the backing container at the
// upload's oid (an already-existing container is a benign overwrite race,
// not a failure); for part k>1, just bind a writer to the computed offset.
func (a *Action) createObject() {
	if a.bucket.State() != gwmetadata.StatePresent {
		a.req.Resume()
		a.sendResponseToS3Client()
		return
	}

	var offset uint64
	if a.partNumber > 1 {
		offset = uint64(a.partNumber-1) * uint64(a.partOne.ContentLength)
	}
	a.offset = offset
	a.writer = a.container.NewWriter(a.multipart.OID, offset)

	if a.partNumber == 1 {
		state, err := a.container.CreateObject(a.ctx, a.multipart.OID)
		if err != nil && state != gwstore.StateExists {
			logger.ErrorCtx(a.ctx, "create_object failed", logger.UploadID(a.uploadID), logger.Err(err))
			a.req.Resume()
			a.sendResponseToS3Client()
			return
		}
	}
	a.pipeline.Next()
}

// initiate_data_streaming: resume ingestion and branch on body state. A
// zero-length part skips straight to save_metadata; a fully-buffered body
// drains in one write; otherwise the threshold listener drives the
// one-write-in-flight streaming loop.
func (a *Action) initiateDataStreaming() {
	a.totalToStream = a.req.ContentLength()
	a.req.Resume()

	if a.totalToStream == 0 {
		// Route through the cursor rather than calling save_metadata
		// directly: save_metadata's own Next() call at its end must land on
		// send_response, not re-enter save_metadata's own pipeline slot.
		a.pipeline.Next()
		return
	}
	if a.req.HasAllBodyContent() {
		a.writeObject(a.req.BufferedInput())
		return
	}
	a.req.ListenForIncomingData(a.consumeIncomingContent, StreamChunkSize)
}

func (a *Action) consumeIncomingContent() {
	a.writeObject(a.req.BufferedInput())
}

// writeObject implements the one-write-in-flight streaming loop: drain
// whatever is buffered and write it; pause around non-terminal writes so
// the producer never outruns the store by more than one chunk.
func (a *Action) writeObject(buf *gwrequest.BufferedInput) {
	frozen := buf.Frozen()
	data := buf.DrainAll()

	if !frozen {
		a.req.Pause()
	}

	_, span := telemetry.StartStageSpan(a.ctx, "write_object",
		telemetry.Offset(a.writer.Offset()), telemetry.Count(uint64(len(data))))
	state, err := a.writer.WriteObject(a.ctx, data)
	span.End()

	if err != nil || state == gwstore.StateFailed {
		logger.ErrorCtx(a.ctx, "write_object failed", logger.Offset(a.writer.Offset()), logger.Err(err))
		a.writeObjectFailed()
		return
	}

	if frozen {
		a.writeObjectSuccessful()
		return
	}
	a.req.Resume()
}

// writeObjectSuccessful fires once the final (frozen) write has landed; if
// more bytes queued up in the meantime it loops back into writeObject
// without re-pausing, otherwise it advances to save_metadata.
func (a *Action) writeObjectSuccessful() {
	if a.req.BufferedInput().Length() > 0 {
		a.writeObject(a.req.BufferedInput())
		return
	}
	a.pipeline.Next()
}

func (a *Action) writeObjectFailed() {
	a.sendResponseToS3Client()
}

// save_metadata: persist the part record with its content length, MD5 and
// every x-amz-meta-* header, regardless of whether the save itself
// succeeds — send_response_to_s3_client inspects the resulting state.
func (a *Action) saveMetadata() {
	a.part = gwmetadata.NewPart(a.account, a.req.Bucket(), a.req.Object(), a.uploadID, a.partNumber)
	if err := a.part.SetContentLength(a.totalToStream); err != nil {
		logger.ErrorCtx(a.ctx, "save_metadata content length rejected", logger.Err(err))
	}
	a.part.SetContentMD5(a.writer.ContentMD5())
	a.part.AddUserAttributesFromHeaders(a.req.Headers())

	if _, err := a.part.Save(a.ctx, a.index); err != nil {
		logger.ErrorCtx(a.ctx, "save_metadata failed", logger.UploadID(a.uploadID), logger.Err(err))
	}
	a.pipeline.Next()
}

// send_response_to_s3_client maps every short-circuit path and the
// terminal part.State() to an S3 error code and status, or to the success
// response when the part record actually saved.
func (a *Action) sendResponseToS3Client() {
	resource := "/" + a.req.Bucket() + "/" + a.req.Object()

	var kind gwerrors.Kind
	switch {
	case a.bucket == nil || a.bucket.State() == gwmetadata.StateMissing:
		kind = gwerrors.KindBucketMissing
	case a.multipart == nil || a.multipart.State() == gwmetadata.StateMissing:
		kind = gwerrors.KindUploadMissing
	case a.partOne != nil && a.partOne.State() == gwmetadata.StateMissing:
		kind = gwerrors.KindPartOneMissing
	case a.writer == nil:
		kind = gwerrors.KindInternal
	case a.part == nil:
		// write_object or create_object failed before save_metadata ran.
		kind = gwerrors.KindWriteFailed
	case a.part.State() == gwmetadata.StateSaved:
		gwmetrics.ObserveAction(a.actionMetrics, ActionName, time.Since(a.actionStart), 200)
		gwerrors.EmitSuccess(a.req, a.pipeline, a.writer.ContentMD5())
		return
	default:
		kind = gwerrors.KindWriteFailed
	}

	status := gwerrors.StatusFor(kind)
	gwmetrics.ObserveAction(a.actionMetrics, ActionName, time.Since(a.actionStart), status)
	gwerrors.Emit(a.ctx, a.req, a.pipeline, kind, resource)
}
