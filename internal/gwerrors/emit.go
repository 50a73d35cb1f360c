package gwerrors

import (
	"context"
	"encoding/xml"
	"strconv"

	"github.com/ajay-paratmandali/s3gw/internal/gwaction"
	"github.com/ajay-paratmandali/s3gw/internal/gwrequest"
	"github.com/ajay-paratmandali/s3gw/internal/logger"
)

// errorBody is the fixed XML shape every error response uses.
type errorBody struct {
	XMLName   xml.Name `xml:"Error"`
	Code      string   `xml:"Code"`
	RequestID string   `xml:"RequestId"`
	Resource  string   `xml:"Resource"`
}

// Emit maps kind to its catalog entry, writes the XML error response
// through ctx, resumes body ingestion so the producer can drain any
// trailing bytes, and tears the pipeline down. Exactly one of Emit or
// EmitSuccess fires per request, matching the action base's single
// terminal-response contract.
func Emit(goCtx context.Context, ctx *gwrequest.Context, pipeline *gwaction.Pipeline, kind Kind, resource string) {
	e := lookup(kind)

	body, err := xml.Marshal(errorBody{
		Code:      e.Code,
		RequestID: ctx.RequestID(),
		Resource:  resource,
	})
	if err != nil {
		// encoding/xml on a fixed, valid struct cannot fail in practice;
		// fall back to a minimal body rather than leave the request hanging.
		body = []byte(`<Error><Code>InternalError</Code></Error>`)
	}

	logger.ErrorCtx(goCtx, "emitting S3 error response",
		logger.ErrorCode(e.Code), logger.RequestID(ctx.RequestID()))

	ctx.SetHeader("Content-Type", "application/xml")
	ctx.SetHeader("Content-Length", strconv.Itoa(len(body)))
	for k, v := range e.Headers {
		ctx.SetHeader(k, v)
	}

	ctx.SendResponse(e.Status, body)
	ctx.Resume()
	pipeline.Done()
}

// EmitSuccess writes the 200 OK / ETag response for a saved part, resumes
// body ingestion, and tears the pipeline down.
func EmitSuccess(ctx *gwrequest.Context, pipeline *gwaction.Pipeline, etag string) {
	ctx.SetHeader("ETag", etag)
	ctx.SendResponse(200, nil)
	ctx.Resume()
	pipeline.Done()
}
