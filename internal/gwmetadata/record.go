// Package gwmetadata implements the typed key-value metadata records (C2)
// that back buckets, multipart uploads, parts and completed objects. Each
// record type derives its own index name and row key, round-trips through
// JSON, and drives loads/saves/removes against a gwstore.Index while
// tracking an explicit lifecycle state.
package gwmetadata

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ajay-paratmandali/s3gw/internal/gwstore"
	"github.com/ajay-paratmandali/s3gw/internal/logger"
	"github.com/ajay-paratmandali/s3gw/internal/telemetry"
)

// MaxContentLength is the largest content length a record may persist,
// matching S3's single-part object size ceiling.
const MaxContentLength = 5 * 1024 * 1024 * 1024 * 1024 // 5 TiB

var validate = validator.New()

// Record is the shape shared by Bucket, MultipartUpload, Part and Object:
// identity fields, the backing-store object identifier, attribute maps, the
// ACL blob and a lifecycle state. It is never used bare; every record type
// embeds it.
type Record struct {
	Account  string `json:"account,omitempty"`
	Bucket   string `json:"bucket" validate:"required"`
	Object   string `json:"object" validate:"required"`
	UploadID string `json:"upload_id,omitempty"`

	OID       gwstore.OID `json:"oid"`
	HasObject bool        `json:"has_object"`

	SystemAttributes map[string]string `json:"system_attributes,omitempty"`
	UserAttributes   map[string]string `json:"user_attributes,omitempty"`

	ContentLength int64  `json:"content_length" validate:"gte=0,lte=5497558138880"`
	ContentMD5    string `json:"content_md5,omitempty"`

	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`

	ACL string `json:"acl,omitempty"`

	state State
}

// State returns the record's current lifecycle state.
func (r *Record) State() State { return r.state }

// SetOID records the backing-store object identifier for this record's data.
func (r *Record) SetOID(oid gwstore.OID) {
	r.OID = oid
	r.HasObject = true
}

// SetContentLength sets the content length, validating it against the
// 5 TiB ceiling before it is persisted.
func (r *Record) SetContentLength(length int64) error {
	if length < 0 || length > MaxContentLength {
		return fmt.Errorf("gwmetadata: content length %d out of bounds [0, %d]", length, MaxContentLength)
	}
	r.ContentLength = length
	return nil
}

// SetContentMD5 records the hex-encoded content MD5 computed by the writer.
func (r *Record) SetContentMD5(md5hex string) { r.ContentMD5 = md5hex }

// AddUserAttribute records a single user-defined (x-amz-meta-*) attribute.
func (r *Record) AddUserAttribute(name, value string) {
	if r.UserAttributes == nil {
		r.UserAttributes = make(map[string]string)
	}
	r.UserAttributes[name] = value
}

// userMetaPrefix is the header-name prefix identifying user-defined
// attributes. Matching is by prefix, not substring: a header named
// "my-x-amz-meta-thing" is not a user attribute. This is an explicit
// divergence from a substring match.
const userMetaPrefix = "x-amz-meta-"

// AddUserAttributesFromHeaders scans header names for the x-amz-meta-
// prefix (case insensitive) and records each match as a user attribute,
// keyed by the full original header name.
func (r *Record) AddUserAttributesFromHeaders(headers map[string][]string) {
	for name, values := range headers {
		if len(values) == 0 {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(name), userMetaPrefix) {
			continue
		}
		r.AddUserAttribute(name, values[0])
	}
}

// createDefaultACL fabricates a canned owner-full-control ACL document for
// account when no ACL was supplied by the client.
func createDefaultACL(account string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>`+
		`<AccessControlPolicy>`+
		`<Owner><ID>%s</ID><DisplayName>%s</DisplayName></Owner>`+
		`<AccessControlList>`+
		`<Grant>`+
		`<Grantee xsi:type="CanonicalUser"><ID>%s</ID><DisplayName>%s</DisplayName></Grantee>`+
		`<Permission>FULL_CONTROL</Permission>`+
		`</Grant>`+
		`</AccessControlList>`+
		`</AccessControlPolicy>`, account, account, account, account)
}

// EnsureACL sets a default owner-full-control ACL if none has been set yet.
// Setting an explicit ACL afterwards replaces the blob atomically.
func (r *Record) EnsureACL() {
	if r.ACL == "" {
		r.ACL = createDefaultACL(r.Account)
	}
}

// partKey encodes the row key for a part record: object name, upload id and
// part index joined by "/", per the integration contract fixed across
// readers and writers of the multipart index.
func partKey(object, uploadID string, partIndex int) string {
	return object + "/" + uploadID + "/" + strconv.Itoa(partIndex)
}

// bucketIndexName is the index holding per-object records for a bucket's
// regular (non-multipart) namespace.
func bucketIndexName(bucket string) string {
	return "BUCKET/" + bucket
}

// multipartIndexName is the index holding multipart descriptors and part
// records for a bucket's in-flight uploads.
func multipartIndexName(bucket string) string {
	return "BUCKET/" + bucket + "/Multipart"
}

// loadRecord fetches the row at index/key, decodes it into dst, and
// transitions dst's embedded state to present, missing or failed. dst must
// be a pointer to a type whose first field is a Record (or that embeds one),
// and whose JSON shape matches Record plus any type-specific fields.
func loadRecord(ctx context.Context, idx gwstore.Index, index, key string, rec *Record, dst any) (State, error) {
	ctx, span := telemetry.StartMetadataSpan(ctx, "load", telemetry.IndexName(index))
	defer span.End()

	raw, opState, err := idx.GetKeyval(ctx, index, key)
	if err != nil {
		rec.state = StateFailed
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "metadata load failed", logger.Index(index), logger.Err(err))
		return rec.state, err
	}
	if opState == gwstore.StateMissing {
		rec.state = StateMissing
		return rec.state, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		rec.state = StateFailed
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "metadata decode failed", logger.Index(index), logger.Err(err))
		return rec.state, err
	}
	rec.state = StatePresent
	return rec.state, nil
}

// saveRecord validates src, encodes it to JSON and writes it to index/key,
// transitioning rec's embedded state to saved or failed.
func saveRecord(ctx context.Context, idx gwstore.Index, index, key string, rec *Record, src any) (State, error) {
	ctx, span := telemetry.StartMetadataSpan(ctx, "save", telemetry.IndexName(index))
	defer span.End()

	if err := validate.Struct(src); err != nil {
		rec.state = StateFailed
		telemetry.RecordError(ctx, err)
		return rec.state, err
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.LastModified = now
	rec.EnsureACL()

	raw, err := json.Marshal(src)
	if err != nil {
		rec.state = StateFailed
		return rec.state, err
	}

	if _, err := idx.PutKeyval(ctx, index, key, raw); err != nil {
		rec.state = StateFailed
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "metadata save failed", logger.Index(index), logger.Err(err))
		return rec.state, err
	}
	rec.state = StateSaved
	return rec.state, nil
}

// removeRecord deletes the row at index/key, transitioning rec's embedded
// state to deleted or failed.
func removeRecord(ctx context.Context, idx gwstore.Index, index, key string, rec *Record) (State, error) {
	ctx, span := telemetry.StartMetadataSpan(ctx, "remove", telemetry.IndexName(index))
	defer span.End()

	if _, err := idx.DeleteKeyval(ctx, index, key); err != nil {
		rec.state = StateFailed
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "metadata remove failed", logger.Index(index), logger.Err(err))
		return rec.state, err
	}
	rec.state = StateDeleted
	return rec.state, nil
}

// Invalidate sets rec's state to the terminal invalid sink, inhibiting
// further load/save/remove calls from any caller that checks State() first.
func (r *Record) Invalidate() { r.state = StateInvalid }
