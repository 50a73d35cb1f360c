package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for gateway operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Client attributes
	// ========================================================================
	AttrClientIP = "client.ip"

	// ========================================================================
	// Request / action attributes
	// ========================================================================
	AttrRequestID = "gw.request_id"
	AttrAction    = "gw.action"  // e.g. put_part
	AttrStage     = "gw.stage"   // pipeline stage name
	AttrStatus    = "gw.status"  // response status code

	// ========================================================================
	// S3 object identity
	// ========================================================================
	AttrBucket     = "s3.bucket"
	AttrObject     = "s3.object"
	AttrUploadID   = "s3.upload_id"
	AttrPartNumber = "s3.part_number"
	AttrETag       = "s3.etag"

	// ========================================================================
	// I/O attributes
	// ========================================================================
	AttrOffset       = "io.offset"
	AttrCount        = "io.count"
	AttrBytesWritten = "io.bytes_written"

	// ========================================================================
	// Backing store attributes
	// ========================================================================
	AttrContentID = "store.content_id" // 128-bit object container id, hex
	AttrIndexName = "store.index"      // KV index name
	AttrStoreName = "store.name"
	AttrStoreType = "store.type"
)

// Span names for internal operations.
const (
	SpanGatewayRequest = "gw.request"

	SpanActionPutPart = "gw.put_part"

	SpanStoreGet          = "store.get_keyval"
	SpanStorePut          = "store.put_keyval"
	SpanStoreDelete       = "store.delete_keyval"
	SpanStoreCreateObject = "store.create_object"
	SpanStoreWriteObject  = "store.write_object"

	SpanMetaLoad   = "metadata.load"
	SpanMetaSave   = "metadata.save"
	SpanMetaRemove = "metadata.remove"
)

// ClientIP returns an attribute for client IP address
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// RequestID returns an attribute for the gateway request id
func RequestID(id string) attribute.KeyValue {
	return attribute.String(AttrRequestID, id)
}

// Action returns an attribute for the action type
func Action(name string) attribute.KeyValue {
	return attribute.String(AttrAction, name)
}

// Stage returns an attribute for the current pipeline stage
func Stage(name string) attribute.KeyValue {
	return attribute.String(AttrStage, name)
}

// Status returns an attribute for the response status code
func Status(code int) attribute.KeyValue {
	return attribute.Int(AttrStatus, code)
}

// Bucket returns an attribute for the bucket name
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// Object returns an attribute for the object key
func Object(key string) attribute.KeyValue {
	return attribute.String(AttrObject, key)
}

// UploadID returns an attribute for the multipart upload id
func UploadID(id string) attribute.KeyValue {
	return attribute.String(AttrUploadID, id)
}

// PartNumber returns an attribute for the part index
func PartNumber(n int) attribute.KeyValue {
	return attribute.Int(AttrPartNumber, n)
}

// ETag returns an attribute for the resulting part ETag
func ETag(tag string) attribute.KeyValue {
	return attribute.String(AttrETag, tag)
}

// Offset returns an attribute for a container byte offset
func Offset(offset uint64) attribute.KeyValue {
	return attribute.Int64(AttrOffset, int64(offset))
}

// Count returns an attribute for a byte count
func Count(count uint64) attribute.KeyValue {
	return attribute.Int64(AttrCount, int64(count))
}

// BytesWritten returns an attribute for actual bytes written
func BytesWritten(n int) attribute.KeyValue {
	return attribute.Int64(AttrBytesWritten, int64(n))
}

// ContentID returns an attribute for the backing object container id
func ContentID(id string) attribute.KeyValue {
	return attribute.String(AttrContentID, id)
}

// IndexName returns an attribute for the backing KV index name
func IndexName(name string) attribute.KeyValue {
	return attribute.String(AttrIndexName, name)
}

// StoreName returns an attribute for the backing store implementation name
func StoreName(name string) attribute.KeyValue {
	return attribute.String(AttrStoreName, name)
}

// StoreType returns an attribute for the backing store category (index, container)
func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

// StartActionSpan starts a root span for an action's pipeline run.
func StartActionSpan(ctx context.Context, action string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{Action(action)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, "gw."+action, trace.WithAttributes(allAttrs...))
}

// StartStageSpan starts a span for a single pipeline stage.
func StartStageSpan(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{Stage(stage)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, "gw.stage."+stage, trace.WithAttributes(allAttrs...))
}

// StartStoreSpan starts a span for a backing store operation.
func StartStoreSpan(ctx context.Context, operation string, contentID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{}
	if contentID != "" {
		allAttrs = append(allAttrs, ContentID(contentID))
	}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, "store."+operation, trace.WithAttributes(allAttrs...))
}

// StartMetadataSpan starts a span for a metadata record operation.
func StartMetadataSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "metadata."+operation, trace.WithAttributes(attrs...))
}
