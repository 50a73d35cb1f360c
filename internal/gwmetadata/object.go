package gwmetadata

import (
	"context"

	"github.com/ajay-paratmandali/s3gw/internal/gwstore"
)

// Object is the record for a completed (non-multipart, or post-complete)
// object, sharing Bucket's index and key layout (BUCKET/<bucket>, keyed by
// object name) but constructed by the write path that produces a finished
// object rather than by the existence probe PutPart runs before touching
// multipart state. Kept distinct from Bucket because the two are written by
// different actions with different field requirements once a single-shot
// PUT or CompleteMultipartUpload action exists.
type Object struct {
	Record
}

// NewObject returns an empty Object record for the given identity.
func NewObject(account, bucket, object string) *Object {
	return &Object{Record: Record{Account: account, Bucket: bucket, Object: object}}
}

func (o *Object) index() string { return bucketIndexName(o.Bucket) }

func (o *Object) Load(ctx context.Context, idx gwstore.Index) (State, error) {
	return loadRecord(ctx, idx, o.index(), o.Object, &o.Record, o)
}

func (o *Object) Save(ctx context.Context, idx gwstore.Index) (State, error) {
	return saveRecord(ctx, idx, o.index(), o.Object, &o.Record, o)
}

func (o *Object) Remove(ctx context.Context, idx gwstore.Index) (State, error) {
	return removeRecord(ctx, idx, o.index(), o.Object, &o.Record)
}
