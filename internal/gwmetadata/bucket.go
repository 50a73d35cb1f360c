package gwmetadata

import (
	"context"

	"github.com/ajay-paratmandali/s3gw/internal/gwstore"
)

// Bucket is the per-object record held in a bucket's own index
// (BUCKET/<bucket>, keyed by object name). fetch_bucket_info loads this
// record to confirm the target bucket is usable before any multipart
// lookups proceed; its State distinguishes an absent bucket/object from an
// already-present one (S3 PUT overwrites in place).
type Bucket struct {
	Record
}

// NewBucket returns an empty Bucket record for the given identity.
func NewBucket(account, bucket, object string) *Bucket {
	return &Bucket{Record: Record{Account: account, Bucket: bucket, Object: object}}
}

func (b *Bucket) index() string { return bucketIndexName(b.Bucket) }

// Load fetches the record, transitioning State to present, missing or failed.
func (b *Bucket) Load(ctx context.Context, idx gwstore.Index) (State, error) {
	return loadRecord(ctx, idx, b.index(), b.Object, &b.Record, b)
}

// Save validates and persists the record, transitioning State to saved or failed.
func (b *Bucket) Save(ctx context.Context, idx gwstore.Index) (State, error) {
	return saveRecord(ctx, idx, b.index(), b.Object, &b.Record, b)
}

// Remove deletes the record, transitioning State to deleted or failed.
func (b *Bucket) Remove(ctx context.Context, idx gwstore.Index) (State, error) {
	return removeRecord(ctx, idx, b.index(), b.Object, &b.Record)
}
