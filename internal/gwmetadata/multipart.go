package gwmetadata

import (
	"context"

	"github.com/ajay-paratmandali/s3gw/internal/gwstore"
)

// MultipartUpload is the descriptor for an in-flight multipart upload, held
// in the bucket's multipart index (BUCKET/<bucket>/Multipart), keyed by
// object name. fetch_multipart_metadata loads this to confirm the upload id
// the client is writing parts against is still live.
type MultipartUpload struct {
	Record
}

// NewMultipartUpload returns an empty MultipartUpload descriptor.
func NewMultipartUpload(account, bucket, object, uploadID string) *MultipartUpload {
	return &MultipartUpload{Record: Record{Account: account, Bucket: bucket, Object: object, UploadID: uploadID}}
}

func (m *MultipartUpload) index() string { return multipartIndexName(m.Bucket) }

func (m *MultipartUpload) Load(ctx context.Context, idx gwstore.Index) (State, error) {
	return loadRecord(ctx, idx, m.index(), m.Object, &m.Record, m)
}

func (m *MultipartUpload) Save(ctx context.Context, idx gwstore.Index) (State, error) {
	return saveRecord(ctx, idx, m.index(), m.Object, &m.Record, m)
}

func (m *MultipartUpload) Remove(ctx context.Context, idx gwstore.Index) (State, error) {
	return removeRecord(ctx, idx, m.index(), m.Object, &m.Record)
}
