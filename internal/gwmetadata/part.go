package gwmetadata

import (
	"context"

	"github.com/ajay-paratmandali/s3gw/internal/gwstore"
)

// Part is the record for a single uploaded part, held in the bucket's
// multipart index keyed by <object-name>/<upload-id>/<part-index>. Part 1's
// record additionally carries the content length every later part needs to
// compute its write offset.
type Part struct {
	Record
	PartIndex int `json:"part_index"`
}

// NewPart returns an empty Part record for the given part index.
func NewPart(account, bucket, object, uploadID string, partIndex int) *Part {
	return &Part{
		Record:    Record{Account: account, Bucket: bucket, Object: object, UploadID: uploadID},
		PartIndex: partIndex,
	}
}

func (p *Part) index() string { return multipartIndexName(p.Bucket) }
func (p *Part) key() string   { return partKey(p.Object, p.UploadID, p.PartIndex) }

// Load fetches the part record, transitioning State to present, missing or failed.
func (p *Part) Load(ctx context.Context, idx gwstore.Index) (State, error) {
	return loadRecord(ctx, idx, p.index(), p.key(), &p.Record, p)
}

// Save validates and persists the part record.
func (p *Part) Save(ctx context.Context, idx gwstore.Index) (State, error) {
	return saveRecord(ctx, idx, p.index(), p.key(), &p.Record, p)
}

// Remove deletes the part record.
func (p *Part) Remove(ctx context.Context, idx gwstore.Index) (State, error) {
	return removeRecord(ctx, idx, p.index(), p.key(), &p.Record)
}
