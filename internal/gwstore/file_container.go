package gwstore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"hash"
	"os"
	"path/filepath"
	"time"

	"github.com/ajay-paratmandali/s3gw/internal/gwmetrics"
	"github.com/ajay-paratmandali/s3gw/internal/logger"
	"github.com/ajay-paratmandali/s3gw/internal/telemetry"
)

// FileContainer implements Container as one sparse local file per oid
// under a configured root directory, written with (*os.File).WriteAt at
// explicit offsets. This stands in for a Motr/Clovis object container the
// way a local block device stands in for networked object storage in the
// examples this package is grounded on: an interface with one concrete,
// swappable backend.
type FileContainer struct {
	root    string
	metrics gwmetrics.StoreMetrics
}

// NewFileContainer returns a FileContainer rooted at dir, creating dir if
// it does not exist.
func NewFileContainer(dir string, metrics gwmetrics.StoreMetrics) (*FileContainer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileContainer{root: dir, metrics: metrics}, nil
}

func (c *FileContainer) path(oid OID) string {
	return filepath.Join(c.root, oid.String())
}

func (c *FileContainer) CreateObject(ctx context.Context, oid OID) (OpState, error) {
	if err := ctx.Err(); err != nil {
		return StateFailed, err
	}

	ctx, span := telemetry.StartStoreSpan(ctx, "create_object", oid.String())
	defer span.End()
	start := time.Now()

	f, err := os.OpenFile(c.path(oid), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	state := StateOK
	if errors.Is(err, os.ErrExist) {
		state = StateExists
		err = nil
	} else if err != nil {
		state = StateFailed
	}
	if f != nil {
		_ = f.Close()
	}

	gwmetrics.ObserveCreateObject(c.metrics, time.Since(start), err)
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "create_object failed", logger.OID(oid.Hi(), oid.Lo()), logger.Err(err))
		return StateFailed, err
	}
	return state, nil
}

// NewWriter returns a Writer bound to oid at the given starting offset.
func (c *FileContainer) NewWriter(oid OID, offset uint64) Writer {
	return &fileWriter{
		path:    c.path(oid),
		oid:     oid,
		offset:  offset,
		metrics: c.metrics,
		md5:     md5.New(),
	}
}

type fileWriter struct {
	path    string
	oid     OID
	offset  uint64
	metrics gwmetrics.StoreMetrics
	md5     hash.Hash
}

func (w *fileWriter) Offset() uint64 {
	return w.offset
}

func (w *fileWriter) ContentMD5() string {
	return hex.EncodeToString(w.md5.Sum(nil))
}

func (w *fileWriter) WriteObject(ctx context.Context, p []byte) (OpState, error) {
	if err := ctx.Err(); err != nil {
		return StateFailed, err
	}

	ctx, span := telemetry.StartStoreSpan(ctx, "write_object", w.oid.String(),
		telemetry.Offset(w.offset), telemetry.Count(uint64(len(p))))
	defer span.End()
	start := time.Now()

	f, err := os.OpenFile(w.path, os.O_WRONLY, 0o644)
	if err != nil {
		gwmetrics.ObserveOperation(w.metrics, "write_object", time.Since(start), err)
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "write_object open failed", logger.OID(w.oid.Hi(), w.oid.Lo()), logger.Err(err))
		return StateFailed, err
	}
	defer f.Close()

	n, err := f.WriteAt(p, int64(w.offset))
	gwmetrics.ObserveOperation(w.metrics, "write_object", time.Since(start), err)
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "write_object failed", logger.OID(w.oid.Hi(), w.oid.Lo()), logger.Offset(w.offset), logger.Err(err))
		return StateFailed, err
	}

	gwmetrics.RecordBytesWritten(w.metrics, int64(n))
	w.md5.Write(p[:n])
	w.offset += uint64(n)
	return StateOK, nil
}
