package gwstore

import (
	"context"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/ajay-paratmandali/s3gw/internal/gwmetrics"
	"github.com/ajay-paratmandali/s3gw/internal/logger"
	"github.com/ajay-paratmandali/s3gw/internal/telemetry"
)

// BadgerIndex implements Index over a single embedded github.com/dgraph-io/badger/v4
// database, using one flat keyspace with index names folded into the row
// key. This stands in for the Motr/Clovis named-index service: one
// interface, a local embedded implementation behind it.
type BadgerIndex struct {
	db      *badger.DB
	metrics gwmetrics.StoreMetrics
}

// NewBadgerIndex opens (or creates) a Badger database at dir.
func NewBadgerIndex(dir string, metrics gwmetrics.StoreMetrics) (*BadgerIndex, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerIndex{db: db, metrics: metrics}, nil
}

// Close releases the underlying Badger database.
func (s *BadgerIndex) Close() error {
	return s.db.Close()
}

// indexKey folds an index name and row key into one Badger key, keeping
// every index in a single keyspace the way a real Motr deployment keeps
// indexes addressable by name within one service.
func indexKey(index, key string) []byte {
	b := make([]byte, 0, len(index)+1+len(key))
	b = append(b, index...)
	b = append(b, '\x00')
	b = append(b, key...)
	return b
}

func (s *BadgerIndex) GetKeyval(ctx context.Context, index, key string) ([]byte, OpState, error) {
	if err := ctx.Err(); err != nil {
		return nil, StateFailed, err
	}

	ctx, span := telemetry.StartStoreSpan(ctx, "get_keyval", "", telemetry.IndexName(index))
	defer span.End()
	start := time.Now()

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey(index, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = append([]byte(nil), val...)
			return nil
		})
	})

	gwmetrics.ObserveOperation(s.metrics, "get_keyval", time.Since(start), err)
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "get_keyval failed", logger.Index(index), logger.Err(err))
		return nil, StateFailed, err
	}
	if value == nil {
		return nil, StateMissing, nil
	}
	return value, StateOK, nil
}

func (s *BadgerIndex) PutKeyval(ctx context.Context, index, key string, value []byte) (OpState, error) {
	if err := ctx.Err(); err != nil {
		return StateFailed, err
	}

	ctx, span := telemetry.StartStoreSpan(ctx, "put_keyval", "", telemetry.IndexName(index))
	defer span.End()
	start := time.Now()

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(indexKey(index, key), value)
	})

	gwmetrics.ObserveOperation(s.metrics, "put_keyval", time.Since(start), err)
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "put_keyval failed", logger.Index(index), logger.Err(err))
		return StateFailed, err
	}
	return StateOK, nil
}

func (s *BadgerIndex) DeleteKeyval(ctx context.Context, index, key string) (OpState, error) {
	if err := ctx.Err(); err != nil {
		return StateFailed, err
	}

	ctx, span := telemetry.StartStoreSpan(ctx, "delete_keyval", "", telemetry.IndexName(index))
	defer span.End()
	start := time.Now()

	err := s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(indexKey(index, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})

	gwmetrics.ObserveOperation(s.metrics, "delete_keyval", time.Since(start), err)
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "delete_keyval failed", logger.Index(index), logger.Err(err))
		return StateFailed, err
	}
	return StateOK, nil
}
