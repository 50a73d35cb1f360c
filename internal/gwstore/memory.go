package gwstore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"hash"
	"sync"
)

// MemoryIndex is an in-memory Index, used by tests and by local/dev runs
// that don't want a Badger data directory.
type MemoryIndex struct {
	mu   sync.RWMutex
	rows map[string][]byte
}

// NewMemoryIndex returns an empty in-memory Index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{rows: make(map[string][]byte)}
}

func (m *MemoryIndex) GetKeyval(_ context.Context, index, key string) ([]byte, OpState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.rows[string(indexKey(index, key))]
	if !ok {
		return nil, StateMissing, nil
	}
	return append([]byte(nil), v...), StateOK, nil
}

func (m *MemoryIndex) PutKeyval(_ context.Context, index, key string, value []byte) (OpState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[string(indexKey(index, key))] = append([]byte(nil), value...)
	return StateOK, nil
}

func (m *MemoryIndex) DeleteKeyval(_ context.Context, index, key string) (OpState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, string(indexKey(index, key)))
	return StateOK, nil
}

// MemoryContainer is an in-memory Container, used by tests and by
// local/dev runs that don't want on-disk object containers.
type MemoryContainer struct {
	mu      sync.Mutex
	objects map[OID][]byte
}

// NewMemoryContainer returns an empty in-memory Container.
func NewMemoryContainer() *MemoryContainer {
	return &MemoryContainer{objects: make(map[OID][]byte)}
}

func (c *MemoryContainer) CreateObject(_ context.Context, oid OID) (OpState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.objects[oid]; ok {
		return StateExists, nil
	}
	c.objects[oid] = []byte{}
	return StateOK, nil
}

func (c *MemoryContainer) NewWriter(oid OID, offset uint64) Writer {
	return &memoryWriter{container: c, oid: oid, offset: offset, md5: md5.New()}
}

type memoryWriter struct {
	container *MemoryContainer
	oid       OID
	offset    uint64
	md5       hash.Hash
}

func (w *memoryWriter) Offset() uint64 {
	return w.offset
}

func (w *memoryWriter) ContentMD5() string {
	return hex.EncodeToString(w.md5.Sum(nil))
}

func (w *memoryWriter) WriteObject(_ context.Context, p []byte) (OpState, error) {
	w.container.mu.Lock()
	defer w.container.mu.Unlock()

	buf := w.container.objects[w.oid]
	end := w.offset + uint64(len(p))
	if uint64(len(buf)) < end {
		grown := make([]byte, end)
		copy(grown, buf)
		buf = grown
	}
	copy(buf[w.offset:end], p)
	w.container.objects[w.oid] = buf
	w.offset = end
	w.md5.Write(p)
	return StateOK, nil
}

// Contents returns the bytes written so far at oid, for test assertions.
func (c *MemoryContainer) Contents(oid OID) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.objects[oid]...)
}
