package gwstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndexGetMissing(t *testing.T) {
	idx := NewMemoryIndex()
	_, state, err := idx.GetKeyval(context.Background(), "BUCKET/b", "obj")
	require.NoError(t, err)
	assert.Equal(t, StateMissing, state)
}

func TestMemoryIndexPutGet(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	state, err := idx.PutKeyval(ctx, "BUCKET/b", "obj", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, StateOK, state)

	value, state, err := idx.GetKeyval(ctx, "BUCKET/b", "obj")
	require.NoError(t, err)
	assert.Equal(t, StateOK, state)
	assert.Equal(t, []byte("hello"), value)
}

func TestMemoryIndexDelete(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	_, _ = idx.PutKeyval(ctx, "BUCKET/b", "obj", []byte("hello"))
	state, err := idx.DeleteKeyval(ctx, "BUCKET/b", "obj")
	require.NoError(t, err)
	assert.Equal(t, StateOK, state)

	_, state, err = idx.GetKeyval(ctx, "BUCKET/b", "obj")
	require.NoError(t, err)
	assert.Equal(t, StateMissing, state)
}

func TestMemoryIndexSeparatesIndexes(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	_, _ = idx.PutKeyval(ctx, "BUCKET/b", "obj", []byte("a"))
	_, _ = idx.PutKeyval(ctx, "BUCKET/b/Multipart", "obj", []byte("b"))

	v1, _, _ := idx.GetKeyval(ctx, "BUCKET/b", "obj")
	v2, _, _ := idx.GetKeyval(ctx, "BUCKET/b/Multipart", "obj")

	assert.Equal(t, []byte("a"), v1)
	assert.Equal(t, []byte("b"), v2)
}

func TestMemoryContainerCreateObject(t *testing.T) {
	c := NewMemoryContainer()
	ctx := context.Background()

	oid, err := NewOID()
	require.NoError(t, err)

	state, err := c.CreateObject(ctx, oid)
	require.NoError(t, err)
	assert.Equal(t, StateOK, state)

	state, err = c.CreateObject(ctx, oid)
	require.NoError(t, err)
	assert.Equal(t, StateExists, state)
}

func TestMemoryContainerWriteAtOffset(t *testing.T) {
	c := NewMemoryContainer()
	ctx := context.Background()
	oid, _ := NewOID()
	_, _ = c.CreateObject(ctx, oid)

	w := c.NewWriter(oid, 0)
	state, err := w.WriteObject(ctx, []byte("hello "))
	require.NoError(t, err)
	assert.Equal(t, StateOK, state)
	assert.Equal(t, uint64(6), w.Offset())

	w2 := c.NewWriter(oid, 6)
	state, err = w2.WriteObject(ctx, []byte("world"))
	require.NoError(t, err)
	assert.Equal(t, StateOK, state)

	assert.Equal(t, "hello world", string(c.Contents(oid)))
}

func TestOIDRoundTrip(t *testing.T) {
	oid, err := NewOID()
	require.NoError(t, err)

	s := oid.String()
	parsed, err := ParseOID(s)
	require.NoError(t, err)
	assert.Equal(t, oid, parsed)
}

func TestOIDFromParts(t *testing.T) {
	oid := OIDFromParts(0x1, 0x2)
	assert.Equal(t, uint64(1), oid.Hi())
	assert.Equal(t, uint64(2), oid.Lo())
}

func TestOpStateString(t *testing.T) {
	assert.Equal(t, "ok", StateOK.String())
	assert.Equal(t, "missing", StateMissing.String())
	assert.Equal(t, "exists", StateExists.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", StateUnknown.String())
}
