package gwmetadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajay-paratmandali/s3gw/internal/gwstore"
)

func TestBucketLoadMissing(t *testing.T) {
	idx := gwstore.NewMemoryIndex()
	b := NewBucket("acct", "mybucket", "key.txt")

	state, err := b.Load(context.Background(), idx)
	require.NoError(t, err)
	assert.Equal(t, StateMissing, state)
	assert.Equal(t, StateMissing, b.State())
}

func TestBucketSaveThenLoadRoundTrips(t *testing.T) {
	idx := gwstore.NewMemoryIndex()
	ctx := context.Background()

	b := NewBucket("acct", "mybucket", "key.txt")
	require.NoError(t, b.SetContentLength(11))
	b.SetContentMD5("deadbeef")
	b.AddUserAttribute("x-amz-meta-foo", "bar")

	state, err := b.Save(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, StateSaved, state)
	assert.NotEmpty(t, b.ACL)

	loaded := NewBucket("acct", "mybucket", "key.txt")
	state, err = loaded.Load(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, StatePresent, state)
	assert.Equal(t, int64(11), loaded.ContentLength)
	assert.Equal(t, "deadbeef", loaded.ContentMD5)
	assert.Equal(t, "bar", loaded.UserAttributes["x-amz-meta-foo"])
}

func TestBucketRemove(t *testing.T) {
	idx := gwstore.NewMemoryIndex()
	ctx := context.Background()

	b := NewBucket("acct", "mybucket", "key.txt")
	_, err := b.Save(ctx, idx)
	require.NoError(t, err)

	state, err := b.Remove(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, StateDeleted, state)

	loaded := NewBucket("acct", "mybucket", "key.txt")
	state, err = loaded.Load(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, StateMissing, state)
}

func TestMultipartUploadRoundTrip(t *testing.T) {
	idx := gwstore.NewMemoryIndex()
	ctx := context.Background()

	m := NewMultipartUpload("acct", "b", "key.txt", "upload-1")
	_, err := m.Save(ctx, idx)
	require.NoError(t, err)

	loaded := NewMultipartUpload("acct", "b", "key.txt", "upload-1")
	state, err := loaded.Load(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, StatePresent, state)
	assert.Equal(t, "upload-1", loaded.UploadID)
}

func TestPartKeyEncodingSeparatesParts(t *testing.T) {
	idx := gwstore.NewMemoryIndex()
	ctx := context.Background()

	part1 := NewPart("acct", "b", "key.txt", "upload-1", 1)
	require.NoError(t, part1.SetContentLength(5 * 1024 * 1024))
	_, err := part1.Save(ctx, idx)
	require.NoError(t, err)

	part2 := NewPart("acct", "b", "key.txt", "upload-1", 2)
	state, err := part2.Load(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, StateMissing, state)

	loadedPart1 := NewPart("acct", "b", "key.txt", "upload-1", 1)
	state, err = loadedPart1.Load(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, StatePresent, state)
	assert.Equal(t, int64(5*1024*1024), loadedPart1.ContentLength)
}

func TestSetContentLengthRejectsOutOfBounds(t *testing.T) {
	b := NewBucket("acct", "b", "key.txt")
	assert.Error(t, b.SetContentLength(-1))
	assert.Error(t, b.SetContentLength(MaxContentLength+1))
	assert.NoError(t, b.SetContentLength(MaxContentLength))
}

func TestAddUserAttributesFromHeadersUsesPrefixNotSubstring(t *testing.T) {
	b := NewBucket("acct", "b", "key.txt")
	headers := map[string][]string{
		"X-Amz-Meta-Foo":     {"bar"},
		"my-x-amz-meta-evil": {"should-not-match"},
		"Content-Type":       {"text/plain"},
	}
	b.AddUserAttributesFromHeaders(headers)

	assert.Equal(t, "bar", b.UserAttributes["X-Amz-Meta-Foo"])
	_, ok := b.UserAttributes["my-x-amz-meta-evil"]
	assert.False(t, ok)
	assert.Len(t, b.UserAttributes, 1)
}

func TestInvalidateSetsTerminalState(t *testing.T) {
	b := NewBucket("acct", "b", "key.txt")
	b.Invalidate()
	assert.Equal(t, StateInvalid, b.State())
}

func TestStateStringCoversAllValues(t *testing.T) {
	cases := map[State]string{
		StateEmpty:   "empty",
		StatePresent: "present",
		StateMissing: "missing",
		StateSaved:   "saved",
		StateDeleted: "deleted",
		StateFailed:  "failed",
		StateInvalid: "invalid",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
}
