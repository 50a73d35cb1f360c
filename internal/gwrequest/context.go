// Package gwrequest implements the borrowed request-handle interface (§3,
// §6): an opaque wrapper over net/http exposing the pieces the action
// pipeline needs — bucket/object identity, query parameters, a streaming
// buffered input with pause/resume, outbound header setters and a single
// terminal send-response call. A Context's lifetime strictly exceeds the
// pipeline's: gwapi constructs it, hands it to an action, and only releases
// it after the action calls SendResponse.
package gwrequest

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Context is the per-request handle shared by an action and its records.
type Context struct {
	w   http.ResponseWriter
	r   *http.Request
	log bool

	requestID string
	bucket    string
	object    string

	input *BufferedInput

	mu         sync.Mutex
	responded  atomic.Bool
	statusCode int
	done       chan struct{}
}

// NewContext wraps w/r into a Context for the given bucket/object, starting
// the background body-reading producer immediately. requestID is used
// verbatim if non-empty; otherwise a new one is generated.
func NewContext(w http.ResponseWriter, r *http.Request, bucket, object, requestID string) *Context {
	if requestID == "" {
		requestID = uuid.NewString()
	}

	c := &Context{
		w:         w,
		r:         r,
		requestID: requestID,
		bucket:    bucket,
		object:    object,
		input:     NewBufferedInput(r.ContentLength),
		done:      make(chan struct{}),
	}
	go c.input.fill(r.Body, DefaultChunkSize)
	return c
}

// RequestID returns the id this request is tracked under, for logging,
// tracing and the gwaction.Registry key.
func (c *Context) RequestID() string { return c.requestID }

// Method returns the HTTP method of the underlying request.
func (c *Context) Method() string { return c.r.Method }

// Path returns the URL path of the underlying request.
func (c *Context) Path() string { return c.r.URL.Path }

// Bucket returns the decoded bucket name.
func (c *Context) Bucket() string { return c.bucket }

// Object returns the decoded object (key) name.
func (c *Context) Object() string { return c.object }

// Query returns the value of a single query parameter.
func (c *Context) Query(key string) string { return c.r.URL.Query().Get(key) }

// Header returns the value of a single request header, case-insensitively.
func (c *Context) Header(key string) string { return c.r.Header.Get(key) }

// Headers returns the request's headers as a case-insensitive multimap.
func (c *Context) Headers() http.Header { return c.r.Header }

// ContentLength returns the declared Content-Length of the request body,
// or -1 if the client did not send one.
func (c *Context) ContentLength() int64 { return c.r.ContentLength }

// BufferedInput returns the streaming body view.
func (c *Context) BufferedInput() *BufferedInput { return c.input }

// Pause stops body ingestion before it is resumed; the convention this
// package follows (mirrored by gwputpart) is to pause before every metadata
// load so a request whose bucket or upload turns out to be missing never
// buffers a large body to no purpose.
func (c *Context) Pause() { c.input.Pause() }

// Resume releases a paused body.
func (c *Context) Resume() { c.input.Resume() }

// ListenForIncomingData arms a level-triggered listener that fires onData
// whenever the buffered input reaches at least threshold bytes or freezes.
// Call it only after checking HasAllBodyContent(); the fast path drains the
// buffer directly without registering a listener at all.
func (c *Context) ListenForIncomingData(onData func(), threshold int) {
	c.input.setOnData(func() {
		if c.input.Length() >= threshold || c.input.Frozen() {
			onData()
		}
	})
}

// HasAllBodyContent reports whether the entire body is present and the
// producer has frozen (no more bytes will ever arrive). This is the
// fast-path check stage 5 uses to skip listener registration entirely.
func (c *Context) HasAllBodyContent() bool {
	return c.input.Frozen() && c.input.HasAll()
}

// SetHeader sets an outbound response header. Must be called before
// SendResponse.
func (c *Context) SetHeader(key, value string) {
	c.w.Header().Set(key, value)
}

// SendResponse writes status and body exactly once; a second call panics,
// since the action base's contract is that exactly one terminal call fires
// per request and a silent double-send would mask a bug in the stage graph
// rather than surface it.
func (c *Context) SendResponse(status int, body []byte) {
	if !c.responded.CompareAndSwap(false, true) {
		panic("gwrequest: SendResponse called more than once for request " + c.requestID)
	}
	c.mu.Lock()
	c.statusCode = status
	c.mu.Unlock()

	if c.w.Header().Get("Content-Length") == "" {
		c.w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	}
	c.w.WriteHeader(status)
	_, _ = c.w.Write(body)
	close(c.done)
}

// Responded reports whether SendResponse has already fired.
func (c *Context) Responded() bool { return c.responded.Load() }

// Done returns a channel closed once SendResponse has written the
// response. The HTTP handler that owns the underlying ResponseWriter
// blocks on this so it never returns to net/http before the action's
// terminal write has happened, since writes from another goroutine after
// the handler returns are not valid against http.ResponseWriter.
func (c *Context) Done() <-chan struct{} { return c.done }

// StatusCode returns the status code passed to SendResponse, or 0 if it
// has not been called yet.
func (c *Context) StatusCode() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusCode
}
