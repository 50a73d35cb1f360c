// Package gwapi wires the HTTP surface: the chi router, its middleware
// stack, and the handler that turns an upload-part request into a
// gwputpart.Action. Every other S3 verb responds 501 NotImplemented,
// since this gateway's only in-scope operation is UploadPart.
package gwapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ajay-paratmandali/s3gw/internal/gwmetrics"
	"github.com/ajay-paratmandali/s3gw/internal/gwstore"
	"github.com/ajay-paratmandali/s3gw/internal/logger"
)

// Deps bundles the backing store and metrics handles routes need.
type Deps struct {
	Index         gwstore.Index
	Container     gwstore.Container
	StoreMetrics  gwmetrics.StoreMetrics
	ActionMetrics gwmetrics.ActionMetrics
	Account       string

	// RequestTimeout bounds how long the Timeout middleware lets a single
	// request run before cancelling its context.
	RequestTimeout time.Duration
}

// NewRouter builds the gateway's http.Handler.
//
// Middleware stack, in order:
//   - chi's RequestID: stamps a request id chi middlewares read
//   - chi's RealIP: trusts X-Forwarded-For/X-Real-IP for client address
//   - requestLogger: structured start/completion log lines
//   - chi's Recoverer: turns a panicking handler into a 500 instead of a
//     crashed process
//   - chi's Timeout: cancels the request context after RequestTimeout
func NewRouter(deps Deps) http.Handler {
	if deps.RequestTimeout == 0 {
		deps.RequestTimeout = 5 * time.Minute
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(deps.RequestTimeout))

	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthLiveness)
		r.Get("/ready", healthReadiness)
		r.Get("/actions", healthInFlight)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	h := &objectHandler{deps: deps}

	// Object keys may contain "/", so the object portion is a wildcard
	// rather than a single chi path segment.
	r.Put("/{bucket}/*", h.Put)

	// Bucket-level and service-level operations (ListBuckets, CreateBucket,
	// ListObjects, ...) are out of scope; respond with a typed S3 error
	// instead of chi's bare 404 so clients see a recognizable error code.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeNotImplemented(w, r.URL.Path)
	})
	// Other verbs on an object path (GET, HEAD, DELETE, POST, ...) get the
	// same 501 rather than chi's bare 405.
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeNotImplemented(w, r.URL.Path)
	})

	return r
}

// requestLogger logs each request's start and completion at DEBUG/INFO,
// mirroring the structured fields the put-part action itself logs with.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}
