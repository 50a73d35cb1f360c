package gwapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ajay-paratmandali/s3gw/internal/gwputpart"
	"github.com/ajay-paratmandali/s3gw/internal/gwrequest"
)

// objectHandler dispatches PUT requests for a bucket/object to either the
// upload-part action (when uploadId and partNumber are both present) or a
// 501, since every other PUT semantic (plain object PUT, CopyObject, ACLs)
// is out of scope.
type objectHandler struct {
	deps Deps
}

func (h *objectHandler) Put(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	object := chi.URLParam(r, "*")

	q := r.URL.Query()
	if q.Get("uploadId") == "" || q.Get("partNumber") == "" {
		writeNotImplemented(w, r.URL.Path)
		return
	}

	reqCtx := gwrequest.NewContext(w, r, bucket, object, "")

	action, err := gwputpart.New(r.Context(), reqCtx, h.deps.Index, h.deps.Container,
		h.deps.StoreMetrics, h.deps.ActionMetrics, h.deps.Account)
	if err != nil {
		writeS3Error(w, http.StatusBadRequest, "InvalidArgument", err.Error(), r.URL.Path)
		return
	}

	action.Start()
	<-reqCtx.Done()
}
