// Package gwerrors implements the error catalog and response emitter (C5):
// a closed enumeration of outbound failure kinds, each mapped to a fixed S3
// error code, HTTP status and any extra response headers, plus the XML
// encoder and the single call site that drives a request to its terminal
// response.
package gwerrors

// Kind is a closed enumeration of the terminal outcomes the put-part stage
// graph can reach. KindNone is not an error; it marks the success path.
type Kind int

const (
	// KindNone marks a successful part write; no error body is emitted.
	KindNone Kind = iota
	// KindBucketMissing: the bucket record's state was missing.
	KindBucketMissing
	// KindUploadMissing: the multipart descriptor's state was missing.
	KindUploadMissing
	// KindPartOneMissing: part 1's record was missing while writing part k>1.
	// The client is expected to retry once part 1 has landed.
	KindPartOneMissing
	// KindWriteFailed: the backing store reported a failed write, a
	// failed create_object (other than the benign "exists" race), or a
	// failed save of the part record.
	KindWriteFailed
	// KindInternal: any other unexpected terminal state.
	KindInternal
)

// entry is one row of the error catalog: the S3 error code, HTTP status,
// and any headers beyond Content-Type/Content-Length the emitter must set.
type entry struct {
	Code    string
	Status  int
	Headers map[string]string
}

var catalog = map[Kind]entry{
	KindBucketMissing:  {Code: "NoSuchBucket", Status: 404},
	KindUploadMissing:  {Code: "NoSuchUpload", Status: 404},
	KindPartOneMissing: {Code: "ServiceUnavailable", Status: 503, Headers: map[string]string{"Retry-After": "1"}},
	KindWriteFailed:    {Code: "InternalError", Status: 500},
	KindInternal:       {Code: "InternalError", Status: 500},
}

// lookup returns the catalog entry for kind, falling back to InternalError
// for any kind not in the table (there should be none; this keeps Emit
// total instead of panicking on an unrecognized value).
func lookup(kind Kind) entry {
	if e, ok := catalog[kind]; ok {
		return e
	}
	return catalog[KindInternal]
}

// StatusFor returns the HTTP status kind maps to, for callers that need it
// before calling Emit (e.g. to record it against action-level metrics).
func StatusFor(kind Kind) int {
	return lookup(kind).Status
}
