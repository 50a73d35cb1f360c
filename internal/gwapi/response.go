package gwapi

import (
	"encoding/json"
	"encoding/xml"
	"net/http"
	"time"
)

// HealthResponse is the JSON body returned by the liveness/readiness probes.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}

// s3ErrorBody is the fixed S3 error XML shape every error response this
// gateway emits outside the put-part action's own response path uses.
type s3ErrorBody struct {
	XMLName  xml.Name `xml:"Error"`
	Code     string   `xml:"Code"`
	Message  string   `xml:"Message"`
	Resource string   `xml:"Resource"`
}

// writeS3Error writes an S3-shaped XML error body with the given code and
// HTTP status.
func writeS3Error(w http.ResponseWriter, status int, code, message, resource string) {
	body, _ := xml.MarshalIndent(s3ErrorBody{
		Code:     code,
		Message:  message,
		Resource: resource,
	}, "", "  ")
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeNotImplemented emits the S3 "NotImplemented" error for any request
// this gateway intentionally does not handle (every operation outside the
// upload-part path is out of scope; see the module's non-goals).
func writeNotImplemented(w http.ResponseWriter, resource string) {
	writeS3Error(w, http.StatusNotImplemented, "NotImplemented",
		"A header or query parameter required for this operation is not supported.", resource)
}
