package gwapi

import (
	"net/http"
	"time"

	"github.com/ajay-paratmandali/s3gw/internal/gwaction"
)

// healthLiveness handles GET /health: always 200 once the process is
// serving requests. Kubernetes-style liveness probe.
func healthLiveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Timestamp: time.Now().UTC()})
}

// healthReadiness handles GET /health/ready. The gateway has no external
// dependency to probe beyond the backing index/container, which are
// exercised on every request; readiness degrades to liveness.
func healthReadiness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Timestamp: time.Now().UTC()})
}

// inFlightResponse reports the number of put-part actions currently
// in-flight, for operators watching load.
type inFlightResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	InFlight  int       `json:"in_flight_actions"`
}

// healthInFlight handles GET /health/actions.
func healthInFlight(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, inFlightResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		InFlight:  gwaction.InFlight(),
	})
}
