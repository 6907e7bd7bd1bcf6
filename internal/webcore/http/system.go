package http

import (
	"net/http"
	"time"

	"github.com/altostack/webcore/internal/webcore/store"
	"github.com/altostack/webcore/pkg/httpx"
)

type healthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service,omitempty"`
	Uptime  string            `json:"uptime,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// LivezHandler is the liveness probe. It returns 200 whenever the process is
// up.
func LivezHandler(serviceName string, startTime time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:  "ok",
			Service: serviceName,
			Uptime:  time.Since(startTime).String(),
		})
	}
}

// ReadyzHandler is the readiness probe. It verifies database connectivity
// and reports 503 when the store is unreachable.
func ReadyzHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"database": "ok"}
		status := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, healthResponse{
			Status: status,
			Checks: checks,
		})
	}
}
