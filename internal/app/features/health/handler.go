package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// Handler serves the liveness check. It touches no dependencies.
type Handler struct {
	now func() time.Time
}

// NewHandler constructs a health Handler using the wall clock.
func NewHandler() *Handler {
	return &Handler{now: time.Now}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	OK   bool   `json:"ok"`
	Time string `json:"time"`
}

// Serve handles GET /health.
//
// Always 200:
//
//	{ "ok": true, "time": "2025-01-02T03:04:05.123456Z" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{
		OK:   true,
		Time: h.now().UTC().Format(time.RFC3339Nano),
	})
}
