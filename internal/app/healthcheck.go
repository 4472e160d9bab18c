package app

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthResponse is the JSON body served on /health.
type healthResponse struct {
	Status        string `json:"status"`
	State         string `json:"state"`
	Queued        int    `json:"queued"`
	Running       int    `json:"running"`
	PendingFinish int    `json:"pending_finish"`
	Triggers      uint64 `json:"triggers"`
	Started       uint64 `json:"started"`
	Succeeded     uint64 `json:"succeeded"`
	Failed        uint64 `json:"failed"`
}

// Handler returns the health check mux: /health with a JSON view of the
// scheduler and /metrics in the prometheus exposition format.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	return mux
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	stats := a.scheduler.Stats()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:        "OK",
		State:         stats.State.String(),
		Queued:        stats.Queued,
		Running:       stats.Running,
		PendingFinish: stats.PendingFinish,
		Triggers:      stats.Triggers,
		Started:       stats.Started,
		Succeeded:     stats.Succeeded,
		Failed:        stats.Failed,
	})
}
