package handlers

import (
	"net/http"
	"time"

	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/server/responses"
	"git.home.luguber.info/inful/solvent/internal/version"
)

// MonitoringHandlers serves liveness information.
type MonitoringHandlers struct {
	orch    Orchestrator
	ws      Workspace
	start   time.Time
	adapter *ferrors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates monitoring handlers. Uptime counts from now.
func NewMonitoringHandlers(orch Orchestrator, ws Workspace, adapter *ferrors.HTTPErrorAdapter) *MonitoringHandlers {
	return &MonitoringHandlers{orch: orch, ws: ws, start: time.Now(), adapter: adapter}
}

// HandleHealth reports ok once a solution is loaded, degraded otherwise.
func (h *MonitoringHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := responses.HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now().UTC(),
		Version:    version.Version,
		Uptime:     time.Since(h.start).Seconds(),
		BuildState: string(h.orch.Status().State),
	}
	status := http.StatusOK
	if sln := h.ws.Current(); sln != nil {
		resp.Solution = sln.Path
	} else {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	if err := writeJSON(w, status, resp); err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
	}
}
