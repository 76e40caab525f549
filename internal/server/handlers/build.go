package handlers

import (
	"net/http"

	"git.home.luguber.info/inful/solvent/internal/build"
	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/server/responses"
)

// BuildHandlers starts, stops and acknowledges builds.
type BuildHandlers struct {
	orch    Orchestrator
	adapter *ferrors.HTTPErrorAdapter
}

// NewBuildHandlers creates build handlers.
func NewBuildHandlers(orch Orchestrator, adapter *ferrors.HTTPErrorAdapter) *BuildHandlers {
	return &BuildHandlers{orch: orch, adapter: adapter}
}

// HandleBuild starts the build target.
func (h *BuildHandlers) HandleBuild(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, build.TargetBuild)
}

// HandleClean starts the clean target.
func (h *BuildHandlers) HandleClean(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, build.TargetClean)
}

func (h *BuildHandlers) execute(w http.ResponseWriter, r *http.Request, target string) {
	if err := h.orch.Execute(target); err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	st := h.orch.Status()
	if err := writeJSON(w, http.StatusAccepted, responses.TriggerResponse{Status: string(st.State), SessionID: st.SessionID}); err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
	}
}

// HandleStop asks a running build to stop. It succeeds when nothing runs.
func (h *BuildHandlers) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.orch.Stop()
	st := h.orch.Status()
	if err := writeJSON(w, http.StatusAccepted, responses.TriggerResponse{Status: string(st.State), SessionID: st.SessionID}); err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
	}
}

// HandleAcknowledge returns a finished orchestrator to idle.
func (h *BuildHandlers) HandleAcknowledge(w http.ResponseWriter, r *http.Request) {
	if !h.orch.Acknowledge() {
		h.adapter.WriteErrorResponse(w, r, ferrors.ValidationError("no finished build to acknowledge").
			WithContext("state", string(h.orch.Status().State)).Build())
		return
	}
	st := h.orch.Status()
	if err := writeJSON(w, http.StatusOK, responses.TriggerResponse{Status: string(st.State), SessionID: st.SessionID}); err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
	}
}

// HandleStatus reports the orchestrator state.
func (h *BuildHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if err := writeJSONPretty(w, r, http.StatusOK, h.orch.Status()); err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
	}
}
