package handlers

import (
	"net/http"

	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/server/responses"
	"git.home.luguber.info/inful/solvent/internal/solution"
	"git.home.luguber.info/inful/solvent/internal/util/sets"
)

// APIHandlers exposes the loaded solution.
type APIHandlers struct {
	ws      Workspace
	adapter *ferrors.HTTPErrorAdapter
}

// NewAPIHandlers creates solution handlers.
func NewAPIHandlers(ws Workspace, adapter *ferrors.HTTPErrorAdapter) *APIHandlers {
	return &APIHandlers{ws: ws, adapter: adapter}
}

// HandleSolution returns the project forest, the matrix axes and the load
// diagnostics.
func (h *APIHandlers) HandleSolution(w http.ResponseWriter, r *http.Request) {
	sln := h.ws.Current()
	if sln == nil {
		h.adapter.WriteErrorResponse(w, r, ferrors.NotFoundError("no solution loaded").Build())
		return
	}
	if err := writeJSONPretty(w, r, http.StatusOK, SolutionView(sln)); err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
	}
}

// HandleSelect sets one axis: ?axis=configuration&value=Release.
func (h *APIHandlers) HandleSelect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	axis, err := solution.ParseAxis(q.Get("axis"))
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	if err := h.ws.Select(axis, q.Get("value")); err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	cfg, plat := h.ws.Current().Matrix.Selection()
	if err := writeJSON(w, http.StatusOK, responses.SelectionResponse{Configuration: cfg, Platform: plat}); err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
	}
}

// HandleReload re-reads the solution file.
func (h *APIHandlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	sln, err := h.ws.Reload()
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	if err := writeJSONPretty(w, r, http.StatusOK, SolutionView(sln)); err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
	}
}

// SolutionView converts a solution into its API representation.
func SolutionView(sln *solution.Solution) responses.SolutionResponse {
	cfg, plat := sln.Matrix.Selection()
	resp := responses.SolutionResponse{
		Path:           sln.Path,
		Name:           sln.FileName(),
		FormatVersion:  sln.FormatVersion,
		Configuration:  cfg,
		Platform:       plat,
		Configurations: sln.Matrix.Configurations(),
		Platforms:      sln.Matrix.Platforms(),
		Projects:       make([]responses.ProjectSummary, 0, len(sln.Roots)),
	}
	visited := sets.New[*solution.Project]()
	for _, p := range sln.Roots {
		resp.Projects = append(resp.Projects, projectView(sln, p, visited))
	}
	for _, d := range sln.Diagnostics {
		resp.Diagnostics = append(resp.Diagnostics, responses.DiagnosticResponse{
			Code:    string(d.Category()),
			Message: d.Message(),
			Details: map[string]any(d.Context()),
		})
	}
	return resp
}

func projectView(sln *solution.Solution, p *solution.Project, visited sets.Set[*solution.Project]) responses.ProjectSummary {
	visited.Add(p)
	v := responses.ProjectSummary{
		ID:      p.ID,
		Name:    p.Name,
		Display: solution.DisplayName(p.Root),
		Kind:    string(p.Kind),
		Path:    p.Path,
		Loaded:  p.Loaded,
		Builds:  p.Kind == solution.KindNative && sln.Matrix.BuildsSelected(p.ID),
		Files:   len(p.Files),
	}
	for _, c := range p.Children {
		if visited.Has(c) {
			continue
		}
		v.Children = append(v.Children, projectView(sln, c, visited))
	}
	return v
}
