// Package responses defines API response types used by the control server handlers.
package responses

import (
	"time"

	"git.home.luguber.info/inful/solvent/internal/buildevent"
)

// TriggerResponse is returned by the build, clean, stop and ack endpoints.
type TriggerResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id,omitempty"`
}

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version"`
	Uptime     float64   `json:"uptime"`
	BuildState string    `json:"build_state"`
	Solution   string    `json:"solution,omitempty"`
}

// EventsResponse carries drained build events in their wire encoding.
type EventsResponse struct {
	Events  []buildevent.Event `json:"events"`
	Count   int                `json:"count"`
	Dropped uint64             `json:"dropped,omitempty"`
}

// SolutionResponse describes the loaded solution.
type SolutionResponse struct {
	Path           string               `json:"path"`
	Name           string               `json:"name"`
	FormatVersion  string               `json:"format_version"`
	Configuration  string               `json:"configuration"`
	Platform       string               `json:"platform"`
	Configurations []string             `json:"configurations"`
	Platforms      []string             `json:"platforms"`
	Projects       []ProjectSummary     `json:"projects"`
	Diagnostics    []DiagnosticResponse `json:"diagnostics,omitempty"`
}

// ProjectSummary is one node of the project forest.
type ProjectSummary struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Display  string           `json:"display"`
	Kind     string           `json:"kind"`
	Path     string           `json:"path"`
	Loaded   bool             `json:"loaded"`
	Builds   bool             `json:"builds"`
	Files    int              `json:"files"`
	Children []ProjectSummary `json:"children,omitempty"`
}

// DiagnosticResponse is one non-fatal problem found while loading.
type DiagnosticResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// SelectionResponse reports the selection after a change.
type SelectionResponse struct {
	Configuration string `json:"configuration"`
	Platform      string `json:"platform"`
}
