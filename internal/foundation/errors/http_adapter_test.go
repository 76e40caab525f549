package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorAdapter_StatusCodeFor(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil", err: nil, expected: http.StatusOK},
		{name: "validation", err: ValidationError("bad").Build(), expected: http.StatusBadRequest},
		{name: "not found", err: NotFoundError("missing").Build(), expected: http.StatusNotFound},
		{name: "format", err: MalformedFormatError("no header").Build(), expected: http.StatusUnprocessableEntity},
		{name: "spawn", err: SpawnError("no tool").Build(), expected: http.StatusConflict},
		{name: "runtime", err: RuntimeError("closed").Build(), expected: http.StatusServiceUnavailable},
		{name: "unclassified", err: errors.New("plain"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.StatusCodeFor(tt.err))
		})
	}
}

func TestHTTPErrorAdapter_WriteErrorResponse(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/select", nil)

	err := ValidationError("unknown axis").WithContext("axis", "flavour").Build()
	adapter.WriteErrorResponse(rec, req, err)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "unknown axis", payload.Error)
	assert.Equal(t, "validation", payload.Code)
	assert.Equal(t, "flavour", payload.Details["axis"])
}

func TestHTTPErrorAdapter_FormatErrorResponse(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)

	resp := adapter.FormatErrorResponse(NetworkError("nats unavailable").Build())
	assert.Equal(t, "nats unavailable", resp.Error)
	assert.True(t, resp.Retryable)
	assert.Equal(t, true, resp.Details["retryable"])

	plain := adapter.FormatErrorResponse(errors.New("plain"))
	assert.Equal(t, "plain", plain.Error)
	assert.Empty(t, plain.Code)
}
