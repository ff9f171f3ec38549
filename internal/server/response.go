package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/rxtech-lab/stockview/internal/chart"
	"github.com/rxtech-lab/stockview/internal/session"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
)

// ActionRequest is an action in its wire form.
type ActionRequest struct {
	Type   string `json:"type" validate:"required,oneof=search preset toggle_markers initial_load"`
	Symbol string `json:"symbol,omitempty" validate:"max=32"`
	Preset string `json:"preset,omitempty" validate:"required_if=Type preset"`
}

// StateResponse is the view state as the client sees it.
type StateResponse struct {
	Symbol        string           `json:"symbol"`
	Range         *types.DateRange `json:"range"`
	ShowMarkers   bool             `json:"showMarkers"`
	IsInitialLoad bool             `json:"isInitialLoad"`
}

// SnapshotResponse answers every session request.
type SnapshotResponse struct {
	ID      string        `json:"id"`
	Version uint64        `json:"version"`
	State   StateResponse `json:"state"`
	Figure  chart.Figure  `json:"figure"`
	Error   string        `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

func newSnapshotResponse(s session.Snapshot) SnapshotResponse {
	state := StateResponse{
		Symbol:        s.State.ActiveSymbol,
		Range:         nil,
		ShowMarkers:   s.State.ShowMarkers,
		IsInitialLoad: s.State.IsInitialLoad,
	}

	if r, ok := s.State.Range(); ok {
		state.Range = &r
	}

	return SnapshotResponse{
		ID:      s.SessionID,
		Version: s.Version,
		State:   state,
		Figure:  chart.Project(s),
		Error:   s.ErrorMessage(),
	}
}

// statusFor maps an error code onto an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidParameter, errors.ErrCodeInvalidAction, errors.ErrCodeInvalidPreset,
		errors.ErrCodeInvalidSymbol, errors.ErrCodeInvalidProvider:
		return http.StatusBadRequest
	case errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRenderFailed:
		return http.StatusConflict
	case errors.ErrCodeDataUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("Failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusFor(err), ErrorResponse{
		Code:    errors.GetCode(err),
		Message: errors.Describe(err),
	})
}
