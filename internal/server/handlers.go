package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rxtech-lab/stockview/internal/chart"
	"github.com/rxtech-lab/stockview/internal/version"
	"github.com/rxtech-lab/stockview/internal/view"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
)

// maxActionBody bounds an action request body.
const maxActionBody = 4 << 10

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if _, err := w.Write(indexHTML); err != nil {
		s.logger.Warn("Failed to write index page", zap.Error(err))
	}
}

// handleCreateSession handles POST /api/sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	_, snapshot, err := s.manager.Create(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, newSnapshotResponse(snapshot))
}

// handleGetSession handles GET /api/sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, newSnapshotResponse(sess.Snapshot()))
}

// handleDeleteSession handles DELETE /api/sessions/{id}
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.manager.Get(id); err != nil {
		s.writeError(w, err)

		return
	}

	s.manager.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

// handleAction handles POST /api/sessions/{id}/actions
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	var req ActionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBody)).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidAction, "malformed action body", err))

		return
	}

	action, err := s.parseAction(req)
	if err != nil {
		s.writeError(w, err)

		return
	}

	snapshot, err := sess.Dispatch(r.Context(), action)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, newSnapshotResponse(snapshot))
}

// handleChartPNG handles GET /api/sessions/{id}/chart.png?width=&height=
func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	width, err := dimension(r, "width", chart.DefaultWidth)
	if err != nil {
		s.writeError(w, err)

		return
	}

	height, err := dimension(r, "height", chart.DefaultHeight)
	if err != nil {
		s.writeError(w, err)

		return
	}

	png, err := chart.RenderPNG(sess.Snapshot(), width, height)
	if err != nil {
		s.writeError(w, err)

		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))

	if _, err := w.Write(png); err != nil {
		s.logger.Warn("Failed to write chart", zap.Error(err))
	}
}

// handleProviders handles GET /api/providers
func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	names := marketdata.GetSupportedProviders()
	providers := make([]marketdata.ProviderInfo, 0, len(names))

	for _, name := range names {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			s.writeError(w, err)

			return
		}

		providers = append(providers, info)
	}

	s.writeJSON(w, http.StatusOK, providers)
}

// handleVersion handles GET /api/version
func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"version": version.GetVersion()})
}

// parseAction validates req and turns it into a view action.
func (s *Server) parseAction(req ActionRequest) (view.Action, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidAction, "invalid action", err)
	}

	return view.ParseAction(req.Type, req.Symbol, req.Preset)
}

func dimension(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "%s must be a positive integer", name)
	}

	return v, nil
}
