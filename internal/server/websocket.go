package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rxtech-lab/stockview/pkg/errors"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4 << 10
)

// wsMessage is what the server pushes over the socket: a snapshot or an error.
type wsMessage struct {
	Snapshot *SnapshotResponse `json:"snapshot,omitempty"`
	Error    *ErrorResponse    `json:"error,omitempty"`
}

// handleWebSocket gives each connection its own session. InitialLoad is
// dispatched on connect; every action message is answered with a snapshot.
// The session is dropped when the connection closes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("WebSocket upgrade failed", zap.Error(err))

		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)

	ctx := r.Context()

	sess, snapshot, err := s.manager.Create(ctx)
	if err != nil {
		s.sendError(conn, err)

		return
	}
	defer s.manager.Remove(sess.ID())

	s.logger.Debug("WebSocket connected", zap.String("session", sess.ID()))

	response := newSnapshotResponse(snapshot)
	if err := s.send(conn, wsMessage{Snapshot: &response}); err != nil {
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("WebSocket closed unexpectedly", zap.String("session", sess.ID()), zap.Error(err))
			}

			return
		}

		var req ActionRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			if err := s.sendError(conn, errors.Wrap(errors.ErrCodeInvalidAction, "malformed action message", err)); err != nil {
				return
			}

			continue
		}

		action, err := s.parseAction(req)
		if err != nil {
			if err := s.sendError(conn, err); err != nil {
				return
			}

			continue
		}

		snapshot, err := sess.Dispatch(ctx, action)
		if err != nil {
			s.sendError(conn, err)

			return
		}

		response := newSnapshotResponse(snapshot)
		if err := s.send(conn, wsMessage{Snapshot: &response}); err != nil {
			return
		}
	}
}

func (s *Server) send(conn *websocket.Conn, msg wsMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Debug("WebSocket write failed", zap.Error(err))

		return err
	}

	return nil
}

func (s *Server) sendError(conn *websocket.Conn, err error) error {
	return s.send(conn, wsMessage{Error: &ErrorResponse{
		Code:    errors.GetCode(err),
		Message: errors.Describe(err),
	}})
}
