// Package server exposes dashboard sessions over HTTP and WebSocket.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/session"
	"github.com/rxtech-lab/stockview/pkg/errors"
)

const (
	defaultReadHeaderTimeout = 10 * time.Second
	shutdownTimeout          = 5 * time.Second
)

// Server serves the dashboard page, its JSON API and the WebSocket channel.
type Server struct {
	manager  *session.Manager
	logger   *logger.Logger
	validate *validator.Validate
	upgrader websocket.Upgrader

	readHeaderTimeout time.Duration

	httpServer *http.Server
	listener   net.Listener
}

// Option customises a Server.
type Option func(*Server)

// WithReadHeaderTimeout bounds how long a client may take to send headers.
func WithReadHeaderTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.readHeaderTimeout = d
	}
}

// NewServer creates a server whose sessions come from manager.
func NewServer(manager *session.Manager, log *logger.Logger, opts ...Option) *Server {
	if log == nil {
		log = logger.NewNop()
	}

	s := &Server{
		manager:  manager,
		logger:   log,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		readHeaderTimeout: defaultReadHeaderTimeout,
		httpServer:        nil,
		listener:          nil,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.handleWebSocket)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/actions", s.handleAction).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/chart.png", s.handleChartPNG).Methods(http.MethodGet)
	api.HandleFunc("/providers", s.handleProviders).Methods(http.MethodGet)
	api.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)

	return router
}

// Start listens on address and serves in the background.
// An empty address or ":0" picks a free port.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to listen on %s", address)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: s.readHeaderTimeout,
	}

	s.logger.Info("Server listening", zap.String("address", s.Address()))

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down, waiting for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// BaseURL returns the base URL for the server.
func (s *Server) BaseURL() string {
	return "http://" + s.Address()
}

// WebSocketURL returns the URL of the WebSocket endpoint.
func (s *Server) WebSocketURL() string {
	return "ws://" + s.Address() + "/ws"
}
