// ABOUTME: Server orchestrator that owns the HTTP listener, hub, and WebSocket endpoint
// ABOUTME: Manages startup, health endpoints, and graceful shutdown lifecycle

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/arclight-systems/relay-hub/internal/config"
	"github.com/arclight-systems/relay-hub/internal/hub"
	"github.com/arclight-systems/relay-hub/internal/protocol"
)

// Server hosts the event hub behind a single HTTP listener: the WebSocket
// endpoint at /ws plus health endpoints.
type Server struct {
	config     *config.Config
	hub        *hub.Hub
	wsHandler  *WSHandler
	httpServer *http.Server
	logger     *slog.Logger
	startedAt  time.Time
}

// New creates a Server wired to the given collaborators. version is reported
// in the ServerInfo greeting.
func New(cfg *config.Config, collab Collaborators, version string, logger *slog.Logger) *Server {
	h := hub.New(hub.Options{
		MailboxCapacity: cfg.Hub.MailboxCapacity,
		LogCapacity:     cfg.Hub.LogCapacity,
		LogRetention:    cfg.Hub.LogRetention,
		SweepInterval:   cfg.Hub.SweepInterval,
		Logger:          logger,
	})

	s := &Server{
		config:    cfg,
		hub:       h,
		logger:    logger.With("component", "server"),
		startedAt: time.Now(),
	}

	info := protocol.ServerInfo{
		Name:         "relay-hub",
		Version:      version,
		Capabilities: capabilitiesFor(collab),
		StartedAt:    s.startedAt.UnixMilli(),
	}
	s.wsHandler = NewWSHandler(h, collab, info, cfg.Server.AllowedOrigins, cfg.Server.AllowEmptyOrigin, logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", s.wsHandler)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/ready", s.handleReady)

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// capabilitiesFor advertises only what the wired collaborators can serve.
func capabilitiesFor(collab Collaborators) []string {
	caps := []string{"subscribe", "replay", "acknowledge"}
	if collab.Sync != nil {
		caps = append(caps, "sync")
	}
	if collab.Feedback != nil {
		caps = append(caps, "feedback")
	}
	if collab.Notes != nil {
		caps = append(caps, "notes")
	}
	if collab.Memory != nil {
		caps = append(caps, "memory")
	}
	if collab.Generation != nil {
		caps = append(caps, "generation-control")
	}
	if collab.Optimizer != nil {
		caps = append(caps, "optimization")
	}
	return caps
}

// Hub exposes the hub for embedding processes that publish server-side frames
// (generation pipelines, optimizers).
func (s *Server) Hub() *hub.Hub { return s.hub }

// Run starts the server and blocks until the context is canceled or the
// listener fails. Returns nil on graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Server.HTTPAddr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	serverErr := s.waitForShutdownSignal(ctx, errCh)
	shutdownErr := s.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// waitForShutdownSignal waits for context cancellation or server error.
func (s *Server) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		return err
	}
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops accepting connections, tears down the hub, and waits for
// in-flight handlers up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	err := s.httpServer.Shutdown(ctx)
	s.hub.Close()

	if err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady reports hub statistics alongside readiness.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	stats := s.hub.Stats()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":        "ready",
		"uptime":        time.Since(s.startedAt).String(),
		"connections":   stats.Connections,
		"conversations": stats.Conversations,
	})
}
