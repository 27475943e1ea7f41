// Package server exposes blackjack tables over websockets so a browser can
// drive the same engine as the terminal client. Each session gets its own
// table and bankroll; a session may only be connected once at a time.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lox/casino/internal/bankroll"
	"github.com/lox/casino/internal/game"
	"github.com/lox/casino/internal/randutil"
)

const maxSessionLength = 64

// Options configure the tables the server opens
type Options struct {
	Rules  game.Rules
	Ledger bankroll.Config
	// Seed is the parent seed; each session derives its own shoe from it
	Seed  int64
	Clock quartz.Clock
}

// Server hosts one table per connected session
type Server struct {
	store    bankroll.Store
	opts     Options
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu       sync.Mutex
	sessions map[string]*Connection
	opened   int
}

// NewServer creates a server whose ledgers write through to store
func NewServer(store bankroll.Store, opts Options, logger *log.Logger) (*Server, error) {
	if store == nil {
		return nil, errors.New("bankroll store is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	if opts.Rules.DealerStandsOn == 0 {
		opts.Rules = game.DefaultRules()
	}
	if err := opts.Rules.Validate(); err != nil {
		return nil, err
	}
	if opts.Ledger.StartingBalance == 0 && opts.Ledger.TopUpAmount == 0 {
		opts.Ledger = bankroll.DefaultConfig()
	}
	if opts.Ledger.Catalog == nil {
		opts.Ledger.Catalog = bankroll.DefaultCatalog()
	}
	if err := opts.Ledger.Catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}

	return &Server{
		store: store,
		opts:  opts,
		upgrader: websocket.Upgrader{
			// Any origin may connect
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:   logger.WithPrefix("server"),
		sessions: make(map[string]*Connection),
	}, nil
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/api/catalog", s.handleCatalog)
	r.Get("/ws", s.handleWebSocket)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Starting WebSocket server", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Stop closes every open connection
func (s *Server) Stop() {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.sessions))
	for _, c := range s.sessions {
		if c != nil {
			conns = append(conns, c)
		}
	}
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
}

// Sessions returns how many sessions are connected
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// claim reserves a session, returning false if it is already connected
func (s *Server) claim(session string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session]; ok {
		return false
	}
	s.sessions[session] = nil
	return true
}

func (s *Server) attach(session string, c *Connection) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session] = c
	s.opened++
	return s.opened
}

func (s *Server) release(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, session)
}

// handleWebSocket upgrades a client and seats it at its session's table
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")
	if session == "" {
		session = uuid.NewString()
	} else if !validSession(session) {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	if !s.claim(session) {
		http.Error(w, "session already connected", http.StatusConflict)
		return
	}

	ledger, err := bankroll.Open(r.Context(), s.store, session, s.opts.Ledger, s.logger)
	if err != nil {
		s.release(session)
		s.logger.Error("Failed to open bankroll", "session", session, "error", err)
		http.Error(w, "failed to open bankroll", http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.release(session)
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, session, s.logger)
	n := s.attach(session, client)

	table := game.NewTable(
		randutil.New(randutil.Derive(s.opts.Seed, n)),
		ledger,
		game.WithRules(s.opts.Rules),
		game.WithClock(s.opts.Clock),
		game.WithLogger(s.logger),
		game.WithObserver(client.Observe),
	)
	client.SetTable(table)
	client.sendCatalog()
	client.Observe(table.Snapshot())
	client.Start()

	s.logger.Info("Client connected", "session", session, "total", s.Sessions())

	go func() {
		<-client.Done()
		table.Close()
		s.release(session)
		s.logger.Info("Client disconnected", "session", session, "total", s.Sessions())
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, CatalogFromShop(s.opts.Ledger.Catalog))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"requestId", middleware.GetReqID(r.Context()))
	})
}

// validSession accepts ids that are safe to use as store key prefixes
func validSession(id string) bool {
	if len(id) > maxSessionLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
