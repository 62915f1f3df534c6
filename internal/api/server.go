// Package api exposes the HTTP front-end: the login entry point with bounded
// admission, pool introspection, health, and Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nmhoang23/rotauth/internal/core/domain"
	"github.com/nmhoang23/rotauth/internal/login"
	"github.com/nmhoang23/rotauth/internal/pool"
)

// LoginService is the orchestrator capability the API consumes.
type LoginService interface {
	RunWithRetry(ctx context.Context, req login.Request, preferred *domain.Resource) *login.Session
}

// Config holds API server settings.
type Config struct {
	Port          int
	MaxConcurrent int
	MaxWait       time.Duration
}

// Server provides the HTTP endpoints.
type Server struct {
	svc    LoginService
	pool   *pool.Pool
	gate   *Gate
	server *http.Server
	log    *slog.Logger
}

// NewServer wires the routes and admission gate.
func NewServer(cfg Config, svc LoginService, p *pool.Pool, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	mux := http.NewServeMux()
	s := &Server{
		svc:  svc,
		pool: p,
		gate: NewGate(cfg.MaxConcurrent, cfg.MaxWait),
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: mux,
		},
		log: log,
	}

	mux.HandleFunc("/v1/login", s.handleLogin)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/pool", s.handlePool)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info("API server listening", "addr", s.server.Addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type loginRequest struct {
	TargetURL string `json:"target_url"`
	Username  string `json:"username"`
	Password  string `json:"password"`

	// Proxy optionally pins the first attempt to a specific resource.
	Proxy string `json:"proxy,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.TargetURL == "" || req.Username == "" || req.Password == "" {
		http.Error(w, "target_url, username and password are required", http.StatusBadRequest)
		return
	}

	var preferred *domain.Resource
	if req.Proxy != "" {
		res, err := domain.ParseResource(req.Proxy)
		if err != nil {
			http.Error(w, "invalid proxy", http.StatusBadRequest)
			return
		}
		preferred = &res
	}

	if err := s.gate.Acquire(r.Context()); err != nil {
		if errors.Is(err, ErrGateFull) {
			http.Error(w, err.Error(), http.StatusTooManyRequests)
			return
		}
		return // client went away
	}
	defer s.gate.Release()

	session := s.svc.RunWithRetry(r.Context(), login.Request{
		TargetURL: req.TargetURL,
		Credentials: domain.Credentials{
			Username: req.Username,
			Password: req.Password,
		},
	}, preferred)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCodeFor(session.Status))
	if err := json.NewEncoder(w).Encode(session); err != nil {
		s.log.Warn("Failed to encode login response", "error", err)
	}
}

// statusCodeFor lets callers apply different backpressure per terminal class:
// pool exhaustion is a 503 they should back off from, a rejected credential
// is a definitive 401/403.
func statusCodeFor(status domain.TerminalStatus) int {
	switch status {
	case domain.StatusSuccess:
		return http.StatusOK
	case domain.StatusCredentialRejected:
		return http.StatusUnauthorized
	case domain.StatusTargetRejected:
		return http.StatusForbidden
	case domain.StatusPoolExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	views := s.pool.Snapshot()
	available := 0
	for _, v := range views {
		if v.Available {
			available++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"resources": len(views),
		"available": available,
	})
}

func (s *Server) handlePool(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.pool.Snapshot())
}
