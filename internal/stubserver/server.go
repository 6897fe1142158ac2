package stubserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/muurk/emailreply/internal/discovery"
	"github.com/muurk/emailreply/internal/logging"
	"github.com/muurk/emailreply/internal/version"
)

// DefaultPort matches the client's default base URL
const DefaultPort = 8080

// shutdownTimeout bounds how long in-flight requests get on shutdown
const shutdownTimeout = 10 * time.Second

// Config holds the stub server configuration
type Config struct {
	Host string
	Port int    // 0 picks a free port
	Path string // route served, default discovery.DefaultPath

	// Latency delays every reply, to exercise the submitting state
	Latency time.Duration

	// FailStatus, when non-zero, makes every request fail with this status
	// and FailMessage as the plain-text body
	FailStatus  int
	FailMessage string

	// Advertise registers the server over mDNS as Instance
	Advertise bool
	Instance  string
}

// Server is a local stand-in for the reply-generation service
type Server struct {
	config   *Config
	router   chi.Router
	http     *http.Server
	listener net.Listener
	ad       *discovery.Advertisement

	mu       sync.Mutex
	requests int
}

// New creates a new Server instance
func New(config *Config) *Server {
	cfg := *config
	if cfg.Path == "" {
		cfg.Path = discovery.DefaultPath
	}
	if cfg.Instance == "" {
		cfg.Instance = "emailreply-stub"
	}
	if cfg.FailStatus != 0 && cfg.FailMessage == "" {
		cfg.FailMessage = http.StatusText(cfg.FailStatus)
	}

	s := &Server{config: &cfg}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.requestLog)
	r.Post(cfg.Path, s.handleGenerate)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	s.router = r

	return s
}

// Handler returns the router, for use with httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen binds the listening socket. Start calls it when needed; calling
// it first lets callers learn the address of a port-0 server.
func (s *Server) Listen() (net.Addr, error) {
	if s.listener != nil {
		return s.listener.Addr(), nil
	}
	addr := net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	return ln.Addr(), nil
}

// Start serves until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr, err := s.Listen()
	if err != nil {
		return err
	}

	s.http = &http.Server{
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.config.Latency + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logging.Info("Starting stub reply server",
		zap.String("addr", addr.String()),
		zap.String("path", s.config.Path),
		zap.Duration("latency", s.config.Latency),
		zap.Int("fail_status", s.config.FailStatus),
	)

	if s.config.Advertise {
		port := addr.(*net.TCPAddr).Port
		ad, err := discovery.Advertise(s.config.Instance, port, s.config.Path, "version="+version.Version)
		if err != nil {
			logging.Warn("mDNS advertisement failed, continuing without it", zap.Error(err))
		} else {
			s.ad = ad
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.http.Serve(s.listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
	case <-ctx.Done():
	case err := <-errChan:
		s.ad.Shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown withdraws the advertisement and stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down stub reply server...")
	s.ad.Shutdown()

	if s.http == nil {
		if s.listener != nil {
			return s.listener.Close()
		}
		return nil
	}
	if err := s.http.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		return s.http.Close()
	}

	logging.Sync()
	return nil
}

// Requests returns the number of generation requests served
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Addr returns the listening address once Listen has run
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
