// Package server exposes the trajectory sampler over HTTP for the browser
// game: JSON prediction, a health probe, and a WebSocket stream for clients
// that want a prediction per frame without polling.
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/flapcast/flapcast/internal/monitoring"
	"github.com/flapcast/flapcast/internal/policy"
)

// frameBudget is how long one prediction may take before it is late for the
// frame that requested it. The game renders at 60fps.
const frameBudget = 16 * time.Millisecond

// Server handles prediction requests against a policy provider
type Server struct {
	mu            sync.RWMutex
	provider      policy.Provider
	allowedOrigin string
	logger        zerolog.Logger
	upgrader      websocket.Upgrader
	monitor       *monitoring.LatencyMonitor
}

// New creates a server. allowedOrigin is echoed in CORS headers; "*" keeps
// the browser game usable from any origin, which is how the game ships.
func New(provider policy.Provider, allowedOrigin string, logger zerolog.Logger) *Server {
	s := &Server{
		provider:      provider,
		allowedOrigin: allowedOrigin,
		logger:        logger.With().Str("component", "predict_server").Logger(),
		monitor:       monitoring.NewLatencyMonitor(frameBudget, logger),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}
	return s
}

// SetProvider swaps the prediction backend, typically after a config
// reload. In-flight requests finish on the provider they started with.
func (s *Server) SetProvider(p policy.Provider) {
	s.mu.Lock()
	s.provider = p
	s.mu.Unlock()
}

func (s *Server) currentProvider() policy.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}

// Handler builds the full route table with the middleware chain applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/predict", s.handlePredict)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/stream", s.handleStream)
	return s.recoveryMiddleware(s.loggingMiddleware(s.corsMiddleware(mux)))
}
