// Package http exposes the ledger over a JSON API. Every response is
// derived from the session resolver's current snapshot, so the API
// surface mirrors what the resolver has decided about the caller.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"ledger/internal/backend"
	"ledger/internal/cache"
	applog "ledger/internal/log"
	"ledger/internal/middleware/ratelimit"
	"ledger/internal/middleware/security"
	"ledger/internal/middleware/trace"
	"ledger/internal/services"
	"ledger/internal/session"
)

type Server struct {
	http.Server

	resolver *session.Resolver
	auth     backend.AuthGateway
	txs      *services.TransactionService

	limiter  *ratelimit.Limiter
	detector *security.Detector

	// Dashboard responses are memoized per filter. listVersion is bumped
	// on every mutation so stale entries are never served.
	dashCache    *cache.LRUCache[dashboardResponse]
	cacheManager *cache.Manager
	listVersion  atomic.Int64

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, resolver *session.Resolver, auth backend.AuthGateway, txs *services.TransactionService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		resolver:     resolver,
		auth:         auth,
		txs:          txs,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     security.NewDetector(),
		dashCache:    cache.NewLRUCache[dashboardResponse](200, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.dashCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("POST /api/signout", s.handleSignOut)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.detector.ExtractClientIP)
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)
	logging := applog.Middleware(applog.New(applog.Config{Component: applog.ComponentHTTP}))

	s.Server = http.Server{
		Addr:    addr,
		Handler: tracer.Middleware(headers.Middleware(logging(limited(s.suspiciousWatch(mux))))),
	}

	return s
}

// suspiciousWatch flags requests matching known probe patterns. They are
// logged and counted, not rejected; the patterns are too coarse to block.
func (s *Server) suspiciousWatch(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request pattern",
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateLists retires every memoized dashboard entry by bumping the
// version that is part of the cache key.
func (s *Server) invalidateLists() {
	s.listVersion.Add(1)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
