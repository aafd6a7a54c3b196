// Package http exposes the JSON API over the state store and the derived
// aggregates. Handlers never compute on mutable state directly; they take a
// snapshot, run the pure aggregate functions, and memoize results keyed on
// the store generation.
package http

import (
	"context"
	"net/http"
	"sync"

	"financas/internal/cache"
	"financas/internal/config"
	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/middleware/ratelimit"
	"financas/internal/middleware/security"
	"financas/internal/middleware/trace"
	"financas/internal/state"
)

type Server struct {
	http.Server

	store     *state.Store
	formatter core.Formatter

	rateLimiter *ratelimit.Limiter

	// Memoization for derived data. Keys embed the store generation, so
	// stale entries are never served and age out via TTL.
	summaryCache *cache.LRUCache[summaryResponse]
	trendCache   *cache.LRUCache[trendResponse]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(cfg *config.Config, store *state.Store) *Server {
	mux := http.NewServeMux()

	s := &Server{
		store:     store,
		formatter: core.FormatterFor(store.Snapshot().CurrencyCode),

		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
		}),

		summaryCache: cache.NewLRUCache[summaryResponse](cfg.CacheMaxEntries, cfg.CacheTTL),
		trendCache:   cache.NewLRUCache[trendResponse](cfg.CacheMaxEntries, cfg.CacheTTL),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.trendCache)
	s.cacheManager.StartCleanup(cfg.CacheTTL)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/goals", s.handleGoals)
	mux.HandleFunc("/api/goals/contribute", s.handleGoalContribute)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/trend", s.handleTrend)
	mux.HandleFunc("/api/backup", s.handleBackupExport)
	mux.HandleFunc("/api/backup/import", s.handleBackupImport)
	mux.HandleFunc("/api/reset", s.handleReset)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(extractClientIP)
	limited := s.rateLimiter.Middleware(extractClientIP)
	logged := applog.Middleware(applog.Default().WithComponent(applog.ComponentHTTP))

	s.Server = http.Server{
		Addr:    ":" + cfg.Port,
		Handler: headers.Middleware(logged(tracer.Middleware(limited(mux)))),
	}

	return s
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
