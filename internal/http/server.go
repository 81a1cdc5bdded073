// Package http is the presentation boundary: it turns user intents into
// credential-store and ledger calls and serves the derived view model.
package http

import (
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"piggybank/internal/accounts"
	"piggybank/internal/cache"
	"piggybank/internal/ledger"
	"piggybank/internal/log"
	"piggybank/internal/middleware/ratelimit"
	"piggybank/internal/middleware/security"
	"piggybank/internal/middleware/trace"
	"piggybank/internal/storage"
	appweb "piggybank/web"
)

// Options tunes the server-side caches and limits.
type Options struct {
	CacheSize         int
	CacheTTL          time.Duration
	RequestsPerMinute int
}

// Server wires the domain into HTTP handlers.
type Server struct {
	accounts  *accounts.Store
	kv        storage.Store
	events    ledger.EventPublisher
	logger    *log.Logger
	startedAt time.Time

	viewCache *cache.LRUCache[ViewModel]
	// generation invalidates cached view models after any ledger mutation
	generation atomic.Int64
	// flight collapses concurrent recomputations of the same view key
	flight singleflight.Group

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
}

func NewServer(acc *accounts.Store, kv storage.Store, events ledger.EventPublisher, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	s := &Server{
		accounts:  acc,
		kv:        kv,
		events:    events,
		logger:    logger,
		startedAt: time.Now(),
		viewCache: cache.NewLRUCache[ViewModel](opts.CacheSize, opts.CacheTTL),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RequestsPerMinute,
		}),
		tracer: trace.NewMiddleware(extractClientIP),
	}
	return s
}

// Handler assembles routes and the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/signup", s.handleSignUp)
	mux.HandleFunc("POST /api/signin", s.handleSignIn)
	mux.HandleFunc("POST /api/signout", s.handleSignOut)
	mux.HandleFunc("GET /api/session", s.handleSession)

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("POST /api/transactions", s.handleAddTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /api/reset", s.handleReset)

	mux.Handle("GET /", http.FileServerFS(appweb.StaticFS))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(extractClientIP, nil)

	return s.tracer.Middleware(headers.Middleware(limited(mux)))
}

// HTTPServer wraps the handler in an http.Server with timeouts set.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        s.Handler(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}
}

// Close releases background resources.
func (s *Server) Close() {
	s.limiter.Stop()
}

// ViewCache exposes the cache for cleanup registration.
func (s *Server) ViewCache() *cache.LRUCache[ViewModel] {
	return s.viewCache
}

// invalidateViews makes every cached view model stale.
func (s *Server) invalidateViews() {
	s.generation.Add(1)
}

func extractClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
