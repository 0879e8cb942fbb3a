package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"jokes-api/internal/config"
	"jokes-api/internal/db"
	"jokes-api/pkg/utils/markdown"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	cfg       *config.Config
	store     *db.Store
	log       *zap.Logger
	tokenAuth *jwtauth.JWTAuth
	metrics   *metrics
	md        *markdown.Renderer
}

func New(cfg *config.Config, store *db.Store, log *zap.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		store:   store,
		log:     log,
		metrics: newMetrics(),
	}
	s.md = markdown.New(markdown.Options{
		HardWraps:   cfg.Markdown.HardWraps,
		Typographer: cfg.Markdown.Typographer,
	})
	if cfg.Auth.Enabled() {
		s.tokenAuth = jwtauth.New("HS256", cfg.Auth.SignKey, nil)
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID) // add unique id to each request context
	r.Use(middleware.RealIP)    // add request RemoteAddr to X-Real-IP
	r.Use(s.logRequests)        // log end of each request
	r.Use(middleware.Recoverer) // recover and log from panic, return 500
	r.Use(s.metrics.instrument)

	r.Get("/healthz", s.handle(s.health))
	r.Handle("/metrics", s.metrics.handler())

	r.Group(func(r chi.Router) {
		// tokens are optional: they only pick the creator of new content
		if s.tokenAuth != nil {
			r.Use(jwtauth.Verifier(s.tokenAuth))
		}
		s.mountUsers(r)
		s.mountJokes(r)
		s.mountPosts(r)
	})

	r.NotFound(s.handle(func(w http.ResponseWriter, r *http.Request) error {
		return notFound("route")
	}))
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.ListenAddr())
	if err != nil {
		return err
	}
	if s.cfg.Server.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.cfg.Server.MaxConns)
	}

	srv := &http.Server{
		Handler:      s.Routes(),
		ErrorLog:     zap.NewStdLog(s.log),
		IdleTimeout:  time.Minute,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.log.Info("server running", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
