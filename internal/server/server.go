package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/emilythestrangee/reddit-clone/api/internal/auth"
	"github.com/emilythestrangee/reddit-clone/api/internal/config"
	"github.com/emilythestrangee/reddit-clone/api/internal/database"
	"github.com/emilythestrangee/reddit-clone/api/internal/feed"
	"github.com/emilythestrangee/reddit-clone/api/internal/handlers"
	"github.com/emilythestrangee/reddit-clone/api/internal/metrics"
	"github.com/emilythestrangee/reddit-clone/api/internal/middleware"
	"github.com/emilythestrangee/reddit-clone/api/internal/repositories"
	"github.com/emilythestrangee/reddit-clone/api/internal/votes"
)

// devSecret signs tokens in development when no JWT_SECRET is set.
const devSecret = "reddit-dev-secret"

// limiterSweep is how often idle rate limit buckets are dropped.
const limiterSweep = time.Minute

type Server struct {
	cfg      *config.Config
	db       database.Service
	handler  *handlers.Handler
	tokens   *auth.TokenManager
	limiter  *middleware.IPRateLimiter
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// New wires repositories, the vote reconciler and the handlers on top of db.
// Collectors are registered with reg, which also backs /metrics.
func New(cfg *config.Config, db database.Service, logger *slog.Logger, reg *prometheus.Registry) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		logger.Warn("JWT_SECRET not set, using the development secret")
		secret = devSecret
	}
	tokens := auth.NewTokenManager(secret, cfg.Auth.TokenTTL)

	m := metrics.New(reg)
	repos := repositories.New(db.GetDB())
	reconciler := votes.NewReconciler(repos.Votes,
		votes.WithMaxRetries(cfg.Votes.MaxRetries),
		votes.WithRecorder(m),
		votes.WithLogger(logger),
	)
	assembler := feed.NewAssembler(votes.NewScorer(repos.Votes), repos)

	s := &Server{
		cfg: cfg,
		db:  db,
		handler: handlers.NewHandler(handlers.Deps{
			Repos:      repos,
			Tokens:     tokens,
			Reconciler: reconciler,
			Feed:       assembler,
			Logger:     logger,
		}),
		tokens:   tokens,
		metrics:  m,
		gatherer: reg,
		logger:   logger,
	}
	if cfg.RateLimit.RPS > 0 {
		s.limiter = middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	return s
}

// HTTPServer returns the configured *http.Server around the router.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + s.cfg.Server.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  s.cfg.Server.IdleTimeout,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests within
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := s.HTTPServer()

	if s.limiter != nil {
		go s.limiter.Run(ctx, limiterSweep)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("🚀 Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server", "timeout", s.cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(s.cfg.Telemetry.ServiceName))
	r.Use(cors.New(s.corsConfig()))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(middleware.Metrics(s.metrics))
	if s.limiter != nil {
		r.Use(middleware.RateLimit(s.limiter))
	}

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	h := s.handler
	api := r.Group("/api")

	// Reads and votes see the viewer when a token is sent. Votes reject
	// anonymous callers inside the reconciler.
	public := api.Group("")
	public.Use(middleware.OptionalAuth(s.tokens))
	{
		public.POST("/auth/register", h.Auth.Register)
		public.POST("/auth/login", h.Auth.Login)

		public.GET("/users/:username", h.User.GetUserProfile)

		public.GET("/communities", h.Community.GetCommunities)
		public.GET("/communities/:name", h.Community.GetCommunity)

		public.GET("/posts", h.Post.GetPosts)
		public.GET("/posts/:id", h.Post.GetPost)
		public.POST("/posts/:id/vote", h.Vote.VotePost)

		public.GET("/comments", h.Comment.GetComments)
		public.POST("/comments/:id/vote", h.Vote.VoteComment)
	}

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(s.tokens))
	{
		protected.GET("/me", h.Auth.GetMe)
		protected.PUT("/users/:username", h.User.UpdateUserProfile)

		protected.POST("/communities", h.Community.CreateCommunity)
		protected.POST("/communities/:name/subscribe", h.Community.ToggleSubscription)

		protected.POST("/posts", h.Post.CreatePost)
		protected.PUT("/posts/:id", h.Post.UpdatePost)
		protected.DELETE("/posts/:id", h.Post.DeletePost)

		protected.POST("/comments", h.Comment.CreateComment)
		protected.PUT("/comments/:id", h.Comment.UpdateComment)
		protected.DELETE("/comments/:id", h.Comment.DeleteComment)
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	stats := s.db.Health(c.Request.Context())
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, stats)
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	origins := s.cfg.Server.AllowedOrigins
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
