package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/02loveslollipop/climate-controller/services/controller/config"
)

// Server bundles router and dependencies for the controller API.
type Server struct {
	cfg       config.Config
	responder *Responder
	engine    *gin.Engine
	logger    *slog.Logger
}

// New constructs a server with routes and middleware.
func New(cfg config.Config, responder *Responder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	// Every target must answer 200, including "/data/" and other near misses.
	// Unregistered methods fall through to NoRoute.
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	server := &Server{cfg: cfg, responder: responder, engine: engine, logger: logger}
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the gin engine wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:       s.cfg.CORSAllowedOrigins,
		AllowedMethods:       []string{http.MethodGet},
		AllowedHeaders:       []string{"Content-Type"},
		OptionsSuccessStatus: http.StatusOK,
	}).Handler(s.engine)
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	for _, route := range Routes {
		s.engine.GET(route.Path, s.handleRoute(route))
	}
	s.engine.NoRoute(s.handleRoute(DefaultRoute))
}

func (s *Server) handleRoute(route Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := s.responder.Respond(c.Request.Context(), route)
		c.Header("Connection", resp.Header.Get("Connection"))
		c.Data(resp.Status, resp.Header.Get("Content-Type"), resp.Body)
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client", c.ClientIP(),
		)
	}
}
