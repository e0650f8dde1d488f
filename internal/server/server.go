// Package server is the local web front end: it renders the login, register
// and dashboard views as HTML and drives them with form posts, keeping the
// backend session in a server-side cookie jar.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/authfront-dev/authfront/internal/cli/environment"
	"github.com/authfront-dev/authfront/internal/config"
	"github.com/authfront-dev/authfront/internal/routes"
	"github.com/authfront-dev/authfront/internal/session"
	"github.com/authfront-dev/authfront/internal/views"
)

//go:embed templates/*.html
var templateFS embed.FS

const refreshTimeout = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	router       *gin.Engine
	config       *config.Config
	env          *environment.Environment
	store        *session.Store
	loginForm    *views.Form
	registerForm *views.Form
	cron         *cron.Cron
	logger       zerolog.Logger
	version      string
}

// New creates a new server instance on top of an opened backend session
func New(cfg *config.Config, env *environment.Environment, zlog zerolog.Logger, version string) (*Server, error) {
	server := &Server{
		config:       cfg,
		env:          env,
		store:        env.NewSessionStore(session.WithLogger(zlog)),
		loginForm:    views.NewForm(),
		registerForm: views.NewForm(),
		cron:         cron.New(),
		logger:       zlog,
		version:      version,
	}

	if spec := cfg.Web.RefreshSchedule; spec != "" {
		if _, err := server.cron.AddFunc(spec, server.refreshSession); err != nil {
			return nil, fmt.Errorf("invalid REFRESH_SCHEDULE %q: %w", spec, err)
		}
	}

	if err := server.setupRouter(); err != nil {
		return nil, err
	}

	return server, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() error {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	s.router.SetHTMLTemplate(tmpl)

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.localClientsOnly())
	s.router.Use(s.corsMiddleware())
	s.router.Use(s.sameSiteForms())

	s.router.GET("/health", s.healthCheck)

	for _, route := range routes.All() {
		switch route.View {
		case routes.ViewLogin:
			s.router.GET(route.Path, s.showLogin)
			s.router.POST(route.Path, s.submitLogin)
		case routes.ViewRegister:
			s.router.GET(route.Path, s.showRegister)
			s.router.POST(route.Path, s.submitRegister)
		case routes.ViewDashboard:
			s.router.GET(route.Path, s.showDashboard)
		}
	}

	s.router.POST("/oauth/:provider", s.federatedLogin)
	s.router.POST("/logout", s.logout)

	return nil
}

func (s *Server) healthCheck(c *gin.Context) {
	st := s.store.State()
	c.JSON(http.StatusOK, gin.H{
		"status":        "online",
		"timestamp":     time.Now().UTC(),
		"service":       "authfront-web",
		"backend":       s.env.BackendURL,
		"authenticated": st.Authenticated(),
	})
}

// refreshSession revalidates the backend session; run by cron
func (s *Server) refreshSession() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	st := s.store.Refresh(ctx)
	s.persist()

	if st.Err != nil {
		s.logger.Debug().Err(st.Err).Msg("Session revalidation found no session")
	}
}

func (s *Server) persist() {
	if err := s.env.Persist(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to save session")
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store returns the auth store behind the pages
func (s *Server) Store() *session.Store {
	return s.store
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Web.Address

	s.store.Initialize(ctx)
	s.persist()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if !s.config.Web.AllowRemote && !loopbackAddress(addr) {
		s.logger.Warn().
			Str("address", addr).
			Msg("Listening beyond loopback; only local clients will be served")
	}

	s.cron.Start()

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("address", addr).
			Str("backend", s.env.BackendURL).
			Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			<-s.cron.Stop().Done()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	}

	// Wait for a running revalidation to finish
	<-s.cron.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.store.Teardown()
	s.persist()

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}

// loopbackAddress reports whether a listen address binds only to loopback
func loopbackAddress(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
