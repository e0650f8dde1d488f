package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/authfront-dev/authfront/internal/routes"
	"github.com/authfront-dev/authfront/internal/views"
)

// redirector is the Navigator for one HTTP request: navigation becomes a
// redirect response instead of a screen change
type redirector struct {
	target   string
	external bool
}

func (r *redirector) Navigate(route string) {
	r.target = route
	r.external = false
}

func (r *redirector) External(url string) {
	r.target = url
	r.external = true
}

// follow writes the redirect if a view asked for one
func (r *redirector) follow(c *gin.Context) bool {
	switch {
	case r.target == "":
		return false
	case r.external:
		c.Redirect(http.StatusFound, r.target)
	default:
		c.Redirect(http.StatusSeeOther, r.target)
	}
	return true
}

// federatedCookie marks a browser that left for the backend's federated
// sign-in. That flow ends with the session cookie on the backend origin, which
// this server's jar never receives.
const federatedCookie = "authfront_federated"

const federatedTTL = 10 * time.Minute

const federatedNotice = "GitHub sign-in completed in your browser, but that session belongs to the backend " +
	"and is not shared with this app. Sign in with email and password to continue here."

type pageData struct {
	Title     string
	Current   string
	Routes    []routes.Route
	Version   string
	Email     string
	Form      views.FormState
	Dashboard views.DashboardModel
}

func (s *Server) page(path string) pageData {
	route, _ := routes.Lookup(path)
	return pageData{
		Title:   route.Title,
		Current: route.Path,
		Routes:  routes.All(),
		Version: s.version,
	}
}

// idle drops the message of a finished submission so it is shown only once
func idle(st views.FormState) views.FormState {
	return views.FormState{Phase: st.Phase}
}

// formStatus picks the status code for a re-rendered form
func formStatus(err error) int {
	var verr *views.ValidationError
	switch {
	case errors.Is(err, views.ErrInFlight):
		return http.StatusConflict
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusOK
	}
}

func (s *Server) showLogin(c *gin.Context) {
	data := s.page(routes.Login)
	data.Form = idle(s.loginForm.State())

	if provider, err := c.Cookie(federatedCookie); err == nil {
		clearFederated(c)
		if !s.store.State().Authenticated() {
			s.logger.Info().Str("provider", provider).Msg("Federated sign-in returned without a shared session")
			data.Form.Message = federatedNotice
			data.Form.MessageKind = views.MessageError
		}
	}

	c.HTML(http.StatusOK, "login.html", data)
}

func clearFederated(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(federatedCookie, "", -1, "/", "", false, true)
}

func (s *Server) submitLogin(c *gin.Context) {
	nav := &redirector{}
	login := views.NewLogin(s.env.Client, s.store, nav, views.WithForm(s.loginForm), views.WithLogger(s.logger))

	req := views.AuthRequest{
		Email:    strings.TrimSpace(c.PostForm("email")),
		Password: c.PostForm("password"),
	}
	st, err := login.Submit(c.Request.Context(), req)
	s.persist()

	if nav.follow(c) {
		return
	}

	data := s.page(routes.Login)
	data.Email = req.Email
	data.Form = st
	if errors.Is(err, views.ErrInFlight) {
		data.Form.Message = "a sign-in is already in progress"
		data.Form.MessageKind = views.MessageError
	}
	c.HTML(formStatus(err), "login.html", data)
}

func (s *Server) federatedLogin(c *gin.Context) {
	nav := &redirector{}
	login := views.NewLogin(s.env.Client, s.store, nav, views.WithForm(s.loginForm), views.WithLogger(s.logger))

	provider := c.Param("provider")
	if provider != views.ProviderGitHub {
		c.String(http.StatusNotFound, "unknown provider %q", provider)
		return
	}

	login.Federated(provider)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(federatedCookie, provider, int(federatedTTL.Seconds()), "/", "", false, true)
	nav.follow(c)
}

func (s *Server) showRegister(c *gin.Context) {
	data := s.page(routes.Register)
	data.Form = idle(s.registerForm.State())
	c.HTML(http.StatusOK, "register.html", data)
}

func (s *Server) submitRegister(c *gin.Context) {
	nav := &redirector{}
	register := views.NewRegister(s.env.Client, s.store, nav, views.WithForm(s.registerForm), views.WithLogger(s.logger))

	req := views.RegisterRequest{
		Email:           strings.TrimSpace(c.PostForm("email")),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirm_password"),
	}
	st, err := register.Submit(c.Request.Context(), req)
	s.persist()

	if nav.follow(c) {
		return
	}

	data := s.page(routes.Register)
	data.Email = req.Email
	data.Form = st
	if errors.Is(err, views.ErrInFlight) {
		data.Form.Message = "a registration is already in progress"
		data.Form.MessageKind = views.MessageError
	}
	c.HTML(formStatus(err), "register.html", data)
}

func (s *Server) showDashboard(c *gin.Context) {
	// The backend may have ended the session since the last check
	s.store.Refresh(c.Request.Context())
	s.persist()

	dashboard := views.NewDashboard(s.store,
		views.WithLogger(s.logger),
		views.WithSessionExpiry(s.env.Jar.SessionExpiry),
	)

	model := dashboard.Render()
	if model.Status != views.StatusAuthenticated {
		// Protected route
		c.Redirect(http.StatusSeeOther, routes.Login)
		return
	}

	data := s.page(routes.Dashboard)
	data.Dashboard = model
	c.HTML(http.StatusOK, "dashboard.html", data)
}

func (s *Server) logout(c *gin.Context) {
	dashboard := views.NewDashboard(s.store, views.WithLogger(s.logger))

	// Best effort; the local session is cleared either way
	_ = dashboard.Logout(c.Request.Context())

	c.Redirect(http.StatusSeeOther, routes.Login)
}
