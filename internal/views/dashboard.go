package views

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/authfront-dev/authfront/internal/cli/client"
	"github.com/authfront-dev/authfront/internal/identity"
)

// DashboardStatus says which variant of the dashboard to render
type DashboardStatus int

const (
	StatusLoading DashboardStatus = iota
	StatusUnauthenticated
	StatusAuthenticated
)

func (s DashboardStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// GitHubDetails are shown only for identities federated through GitHub
type GitHubDetails struct {
	Login     string
	AvatarURL string
}

// DashboardModel is everything the dashboard screen shows
type DashboardModel struct {
	Status   DashboardStatus
	Greeting string
	User     *identity.Identity
	GitHub   *GitHubDetails

	// SessionExpiresAt is set when the session cookie carries an expiry
	SessionExpiresAt *time.Time

	// Error explains an unauthenticated dashboard when the reason was not
	// simply a missing session
	Error string
}

// Dashboard drives the dashboard screen
type Dashboard struct {
	session       Session
	sessionExpiry func() (time.Time, bool)
	logger        zerolog.Logger
}

// NewDashboard builds the dashboard controller. It never navigates itself:
// the session store signals the return to login.
func NewDashboard(s Session, opts ...Option) *Dashboard {
	o := buildOptions(opts)
	return &Dashboard{
		session:       s,
		sessionExpiry: o.sessionExpiry,
		logger:        o.logger,
	}
}

// Render builds the model from the current session state
func (d *Dashboard) Render() DashboardModel {
	st := d.session.State()

	if st.Loading {
		return DashboardModel{Status: StatusLoading}
	}

	if st.User == nil {
		m := DashboardModel{Status: StatusUnauthenticated}
		if st.Err != nil && !errors.Is(st.Err, identity.ErrNotAuthenticated) {
			if errors.Is(st.Err, client.ErrNetwork) {
				m.Error = unreachableMessage
			} else {
				m.Error = st.Err.Error()
			}
		}
		return m
	}

	m := DashboardModel{
		Status:   StatusAuthenticated,
		Greeting: st.User.DisplayName(),
		User:     st.User,
	}

	if st.User.Kind == identity.KindGitHub {
		m.GitHub = &GitHubDetails{
			Login:     st.User.Login,
			AvatarURL: st.User.AvatarURL,
		}
	}

	if d.sessionExpiry != nil {
		if exp, ok := d.sessionExpiry(); ok {
			m.SessionExpiresAt = &exp
		}
	}

	return m
}

// Logout ends the session. The store emits the navigation to login; the
// error is informational and local state is cleared regardless.
func (d *Dashboard) Logout(ctx context.Context) error {
	err := d.session.Logout(ctx)
	if err != nil {
		d.logger.Warn().Err(err).Msg("Logout incomplete")
	}
	return err
}
