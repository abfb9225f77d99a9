package session

import (
	"log/slog"
	"time"
)

// Credentials of the account used for capturing a session.
type Credentials struct {
	Username string
	Password string
}

// Selectors locate the login controls of the application.
type Selectors struct {
	// LoginTrigger opens the login modal.
	LoginTrigger string
	LoginModal   string
	// UsernameField, PasswordField and SubmitButton are scoped to LoginModal.
	UsernameField string
	PasswordField string
	SubmitButton  string
	// LoggedInMarker is only visible to an authenticated user.
	LoggedInMarker string
}

// DefaultSelectors match the cinema application's login modal.
func DefaultSelectors() Selectors {
	return Selectors{
		LoginTrigger:   "a[data-target='#modalLoginForm']",
		LoginModal:     "#modalLoginForm",
		UsernameField:  "input[name='username']",
		PasswordField:  "input[name='password']",
		SubmitButton:   "button[type='submit']",
		LoggedInMarker: "text=Đăng xuất",
	}
}

// Options configures a Cache.
type Options struct {
	// BaseURL is the application root the capture navigates to.
	BaseURL string
	// StatePath is the file the storage state is written to and read from.
	StatePath   string
	Credentials Credentials
	Selectors   Selectors

	// LoginPath is a substring of the URL the login form is POSTed to.
	// Default: /account/login
	LoginPath string

	// ElementTimeout bounds locating each login control.
	// Default: 15s
	ElementTimeout time.Duration
	// LoginTimeout bounds waiting for the login response.
	// Default: 30s
	LoginTimeout time.Duration
	// IdleTimeout bounds the best-effort network idle wait.
	// Default: 10s
	IdleTimeout time.Duration
	// VerifyTimeout bounds the best-effort logged-in marker check.
	// Default: 1s
	VerifyTimeout time.Duration

	// DedicatedProcess captures in a separate browser process instead of a
	// temporary context on the shared one.
	DedicatedProcess bool

	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.LoginPath == "" {
		o.LoginPath = "/account/login"
	}
	if o.Selectors == (Selectors{}) {
		o.Selectors = DefaultSelectors()
	}
	if o.ElementTimeout == 0 {
		o.ElementTimeout = 15 * time.Second
	}
	if o.LoginTimeout == 0 {
		o.LoginTimeout = 30 * time.Second
	}
	if o.IdleTimeout == 0 {
		o.IdleTimeout = 10 * time.Second
	}
	if o.VerifyTimeout == 0 {
		o.VerifyTimeout = time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

func ms(d time.Duration) *float64 {
	v := float64(d.Milliseconds())
	return &v
}
