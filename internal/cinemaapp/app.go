// Package cinemaapp is a self-contained cinema booking web application with
// the pages, forms and JSON API the acceptance suites drive. Tickets are kept
// in the same ticket table the dbreset package restores.
package cinemaapp

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/gofrs/uuid"
	"github.com/samber/lo"

	"github.com/networkteam/cinematest/dbreset"
	"github.com/networkteam/cinematest/internal/cinemaapp/static"
	"github.com/networkteam/cinematest/internal/cinemaapp/views"
)

// SessionCookieName is the cookie holding the login session id.
const SessionCookieName = "CINEMASESSION"

// Options configures an App.
type Options struct {
	// DB holds the ticket table. Required.
	DB *sql.DB
	// Catalog defaults to DefaultCatalog()
	Catalog *Catalog
	// Users defaults to DefaultUsers()
	Users              []User
	SessionIdleTimeout time.Duration
	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

// App serves the cinema website and API.
type App struct {
	catalog  Catalog
	users    *userStore
	sessions *SessionManager
	tickets  *ticketStore
	logger   *slog.Logger

	mux http.Handler
}

// New creates the application.
func New(options Options) *App {
	if options.Catalog == nil {
		c := DefaultCatalog()
		options.Catalog = &c
	}
	if options.Users == nil {
		options.Users = DefaultUsers()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	logger := options.Logger.With(slog.String("component", "cinemaapp"))

	app := &App{
		catalog: *options.Catalog,
		users:   newUserStore(options.Users),
		sessions: NewSessionManager(SessionManagerOptions{
			IdleTimeout: options.SessionIdleTimeout,
			Logger:      logger,
		}),
		tickets: &ticketStore{db: options.DB},
		logger:  logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", app.home)
	mux.HandleFunc("POST /{$}", app.search)
	mux.HandleFunc("GET /movie-details", app.movieDetails)
	mux.HandleFunc("GET /branches", app.requireUser(app.branches))
	mux.HandleFunc("GET /schedule", app.requireUser(app.schedule))
	mux.HandleFunc("POST /room-selection", app.requireUser(app.selectSchedule))
	mux.HandleFunc("GET /room-selection", app.requireUser(app.roomSelection))
	mux.HandleFunc("GET /seat-selection", app.requireUser(app.seatSelection))
	mux.HandleFunc("POST /bill", app.requireUser(app.createBill))
	mux.HandleFunc("GET /bill", app.requireUser(app.bill))
	mux.HandleFunc("GET /bill/pay", app.requireUser(app.payBill))
	mux.HandleFunc("GET /tickets/history", app.requireUser(app.ticketHistory))
	mux.HandleFunc("GET /profile", app.requireUser(app.profile))
	mux.HandleFunc("GET /static/posters/{file}", app.poster)
	mux.Handle("GET /static/", http.StripPrefix("/static", http.FileServerFS(static.Assets)))

	mux.HandleFunc("POST /account/login", app.login)
	mux.HandleFunc("POST /account/register", app.register)
	mux.HandleFunc("GET /account/logout", app.logout)

	mux.HandleFunc("POST /login", app.apiLogin)
	mux.HandleFunc("POST /register", app.apiRegister)
	mux.HandleFunc("GET /api/movies/showing", allowAnyOrigin(app.apiMoviesShowing))
	mux.HandleFunc("GET /api/movies/details", allowAnyOrigin(app.apiMovieDetails))
	mux.HandleFunc("GET /api/movies/showing/search", allowAnyOrigin(app.apiSearchMovies))
	mux.HandleFunc("GET /api/branches", app.requireToken(app.apiBranches))
	mux.HandleFunc("GET /api/schedule/start-times", app.requireToken(app.apiStartTimes))
	mux.HandleFunc("GET /api/rooms", app.requireToken(app.apiRooms))
	mux.HandleFunc("GET /api/seats", app.requireToken(app.apiSeats))
	mux.HandleFunc("POST /api/bills/create-new-bill", app.requireToken(app.apiCreateBill))
	mux.HandleFunc("GET /api/tickets", app.requireToken(app.apiTickets))

	app.mux = logRequests(logger, mux)

	return app
}

// OpenStore opens a sqlite ticket store at dsn and applies the migrations.
// A busy timeout is added unless the DSN sets one.
func OpenStore(ctx context.Context, dsn string, logger *slog.Logger) (*sql.DB, error) {
	if !strings.Contains(dsn, "busy_timeout") {
		dsn += lo.Ternary(strings.Contains(dsn, "?"), "&", "?") + "_pragma=busy_timeout(5000)"
	}
	db, err := dbreset.Open("sqlite", dsn, logger)
	if err != nil {
		return nil, err
	}
	if err := dbreset.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating ticket store: %w", err)
	}
	return db, nil
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Close stops session expiry. The database is owned by the caller.
func (a *App) Close() {
	a.sessions.Close()
}

// currentUser resolves the session cookie.
func (a *App) currentUser(r *http.Request) (Session, User, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return Session{}, User{}, false
	}
	sessionID, err := uuid.FromString(cookie.Value)
	if err != nil {
		return Session{}, User{}, false
	}
	s, ok := a.sessions.Get(sessionID)
	if !ok {
		return Session{}, User{}, false
	}
	u, ok := a.users.byID(s.UserID)
	if !ok {
		return Session{}, User{}, false
	}
	return s, u, true
}

type userHandlerFunc func(w http.ResponseWriter, r *http.Request, s Session, u User)

// requireUser sends anonymous visitors to the home page with the login form open.
func (a *App) requireUser(next userHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, u, ok := a.currentUser(r)
		if !ok {
			http.Redirect(w, r, "/?login=1", http.StatusSeeOther)
			return
		}
		next(w, r, s, u)
	}
}

func (a *App) startSession(w http.ResponseWriter, u User) {
	id := a.sessions.Create(u.ID)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *App) render(w http.ResponseWriter, r *http.Request, status int, props views.LayoutProps, body templ.Component) {
	templ.Handler(views.Layout(props, body),
		templ.WithStatus(status),
		templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				a.serverError(w, r, fmt.Errorf("rendering page: %w", err))
			})
		}),
	).ServeHTTP(w, r)
}

func (a *App) serverError(w http.ResponseWriter, r *http.Request, err error) {
	a.logger.Error("Request failed", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("err", err))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("Handled request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
