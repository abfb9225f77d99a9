// Package cinematest wires the browser manager, the session and token caches
// and the database resetter into one harness instance for a test run.
package cinematest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/networkteam/cinematest/browser"
	"github.com/networkteam/cinematest/config"
	"github.com/networkteam/cinematest/dbreset"
	"github.com/networkteam/cinematest/internal/cinemaapp"
	"github.com/networkteam/cinematest/session"
)

// Instance is the harness of one test run. It is created once, before any
// scenario, and closed once after all of them.
type Instance struct {
	config  config.Config
	logger  *slog.Logger
	cleanup []func() error

	manager  *browser.Manager
	sessions *session.Cache
	tokens   *session.TokenCache
	db       *sql.DB
	resetter *dbreset.Resetter
	fixture  *cinemaapp.Server
}

type Options struct {
	// Logger defaults to slog.Default()
	Logger *slog.Logger
	// Session overrides session capture options. BaseURL, StatePath,
	// Credentials and Logger are always taken from the configuration.
	Session session.Options
	// SkipBrowser starts everything except the browser. Sessions() and
	// Tokens() return nil in that case.
	SkipBrowser bool
}

// New creates an instance with default options.
func New(cfg config.Config) (*Instance, error) {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions creates an instance for cfg.
//
// If cfg.BaseURL is empty the built-in cinema application is started on a
// random local port backed by a sqlite ticket store (a temporary file unless
// cfg.DB.DSN is set). On error everything started so far is released.
func NewWithOptions(cfg config.Config, options Options) (_ *Instance, err error) {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	i := &Instance{
		config: cfg,
		logger: options.Logger,
	}
	defer func() {
		if err != nil {
			i.Close()
		}
	}()

	ctx := context.Background()

	if cfg.BaseURL == "" {
		if err := i.startFixture(ctx); err != nil {
			return nil, err
		}
	} else if cfg.DB.Enabled() {
		i.openExternalDB()
	}

	if options.SkipBrowser {
		return i, nil
	}

	manager, err := browser.Start(browser.Options{
		BrowserName:       cfg.Browser.Name,
		Headless:          cfg.Browser.Headless,
		SlowMo:            cfg.Browser.SlowMo,
		Install:           cfg.Browser.Install,
		DefaultTimeout:    cfg.Browser.DefaultTimeout,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		BaseURL:           i.config.BaseURL,
		Logger:            i.logger,
	})
	if err != nil {
		return nil, err
	}
	i.manager = manager
	i.cleanup = append(i.cleanup, manager.Stop)

	credentials := session.Credentials{Username: cfg.Username, Password: cfg.Password}

	sessionOptions := options.Session
	sessionOptions.BaseURL = i.config.BaseURL
	sessionOptions.StatePath = cfg.StatePath
	sessionOptions.Credentials = credentials
	sessionOptions.Logger = i.logger
	i.sessions = session.NewCache(manager, sessionOptions)

	i.tokens = session.NewTokenCache(manager.Playwright(), session.TokenOptions{
		APIBaseURL:  i.config.APIBaseURL,
		TokenPath:   cfg.TokenPath,
		Credentials: credentials,
		Logger:      i.logger,
	})

	return i, nil
}

// openExternalDB connects the resetter to the configured ticket store. A
// database that cannot be used is logged and the run continues without resets.
func (i *Instance) openExternalDB() {
	db, err := dbreset.Open(i.config.DB.Driver, i.config.DB.DSN, i.logger)
	if err != nil {
		i.logger.Error("Could not open ticket database, booking data will not be reset", slog.Any("err", err))
		return
	}
	resetter, err := dbreset.New(db, dbreset.Options{
		Dialect: i.config.DB.Dialect,
		Logger:  i.logger,
	})
	if err != nil {
		_ = db.Close()
		i.logger.Error("Unsupported ticket database, booking data will not be reset", slog.Any("err", err))
		return
	}
	i.db = db
	i.resetter = resetter
	i.cleanup = append(i.cleanup, db.Close)
}

func (i *Instance) startFixture(ctx context.Context) error {
	dsn := i.config.DB.DSN
	if dsn == "" {
		dir, err := os.MkdirTemp("", "cinematest-")
		if err != nil {
			return fmt.Errorf("creating ticket store directory: %w", err)
		}
		i.cleanup = append(i.cleanup, func() error { return os.RemoveAll(dir) })
		dsn = "file:" + filepath.Join(dir, "cinema.db")
		i.config.DB = config.DBConfig{Driver: "sqlite", DSN: dsn, Dialect: "sqlite"}
	}

	db, err := cinemaapp.OpenStore(ctx, dsn, i.logger)
	if err != nil {
		return err
	}
	i.db = db
	i.cleanup = append(i.cleanup, db.Close)

	app := cinemaapp.New(cinemaapp.Options{DB: db, Logger: i.logger})
	i.cleanup = append(i.cleanup, func() error {
		app.Close()
		return nil
	})

	srv, err := cinemaapp.Listen("127.0.0.1:0", app, i.logger)
	if err != nil {
		return err
	}
	go func() {
		if err := srv.Serve(); err != nil {
			i.logger.Error("Cinema application stopped", slog.Any("err", err))
		}
	}()
	i.fixture = srv
	i.cleanup = append(i.cleanup, func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	i.config.BaseURL = srv.URL
	if i.config.APIBaseURL == "" {
		i.config.APIBaseURL = srv.URL
	}

	resetter, err := dbreset.New(db, dbreset.Options{Dialect: "sqlite", Logger: i.logger})
	if err != nil {
		return err
	}
	i.resetter = resetter

	// Seed so the first scenario sees the same rows as every later one
	return resetter.Reset(ctx)
}

// Config returns the effective configuration, with BaseURL pointing at the
// built-in application if it was started.
func (i *Instance) Config() config.Config {
	return i.config
}

// BaseURL of the application under test.
func (i *Instance) BaseURL() string {
	return i.config.BaseURL
}

// Browser returns the browser manager, nil with SkipBrowser.
func (i *Instance) Browser() *browser.Manager {
	return i.manager
}

// Sessions returns the session cache, nil with SkipBrowser.
func (i *Instance) Sessions() *session.Cache {
	return i.sessions
}

// Tokens returns the API token cache, nil with SkipBrowser.
func (i *Instance) Tokens() *session.TokenCache {
	return i.tokens
}

// Resetter returns the database resetter or nil if no database is configured.
func (i *Instance) Resetter() *dbreset.Resetter {
	return i.resetter
}

// DB returns the ticket database or nil if none is configured.
func (i *Instance) DB() *sql.DB {
	return i.db
}

// HasFixture reports whether the built-in application serves BaseURL.
func (i *Instance) HasFixture() bool {
	return i.fixture != nil
}

// ResetDatabase restores the seed tickets. Failures are logged, not returned.
func (i *Instance) ResetDatabase(ctx context.Context) {
	if i.resetter == nil {
		i.logger.Debug("No database configured, skipping reset")
		return
	}
	i.resetter.ResetOrLog(ctx)
}

// Close releases everything in reverse start order. Failures are logged and
// joined into the returned error.
func (i *Instance) Close() error {
	var errs []error
	for n := len(i.cleanup) - 1; n >= 0; n-- {
		errs = append(errs, i.cleanup[n]())
	}
	i.cleanup = nil
	err := errors.Join(errs...)
	if err != nil {
		i.logger.Warn("Failed to release harness resources", slog.Any("err", err))
	}
	return err
}
