// Package browser owns the browser process of a test run and hands out
// isolated browsing contexts.
package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Options configures the browser process.
type Options struct {
	// BrowserName is one of chromium, firefox or webkit.
	// Default: chromium
	BrowserName string
	// Headless runs without a visible window.
	Headless bool
	// SlowMo delays every browser operation.
	SlowMo time.Duration
	// Install downloads the driver and the selected browser before launch.
	Install bool

	// DefaultTimeout applies to every action and wait on pages created by the manager.
	// Default: 15s
	DefaultTimeout time.Duration
	// NavigationTimeout applies to navigations on pages created by the manager.
	// Default: 30s
	NavigationTimeout time.Duration
	// BaseURL is set on every new context so pages can navigate to relative paths.
	BaseURL string

	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

// DefaultOptions returns options for a headless chromium.
func DefaultOptions() Options {
	return Options{
		BrowserName:       "chromium",
		Headless:          true,
		DefaultTimeout:    15 * time.Second,
		NavigationTimeout: 30 * time.Second,
	}
}

// Manager owns one Playwright driver and one browser process.
// It is created once per run by Start and released once by Stop.
type Manager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	options Options
	logger  *slog.Logger
}

// Start launches the browser process for the run. A launch failure is returned
// as is, the caller is expected to abort the run.
func Start(options Options) (*Manager, error) {
	options = withDefaults(options)
	logger := options.Logger

	if options.Install {
		err := playwright.Install(&playwright.RunOptions{
			Browsers: []string{options.BrowserName},
			Verbose:  false,
		})
		if err != nil {
			return nil, fmt.Errorf("installing playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	browserType, err := selectBrowserType(pw, options.BrowserName)
	if err != nil {
		Release(logger, "playwright driver", pw.Stop)
		return nil, err
	}

	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(options.Headless),
		SlowMo:   playwright.Float(float64(options.SlowMo.Milliseconds())),
	})
	if err != nil {
		Release(logger, "playwright driver", pw.Stop)
		return nil, fmt.Errorf("launching %s: %w", options.BrowserName, err)
	}

	logger.Info("Browser started",
		slog.String("browser", options.BrowserName),
		slog.String("version", browser.Version()),
		slog.Bool("headless", options.Headless),
	)

	return &Manager{
		pw:      pw,
		browser: browser,
		options: options,
		logger:  logger,
	}, nil
}

// Stop closes the browser and stops the driver. Both are attempted even if the
// first one fails.
func (m *Manager) Stop() error {
	var errs []error
	if err := m.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing browser: %w", err))
	}
	if err := m.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stopping playwright: %w", err))
	}
	m.logger.Info("Browser stopped")
	return errors.Join(errs...)
}

// Browser returns the shared browser process.
func (m *Manager) Browser() playwright.Browser {
	return m.browser
}

// Playwright returns the driver, e.g. for creating API request contexts.
func (m *Manager) Playwright() *playwright.Playwright {
	return m.pw
}

// Options returns the options the manager was started with.
func (m *Manager) Options() Options {
	return m.options
}

func withDefaults(options Options) Options {
	defaults := DefaultOptions()
	if options.BrowserName == "" {
		options.BrowserName = defaults.BrowserName
	}
	if options.DefaultTimeout == 0 {
		options.DefaultTimeout = defaults.DefaultTimeout
	}
	if options.NavigationTimeout == 0 {
		options.NavigationTimeout = defaults.NavigationTimeout
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return options
}

func selectBrowserType(pw *playwright.Playwright, name string) (playwright.BrowserType, error) {
	switch name {
	case "chromium":
		return pw.Chromium, nil
	case "firefox":
		return pw.Firefox, nil
	case "webkit":
		return pw.WebKit, nil
	default:
		return nil, fmt.Errorf("unknown browser %q", name)
	}
}
