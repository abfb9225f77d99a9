// Package session captures an authenticated browser session once and hands
// out pre-authenticated browsing contexts built from it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/cinematest/browser"
	"github.com/networkteam/cinematest/netlog"
)

// Cache performs the interactive login and persists its storage state.
// Captures must not run concurrently for the same StatePath.
type Cache struct {
	manager *browser.Manager
	options Options
	logger  *slog.Logger
}

// NewCache creates a cache backed by the shared browser of manager.
func NewCache(manager *browser.Manager, options Options) *Cache {
	options = options.withDefaults()
	return &Cache{
		manager: manager,
		options: options,
		logger:  options.Logger.With(slog.String("component", "session")),
	}
}

// StatePath returns the file the session state is persisted to.
func (c *Cache) StatePath() string {
	return c.options.StatePath
}

// Exists reports whether a persisted session state is present.
func (c *Cache) Exists() bool {
	info, err := os.Stat(c.options.StatePath)
	return err == nil && !info.IsDir()
}

// LogIn captures a fresh session and returns a new browsing context
// initialised from it. The returned context is independent of the one used
// for capturing and must be closed by the caller.
func (c *Cache) LogIn(ctx context.Context) (*browser.Context, error) {
	if err := c.Capture(ctx); err != nil {
		return nil, err
	}
	return c.NewContext()
}

// NewContext returns a browsing context initialised from the persisted state
// without logging in again.
func (c *Cache) NewContext() (*browser.Context, error) {
	if !c.Exists() {
		return nil, fmt.Errorf("%w at %s", ErrNoState, c.options.StatePath)
	}
	bctx, err := c.manager.NewContext(playwright.BrowserNewContextOptions{
		StorageStatePath: playwright.String(c.options.StatePath),
	})
	if err != nil {
		return nil, fmt.Errorf("creating authenticated context: %w", err)
	}
	return bctx, nil
}

// Capture logs in through the login form and writes the resulting storage
// state to StatePath. The temporary context (and a dedicated browser process,
// if configured) is released on every path. On failure no state is written.
func (c *Cache) Capture(ctx context.Context) error {
	run := &capture{state: StateIdle, logger: c.logger}

	if err := os.MkdirAll(filepath.Dir(c.options.StatePath), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	mgr := c.manager
	if c.options.DedicatedProcess {
		opts := c.manager.Options()
		opts.Install = false
		dedicated, err := browser.Start(opts)
		if err != nil {
			return fmt.Errorf("starting capture browser: %w", err)
		}
		defer browser.Release(c.logger, "capture browser", dedicated.Stop)
		mgr = dedicated
	}

	tmp, err := mgr.NewContext()
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		run.transition(StateCleanedUp)
	}()

	if err := c.submitLogin(ctx, run, tmp); err != nil {
		return err
	}

	c.waitForIdle(tmp.Page)
	c.verifyLoggedIn(tmp.Page)

	if _, err := tmp.Context.StorageState(c.options.StatePath); err != nil {
		return run.fail(fmt.Errorf("writing storage state: %w", err))
	}
	run.transition(StateStatePersisted)

	c.logger.Info("Saved login state", slog.String("path", c.options.StatePath), slog.String("username", c.options.Credentials.Username))

	return nil
}

func (c *Cache) submitLogin(ctx context.Context, run *capture, tmp *browser.Context) error {
	page := tmp.Page
	sel := c.options.Selectors

	if _, err := page.Goto(c.options.BaseURL); err != nil {
		return run.fail(fmt.Errorf("navigating to %s: %w", c.options.BaseURL, err))
	}
	run.transition(StateNavigatedToApp)

	err := page.Locator(sel.LoginTrigger).Click(playwright.LocatorClickOptions{
		Timeout: ms(c.options.ElementTimeout),
	})
	if err != nil {
		return run.fail(elementError("login trigger", sel.LoginTrigger, err))
	}

	modal := page.Locator(sel.LoginModal)
	err = modal.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(c.options.ElementTimeout),
	})
	if err != nil {
		return run.fail(elementError("login modal", sel.LoginModal, err))
	}
	run.transition(StateLoginFormOpen)

	fillOpts := playwright.LocatorFillOptions{Timeout: ms(c.options.ElementTimeout)}
	if err := modal.Locator(sel.UsernameField).Fill(c.options.Credentials.Username, fillOpts); err != nil {
		return run.fail(elementError("username field", sel.UsernameField, err))
	}
	if err := modal.Locator(sel.PasswordField).Fill(c.options.Credentials.Password, fillOpts); err != nil {
		return run.fail(elementError("password field", sel.PasswordField, err))
	}
	run.transition(StateCredentialsFilled)

	submit := modal.Locator(sel.SubmitButton)
	resp, err := tmp.Recorder.Expect(ctx, netlog.MethodAndURLContains("POST", c.options.LoginPath), func() error {
		err := submit.Click(playwright.LocatorClickOptions{Timeout: ms(c.options.ElementTimeout)})
		if err != nil {
			return elementError("submit button", sel.SubmitButton, err)
		}
		run.transition(StateSubmitIssued)
		run.transition(StateAwaitingLoginResponse)
		return nil
	}, c.options.LoginTimeout)
	if errors.Is(err, netlog.ErrTimeout) {
		run.transition(StateTimedOut)
		return run.fail(fmt.Errorf("%w: no POST to %s within %s", ErrLoginTimeout, c.options.LoginPath, c.options.LoginTimeout))
	}
	if err != nil {
		return run.fail(err)
	}

	run.transition(StateAuthenticated)
	c.logger.Debug("Login response received", slog.Int("status", resp.Status), slog.String("url", resp.URL))

	return nil
}

// waitForIdle lets redirects and follow-up requests settle. A timeout here is
// not an error.
func (c *Cache) waitForIdle(page playwright.Page) {
	err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: ms(c.options.IdleTimeout),
	})
	if err != nil {
		c.logger.Debug("Network did not become idle after login, continuing", slog.Any("err", err))
	}
}

// verifyLoggedIn warns if the logged-in marker is not visible. The state is
// saved either way.
func (c *Cache) verifyLoggedIn(page playwright.Page) {
	err := page.Locator(c.options.Selectors.LoggedInMarker).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(c.options.VerifyTimeout),
	})
	if err != nil {
		c.logger.Warn("Logged-in marker not visible, saving state anyway; the session may be invalid",
			slog.String("marker", c.options.Selectors.LoggedInMarker),
		)
	}
}

func elementError(what, selector string, err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s %q: %w", ErrElementNotFound, what, selector, err)
	}
	return fmt.Errorf("%s %q: %w", what, selector, err)
}
