package browser

import (
	"fmt"
	"log/slog"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/cinematest/netlog"
)

// Context is an isolated browsing context with its single page. It is owned by
// exactly one test and must be closed by it.
type Context struct {
	Context  playwright.BrowserContext
	Page     playwright.Page
	Recorder *netlog.Recorder

	logger *slog.Logger
}

// NewContext creates a fresh browsing context and page on the shared browser.
// The manager's base URL and timeouts are applied; options may override the
// base URL or supply a storage state.
func (m *Manager) NewContext(options ...playwright.BrowserNewContextOptions) (*Context, error) {
	return newContext(m.browser, m.options, options...)
}

func newContext(browser playwright.Browser, mgrOptions Options, options ...playwright.BrowserNewContextOptions) (*Context, error) {
	opts := playwright.BrowserNewContextOptions{}
	if len(options) > 0 {
		opts = options[0]
	}
	if opts.BaseURL == nil && mgrOptions.BaseURL != "" {
		opts.BaseURL = playwright.String(mgrOptions.BaseURL)
	}

	bctx, err := browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	bctx.SetDefaultTimeout(float64(mgrOptions.DefaultTimeout.Milliseconds()))
	bctx.SetDefaultNavigationTimeout(float64(mgrOptions.NavigationTimeout.Milliseconds()))

	page, err := bctx.NewPage()
	if err != nil {
		Release(mgrOptions.Logger, "browser context", func() error { return bctx.Close() })
		return nil, fmt.Errorf("creating page: %w", err)
	}

	recorder := netlog.NewRecorder(netlog.RecorderOptions{Logger: mgrOptions.Logger})
	recorder.Attach(page)

	return &Context{
		Context:  bctx,
		Page:     page,
		Recorder: recorder,
		logger:   mgrOptions.Logger,
	}, nil
}

// Close closes the browsing context and with it the page. Failures are logged
// and otherwise ignored.
func (c *Context) Close() {
	c.Recorder.Close()
	Release(c.logger, "browser context", func() error { return c.Context.Close() })
}
