//go:build acceptance
// +build acceptance

package acceptance

import (
	"context"
	"sync"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/cinematest/browser"
)

// TestFixtures bundles all commonly needed test fixtures.
type TestFixtures struct {
	Ctx     *browser.Context
	Page    playwright.Page
	Expect  playwright.PlaywrightAssertions
	Home    *HomePage
	Booking *BookingFlow
}

var (
	captureOnce sync.Once
	captureErr  error
)

// ensureSession captures the login session once per run. Later tests reuse
// the persisted state.
func ensureSession(t *testing.T) {
	t.Helper()

	captureOnce.Do(func() {
		captureErr = harness.Sessions().Capture(context.Background())
	})
	require.NoError(t, captureErr, "session capture failed")
}

func newFixtures(t *testing.T, bctx *browser.Context) *TestFixtures {
	t.Helper()

	t.Cleanup(func() {
		if t.Failed() {
			logResponses(t, bctx)
		}
		bctx.Close()
	})

	expect := newAssertions()
	return &TestFixtures{
		Ctx:     bctx,
		Page:    bctx.Page,
		Expect:  expect,
		Home:    NewHomePage(t, bctx.Page, expect),
		Booking: NewBookingFlow(t, bctx.Page, expect),
	}
}

// WithPage runs fn with a fresh anonymous browsing context.
func WithPage(t *testing.T, fn func(t *testing.T, f *TestFixtures)) {
	t.Helper()

	bctx, err := harness.Browser().NewContext()
	require.NoError(t, err, "failed to create browser context")

	fn(t, newFixtures(t, bctx))
}

// WithLoggedInPage runs fn with a browsing context restored from the cached
// session, so the test starts authenticated without using the login form.
func WithLoggedInPage(t *testing.T, fn func(t *testing.T, f *TestFixtures)) {
	t.Helper()

	ensureSession(t)

	bctx, err := harness.Sessions().NewContext()
	require.NoError(t, err, "failed to restore session")

	fn(t, newFixtures(t, bctx))
}

// WithBookingPage runs fn like WithLoggedInPage and restores the seed tickets
// afterwards. Every test that walks the purchase pages uses it, so a booking
// made by one test never leaks into the seat map of the next.
func WithBookingPage(t *testing.T, fn func(t *testing.T, f *TestFixtures)) {
	t.Helper()

	ResetAfter(t)
	WithLoggedInPage(t, fn)
}

// WithAnonymousBookingPage runs fn like WithPage and restores the seed tickets
// afterwards, for flows that log in through the form.
func WithAnonymousBookingPage(t *testing.T, fn func(t *testing.T, f *TestFixtures)) {
	t.Helper()

	ResetAfter(t)
	WithPage(t, fn)
}

// ResetAfter restores the seed tickets when the test finishes, pass or fail.
func ResetAfter(t *testing.T) {
	t.Helper()

	t.Cleanup(func() {
		harness.ResetDatabase(context.Background())
	})
}
