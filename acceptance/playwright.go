//go:build acceptance
// +build acceptance

package acceptance

import (
	"strings"
	"testing"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/cinematest/browser"
)

// assertionTimeout bounds every web-first assertion in milliseconds.
const assertionTimeout = 10000

func newAssertions() playwright.PlaywrightAssertions {
	return playwright.NewPlaywrightAssertions(assertionTimeout)
}

// logResponses writes the responses recorded for bctx to the test log. Used
// after a failure to show what the browser talked to.
func logResponses(t *testing.T, bctx *browser.Context) {
	t.Helper()

	var sb strings.Builder
	if err := bctx.Recorder.Dump(&sb, false); err != nil {
		t.Logf("Could not dump responses: %v", err)
		return
	}
	t.Logf("%s\n%s", bctx.Recorder.Summary(), sb.String())
}
