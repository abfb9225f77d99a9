package session

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_String(t *testing.T) {
	assert.Equal(t, "Idle", StateIdle.String())
	assert.Equal(t, "AwaitingLoginResponse", StateAwaitingLoginResponse.String())
	assert.Equal(t, "StatePersisted", StateStatePersisted.String())
	assert.Equal(t, "State(42)", State(42).String())
}

func TestCaptureError_Unwrap(t *testing.T) {
	err := error(&CaptureError{
		State: StateTimedOut,
		Err:   fmt.Errorf("%w: no POST", ErrLoginTimeout),
	})

	assert.ErrorIs(t, err, ErrLoginTimeout)
	assert.NotErrorIs(t, err, ErrElementNotFound)
	assert.Contains(t, err.Error(), "TimedOut")

	var captureErr *CaptureError
	require.True(t, errors.As(err, &captureErr))
	assert.Equal(t, StateTimedOut, captureErr.State)
}

func TestCapture_TransitionsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	run := &capture{
		state:  StateIdle,
		logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}

	run.transition(StateNavigatedToApp)
	run.transition(StateLoginFormOpen)
	err := run.fail(errors.New("boom"))

	assert.Contains(t, buf.String(), "from=Idle to=NavigatedToApp")
	assert.Contains(t, buf.String(), "from=NavigatedToApp to=LoginFormOpen")

	var captureErr *CaptureError
	require.ErrorAs(t, err, &captureErr)
	assert.Equal(t, StateLoginFormOpen, captureErr.State)
}

func TestElementError(t *testing.T) {
	timeoutErr := fmt.Errorf("%w: locator.click: Timeout 15000ms exceeded", playwright.ErrTimeout)

	err := elementError("submit button", "button[type='submit']", timeoutErr)
	assert.ErrorIs(t, err, ErrElementNotFound)
	assert.ErrorIs(t, err, playwright.ErrTimeout)
	assert.Contains(t, err.Error(), "button[type='submit']")

	other := errors.New("target closed")
	err = elementError("submit button", "button[type='submit']", other)
	assert.NotErrorIs(t, err, ErrElementNotFound)
	assert.ErrorIs(t, err, other)
}

func TestOptions_WithDefaults(t *testing.T) {
	opts := Options{StatePath: "state.json"}.withDefaults()

	assert.Equal(t, "/account/login", opts.LoginPath)
	assert.Equal(t, DefaultSelectors(), opts.Selectors)
	assert.Equal(t, 30*time.Second, opts.LoginTimeout)
	assert.Equal(t, time.Second, opts.VerifyTimeout)
	assert.NotNil(t, opts.Logger)

	custom := Options{Selectors: Selectors{LoginTrigger: "#login"}, LoginTimeout: time.Second}.withDefaults()
	assert.Equal(t, "#login", custom.Selectors.LoginTrigger, "custom selectors are kept")
	assert.Equal(t, time.Second, custom.LoginTimeout)
}

func TestCache_NewContextWithoutState(t *testing.T) {
	cache := NewCache(nil, Options{StatePath: filepath.Join(t.TempDir(), "missing", "state.json")})

	assert.False(t, cache.Exists())
	_, err := cache.NewContext()
	assert.ErrorIs(t, err, ErrNoState)
}

func TestCache_Exists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	cache := NewCache(nil, Options{StatePath: path})

	require.NoError(t, os.WriteFile(path, []byte(`{"cookies":[],"origins":[]}`), 0o600))
	assert.True(t, cache.Exists())
	assert.Equal(t, path, cache.StatePath())
}

func TestToken_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_data", "authentic.json")
	ts := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

	require.NoError(t, WriteToken(path, Token{AccessToken: "abc.def", Timestamp: ts}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"accessToken":"abc.def","timestamp":"2025-11-03T10:00:00Z"}`, string(data))

	token, err := ReadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token.AccessToken)
	assert.True(t, ts.Equal(token.Timestamp))
}

func TestReadToken_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadToken(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrNoState)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"timestamp":"2025-11-03T10:00:00Z"}`), 0o600))
	_, err = ReadToken(empty)
	assert.ErrorIs(t, err, ErrMissingToken)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{`), 0o600))
	_, err = ReadToken(broken)
	assert.Error(t, err)
}
