package browser

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelease_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	called := false
	Release(logger, "browser context", func() error {
		called = true
		return errors.New("target closed")
	})

	assert.True(t, called)
	assert.Contains(t, buf.String(), "Failed to release resource")
	assert.Contains(t, buf.String(), "resource=\"browser context\"")
	assert.Contains(t, buf.String(), "target closed")
}

func TestRelease_SilentOnSuccess(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	Release(logger, "browser", func() error { return nil })

	assert.Empty(t, buf.String())
}

func TestRelease_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	assert.NotPanics(t, func() {
		Release(logger, "playwright driver", func() error { panic("driver gone") })
	})
	assert.Contains(t, buf.String(), "driver gone")
}

func TestRelease_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		Release(nil, "browser", func() error { return errors.New("boom") })
	})
}

func TestWithDefaults(t *testing.T) {
	opts := withDefaults(Options{Headless: false, BaseURL: "http://localhost:8081"})

	assert.Equal(t, "chromium", opts.BrowserName)
	assert.Equal(t, DefaultOptions().DefaultTimeout, opts.DefaultTimeout)
	assert.Equal(t, DefaultOptions().NavigationTimeout, opts.NavigationTimeout)
	assert.Equal(t, "http://localhost:8081", opts.BaseURL)
	assert.NotNil(t, opts.Logger)
}
