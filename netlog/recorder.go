package netlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ErrTimeout is returned by Expect when no matching response arrived in time.
var ErrTimeout = errors.New("timed out waiting for response")

// ErrClosed is returned by Expect when the recorder was closed while waiting.
var ErrClosed = errors.New("recorder closed")

// RecorderOptions configures a Recorder.
type RecorderOptions struct {
	// Capacity is the number of responses kept for diagnostics.
	// Default: 200
	Capacity uint64
	// Logger receives debug output for every recorded response.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Recorder keeps the most recent responses of a page and notifies waiters.
type Recorder struct {
	buffer   *RingBuffer[Response]
	notifier *Notifier[Response]
	logger   *slog.Logger
}

// NewRecorder creates a recorder that is not yet attached to a page.
func NewRecorder(options RecorderOptions) *Recorder {
	if options.Capacity == 0 {
		options.Capacity = 200
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Recorder{
		buffer:   NewRingBuffer[Response](options.Capacity),
		notifier: NewNotifier[Response](),
		logger:   options.Logger,
	}
}

// Attach starts recording all responses of page.
func (r *Recorder) Attach(page playwright.Page) {
	page.OnResponse(func(resp playwright.Response) {
		r.Record(fromPlaywright(resp))
	})
}

// Record adds a response and wakes matching waiters.
func (r *Recorder) Record(resp Response) {
	r.logger.Debug("Observed response",
		slog.String("method", resp.Method),
		slog.Int("status", resp.Status),
		slog.String("url", resp.URL),
	)
	r.buffer.Add(resp)
	r.notifier.Notify(resp)
}

// Expect registers a waiter for a response matching match, then runs trigger,
// then waits up to timeout for the response. Registration happens before
// trigger runs, so a response caused by trigger cannot be missed no matter how
// fast it arrives.
func (r *Recorder) Expect(ctx context.Context, match Matcher, trigger func() error, timeout time.Duration) (Response, error) {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := r.notifier.Subscribe(subCtx, match)

	if err := trigger(); err != nil {
		return Response{}, fmt.Errorf("triggering action: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-ch:
		if !ok {
			if err := ctx.Err(); err != nil {
				return Response{}, err
			}
			return Response{}, ErrClosed
		}
		return resp, nil
	case <-timer.C:
		return Response{}, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Responses returns all recorded responses, oldest first.
func (r *Recorder) Responses() []Response {
	return r.buffer.All()
}

// Close wakes all pending waiters with ErrClosed.
func (r *Recorder) Close() {
	r.notifier.Close()
}
