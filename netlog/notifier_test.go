package netlog_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/cinematest/netlog"
)

func TestNotifier_BasicFunctionality(t *testing.T) {
	t.Parallel()

	notifier := netlog.NewNotifier[string]()
	defer notifier.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := notifier.Subscribe(ctx, nil)
	notifier.Notify("Hello, World!")

	select {
	case msg := <-ch:
		assert.Equal(t, "Hello, World!", msg)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timed out waiting for notification")
	}
}

func TestNotifier_MatchFiltersItems(t *testing.T) {
	t.Parallel()

	notifier := netlog.NewNotifierWithOptions[string](netlog.NotifierOptions{SubscriberBufferSize: 1})
	defer notifier.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := notifier.Subscribe(ctx, func(s string) bool {
		return strings.HasPrefix(s, "POST ")
	})

	// Non-matching items must not occupy the single buffer slot
	for i := 0; i < 10; i++ {
		notifier.Notify("GET /static/app.css")
	}
	notifier.Notify("POST /account/login")

	select {
	case msg := <-ch:
		assert.Equal(t, "POST /account/login", msg)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("matching item was lost")
	}
}

func TestNotifier_NotifyRightAfterSubscribe(t *testing.T) {
	t.Parallel()

	notifier := netlog.NewNotifier[int]()
	defer notifier.Close()

	for i := 0; i < 1000; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		ch := notifier.Subscribe(ctx, nil)
		notifier.Notify(i)

		select {
		case got := <-ch:
			require.Equal(t, i, got)
		default:
			cancel()
			t.Fatalf("notification %d sent right after subscribe was lost", i)
		}
		cancel()
	}
}

func TestNotifier_UnsubscribeOnContextDone(t *testing.T) {
	t.Parallel()

	notifier := netlog.NewNotifier[string]()
	defer notifier.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := notifier.Subscribe(ctx, nil)
	assert.Equal(t, 1, notifier.Subscribers())

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("subscription was not removed after context cancellation")
	}
	assert.Equal(t, 0, notifier.Subscribers())
}

func TestNotifier_Close(t *testing.T) {
	t.Parallel()

	notifier := netlog.NewNotifier[string]()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := notifier.Subscribe(ctx, nil)
	notifier.Close()
	notifier.Close()

	_, ok := <-ch
	assert.False(t, ok)

	// Subscribing after close yields a closed channel, notifying is a no-op
	late := notifier.Subscribe(ctx, nil)
	_, ok = <-late
	assert.False(t, ok)
	notifier.Notify("ignored")
}
