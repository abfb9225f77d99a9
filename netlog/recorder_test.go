package netlog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/cinematest/netlog"
)

var loginPost = netlog.MethodAndURLContains("POST", "/account/login")

func TestRecorder_ExpectObservesResponseEmittedByTrigger(t *testing.T) {
	rec := netlog.NewRecorder(netlog.RecorderOptions{})
	defer rec.Close()

	// The response arrives synchronously inside the trigger, before Expect starts waiting.
	resp, err := rec.Expect(context.Background(), loginPost, func() error {
		rec.Record(netlog.Response{Method: "POST", URL: "http://localhost:8081/account/login", Status: 303})
		return nil
	}, time.Second)

	require.NoError(t, err)
	assert.Equal(t, 303, resp.Status)
}

func TestRecorder_ExpectObservesFastAsyncResponse(t *testing.T) {
	rec := netlog.NewRecorder(netlog.RecorderOptions{})
	defer rec.Close()

	for i := 0; i < 200; i++ {
		_, err := rec.Expect(context.Background(), loginPost, func() error {
			go rec.Record(netlog.Response{Method: "POST", URL: "/account/login", Status: 200})
			return nil
		}, time.Second)
		require.NoError(t, err, "iteration %d", i)
	}
}

func TestRecorder_ExpectIgnoresEarlierAndNonMatchingResponses(t *testing.T) {
	rec := netlog.NewRecorder(netlog.RecorderOptions{})
	defer rec.Close()

	// Recorded before the waiter existed, must not satisfy it
	rec.Record(netlog.Response{Method: "POST", URL: "/account/login", Status: 400})

	_, err := rec.Expect(context.Background(), loginPost, func() error {
		rec.Record(netlog.Response{Method: "GET", URL: "/account/login", Status: 200})
		rec.Record(netlog.Response{Method: "POST", URL: "/account/register", Status: 200})
		return nil
	}, 50*time.Millisecond)

	require.Error(t, err)
	assert.True(t, errors.Is(err, netlog.ErrTimeout))
	assert.Len(t, rec.Responses(), 3, "all responses are recorded regardless of waiters")
}

func TestRecorder_ExpectTriggerError(t *testing.T) {
	rec := netlog.NewRecorder(netlog.RecorderOptions{})
	defer rec.Close()

	triggerErr := errors.New("element not found")
	_, err := rec.Expect(context.Background(), loginPost, func() error {
		return triggerErr
	}, time.Second)

	require.Error(t, err)
	assert.ErrorIs(t, err, triggerErr)
}

func TestRecorder_ExpectContextCancelled(t *testing.T) {
	rec := netlog.NewRecorder(netlog.RecorderOptions{})
	defer rec.Close()

	ctx, cancel := context.WithCancel(context.Background())
	_, err := rec.Expect(ctx, loginPost, func() error {
		cancel()
		return nil
	}, time.Second)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecorder_ExpectRecorderClosed(t *testing.T) {
	rec := netlog.NewRecorder(netlog.RecorderOptions{})

	_, err := rec.Expect(context.Background(), loginPost, func() error {
		rec.Close()
		return nil
	}, time.Second)

	assert.ErrorIs(t, err, netlog.ErrClosed)
}

func TestRecorder_CapacityAndDump(t *testing.T) {
	rec := netlog.NewRecorder(netlog.RecorderOptions{Capacity: 2})
	defer rec.Close()

	rec.Record(netlog.Response{Method: "GET", URL: "/", Status: 200})
	rec.Record(netlog.Response{Method: "GET", URL: "/branches?movieId=7", Status: 200})
	rec.Record(netlog.Response{Method: "POST", URL: "/bill", Status: 200})

	var buf bytes.Buffer
	require.NoError(t, rec.Dump(&buf, false))

	var dumped []netlog.Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &dumped))
	require.Len(t, dumped, 2)
	assert.Equal(t, "/branches?movieId=7", dumped[0].URL)
	assert.Equal(t, "POST", dumped[1].Method)

	assert.Contains(t, rec.Summary(), "POST 200 /bill")
}

func TestRecorder_DumpHighlighted(t *testing.T) {
	rec := netlog.NewRecorder(netlog.RecorderOptions{})
	defer rec.Close()
	rec.Record(netlog.Response{Method: "GET", URL: "/tickets/history", Status: 200})

	var buf bytes.Buffer
	require.NoError(t, rec.Dump(&buf, true))

	assert.Contains(t, buf.String(), "\x1b[", "terminal output contains escape sequences")
	assert.Contains(t, buf.String(), "/tickets/history")
}

func TestMethodAndURLContains(t *testing.T) {
	assert.True(t, loginPost(netlog.Response{Method: "post", URL: "http://localhost:8081/account/login?next=/"}))
	assert.False(t, loginPost(netlog.Response{Method: "GET", URL: "http://localhost:8081/account/login"}))
	assert.False(t, loginPost(netlog.Response{Method: "POST", URL: "http://localhost:8081/login"}))
}
