package session

import (
	"errors"
	"fmt"
	"log/slog"
)

// State is a step of a single session capture.
type State int

const (
	StateIdle State = iota
	StateNavigatedToApp
	StateLoginFormOpen
	StateCredentialsFilled
	StateSubmitIssued
	StateAwaitingLoginResponse
	StateAuthenticated
	StateTimedOut
	StateStatePersisted
	StateCleanedUp
)

var stateNames = map[State]string{
	StateIdle:                  "Idle",
	StateNavigatedToApp:        "NavigatedToApp",
	StateLoginFormOpen:         "LoginFormOpen",
	StateCredentialsFilled:     "CredentialsFilled",
	StateSubmitIssued:          "SubmitIssued",
	StateAwaitingLoginResponse: "AwaitingLoginResponse",
	StateAuthenticated:         "Authenticated",
	StateTimedOut:              "TimedOut",
	StateStatePersisted:        "StatePersisted",
	StateCleanedUp:             "CleanedUp",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrLoginTimeout means the login response never arrived.
	ErrLoginTimeout = errors.New("login response timeout")
	// ErrElementNotFound means a login control could not be located in time.
	ErrElementNotFound = errors.New("element not found")
	// ErrNoState means no persisted session state exists yet.
	ErrNoState = errors.New("no persisted session state")
)

// CaptureError is returned when a capture is abandoned. State is the last
// state reached before the failure.
type CaptureError struct {
	State State
	Err   error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("session capture failed in state %s: %v", e.State, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// capture tracks the state of one capture invocation.
type capture struct {
	state  State
	logger *slog.Logger
}

func (c *capture) transition(next State) {
	c.logger.Debug("Session capture transition",
		slog.String("from", c.state.String()),
		slog.String("to", next.String()),
	)
	c.state = next
}

func (c *capture) fail(err error) error {
	return &CaptureError{State: c.state, Err: err}
}
