package cinemaapp

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/uuid"
)

// DefaultSessionIdleTimeout is how long a browser session survives without requests.
const DefaultSessionIdleTimeout = 30 * time.Minute

// minCleanupInterval bounds how often idle sessions are swept.
const minCleanupInterval = 10 * time.Millisecond

// Selection is the schedule picked on the schedule page, kept until a room is chosen.
type Selection struct {
	MovieID   int64
	BranchID  int64
	StartDate string
	StartTime string
}

// Booking is a seat selection waiting for payment on the bill page.
type Booking struct {
	ScheduleID int64
	Seats      []int64
}

// Session is the server side state of a logged in browser.
type Session struct {
	ID        uuid.UUID
	UserID    int64
	Selection *Selection
	Pending   *Booking

	lastActive time.Time
}

// SessionManager keeps login sessions in memory and expires idle ones.
type SessionManager struct {
	sessions   map[uuid.UUID]*Session
	sessionsMu sync.RWMutex

	idleTimeout time.Duration
	logger      *slog.Logger

	cleanupCtx       context.Context
	cleanupCtxCancel context.CancelFunc
}

// SessionManagerOptions configures a SessionManager
type SessionManagerOptions struct {
	IdleTimeout time.Duration
	Logger      *slog.Logger
}

// NewSessionManager creates a new SessionManager and starts the cleanup goroutine
func NewSessionManager(opts SessionManagerOptions) *SessionManager {
	idleTimeout := opts.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = DefaultSessionIdleTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cleanupCtx, cleanupCtxCancel := context.WithCancel(context.Background())

	sm := &SessionManager{
		sessions:         make(map[uuid.UUID]*Session),
		idleTimeout:      idleTimeout,
		logger:           logger,
		cleanupCtx:       cleanupCtx,
		cleanupCtxCancel: cleanupCtxCancel,
	}

	go sm.cleanupLoop()

	return sm
}

// Create starts a session for a user and returns its id.
func (sm *SessionManager) Create(userID int64) uuid.UUID {
	id := uuid.Must(uuid.NewV4())

	sm.sessionsMu.Lock()
	sm.sessions[id] = &Session{
		ID:         id,
		UserID:     userID,
		lastActive: time.Now(),
	}
	sm.sessionsMu.Unlock()

	return id
}

// Get returns a copy of the session and marks it active.
func (sm *SessionManager) Get(sessionID uuid.UUID) (Session, bool) {
	sm.sessionsMu.Lock()
	defer sm.sessionsMu.Unlock()

	s, exists := sm.sessions[sessionID]
	if !exists {
		return Session{}, false
	}
	s.lastActive = time.Now()
	return *s, true
}

// Update modifies a session in place. It returns false if the session does not exist.
func (sm *SessionManager) Update(sessionID uuid.UUID, fn func(s *Session)) bool {
	sm.sessionsMu.Lock()
	defer sm.sessionsMu.Unlock()

	s, exists := sm.sessions[sessionID]
	if !exists {
		return false
	}
	fn(s)
	s.lastActive = time.Now()
	return true
}

// Delete removes a session
func (sm *SessionManager) Delete(sessionID uuid.UUID) {
	sm.sessionsMu.Lock()
	delete(sm.sessions, sessionID)
	sm.sessionsMu.Unlock()
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.sessionsMu.RLock()
	defer sm.sessionsMu.RUnlock()
	return len(sm.sessions)
}

// Close stops the cleanup goroutine and drops all sessions
func (sm *SessionManager) Close() {
	sm.cleanupCtxCancel()

	sm.sessionsMu.Lock()
	clear(sm.sessions)
	sm.sessionsMu.Unlock()
}

// cleanupInterval sweeps twice per idle timeout, but never more often than
// minCleanupInterval.
func cleanupInterval(idleTimeout time.Duration) time.Duration {
	return max(idleTimeout/2, minCleanupInterval)
}

func (sm *SessionManager) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval(sm.idleTimeout))
	defer ticker.Stop()

	for {
		select {
		case <-sm.cleanupCtx.Done():
			return
		case <-ticker.C:
			sm.cleanupIdleSessions()
		}
	}
}

func (sm *SessionManager) cleanupIdleSessions() {
	now := time.Now()

	sm.sessionsMu.Lock()
	defer sm.sessionsMu.Unlock()

	for sessionID, s := range sm.sessions {
		if idle := now.Sub(s.lastActive); idle > sm.idleTimeout {
			sm.logger.Debug("Expiring idle session", slog.String("session", sessionID.String()), slog.Duration("idle", idle))
			delete(sm.sessions, sessionID)
		}
	}
}
