package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session associates a transport connection with a stable player
// identity. PlayerID never changes across reconnects; only the
// ConnectionID is rebound.
type Session struct {
	ID           string
	PlayerID     string
	PlayerName   string
	ConnectionID string
	MatchID      string
	LastSeen     time.Time
}

// Manager owns all live sessions. The engine never sees connection
// identifiers; everything here stays in the transport layer.
type Manager struct {
	mu           sync.RWMutex
	sessions     map[string]*Session // session id -> session
	byPlayer     map[string]string   // player id -> session id
	byConnection map[string]string   // connection id -> session id
	leasePeriod  time.Duration
	logger       *zap.Logger
}

// NewManager creates a session manager whose sessions expire after
// leasePeriod without activity.
func NewManager(leasePeriod time.Duration, logger *zap.Logger) *Manager {
	if leasePeriod <= 0 {
		leasePeriod = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions:     make(map[string]*Session),
		byPlayer:     make(map[string]string),
		byConnection: make(map[string]string),
		leasePeriod:  leasePeriod,
		logger:       logger,
	}
}

// Create registers a session for a new player.
func (m *Manager) Create(playerName string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := &Session{
		ID:         uuid.New().String(),
		PlayerID:   uuid.New().String(),
		PlayerName: playerName,
		LastSeen:   time.Now(),
	}
	m.sessions[sess.ID] = sess
	m.byPlayer[sess.PlayerID] = sess.ID

	m.logger.Debug("session created",
		zap.String("session_id", sess.ID),
		zap.String("player_id", sess.PlayerID),
	)
	return sess
}

// Get returns the session with the given id and refreshes its lease.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	sess.LastSeen = time.Now()
	return sess, true
}

// ByPlayer returns the session for a player id.
func (m *Manager) ByPlayer(playerID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byPlayer[playerID]
	if !ok {
		return nil, false
	}
	sess, ok := m.sessions[id]
	return sess, ok
}

// ByConnection returns the session currently bound to a connection id.
func (m *Manager) ByConnection(connectionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byConnection[connectionID]
	if !ok {
		return nil, false
	}
	sess, ok := m.sessions[id]
	return sess, ok
}

// BindConnection points the session at a new transport connection,
// replacing any previous binding. This is the entirety of reconnection
// as the engine is concerned; table state is untouched.
func (m *Manager) BindConnection(sessionID, connectionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return false
	}
	if sess.ConnectionID != "" {
		delete(m.byConnection, sess.ConnectionID)
	}
	sess.ConnectionID = connectionID
	sess.LastSeen = time.Now()
	if connectionID != "" {
		m.byConnection[connectionID] = sessionID
	}
	return true
}

// UnbindConnection clears the binding for a dropped connection and
// returns the affected session, if any.
func (m *Manager) UnbindConnection(connectionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byConnection[connectionID]
	if !ok {
		return nil, false
	}
	delete(m.byConnection, connectionID)
	sess := m.sessions[id]
	if sess != nil {
		sess.ConnectionID = ""
		sess.LastSeen = time.Now()
	}
	return sess, sess != nil
}

// SetMatch records which match the session's player is seated at.
func (m *Manager) SetMatch(sessionID, matchID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return false
	}
	sess.MatchID = matchID
	return true
}

// CleanupExpiredSessions drops sessions idle past the lease period. It
// runs until ctx is cancelled.
func (m *Manager) CleanupExpiredSessions(ctx context.Context) {
	ticker := time.NewTicker(m.leasePeriod / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.expire(time.Now().Add(-m.leasePeriod))
		}
	}
}

func (m *Manager) expire(cutoff time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, sess := range m.sessions {
		// A session with a live connection never expires.
		if sess.ConnectionID != "" || sess.LastSeen.After(cutoff) {
			continue
		}
		delete(m.sessions, id)
		delete(m.byPlayer, sess.PlayerID)
		m.logger.Info("session expired",
			zap.String("session_id", id),
			zap.String("player_id", sess.PlayerID),
		)
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
