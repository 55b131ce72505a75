package game

import (
	"sync"

	"go.uber.org/zap"
)

// Registry is the arena of live matches keyed by match id. It is
// injected into the transport layer rather than living in a package
// global, so tests and tools can run isolated arenas.
type Registry interface {
	Create(cfg MatchConfig) *Match
	Get(matchID string) (*Match, bool)
	Remove(matchID string)
	List() []*Match
}

// Manager is the default in-memory Registry.
type Manager struct {
	mu      sync.RWMutex
	matches map[string]*Match
	events  *EventBus
	logger  *zap.Logger
}

// NewManager creates an empty match manager. Every match it creates
// shares the given event bus.
func NewManager(events *EventBus, logger *zap.Logger) *Manager {
	if events == nil {
		events = NewEventBus()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		matches: make(map[string]*Match),
		events:  events,
		logger:  logger,
	}
}

// Events returns the bus shared by all managed matches.
func (mgr *Manager) Events() *EventBus {
	return mgr.events
}

// Create registers a new waiting match.
func (mgr *Manager) Create(cfg MatchConfig) *Match {
	match := NewMatch(cfg, mgr.events, mgr.logger)

	mgr.mu.Lock()
	mgr.matches[match.ID] = match
	mgr.mu.Unlock()

	mgr.logger.Info("match created", zap.String("match_id", match.ID))
	return match
}

// Get returns the match with the given id.
func (mgr *Manager) Get(matchID string) (*Match, bool) {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	match, ok := mgr.matches[matchID]
	return match, ok
}

// Remove drops a match from the arena.
func (mgr *Manager) Remove(matchID string) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	delete(mgr.matches, matchID)
}

// List returns all live matches.
func (mgr *Manager) List() []*Match {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()

	out := make([]*Match, 0, len(mgr.matches))
	for _, match := range mgr.matches {
		out = append(out, match)
	}
	return out
}
