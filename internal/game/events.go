package game

import (
	"sync"

	"github.com/crazyeights/eights-server-go/internal/game/cards"
)

// EventType identifies an engine event.
type EventType string

const (
	// EventGameStarted fires when a match deals and enters play.
	EventGameStarted EventType = "GAME_STARTED"
	// EventTurnChanged fires whenever the current player changes.
	EventTurnChanged EventType = "TURN_CHANGED"
	// EventAwaitingPass fires when a player has drawn and holds no
	// playable drawn card; an external scheduler may pass for them.
	EventAwaitingPass EventType = "AWAITING_PASS"
	// EventHandEmpty fires when a player sheds their last card.
	EventHandEmpty EventType = "HAND_EMPTY"
	// EventCardsPlayed fires after a successful play.
	EventCardsPlayed EventType = "CARDS_PLAYED"
	// EventDeckReshuffled fires when the discard pile is recycled into
	// a new draw pile.
	EventDeckReshuffled EventType = "DECK_RESHUFFLED"
	// EventMatchFinished fires when a match leaves the playing state.
	EventMatchFinished EventType = "MATCH_FINISHED"
)

// Event describes something that happened inside a match. Events are the
// only way timers, transports and tournament tracking observe the engine;
// subscribers never mutate table state directly.
type Event struct {
	Type          EventType
	MatchID       string
	PlayerID      string
	CurrentPlayer string
	Cards         []cards.Card
	DrawStack     int
}

// EventHandler consumes engine events. Handlers run synchronously on the
// operation's goroutine and must not call back into the emitting match.
type EventHandler func(Event)

// EventBus fans engine events out to subscribers.
type EventBus struct {
	mu       sync.RWMutex
	handlers []EventHandler
}

// NewEventBus creates an empty event bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a handler for all subsequent events.
func (b *EventBus) Subscribe(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish delivers an event to every subscriber in registration order.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}
