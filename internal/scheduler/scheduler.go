package scheduler

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crazyeights/eights-server-go/internal/game"
	"github.com/crazyeights/eights-server-go/internal/game/cards"
)

// Scheduler drives turn timeouts. When a player lets their turn expire
// it draws for them and then either plays the drawn card or passes,
// using only the engine's public operations. The engine itself stays
// oblivious to wall-clock time.
type Scheduler struct {
	mu       sync.Mutex
	registry game.Registry
	timeout  time.Duration
	logger   *zap.Logger
	timers   map[string]*time.Timer // match id -> armed timer
	armedFor map[string]string      // match id -> player the timer is for
	stopped  bool
}

// New creates a scheduler over the given match registry and subscribes
// it to the event bus. A non-positive timeout disables auto-play.
func New(registry game.Registry, bus *game.EventBus, timeout time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		registry: registry,
		timeout:  timeout,
		logger:   logger,
		timers:   make(map[string]*time.Timer),
		armedFor: make(map[string]string),
	}
	if timeout > 0 && bus != nil {
		bus.Subscribe(s.handleEvent)
	}
	return s
}

// Stop cancels all armed timers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
		delete(s.armedFor, id)
	}
}

// handleEvent runs on the engine's goroutine; it only re-arms timers.
// The timeout work itself happens later on the timer goroutine.
func (s *Scheduler) handleEvent(event game.Event) {
	switch event.Type {
	case game.EventGameStarted, game.EventTurnChanged, game.EventCardsPlayed, game.EventAwaitingPass:
		s.arm(event.MatchID, event.CurrentPlayer)
	case game.EventMatchFinished:
		s.disarm(event.MatchID)
	}
}

func (s *Scheduler) arm(matchID, playerID string) {
	if playerID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if timer, ok := s.timers[matchID]; ok {
		timer.Stop()
	}
	s.armedFor[matchID] = playerID
	s.timers[matchID] = time.AfterFunc(s.timeout, func() {
		s.fire(matchID, playerID)
	})
}

func (s *Scheduler) disarm(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[matchID]; ok {
		timer.Stop()
		delete(s.timers, matchID)
	}
	delete(s.armedFor, matchID)
}

// fire performs the timed-out player's turn for them.
func (s *Scheduler) fire(matchID, playerID string) {
	s.mu.Lock()
	if s.stopped || s.armedFor[matchID] != playerID {
		s.mu.Unlock()
		return
	}
	delete(s.armedFor, matchID)
	s.mu.Unlock()

	match, ok := s.registry.Get(matchID)
	if !ok {
		return
	}
	snap := match.GetState()
	if snap.CurrentPlayerID != playerID || snap.GameState == string(game.StateFinished) {
		return
	}

	s.logger.Info("turn timed out, auto-playing",
		zap.String("match_id", matchID),
		zap.String("player_id", playerID),
	)

	if snap.GameState == string(game.PlayStateAwaitingTurnPass) {
		if err := match.PassTurnAfterDraw(playerID); err != nil {
			s.logger.Warn("auto-pass failed", zap.String("match_id", matchID), zap.Error(err))
		}
		return
	}

	result, err := match.DrawCards(playerID, 1)
	if err != nil {
		s.logger.Warn("auto-draw failed", zap.String("match_id", matchID), zap.Error(err))
		return
	}
	if !result.CanPlayDrawnCard {
		if err := match.PassTurnAfterDraw(playerID); err != nil {
			s.logger.Warn("auto-pass failed", zap.String("match_id", matchID), zap.Error(err))
		}
		return
	}

	card := result.PlayableDrawnCards[0]
	var declared *cards.Suit
	if card.IsWild() {
		suit := s.preferredSuit(match, playerID, card)
		declared = &suit
	}
	if _, err := match.PlayCards(playerID, []cards.Card{card}, declared); err != nil {
		s.logger.Warn("auto-play failed", zap.String("match_id", matchID), zap.Error(err))
	}
}

// preferredSuit picks the suit the player holds most of, so an
// auto-played '8' declares something the player can follow.
func (s *Scheduler) preferredSuit(match *game.Match, playerID string, played cards.Card) cards.Suit {
	hand, err := match.HandOf(playerID)
	if err != nil {
		return played.Suit
	}
	counts := make(map[cards.Suit]int)
	for _, card := range hand {
		if card != played {
			counts[card.Suit]++
		}
	}
	best := played.Suit
	bestCount := -1
	for _, suit := range cards.Suits {
		if counts[suit] > bestCount {
			best, bestCount = suit, counts[suit]
		}
	}
	return best
}
