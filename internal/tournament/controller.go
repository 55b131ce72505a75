package tournament

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crazyeights/eights-server-go/internal/game"
)

// EliminationPolicy decides which of the players left holding cards at
// round end are eliminated from the tournament. It is deliberately
// separate from the stacking engine; variants differ on the rule here.
type EliminationPolicy interface {
	// Eliminate receives the ids of players who did not go safe this
	// round, in seating order, and returns the ids to eliminate.
	Eliminate(remaining []string, roundNumber int) []string
}

// LastPlayerStanding eliminates every player still holding cards when
// the round ends. With the engine ending rounds at one active player,
// that is the single last player who failed to shed their hand.
type LastPlayerStanding struct{}

// Eliminate implements EliminationPolicy.
func (LastPlayerStanding) Eliminate(remaining []string, _ int) []string {
	return remaining
}

// RoundState is the externally visible round bookkeeping.
type RoundState struct {
	RoundNumber          int
	SafePlayersThisRound []string
	EliminatedThisRound  []string
	TournamentActive     bool
	RoundInProgress      bool
	Winner               string
	StartedAt            time.Time
}

// Controller tracks multi-round elimination play over one match. It
// subscribes to engine events to learn when players go safe and when a
// round ends; it never inspects hands or piles itself.
//
// Event handlers run on the engine's goroutine while the match lock is
// held, so they only record state. AdvanceRound applies the elimination
// policy and deals the next round, and must be called from outside the
// event path (transport or scheduler).
type Controller struct {
	mu     sync.RWMutex
	match  *game.Match
	policy EliminationPolicy
	logger *zap.Logger

	roundNumber  int
	startedAt    time.Time
	safeOrder    []string
	eliminated   []string
	allSafe      map[string]bool
	roundLive    bool
	active       bool
	winner       string
}

// NewController creates a controller for the given match and subscribes
// it to the match's events.
func NewController(match *game.Match, policy EliminationPolicy, logger *zap.Logger) *Controller {
	if policy == nil {
		policy = LastPlayerStanding{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		match:   match,
		policy:  policy,
		logger:  logger,
		allSafe: make(map[string]bool),
		active:  true,
	}
	match.Events().Subscribe(c.handleEvent)
	return c
}

// StartTournament deals the first round.
func (c *Controller) StartTournament() error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return fmt.Errorf("tournament already finished")
	}
	if c.roundLive {
		c.mu.Unlock()
		return fmt.Errorf("round already in progress")
	}
	c.mu.Unlock()

	return c.match.StartGame()
}

func (c *Controller) handleEvent(event game.Event) {
	if event.MatchID != c.match.ID {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch event.Type {
	case game.EventGameStarted:
		if c.startedAt.IsZero() {
			c.startedAt = time.Now()
		}
		c.roundNumber++
		c.safeOrder = nil
		c.eliminated = nil
		c.allSafe = make(map[string]bool)
		c.roundLive = true
		c.logger.Info("tournament round started",
			zap.String("match_id", event.MatchID),
			zap.Int("round", c.roundNumber),
		)

	case game.EventHandEmpty:
		if c.allSafe[event.PlayerID] {
			return
		}
		c.allSafe[event.PlayerID] = true
		c.safeOrder = append(c.safeOrder, event.PlayerID)
		c.logger.Info("player safe",
			zap.String("match_id", event.MatchID),
			zap.String("player_id", event.PlayerID),
			zap.Int("round", c.roundNumber),
		)

	case game.EventMatchFinished:
		c.roundLive = false
		c.logger.Info("tournament round finished",
			zap.String("match_id", event.MatchID),
			zap.Int("round", c.roundNumber),
			zap.Int("safe_players", len(c.safeOrder)),
		)
	}
}

// AdvanceRound applies the elimination policy to the round that just
// ended and, if more than one player survives, deals the next round.
// It returns the finished round's final state.
func (c *Controller) AdvanceRound() (RoundState, error) {
	// Snapshot the match before taking the controller lock; engine event
	// handlers acquire the locks in the opposite order.
	snap := c.match.GetState()

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return RoundState{}, fmt.Errorf("tournament already finished")
	}
	if c.roundLive {
		c.mu.Unlock()
		return RoundState{}, fmt.Errorf("round still in progress")
	}

	remaining := make([]string, 0, len(snap.Players))
	for _, p := range snap.Players {
		if !p.IsEliminated && !c.allSafe[p.ID] {
			remaining = append(remaining, p.ID)
		}
	}
	eliminated := c.policy.Eliminate(remaining, c.roundNumber)
	c.eliminated = eliminated
	roundNumber := c.roundNumber
	c.mu.Unlock()

	for _, playerID := range eliminated {
		if err := c.match.Eliminate(playerID); err != nil {
			return RoundState{}, err
		}
		c.logger.Info("player eliminated",
			zap.String("match_id", c.match.ID),
			zap.String("player_id", playerID),
			zap.Int("round", roundNumber),
		)
	}

	survivors := c.survivors()
	if len(survivors) <= 1 {
		c.mu.Lock()
		c.active = false
		if len(survivors) == 1 {
			c.winner = survivors[0]
		}
		state := c.stateLocked()
		c.mu.Unlock()

		c.logger.Info("tournament finished",
			zap.String("match_id", c.match.ID),
			zap.String("winner", state.Winner),
			zap.Int("rounds", roundNumber),
		)
		return state, nil
	}

	// Capture the finished round before dealing the next one; the
	// GAME_STARTED event resets the per-round bookkeeping.
	c.mu.RLock()
	state := c.stateLocked()
	c.mu.RUnlock()

	if err := c.match.StartGame(); err != nil {
		return RoundState{}, err
	}
	return state, nil
}

// State returns the current round bookkeeping.
func (c *Controller) State() RoundState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() RoundState {
	safe := make([]string, len(c.safeOrder))
	copy(safe, c.safeOrder)
	eliminated := make([]string, len(c.eliminated))
	copy(eliminated, c.eliminated)
	return RoundState{
		RoundNumber:          c.roundNumber,
		SafePlayersThisRound: safe,
		EliminatedThisRound:  eliminated,
		TournamentActive:     c.active,
		RoundInProgress:      c.roundLive,
		Winner:               c.winner,
		StartedAt:            c.startedAt,
	}
}

// survivors lists players not yet eliminated from the tournament.
func (c *Controller) survivors() []string {
	snap := c.match.GetState()
	out := make([]string, 0, len(snap.Players))
	for _, p := range snap.Players {
		if !p.IsEliminated {
			out = append(out, p.ID)
		}
	}
	return out
}
