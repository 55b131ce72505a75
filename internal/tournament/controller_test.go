package tournament

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crazyeights/eights-server-go/internal/game"
)

func newTestController(t *testing.T, playerIDs ...string) (*Controller, *game.Match) {
	t.Helper()
	match := game.NewMatch(game.MatchConfig{Seed: 1}, nil, nil)
	for _, id := range playerIDs {
		require.NoError(t, match.AddPlayer(id, id))
	}
	return NewController(match, LastPlayerStanding{}, nil), match
}

func TestStartTournamentDealsFirstRound(t *testing.T) {
	c, m := newTestController(t, "a", "b")

	require.NoError(t, c.StartTournament())

	state := c.State()
	assert.Equal(t, 1, state.RoundNumber)
	assert.True(t, state.RoundInProgress)
	assert.True(t, state.TournamentActive)
	assert.False(t, state.StartedAt.IsZero())
	assert.Equal(t, 1, m.GetState().RoundNumber)
}

func TestControllerRecordsSafePlayersInOrder(t *testing.T) {
	c, m := newTestController(t, "a", "b", "c")
	bus := m.Events()

	bus.Publish(game.Event{Type: game.EventGameStarted, MatchID: m.ID})
	bus.Publish(game.Event{Type: game.EventHandEmpty, MatchID: m.ID, PlayerID: "b"})
	bus.Publish(game.Event{Type: game.EventHandEmpty, MatchID: m.ID, PlayerID: "b"})
	bus.Publish(game.Event{Type: game.EventHandEmpty, MatchID: m.ID, PlayerID: "a"})
	bus.Publish(game.Event{Type: game.EventMatchFinished, MatchID: m.ID})

	state := c.State()
	assert.Equal(t, []string{"b", "a"}, state.SafePlayersThisRound, "duplicates ignored, order kept")
	assert.False(t, state.RoundInProgress)
}

func TestControllerIgnoresOtherMatches(t *testing.T) {
	c, m := newTestController(t, "a", "b")

	m.Events().Publish(game.Event{Type: game.EventGameStarted, MatchID: "someone-else"})

	assert.Equal(t, 0, c.State().RoundNumber)
}

func TestAdvanceRoundEliminatesAndDealsNext(t *testing.T) {
	c, m := newTestController(t, "a", "b", "c")
	bus := m.Events()

	bus.Publish(game.Event{Type: game.EventGameStarted, MatchID: m.ID})
	bus.Publish(game.Event{Type: game.EventHandEmpty, MatchID: m.ID, PlayerID: "a"})
	bus.Publish(game.Event{Type: game.EventHandEmpty, MatchID: m.ID, PlayerID: "b"})
	bus.Publish(game.Event{Type: game.EventMatchFinished, MatchID: m.ID})

	round, err := c.AdvanceRound()
	require.NoError(t, err)

	assert.Equal(t, 1, round.RoundNumber)
	assert.Equal(t, []string{"c"}, round.EliminatedThisRound)
	assert.True(t, round.TournamentActive)

	// The next round has been dealt for the two survivors.
	state := c.State()
	assert.Equal(t, 2, state.RoundNumber)
	assert.True(t, state.RoundInProgress)
	snap := m.GetState()
	for _, p := range snap.Players {
		if p.ID == "c" {
			assert.True(t, p.IsEliminated)
			assert.Equal(t, 0, p.HandSize)
		} else {
			assert.False(t, p.IsEliminated)
			assert.NotZero(t, p.HandSize)
		}
	}
}

func TestAdvanceRoundDeclaresWinner(t *testing.T) {
	c, m := newTestController(t, "a", "b")
	bus := m.Events()

	bus.Publish(game.Event{Type: game.EventGameStarted, MatchID: m.ID})
	bus.Publish(game.Event{Type: game.EventHandEmpty, MatchID: m.ID, PlayerID: "a"})
	bus.Publish(game.Event{Type: game.EventMatchFinished, MatchID: m.ID})

	round, err := c.AdvanceRound()
	require.NoError(t, err)

	assert.Equal(t, "a", round.Winner)
	assert.False(t, round.TournamentActive)
	assert.Equal(t, []string{"b"}, round.EliminatedThisRound)

	// A finished tournament accepts no further operations.
	require.Error(t, c.StartTournament())
	_, err = c.AdvanceRound()
	require.Error(t, err)
}

func TestAdvanceRoundRejectedWhileRoundLive(t *testing.T) {
	c, m := newTestController(t, "a", "b")

	m.Events().Publish(game.Event{Type: game.EventGameStarted, MatchID: m.ID})

	_, err := c.AdvanceRound()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in progress")
}
