package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crazyeights/eights-server-go/internal/game"
)

func startedMatch(t *testing.T, mgr *game.Manager) *game.Match {
	t.Helper()
	match := mgr.Create(game.MatchConfig{Seed: 3})
	require.NoError(t, match.AddPlayer("a", "a"))
	require.NoError(t, match.AddPlayer("b", "b"))
	require.NoError(t, match.StartGame())
	return match
}

func TestTimeoutAutoPlaysTurn(t *testing.T) {
	bus := game.NewEventBus()
	mgr := game.NewManager(bus, nil)
	s := New(mgr, bus, 25*time.Millisecond, nil)
	defer s.Stop()

	match := startedMatch(t, mgr)
	first := match.GetState().CurrentPlayerID

	// The timed-out player draws and then plays or passes; either way
	// the turn leaves them.
	assert.Eventually(t, func() bool {
		return match.GetState().CurrentPlayerID != first
	}, 2*time.Second, 10*time.Millisecond)
}

func TestActingResetsTimer(t *testing.T) {
	bus := game.NewEventBus()
	mgr := game.NewManager(bus, nil)
	s := New(mgr, bus, 60*time.Millisecond, nil)
	defer s.Stop()

	match := startedMatch(t, mgr)
	snap := match.GetState()

	// Acting before the deadline re-arms for the next player, so the
	// original player never gets auto-played.
	_, err := match.DrawCards(snap.CurrentPlayerID, 1)
	require.NoError(t, err)

	after := match.GetState()
	if after.GameState == string(game.PlayStateAwaitingTurnPass) {
		require.NoError(t, match.PassTurnAfterDraw(snap.CurrentPlayerID))
	}

	// The next player times out in turn.
	assert.Eventually(t, func() bool {
		return match.GetState().CurrentPlayerID == snap.CurrentPlayerID ||
			match.GetState().GameState == string(game.StateFinished)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStopCancelsTimers(t *testing.T) {
	bus := game.NewEventBus()
	mgr := game.NewManager(bus, nil)
	s := New(mgr, bus, 30*time.Millisecond, nil)

	match := startedMatch(t, mgr)
	first := match.GetState().CurrentPlayerID
	s.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, first, match.GetState().CurrentPlayerID, "stopped scheduler leaves the match alone")
}

func TestDisabledTimeoutNeverArms(t *testing.T) {
	bus := game.NewEventBus()
	mgr := game.NewManager(bus, nil)
	_ = New(mgr, bus, 0, nil)

	match := startedMatch(t, mgr)
	first := match.GetState().CurrentPlayerID

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, first, match.GetState().CurrentPlayerID)
}
