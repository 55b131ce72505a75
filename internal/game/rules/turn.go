package rules

import "github.com/crazyeights/eights-server-go/internal/game/cards"

// Direction is the order in which turns pass around the table.
type Direction int

const (
	// DirectionForward advances turns in seating order.
	DirectionForward Direction = 1
	// DirectionBackward advances turns against seating order.
	DirectionBackward Direction = -1
)

func (d Direction) String() string {
	if d == DirectionBackward {
		return "BACKWARD"
	}
	return "FORWARD"
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	return -d
}

// TurnOutcome is the cumulative effect of resolving an ordered card
// sequence played by a single player in one turn.
type TurnOutcome struct {
	// FinalDirection is the play direction after the sequence, relative
	// to DirectionForward at its start. Callers multiply it into the
	// table direction.
	FinalDirection Direction
	// SkipCount is the number of players skipped beyond the normal
	// single advancement.
	SkipCount int
	// DrawDelta is the forced-draw penalty the sequence adds.
	DrawDelta int
	// RetainsControl reports whether the acting player plays again
	// immediately instead of passing the turn.
	RetainsControl bool
}

// Resolve computes the cumulative effect of orderedCards for a table
// with activePlayerCount players still in the turn order.
//
// Per-card effects: Ace adds 1 and '2' adds 2 to DrawDelta; Queen flips
// the direction; Jack accumulates one skip; '8' and every other rank
// advance the turn one step with no further effect here.
//
// Control retention uses the ring rule: a resolved sequence advances the
// turn SkipCount+1 seats, so the actor keeps control exactly when
// (SkipCount+1) mod activePlayerCount == 0. A non-empty all-Jack
// sequence with two active players always retains: each Jack skips the
// lone opponent and returns to the actor.
func Resolve(orderedCards []cards.Card, activePlayerCount int) TurnOutcome {
	outcome := TurnOutcome{FinalDirection: DirectionForward}
	if len(orderedCards) == 0 {
		return outcome
	}

	allJacks := true
	for _, card := range orderedCards {
		switch {
		case card.IsSkip():
			outcome.SkipCount++
		case card.IsReverse():
			outcome.FinalDirection = outcome.FinalDirection.Flip()
			allJacks = false
		default:
			outcome.DrawDelta += card.PenaltyValue()
			allJacks = false
		}
	}

	if activePlayerCount == 2 && allJacks {
		outcome.RetainsControl = true
		return outcome
	}
	if activePlayerCount > 0 && (outcome.SkipCount+1)%activePlayerCount == 0 {
		outcome.RetainsControl = true
	}
	return outcome
}
