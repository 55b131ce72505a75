package rules

import (
	"fmt"

	"github.com/crazyeights/eights-server-go/internal/game/cards"
)

// TableView is the slice of table state legality checks depend on.
// The engine owns the authoritative state; validators only read it.
type TableView struct {
	DiscardTop   cards.Card
	DeclaredSuit *cards.Suit
	DrawStack    int
}

// EffectiveSuit returns the suit follow-up cards must match: the
// declared suit while an '8' is on top, the top card's own suit
// otherwise.
func (t TableView) EffectiveSuit() cards.Suit {
	if t.DeclaredSuit != nil {
		return *t.DeclaredSuit
	}
	return t.DiscardTop.Suit
}

// LegalityResult is the outcome of validating a proposed play.
type LegalityResult struct {
	Legal  bool
	Reason string
}

func legal() LegalityResult {
	return LegalityResult{Legal: true}
}

func illegal(format string, args ...any) LegalityResult {
	return LegalityResult{Legal: false, Reason: fmt.Sprintf(format, args...)}
}

// penaltyCounterStacks reports whether next may continue a penalty run
// begun by prev: same rank always stacks, and Ace and '2' cross-stack
// when they share a suit.
func penaltyCounterStacks(prev, next cards.Card) bool {
	if !prev.IsPenalty() || !next.IsPenalty() {
		return false
	}
	if prev.Rank == next.Rank {
		return true
	}
	return prev.Suit == next.Suit
}

// ValidateOpener checks whether card may open a play on the given table.
//
// With a draw penalty outstanding, only a counter is legal: a card of the
// top card's rank, or the Ace/'2' of the top card's suit. The wild '8'
// never counters a penalty. With no penalty, the '8' is always legal and
// every other card must match the effective suit or the top card's rank.
func ValidateOpener(card cards.Card, table TableView) LegalityResult {
	if table.DrawStack > 0 {
		if !card.IsPenalty() {
			return illegal("%s cannot answer a draw penalty of %d", card, table.DrawStack)
		}
		if !penaltyCounterStacks(table.DiscardTop, card) {
			return illegal("%s does not counter %s", card, table.DiscardTop)
		}
		return legal()
	}

	if card.IsWild() {
		return legal()
	}
	if card.Suit == table.EffectiveSuit() || card.Rank == table.DiscardTop.Rank {
		return legal()
	}
	return illegal("%s matches neither suit %s nor rank %s", card, table.EffectiveSuit(), table.DiscardTop.Rank)
}

// ValidateStack checks a proposed multi-card play card by card.
//
// The first card must satisfy ValidateOpener. Each later card must match
// the previous one by rank, cross-stack as a same-suit Ace/'2' pair, or
// rely on turn control: a same-suit card of a different rank, or any '8',
// is legal only when resolving the preceding cards leaves control with
// the acting player.
//
// A stack containing an '8' additionally requires a declared suit; that
// is the engine's check, not a card-legality failure, so it is not
// enforced here.
func ValidateStack(proposed []cards.Card, table TableView, activePlayerCount int) LegalityResult {
	if len(proposed) == 0 {
		return illegal("no cards proposed")
	}

	if result := ValidateOpener(proposed[0], table); !result.Legal {
		return result
	}

	for i := 1; i < len(proposed); i++ {
		prev, next := proposed[i-1], proposed[i]

		if prev.Rank == next.Rank {
			continue
		}
		if penaltyCounterStacks(prev, next) {
			continue
		}
		if next.Suit == prev.Suit || next.IsWild() {
			if Resolve(proposed[:i], activePlayerCount).RetainsControl {
				continue
			}
			return illegal("%s after %s requires keeping the turn", next, prev)
		}
		return illegal("%s cannot follow %s", next, prev)
	}
	return legal()
}

// StackContainsWild reports whether any proposed card is an '8'.
func StackContainsWild(proposed []cards.Card) bool {
	for _, card := range proposed {
		if card.IsWild() {
			return true
		}
	}
	return false
}
