package rules

import (
	"testing"

	"github.com/crazyeights/eights-server-go/internal/game/cards"
)

func table(top cards.Card, declared *cards.Suit, drawStack int) TableView {
	return TableView{DiscardTop: top, DeclaredSuit: declared, DrawStack: drawStack}
}

func TestValidateOpenerNoPenalty(t *testing.T) {
	top := card(cards.RankSeven, cards.SuitHearts)

	tests := []struct {
		name  string
		card  cards.Card
		legal bool
	}{
		{"same suit", card(cards.RankKing, cards.SuitHearts), true},
		{"same rank", card(cards.RankSeven, cards.SuitClubs), true},
		{"wild eight any suit", card(cards.RankEight, cards.SuitSpades), true},
		{"no match", card(cards.RankKing, cards.SuitSpades), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateOpener(tt.card, table(top, nil, 0))
			if got.Legal != tt.legal {
				t.Errorf("Legal = %v, want %v (%s)", got.Legal, tt.legal, got.Reason)
			}
		})
	}
}

func TestValidateOpenerDeclaredSuit(t *testing.T) {
	top := card(cards.RankEight, cards.SuitHearts)
	declared := cards.SuitSpades

	if got := ValidateOpener(card(cards.RankKing, cards.SuitSpades), table(top, &declared, 0)); !got.Legal {
		t.Errorf("king of declared suit should be legal: %s", got.Reason)
	}
	if got := ValidateOpener(card(cards.RankKing, cards.SuitHearts), table(top, &declared, 0)); got.Legal {
		t.Error("king of the eight's own suit should be illegal once another suit is declared")
	}
}

func TestValidateOpenerUnderPenalty(t *testing.T) {
	topTwo := card(cards.RankTwo, cards.SuitClubs)

	tests := []struct {
		name  string
		card  cards.Card
		legal bool
	}{
		{"matching two", card(cards.RankTwo, cards.SuitHearts), true},
		{"same-suit ace cross-stack", card(cards.RankAce, cards.SuitClubs), true},
		{"off-suit ace", card(cards.RankAce, cards.SuitHearts), false},
		{"wild eight never counters", card(cards.RankEight, cards.SuitClubs), false},
		{"plain card", card(cards.RankNine, cards.SuitClubs), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateOpener(tt.card, table(topTwo, nil, 2))
			if got.Legal != tt.legal {
				t.Errorf("Legal = %v, want %v (%s)", got.Legal, tt.legal, got.Reason)
			}
		})
	}
}

func TestValidateStackSameRankRun(t *testing.T) {
	top := card(cards.RankSeven, cards.SuitHearts)
	stack := []cards.Card{
		card(cards.RankSeven, cards.SuitHearts),
		card(cards.RankSeven, cards.SuitClubs),
		card(cards.RankSeven, cards.SuitSpades),
	}
	if got := ValidateStack(stack, table(top, nil, 0), 4); !got.Legal {
		t.Errorf("same-rank run should be legal: %s", got.Reason)
	}
}

func TestValidateStackPenaltyCrossStack(t *testing.T) {
	topTwo := card(cards.RankTwo, cards.SuitDiamonds)
	stack := []cards.Card{
		card(cards.RankTwo, cards.SuitClubs),
		card(cards.RankAce, cards.SuitClubs),
	}
	if got := ValidateStack(stack, table(topTwo, nil, 2), 3); !got.Legal {
		t.Errorf("same-suit ace/two cross-stack should be legal: %s", got.Reason)
	}

	offSuit := []cards.Card{
		card(cards.RankTwo, cards.SuitClubs),
		card(cards.RankAce, cards.SuitHearts),
	}
	if got := ValidateStack(offSuit, table(topTwo, nil, 2), 3); got.Legal {
		t.Error("off-suit ace after a two should be illegal")
	}
}

func TestValidateStackSameSuitNeedsControl(t *testing.T) {
	top := card(cards.RankFive, cards.SuitHearts)

	// Jack then another heart: heads-up the jack returns the turn, so
	// the follow-up is legal; with three players it is not.
	stack := []cards.Card{
		card(cards.RankJack, cards.SuitHearts),
		card(cards.RankNine, cards.SuitHearts),
	}
	if got := ValidateStack(stack, table(top, nil, 0), 2); !got.Legal {
		t.Errorf("heads-up jack chain should be legal: %s", got.Reason)
	}
	if got := ValidateStack(stack, table(top, nil, 0), 3); got.Legal {
		t.Error("three-player jack chain should be illegal")
	}
}

func TestValidateStackEightAppendNeedsControl(t *testing.T) {
	top := card(cards.RankFive, cards.SuitHearts)

	stack := []cards.Card{
		card(cards.RankJack, cards.SuitHearts),
		card(cards.RankEight, cards.SuitSpades),
	}
	if got := ValidateStack(stack, table(top, nil, 0), 2); !got.Legal {
		t.Errorf("appending an eight while keeping control should be legal: %s", got.Reason)
	}
	if got := ValidateStack(stack, table(top, nil, 0), 4); got.Legal {
		t.Error("appending an eight without control should be illegal")
	}
}

func TestValidateStackRejectsUnrelatedPair(t *testing.T) {
	top := card(cards.RankFive, cards.SuitHearts)
	stack := []cards.Card{
		card(cards.RankFive, cards.SuitHearts),
		card(cards.RankNine, cards.SuitClubs),
	}
	got := ValidateStack(stack, table(top, nil, 0), 3)
	if got.Legal {
		t.Fatal("unrelated pair should be illegal")
	}
	if got.Reason == "" {
		t.Error("rejection should name the offending pair")
	}
}

func TestValidateStackEmpty(t *testing.T) {
	if got := ValidateStack(nil, table(card(cards.RankFive, cards.SuitHearts), nil, 0), 3); got.Legal {
		t.Error("empty stack should be illegal")
	}
}

func TestStackContainsWild(t *testing.T) {
	if StackContainsWild([]cards.Card{card(cards.RankSeven, cards.SuitHearts)}) {
		t.Error("seven is not wild")
	}
	if !StackContainsWild([]cards.Card{
		card(cards.RankSeven, cards.SuitHearts),
		card(cards.RankEight, cards.SuitHearts),
	}) {
		t.Error("stack with an eight should report wild")
	}
}
