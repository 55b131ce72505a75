package cards

import (
	"math/rand"
	"testing"
)

func TestNewDeckDistinct(t *testing.T) {
	deck := NewDeck(1)
	if len(deck) != 52 {
		t.Fatalf("deck size = %d, want 52", len(deck))
	}
	seen := make(map[Card]bool, 52)
	for _, card := range deck {
		if seen[card] {
			t.Errorf("duplicate card %s", card)
		}
		seen[card] = true
	}
}

func TestNewDeckMultiple(t *testing.T) {
	deck := NewDeck(2)
	if len(deck) != 104 {
		t.Fatalf("deck size = %d, want 104", len(deck))
	}
	counts := make(map[Card]int)
	for _, card := range deck {
		counts[card]++
	}
	for card, n := range counts {
		if n != 2 {
			t.Errorf("card %s appears %d times, want 2", card, n)
		}
	}
}

func TestShufflePreservesCards(t *testing.T) {
	deck := NewDeck(1)
	shuffled := Shuffle(deck, rand.New(rand.NewSource(1)))
	if len(shuffled) != len(deck) {
		t.Fatalf("shuffled size = %d, want %d", len(shuffled), len(deck))
	}
	counts := make(map[Card]int)
	for _, card := range shuffled {
		counts[card]++
	}
	for _, card := range deck {
		counts[card]--
	}
	for card, n := range counts {
		if n != 0 {
			t.Errorf("card %s count off by %d after shuffle", card, n)
		}
	}
}

func TestRemoveCards(t *testing.T) {
	hand := []Card{
		{Rank: RankSeven, Suit: SuitHearts},
		{Rank: RankEight, Suit: SuitHearts},
		{Rank: RankSeven, Suit: SuitClubs},
	}

	updated, ok := RemoveCards(hand, []Card{{Rank: RankSeven, Suit: SuitHearts}})
	if !ok {
		t.Fatal("expected removal to succeed")
	}
	if len(updated) != 2 {
		t.Fatalf("hand size = %d, want 2", len(updated))
	}

	// Removing a card that is not held fails and leaves the hand alone.
	same, ok := RemoveCards(hand, []Card{{Rank: RankKing, Suit: SuitSpades}})
	if ok {
		t.Fatal("expected removal to fail")
	}
	if len(same) != 3 {
		t.Fatalf("hand size = %d after failed removal, want 3", len(same))
	}
}

func TestRemoveCardsMultiplicity(t *testing.T) {
	two := Card{Rank: RankTwo, Suit: SuitHearts}
	hand := []Card{two, two}

	updated, ok := RemoveCards(hand, []Card{two})
	if !ok || len(updated) != 1 {
		t.Fatalf("RemoveCards one of two copies: ok=%v size=%d", ok, len(updated))
	}

	if _, ok := RemoveCards(updated, []Card{two, two}); ok {
		t.Fatal("removing two copies from a single-copy hand should fail")
	}
}
