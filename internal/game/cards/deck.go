package cards

import "math/rand"

// NewDeck returns decks*52 cards in deck order.
func NewDeck(decks int) []Card {
	if decks < 1 {
		decks = 1
	}
	cards := make([]Card, 0, decks*52)
	for d := 0; d < decks; d++ {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				cards = append(cards, Card{Rank: rank, Suit: suit})
			}
		}
	}
	return cards
}

// Shuffle returns a shuffled copy of cards using the provided source.
func Shuffle(cards []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// RemoveCards removes each card in toRemove from hand exactly once and
// reports whether every card was present.
func RemoveCards(hand []Card, toRemove []Card) ([]Card, bool) {
	counts := make(map[Card]int, len(toRemove))
	for _, card := range toRemove {
		counts[card]++
	}

	updated := make([]Card, 0, len(hand))
	for _, card := range hand {
		if n, ok := counts[card]; ok && n > 0 {
			counts[card] = n - 1
			continue
		}
		updated = append(updated, card)
	}

	for _, n := range counts {
		if n > 0 {
			return hand, false
		}
	}
	return updated, true
}
