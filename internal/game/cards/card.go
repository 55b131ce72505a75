package cards

import (
	"fmt"
	"strings"
)

// Suit identifies one of the four French suits.
type Suit int

const (
	SuitHearts Suit = iota
	SuitDiamonds
	SuitClubs
	SuitSpades
)

var suitNames = map[Suit]string{
	SuitHearts:   "Hearts",
	SuitDiamonds: "Diamonds",
	SuitClubs:    "Clubs",
	SuitSpades:   "Spades",
}

// Suits lists every suit in deck order.
var Suits = []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SUIT_%d", int(s))
}

// ParseSuit converts a wire suit name into a Suit.
func ParseSuit(name string) (Suit, error) {
	for suit, n := range suitNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return suit, nil
		}
	}
	return 0, fmt.Errorf("unknown suit %q", name)
}

// Rank identifies a card rank. Numeric ranks carry their face value.
type Rank int

const (
	RankTwo Rank = iota + 2
	RankThree
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
	RankAce
)

var rankNames = map[Rank]string{
	RankJack:  "Jack",
	RankQueen: "Queen",
	RankKing:  "King",
	RankAce:   "Ace",
}

// Ranks lists every rank in deck order.
var Ranks = []Rank{
	RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven, RankEight,
	RankNine, RankTen, RankJack, RankQueen, RankKing, RankAce,
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	if r >= RankTwo && r <= RankTen {
		return fmt.Sprintf("%d", int(r))
	}
	return fmt.Sprintf("RANK_%d", int(r))
}

// ParseRank converts a wire rank name ("2".."10", "Jack", ...) into a Rank.
func ParseRank(name string) (Rank, error) {
	trimmed := strings.TrimSpace(name)
	for _, rank := range Ranks {
		if strings.EqualFold(rank.String(), trimmed) {
			return rank, nil
		}
	}
	return 0, fmt.Errorf("unknown rank %q", name)
}

// Card is an immutable playing-card value. Equality is structural on
// (Rank, Suit); a deck contains each combination exactly once.
type Card struct {
	Rank Rank
	Suit Suit
}

// String renders the wire encoding, e.g. "7 of Hearts".
func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}

// ParseCard converts a "<Rank> of <Suit>" string into a Card.
func ParseCard(s string) (Card, error) {
	parts := strings.SplitN(s, " of ", 2)
	if len(parts) != 2 {
		return Card{}, fmt.Errorf("malformed card %q", s)
	}
	rank, err := ParseRank(parts[0])
	if err != nil {
		return Card{}, err
	}
	suit, err := ParseSuit(parts[1])
	if err != nil {
		return Card{}, err
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// IsSimpleAdvance reports whether the card advances the turn by one step
// with no skip or direction effect (Ace, 2 and 8; the first two also add
// to the draw penalty, the 8 requires a declared suit).
func (c Card) IsSimpleAdvance() bool {
	return c.Rank == RankAce || c.Rank == RankTwo || c.Rank == RankEight
}

// IsSkip reports whether the card skips the next player (Jack).
func (c Card) IsSkip() bool {
	return c.Rank == RankJack
}

// IsReverse reports whether the card flips play direction (Queen).
func (c Card) IsReverse() bool {
	return c.Rank == RankQueen
}

// IsWild reports whether the card is the wild '8'.
func (c Card) IsWild() bool {
	return c.Rank == RankEight
}

// IsPenalty reports whether the card adds to the draw stack.
func (c Card) IsPenalty() bool {
	return c.Rank == RankAce || c.Rank == RankTwo
}

// PenaltyValue returns the forced-draw delta the card contributes.
func (c Card) PenaltyValue() int {
	switch c.Rank {
	case RankAce:
		return 1
	case RankTwo:
		return 2
	default:
		return 0
	}
}

// IsNormal reports whether the card has no special effect.
func (c Card) IsNormal() bool {
	return !c.IsSimpleAdvance() && !c.IsSkip() && !c.IsReverse()
}
