package cards

import "testing"

func TestCardString(t *testing.T) {
	tests := []struct {
		card Card
		want string
	}{
		{Card{Rank: RankSeven, Suit: SuitHearts}, "7 of Hearts"},
		{Card{Rank: RankTen, Suit: SuitDiamonds}, "10 of Diamonds"},
		{Card{Rank: RankJack, Suit: SuitClubs}, "Jack of Clubs"},
		{Card{Rank: RankQueen, Suit: SuitSpades}, "Queen of Spades"},
		{Card{Rank: RankKing, Suit: SuitHearts}, "King of Hearts"},
		{Card{Rank: RankAce, Suit: SuitSpades}, "Ace of Spades"},
		{Card{Rank: RankTwo, Suit: SuitClubs}, "2 of Clubs"},
	}
	for _, tt := range tests {
		if got := tt.card.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseCardRoundTrip(t *testing.T) {
	for _, suit := range Suits {
		for _, rank := range Ranks {
			card := Card{Rank: rank, Suit: suit}
			parsed, err := ParseCard(card.String())
			if err != nil {
				t.Fatalf("ParseCard(%q) failed: %v", card.String(), err)
			}
			if parsed != card {
				t.Errorf("ParseCard(%q) = %v, want %v", card.String(), parsed, card)
			}
		}
	}
}

func TestParseCardRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "7", "7 of", "Eleven of Hearts", "7 of Stars"} {
		if _, err := ParseCard(input); err == nil {
			t.Errorf("ParseCard(%q) should fail", input)
		}
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		rank          Rank
		simpleAdvance bool
		skip          bool
		reverse       bool
		normal        bool
	}{
		{RankAce, true, false, false, false},
		{RankTwo, true, false, false, false},
		{RankEight, true, false, false, false},
		{RankJack, false, true, false, false},
		{RankQueen, false, false, true, false},
		{RankSeven, false, false, false, true},
		{RankKing, false, false, false, true},
	}
	for _, tt := range tests {
		card := Card{Rank: tt.rank, Suit: SuitHearts}
		if card.IsSimpleAdvance() != tt.simpleAdvance {
			t.Errorf("%s: IsSimpleAdvance() = %v", card, card.IsSimpleAdvance())
		}
		if card.IsSkip() != tt.skip {
			t.Errorf("%s: IsSkip() = %v", card, card.IsSkip())
		}
		if card.IsReverse() != tt.reverse {
			t.Errorf("%s: IsReverse() = %v", card, card.IsReverse())
		}
		if card.IsNormal() != tt.normal {
			t.Errorf("%s: IsNormal() = %v", card, card.IsNormal())
		}
	}
}

func TestPenaltyValues(t *testing.T) {
	if got := (Card{Rank: RankAce, Suit: SuitHearts}).PenaltyValue(); got != 1 {
		t.Errorf("Ace penalty = %d, want 1", got)
	}
	if got := (Card{Rank: RankTwo, Suit: SuitHearts}).PenaltyValue(); got != 2 {
		t.Errorf("2 penalty = %d, want 2", got)
	}
	if got := (Card{Rank: RankEight, Suit: SuitHearts}).PenaltyValue(); got != 0 {
		t.Errorf("8 penalty = %d, want 0", got)
	}
}
