package game

// PlayerSnapshot captures a player's public view for transports.
type PlayerSnapshot struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	HandSize        int    `json:"handSize"`
	IsCurrentPlayer bool   `json:"isCurrentPlayer"`
	IsSafe          bool   `json:"isSafe"`
	IsEliminated    bool   `json:"isEliminated"`
	IsConnected     bool   `json:"isConnected"`
}

// Snapshot captures a consistent public view of a match. Cards are wire
// encoded as "<Rank> of <Suit>".
type Snapshot struct {
	MatchID         string           `json:"matchId"`
	Players         []PlayerSnapshot `json:"players"`
	TopCard         string           `json:"topCard"`
	DeclaredSuit    string           `json:"declaredSuit,omitempty"`
	DrawStack       int              `json:"drawStack"`
	Direction       int              `json:"direction"`
	CurrentPlayerID string           `json:"currentPlayerId"`
	RoundNumber     int              `json:"roundNumber"`
	GameState       string           `json:"gameState"`
}

// GetState returns a snapshot of the match for external consumers.
func (m *Match) GetState() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		MatchID:         m.ID,
		Players:         make([]PlayerSnapshot, 0, len(m.players)),
		DrawStack:       m.drawStack,
		Direction:       int(m.direction),
		CurrentPlayerID: m.currentPlayerID(),
		RoundNumber:     m.roundNumber,
		GameState:       string(m.state),
	}
	if m.state == StatePlaying {
		snap.GameState = string(m.playState)
	}
	if len(m.discardPile) > 0 {
		snap.TopCard = m.discardPile[len(m.discardPile)-1].String()
	}
	if m.declared != nil {
		snap.DeclaredSuit = m.declared.String()
	}
	for i, p := range m.players {
		snap.Players = append(snap.Players, PlayerSnapshot{
			ID:              p.ID,
			Name:            p.Name,
			HandSize:        len(p.Hand),
			IsCurrentPlayer: m.state == StatePlaying && i == m.currentIdx,
			IsSafe:          p.IsSafe,
			IsEliminated:    p.IsEliminated,
			IsConnected:     p.IsConnected,
		})
	}
	return snap
}

// CardCount returns the total number of cards across hands, the draw
// pile and the discard pile, and the number of decks in play. The two
// always satisfy total == 52*decks while a round is live.
func (m *Match) CardCount() (total, decks int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total = len(m.drawPile) + len(m.discardPile)
	for _, p := range m.players {
		total += len(p.Hand)
	}
	return total, m.decksInPlay
}
