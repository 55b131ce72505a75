package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crazyeights/eights-server-go/internal/game/cards"
	"github.com/crazyeights/eights-server-go/internal/game/rules"
)

// State represents the lifecycle of a match.
type State string

const (
	StateWaiting  State = "WAITING"
	StatePlaying  State = "PLAYING"
	StateFinished State = "FINISHED"
)

// PlayState is the sub-state within StatePlaying.
type PlayState string

const (
	// PlayStateAwaitingPlay means the current player must play or draw.
	PlayStateAwaitingPlay PlayState = "AWAITING_PLAY"
	// PlayStateAwaitingTurnPass means the current player has drawn and
	// must either play a drawn card or pass.
	PlayStateAwaitingTurnPass PlayState = "AWAITING_TURN_PASS"
)

// Player is a match participant. The ID is stable across reconnects;
// transport connection identity is mapped to it by the session layer.
type Player struct {
	ID           string
	Name         string
	Hand         []cards.Card
	IsSafe       bool
	IsEliminated bool
	IsConnected  bool
}

// MatchConfig carries the tunables a match is dealt with.
type MatchConfig struct {
	// HandSize is the number of cards dealt to each player.
	HandSize int
	// Decks is the number of 52-card decks shuffled together. Zero
	// selects automatically: one deck, two at six or more players.
	Decks int
	// Seed seeds the shuffle; zero uses the wall clock.
	Seed int64
}

func (c MatchConfig) withDefaults() MatchConfig {
	if c.HandSize <= 0 {
		c.HandSize = 5
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	return c
}

// Match is the authoritative state machine for one table. All public
// operations take the match mutex, validate fully, then apply; a failed
// operation leaves the state untouched. Matches are independent of each
// other, so this per-match lock is the only synchronization the engine
// needs.
type Match struct {
	ID string

	mu          sync.Mutex
	cfg         MatchConfig
	state       State
	playState   PlayState
	players     []*Player // seating order
	currentIdx  int
	direction   rules.Direction
	drawPile    []cards.Card
	discardPile []cards.Card // top of discard is the last element
	declared    *cards.Suit
	drawStack   int
	pendingPass string // player id awaiting an explicit pass, or ""
	decksInPlay int
	roundNumber int
	rng         *rand.Rand

	events *EventBus
	logger *zap.Logger
}

// NewMatch creates an empty match in the waiting state.
func NewMatch(cfg MatchConfig, events *EventBus, logger *zap.Logger) *Match {
	cfg = cfg.withDefaults()
	if events == nil {
		events = NewEventBus()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Match{
		ID:        uuid.New().String(),
		cfg:       cfg,
		state:     StateWaiting,
		direction: rules.DirectionForward,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		events:    events,
		logger:    logger,
	}
}

// Events returns the match event bus.
func (m *Match) Events() *EventBus {
	return m.events
}

// AddPlayer seats a new player while the match is waiting.
func (m *Match) AddPlayer(playerID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateWaiting {
		return NewError(ErrMatchNotActive, "match already started")
	}
	for _, p := range m.players {
		if p.ID == playerID {
			return NewError(ErrInvalidCards, "player %s already seated", playerID)
		}
	}
	m.players = append(m.players, &Player{ID: playerID, Name: name, IsConnected: true})
	return nil
}

// StartGame shuffles, deals and begins play. It requires at least two
// non-eliminated players and also starts subsequent rounds: safe flags
// are cleared and eliminated players are dealt out.
func (m *Match) StartGame() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StatePlaying {
		return NewError(ErrMatchNotActive, "match already in progress")
	}

	dealt := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		if !p.IsEliminated {
			dealt = append(dealt, p)
		}
	}
	if len(dealt) < 2 {
		return NewError(ErrNotEnoughPlayers, "need at least 2 players, have %d", len(dealt))
	}

	decks := m.cfg.Decks
	if decks <= 0 {
		decks = 1
		if len(dealt) >= 6 {
			decks = 2
		}
	}

	pile := cards.Shuffle(cards.NewDeck(decks), m.rng)
	if len(pile) < m.cfg.HandSize*len(dealt)+1 {
		return NewError(ErrDeckExhausted,
			"%d decks cannot deal %d cards to %d players", decks, m.cfg.HandSize, len(dealt))
	}
	for _, p := range m.players {
		p.Hand = nil
		p.IsSafe = false
	}
	for i := 0; i < m.cfg.HandSize; i++ {
		for _, p := range dealt {
			p.Hand = append(p.Hand, pile[0])
			pile = pile[1:]
		}
	}

	top := pile[0]
	pile = pile[1:]
	m.discardPile = []cards.Card{top}
	m.drawPile = pile
	m.declared = nil
	if top.IsWild() {
		// An opening flip of an '8' declares its own suit.
		suit := top.Suit
		m.declared = &suit
	}

	m.decksInPlay = decks
	m.drawStack = 0
	m.direction = rules.DirectionForward
	m.currentIdx = m.firstActiveIndex()
	m.pendingPass = ""
	m.state = StatePlaying
	m.playState = PlayStateAwaitingPlay
	m.roundNumber++

	m.logger.Info("round started",
		zap.String("match_id", m.ID),
		zap.Int("round", m.roundNumber),
		zap.Int("players", len(dealt)),
		zap.Int("decks", decks),
		zap.String("top_card", top.String()),
	)

	m.publish(Event{Type: EventGameStarted, MatchID: m.ID, CurrentPlayer: m.players[m.currentIdx].ID})
	return nil
}

// PlayResult reports the effect of a successful PlayCards.
type PlayResult struct {
	NewTopCard     cards.Card
	DrawStackDelta int
	TurnPassed     bool
}

// PlayCards validates and applies a proposed stack for playerID. The
// declared suit must accompany any stack containing an '8'.
func (m *Match) PlayCards(playerID string, proposed []cards.Card, declared *cards.Suit) (PlayResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	player, err := m.requireTurn(playerID)
	if err != nil {
		return PlayResult{}, err
	}

	remaining, ok := cards.RemoveCards(player.Hand, proposed)
	if !ok {
		return PlayResult{}, NewError(ErrInvalidCards, "cards not all in hand")
	}

	active := m.activeCount()
	if result := rules.ValidateStack(proposed, m.tableView(), active); !result.Legal {
		return PlayResult{}, NewError(ErrInvalidCards, "%s", result.Reason)
	}
	if rules.StackContainsWild(proposed) && declared == nil {
		return PlayResult{}, NewError(ErrMissingDeclaredSuit, "stack contains an 8")
	}

	// Validation complete; every mutation below must succeed.
	outcome := rules.Resolve(proposed, active)

	player.Hand = remaining
	m.discardPile = append(m.discardPile, proposed...)
	top := proposed[len(proposed)-1]
	m.declared = nil
	if top.IsWild() {
		suit := *declared
		m.declared = &suit
	}
	if outcome.FinalDirection == rules.DirectionBackward {
		m.direction = m.direction.Flip()
	}
	m.drawStack += outcome.DrawDelta
	m.pendingPass = ""
	m.playState = PlayStateAwaitingPlay

	handEmpty := len(player.Hand) == 0
	if handEmpty {
		player.IsSafe = true
	}

	turnPassed := false
	if handEmpty || !outcome.RetainsControl {
		steps := outcome.SkipCount + 1
		if handEmpty && outcome.RetainsControl {
			steps = 1
		}
		m.advance(steps)
		turnPassed = true
	}

	m.logger.Debug("cards played",
		zap.String("match_id", m.ID),
		zap.String("player_id", playerID),
		zap.Int("count", len(proposed)),
		zap.String("top_card", top.String()),
		zap.Int("draw_stack", m.drawStack),
		zap.Bool("turn_passed", turnPassed),
	)

	m.publish(Event{
		Type:          EventCardsPlayed,
		MatchID:       m.ID,
		PlayerID:      playerID,
		CurrentPlayer: m.currentPlayerID(),
		Cards:         proposed,
		DrawStack:     m.drawStack,
	})
	if handEmpty {
		m.publish(Event{Type: EventHandEmpty, MatchID: m.ID, PlayerID: playerID, CurrentPlayer: m.currentPlayerID()})
	}
	if m.activeCount() <= 1 && m.state == StatePlaying {
		m.state = StateFinished
		m.publish(Event{Type: EventMatchFinished, MatchID: m.ID, CurrentPlayer: m.currentPlayerID()})
	} else if turnPassed {
		m.publish(Event{Type: EventTurnChanged, MatchID: m.ID, CurrentPlayer: m.currentPlayerID()})
	}

	return PlayResult{NewTopCard: top, DrawStackDelta: outcome.DrawDelta, TurnPassed: turnPassed}, nil
}

// DrawResult reports the effect of a successful DrawCards.
type DrawResult struct {
	Drawn              []cards.Card
	CanPlayDrawnCard   bool
	PlayableDrawnCards []cards.Card
	Reshuffled         bool
}

// DrawCards draws for the current player. An outstanding draw penalty
// forces exactly that many cards and resets the penalty; otherwise count
// cards are drawn (minimum one). When the draw pile runs out the discard
// pile, minus its top card, is reshuffled into a fresh draw pile; if
// even that cannot cover the draw the operation fails with DeckExhausted
// and no cards move. A draw that leaves the player awaiting a pass ends
// their drawing; the turn exits only by playing or passing.
func (m *Match) DrawCards(playerID string, count int) (DrawResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	player, err := m.requireTurn(playerID)
	if err != nil {
		return DrawResult{}, err
	}
	if m.pendingPass != "" {
		return DrawResult{}, NewError(ErrPassPending, "player %s must play a drawn card or pass", m.pendingPass)
	}

	n := count
	if n < 1 {
		n = 1
	}
	forced := m.drawStack > 0
	if forced {
		n = m.drawStack
	}

	available := len(m.drawPile) + len(m.discardPile) - 1
	if n > available {
		return DrawResult{}, NewError(ErrDeckExhausted, "need %d cards, %d available", n, available)
	}

	drawn := make([]cards.Card, 0, n)
	reshuffled := false
	for len(drawn) < n {
		if len(m.drawPile) == 0 {
			m.reshuffleDiscard()
			reshuffled = true
		}
		drawn = append(drawn, m.drawPile[0])
		m.drawPile = m.drawPile[1:]
	}

	player.Hand = append(player.Hand, drawn...)
	if forced {
		m.drawStack = 0
	}

	playable := make([]cards.Card, 0, len(drawn))
	table := m.tableView()
	for _, card := range drawn {
		if rules.ValidateOpener(card, table).Legal {
			playable = append(playable, card)
		}
	}

	if len(playable) == 0 {
		m.pendingPass = playerID
		m.playState = PlayStateAwaitingTurnPass
	}

	m.logger.Debug("cards drawn",
		zap.String("match_id", m.ID),
		zap.String("player_id", playerID),
		zap.Int("count", n),
		zap.Bool("forced", forced),
		zap.Bool("reshuffled", reshuffled),
		zap.Int("playable", len(playable)),
	)

	if reshuffled {
		m.publish(Event{Type: EventDeckReshuffled, MatchID: m.ID, PlayerID: playerID})
	}
	if len(playable) == 0 {
		m.publish(Event{Type: EventAwaitingPass, MatchID: m.ID, PlayerID: playerID, CurrentPlayer: playerID})
	}

	return DrawResult{
		Drawn:              drawn,
		CanPlayDrawnCard:   len(playable) > 0,
		PlayableDrawnCards: playable,
		Reshuffled:         reshuffled,
	}, nil
}

// PassTurnAfterDraw completes the draw-then-pass sequence for the
// current player.
func (m *Match) PassTurnAfterDraw(playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.requireTurn(playerID); err != nil {
		return err
	}
	if m.pendingPass != playerID {
		return NewError(ErrNoPendingPass, "player %s has no pass pending", playerID)
	}

	m.pendingPass = ""
	m.playState = PlayStateAwaitingPlay
	m.advance(1)

	m.publish(Event{Type: EventTurnChanged, MatchID: m.ID, PlayerID: playerID, CurrentPlayer: m.currentPlayerID()})
	return nil
}

// Eliminate removes a player from all future rounds. Used by the
// tournament layer's elimination policy between rounds.
func (m *Match) Eliminate(playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.players {
		if p.ID == playerID {
			p.IsEliminated = true
			return nil
		}
	}
	return NewError(ErrPlayerNotFound, "player %s not in match", playerID)
}

// SetConnected records transport connectivity for a player. Disconnected
// players stay in the turn order; timeout auto-play is the scheduler's
// concern.
func (m *Match) SetConnected(playerID string, connected bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.players {
		if p.ID == playerID {
			p.IsConnected = connected
			return nil
		}
	}
	return NewError(ErrPlayerNotFound, "player %s not in match", playerID)
}

// HandOf returns a copy of the player's current hand.
func (m *Match) HandOf(playerID string) ([]cards.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.players {
		if p.ID == playerID {
			hand := make([]cards.Card, len(p.Hand))
			copy(hand, p.Hand)
			return hand, nil
		}
	}
	return nil, NewError(ErrPlayerNotFound, "player %s not in match", playerID)
}

// requireTurn resolves playerID to a seated player and checks it is
// their turn in an active match. Callers hold the match mutex.
func (m *Match) requireTurn(playerID string) (*Player, error) {
	if m.state != StatePlaying {
		return nil, NewError(ErrMatchNotActive, "match is %s", m.state)
	}
	var player *Player
	for _, p := range m.players {
		if p.ID == playerID {
			player = p
			break
		}
	}
	if player == nil {
		return nil, NewError(ErrPlayerNotFound, "player %s not in match", playerID)
	}
	if m.currentPlayerID() != playerID {
		return nil, NewError(ErrNotYourTurn, "current player is %s", m.currentPlayerID())
	}
	return player, nil
}

func (m *Match) tableView() rules.TableView {
	return rules.TableView{
		DiscardTop:   m.discardPile[len(m.discardPile)-1],
		DeclaredSuit: m.declared,
		DrawStack:    m.drawStack,
	}
}

func (m *Match) currentPlayerID() string {
	if len(m.players) == 0 {
		return ""
	}
	return m.players[m.currentIdx].ID
}

// activeCount counts players still in the turn order.
func (m *Match) activeCount() int {
	count := 0
	for _, p := range m.players {
		if !p.IsEliminated && !p.IsSafe {
			count++
		}
	}
	return count
}

func (m *Match) firstActiveIndex() int {
	for i, p := range m.players {
		if !p.IsEliminated && !p.IsSafe {
			return i
		}
	}
	return 0
}

// advance moves currentIdx by steps seats in the table direction,
// counting only players still in the turn order. Callers hold the mutex.
func (m *Match) advance(steps int) {
	if m.activeCount() == 0 {
		return
	}
	for moved := 0; moved < steps; {
		m.currentIdx = (m.currentIdx + int(m.direction) + len(m.players)) % len(m.players)
		p := m.players[m.currentIdx]
		if !p.IsEliminated && !p.IsSafe {
			moved++
		}
	}
}

// reshuffleDiscard recycles every discard except the top card into a new
// shuffled draw pile. Callers hold the mutex and have verified at least
// one recyclable card exists.
func (m *Match) reshuffleDiscard() {
	top := m.discardPile[len(m.discardPile)-1]
	recycled := m.discardPile[:len(m.discardPile)-1]
	m.drawPile = cards.Shuffle(recycled, m.rng)
	m.discardPile = []cards.Card{top}

	m.logger.Info("discard pile reshuffled",
		zap.String("match_id", m.ID),
		zap.Int("recycled", len(recycled)),
	)
}

func (m *Match) publish(event Event) {
	m.events.Publish(event)
}
