package server

import (
	"github.com/crazyeights/eights-server-go/internal/game"
	"github.com/crazyeights/eights-server-go/internal/game/cards"
)

// dispatch routes one inbound websocket message to an engine operation.
// Failures go back to the sender only; table state reaches everyone via
// the hub's event-driven broadcast.
func (h *Hub) dispatch(c *Client, msg wsMessage) {
	matchID := msg.MatchID
	if matchID == "" {
		matchID = c.matchID
	}
	match, ok := h.server.matches.Get(matchID)
	if !ok {
		c.reply(wsMessage{Type: "error", Error: string(game.ErrMatchNotFound), Reason: "match not found"})
		return
	}

	switch msg.Type {
	case "state":
		c.matchID = matchID
		c.reply(wsMessage{Type: "state", MatchID: matchID, Data: h.server.stateView(match)})

	case "hand":
		hand, err := match.HandOf(c.playerID)
		if err != nil {
			c.replyError(err)
			return
		}
		c.reply(wsMessage{Type: "hand", MatchID: matchID, Data: encodeCards(hand)})

	case "play":
		proposed, err := decodeCards(msg.Cards)
		if err != nil {
			c.reply(wsMessage{Type: "error", Error: string(game.ErrInvalidCards), Reason: err.Error()})
			return
		}
		var declared *cards.Suit
		if msg.DeclaredSuit != "" {
			suit, err := cards.ParseSuit(msg.DeclaredSuit)
			if err != nil {
				c.reply(wsMessage{Type: "error", Error: string(game.ErrInvalidCards), Reason: err.Error()})
				return
			}
			declared = &suit
		}
		result, err := match.PlayCards(c.playerID, proposed, declared)
		if err != nil {
			c.replyError(err)
			return
		}
		c.reply(wsMessage{Type: "played", MatchID: matchID, Data: map[string]any{
			"newTopCard":     result.NewTopCard.String(),
			"drawStackDelta": result.DrawStackDelta,
			"turnPassed":     result.TurnPassed,
		}})

	case "draw":
		result, err := match.DrawCards(c.playerID, msg.Count)
		if err != nil {
			c.replyError(err)
			return
		}
		c.reply(wsMessage{Type: "drawn", MatchID: matchID, Data: map[string]any{
			"drawnCards":         encodeCards(result.Drawn),
			"canPlayDrawnCard":   result.CanPlayDrawnCard,
			"playableDrawnCards": encodeCards(result.PlayableDrawnCards),
			"newDeckAdded":       result.Reshuffled,
		}})

	case "pass":
		if err := match.PassTurnAfterDraw(c.playerID); err != nil {
			c.replyError(err)
			return
		}
		c.reply(wsMessage{Type: "passed", MatchID: matchID})

	default:
		c.reply(wsMessage{Type: "error", Error: "UNKNOWN_MESSAGE", Reason: msg.Type})
	}
}

func (c *Client) replyError(err error) {
	c.reply(wsMessage{Type: "error", Error: string(game.CodeOf(err)), Reason: err.Error()})
}
