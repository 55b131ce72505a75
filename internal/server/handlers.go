package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/crazyeights/eights-server-go/internal/game"
	"github.com/crazyeights/eights-server-go/internal/game/cards"
	"github.com/crazyeights/eights-server-go/internal/repository"
	"github.com/crazyeights/eights-server-go/internal/tournament"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// opFailure writes the uniform failure envelope: engine rejections are
// results, not HTTP errors, and go only to the offending caller.
func opFailure(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": false,
		"error":   string(game.CodeOf(err)),
		"reason":  err.Error(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "name is required"})
		return
	}

	sess := s.sessions.Create(req.Name)
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": sess.ID,
		"playerId":  sess.PlayerID,
	})
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	match := s.matches.Create(game.MatchConfig{
		HandSize: s.cfg.Game.HandSize,
		Decks:    s.cfg.Game.Decks,
	})

	controller := tournament.NewController(match, tournament.LastPlayerStanding{}, s.logger)
	s.mu.Lock()
	s.tournaments[match.ID] = controller
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"matchId": match.ID})
}

func (s *Server) handleListMatches(w http.ResponseWriter, _ *http.Request) {
	matches := s.matches.List()
	out := make([]game.Snapshot, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.GetState())
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": out})
}

// requireSession resolves the caller's session from the request body's
// sessionId field (or query parameter for GETs).
func (s *Server) requireSession(w http.ResponseWriter, sessionID string) (playerID string, ok bool) {
	sess, found := s.sessions.Get(sessionID)
	if !found {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "session not found"})
		return "", false
	}
	return sess.PlayerID, true
}

func (s *Server) requireMatch(w http.ResponseWriter, r *http.Request) (*game.Match, bool) {
	matchID := chi.URLParam(r, "matchID")
	match, ok := s.matches.Get(matchID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "match not found"})
		return nil, false
	}
	return match, true
}

func (s *Server) handleJoinMatch(w http.ResponseWriter, r *http.Request) {
	match, ok := s.requireMatch(w, r)
	if !ok {
		return
	}
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed request"})
		return
	}
	sess, found := s.sessions.Get(req.SessionID)
	if !found {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "session not found"})
		return
	}

	if err := match.AddPlayer(sess.PlayerID, sess.PlayerName); err != nil {
		opFailure(w, err)
		return
	}
	s.sessions.SetMatch(sess.ID, match.ID)

	s.logger.Info("player joined match",
		zap.String("match_id", match.ID),
		zap.String("player_id", sess.PlayerID),
	)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "playerId": sess.PlayerID})
}

func (s *Server) handleStartMatch(w http.ResponseWriter, r *http.Request) {
	match, ok := s.requireMatch(w, r)
	if !ok {
		return
	}
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed request"})
		return
	}
	if _, ok := s.requireSession(w, req.SessionID); !ok {
		return
	}

	controller, ok := s.controllerFor(match.ID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "match not found"})
		return
	}
	if err := controller.StartTournament(); err != nil {
		opFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	match, ok := s.requireMatch(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.stateView(match))
}

// stateView merges the engine snapshot with round bookkeeping into the
// wire view.
func (s *Server) stateView(match *game.Match) map[string]any {
	snap := match.GetState()
	view := map[string]any{
		"matchId":         snap.MatchID,
		"players":         snap.Players,
		"topCard":         snap.TopCard,
		"declaredSuit":    snap.DeclaredSuit,
		"drawStack":       snap.DrawStack,
		"direction":       snap.Direction,
		"currentPlayerId": snap.CurrentPlayerID,
		"roundNumber":     snap.RoundNumber,
		"gameState":       snap.GameState,
	}
	if controller, ok := s.controllerFor(match.ID); ok {
		round := controller.State()
		view["tournamentActive"] = round.TournamentActive
		view["safePlayers"] = round.SafePlayersThisRound
		if round.Winner != "" {
			view["winner"] = round.Winner
		}
	}
	return view
}

func (s *Server) handleGetHand(w http.ResponseWriter, r *http.Request) {
	match, ok := s.requireMatch(w, r)
	if !ok {
		return
	}
	playerID, ok := s.requireSession(w, r.URL.Query().Get("session"))
	if !ok {
		return
	}

	hand, err := match.HandOf(playerID)
	if err != nil {
		opFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hand": encodeCards(hand)})
}

func encodeCards(in []cards.Card) []string {
	out := make([]string, len(in))
	for i, card := range in {
		out[i] = card.String()
	}
	return out
}

func decodeCards(in []string) ([]cards.Card, error) {
	out := make([]cards.Card, len(in))
	for i, s := range in {
		card, err := cards.ParseCard(s)
		if err != nil {
			return nil, err
		}
		out[i] = card
	}
	return out, nil
}

func (s *Server) handlePlayCards(w http.ResponseWriter, r *http.Request) {
	match, ok := s.requireMatch(w, r)
	if !ok {
		return
	}
	var req struct {
		SessionID    string   `json:"sessionId"`
		Cards        []string `json:"cards"`
		DeclaredSuit string   `json:"declaredSuit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed request"})
		return
	}
	playerID, ok := s.requireSession(w, req.SessionID)
	if !ok {
		return
	}

	proposed, err := decodeCards(req.Cards)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	var declared *cards.Suit
	if req.DeclaredSuit != "" {
		suit, err := cards.ParseSuit(req.DeclaredSuit)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		declared = &suit
	}

	result, err := match.PlayCards(playerID, proposed, declared)
	if err != nil {
		opFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"newTopCard":     result.NewTopCard.String(),
		"drawStackDelta": result.DrawStackDelta,
		"turnPassed":     result.TurnPassed,
	})
}

func (s *Server) handleDrawCards(w http.ResponseWriter, r *http.Request) {
	match, ok := s.requireMatch(w, r)
	if !ok {
		return
	}
	var req struct {
		SessionID string `json:"sessionId"`
		Count     int    `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed request"})
		return
	}
	playerID, ok := s.requireSession(w, req.SessionID)
	if !ok {
		return
	}

	result, err := match.DrawCards(playerID, req.Count)
	if err != nil {
		opFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"drawnCards":         encodeCards(result.Drawn),
		"canPlayDrawnCard":   result.CanPlayDrawnCard,
		"playableDrawnCards": encodeCards(result.PlayableDrawnCards),
		"newDeckAdded":       result.Reshuffled,
	})
}

func (s *Server) handlePassTurn(w http.ResponseWriter, r *http.Request) {
	match, ok := s.requireMatch(w, r)
	if !ok {
		return
	}
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed request"})
		return
	}
	playerID, ok := s.requireSession(w, req.SessionID)
	if !ok {
		return
	}

	if err := match.PassTurnAfterDraw(playerID); err != nil {
		opFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleAdvanceRound(w http.ResponseWriter, r *http.Request) {
	match, ok := s.requireMatch(w, r)
	if !ok {
		return
	}
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed request"})
		return
	}
	if _, ok := s.requireSession(w, req.SessionID); !ok {
		return
	}
	controller, ok := s.controllerFor(match.ID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "match not found"})
		return
	}

	round, err := controller.AdvanceRound()
	if err != nil {
		opFailure(w, err)
		return
	}
	if !round.TournamentActive {
		s.persistResult(r, match, round)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"roundNumber":      round.RoundNumber,
		"eliminated":       round.EliminatedThisRound,
		"safePlayers":      round.SafePlayersThisRound,
		"tournamentActive": round.TournamentActive,
		"winner":           round.Winner,
	})
}

// persistResult records a finished tournament. Persistence is optional;
// without a database the result is only logged.
func (s *Server) persistResult(r *http.Request, match *game.Match, round tournament.RoundState) {
	if s.results == nil {
		return
	}
	snap := match.GetState()

	result := repository.MatchResult{
		MatchID:   match.ID,
		Rounds:    round.RoundNumber,
		WinnerID:  round.Winner,
		StartedAt: round.StartedAt,
	}
	for _, p := range snap.Players {
		// Winner places first; finer grading of the rest would need
		// per-round elimination order, which the controller does not
		// retain across rounds.
		place := 2
		if p.ID == round.Winner {
			place = 1
		}
		result.Placings = append(result.Placings, repository.Placing{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Placement:  place,
		})
	}

	if err := s.results.SaveResult(r.Context(), result); err != nil {
		s.logger.Error("failed to persist match result",
			zap.String("match_id", match.ID),
			zap.Error(err),
		)
	}
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "persistence disabled"})
		return
	}
	stats, err := s.results.GetPlayerStats(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "player not found"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "persistence disabled"})
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	players, err := s.results.TopPlayers(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "leaderboard unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"players": players})
}
