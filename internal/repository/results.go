package repository

import (
	"context"
	"time"
)

// MatchResult records a finished tournament for persistence.
type MatchResult struct {
	MatchID   string
	Rounds    int
	WinnerID  string
	StartedAt time.Time
	Placings  []Placing
}

// Placing records one player's final position; 1 is the winner.
type Placing struct {
	PlayerID   string
	PlayerName string
	Placement  int
}

// PlayerStats is a player's career record.
type PlayerStats struct {
	PlayerID      string
	PlayerName    string
	MatchesPlayed int
	MatchesWon    int
}

// ResultStore persists match outcomes. The engine never touches it; the
// transport layer records results when a tournament finishes.
type ResultStore interface {
	SaveResult(ctx context.Context, result MatchResult) error
	GetPlayerStats(ctx context.Context, playerID string) (PlayerStats, error)
	TopPlayers(ctx context.Context, limit int) ([]PlayerStats, error)
}

// SaveResult writes the match, its placings and the per-player career
// counters in one transaction.
func (db *DB) SaveResult(ctx context.Context, result MatchResult) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
        INSERT INTO matches (id, rounds, winner_id, started_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO NOTHING
    `, result.MatchID, result.Rounds, result.WinnerID, result.StartedAt); err != nil {
		return err
	}

	for _, placing := range result.Placings {
		if _, err := tx.Exec(ctx, `
            INSERT INTO match_players (match_id, player_id, player_name, placement)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (match_id, player_id) DO NOTHING
        `, result.MatchID, placing.PlayerID, placing.PlayerName, placing.Placement); err != nil {
			return err
		}

		won := 0
		if placing.PlayerID == result.WinnerID {
			won = 1
		}
		if _, err := tx.Exec(ctx, `
            INSERT INTO player_stats (player_id, player_name, matches_played, matches_won)
            VALUES ($1, $2, 1, $3)
            ON CONFLICT (player_id) DO UPDATE
              SET player_name    = EXCLUDED.player_name,
                  matches_played = player_stats.matches_played + 1,
                  matches_won    = player_stats.matches_won + $3,
                  updated_at     = now()
        `, placing.PlayerID, placing.PlayerName, won); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetPlayerStats fetches one player's career record.
func (db *DB) GetPlayerStats(ctx context.Context, playerID string) (PlayerStats, error) {
	var stats PlayerStats
	err := db.QueryRow(ctx, `
        SELECT player_id, player_name, matches_played, matches_won
          FROM player_stats WHERE player_id = $1
    `, playerID).Scan(&stats.PlayerID, &stats.PlayerName, &stats.MatchesPlayed, &stats.MatchesWon)
	return stats, err
}

// TopPlayers returns the leaderboard ordered by wins.
func (db *DB) TopPlayers(ctx context.Context, limit int) ([]PlayerStats, error) {
	rows, err := db.Query(ctx, `
        SELECT player_id, player_name, matches_played, matches_won
          FROM player_stats
         ORDER BY matches_won DESC, matches_played ASC
         LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerStats
	for rows.Next() {
		var stats PlayerStats
		if err := rows.Scan(&stats.PlayerID, &stats.PlayerName, &stats.MatchesPlayed, &stats.MatchesWon); err != nil {
			return nil, err
		}
		out = append(out, stats)
	}
	return out, rows.Err()
}
