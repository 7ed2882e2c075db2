package sync

import (
	postgres_models "Pixelhop/models/postgres"
	realtime "Pixelhop/models/realtime"
	"Pixelhop/services/store"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SyncManager archives finished matches from the realtime store into
// PostgreSQL and rolls the result into both players' aggregate profiles.
type SyncManager struct {
	store store.Store
	db    *sql.DB
}

// NewSyncManager creates a new instance of the synchronization manager
func NewSyncManager(s store.Store, db *sql.DB) *SyncManager {
	return &SyncManager{
		store: s,
		db:    db,
	}
}

// ArchiveMatch copies the final gameStats snapshot and the peer ratings of
// a finished match into the match_records table, updates both players'
// aggregate stats and cleans the realtime keys. Call it once the room's
// gameStats reports finished.
func (sm *SyncManager) ArchiveMatch(ctx context.Context, roomID string) error {
	var stats realtime.MultiplayerGameStats
	found, err := sm.store.Get(ctx, store.GameStatsPath(roomID), &stats)
	if err != nil {
		return fmt.Errorf("error getting game stats from store: %v", err)
	}
	if !found {
		return fmt.Errorf("no game stats for room %s", roomID)
	}
	if stats.GameStatus != realtime.GameStatusFinished {
		return fmt.Errorf("room %s is not finished yet", roomID)
	}

	// Ratings may not exist yet; archive whatever is there
	var record realtime.MatchHistoryData
	_, err = sm.store.Get(ctx, store.MatchHistoryPath(roomID), &record)
	if err != nil {
		return fmt.Errorf("error getting match history from store: %v", err)
	}

	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("error marshaling game stats: %v", err)
	}
	ratingsJSON, err := json.Marshal(record.Ratings)
	if err != nil {
		return fmt.Errorf("error marshaling ratings: %v", err)
	}

	// Start transaction
	tx, err := sm.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %v", err)
	}
	defer tx.Rollback()

	recordQuery := `
		INSERT INTO match_records
			(room_id, player1_username, player2_username, winner_username,
			 player1_score, player2_score, game_stats, ratings, match_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (room_id) DO UPDATE SET
			winner_username = EXCLUDED.winner_username,
			player1_score = EXCLUDED.player1_score,
			player2_score = EXCLUDED.player2_score,
			game_stats = EXCLUDED.game_stats,
			ratings = EXCLUDED.ratings
	`

	winner := ""
	if stats.WinnerName != realtime.WinnerNameTie {
		winner = stats.WinnerName
	}
	_, err = tx.Exec(recordQuery,
		roomID,
		stats.Player1.PlayerName,
		stats.Player2.PlayerName,
		winner,
		stats.Player1.TotalScore,
		stats.Player2.TotalScore,
		statsJSON,
		ratingsJSON,
		time.Now())

	if err != nil {
		return fmt.Errorf("error inserting match record in PostgreSQL: %v", err)
	}

	for _, slot := range []realtime.MultiplayerPlayerStats{stats.Player1, stats.Player2} {
		if slot.PlayerName == "" {
			continue
		}
		if err := sm.rollupPlayerStats(tx, slot, stats); err != nil {
			return fmt.Errorf("error updating aggregate stats for %s: %v", slot.PlayerName, err)
		}
	}

	// Confirm transaction
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %v", err)
	}

	return sm.cleanupRealtime(ctx, roomID)
}

// rollupPlayerStats folds one finished slot into the player's jsonb
// aggregate (matches played, wins, best score, ...)
func (sm *SyncManager) rollupPlayerStats(tx *sql.Tx, slot realtime.MultiplayerPlayerStats, stats realtime.MultiplayerGameStats) error {
	var raw []byte
	err := tx.QueryRow(
		`SELECT user_stats FROM player_profiles WHERE username = $1`,
		slot.PlayerName).Scan(&raw)
	if err != nil {
		return fmt.Errorf("error reading player profile: %v", err)
	}

	var agg postgres_models.AggregateStats
	if len(raw) > 0 {
		// A garbled aggregate starts over from zero rather than failing
		_ = json.Unmarshal(raw, &agg)
	}

	agg.MatchesPlayed++
	agg.TotalFruit += slot.FruitCollected
	agg.TotalEnemies += slot.EnemiesKilled
	agg.TotalKnockback += slot.KnockBacks
	if slot.TotalScore > agg.BestScore {
		agg.BestScore = slot.TotalScore
	}
	if stats.WinnerName == realtime.WinnerNameTie {
		agg.Ties++
	} else if stats.WinnerID == slot.PlayerID {
		agg.Wins++
	}

	updated, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("error marshaling aggregate stats: %v", err)
	}

	_, err = tx.Exec(
		`UPDATE player_profiles SET user_stats = $1, is_in_a_game = false WHERE username = $2`,
		updated, slot.PlayerName)
	if err != nil {
		return fmt.Errorf("error updating player profile: %v", err)
	}
	return nil
}

// cleanupRealtime removes the per-match documents once they are archived.
// The lobby room itself is the host's to remove.
func (sm *SyncManager) cleanupRealtime(ctx context.Context, roomID string) error {
	if err := sm.store.Remove(ctx, store.GameRoomPath(roomID)); err != nil {
		return fmt.Errorf("error cleaning game room state: %v", err)
	}
	if err := sm.store.Remove(ctx, store.GameStatsPath(roomID)); err != nil {
		return fmt.Errorf("error cleaning game stats: %v", err)
	}
	return nil
}
