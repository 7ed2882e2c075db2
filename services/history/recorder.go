package history

import (
	realtime "Pixelhop/models/realtime"
	"Pixelhop/services/store"
	"context"
	"fmt"
	"log"
	"time"
)

// Recorder persists the merged record of a finished match plus the
// post-match peer ratings, tolerating either participant writing first.
type Recorder struct {
	store store.Store
}

func NewRecorder(s store.Store) *Recorder {
	return &Recorder{store: s}
}

// SubmitRating merges the caller's rating of its peer into the match
// history record, creating the record from the stats snapshot when the
// caller is first. Only the caller's own rating field is set; the other is
// left untouched. The read-merge-write is not transactional: two
// submissions racing can end last-write-wins, which is the documented
// best-effort behavior, not an error.
func (r *Recorder) SubmitRating(ctx context.Context, roomID string, snapshot realtime.MultiplayerGameStats, currentPlayerID, rating string) error {
	path := store.MatchHistoryPath(roomID)

	var record realtime.MatchHistoryData
	found, err := r.store.Get(ctx, path, &record)
	if err != nil {
		return fmt.Errorf("error reading match history for room %s: %v", roomID, err)
	}
	if !found {
		record = realtime.MatchHistoryData{
			GameStats: snapshot,
			MatchInfo: realtime.MatchInfo{
				RoomID:    roomID,
				MatchDate: time.Now().Unix(),
				Players:   []string{snapshot.Player1.PlayerID, snapshot.Player2.PlayerID},
			},
		}
	}

	switch currentPlayerID {
	case snapshot.Player1.PlayerID:
		record.Ratings.Player1RatesPlayer2 = rating
	case snapshot.Player2.PlayerID:
		record.Ratings.Player2RatesPlayer1 = rating
	default:
		return fmt.Errorf("player %s is not part of match %s", currentPlayerID, roomID)
	}

	if err := r.store.Set(ctx, path, record); err != nil {
		return fmt.Errorf("error writing match history for room %s: %v", roomID, err)
	}
	log.Printf("[HISTORY] Player %s rated peer in room %s", currentPlayerID, roomID)
	return nil
}

// Get reads the match history record for a room.
func (r *Recorder) Get(ctx context.Context, roomID string) (realtime.MatchHistoryData, bool, error) {
	var record realtime.MatchHistoryData
	found, err := r.store.Get(ctx, store.MatchHistoryPath(roomID), &record)
	return record, found, err
}
