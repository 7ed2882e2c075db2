package history

import (
	realtime "Pixelhop/models/realtime"
	"Pixelhop/services/store"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedStats() realtime.MultiplayerGameStats {
	return realtime.MultiplayerGameStats{
		Player1: realtime.MultiplayerPlayerStats{
			PlayerID: "alice", PlayerName: "Alice", TotalScore: 61.5, HasFinished: true,
		},
		Player2: realtime.MultiplayerPlayerStats{
			PlayerID: "bob", PlayerName: "Bob", TotalScore: 29, HasFinished: true,
		},
		GameStatus: realtime.GameStatusFinished,
		WinnerID:   "alice",
		WinnerName: "Alice",
	}
}

func TestSubmitRating(t *testing.T) {
	ctx := context.Background()

	t.Run("first submission creates the record from the snapshot", func(t *testing.T) {
		r := NewRecorder(store.NewMemoryStore())
		require.NoError(t, r.SubmitRating(ctx, "room-1", finishedStats(), "alice", "good"))

		record, found, err := r.Get(ctx, "room-1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "good", record.Ratings.Player1RatesPlayer2)
		assert.Empty(t, record.Ratings.Player2RatesPlayer1)
		assert.Equal(t, "room-1", record.MatchInfo.RoomID)
		assert.Equal(t, []string{"alice", "bob"}, record.MatchInfo.Players)
		assert.Equal(t, "alice", record.GameStats.WinnerID)
		assert.NotZero(t, record.MatchInfo.MatchDate)
	})

	t.Run("both ratings land without clobbering each other", func(t *testing.T) {
		r := NewRecorder(store.NewMemoryStore())
		require.NoError(t, r.SubmitRating(ctx, "room-1", finishedStats(), "alice", "good"))
		require.NoError(t, r.SubmitRating(ctx, "room-1", finishedStats(), "bob", "rough"))

		record, found, err := r.Get(ctx, "room-1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "good", record.Ratings.Player1RatesPlayer2)
		assert.Equal(t, "rough", record.Ratings.Player2RatesPlayer1)
	})

	t.Run("a non-participant cannot rate", func(t *testing.T) {
		r := NewRecorder(store.NewMemoryStore())
		err := r.SubmitRating(ctx, "room-1", finishedStats(), "carol", "meh")
		assert.Error(t, err)
	})

	t.Run("resubmitting overwrites only the caller's own field", func(t *testing.T) {
		r := NewRecorder(store.NewMemoryStore())
		require.NoError(t, r.SubmitRating(ctx, "room-1", finishedStats(), "alice", "good"))
		require.NoError(t, r.SubmitRating(ctx, "room-1", finishedStats(), "bob", "rough"))
		require.NoError(t, r.SubmitRating(ctx, "room-1", finishedStats(), "alice", "great"))

		record, _, err := r.Get(ctx, "room-1")
		require.NoError(t, err)
		assert.Equal(t, "great", record.Ratings.Player1RatesPlayer2)
		assert.Equal(t, "rough", record.Ratings.Player2RatesPlayer1)
	})
}
