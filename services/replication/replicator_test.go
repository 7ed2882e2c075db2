package replication

import (
	realtime "Pixelhop/models/realtime"
	"Pixelhop/services/store"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnterAndLeaveMatch(t *testing.T) {
	ms := store.NewMemoryStore()
	r := NewReplicator(ms)
	ctx := context.Background()

	require.NoError(t, r.EnterMatch(ctx, "session-1", "room-1", "alice", "Alice"))

	var data realtime.PlayerGameData
	found, err := ms.Get(ctx, store.PlayerGameDataPath("room-1", "alice"), &data)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, data.IsConnected)
	assert.Equal(t, "Alice", data.PlayerName)

	select {
	case err := <-r.LeaveMatch(ctx, "room-1", "alice"):
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("leave never completed")
	}
	found, err = ms.Get(ctx, store.PlayerGameDataPath("room-1", "alice"), &data)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDisconnectFlipsConnectedFlag(t *testing.T) {
	ms := store.NewMemoryStore()
	r := NewReplicator(ms)
	ctx := context.Background()

	require.NoError(t, r.EnterMatch(ctx, "session-1", "room-1", "alice", "Alice"))
	ms.RunDisconnect(ctx, "session-1")

	var data realtime.PlayerGameData
	found, err := ms.Get(ctx, store.PlayerGameDataPath("room-1", "alice"), &data)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, data.IsConnected, "the disconnect write must flip the flag")
}

func TestMatchOverview(t *testing.T) {
	ms := store.NewMemoryStore()
	r := NewReplicator(ms)
	ctx := context.Background()

	require.NoError(t, r.EnterMatch(ctx, "session-1", "room-1", "alice", "Alice"))
	require.NoError(t, r.EnterMatch(ctx, "session-2", "room-1", "bob", "Bob"))
	require.NoError(t, ms.Set(ctx, store.PlayerPositionPath("room-1", "alice"),
		realtime.PlayerPositionData{X: 120, Y: 48, FacingRight: true}))
	require.NoError(t, ms.Set(ctx, store.GameStatsPath("room-1"),
		realtime.MultiplayerGameStats{GameStatus: realtime.GameStatusFinished, WinnerID: "alice"}))

	overview, err := r.MatchOverview(ctx, "room-1")
	require.NoError(t, err)

	assert.Equal(t, "room-1", overview.RoomID)
	require.Len(t, overview.Players, 2)
	assert.Equal(t, "Alice", overview.Players["alice"].PlayerName)
	assert.True(t, overview.Players["bob"].IsConnected)
	assert.Equal(t, 120.0, overview.Players["alice"].Position.X)
	assert.True(t, overview.Players["alice"].Position.FacingRight)
	assert.Equal(t, realtime.GameStatusFinished, overview.GameStatus)
	assert.NotZero(t, overview.GameStartTime)
	assert.GreaterOrEqual(t, overview.LastUpdateTime, overview.GameStartTime)
}

func TestMatchOverviewEmptyRoom(t *testing.T) {
	ms := store.NewMemoryStore()
	r := NewReplicator(ms)

	overview, err := r.MatchOverview(context.Background(), "room-9")
	require.NoError(t, err)
	assert.Empty(t, overview.Players)
	assert.Equal(t, realtime.GameStatusPlaying, overview.GameStatus)
}

func TestWatchConnection(t *testing.T) {
	ms := store.NewMemoryStore()
	r := NewReplicator(ms)
	ctx := context.Background()

	require.NoError(t, r.EnterMatch(ctx, "session-1", "room-1", "bob", "Bob"))

	var fired atomic.Int32
	w, err := r.WatchConnection(ctx, "room-1", "bob", func(playerID string) {
		assert.Equal(t, "bob", playerID)
		fired.Add(1)
	})
	require.NoError(t, err)
	defer w.Close()

	// A connected update must not fire the callback
	require.NoError(t, ms.Set(ctx, store.PlayerGameDataPath("room-1", "bob"),
		realtime.PlayerGameData{PlayerID: "bob", IsConnected: true}))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	ms.RunDisconnect(ctx, "session-1")
	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// Follow-up offline writes must not re-fire
	require.NoError(t, ms.Remove(ctx, store.PlayerGameDataPath("room-1", "bob")))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}
