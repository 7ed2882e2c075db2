package rooms

import (
	"Pixelhop/services/invitations"
	"Pixelhop/services/store"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() (*Manager, *store.MemoryStore) {
	ms := store.NewMemoryStore()
	return NewManager(ms, invitations.NewChannel(ms)), ms
}

// waitForRoom polls until the fire-and-forget create write lands.
func waitForRoom(t *testing.T, m *Manager, roomID string) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, found, err := m.GetRoom(context.Background(), roomID)
		return err == nil && found
	}, time.Second, 5*time.Millisecond, "room %s never appeared", roomID)
}

func TestCreateRoom(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	t.Run("creates a waiting room with the host as sole player", func(t *testing.T) {
		roomID := m.CreateRoom(ctx, "alice", "Alice", "")
		require.NotEmpty(t, roomID)
		waitForRoom(t, m, roomID)

		room, _, err := m.GetRoom(ctx, roomID)
		require.NoError(t, err)
		assert.Equal(t, "alice", room.HostID)
		assert.Len(t, room.Players, 1)
		assert.False(t, room.Players["alice"].IsReady)
		assert.Equal(t, "waiting", string(room.Status))
	})

	t.Run("every call allocates a fresh id", func(t *testing.T) {
		id1 := m.CreateRoom(ctx, "alice", "Alice", "")
		id2 := m.CreateRoom(ctx, "alice", "Alice", "")
		assert.NotEqual(t, id1, id2)
	})
}

func TestJoinRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("create then join yields two players with host unchanged", func(t *testing.T) {
		m, _ := newTestManager()
		roomID := m.CreateRoom(ctx, "alice", "Alice", "bob")
		waitForRoom(t, m, roomID)

		require.NoError(t, m.JoinRoom(ctx, "bob", "Bob", roomID))

		room, _, err := m.GetRoom(ctx, roomID)
		require.NoError(t, err)
		assert.Equal(t, "alice", room.HostID)
		require.Len(t, room.Players, 2)
		assert.Equal(t, "Bob", room.Players["bob"].UserName)
		assert.False(t, room.Players["bob"].IsReady, "a joining player starts not ready")
	})

	t.Run("joining a missing room fails", func(t *testing.T) {
		m, _ := newTestManager()
		err := m.JoinRoom(ctx, "bob", "Bob", "nope")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("joining twice fails", func(t *testing.T) {
		m, _ := newTestManager()
		roomID := m.CreateRoom(ctx, "alice", "Alice", "")
		waitForRoom(t, m, roomID)
		require.NoError(t, m.JoinRoom(ctx, "bob", "Bob", roomID))
		err := m.JoinRoom(ctx, "bob", "Bob", roomID)
		assert.ErrorIs(t, err, ErrAlreadyInRoom)
	})

	t.Run("a full room rejects a third player", func(t *testing.T) {
		m, _ := newTestManager()
		roomID := m.CreateRoom(ctx, "alice", "Alice", "")
		waitForRoom(t, m, roomID)
		require.NoError(t, m.JoinRoom(ctx, "bob", "Bob", roomID))
		err := m.JoinRoom(ctx, "carol", "Carol", roomID)
		assert.ErrorIs(t, err, ErrRoomFull)
	})
}

func TestToggleReady(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()
	roomID := m.CreateRoom(ctx, "alice", "Alice", "")
	waitForRoom(t, m, roomID)

	require.NoError(t, m.ToggleReady(ctx, "alice", roomID))
	room, _, _ := m.GetRoom(ctx, roomID)
	assert.True(t, room.Players["alice"].IsReady)

	require.NoError(t, m.ToggleReady(ctx, "alice", roomID))
	room, _, _ = m.GetRoom(ctx, roomID)
	assert.False(t, room.Players["alice"].IsReady)

	assert.ErrorIs(t, m.ToggleReady(ctx, "bob", roomID), ErrNotInRoom)
}

func TestLeaveRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("host leave removes the whole room", func(t *testing.T) {
		m, _ := newTestManager()
		roomID := m.CreateRoom(ctx, "alice", "Alice", "")
		waitForRoom(t, m, roomID)
		require.NoError(t, m.JoinRoom(ctx, "bob", "Bob", roomID))

		require.NoError(t, m.LeaveRoom(ctx, "alice", roomID))

		_, found, err := m.GetRoom(ctx, roomID)
		require.NoError(t, err)
		assert.False(t, found, "room must be gone after host leave")
	})

	t.Run("non-host leave removes only that player", func(t *testing.T) {
		m, _ := newTestManager()
		roomID := m.CreateRoom(ctx, "alice", "Alice", "")
		waitForRoom(t, m, roomID)
		require.NoError(t, m.JoinRoom(ctx, "bob", "Bob", roomID))

		require.NoError(t, m.LeaveRoom(ctx, "bob", roomID))

		room, found, err := m.GetRoom(ctx, roomID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "alice", room.HostID)
		assert.Len(t, room.Players, 1)
	})

	t.Run("leaving an already removed room is a no-op", func(t *testing.T) {
		m, _ := newTestManager()
		assert.NoError(t, m.LeaveRoom(ctx, "alice", "gone"))
	})
}

func TestStartGame(t *testing.T) {
	ctx := context.Background()

	t.Run("host starts once both are ready", func(t *testing.T) {
		m, _ := newTestManager()
		roomID := m.CreateRoom(ctx, "alice", "Alice", "")
		waitForRoom(t, m, roomID)
		require.NoError(t, m.JoinRoom(ctx, "bob", "Bob", roomID))
		require.NoError(t, m.ToggleReady(ctx, "alice", roomID))
		require.NoError(t, m.ToggleReady(ctx, "bob", roomID))

		require.NoError(t, m.StartGame(ctx, "alice", roomID))

		room, _, _ := m.GetRoom(ctx, roomID)
		assert.Equal(t, "in_game", string(room.Status))
	})

	t.Run("non-host cannot start", func(t *testing.T) {
		m, _ := newTestManager()
		roomID := m.CreateRoom(ctx, "alice", "Alice", "")
		waitForRoom(t, m, roomID)
		require.NoError(t, m.JoinRoom(ctx, "bob", "Bob", roomID))
		require.NoError(t, m.ToggleReady(ctx, "alice", roomID))
		require.NoError(t, m.ToggleReady(ctx, "bob", roomID))

		assert.ErrorIs(t, m.StartGame(ctx, "bob", roomID), ErrNotHost)
	})

	t.Run("start is gated on both players ready", func(t *testing.T) {
		m, _ := newTestManager()
		roomID := m.CreateRoom(ctx, "alice", "Alice", "")
		waitForRoom(t, m, roomID)
		require.NoError(t, m.JoinRoom(ctx, "bob", "Bob", roomID))
		require.NoError(t, m.ToggleReady(ctx, "alice", roomID))

		assert.ErrorIs(t, m.StartGame(ctx, "alice", roomID), ErrNotReady)
	})
}
