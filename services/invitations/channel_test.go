package invitations

import (
	"Pixelhop/services/store"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendAndWait(t *testing.T, c *Channel, roomID, inviterID, invitedID, inviterName string) {
	t.Helper()
	select {
	case err := <-c.Send(context.Background(), roomID, inviterID, invitedID, inviterName):
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("send never completed")
	}
}

func TestSendAndPending(t *testing.T) {
	c := NewChannel(store.NewMemoryStore())
	ctx := context.Background()

	sendAndWait(t, c, "room-1", "alice", "bob", "Alice")
	sendAndWait(t, c, "room-2", "carol", "bob", "Carol")

	pending, err := c.Pending(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, inv := range pending {
		assert.NotEmpty(t, inv.ID, "consumers need the embedded id to address the invitation")
		assert.NotZero(t, inv.Timestamp)
	}

	other, err := c.Pending(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, other, "inboxes are per invitee")
}

func TestAccept(t *testing.T) {
	c := NewChannel(store.NewMemoryStore())
	ctx := context.Background()

	sendAndWait(t, c, "room-1", "alice", "bob", "Alice")
	pending, err := c.Pending(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	invID := pending[0].ID

	t.Run("accept consumes and returns the room", func(t *testing.T) {
		roomID, found, err := c.Accept(ctx, "bob", invID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "room-1", roomID)

		left, err := c.Pending(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, left)
	})

	t.Run("second accept of the same id is a no-op", func(t *testing.T) {
		_, found, err := c.Accept(ctx, "bob", invID)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestDecline(t *testing.T) {
	c := NewChannel(store.NewMemoryStore())
	ctx := context.Background()

	sendAndWait(t, c, "room-1", "alice", "bob", "Alice")
	pending, err := c.Pending(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, c.Decline(ctx, "bob", pending[0].ID))
	left, err := c.Pending(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, left)

	// Declining the consumed id again is harmless
	assert.NoError(t, c.Decline(ctx, "bob", pending[0].ID))
}
