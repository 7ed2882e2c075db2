package socketio_types

import (
	"Pixelhop/services/invitations"
	"Pixelhop/services/replication"
	"Pixelhop/services/rooms"
	"Pixelhop/services/scoring"
	"Pixelhop/services/store"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullSession(t *testing.T) *PlayerSession {
	t.Helper()
	ms := store.NewMemoryStore()
	ctx := context.Background()

	mgr := rooms.NewManager(ms, invitations.NewChannel(ms))
	listener, err := mgr.Listen(ctx, "room-1", rooms.Signals{})
	require.NoError(t, err)

	publisher := replication.NewPublisher(ms, "room-1", "alice")
	publisher.Start(ctx)

	remote, err := replication.WatchRemotePlayer(ctx, ms, "room-1", "bob")
	require.NoError(t, err)

	watch, err := replication.NewReplicator(ms).WatchConnection(ctx, "room-1", "bob", nil)
	require.NoError(t, err)

	result, err := scoring.WatchResult(ctx, ms, "room-1", nil)
	require.NoError(t, err)

	ps := &PlayerSession{}
	ps.BindRoom("room-1", listener)
	ps.BeginMatch("room-1", "bob", publisher, scoring.NewScorer(ms, "room-1", scoring.DefaultConfig()))
	ps.AttachPeer(remote)
	ps.AttachPeerWatch(watch)
	ps.AttachResultWatch(result)
	ps.AttachFeed(make(chan struct{}))
	return ps
}

func TestPlayerSessionConcurrentTeardown(t *testing.T) {
	// A room-ended signal and a socket disconnect can tear the session
	// down at the same time from different goroutines
	ps := fullSession(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ps.Close()
		}()
		go func() {
			defer wg.Done()
			ps.CloseMatchState()
		}()
	}
	wg.Wait()

	assert.Empty(t, ps.Room())
	assert.Empty(t, ps.Opponent())
	assert.Nil(t, ps.Publisher())
	assert.Nil(t, ps.Scorer())
}

func TestPlayerSessionCloseIsIdempotent(t *testing.T) {
	ps := fullSession(t)
	ps.Close()
	ps.Close()
	ps.CloseMatchState()
}

func TestPlayerSessionAttachAfterClose(t *testing.T) {
	ms := store.NewMemoryStore()
	ctx := context.Background()

	ps := fullSession(t)
	ps.Close()

	t.Run("a late feed channel is closed immediately", func(t *testing.T) {
		stop := make(chan struct{})
		ps.AttachFeed(stop)
		_, open := <-stop
		assert.False(t, open, "a feed attached after teardown must not keep running")
	})

	t.Run("a late publisher is stopped immediately", func(t *testing.T) {
		publisher := replication.NewPublisher(ms, "room-1", "alice")
		publisher.Start(ctx)
		ps.BeginMatch("room-1", "bob", publisher, nil)
		assert.Nil(t, ps.Publisher())
		// A stopped publisher tolerates a second Stop
		publisher.Stop()
	})

	t.Run("a fresh room binding reopens the session", func(t *testing.T) {
		mgr := rooms.NewManager(ms, invitations.NewChannel(ms))
		listener, err := mgr.Listen(ctx, "room-2", rooms.Signals{})
		require.NoError(t, err)
		ps.BindRoom("room-2", listener)
		assert.Equal(t, "room-2", ps.Room())
		ps.Close()
	})
}
