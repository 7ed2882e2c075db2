package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryStoreSetGet(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	t.Run("get on missing path reports not found", func(t *testing.T) {
		var doc testDoc
		found, err := ms.Get(ctx, "Rooms/none", &doc)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("set then get round trips", func(t *testing.T) {
		require.NoError(t, ms.Set(ctx, "Rooms/abc", testDoc{Name: "host", Count: 2}))

		var doc testDoc
		found, err := ms.Get(ctx, "Rooms/abc", &doc)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "host", doc.Name)
		assert.Equal(t, 2, doc.Count)
	})
}

func TestMemoryStoreRemoveSubtree(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, ms.Set(ctx, "Rooms/r1", testDoc{Name: "room"}))
	require.NoError(t, ms.Set(ctx, "Rooms/r1/gameStats", testDoc{Name: "stats"}))
	require.NoError(t, ms.Set(ctx, "Rooms/r2", testDoc{Name: "other"}))

	require.NoError(t, ms.Remove(ctx, "Rooms/r1"))

	var doc testDoc
	found, _ := ms.Get(ctx, "Rooms/r1", &doc)
	assert.False(t, found, "removed document should be gone")
	found, _ = ms.Get(ctx, "Rooms/r1/gameStats", &doc)
	assert.False(t, found, "children should be removed with the parent")
	found, _ = ms.Get(ctx, "Rooms/r2", &doc)
	assert.True(t, found, "sibling documents must survive")
}

func TestMemoryStorePushAndChildren(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	id1, err := ms.Push(ctx, "Invitations/bob", testDoc{Name: "first"})
	require.NoError(t, err)
	id2, err := ms.Push(ctx, "Invitations/bob", testDoc{Name: "second"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2, "pushed ids must be unique")

	// A nested write below a child must not show up as a direct child
	require.NoError(t, ms.Set(ctx, "Invitations/bob/"+id1+"/extra", testDoc{}))

	children, err := ms.Children(ctx, "Invitations/bob")
	require.NoError(t, err)
	assert.Len(t, children, 2)
	assert.Contains(t, children, id1)
	assert.Contains(t, children, id2)
}

func TestMemoryStoreWatch(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	sub, err := ms.Watch(ctx, "Rooms/watched")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, ms.Set(ctx, "Rooms/watched", testDoc{Name: "v1"}))
	ev := waitEvent(t, sub)
	require.NotNil(t, ev.Data, "a set must deliver the document")

	require.NoError(t, ms.Remove(ctx, "Rooms/watched"))
	ev = waitEvent(t, sub)
	assert.Nil(t, ev.Data, "a removal must deliver a nil-data tombstone")
}

func TestMemoryStoreWatchCloseStopsEvents(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	sub, err := ms.Watch(ctx, "Rooms/closed")
	require.NoError(t, err)
	sub.Close()
	sub.Close() // idempotent

	// Writing after close must not panic on a closed channel
	require.NoError(t, ms.Set(ctx, "Rooms/closed", testDoc{Name: "late"}))

	_, open := <-sub.Events()
	assert.False(t, open, "events channel must be closed after Close")
}

func TestMemoryStoreDisconnectWrites(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	ms.OnDisconnect("session-1", "GameRooms/r1/p1", testDoc{Name: "offline"})
	ms.RunDisconnect(ctx, "session-1")

	var doc testDoc
	found, err := ms.Get(ctx, "GameRooms/r1/p1", &doc)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "offline", doc.Name)

	// Second run is a no-op: the registered writes were consumed
	require.NoError(t, ms.Set(ctx, "GameRooms/r1/p1", testDoc{Name: "online"}))
	ms.RunDisconnect(ctx, "session-1")
	found, err = ms.Get(ctx, "GameRooms/r1/p1", &doc)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "online", doc.Name)
}

func TestAsyncReportsError(t *testing.T) {
	res := Async("test op", func() error {
		return assert.AnError
	})
	select {
	case err := <-res:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("async result never delivered")
	}
}

func waitEvent(t *testing.T, sub Subscription) Event {
	t.Helper()
	select {
	case ev := <-sub.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for store event")
		return Event{}
	}
}
