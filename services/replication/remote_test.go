package replication

import (
	realtime "Pixelhop/models/realtime"
	"Pixelhop/services/store"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForTarget(t *testing.T, r *RemotePlayer, x float64) {
	t.Helper()
	require.Eventually(t, func() bool {
		target, ok := r.Target()
		return ok && target.X == x
	}, time.Second, 5*time.Millisecond, "sample never reached the mirror")
}

func TestRemotePlayerSnapsOnFirstSample(t *testing.T) {
	ms := store.NewMemoryStore()
	ctx := context.Background()

	r, err := WatchRemotePlayer(ctx, ms, "room-1", "bob")
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, ms.Set(ctx, store.PlayerPositionPath("room-1", "bob"),
		realtime.PlayerPositionData{X: 10, Y: 5, FacingRight: true}))
	waitForTarget(t, r, 10)

	x, y := r.Step(0.016)
	assert.Equal(t, 10.0, x, "first sample snaps, nothing to interpolate from")
	assert.Equal(t, 5.0, y)
	assert.True(t, r.FacingRight())
}

func TestRemotePlayerSmoothsTowardTarget(t *testing.T) {
	ms := store.NewMemoryStore()
	ctx := context.Background()

	r, err := WatchRemotePlayer(ctx, ms, "room-1", "bob")
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, ms.Set(ctx, store.PlayerPositionPath("room-1", "bob"),
		realtime.PlayerPositionData{X: 0, Y: 0}))
	waitForTarget(t, r, 0)
	r.Step(0.016)

	require.NoError(t, ms.Set(ctx, store.PlayerPositionPath("room-1", "bob"),
		realtime.PlayerPositionData{X: 10, Y: 0, FacingRight: true}))
	waitForTarget(t, r, 10)

	x1, _ := r.Step(0.016)
	assert.Greater(t, x1, 0.0, "position must move toward the target")
	assert.Less(t, x1, 10.0, "one small step must not reach the target")

	x2, _ := r.Step(0.016)
	assert.Greater(t, x2, x1, "each step keeps converging")

	// Facing snaps immediately, it is not interpolated
	assert.True(t, r.FacingRight())

	// Many frames later the visible position has effectively converged
	for i := 0; i < 200; i++ {
		r.Step(0.016)
	}
	xFinal, _ := r.Step(0.016)
	assert.InDelta(t, 10.0, xFinal, 0.01)
}
