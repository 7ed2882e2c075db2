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

func TestPublisherRoundTrip(t *testing.T) {
	ms := store.NewMemoryStore()
	ctx := context.Background()

	p := NewPublisher(ms, "room-1", "alice")
	p.Start(ctx)
	defer p.Stop()

	p.Update(realtime.PlayerPositionData{
		X:           3.5,
		Y:           -1.25,
		FacingRight: true,
		VelocityX:   6.0,
		VelocityY:   -2.0,
		IsGrounded:  true,
	})

	var got realtime.PlayerPositionData
	require.Eventually(t, func() bool {
		found, err := ms.Get(ctx, store.PlayerPositionPath("room-1", "alice"), &got)
		return err == nil && found
	}, time.Second, 5*time.Millisecond, "sample never published")

	assert.Equal(t, 3.5, got.X)
	assert.Equal(t, -1.25, got.Y)
	assert.True(t, got.FacingRight)
	assert.Equal(t, 6.0, got.VelocityX)
	assert.Equal(t, -2.0, got.VelocityY)
	assert.True(t, got.IsGrounded)
	assert.NotZero(t, got.Timestamp, "publish must stamp the sample")
}

func TestPublisherLatestSampleWins(t *testing.T) {
	ms := store.NewMemoryStore()
	ctx := context.Background()

	p := NewPublisher(ms, "room-1", "alice")
	// Updates before Start accumulate into one latest sample
	for i := 0; i < 50; i++ {
		p.Update(realtime.PlayerPositionData{X: float64(i)})
	}
	p.Start(ctx)
	defer p.Stop()

	var got realtime.PlayerPositionData
	require.Eventually(t, func() bool {
		found, err := ms.Get(ctx, store.PlayerPositionPath("room-1", "alice"), &got)
		return err == nil && found
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 49.0, got.X, "only the newest sample may be published")
}

func TestPublisherStopIsIdempotent(t *testing.T) {
	p := NewPublisher(store.NewMemoryStore(), "room-1", "alice")
	p.Start(context.Background())
	p.Stop()
	p.Stop()
}
