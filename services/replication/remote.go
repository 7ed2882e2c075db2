package replication

import (
	realtime "Pixelhop/models/realtime"
	"Pixelhop/services/store"
	"context"
	"encoding/json"
	"log"
	"math"
	"sync"
)

// DefaultSmoothing is the exponential smoothing rate (per second) used to
// move a remote player's visible position toward the latest received
// sample. Smoothing absorbs irregular network update intervals; snapping
// directly would stutter.
const DefaultSmoothing = 12.0

// RemotePlayer mirrors one peer during a match. Every received sample
// becomes the interpolation target; per frame, Step moves the visible
// position toward it with exponential smoothing. Facing direction is a
// discrete, low-frequency signal and snaps immediately.
type RemotePlayer struct {
	peerID string
	sub    store.Subscription

	mu          sync.Mutex
	target      realtime.PlayerPositionData
	hasTarget   bool
	visibleX    float64
	visibleY    float64
	facingRight bool
	smoothing   float64

	closeOnce sync.Once
	done      chan struct{}
}

// WatchRemotePlayer subscribes to the peer's position sub-path. The caller
// owns the returned mirror and must Close it when the peer representation
// is torn down.
func WatchRemotePlayer(ctx context.Context, s store.Store, roomID, peerID string) (*RemotePlayer, error) {
	sub, err := s.Watch(ctx, store.PlayerPositionPath(roomID, peerID))
	if err != nil {
		return nil, err
	}
	r := &RemotePlayer{
		peerID:    peerID,
		sub:       sub,
		smoothing: DefaultSmoothing,
		done:      make(chan struct{}),
	}
	go r.run()
	return r, nil
}

func (r *RemotePlayer) run() {
	defer close(r.done)
	for ev := range r.sub.Events() {
		if ev.Data == nil {
			continue
		}
		var sample realtime.PlayerPositionData
		if err := json.Unmarshal(ev.Data, &sample); err != nil {
			log.Printf("[REPLICATE-WARN] garbled sample from %s: %v", r.peerID, err)
			continue
		}
		r.mu.Lock()
		if !r.hasTarget {
			// First sample: snap, there is nothing to interpolate from
			r.visibleX = sample.X
			r.visibleY = sample.Y
		}
		r.target = sample
		r.hasTarget = true
		r.facingRight = sample.FacingRight
		r.mu.Unlock()
	}
}

// Step advances the visible position by dt seconds and returns it.
func (r *RemotePlayer) Step(dt float64) (x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasTarget {
		return r.visibleX, r.visibleY
	}
	blend := 1.0 - math.Exp(-r.smoothing*dt)
	r.visibleX += (r.target.X - r.visibleX) * blend
	r.visibleY += (r.target.Y - r.visibleY) * blend
	return r.visibleX, r.visibleY
}

// FacingRight returns the last received facing direction.
func (r *RemotePlayer) FacingRight() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.facingRight
}

// Target returns the latest received raw sample.
func (r *RemotePlayer) Target() (realtime.PlayerPositionData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target, r.hasTarget
}

// Close tears the peer subscription down.
func (r *RemotePlayer) Close() {
	r.closeOnce.Do(func() {
		r.sub.Close()
		<-r.done
	})
}
