package replication

import (
	realtime "Pixelhop/models/realtime"
	"Pixelhop/services/store"
	"context"
	"log"
	"sync"
	"time"
)

// DefaultPublishInterval bounds the outgoing rate at roughly 20 Hz
const DefaultPublishInterval = 50 * time.Millisecond

// Publisher periodically publishes the local player's transform to its own
// position sub-path. It never writes another player's sub-path. Publishing
// is fire-and-forget: a failed publish is logged and skipped, the next
// tick's sample supersedes it, so staleness is self-healing but individual
// updates are not guaranteed to be delivered.
type Publisher struct {
	store    store.Store
	roomID   string
	playerID string
	interval time.Duration

	mu     sync.Mutex
	latest realtime.PlayerPositionData
	dirty  bool

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewPublisher(s store.Store, roomID, playerID string) *Publisher {
	return &Publisher{
		store:    s,
		roomID:   roomID,
		playerID: playerID,
		interval: DefaultPublishInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Update records the newest local sample. It is cheap and safe to call at
// frame rate; the publish loop drains the latest sample per tick.
func (p *Publisher) Update(sample realtime.PlayerPositionData) {
	p.mu.Lock()
	p.latest = sample
	p.dirty = true
	p.mu.Unlock()
}

// Start runs the bounded-rate publish loop until Stop is called.
func (p *Publisher) Start(ctx context.Context) {
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.publishTick(ctx)
			}
		}
	}()
}

func (p *Publisher) publishTick(ctx context.Context) {
	p.mu.Lock()
	if !p.dirty {
		p.mu.Unlock()
		return
	}
	sample := p.latest
	p.dirty = false
	p.mu.Unlock()

	sample.Timestamp = time.Now().UnixMilli()
	path := store.PlayerPositionPath(p.roomID, p.playerID)
	if err := p.store.Set(ctx, path, sample); err != nil {
		// No retry, no backpressure: the next tick supersedes this sample
		log.Printf("[REPLICATE-ERROR] publish for %s in room %s: %v", p.playerID, p.roomID, err)
	}
}

// Stop ends the publish loop. In-flight writes are not cancelled; a write
// landing after the local state has moved on is a harmless stale update.
func (p *Publisher) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
		<-p.done
	})
}
