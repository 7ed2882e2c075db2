package store

import (
	"context"
	"encoding/json"
	"log"
)

// Event is one change notification for a watched path. Data is the current
// JSON document, or nil when the document was removed.
type Event struct {
	Path string
	Data json.RawMessage
}

// Subscription is a live watch on a single path. Owners must call Close()
// on every teardown path, otherwise callbacks keep firing against dead
// local dependents.
type Subscription interface {
	// Events delivers change notifications until Close is called.
	Events() <-chan Event
	Close()
}

// Store is a path-addressed realtime document store: JSON documents keyed
// by slash-separated paths, change notification subscriptions per path, and
// disconnect-triggered best-effort writes. There are no transactions; the
// single-writer-per-field convention is the sole concurrency-safety
// mechanism.
type Store interface {
	// Get reads the document at path into dest. Returns found=false when the
	// document is absent; a garbled document is treated the same way.
	Get(ctx context.Context, path string, dest interface{}) (bool, error)

	// Set writes the document at path, replacing any previous value.
	Set(ctx context.Context, path string, value interface{}) error

	// Remove deletes the document at path together with every child path.
	// Removing an absent path is a no-op, not an error.
	Remove(ctx context.Context, path string) error

	// Push stores value under parentPath with an atomically generated
	// opaque child key and returns that key.
	Push(ctx context.Context, parentPath string, value interface{}) (string, error)

	// Children lists the direct child documents of parentPath, keyed by
	// child key.
	Children(ctx context.Context, parentPath string) (map[string]json.RawMessage, error)

	// Watch subscribes to changes of the document at path.
	Watch(ctx context.Context, path string) (Subscription, error)

	// OnDisconnect registers a best-effort write to run when the session
	// identified by sessionID disconnects. Fire-and-forget: the write is
	// never awaited by the initiating client.
	OnDisconnect(sessionID, path string, value interface{})

	// RunDisconnect executes and clears the registered disconnect writes of
	// a session. Failures are logged and dropped.
	RunDisconnect(ctx context.Context, sessionID string)
}

// WriteResult is the completion of a fire-and-forget write. Callers may
// ignore it entirely; the failure has already been logged once by then.
type WriteResult <-chan error

// Async runs a store write in the background. Failures are logged once and
// not retried; the caller re-issues the user action to retry. The returned
// result may be ignored.
func Async(op string, fn func() error) WriteResult {
	done := make(chan error, 1)
	go func() {
		err := fn()
		if err != nil {
			log.Printf("[STORE-ASYNC-ERROR] %s: %v", op, err)
		}
		done <- err
		close(done)
	}()
	return done
}
