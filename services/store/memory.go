package store

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests. It mirrors the
// RedisStore semantics (whole-document JSON writes, tombstone events on
// removal, subtree removal) without a running Redis.
type MemoryStore struct {
	mu           sync.Mutex
	docs         map[string]json.RawMessage
	watchers     map[string][]*memorySubscription
	onDisconnect map[string][]disconnectWrite
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:         make(map[string]json.RawMessage),
		watchers:     make(map[string][]*memorySubscription),
		onDisconnect: make(map[string][]disconnectWrite),
	}
}

type memorySubscription struct {
	store  *MemoryStore
	path   string
	events chan Event
	once   sync.Once
}

func (s *memorySubscription) Events() <-chan Event {
	return s.events
}

func (s *memorySubscription) Close() {
	s.once.Do(func() {
		s.store.mu.Lock()
		subs := s.store.watchers[s.path]
		for i, sub := range subs {
			if sub == s {
				s.store.watchers[s.path] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		s.store.mu.Unlock()
		close(s.events)
	})
}

// notify delivers an event to every watcher of path. Callers hold mu.
func (ms *MemoryStore) notify(path string, data json.RawMessage) {
	for _, sub := range ms.watchers[path] {
		// Non-blocking: a watcher that stopped draining must not stall
		// every other writer
		select {
		case sub.events <- Event{Path: path, Data: data}:
		default:
		}
	}
}

func (ms *MemoryStore) Get(ctx context.Context, path string, dest interface{}) (bool, error) {
	ms.mu.Lock()
	data, ok := ms.docs[path]
	ms.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("[STORE-WARN] garbled document at %s: %v", path, err)
		return false, nil
	}
	return true, nil
}

func (ms *MemoryStore) Set(ctx context.Context, path string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	ms.mu.Lock()
	ms.docs[path] = data
	ms.notify(path, data)
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) Remove(ctx context.Context, path string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for p := range ms.docs {
		if p == path || strings.HasPrefix(p, path+"/") {
			delete(ms.docs, p)
			ms.notify(p, nil)
		}
	}
	return nil
}

func (ms *MemoryStore) Push(ctx context.Context, parentPath string, value interface{}) (string, error) {
	key := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := ms.Set(ctx, parentPath+"/"+key, value); err != nil {
		return "", err
	}
	return key, nil
}

func (ms *MemoryStore) Children(ctx context.Context, parentPath string) (map[string]json.RawMessage, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	children := make(map[string]json.RawMessage)
	for p, data := range ms.docs {
		if !strings.HasPrefix(p, parentPath+"/") {
			continue
		}
		rel := strings.TrimPrefix(p, parentPath+"/")
		if strings.Contains(rel, "/") {
			continue
		}
		children[rel] = data
	}
	return children, nil
}

func (ms *MemoryStore) Watch(ctx context.Context, path string) (Subscription, error) {
	sub := &memorySubscription{
		store:  ms,
		path:   path,
		events: make(chan Event, 16),
	}
	ms.mu.Lock()
	ms.watchers[path] = append(ms.watchers[path], sub)
	ms.mu.Unlock()
	return sub, nil
}

func (ms *MemoryStore) OnDisconnect(sessionID, path string, value interface{}) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.onDisconnect[sessionID] = append(ms.onDisconnect[sessionID], disconnectWrite{path: path, value: value})
}

func (ms *MemoryStore) RunDisconnect(ctx context.Context, sessionID string) {
	ms.mu.Lock()
	writes := ms.onDisconnect[sessionID]
	delete(ms.onDisconnect, sessionID)
	ms.mu.Unlock()

	for _, w := range writes {
		if err := ms.Set(ctx, w.path, w.value); err != nil {
			log.Printf("[STORE-DISCONNECT-ERROR] session %s, path %s: %v", sessionID, w.path, err)
		}
	}
}
