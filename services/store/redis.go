package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Documents expire after 24 hours so orphaned rooms age out of Redis.
const documentTTL = 24 * time.Hour

const (
	keyPrefix     = "rt:"
	channelPrefix = "rtwatch:"
)

type disconnectWrite struct {
	path  string
	value interface{}
}

// RedisStore is the Redis-backed Store implementation. Documents are JSON
// blobs keyed by their path; change notifications ride a pub/sub channel
// per path, published after every write.
type RedisStore struct {
	client *redis.Client
	ctx    context.Context

	mu           sync.Mutex
	onDisconnect map[string][]disconnectWrite
}

// NewRedisStore creates a new Redis-backed store instance
func NewRedisStore(addr string, db int) *RedisStore {
	var client *redis.Client
	if addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		})
	}
	return &RedisStore{
		client:       client,
		ctx:          context.Background(),
		onDisconnect: make(map[string][]disconnectWrite),
	}
}

// InitRedisStore initializes the Redis connection and basic configuration
func InitRedisStore(addr string, db int) (*RedisStore, error) {
	rs := NewRedisStore(addr, db)

	// Test connection
	if err := rs.client.Ping(rs.ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	log.Println("Successfully connected to Redis")
	return rs, nil
}

// Close gracefully closes the Redis connection
func (rs *RedisStore) Close() error {
	if err := rs.client.Close(); err != nil {
		return fmt.Errorf("error closing Redis connection: %v", err)
	}
	return nil
}

func docKey(path string) string {
	return keyPrefix + path
}

func watchChannel(path string) string {
	return channelPrefix + path
}

func (rs *RedisStore) Get(ctx context.Context, path string, dest interface{}) (bool, error) {
	data, err := rs.client.Get(ctx, docKey(path)).Bytes()
	if err != nil {
		if err == redis.Nil {
			// Document does not exist
			return false, nil
		}
		return false, fmt.Errorf("error getting document at %s: %v", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// A garbled document is treated as absent for projection purposes
		log.Printf("[STORE-WARN] garbled document at %s: %v", path, err)
		return false, nil
	}
	return true, nil
}

func (rs *RedisStore) Set(ctx context.Context, path string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error marshaling document for %s: %v", path, err)
	}
	if err := rs.client.Set(ctx, docKey(path), data, documentTTL).Err(); err != nil {
		return fmt.Errorf("error setting document at %s: %v", path, err)
	}
	// Notify watchers after the write has landed
	if err := rs.client.Publish(ctx, watchChannel(path), data).Err(); err != nil {
		return fmt.Errorf("error publishing change for %s: %v", path, err)
	}
	return nil
}

func (rs *RedisStore) Remove(ctx context.Context, path string) error {
	// Collect the document itself plus every child path
	removed := []string{path}
	iter := rs.client.Scan(ctx, 0, docKey(path)+"/*", 0).Iterator()
	for iter.Next(ctx) {
		removed = append(removed, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning children of %s: %v", path, err)
	}

	// Create pipeline for atomic operation
	pipe := rs.client.Pipeline()
	for _, p := range removed {
		pipe.Del(ctx, docKey(p))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("error removing document at %s: %v", path, err)
	}

	// Tombstone event for each removed path
	for _, p := range removed {
		if err := rs.client.Publish(ctx, watchChannel(p), "").Err(); err != nil {
			return fmt.Errorf("error publishing removal for %s: %v", p, err)
		}
	}
	return nil
}

func (rs *RedisStore) Push(ctx context.Context, parentPath string, value interface{}) (string, error) {
	key := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := rs.Set(ctx, parentPath+"/"+key, value); err != nil {
		return "", err
	}
	return key, nil
}

func (rs *RedisStore) Children(ctx context.Context, parentPath string) (map[string]json.RawMessage, error) {
	children := make(map[string]json.RawMessage)
	iter := rs.client.Scan(ctx, 0, docKey(parentPath)+"/*", 0).Iterator()
	for iter.Next(ctx) {
		rel := strings.TrimPrefix(iter.Val(), docKey(parentPath)+"/")
		if strings.Contains(rel, "/") {
			// Not a direct child
			continue
		}
		data, err := rs.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("error reading child %s: %v", rel, err)
		}
		children[rel] = json.RawMessage(data)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("error listing children of %s: %v", parentPath, err)
	}
	return children, nil
}

// redisSubscription adapts a go-redis PubSub to the Subscription interface
type redisSubscription struct {
	pubsub *redis.PubSub
	events chan Event
	once   sync.Once
}

func (s *redisSubscription) Events() <-chan Event {
	return s.events
}

func (s *redisSubscription) Close() {
	s.once.Do(func() {
		// Closing the PubSub ends the forwarding goroutine
		s.pubsub.Close()
	})
}

func (rs *RedisStore) Watch(ctx context.Context, path string) (Subscription, error) {
	pubsub := rs.client.Subscribe(ctx, watchChannel(path))
	// Force the subscription to be established before returning, so no
	// change published after Watch returns is ever missed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("error subscribing to %s: %v", path, err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		events: make(chan Event, 16),
	}
	go func() {
		defer close(sub.events)
		for msg := range pubsub.Channel() {
			ev := Event{Path: strings.TrimPrefix(msg.Channel, channelPrefix)}
			if msg.Payload != "" {
				ev.Data = json.RawMessage(msg.Payload)
			}
			sub.events <- ev
		}
	}()
	return sub, nil
}

func (rs *RedisStore) OnDisconnect(sessionID, path string, value interface{}) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.onDisconnect[sessionID] = append(rs.onDisconnect[sessionID], disconnectWrite{path: path, value: value})
}

func (rs *RedisStore) RunDisconnect(ctx context.Context, sessionID string) {
	rs.mu.Lock()
	writes := rs.onDisconnect[sessionID]
	delete(rs.onDisconnect, sessionID)
	rs.mu.Unlock()

	for _, w := range writes {
		if err := rs.Set(ctx, w.path, w.value); err != nil {
			log.Printf("[STORE-DISCONNECT-ERROR] session %s, path %s: %v", sessionID, w.path, err)
		}
	}
}
