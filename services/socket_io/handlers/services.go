package handlers

import (
	"Pixelhop/services/history"
	"Pixelhop/services/invitations"
	"Pixelhop/services/replication"
	"Pixelhop/services/rooms"
	"Pixelhop/services/scoring"
	"Pixelhop/services/store"
	pixelsync "Pixelhop/sync"

	"gorm.io/gorm"
)

// Services bundles the explicitly constructed core services the handlers
// operate on. The gateway owns their lifecycle and passes them down by
// reference; nothing in here is a process-wide singleton.
type Services struct {
	Store      store.Store
	DB         *gorm.DB
	Rooms      *rooms.Manager
	Invites    *invitations.Channel
	Replicator *replication.Replicator
	History    *history.Recorder
	Sync       *pixelsync.SyncManager
	Scoring    scoring.Config
}

// Helpers to read loosely typed socket.io payloads

func argMap(args []interface{}) map[string]interface{} {
	if len(args) < 1 {
		return nil
	}
	m, ok := args[0].(map[string]interface{})
	if !ok {
		return nil
	}
	return m
}

func getString(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}

func getFloat(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func getInt(m map[string]interface{}, key string) int {
	return int(getFloat(m, key))
}

func getBool(m map[string]interface{}, key string) bool {
	v, _ := m[key].(bool)
	return v
}
