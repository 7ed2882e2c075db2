package config

import (
	"Pixelhop/services/store"
	"log"
	"os"
)

// Connect to Redis, which backs the realtime document store
func Connect_redis() (*store.RedisStore, error) {
	redisUri := os.Getenv("REDIS_URL")
	log.Println(redisUri)
	redisStore, err := store.InitRedisStore(redisUri, 0)
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
		return nil, err
	}
	log.Println("Redis connection established")
	return redisStore, nil
}
