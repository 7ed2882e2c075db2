package main

import (
	"Pixelhop/config"
	_ "Pixelhop/config/swagger"
	"Pixelhop/middleware"
	"Pixelhop/routes"
	"Pixelhop/services/history"
	"Pixelhop/services/invitations"
	"Pixelhop/services/replication"
	"Pixelhop/services/rooms"
	"Pixelhop/services/scoring"
	"Pixelhop/services/socket_io"
	"Pixelhop/services/socket_io/handlers"
	pixelsync "Pixelhop/sync"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// @title Pixelhop API
// @version 1.0
// @description Gin-Gonic server for the "Pixelhop" multiplayer platformer
// @BasePath /
func main() {
	godotenv.Load()
	log.Println("Setting up server...")

	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := config.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	log.Println("GORM Connected")

	// Only migrate in development or during deployment
	if os.Getenv("MIGRATE_POSTGRES") == "true" {
		log.Println("Migrating PostgreSQL database...")
		if err := config.MigrateDatabase(gormDB); err != nil {
			log.Printf("Warning: Database migration failed: %v", err)
			// Continue execution even if migration fails
		} else {
			log.Println("Database migrated successfully")
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	redisStore, err := config.Connect_redis()
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	log.Println("Connection to Redis successful")
	defer redisStore.Close()

	invites := invitations.NewChannel(redisStore)

	svc := &handlers.Services{
		Store:      redisStore,
		DB:         gormDB,
		Rooms:      rooms.NewManager(redisStore, invites),
		Invites:    invites,
		Replicator: replication.NewReplicator(redisStore),
		History:    history.NewRecorder(redisStore),
		Sync:       pixelsync.NewSyncManager(redisStore, sqlDB),
		Scoring:    scoring.DefaultConfig(),
	}

	r := gin.Default()

	middleware.SetUpMiddleware(r)

	routes.SetupRoutes(r, gormDB, invites)

	sioServer := &socket_io.MySocketServer{}
	sioServer.Start(r, gormDB, svc)

	// Configure port
	port := os.Getenv("PORT")
	if port == "" && os.Getenv("USE_HTTPS") == "true" {
		port = "443"
	} else if port == "" {
		port = "8080"
	}

	if os.Getenv("USE_HTTPS") == "true" {
		// SSL certification configuration for HTTPS
		certFile := os.Getenv("TLS_CERT_FILE")
		keyFile := os.Getenv("TLS_KEY_FILE")

		if err := r.RunTLS(":"+port, certFile, keyFile); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	} else {
		if err := r.Run(":" + port); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}
}
