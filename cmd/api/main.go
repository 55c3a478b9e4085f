package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pageza/recipeshare/backend/config"
	"github.com/pageza/recipeshare/backend/internal/api"
	"github.com/pageza/recipeshare/backend/internal/database"
	"github.com/pageza/recipeshare/backend/internal/server"
	"github.com/pageza/recipeshare/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis backs rate limiting and logout; the API runs without it.
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Warning: Redis unavailable, rate limiting and shared logout disabled: %v", err)
		redisClient = nil
	}

	var images service.IImageService
	if cfg.S3BucketName != "" {
		s3Config, err := config.NewS3Config(context.Background(), cfg)
		if err != nil {
			log.Printf("Warning: S3 unavailable, image uploads disabled: %v", err)
		} else {
			images = service.NewImageService(s3Config)
		}
	}

	srv := server.New(cfg, api.NewServices(db, redisClient, images, cfg.JWTSecret, cfg.JWTTTL))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("Server stopped")
}
