package main

import (
	"log"
	"os"

	"github.com/sahilchouksey/mindmeld-api/config"
	"github.com/sahilchouksey/mindmeld-api/database"
	"github.com/sahilchouksey/mindmeld-api/utils/logger"
	"go.uber.org/zap"
)

func main() {
	if err := config.LoadENV(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	env, err := config.Get()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog := logger.Must(env.GO_ENV)
	defer func() { _ = zlog.Sync() }()

	store, err := database.StartGORM(env, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		zlog.Fatal("Migration failed", zap.Error(err))
	}

	seeder := database.NewSeeder(store.DB(), zlog)
	if err := seeder.SeedAll(database.AdminSeed{
		Email:    os.Getenv("ADMIN_EMAIL"),
		Password: os.Getenv("ADMIN_PASSWORD"),
		Name:     os.Getenv("ADMIN_NAME"),
	}); err != nil {
		zlog.Fatal("Seeding failed", zap.Error(err))
	}

	zlog.Info("Seeding completed")
}
