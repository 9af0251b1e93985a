package main

import (
	"context"
	"log"
	"os"

	"nature-animaux/internal/config"
	"nature-animaux/internal/db"
	"nature-animaux/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC)

	ctx := context.Background()
	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatalf("connect to mongo: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := seed.Apply(ctx, client.Database(cfg.MongoDatabase)); err != nil {
		logger.Fatalf("seed catalog: %v", err)
	}
	logger.Printf("catalog seeded")
}
