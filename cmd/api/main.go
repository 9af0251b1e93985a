package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nature-animaux/internal/catalog"
	"nature-animaux/internal/config"
	"nature-animaux/internal/db"
	"nature-animaux/internal/httpserver"
	cartrepo "nature-animaux/internal/repository/cart"
	deliveryrepo "nature-animaux/internal/repository/delivery"
	orderrepo "nature-animaux/internal/repository/order"
	userrepo "nature-animaux/internal/repository/user"
	cartsvc "nature-animaux/internal/service/cart"
	ordersvc "nature-animaux/internal/service/order"
	sessionsvc "nature-animaux/internal/service/session"
	usersvc "nature-animaux/internal/service/user"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	mongoClient, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatalf("connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())

	redisClient, err := db.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Fatalf("connect to redis: %v", err)
	}
	defer redisClient.Close()

	lookup := catalog.NewMongo(mongoClient.Database(cfg.MongoDatabase))

	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool)
	deliveryRepo := deliveryrepo.NewPostgres(dbpool)
	userRepo := userrepo.NewPostgres(dbpool)

	tokens := usersvc.NewTokenManager(cfg.JWTSecret, 3*time.Hour)
	cartService := cartsvc.New(cartRepo, deliveryRepo, lookup, logger)
	orderService := ordersvc.New(orderRepo, cartRepo, deliveryRepo)
	userService := usersvc.New(userRepo, tokens)
	sessionService := sessionsvc.New(redisClient)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:  cartService,
		OrderSvc: orderService,
		UserSvc:  userService,
		Sessions: sessionService,
		Catalog:  lookup,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
