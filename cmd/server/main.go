package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"followgate/internal/config"
	"followgate/internal/graph"
	"followgate/internal/identity"
	"followgate/internal/jobs"
	"followgate/internal/metrics"
	"followgate/internal/sequencer"
	"followgate/internal/server"
	"followgate/internal/store"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// Initialize record store
	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer st.Close()

	// Run migrations
	if err := st.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Identity resolution, with a Redis read-through cache when configured
	var resolver identity.Resolver = identity.NewDirectory(cfg.IdentityDirectoryURL)
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
		resolver = identity.NewCache(rdb, resolver, cfg.IdentityCacheTTL)
	} else {
		log.Println("Redis is disabled. Set REDIS_URL to enable identity caching.")
	}

	// Commit stream
	seq, err := sequencer.Connect(cfg.NatsURL, "followgate", cfg.NatsSubjectPrefix)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer seq.Close()

	metrics.Init()

	// Workflow services
	enricher := graph.NewEnricher(st, resolver, cfg.EnrichConcurrency)
	directory := graph.NewDirectory(st, enricher)
	coordinator := graph.NewCoordinator(st, seq, st)

	srv := server.New(cfg)
	if err := srv.RegisterRoutes(ctx, st, directory, coordinator); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	// Background index maintenance
	sweepCtx, cancelSweep := context.WithCancel(ctx)
	defer cancelSweep()
	sweeper := jobs.NewBacklinkSweeper(st, cfg.SweepInterval)
	go sweeper.Start(sweepCtx)

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancelSweep()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
