package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"

	"github.com/MikeSquared-Agency/loom/internal/api"
	"github.com/MikeSquared-Agency/loom/internal/artifact"
	"github.com/MikeSquared-Agency/loom/internal/config"
	"github.com/MikeSquared-Agency/loom/internal/hermes"
	"github.com/MikeSquared-Agency/loom/internal/processor"
	"github.com/MikeSquared-Agency/loom/internal/reconcile"
	"github.com/MikeSquared-Agency/loom/internal/store"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("loom starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database: history batches, artifact blobs, data sheets
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// Artifact fetcher: datafile service over HTTP when configured, else the
	// blobs stored alongside the history.
	var fetcher artifact.Fetcher = db
	if cfg.DatafileURL != "" {
		fetcher = artifact.NewHTTPFetcher(cfg.DatafileURL, cfg.DatafileToken)
		slog.Info("datafile fetcher ready", "url", cfg.DatafileURL)
	}

	// Redis cache is optional; without it every fetch goes to the source.
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		ttl := time.Duration(cfg.ArtifactCacheTTL) * time.Second
		fetcher = artifact.NewCachedFetcher(fetcher, rdb, ttl, slog.Default())
		slog.Info("artifact cache ready", "addr", cfg.RedisAddr, "ttl", ttl)
	} else {
		slog.Warn("redis not configured, artifact fetches are uncached")
	}

	// NATS/Hermes
	hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer hermesClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Reconciliation engine
	coord := artifact.NewCoordinator(fetcher, db, cfg.ContextID, slog.Default())
	sink := hermes.NewSink(hermesClient, slog.Default())
	manager := reconcile.NewManager(coord, sink, slog.Default())

	// Processor reconciles on session-update events
	proc := processor.New(db, manager, slog.Default())
	if err := hermesClient.Subscribe(hermes.SubjectSessionUpdated, proc.HandleSessionUpdated); err != nil {
		slog.Error("failed to subscribe to session updates", "error", err)
		os.Exit(1)
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, manager, db)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := hermesClient.Publish("swarm.agent.loom.registered", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("loom ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("loom stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
