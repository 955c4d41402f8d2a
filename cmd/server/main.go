package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nzvengeance/gw2style/internal/api"
	"github.com/nzvengeance/gw2style/internal/backend"
	"github.com/nzvengeance/gw2style/internal/config"
	"github.com/nzvengeance/gw2style/internal/database"
	"github.com/nzvengeance/gw2style/internal/equipment"
	"github.com/nzvengeance/gw2style/internal/gw2"
	"github.com/nzvengeance/gw2style/internal/skins"
	syncsvc "github.com/nzvengeance/gw2style/internal/sync"
	"github.com/nzvengeance/gw2style/internal/tagging"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	log.Info().Msg("GW2Style starting up")

	config.LoadDotEnv(".env")
	cfg := config.Load()

	// Connect database
	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	gw2Client := gw2.NewClient(cfg.GW2BaseURL, cfg.GW2RateLimit, cfg.GW2Burst)

	store, closeStore, err := openSkinStore(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open skin store")
	}
	defer closeStore()

	// The snapshot file doubles as the cache's fallback source and the sync
	// job's export target, unless it is already the primary store.
	var snapshotFile *skins.FileStore
	var source skins.Source
	if cfg.SkinStore != "file" {
		snapshotFile = skins.NewFileStore(cfg.SkinSnapshotPath)
		source = skins.StoreSource{Store: snapshotFile}
	} else {
		log.Info().Str("path", cfg.SkinSnapshotPath).Msg("skin snapshot file is the primary store; stale snapshots are renewed by the sync job only")
	}

	cache, err := skins.NewCache(skins.CacheConfig{
		Store:  store,
		Source: source,
		MaxAge: cfg.SkinCacheMaxAge,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create skin cache")
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	if err := cache.Initialize(initCtx); err != nil {
		log.Warn().Err(err).Msg("skin cache starting empty")
	}
	cancelInit()

	// Create sync scheduler
	scheduler := syncsvc.NewScheduler(skins.NewFetcher(gw2Client), cache, db, snapshotFile, cfg)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer scheduler.Stop()

	// Create API server
	srv := api.NewServer(cfg, api.Deps{
		Tagger:    tagging.NewDeriver(gw2Client),
		Skins:     cache,
		Posts:     backend.NewClient(cfg.BackendURL),
		Equipment: equipment.NewResolver(gw2Client),
		Sync:      scheduler,
		History:   db,
		DB:        db,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Info().Str("port", cfg.Port).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("GW2Style stopped")
}

// openSkinStore returns the configured snapshot store and a func releasing it.
func openSkinStore(cfg *config.Config, db *database.DB) (skins.Store, func(), error) {
	noop := func() {}

	switch cfg.SkinStore {
	case "memory":
		return skins.NewMemoryStore(), noop, nil
	case "file":
		return skins.NewFileStore(cfg.SkinSnapshotPath), noop, nil
	case "database":
		return db, noop, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		store, err := skins.NewRedisStore(client)
		if err != nil {
			client.Close()
			return nil, noop, err
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis skin store")
		return store, func() { client.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unsupported skin store: %s", cfg.SkinStore)
	}
}
