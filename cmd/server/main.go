package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"bingoroom/internal/feed"
	"bingoroom/internal/games"
	"bingoroom/internal/gateway"
	"bingoroom/internal/identity"
	"bingoroom/internal/room"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded")
	}

	cfg, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resolver, err := identity.NewJWTResolver(cfg.Auth.JWTSecret, cfg.tokenExpiry())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token resolver")
	}

	// Games store is optional: rooms work for any slug without one.
	var gamesHandler *games.Handler
	var metadataSource room.MetadataSource
	if cfg.Database.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create database pool")
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ping database")
		}
		log.Info().Msg("connected to database")

		repo := games.NewRepository(pool)
		gamesHandler = games.NewHandler(repo, resolver)
		metadataSource = repo
	} else {
		log.Warn().Msg("no database configured, game metadata endpoints disabled")
	}

	// Feed relay is optional as well.
	var relay room.Relay
	if cfg.NATS.URL != "" {
		feedCfg := feed.DefaultConfig()
		feedCfg.URL = cfg.NATS.URL
		publisher, err := feed.NewPublisher(feedCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect feed relay")
		}
		defer publisher.Close()
		relay = publisher
		log.Info().Str("url", cfg.NATS.URL).Msg("feed relay connected")
	}

	managerCfg := room.DefaultManagerConfig()
	managerCfg.RebroadcastNoops = cfg.Rooms.RebroadcastNoops
	managerCfg.IdleTTL = cfg.roomIdleTTL()
	manager := room.NewManager(managerCfg, resolver, relay, metadataSource, clockwork.NewRealClock())
	defer manager.ShutdownAll()
	go manager.RunReaper(ctx)

	ws := gateway.NewHandler(manager, gateway.DefaultConnectionConfig())
	srv := setupServer(cfg, ws, gamesHandler)

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

func setupLogging(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	log.Logger = log.Output(os.Stderr)
}
