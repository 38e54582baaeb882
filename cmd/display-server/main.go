package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/eink-server/eink-display-server/internal/api"
	"github.com/eink-server/eink-display-server/internal/auth"
	"github.com/eink-server/eink-display-server/internal/config"
	"github.com/eink-server/eink-display-server/internal/device"
	"github.com/eink-server/eink-display-server/internal/integration"
	"github.com/eink-server/eink-display-server/internal/recipes"
	"github.com/eink-server/eink-display-server/internal/render"
	"github.com/eink-server/eink-display-server/internal/storage"
)

func main() {
	// Command line flags
	var configFile string
	flag.StringVar(&configFile, "config", "config/display-server.yml", "Configuration file path")
	flag.Parse()

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Connect to database. Devices must keep receiving images even when the
	// database is down, so a failed connection degrades to noDB mode instead
	// of aborting startup.
	var store storage.Store
	if cfg.Database.DSN != "" {
		pg, err := storage.NewPostgresStore(cfg.Database)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to database, serving default screens only")
		} else {
			store = pg
			defer pg.Close()
			log.Info().Msg("Connected to database")
		}
	} else {
		log.Warn().Msg("No database configured, serving default screens only")
	}

	// Seed the initial admin account so the management API is usable on a
	// fresh database.
	if store != nil {
		user, created, err := auth.EnsureAdminUser(context.Background(), store, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Error().Err(err).Msg("Failed to seed admin user")
		} else if created {
			log.Info().Str("email", user.Email).Msg("Created initial admin user")
			if cfg.Admin.Password == "admin" {
				log.Warn().Msg("Admin account uses the default password, set ADMIN_PASSWORD to change it")
			}
		}
	}

	// Optional NATS connection for device lifecycle events
	var nc *nats.Conn
	if cfg.NATS.URL != "" {
		log.Info().Str("url", cfg.NATS.URL).Msg("Connecting to NATS...")

		nc, err = nats.Connect(cfg.NATS.URL,
			nats.Name("eink-display-server"),
			nats.UserInfo(cfg.NATS.Username, cfg.NATS.Password),
			nats.ReconnectWait(cfg.NATS.ReconnectInterval),
			nats.MaxReconnects(cfg.NATS.MaxReconnects),
			nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
				log.Warn().Err(err).Msg("Disconnected from NATS")
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				log.Info().Msg("Reconnected to NATS")
			}),
		)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to NATS, continuing without NATS support")
			nc = nil
		} else {
			defer nc.Close()
			log.Info().Msg("Connected to NATS")
		}
	} else {
		log.Info().Msg("NATS not configured, running in standalone mode")
	}

	// Optional Redis for the shared second-level render cache
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis, using in-process cache only")
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
		}
	}

	// Render pipeline
	registry := recipes.NewRegistry()
	engine, err := render.NewEngine(registry, &cfg.Render, redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create render engine")
	}

	gateway := device.NewGateway(store, &cfg.Display, integration.NewPublisher(nc))

	// Start REST API server
	apiServer := api.NewRESTServer(cfg, store, gateway, engine)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		log.Info().Str("addr", addr).Msg("Starting REST API server")
		if err := apiServer.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("REST API server failed")
		}
	}()

	// Wait for signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")

	// Shutdown API server
	if err := apiServer.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown API server gracefully")
	}

	wg.Wait()

	log.Info().Msg("Display server stopped")
}
