package main

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/layer-3/walletauth/adapters/directory"
	"github.com/layer-3/walletauth/adapters/events"
	"github.com/layer-3/walletauth/adapters/store"
	"github.com/layer-3/walletauth/adapters/tokenizer"
	"github.com/layer-3/walletauth/internal/config"
	"github.com/layer-3/walletauth/internal/eth"
	"github.com/layer-3/walletauth/internal/logger"
	"github.com/layer-3/walletauth/ports"
	"github.com/layer-3/walletauth/service"
	transport "github.com/layer-3/walletauth/transport/http"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		logger.New(0).Fatal("Failed to load config", "error", err)
	}

	log := logger.New(cfg.LogLevel)

	signer, err := eth.LoadSigner(cfg.Auth.SigningKey)
	if err != nil {
		log.Fatal("Failed to load signing key", "error", err)
	}
	log.Info("Server identity loaded", "address", signer.Address().Hex())

	secret := []byte(cfg.Auth.TokenSecret)
	if len(secret) == 0 {
		secret, err = tokenizer.DeriveSecret(signer.PrivateKeyBytes())
		if err != nil {
			log.Fatal("Failed to derive token secret", "error", err)
		}
	}

	clock := clockwork.NewRealClock()
	tok, err := tokenizer.NewJWTTokenizer(secret, cfg.Auth.HomeDomain, clock)
	if err != nil {
		log.Fatal("Failed to create tokenizer", "error", err)
	}

	var redisClient *redis.Client
	if cfg.Directory.Driver == "redis" || cfg.Events.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal("Failed to parse Redis URL", "error", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	dir, closeDir, err := openDirectory(ctx, cfg, redisClient)
	if err != nil {
		log.Fatal("Failed to open user directory", "driver", cfg.Directory.Driver, "error", err)
	}
	defer closeDir()

	var eventPub ports.EventPublisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			log.Fatal("Failed to create Redis publisher", "error", err)
		}
		defer publisher.Close()
		eventPub = events.NewWatermillPublisher(publisher, cfg.Events.Topic, clock)
	}

	challenges := store.NewMemoryStore(clock)
	reaper := store.NewReaper(challenges, clock, cfg.Auth.ReapInterval, log)
	go reaper.Run(ctx)

	authService, err := service.NewAuthService(challenges, dir, tok, eventPub, log, service.Options{
		Signer: signer,
		Domain: eth.EIP712Domain{
			Name:    "walletauth",
			Version: "1",
			ChainID: big.NewInt(cfg.Auth.ChainID),
		},
		HomeDomain:   cfg.Auth.HomeDomain,
		ChallengeTTL: cfg.Auth.ChallengeTTL,
		SessionTTL:   cfg.Auth.SessionTTL,
		CallTimeout:  cfg.Auth.CallTimeout,
		Clock:        clock,
	})
	if err != nil {
		log.Fatal("Failed to create auth service", "error", err)
	}

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: transport.SetupRouter(authService, log),
	}

	go func() {
		log.Info("Starting HTTP server", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}

func openDirectory(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (ports.UserDirectory, func(), error) {
	switch cfg.Directory.Driver {
	case "postgres":
		db, err := directory.OpenPostgres(ctx, cfg.Directory.DSN)
		if err != nil {
			return nil, nil, err
		}
		return directory.NewPostgresDirectory(db), func() { _ = db.Close() }, nil
	case "redis":
		return directory.NewRedisDirectory(redisClient), func() {}, nil
	default:
		return directory.NewMemoryDirectory(), func() {}, nil
	}
}

