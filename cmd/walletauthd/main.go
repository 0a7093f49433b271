package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"flag"
	"fmt"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/goalguru/walletauth/adapters/events"
	"github.com/goalguru/walletauth/adapters/guard"
	"github.com/goalguru/walletauth/adapters/market"
	"github.com/goalguru/walletauth/adapters/registrar"
	"github.com/goalguru/walletauth/adapters/store"
	"github.com/goalguru/walletauth/adapters/tokenizer"
	"github.com/goalguru/walletauth/adapters/wallet"
	"github.com/goalguru/walletauth/config"
	"github.com/goalguru/walletauth/logging"
	"github.com/goalguru/walletauth/ports"
	"github.com/goalguru/walletauth/service"
	transport "github.com/goalguru/walletauth/transport/http"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Session registrar: Postgres when configured, in-memory otherwise.
	var reg ports.Registrar
	if cfg.Postgres.Enabled {
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
		if err != nil {
			logger.Fatal("connect postgres", zap.Error(err))
		}
		defer pool.Close()
		reg = registrar.NewPostgresRegistrar(pool)
	} else {
		logger.Warn("postgres disabled, using in-memory registrar")
		reg = registrar.NewMemoryRegistrar()
	}

	// Replay guard and event publisher share the Redis connection.
	var (
		replayGuard ports.ReplayGuard
		eventPub    ports.EventPublisher
	)
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("parse redis URL", zap.Error(err))
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		replayGuard = guard.NewRedisGuard(redisClient)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			logger.Fatal("create redis publisher", zap.Error(err))
		}
		eventPub = events.NewWatermillPublisher(publisher)
	} else {
		replayGuard = guard.NewMemoryGuard()
	}

	// Dev wallet: an in-process signer standing in for the user's
	// wallet application.
	devWallet, err := wallet.NewLocalWallet(cfg.Wallet.PrivateKey)
	if err != nil {
		logger.Fatal("create wallet", zap.Error(err))
	}

	sessionStore := store.NewFileStore(cfg.Session.FilePath, logger)

	orc := service.New(service.Config{
		Domain:     cfg.App.Domain,
		URI:        cfg.App.URI,
		UserAgent:  cfg.App.Name,
		SessionTTL: cfg.Session.Duration,
		ErrorTTL:   cfg.Session.ErrorDisplay,
	}, devWallet, sessionStore, reg, replayGuard, eventPub, logger)

	go orc.Run(ctx)
	devWallet.Connect()

	// Token signing key for the API surface (load from secure storage
	// in production).
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		logger.Fatal("generate signing key", zap.Error(err))
	}
	tok := tokenizer.NewJWTTokenizer(signKey)

	var (
		markets ports.Market
		catalog *market.Catalog
	)
	if cfg.Market.Enabled {
		ethMarket, err := market.NewEthMarket(ctx, cfg.Market.RPCURL, cfg.Market.ContractAddress, nil)
		if err != nil {
			logger.Fatal("connect market contract", zap.Error(err))
		}
		defer ethMarket.Close()
		markets = ethMarket

		if cfg.Market.CatalogPath != "" {
			catalog, err = market.LoadCatalog(cfg.Market.CatalogPath)
			if err != nil {
				logger.Fatal("load market catalog", zap.Error(err))
			}
		}
	}

	router := transport.SetupRouter(orc, tok, markets, catalog)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	logger.Info("starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
