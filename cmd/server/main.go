package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/api"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/bank"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/config"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/events"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/events/kafka"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/identity"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/interfaces"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/sink"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/storage/memory"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/storage/postgres"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store interfaces.BankStore
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("open postgres", zap.Error(err))
		}
		defer db.Close()

		pg := postgres.NewStore(db)
		if err := pg.Migrate(ctx); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		store = pg
		logger.Info("using postgres store")
	} else {
		store = memory.NewStore()
		logger.Info("using in-memory store")
	}

	var pub interfaces.EventPublisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers)
		defer kp.Close()
		pub = kp
		logger.Info("publishing events to kafka", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	var idp interfaces.IdentityProvider
	if cfg.JWTSecret != "" {
		idp, err = identity.NewJWTProvider(cfg.JWTSecret)
		if err != nil {
			logger.Fatal("identity", zap.Error(err))
		}
	} else {
		idp = identity.HeaderProvider{}
		logger.Warn("using header identity provider; do not expose this publicly")
	}

	registry := bank.NewAccountRegistry(store, pub, logger)
	ledger := bank.NewWithdrawalLedger(store, registry, sink.NewLogSink(logger), pub, logger)
	handlers := api.NewHandlers(registry, ledger, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.NewRouter(handlers, idp, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", zap.String("addr", cfg.ListenAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server", zap.Error(err))
	}
	logger.Info("server stopped")
}
