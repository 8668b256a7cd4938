package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appaccounting "github.com/ledgerbook/backend/internal/application/accounting"
	appbilling "github.com/ledgerbook/backend/internal/application/billing"
	appinventory "github.com/ledgerbook/backend/internal/application/inventory"
	appshared "github.com/ledgerbook/backend/internal/application/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/cache"
	"github.com/ledgerbook/backend/internal/infrastructure/config"
	"github.com/ledgerbook/backend/internal/infrastructure/logger"
	"github.com/ledgerbook/backend/internal/infrastructure/persistence"
	"github.com/ledgerbook/backend/internal/interfaces/http/handler"
	"github.com/ledgerbook/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync(log) }()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	var rateCache appaccounting.RateCache = cache.NoopRateCache{}
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = client.Close() }()
		rateCache = cache.NewRedisRateCache(client, cfg.Redis.RateTTL, log.Named("rate_cache"))
	}

	scope := persistence.NewGormTransactionScope(db.DB)
	var audit appshared.AuditSink = persistence.NewGormAuditSink(db.DB, log.Named("audit"))

	posting := appaccounting.NewPostingService(scope, log.Named("posting"))
	system := appaccounting.NewSystemAccountsService(scope, log.Named("system_accounts"))
	currency := appaccounting.NewCurrencyService(scope, rateCache, log.Named("currency"))
	items := appinventory.NewItemService(scope, log.Named("items"))
	moves := appinventory.NewMoveService(scope, audit, log.Named("moves"))
	invoices := appbilling.NewInvoiceService(scope, currency, audit, log.Named("invoices"))
	bills := appbilling.NewBillService(scope, currency, audit, log.Named("bills"))
	payments := appbilling.NewPaymentService(scope, audit, log.Named("payments"))
	expenses := appbilling.NewExpenseService(scope, currency, audit, log.Named("expenses"))
	opening := appbilling.NewOpeningService(scope, audit, log.Named("opening"))

	engine := router.New(cfg.App.Env, log.Named("http"), router.Handlers{
		Ledger:    handler.NewLedgerHandler(posting, system, currency),
		Inventory: handler.NewInventoryHandler(items, moves),
		Invoices:  handler.NewInvoiceHandler(invoices),
		Bills:     handler.NewBillHandler(bills),
		Payments:  handler.NewPaymentHandler(payments),
		Expenses:  handler.NewExpenseHandler(expenses),
		Opening:   handler.NewOpeningHandler(opening),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}
