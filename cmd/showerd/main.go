// Command showerd runs the shower tracker API server and its background
// monitors.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/example/shower-tracker/internal/application"
	"github.com/example/shower-tracker/internal/config"
	"github.com/example/shower-tracker/internal/events"
	httptransport "github.com/example/shower-tracker/internal/http"
	"github.com/example/shower-tracker/internal/logging"
	"github.com/example/shower-tracker/internal/notify"
	"github.com/example/shower-tracker/internal/store"
	"github.com/example/shower-tracker/internal/store/memory"
	"github.com/example/shower-tracker/internal/store/postgres"
	"github.com/example/shower-tracker/internal/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New("showerd", cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("showerd exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	st, ping, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()
	logger.Info().Str("driver", cfg.StoreDriver).Msg("store ready")

	hub := events.NewHub()
	defer hub.Close()

	var notifier notify.Notifier = notify.Noop{}
	if cfg.PushGatewayURL != "" {
		notifier = notify.NewWebhook(cfg.PushGatewayURL, st.Subscriptions(), logger)
		logger.Info().Str("gateway", cfg.PushGatewayURL).Msg("push notifications enabled")
	}

	now := time.Now
	statusService := application.NewStatusService(st, notifier, hub, cfg.MinShowerDuration, now)
	slotService := application.NewSlotService(st, hub, now)
	logService := application.NewLogService(st, cfg.LogRetention, now)
	analyticsService := application.NewAnalyticsService(st, now)
	sweeper := application.NewSweeper(st, hub, cfg.SweepInterval, cfg.LogRetention, cfg.HistoryRetention, now, logger)

	monitors := []interface{ Run(context.Context) }{
		application.NewAutoReleaseMonitor(statusService, cfg.AutoReleaseAfter, cfg.PollInterval, logger),
		application.NewAutoLogMonitor(st, hub, cfg.PollInterval, now, logger),
		application.NewAlertMonitor(st, notifier, cfg.PollInterval, cfg.AlertTolerance, now, logger),
		sweeper,
	}
	var wg sync.WaitGroup
	for _, monitor := range monitors {
		wg.Add(1)
		go func(m interface{ Run(context.Context) }) {
			defer wg.Done()
			m.Run(ctx)
		}(monitor)
	}

	resp := httptransport.NewResponder(logger)
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Status:        httptransport.NewStatusHandler(statusService, logService, resp),
		Slots:         httptransport.NewSlotHandler(slotService, resp),
		Logs:          httptransport.NewLogHandler(logService, analyticsService, resp),
		Events:        httptransport.NewEventsHandler(hub, resp),
		Subscriptions: httptransport.NewSubscriptionHandler(st.Subscriptions(), now, resp),
		Admin:         httptransport.NewAdminHandler(sweeper, ping, resp),
		Middleware: []mux.MiddlewareFunc{
			httptransport.RequestLogger(logger),
			httptransport.RequireAPIKey(cfg.APIKeys, logger),
		},
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	logger.Info().Str("addr", server.Addr).Msg("shower tracker API listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	wg.Wait()
	return nil
}

// openStore builds the configured backend. The returned ping func is nil
// for the memory store, which has no connection to check.
func openStore(ctx context.Context, cfg config.Config) (store.Store, func(context.Context) error, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return memory.New(), nil, func() {}, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		st, err := sqlite.New(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return st, pingFunc(db), func() { db.Close() }, nil
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		st, err := postgres.New(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return st, pingFunc(db), func() { db.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func pingFunc(db *sql.DB) func(context.Context) error {
	return func(ctx context.Context) error { return db.PingContext(ctx) }
}
