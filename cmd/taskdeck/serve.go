package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/connectors"
	"github.com/taskdeck/taskdeck/internal/connectors/catalog"
	"github.com/taskdeck/taskdeck/internal/httpapi"
	"github.com/taskdeck/taskdeck/internal/logging"
	"github.com/taskdeck/taskdeck/internal/metrics"
	"github.com/taskdeck/taskdeck/internal/oauthstate"
	"github.com/taskdeck/taskdeck/internal/orchestrator"
	"github.com/taskdeck/taskdeck/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, metrics listener, and background sync loop.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if _, err := logging.Bootstrap("serve"); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	orch, err := buildOrchestrator(cfg, st)
	if err != nil {
		return err
	}

	scheduler := &orchestrator.Scheduler{Syncer: orch, Interval: cfg.SyncInterval}
	go scheduler.Run(ctx)

	_, metricsErrCh := metrics.StartServer(ctx, cfg.MetricsAddr)

	srv := httpapi.NewServer(&httpapi.Handlers{
		Service:       orch,
		WebhookSecret: cfg.WebhookSecret,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.HTTPAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-metricsErrCh:
		return err
	}
}

func buildOrchestrator(cfg config.Config, st store.Store) (*orchestrator.Orchestrator, error) {
	reg := connectors.NewRegistry(st, catalog.Builders(nil))
	states, err := oauthstate.New([]byte(cfg.OAuthStateSecret))
	if err != nil {
		return nil, err
	}
	return orchestrator.New(cfg.OAuth, st, reg, states), nil
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		return store.NewMemory(), func() {}, nil
	case config.StoreDriverBolt:
		b, err := store.NewBolt(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return b, func() { _ = b.Close() }, nil
	case config.StoreDriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		pg, err := store.NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
