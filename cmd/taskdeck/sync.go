package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/logging"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a one-off sync across every connected integration.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync()
	},
}

func runSync() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.Bootstrap("sync")
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	orch, err := buildOrchestrator(cfg, st)
	if err != nil {
		return err
	}

	results := orch.SyncAll(ctx)
	if ctx.Err() != nil {
		return &exitError{code: 130, err: ctx.Err(), silent: true}
	}

	failed := 0
	for _, r := range results {
		if r.Success {
			logger.Info("sync ok", "provider", r.Provider, "items", r.ItemsSynced)
			continue
		}
		failed++
		logger.Error("sync failed", "provider", r.Provider, "errors", r.Errors)
	}
	if failed > 0 {
		return &exitError{code: 1, err: fmt.Errorf("%d of %d syncs failed", failed, len(results)), silent: false}
	}
	return nil
}
