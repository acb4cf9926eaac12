package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/punchamoorthee/payrolld/internal/api"
	"github.com/punchamoorthee/payrolld/internal/chain"
	"github.com/punchamoorthee/payrolld/internal/config"
	"github.com/punchamoorthee/payrolld/internal/explorer"
	"github.com/punchamoorthee/payrolld/internal/identity"
	"github.com/punchamoorthee/payrolld/internal/service"
	"github.com/punchamoorthee/payrolld/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	id, err := identity.New(cfg.PaymentSKeyCbor, cfg.StakeSKeyCbor, cfg.CardanoNetwork.ID())
	if err != nil {
		logger.Error("failed to load signing keys", "error", err)
		os.Exit(1)
	}
	logger.Info("loaded signing keys",
		"payment_key_hash", id.PaymentKeyHash(),
		"stake_key_hash", id.StakeKeyHash(),
		"address", id.Address.String(),
		"network", cfg.CardanoNetwork,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ledgerStore, err := store.New(cfg.DBSource, logger)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer ledgerStore.Close()
	if err := ledgerStore.EnsureSchema(ctx); err != nil {
		logger.Error("unable to prepare schema", "error", err)
		os.Exit(1)
	}

	exp := explorer.New(cfg.BlockfrostProject, cfg.CardanoNetwork, logger)
	builder, err := chain.NewBuilder(cfg.BlockfrostProject, cfg.CardanoNetwork, logger)
	if err != nil {
		logger.Error("unable to create transaction builder", "error", err)
		os.Exit(1)
	}

	payroll := service.NewPayrollService(id, exp, builder, ledgerStore, cfg.ExplorerURL, logger)
	reconciler := service.NewReconciler(ledgerStore, exp, cfg.ConfirmInterval, logger)
	go reconciler.Run(ctx)

	handler := api.NewHandler(payroll)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
