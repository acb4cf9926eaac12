package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/punchamoorthee/payrolld/internal/explorer"
)

const reconcileBatchSize = 50

// Reconciler confirms pending payroll records in the background by
// polling the explorer, keeping confirmation entirely out of the
// submission path.
type Reconciler struct {
	ledger   Ledger
	explorer Explorer
	interval time.Duration
	logger   *slog.Logger
}

func NewReconciler(ledger Ledger, exp Explorer, interval time.Duration, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Reconciler{
		ledger:   ledger,
		explorer: exp,
		interval: interval,
		logger:   logger.With("component", "reconciler"),
	}
}

// Run polls until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

func (r *Reconciler) reconcile(ctx context.Context) {
	hashes, err := r.ledger.ListPending(ctx, reconcileBatchSize)
	if err != nil {
		r.logger.Error("failed to list pending transactions", "error", err)
		return
	}
	for _, hash := range hashes {
		info, err := r.explorer.Transaction(ctx, hash)
		if err != nil {
			if errors.Is(err, explorer.ErrNotFound) {
				// Not indexed yet, try again next tick
				continue
			}
			r.logger.Warn("confirmation check failed", "tx_hash", hash, "error", err)
			continue
		}
		if err := r.ledger.MarkConfirmed(ctx, hash, info.BlockHash, info.BlockHeight, info.BlockTime); err != nil {
			r.logger.Error("failed to mark confirmed", "tx_hash", hash, "error", err)
			continue
		}
		r.logger.Info("transaction confirmed",
			"tx_hash", hash,
			"block_hash", info.BlockHash,
			"block_height", info.BlockHeight,
		)
	}
}
