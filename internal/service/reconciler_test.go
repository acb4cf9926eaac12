package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/punchamoorthee/payrolld/internal/domain"
	"github.com/punchamoorthee/payrolld/internal/explorer"
)

func TestReconcileMarksIndexedTransactions(t *testing.T) {
	ledger := &mockLedger{pending: []string{testTxHash}}
	exp := &mockExplorer{
		txInfo: domain.TxInfo{
			Hash:        testTxHash,
			BlockHash:   "block123",
			BlockHeight: 42,
			BlockTime:   time.Now().UTC(),
		},
	}
	r := NewReconciler(ledger, exp, time.Minute, nil)

	r.reconcile(context.Background())
	assert.Equal(t, "block123", ledger.confirmed[testTxHash])
}

func TestReconcileLeavesUnindexedPending(t *testing.T) {
	ledger := &mockLedger{pending: []string{testTxHash}}
	exp := &mockExplorer{txErr: explorer.ErrNotFound}
	r := NewReconciler(ledger, exp, time.Minute, nil)

	r.reconcile(context.Background())
	assert.Empty(t, ledger.confirmed)
}

func TestReconcileNothingPending(t *testing.T) {
	ledger := &mockLedger{}
	exp := &mockExplorer{}
	r := NewReconciler(ledger, exp, time.Minute, nil)

	r.reconcile(context.Background())
	assert.Equal(t, 0, exp.txCalls)
}
