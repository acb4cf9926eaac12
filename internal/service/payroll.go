package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/punchamoorthee/payrolld/internal/chain"
	"github.com/punchamoorthee/payrolld/internal/domain"
	"github.com/punchamoorthee/payrolld/internal/explorer"
	"github.com/punchamoorthee/payrolld/internal/identity"
	"github.com/punchamoorthee/payrolld/internal/store"
)

// Explorer is the block-explorer collaborator: UTXO listing and
// transaction lookups.
type Explorer interface {
	AddressUTXOs(ctx context.Context, address string) ([]domain.SpendableOutput, error)
	Transaction(ctx context.Context, hash string) (domain.TxInfo, error)
}

// TxBuilder is the transaction-building collaborator. It owns input
// selection bounds, fee calculation, signing and network submission.
type TxBuilder interface {
	BuildSignSubmit(
		ctx context.Context,
		sender string,
		inputs []chain.Input,
		payments []chain.Payment,
		id *identity.Identity,
	) (string, error)
}

// Ledger is the persistence collaborator recording submitted payrolls.
type Ledger interface {
	RecordPayroll(ctx context.Context, rec domain.PayrollRecord) error
	History(ctx context.Context) ([]domain.PayrollRecord, error)
	Lookup(ctx context.Context, txHash string) (*domain.PayrollRecord, error)
	ListPending(ctx context.Context, limit int) ([]string, error)
	MarkConfirmed(ctx context.Context, txHash, blockHash string, blockHeight int64, confirmedAt time.Time) error
}

// PayrollService orchestrates payroll submission and status lookups.
type PayrollService struct {
	id          *identity.Identity
	explorer    Explorer
	builder     TxBuilder
	ledger      Ledger
	explorerURL string
	logger      *slog.Logger
}

func NewPayrollService(
	id *identity.Identity,
	exp Explorer,
	builder TxBuilder,
	ledger Ledger,
	explorerURL string,
	logger *slog.Logger,
) *PayrollService {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &PayrollService{
		id:          id,
		explorer:    exp,
		builder:     builder,
		ledger:      ledger,
		explorerURL: strings.TrimRight(explorerURL, "/"),
		logger:      logger.With("component", "payroll"),
	}
}

// Submit validates the payroll request, fetches and translates the
// sender's UTXOs, drives the builder through build/sign/submit, and
// records the result. The address-mismatch check runs before any
// network call. The response never waits on confirmation; the
// reconciler picks that up later.
func (s *PayrollService) Submit(ctx context.Context, req domain.PayrollRequest) (*domain.SubmitResult, error) {
	sender := strings.TrimSpace(req.SenderAddress)
	senderAddr, err := lcommon.NewAddress(sender)
	if err != nil {
		return nil, &InvalidRequestError{
			Reason: fmt.Sprintf("unparsable sender address %q: %v", sender, err),
		}
	}
	if len(req.Payroll) == 0 {
		return nil, &InvalidRequestError{Reason: "payroll has no recipients"}
	}

	derived := s.id.Address.String()
	if senderAddr.String() != derived {
		return nil, &AddressMismatchError{
			Derived:   derived,
			Requested: senderAddr.String(),
		}
	}

	payments := make([]chain.Payment, 0, len(req.Payroll))
	var total int64
	for _, item := range req.Payroll {
		if item.Lovelace < 0 {
			return nil, &InvalidRequestError{
				Reason: fmt.Sprintf("negative amount %d for %s", item.Lovelace, item.Address),
			}
		}
		if _, err := lcommon.NewAddress(item.Address); err != nil {
			return nil, &InvalidRequestError{
				Reason: fmt.Sprintf("unparsable recipient address %q: %v", item.Address, err),
			}
		}
		payments = append(payments, chain.Payment{
			Address:  item.Address,
			Lovelace: item.Lovelace,
		})
		total += item.Lovelace
	}

	utxos, err := s.explorer.AddressUTXOs(ctx, derived)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	if len(utxos) == 0 {
		return nil, &NoFundsError{Address: derived}
	}
	s.logger.Info("fetched UTXOs", "address", derived, "count", len(utxos))

	inputs := make([]chain.Input, 0, len(utxos))
	for _, u := range utxos {
		in, err := translateUTXO(u)
		if err != nil {
			return nil, &UpstreamError{Err: err}
		}
		inputs = append(inputs, in)
	}

	txHash, err := s.builder.BuildSignSubmit(ctx, derived, inputs, payments, s.id)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	rec := domain.PayrollRecord{
		TxHash:         txHash,
		SenderAddress:  derived,
		TotalAmount:    total,
		RecipientCount: len(req.Payroll),
		Status:         domain.StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	for _, item := range req.Payroll {
		rec.Outputs = append(rec.Outputs, domain.TransactionOutputRecord{
			TxHash:          txHash,
			ReceiverAddress: item.Address,
			Amount:          item.Lovelace,
		})
	}
	if err := s.ledger.RecordPayroll(ctx, rec); err != nil {
		// The chain already accepted the transaction; the local record
		// is an index, not the source of truth. Log and move on.
		s.logger.Error("failed to record payroll", "tx_hash", txHash, "error", err)
	}

	s.logger.Info("payroll submitted",
		"tx_hash", txHash,
		"recipients", len(req.Payroll),
		"total_lovelace", total,
	)
	return &domain.SubmitResult{
		Success:     true,
		TxHash:      txHash,
		ExplorerURL: s.explorerURL + "/transaction/" + txHash,
	}, nil
}

// History returns the recorded payroll transactions, newest first.
func (s *PayrollService) History(ctx context.Context) ([]domain.PayrollRecord, error) {
	return s.ledger.History(ctx)
}

// Status answers a transaction status query from the local ledger first,
// falling back to the explorer for transactions this instance did not
// submit. Unknown in both places is ErrTxNotFound.
func (s *PayrollService) Status(ctx context.Context, txHash string) (*domain.TransactionStatus, error) {
	rec, err := s.ledger.Lookup(ctx, txHash)
	if err == nil {
		status := &domain.TransactionStatus{
			TxHash:      rec.TxHash,
			Source:      "local",
			Confirmed:   rec.Status == domain.StatusConfirmed,
			BlockHash:   rec.BlockHash,
			BlockHeight: rec.BlockHeight,
			BlockTime:   rec.ConfirmedAt,
			TotalAmount: rec.TotalAmount,
		}
		return status, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	info, err := s.explorer.Transaction(ctx, txHash)
	if err != nil {
		if errors.Is(err, explorer.ErrNotFound) {
			return nil, ErrTxNotFound
		}
		return nil, &UpstreamError{Err: err}
	}
	blockTime := info.BlockTime
	return &domain.TransactionStatus{
		TxHash:      txHash,
		Source:      "upstream",
		Confirmed:   true,
		BlockHash:   &info.BlockHash,
		BlockHeight: &info.BlockHeight,
		BlockTime:   &blockTime,
	}, nil
}

// translateUTXO converts one explorer UTXO into the builder's input
// shape, taking the leading amount entry's quantity as the lovelace
// value. Pure function; multi-asset entries beyond the first are
// ignored.
func translateUTXO(out domain.SpendableOutput) (chain.Input, error) {
	if len(out.Amount) == 0 {
		return chain.Input{}, fmt.Errorf("UTXO %s#%d has no amount entries", out.TxHash, out.OutputIndex)
	}
	lovelace, err := strconv.ParseInt(out.Amount[0].Quantity, 10, 64)
	if err != nil {
		return chain.Input{}, fmt.Errorf(
			"UTXO %s#%d has unparsable quantity %q: %w",
			out.TxHash, out.OutputIndex, out.Amount[0].Quantity, err,
		)
	}
	return chain.Input{
		TxHash:   out.TxHash,
		Index:    out.OutputIndex,
		Lovelace: lovelace,
	}, nil
}
