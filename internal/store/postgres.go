package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/punchamoorthee/payrolld/internal/domain"
)

// ErrNotFound is returned by Lookup for an unknown transaction hash.
var ErrNotFound = errors.New("transaction not recorded")

const schema = `
CREATE TABLE IF NOT EXISTS payroll_transactions (
	tx_hash         TEXT PRIMARY KEY,
	sender_address  TEXT NOT NULL,
	total_amount    BIGINT NOT NULL,
	recipient_count INT NOT NULL,
	block_hash      TEXT,
	block_height    BIGINT,
	status          TEXT NOT NULL DEFAULT 'pending',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	confirmed_at    TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS transaction_outputs (
	id               BIGSERIAL PRIMARY KEY,
	tx_hash          TEXT NOT NULL REFERENCES payroll_transactions(tx_hash) ON DELETE CASCADE,
	receiver_address TEXT NOT NULL,
	amount           BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transaction_outputs_tx_hash ON transaction_outputs(tx_hash);
`

type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func New(connString string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return &Store{
		db:     pool,
		logger: logger.With("component", "store"),
	}, nil
}

func (s *Store) Close() {
	s.db.Close()
}

// EnsureSchema creates the payroll tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// RecordPayroll inserts the transaction record and its output rows in a
// single database transaction. A hash that is already recorded is a
// no-op: the chain is the source of truth, the store only indexes it.
func (s *Store) RecordPayroll(ctx context.Context, rec domain.PayrollRecord) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO payroll_transactions
			(tx_hash, sender_address, total_amount, recipient_count, block_hash, block_height, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.TxHash, rec.SenderAddress, rec.TotalAmount, rec.RecipientCount,
		rec.BlockHash, rec.BlockHeight, rec.Status,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			s.logger.Warn("payroll already recorded", "tx_hash", rec.TxHash)
			return nil
		}
		return fmt.Errorf("payroll insert failed: %w", err)
	}

	rows := make([][]any, 0, len(rec.Outputs))
	for _, out := range rec.Outputs {
		rows = append(rows, []any{rec.TxHash, out.ReceiverAddress, out.Amount})
	}
	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"transaction_outputs"},
		[]string{"tx_hash", "receiver_address", "amount"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("output insert failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx commit failed: %w", err)
	}
	return nil
}

// History returns all recorded payroll transactions with their outputs,
// newest first.
func (s *Store) History(ctx context.Context) ([]domain.PayrollRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT tx_hash, sender_address, total_amount, recipient_count,
			block_hash, block_height, status, created_at, confirmed_at
		 FROM payroll_transactions ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.PayrollRecord
	for rows.Next() {
		var rec domain.PayrollRecord
		if err := rows.Scan(
			&rec.TxHash, &rec.SenderAddress, &rec.TotalAmount, &rec.RecipientCount,
			&rec.BlockHash, &rec.BlockHeight, &rec.Status, &rec.CreatedAt, &rec.ConfirmedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range records {
		outputs, err := s.outputs(ctx, records[i].TxHash)
		if err != nil {
			return nil, err
		}
		records[i].Outputs = outputs
	}
	return records, nil
}

// Lookup fetches a single payroll record with its outputs, or
// ErrNotFound.
func (s *Store) Lookup(ctx context.Context, txHash string) (*domain.PayrollRecord, error) {
	var rec domain.PayrollRecord
	err := s.db.QueryRow(ctx,
		`SELECT tx_hash, sender_address, total_amount, recipient_count,
			block_hash, block_height, status, created_at, confirmed_at
		 FROM payroll_transactions WHERE tx_hash = $1`,
		txHash,
	).Scan(
		&rec.TxHash, &rec.SenderAddress, &rec.TotalAmount, &rec.RecipientCount,
		&rec.BlockHash, &rec.BlockHeight, &rec.Status, &rec.CreatedAt, &rec.ConfirmedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	outputs, err := s.outputs(ctx, txHash)
	if err != nil {
		return nil, err
	}
	rec.Outputs = outputs
	return &rec, nil
}

// ListPending returns hashes of transactions not yet marked confirmed,
// oldest first, for the confirmation reconciler.
func (s *Store) ListPending(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT tx_hash FROM payroll_transactions
		 WHERE status = $1 ORDER BY created_at ASC LIMIT $2`,
		domain.StatusPending, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}

// MarkConfirmed records block placement for a previously pending
// transaction.
func (s *Store) MarkConfirmed(
	ctx context.Context,
	txHash string,
	blockHash string,
	blockHeight int64,
	confirmedAt time.Time,
) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE payroll_transactions
		 SET status = $1, block_hash = $2, block_height = $3, confirmed_at = $4
		 WHERE tx_hash = $5`,
		domain.StatusConfirmed, blockHash, blockHeight, confirmedAt, txHash,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) outputs(ctx context.Context, txHash string) ([]domain.TransactionOutputRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT tx_hash, receiver_address, amount
		 FROM transaction_outputs WHERE tx_hash = $1 ORDER BY id ASC`,
		txHash,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outputs []domain.TransactionOutputRecord
	for rows.Next() {
		var out domain.TransactionOutputRecord
		if err := rows.Scan(&out.TxHash, &out.ReceiverAddress, &out.Amount); err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, rows.Err()
}
