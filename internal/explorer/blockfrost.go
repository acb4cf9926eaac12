package explorer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	bfgo "github.com/blockfrost/blockfrost-go"
	"github.com/punchamoorthee/payrolld/internal/config"
	"github.com/punchamoorthee/payrolld/internal/domain"
)

// ErrNotFound is returned when the explorer has no record of the
// requested transaction. A freshly submitted transaction stays in this
// state until it is indexed.
var ErrNotFound = errors.New("transaction not found upstream")

// Client wraps the Blockfrost API for the two queries this service
// needs: spendable outputs for an address and transaction details by
// hash.
type Client struct {
	api    bfgo.APIClient
	logger *slog.Logger
}

func New(projectID string, network config.Network, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var server string
	switch network {
	case config.NetworkMainnet:
		server = bfgo.CardanoMainNet
	case config.NetworkPreview:
		server = bfgo.CardanoPreview
	default:
		server = bfgo.CardanoPreProd
	}
	api := bfgo.NewAPIClient(bfgo.APIClientOptions{
		ProjectID: projectID,
		Server:    server,
	})
	return &Client{
		api:    api,
		logger: logger.With("component", "explorer"),
	}
}

// AddressUTXOs lists the spendable outputs sitting at the given address.
// An address with no UTXOs yields an empty slice, not an error.
func (c *Client) AddressUTXOs(ctx context.Context, address string) ([]domain.SpendableOutput, error) {
	utxos, err := c.api.AddressUTXOs(ctx, address, bfgo.APIQueryParams{})
	if err != nil {
		if isNotFound(err) {
			// Blockfrost reports a never-used address as 404
			return nil, nil
		}
		return nil, fmt.Errorf("blockfrost address UTXOs: %w", err)
	}
	out := make([]domain.SpendableOutput, 0, len(utxos))
	for _, u := range utxos {
		amounts := make([]domain.AssetAmount, 0, len(u.Amount))
		for _, a := range u.Amount {
			amounts = append(amounts, domain.AssetAmount{
				Unit:     a.Unit,
				Quantity: a.Quantity,
			})
		}
		out = append(out, domain.SpendableOutput{
			TxHash:      u.TxHash,
			OutputIndex: u.OutputIndex,
			Amount:      amounts,
		})
	}
	c.logger.Debug("fetched UTXOs", "address", address, "count", len(out))
	return out, nil
}

// Transaction fetches block placement details for a transaction hash.
// Returns ErrNotFound if the explorer has not indexed the hash.
func (c *Client) Transaction(ctx context.Context, hash string) (domain.TxInfo, error) {
	tx, err := c.api.Transaction(ctx, hash)
	if err != nil {
		if isNotFound(err) {
			return domain.TxInfo{}, ErrNotFound
		}
		return domain.TxInfo{}, fmt.Errorf("blockfrost transaction: %w", err)
	}
	return domain.TxInfo{
		Hash:        tx.Hash,
		BlockHash:   tx.Block,
		BlockHeight: int64(tx.BlockHeight),
		BlockTime:   time.Unix(int64(tx.BlockTime), 0).UTC(),
	}, nil
}

func isNotFound(err error) bool {
	var apiErr *bfgo.APIError
	if errors.As(err, &apiErr) {
		if _, ok := apiErr.Response.(bfgo.NotFound); ok {
			return true
		}
	}
	return false
}
