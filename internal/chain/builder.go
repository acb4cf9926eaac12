package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	"github.com/Salvionied/apollo"
	"github.com/Salvionied/apollo/constants"
	serAddress "github.com/Salvionied/apollo/serialization/Address"
	"github.com/Salvionied/apollo/serialization/Key"
	"github.com/Salvionied/apollo/serialization/TransactionInput"
	"github.com/Salvionied/apollo/serialization/TransactionOutput"
	"github.com/Salvionied/apollo/serialization/UTxO"
	"github.com/Salvionied/apollo/serialization/Value"
	"github.com/Salvionied/apollo/txBuilding/Backend/BlockFrostChainContext"
	"github.com/punchamoorthee/payrolld/internal/config"
	"github.com/punchamoorthee/payrolld/internal/identity"
)

// Input references one spendable output owned by the sender, already
// reduced to its lovelace value.
type Input struct {
	TxHash   string
	Index    int
	Lovelace int64
}

// Payment is one payroll output to create.
type Payment struct {
	Address  string
	Lovelace int64
}

// Builder drives the apollo transaction builder: input assembly, fee
// calculation, signing and submission are all delegated to it and its
// Blockfrost chain context.
type Builder struct {
	cc      BlockFrostChainContext.BlockFrostChainContext
	network constants.Network
	logger  *slog.Logger
}

func NewBuilder(projectID string, network config.Network, logger *slog.Logger) (*Builder, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cc, err := apollo.NewBlockfrostBackend(projectID, toApolloNetwork(network))
	if err != nil {
		return nil, fmt.Errorf("blockfrost chain context: %w", err)
	}
	return &Builder{
		cc:      cc,
		network: toApolloNetwork(network),
		logger:  logger.With("component", "chain"),
	}, nil
}

// BuildSignSubmit assembles a transaction spending the given inputs and
// creating one output per payment, signs it with the identity's payment
// and stake keys, designates the sender as change address, and submits
// it. Returns the transaction hash as a 64-char hex string.
func (b *Builder) BuildSignSubmit(
	ctx context.Context,
	sender string,
	inputs []Input,
	payments []Payment,
	id *identity.Identity,
) (string, error) {
	senderAddr, err := serAddress.DecodeAddress(sender)
	if err != nil {
		return "", fmt.Errorf("decode sender address: %w", err)
	}

	utxos := make([]UTxO.UTxO, 0, len(inputs))
	for _, in := range inputs {
		txID, err := hex.DecodeString(in.TxHash)
		if err != nil {
			return "", fmt.Errorf("decode input tx hash %q: %w", in.TxHash, err)
		}
		utxos = append(utxos, UTxO.UTxO{
			Input: TransactionInput.TransactionInput{
				TransactionId: txID,
				Index:         in.Index,
			},
			Output: TransactionOutput.SimpleTransactionOutput(
				senderAddr,
				Value.PureLovelaceValue(in.Lovelace),
			),
		})
	}

	builder := apollo.New(&b.cc)
	builder = builder.
		AddLoadedUTxOs(utxos...).
		SetChangeAddress(senderAddr)
	for _, p := range payments {
		payAddr, err := serAddress.DecodeAddress(p.Address)
		if err != nil {
			return "", fmt.Errorf("decode payee address %q: %w", p.Address, err)
		}
		builder = builder.PayToAddress(payAddr, int(p.Lovelace))
	}

	builder, err = builder.Complete()
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}
	builder, err = builder.SignWithSkey(
		Key.VerificationKey{Payload: id.PaymentVKey},
		Key.SigningKey{Payload: id.PaymentSKey.Seed()},
	)
	if err != nil {
		return "", fmt.Errorf("sign with payment key: %w", err)
	}
	builder, err = builder.SignWithSkey(
		Key.VerificationKey{Payload: id.StakeVKey},
		Key.SigningKey{Payload: id.StakeSKey.Seed()},
	)
	if err != nil {
		return "", fmt.Errorf("sign with stake key: %w", err)
	}

	txID, err := builder.Submit()
	if err != nil {
		return "", fmt.Errorf("submit transaction: %w", err)
	}
	hash := hex.EncodeToString(txID.Payload)
	b.logger.Info("transaction submitted", "tx_hash", hash, "outputs", len(payments))
	return hash, nil
}

func toApolloNetwork(network config.Network) constants.Network {
	switch network {
	case config.NetworkMainnet:
		return constants.MAINNET
	case config.NetworkPreview:
		return constants.PREVIEW
	default:
		return constants.PREPROD
	}
}
