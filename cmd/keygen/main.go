package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/blinklabs-io/bursa"

	"github.com/punchamoorthee/payrolld/internal/config"
	"github.com/punchamoorthee/payrolld/internal/identity"
)

// Derives the payroll signing identity from a mnemonic recovery phrase
// (CIP-1852 account 0) and prints the env lines the API server expects.
// The mnemonic comes from SEED_PHRASE, or a fresh one is generated. The
// signing keys are re-encoded into the bare byte-string form the server
// loads, and the address is derived the same way the server derives it,
// so the printed lines round-trip into a working identity.

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var network string
	flag.StringVar(&network, "network", "preprod", "Cardano network: preprod | preview | mainnet")
	flag.Parse()

	net := config.Network(network)
	if !net.Valid() {
		logger.Error("unknown network", "network", network)
		os.Exit(1)
	}

	mnemonic := os.Getenv("SEED_PHRASE")
	if mnemonic == "" {
		var err error
		mnemonic, err = bursa.GenerateMnemonic()
		if err != nil {
			logger.Error("failed to generate mnemonic", "error", err)
			os.Exit(1)
		}
		logger.Info("SEED_PHRASE not set, generated a new recovery phrase")
	}

	wallet, err := bursa.NewWallet(mnemonic, bursa.WithNetwork(network))
	if err != nil {
		logger.Error("failed to derive wallet", "error", err)
		os.Exit(1)
	}

	paymentCbor, err := identity.NormalizeKeyCbor(wallet.PaymentSKey.CborHex)
	if err != nil {
		logger.Error("failed to normalize payment key", "error", err)
		os.Exit(1)
	}
	stakeCbor, err := identity.NormalizeKeyCbor(wallet.StakeSKey.CborHex)
	if err != nil {
		logger.Error("failed to normalize stake key", "error", err)
		os.Exit(1)
	}
	id, err := identity.New(paymentCbor, stakeCbor, net.ID())
	if err != nil {
		logger.Error("failed to derive identity", "error", err)
		os.Exit(1)
	}

	fmt.Println("# Save these in .env -- the recovery phrase is only shown here")
	fmt.Printf("SEED_PHRASE=%q\n", mnemonic)
	fmt.Printf("PAYMENT_SKEY_CBOR=%s\n", paymentCbor)
	fmt.Printf("STAKE_SKEY_CBOR=%s\n", stakeCbor)
	fmt.Printf("SENDER_ADDRESS=%s\n", id.Address.String())
	fmt.Printf("CARDANO_NETWORK=%s\n", network)
}
