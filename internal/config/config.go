package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Network selects which Cardano network the service talks to.
type Network string

const (
	NetworkPreprod Network = "preprod"
	NetworkPreview Network = "preview"
	NetworkMainnet Network = "mainnet"
)

// Valid returns true if the network is one we know how to reach.
func (n Network) Valid() bool {
	switch n {
	case NetworkPreprod, NetworkPreview, NetworkMainnet:
		return true
	default:
		return false
	}
}

// ID returns the Cardano address network tag (0 for test networks, 1 for
// mainnet).
func (n Network) ID() uint8 {
	if n == NetworkMainnet {
		return 1
	}
	return 0
}

// ExplorerBase returns the default cardanoscan base URL for the network.
func (n Network) ExplorerBase() string {
	switch n {
	case NetworkMainnet:
		return "https://cardanoscan.io"
	case NetworkPreview:
		return "https://preview.cardanoscan.io"
	default:
		return "https://preprod.cardanoscan.io"
	}
}

type Config struct {
	DBSource          string        `envconfig:"DB_SOURCE" required:"true"`
	Port              string        `envconfig:"SERVER_PORT" default:"8080"`
	BlockfrostProject string        `envconfig:"BLOCKFROST_PROJECT_ID" required:"true"`
	CardanoNetwork    Network       `envconfig:"CARDANO_NETWORK" default:"preprod"`
	PaymentSKeyCbor   string        `envconfig:"PAYMENT_SKEY_CBOR" required:"true"`
	StakeSKeyCbor     string        `envconfig:"STAKE_SKEY_CBOR" required:"true"`
	ExplorerURL       string        `envconfig:"EXPLORER_URL"`
	ConfirmInterval   time.Duration `envconfig:"CONFIRM_INTERVAL" default:"30s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if !cfg.CardanoNetwork.Valid() {
		return nil, fmt.Errorf(
			"unknown CARDANO_NETWORK %q (expected preprod, preview, or mainnet)",
			cfg.CardanoNetwork,
		)
	}
	if cfg.ExplorerURL == "" {
		cfg.ExplorerURL = cfg.CardanoNetwork.ExplorerBase()
	}
	return &cfg, nil
}
