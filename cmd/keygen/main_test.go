package main

import (
	"strings"
	"testing"

	"github.com/blinklabs-io/bursa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchamoorthee/payrolld/internal/config"
	"github.com/punchamoorthee/payrolld/internal/identity"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon " +
	"abandon abandon abandon abandon abandon abandon abandon abandon " +
	"abandon abandon abandon abandon abandon abandon abandon art"

// The env lines keygen prints must load back into a working server
// identity: the key CBOR parses and the derived address is the one
// printed, so submissions from it never trip the sender check.
func TestWalletKeysRoundTripIntoIdentity(t *testing.T) {
	wallet, err := bursa.NewWallet(testMnemonic, bursa.WithNetwork("preprod"))
	require.NoError(t, err)

	payment, err := identity.NormalizeKeyCbor(wallet.PaymentSKey.CborHex)
	require.NoError(t, err)
	stake, err := identity.NormalizeKeyCbor(wallet.StakeSKey.CborHex)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(payment, "5820"), "expected bare 32-byte key, got %s", payment)
	assert.True(t, strings.HasPrefix(stake, "5820"), "expected bare 32-byte key, got %s", stake)

	id, err := identity.New(payment, stake, config.NetworkPreprod.ID())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id.Address.String(), "addr_test1"))
}

func TestWalletDerivationIsDeterministic(t *testing.T) {
	a, err := bursa.NewWallet(testMnemonic, bursa.WithNetwork("preprod"))
	require.NoError(t, err)
	b, err := bursa.NewWallet(testMnemonic, bursa.WithNetwork("preprod"))
	require.NoError(t, err)
	assert.Equal(t, a.PaymentSKey.CborHex, b.PaymentSKey.CborHex)
}
