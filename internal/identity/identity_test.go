package identity

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKeyCbor builds the CBOR hex form of a 32-byte seed filled with
// the given byte (0x5820 is the CBOR header for a 32-byte string).
func testKeyCbor(fill byte) string {
	seed := bytes.Repeat([]byte{fill}, 32)
	return "5820" + hex.EncodeToString(seed)
}

func TestNewDerivesTestnetAddress(t *testing.T) {
	id, err := New(testKeyCbor(0x01), testKeyCbor(0x02), 0)
	require.NoError(t, err)
	addr := id.Address.String()
	assert.True(
		t,
		strings.HasPrefix(addr, "addr_test1"),
		"expected testnet address prefix, got %s", addr,
	)
	assert.Len(t, id.PaymentKeyHash(), 56)
	assert.Len(t, id.StakeKeyHash(), 56)
}

func TestNewDerivesMainnetAddress(t *testing.T) {
	id, err := New(testKeyCbor(0x01), testKeyCbor(0x02), 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id.Address.String(), "addr1"))
}

func TestNewIsDeterministic(t *testing.T) {
	a, err := New(testKeyCbor(0x01), testKeyCbor(0x02), 0)
	require.NoError(t, err)
	b, err := New(testKeyCbor(0x01), testKeyCbor(0x02), 0)
	require.NoError(t, err)
	assert.Equal(t, a.Address.String(), b.Address.String())
}

func TestNewDifferentKeysDifferentAddress(t *testing.T) {
	a, err := New(testKeyCbor(0x01), testKeyCbor(0x02), 0)
	require.NoError(t, err)
	b, err := New(testKeyCbor(0x03), testKeyCbor(0x02), 0)
	require.NoError(t, err)
	assert.NotEqual(t, a.Address.String(), b.Address.String())
}

func TestNewAcceptsSeedPlusPublicForm(t *testing.T) {
	short, err := New(testKeyCbor(0x01), testKeyCbor(0x02), 0)
	require.NoError(t, err)

	// cardano-cli sometimes serializes seed+pubkey as 64 bytes; only
	// the seed half matters
	seed := bytes.Repeat([]byte{0x01}, 32)
	long := "5840" + hex.EncodeToString(seed) + hex.EncodeToString(short.PaymentVKey)
	id, err := New(long, testKeyCbor(0x02), 0)
	require.NoError(t, err)
	assert.Equal(t, short.Address.String(), id.Address.String())
}

// envelopeKeyCbor wraps a 32-byte seed in a key-file envelope, the
// CBOR array form wallet tooling emits: [0, <seed>].
func envelopeKeyCbor(fill byte) string {
	seed := bytes.Repeat([]byte{fill}, 32)
	return "82005820" + hex.EncodeToString(seed)
}

func TestNormalizeKeyCborPassesBareForm(t *testing.T) {
	got, err := NormalizeKeyCbor(testKeyCbor(0x01))
	require.NoError(t, err)
	assert.Equal(t, testKeyCbor(0x01), got)
}

func TestNormalizeKeyCborUnwrapsEnvelope(t *testing.T) {
	got, err := NormalizeKeyCbor(envelopeKeyCbor(0x01))
	require.NoError(t, err)
	assert.Equal(t, testKeyCbor(0x01), got)
}

func TestNormalizeKeyCborReducesSeedPlusPublicForm(t *testing.T) {
	id, err := New(testKeyCbor(0x01), testKeyCbor(0x02), 0)
	require.NoError(t, err)

	seed := bytes.Repeat([]byte{0x01}, 32)
	long := "5840" + hex.EncodeToString(seed) + hex.EncodeToString(id.PaymentVKey)
	got, err := NormalizeKeyCbor(long)
	require.NoError(t, err)
	assert.Equal(t, testKeyCbor(0x01), got)
}

func TestNormalizeKeyCborRoundTripsThroughNew(t *testing.T) {
	payment, err := NormalizeKeyCbor(envelopeKeyCbor(0x01))
	require.NoError(t, err)
	stake, err := NormalizeKeyCbor(envelopeKeyCbor(0x02))
	require.NoError(t, err)

	fromEnvelope, err := New(payment, stake, 0)
	require.NoError(t, err)
	fromBare, err := New(testKeyCbor(0x01), testKeyCbor(0x02), 0)
	require.NoError(t, err)
	assert.Equal(t, fromBare.Address.String(), fromEnvelope.Address.String())
}

func TestNormalizeKeyCborRejectsEnvelopeWithoutKey(t *testing.T) {
	// [0, 1]: no byte string to extract
	_, err := NormalizeKeyCbor("820001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no key bytes")
}

func TestNormalizeKeyCborRejectsBadHex(t *testing.T) {
	_, err := NormalizeKeyCbor("not-hex")
	require.Error(t, err)
}

func TestNewMissingPaymentKey(t *testing.T) {
	_, err := New("", testKeyCbor(0x02), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAYMENT_SKEY_CBOR")
}

func TestNewMissingStakeKey(t *testing.T) {
	_, err := New(testKeyCbor(0x01), "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STAKE_SKEY_CBOR")
}

func TestNewRejectsBadHex(t *testing.T) {
	_, err := New("not-hex", testKeyCbor(0x02), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAYMENT_SKEY_CBOR")
}

func TestNewRejectsExtendedKey(t *testing.T) {
	// 128-byte extended key payload
	ext := bytes.Repeat([]byte{0x01}, 128)
	cborHex := "5880" + hex.EncodeToString(ext)
	_, err := New(testKeyCbor(0x01), cborHex, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extended")
}
