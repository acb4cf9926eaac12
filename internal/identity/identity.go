package identity

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/blinklabs-io/gouroboros/cbor"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
)

// Identity holds the signing key material for the payroll sender and the
// base address derived from it. It is built once at startup and treated
// as immutable afterwards, so concurrent reads need no synchronization.
type Identity struct {
	PaymentSKey ed25519.PrivateKey
	PaymentVKey ed25519.PublicKey
	StakeSKey   ed25519.PrivateKey
	StakeVKey   ed25519.PublicKey
	Address     lcommon.Address
}

// New reconstructs the payment and stake key pairs from their CBOR hex
// representations and derives the base address for the given network
// tag. Missing or malformed key material is a configuration error and
// the returned error names the offending key.
func New(paymentSKeyCbor, stakeSKeyCbor string, networkID uint8) (*Identity, error) {
	paymentSKey, paymentVKey, err := keyFromCborHex(paymentSKeyCbor)
	if err != nil {
		return nil, fmt.Errorf("PAYMENT_SKEY_CBOR: %w", err)
	}
	stakeSKey, stakeVKey, err := keyFromCborHex(stakeSKeyCbor)
	if err != nil {
		return nil, fmt.Errorf("STAKE_SKEY_CBOR: %w", err)
	}
	paymentHash := lcommon.Blake2b224Hash(paymentVKey)
	stakeHash := lcommon.Blake2b224Hash(stakeVKey)
	addr, err := lcommon.NewAddressFromParts(
		lcommon.AddressTypeKeyKey,
		networkID,
		paymentHash[:],
		stakeHash[:],
	)
	if err != nil {
		return nil, fmt.Errorf("derive address: %w", err)
	}
	return &Identity{
		PaymentSKey: paymentSKey,
		PaymentVKey: paymentVKey,
		StakeSKey:   stakeSKey,
		StakeVKey:   stakeVKey,
		Address:     addr,
	}, nil
}

// PaymentKeyHash returns the Blake2b-224 hash of the payment
// verification key, for operator verification at startup.
func (i *Identity) PaymentKeyHash() string {
	h := lcommon.Blake2b224Hash(i.PaymentVKey)
	return hex.EncodeToString(h[:])
}

// StakeKeyHash returns the Blake2b-224 hash of the stake verification
// key.
func (i *Identity) StakeKeyHash() string {
	h := lcommon.Blake2b224Hash(i.StakeVKey)
	return hex.EncodeToString(h[:])
}

// NormalizeKeyCbor converts a signing key from any of the CBOR encodings
// wallet tooling emits into the bare byte-string form New accepts. The
// input is either already a bare CBOR byte string, or a key-file
// envelope (a CBOR array carrying the key bytes alongside metadata).
// Seed+pubkey material is reduced to the 32-byte seed.
func NormalizeKeyCbor(s string) (string, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("invalid hex: %w", err)
	}
	var keyBytes []byte
	if _, err := cbor.Decode(raw, &keyBytes); err != nil {
		var envelope []any
		if _, err := cbor.Decode(raw, &envelope); err != nil {
			return "", fmt.Errorf("invalid CBOR: %w", err)
		}
		for _, item := range envelope {
			if b, ok := item.([]byte); ok {
				keyBytes = b
				break
			}
		}
		if keyBytes == nil {
			return "", fmt.Errorf("no key bytes in CBOR envelope")
		}
	}
	if len(keyBytes) == ed25519.SeedSize*2 {
		keyBytes = keyBytes[:ed25519.SeedSize]
	}
	if len(keyBytes) != ed25519.SeedSize {
		return "", fmt.Errorf(
			"unexpected key length %d (extended signing keys are not supported)",
			len(keyBytes),
		)
	}
	enc, err := cbor.Encode(keyBytes)
	if err != nil {
		return "", fmt.Errorf("encode key: %w", err)
	}
	return hex.EncodeToString(enc), nil
}

// keyFromCborHex decodes a cardano-cli style signing key: a hex string
// of a CBOR byte string wrapping either the 32-byte ed25519 seed or the
// 64-byte seed+pubkey form. Extended (BIP32) keys are rejected.
func keyFromCborHex(s string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	if s == "" {
		return nil, nil, fmt.Errorf("key material is empty")
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid hex: %w", err)
	}
	var keyBytes []byte
	if _, err := cbor.Decode(raw, &keyBytes); err != nil {
		return nil, nil, fmt.Errorf("invalid CBOR: %w", err)
	}
	switch len(keyBytes) {
	case ed25519.SeedSize:
	case ed25519.SeedSize * 2:
		keyBytes = keyBytes[:ed25519.SeedSize]
	default:
		return nil, nil, fmt.Errorf(
			"unexpected key length %d (extended signing keys are not supported)",
			len(keyBytes),
		)
	}
	skey := ed25519.NewKeyFromSeed(keyBytes)
	vkey, ok := skey.Public().(ed25519.PublicKey)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected public key type")
	}
	return skey, vkey, nil
}
