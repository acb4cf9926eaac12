package service

import (
	"errors"
	"fmt"
)

// ErrTxNotFound is returned by Status when neither the local ledger nor
// the explorer knows the hash. The transaction may simply not be
// indexed yet; callers should retry later.
var ErrTxNotFound = errors.New("transaction not found")

// InvalidRequestError covers malformed input the caller can fix:
// unparsable addresses, bad amounts, an empty payroll.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}

// AddressMismatchError is the authorization failure: the declared sender
// does not match the address derived from the configured signing keys.
// The message is deliberately operator-facing and actionable.
type AddressMismatchError struct {
	Derived   string
	Requested string
}

func (e *AddressMismatchError) Error() string {
	return fmt.Sprintf(
		"address mismatch: the configured signing key is for %s but the request sender is %s; "+
			"either use %s as the sender or fund it and correct the request",
		e.Derived, e.Requested, e.Derived,
	)
}

// NoFundsError means the sender address has no spendable outputs.
type NoFundsError struct {
	Address string
}

func (e *NoFundsError) Error() string {
	return fmt.Sprintf(
		"No UTXOs found for %s; fund it at https://docs.cardano.org/cardano-testnets/tools/faucet",
		e.Address,
	)
}

// UpstreamError wraps an explorer or submission failure with the
// upstream message. These may be transient and the caller may retry,
// producing a new, distinct transaction attempt.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "upstream error: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
