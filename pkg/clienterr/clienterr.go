/*
Package clienterr defines the error kinds shared by all SDK layers.

Lower layers wrap these sentinels with fmt.Errorf("...: %w", ...) adding
context, so callers can classify any SDK failure with errors.Is while still
getting a human-readable message. None of the errors carry stack traces or
other process state, they're pure data.
*/
package clienterr

import (
	"errors"
	"fmt"
)

// Sentinel errors for all failure kinds distinguished by the public API.
var (
	// ErrInvalidArgument is returned when a caller-provided value violates
	// a documented constraint (nil script, duplicate signer etc.).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidFormat is returned on malformed serialized data: bad
	// checksums, wrong prefixes, short buffers.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrInvalidPassphrase is returned when a NEP-2 key can't be decrypted
	// with the given password.
	ErrInvalidPassphrase = errors.New("invalid passphrase")
	// ErrCryptoFailure is returned on key material problems like an
	// out-of-range scalar.
	ErrCryptoFailure = errors.New("crypto failure")
	// ErrScriptTooLarge is returned when an emitted script exceeds the
	// protocol limit.
	ErrScriptTooLarge = errors.New("script too large")
	// ErrTransactionTooLarge is returned when a serialized transaction
	// exceeds the protocol limit.
	ErrTransactionTooLarge = errors.New("transaction too large")
	// ErrInvalidScope is returned on invalid witness scope combinations.
	ErrInvalidScope = errors.New("invalid witness scope")
	// ErrFeeComputation is returned when fee values can't be calculated.
	ErrFeeComputation = errors.New("fee computation failed")
	// ErrInsufficientFunds is returned when the sender can't cover fees.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrTransport is returned on network-level failures (DNS, TCP, TLS).
	ErrTransport = errors.New("transport error")
	// ErrTimeout is returned when an operation ran out of time.
	ErrTimeout = errors.New("timeout")
	// ErrNotConnected is returned when the client is used before being
	// initialized or after Close.
	ErrNotConnected = errors.New("not connected")
	// ErrNotFound is returned when the requested entity doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an operation contradicts the current
	// state (duplicate account, second default account etc.).
	ErrConflict = errors.New("conflict")
	// ErrInternal is returned on failures that can't be attributed to the
	// caller.
	ErrInternal = errors.New("internal error")
)

// ExecutionFailedError is returned when a test invocation ends up in a
// non-HALT VM state. It keeps the state and the VM exception message.
type ExecutionFailedError struct {
	// State is the resulting VM state, normally FAULT.
	State string
	// Exception is the VM exception message if any.
	Exception string
}

// Error implements the error interface.
func (e *ExecutionFailedError) Error() string {
	if e.Exception == "" {
		return fmt.Sprintf("script failed (%s state)", e.State)
	}
	return fmt.Sprintf("script failed (%s state) due to an error: %s", e.State, e.Exception)
}

// Is makes ExecutionFailedError compatible with errors.Is checks against
// other ExecutionFailedError values irrespective of the exception text.
func (e *ExecutionFailedError) Is(target error) bool {
	_, ok := target.(*ExecutionFailedError)
	return ok
}
