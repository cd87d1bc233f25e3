package neorpc

import (
	"errors"
	"fmt"

	"github.com/halyard-dev/neokit/pkg/clienterr"
)

// Error represents a JSON-RPC 2.0 error object embedded into a response.
type Error struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

// Standard JSON-RPC 2.0 error codes.
const (
	// InternalServerErrorCode is returned for internal RPC server errors.
	InternalServerErrorCode = -32603
	// BadRequestCode is returned on parse errors.
	BadRequestCode = -32700
	// InvalidRequestCode is returned on invalid request objects.
	InvalidRequestCode = -32600
	// MethodNotFoundCode is returned on unknown methods.
	MethodNotFoundCode = -32601
	// InvalidParamsCode is returned on invalid request parameters.
	InvalidParamsCode = -32602
)

// Neo-specific error codes returned by servers.
const (
	// ErrUnknownBlockCode is returned when the requested block is missing.
	ErrUnknownBlockCode = -101
	// ErrUnknownContractCode is returned when the requested contract is
	// missing.
	ErrUnknownContractCode = -102
	// ErrUnknownTransactionCode is returned when the requested transaction
	// is missing.
	ErrUnknownTransactionCode = -103
	// ErrUnknownScriptContainerCode is returned when the requested
	// transaction or block is missing.
	ErrUnknownScriptContainerCode = -105
	// ErrUnknownSessionCode is returned on attempts to use an expired or
	// unknown iterator session.
	ErrUnknownSessionCode = -107
	// ErrUnknownHeightCode is returned on requests past the chain tip.
	ErrUnknownHeightCode = -109
	// ErrInsufficientFundsCode is returned when the sender can't pay for
	// the transaction being submitted.
	ErrInsufficientFundsCode = -500
	// ErrVerificationCode is returned when the submitted transaction
	// failed the node's verification.
	ErrVerificationCode = -501
	// ErrAlreadyExistsCode is returned when the submitted transaction is
	// already known to the node.
	ErrAlreadyExistsCode = -502
	// ErrMempoolCapReachedCode is returned when the node's memory pool is
	// full.
	ErrMempoolCapReachedCode = -503
	// ErrInsufficientNetworkFeeCode is returned when the network fee of
	// the submitted transaction doesn't cover its size and verification.
	ErrInsufficientNetworkFeeCode = -505
	// ErrExpiredTransactionCode is returned when ValidUntilBlock of the
	// submitted transaction is in the past.
	ErrExpiredTransactionCode = -506
)

// NewError is an Error constructor that takes Error contents from its
// parameters.
func NewError(code int64, message string, data string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewInvalidParamsError creates a new error with code -32602.
func NewInvalidParamsError(data string) *Error {
	return NewError(InvalidParamsCode, "Invalid params", data)
}

// NewInternalServerError creates a new error with code -32603.
func NewInternalServerError(data string) *Error {
	return NewError(InternalServerErrorCode, "Internal error", data)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Data) == 0 {
		return fmt.Sprintf("%s (%d)", e.Message, e.Code)
	}
	return fmt.Sprintf("%s (%d) - %s", e.Message, e.Code, e.Data)
}

// Is implements the interface used by errors.Is. Errors are equal when their
// codes match; it also classifies server errors in terms of the clienterr
// sentinels, so errors.Is(err, clienterr.ErrNotFound) works for unknown
// block/transaction/contract replies.
func (e *Error) Is(target error) bool {
	var clRPCError *Error
	if errors.As(target, &clRPCError) {
		return clRPCError.Code == e.Code
	}
	switch target {
	case clienterr.ErrNotFound:
		switch e.Code {
		case ErrUnknownBlockCode, ErrUnknownContractCode, ErrUnknownTransactionCode,
			ErrUnknownScriptContainerCode, ErrUnknownSessionCode, ErrUnknownHeightCode:
			return true
		}
	case clienterr.ErrInsufficientFunds:
		return e.Code == ErrInsufficientFundsCode || e.Code == ErrInsufficientNetworkFeeCode
	case clienterr.ErrConflict:
		return e.Code == ErrAlreadyExistsCode
	}
	return false
}
