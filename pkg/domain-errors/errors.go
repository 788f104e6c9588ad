// Package domainerrors defines the typed error vocabulary shared by the
// ledger core and its transports. Guards and services return these so callers
// can branch on the code instead of parsing messages.
package domainerrors

import "net/http"

// Code identifies a failure class. Codes are stable API; descriptions are not.
type Code string

const (
	// Ledger and validation failures.
	CodeInvalidAmount         Code = "invalid_amount"
	CodeAmountTooLarge        Code = "amount_too_large"
	CodeInsufficientBalance   Code = "insufficient_balance"
	CodeInsufficientAllowance Code = "insufficient_allowance"
	CodePaused                Code = "paused"
	CodeNotPaused             Code = "not_paused"
	CodeZeroAddress           Code = "zero_address"
	CodeUnauthorized          Code = "unauthorized"
	CodeAlreadyInitialized    Code = "already_initialized"
	CodeExceedsMaxSupply      Code = "exceeds_max_supply"
	CodeInvalidParameters     Code = "invalid_parameters"
	CodeSelfTransfer          Code = "self_transfer"
	CodeInvalidRole           Code = "invalid_role"
	CodeNotInitialized        Code = "not_initialized"

	// Transport-level failures.
	CodeBadRequest Code = "bad_request"
	CodeNotFound   Code = "not_found"
	CodeInternal   Code = "internal_error"
)

// Error carries a code and a human-readable description. It satisfies the
// standard error interface so it flows through existing error plumbing.
type Error struct {
	Code        Code
	Description string
}

func (e Error) Error() string {
	if e.Description == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Description
}

// New builds a typed error.
func New(code Code, description string) Error {
	return Error{Code: code, Description: description}
}

// CodeOf extracts the code from an error, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	if e, ok := err.(Error); ok {
		return e.Code
	}
	return CodeInternal
}

// Is lets errors.Is match on the code alone, ignoring descriptions.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	return ok && t.Code == e.Code
}

// ToHTTPStatus maps a code to its HTTP response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidAmount, CodeAmountTooLarge, CodeZeroAddress,
		CodeSelfTransfer, CodeInvalidRole, CodeInvalidParameters,
		CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInsufficientBalance, CodeInsufficientAllowance,
		CodeExceedsMaxSupply:
		return http.StatusUnprocessableEntity
	case CodePaused, CodeNotPaused, CodeAlreadyInitialized, CodeNotInitialized:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
