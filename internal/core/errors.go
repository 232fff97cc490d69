package core

import "errors"

// Failure taxonomy. Every mutating operation either fully applies or
// returns one of these with no state change.
var (
	ErrOwnerOnly                = errors.New("restricted to contract owner")
	ErrNotTokenOwner            = errors.New("caller does not own the token")
	ErrInsufficientBalance      = errors.New("insufficient balance")
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrInvalidSensor            = errors.New("invalid sensor")
	ErrCreditNotFound           = errors.New("credit not found")
	ErrCreditAlreadyRetired     = errors.New("credit already retired")
	ErrInsufficientVerification = errors.New("insufficient verification")
	ErrInvalidProject           = errors.New("invalid project")
	ErrMarketplacePaused        = errors.New("marketplace paused")
	ErrInvalidPrice             = errors.New("invalid price")
	ErrReentrancy               = errors.New("reentrant call")
	ErrInvalidPrincipal         = errors.New("invalid principal")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrListingNotFound          = errors.New("listing not found")
	ErrListingInactive          = errors.New("listing inactive")
)

// ErrorCode maps a core error to its wire code for the API layer.
// Unknown errors map to "internal".
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrOwnerOnly):
		return "owner_only"
	case errors.Is(err, ErrNotTokenOwner):
		return "not_token_owner"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInvalidSensor):
		return "invalid_sensor"
	case errors.Is(err, ErrCreditNotFound):
		return "credit_not_found"
	case errors.Is(err, ErrCreditAlreadyRetired):
		return "credit_already_retired"
	case errors.Is(err, ErrInsufficientVerification):
		return "insufficient_verification"
	case errors.Is(err, ErrInvalidProject):
		return "invalid_project"
	case errors.Is(err, ErrMarketplacePaused):
		return "marketplace_paused"
	case errors.Is(err, ErrInvalidPrice):
		return "invalid_price"
	case errors.Is(err, ErrReentrancy):
		return "reentrancy"
	case errors.Is(err, ErrInvalidPrincipal):
		return "invalid_principal"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrListingNotFound):
		return "listing_not_found"
	case errors.Is(err, ErrListingInactive):
		return "listing_inactive"
	default:
		return "internal"
	}
}
