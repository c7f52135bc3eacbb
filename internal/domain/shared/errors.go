package shared

// DomainError is an invariant violation raised by the ledger, account or
// accounting aggregates. The code travels to the HTTP layer where it is
// mapped onto the response envelope; the message is safe to show callers.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Sentinel errors shared across aggregates. The money-specific ones carry
// the ledger's rules: ErrInsufficientFunds guards every wallet debit,
// ErrInvalidState fences terminal transaction and event states, and
// ErrAccountNotFound covers both personal and fams wallets.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientFunds   = NewDomainError("INSUFFICIENT_FUNDS", "Insufficient balance available")
	ErrAccountNotFound     = NewDomainError("ACCOUNT_NOT_FOUND", "Wallet account not found")
)
