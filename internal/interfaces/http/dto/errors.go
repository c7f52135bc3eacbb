package dto

import "net/http"

// Standardized error codes returned in the response envelope
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeValidation          = "ERR_VALIDATION"
	ErrCodeBadRequest          = "ERR_BAD_REQUEST"
	ErrCodeUnauthorized        = "ERR_UNAUTHORIZED"
	ErrCodeForbidden           = "ERR_FORBIDDEN"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeBusinessRule        = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientFunds   = "ERR_INSUFFICIENT_FUNDS"
	ErrCodeProviderUnavailable = "ERR_PROVIDER_UNAVAILABLE"
	ErrCodeInternal            = "ERR_INTERNAL"
)

// ErrorCodeHTTPStatus maps standardized error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientFunds:   http.StatusUnprocessableEntity,
	ErrCodeProviderUnavailable: http.StatusBadGateway,
	ErrCodeInternal:            http.StatusInternalServerError,
}

// LegacyErrorCodeMapping folds the domain layer's error codes onto the
// standardized ERR_* codes the API exposes.
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":                ErrCodeNotFound,
	"ACCOUNT_NOT_FOUND":        ErrCodeNotFound,
	"ALREADY_EXISTS":           ErrCodeAlreadyExists,
	"ALREADY_MEMBER":           ErrCodeConflict,
	"ALREADY_JOINED":           ErrCodeConflict,
	"CONCURRENCY_CONFLICT":     ErrCodeConflict,
	"UNAUTHORIZED":             ErrCodeUnauthorized,
	"FORBIDDEN":                ErrCodeForbidden,
	"INVALID_STATE":            ErrCodeInvalidState,
	"INSUFFICIENT_FUNDS":       ErrCodeInsufficientFunds,
	"INVALID_INPUT":            ErrCodeValidation,
	"INVALID_AMOUNT":           ErrCodeValidation,
	"INVALID_TRANSFER":         ErrCodeValidation,
	"INVALID_WALLET_SOURCE":    ErrCodeValidation,
	"INVALID_TRANSACTION_TYPE": ErrCodeValidation,
	"INVALID_EMAIL":            ErrCodeValidation,
	"INVALID_FAMS_NAME":        ErrCodeValidation,
	"INVALID_USER":             ErrCodeValidation,
	"INVALID_SHOP":             ErrCodeValidation,
	"INVALID_EVENT_NAME":       ErrCodeValidation,
	"INVALID_EVENT_TYPE":       ErrCodeValidation,
	"INVALID_ACOMPTE":          ErrCodeValidation,
	"INVALID_MANDAT_NAME":      ErrCodeValidation,
	"INVALID_MANDAT_SHOPS":     ErrCodeValidation,
	"INVALID_STOCK_VALUE":      ErrCodeValidation,
	"INVALID_PROVIDER_SLUG":    ErrCodeValidation,
	"INVALID_FEES":             ErrCodeValidation,
	"NOT_MEMBER":               ErrCodeBusinessRule,
	"LAST_ADMIN":               ErrCodeBusinessRule,
	"MISSING_SHOP_CLOSING":     ErrCodeBusinessRule,
	"MANDAT_ALREADY_ACTIVE":    ErrCodeBusinessRule,
	"MANDAT_NOT_FINALIZED":     ErrCodeBusinessRule,
}

// NormalizeErrorCode converts a domain error code to its standardized form.
// Codes already in ERR_* form pass through unchanged.
func NormalizeErrorCode(code string) string {
	if normalized, ok := LegacyErrorCodeMapping[code]; ok {
		return normalized
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeInternal
}

// GetHTTPStatus returns the HTTP status for a standardized error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
