package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeServiceUnavailable is used when a downstream dependency is down
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeInvalidSignature is used when a webhook signature fails verification
	ErrCodeInvalidSignature = "ERR_INVALID_SIGNATURE"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeRegistrationClosed is used when a season no longer accepts registrations
	ErrCodeRegistrationClosed = "ERR_REGISTRATION_CLOSED"
	// ErrCodeIneligible is used when a member does not meet product eligibility rules
	ErrCodeIneligible = "ERR_INELIGIBLE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeTooManyRequests is an alias for rate limiting
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:            http.StatusInternalServerError,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeForbidden:        http.StatusForbidden,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeTokenInvalid:     http.StatusUnauthorized,
	ErrCodeInvalidSignature: http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:       http.StatusUnprocessableEntity,
	ErrCodeRegistrationClosed: http.StatusUnprocessableEntity,
	ErrCodeIneligible:         http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the standardized
// wire format. Domain aggregates raise short codes; the HTTP layer owns
// the translation to status codes.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"INTERNAL_ERROR":       ErrCodeInternal,
	"BAD_REQUEST":          ErrCodeBadRequest,

	// Duplicates -> 409
	"DUPLICATE_EMAIL":        ErrCodeAlreadyExists,
	"DUPLICATE_REGISTRATION": ErrCodeAlreadyExists,
	"DUPLICATE_PLAN":         ErrCodeAlreadyExists,
	"DUPLICATE_PAYMENT":      ErrCodeAlreadyExists,

	// Business rules -> 422
	"INVALID_STATE":            ErrCodeInvalidState,
	"MEMBER_INACTIVE":          ErrCodeBusinessRule,
	"INELIGIBLE":               ErrCodeIneligible,
	"REGISTRATION_CLOSED":      ErrCodeRegistrationClosed,
	"PAYMENT_PLAN_UNAVAILABLE": ErrCodeBusinessRule,
	"INVALID_PRODUCT":          ErrCodeBusinessRule,

	// Webhook signature failures -> 400
	"INVALID_SIGNATURE": ErrCodeInvalidSignature,

	// Downstream outages -> 503
	"STORAGE_UNAVAILABLE": ErrCodeServiceUnavailable,

	// Invalid values -> 400
	"INVALID_INPUT":             ErrCodeInvalidInput,
	"VALIDATION_ERROR":          ErrCodeValidation,
	"INVALID_EMAIL":             ErrCodeInvalidInput,
	"INVALID_NAME":              ErrCodeInvalidInput,
	"INVALID_DATE_OF_BIRTH":     ErrCodeInvalidInput,
	"INVALID_DATES":             ErrCodeInvalidInput,
	"INVALID_PRICE":             ErrCodeInvalidInput,
	"INVALID_CURRENCY":          ErrCodeInvalidInput,
	"INVALID_ACCOUNT_CODE":      ErrCodeInvalidInput,
	"INVALID_AGE_LIMITS":        ErrCodeInvalidInput,
	"INVALID_AMOUNT":            ErrCodeInvalidInput,
	"INVALID_REFERENCE":         ErrCodeInvalidInput,
	"INVALID_MEMBER":            ErrCodeInvalidInput,
	"INVALID_SEASON":            ErrCodeInvalidInput,
	"INVALID_REGISTRATION":      ErrCodeInvalidInput,
	"INVALID_PAYMENT":           ErrCodeInvalidInput,
	"INVALID_PAYMENT_INTENT":    ErrCodeInvalidInput,
	"INVALID_INSTALLMENT":       ErrCodeInvalidInput,
	"INVALID_INSTALLMENT_COUNT": ErrCodeInvalidInput,
	"INVALID_REFUND_ID":         ErrCodeInvalidInput,
	"INVALID_REASON":            ErrCodeInvalidInput,
	"INVALID_DOCUMENT":          ErrCodeInvalidInput,
	"INVALID_CONTACT":           ErrCodeInvalidInput,
	"INVALID_IDEMPOTENCY_KEY":   ErrCodeInvalidInput,
	"INVALID_XERO_ID":           ErrCodeInvalidInput,
	"INVALID_TRIGGER":           ErrCodeInvalidInput,
	"INVALID_INVOICE_KIND":      ErrCodeInvalidInput,
	"INVALID_INVOICE_STAGING":   ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
