package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidAmount   Code = "INVALID_AMOUNT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Quote-engine error codes
const (
	// Resolution errors
	CodeChainNotFound Code = "CHAIN_NOT_FOUND"
	CodeTokenNotFound Code = "TOKEN_NOT_FOUND"

	// Provider selection errors
	CodeNoProviderAvailable Code = "NO_PROVIDER_AVAILABLE"
	CodeProviderDisabled    Code = "PROVIDER_DISABLED"

	// Quote adapter errors
	CodeQuoteUnavailable Code = "QUOTE_UNAVAILABLE"
	CodeProviderAPIError Code = "PROVIDER_API_ERROR"
	CodeProviderTimeout  Code = "PROVIDER_TIMEOUT"
	CodeMalformedPayload Code = "MALFORMED_PAYLOAD"

	// Metadata feed errors
	CodeFeedUnavailable Code = "FEED_UNAVAILABLE"

	// Profit computation errors
	CodeDivisionByZero Code = "DIVISION_BY_ZERO"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
