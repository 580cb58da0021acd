package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidAmount:   "Invalid amount",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Resolution errors
	CodeChainNotFound: "Chain not found",
	CodeTokenNotFound: "Token not found",

	// Provider selection errors
	CodeNoProviderAvailable: "No enabled provider supports this chain",
	CodeProviderDisabled:    "Provider is disabled",

	// Quote adapter errors
	CodeQuoteUnavailable: "Quote unavailable",
	CodeProviderAPIError: "Provider API returned an error",
	CodeProviderTimeout:  "Provider request timed out",
	CodeMalformedPayload: "Provider returned an unexpected payload",

	// Metadata feed errors
	CodeFeedUnavailable: "Metadata feed unavailable",

	// Profit computation errors
	CodeDivisionByZero: "Division by zero in profit computation",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}
