// Package apierror defines the error envelopes every 4xx/5xx response uses.
// Handlers map domain errors onto these; driver errors and stack traces never
// reach a till.
package apierror

// APIError carries a single human-readable detail line.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError reports per-field failures from request binding, keyed by
// field name with the failed rule as the value.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}
