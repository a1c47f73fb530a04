package models

import "fmt"

// ValidationError reports malformed or missing request input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthenticationError reports a missing or invalid bearer token or
// webhook signature.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

// NotFoundError reports a referenced order or payment session that does
// not exist on the provider or backend side.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ProviderError carries the payment provider's original error payload so
// operators can debug rejections without digging through provider logs.
type ProviderError struct {
	Provider string
	Message  string
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// OrderCreationError signals that the backend accepted the order mutation
// transport-wise but produced no usable order id (e.g. stock rejection).
// Distinct from transport errors so callers can treat it as a hard failure.
type OrderCreationError struct {
	Message string
}

func (e *OrderCreationError) Error() string { return e.Message }

// UpstreamUnavailable reports a transient network or backend failure.
type UpstreamUnavailable struct {
	Message string
}

func (e *UpstreamUnavailable) Error() string { return e.Message }

// ErrorResponse is the single JSON error envelope returned by every
// endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
