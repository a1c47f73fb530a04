package models

// ProviderSession is the client-usable handle returned when a payment
// session is created with a provider.
type ProviderSession struct {
	ID           string
	ClientSecret string
	Status       PaymentSessionStatus
}

// SessionDetails is a provider checkout session as seen after the shopper
// finished (or abandoned) payment. Names arrive as single strings; callers
// split them when building structured addresses.
type SessionDetails struct {
	ID              string
	Status          string
	PaymentStatus   string
	AmountTotal     int64
	Currency        string
	PaymentIntentID string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	BillingAddress  Address
	ShippingName    string
	ShippingAddress Address
}

// ProviderOrder is a provider-side order (PayPal Orders v2 shape): its
// status, approval link and any captures already recorded against it.
type ProviderOrder struct {
	ID              string
	Status          string
	ApprovalURL     string
	CaptureID       string
	CaptureStatus   string
	PayerName       string
	PayerEmail      string
	ShippingName    string
	ShippingAddress Address
}
