package models

import "time"

type PaymentSessionStatus string

const (
	PaymentSessionCreated    PaymentSessionStatus = "created"
	PaymentSessionProcessing PaymentSessionStatus = "processing"
	PaymentSessionSucceeded  PaymentSessionStatus = "succeeded"
	PaymentSessionFailed     PaymentSessionStatus = "failed"
)

// PaymentMethod is the closed set of payment methods the checkout flow
// understands. Membership checks go through the methods below rather than
// string lists at call sites.
type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodKlarna   PaymentMethod = "klarna"
	PaymentMethodAfterpay PaymentMethod = "afterpay_clearpay"
	PaymentMethodAffirm   PaymentMethod = "affirm"
	PaymentMethodPayPal   PaymentMethod = "paypal"
)

// IsDeferredSettlement reports whether the method confirms payment
// asynchronously after checkout, meaning the cart must survive until the
// provider confirms and the order starts out unpaid.
func (m PaymentMethod) IsDeferredSettlement() bool {
	switch m {
	case PaymentMethodKlarna, PaymentMethodAfterpay, PaymentMethodAffirm:
		return true
	}
	return false
}

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PaymentMethodCard, PaymentMethodKlarna, PaymentMethodAfterpay,
		PaymentMethodAffirm, PaymentMethodPayPal:
		return PaymentMethod(s), true
	}
	return "", false
}

// CheckoutMetadata bridges the payment-session step and the order-creation
// step. It is stored in Redis under the provider's session id because the
// provider round trip does not reliably preserve custom metadata.
type CheckoutMetadata struct {
	WooSession   string    `json:"woo_session"`
	CheckoutType string    `json:"checkout_type"`
	AmountCents  int64     `json:"amount_cents"`
	Currency     string    `json:"currency"`
	CreatedAt    time.Time `json:"created_at"`
}

// PaymentRecord is a verified payment as seen after capture, the input to
// order materialization.
type PaymentRecord struct {
	Provider      string        `json:"provider"`
	Reference     string        `json:"reference"`      // provider session/order id
	TransactionID string        `json:"transaction_id"` // capture or charge id
	AmountCents   int64         `json:"amount_cents"`
	Currency      string        `json:"currency"`
	Paid          bool          `json:"paid"`
	Method        PaymentMethod `json:"method"`
	Billing       Address       `json:"billing"`
	Shipping      Address       `json:"shipping"`
}
