package models

// Request and response bodies for the checkout endpoints. Amount fields
// that shoppers type are declared as `any` because clients send both
// formatted strings ("$1,234.50") and plain numbers.

type PaymentIntentRequest struct {
	Amount       any    `json:"amount"`
	CheckoutType string `json:"checkoutType"`
	SessionToken string `json:"sessionToken"`
	Currency     string `json:"currency"`
}

type PaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type CheckoutSessionRequest struct {
	Amount   any    `json:"amount"`
	Currency string `json:"currency"`
}

type CheckoutSessionResponse struct {
	ClientSecret string `json:"clientSecret"`
	SessionID    string `json:"sessionId"`
}

type CheckoutSessionStatusResponse struct {
	Success     bool   `json:"success"`
	SessionID   string `json:"session_id"`
	Status      string `json:"status"`
	AmountTotal int64  `json:"amount_total"`
	Currency    string `json:"currency"`
}

type CreateOrderRequest struct {
	SessionID  string `json:"sessionId"`
	WooSession string `json:"wooSession"`
}

type CreateOrderResponse struct {
	Success  bool        `json:"success"`
	OrderID  int         `json:"orderId"`
	OrderKey string      `json:"orderKey,omitempty"`
	Status   OrderStatus `json:"status"`
}

type CreatePendingOrderRequest struct {
	WooSession             string  `json:"wooSession"`
	BillingDetails         Address `json:"billingDetails"`
	ShippingDetails        Address `json:"shippingDetails"`
	PaymentMethod          string  `json:"paymentMethod"`
	ShipToDifferentAddress *bool   `json:"shipToDifferentAddress,omitempty"`
	Amount                 any     `json:"amount,omitempty"`
	Currency               string  `json:"currency,omitempty"`
}

type CreatePendingOrderResponse struct {
	Success        bool        `json:"success"`
	OrderID        int         `json:"orderId"`
	OrderKey       string      `json:"orderKey,omitempty"`
	Status         OrderStatus `json:"status"`
	CartPreserved  bool        `json:"cartPreserved"`
	DoNotEmptyCart bool        `json:"doNotEmptyCart"`
}

type CreatePayPalSessionRequest struct {
	OrderTotal any               `json:"orderTotal"`
	Currency   string            `json:"currency"`
	ReturnURL  string            `json:"returnUrl"`
	CancelURL  string            `json:"cancelUrl"`
	WooSession string            `json:"wooSession"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type CreatePayPalSessionResponse struct {
	ApprovalURL   string `json:"approvalUrl"`
	PayPalOrderID string `json:"paypalOrderId"`
}

type ProcessPayPalPaymentRequest struct {
	PayPalOrderID string `json:"paypalOrderId"`
	WooSession    string `json:"wooSession"`
	PayerID       string `json:"payerId,omitempty"`
	AuthToken     string `json:"authToken,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	UniqueID      string `json:"uniqueId,omitempty"`
}

type ProcessPayPalPaymentResponse struct {
	CaptureID     string `json:"captureId"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
	OrderID       int    `json:"orderId,omitempty"`
}

type UpdateOrderStatusResponse struct {
	Success bool        `json:"success"`
	OrderID int         `json:"orderId"`
	Status  OrderStatus `json:"status"`
}
