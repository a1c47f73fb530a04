package models

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusOnHold     OrderStatus = "on-hold"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusFailed     OrderStatus = "failed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// orderTransitions is the forward-only transition table. Statuses never
// move backwards; setting the current status again is handled as a no-op
// by callers before they consult this table.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusOnHold, OrderStatusFailed, OrderStatusCancelled},
	OrderStatusOnHold:     {OrderStatusProcessing, OrderStatusCompleted, OrderStatusFailed, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusFailed, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusFailed:     {OrderStatusProcessing, OrderStatusOnHold},
	OrderStatusCompleted:  {OrderStatusRefunded},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
}

// CanTransition reports whether an order may move from one status to
// another. Same-status writes are not transitions; callers treat them as
// idempotent no-ops.
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ParseOrderStatus accepts both the dashed wire form ("on-hold") and the
// GraphQL enum form ("ON_HOLD").
func ParseOrderStatus(s string) (OrderStatus, bool) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
	switch OrderStatus(normalized) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusOnHold,
		OrderStatusCompleted, OrderStatusFailed, OrderStatusCancelled, OrderStatusRefunded:
		return OrderStatus(normalized), true
	}
	return "", false
}

// GraphQL returns the WooGraphQL enum form of the status, e.g. ON_HOLD.
func (s OrderStatus) GraphQL() string {
	return strings.ToUpper(strings.ReplaceAll(string(s), "-", "_"))
}

type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type Order struct {
	ID            int         `json:"id"`
	OrderKey      string      `json:"orderKey,omitempty"`
	Status        OrderStatus `json:"status"`
	Total         string      `json:"total,omitempty"`
	Billing       Address     `json:"billing"`
	Shipping      Address     `json:"shipping"`
	TransactionID string      `json:"transactionId,omitempty"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time   `json:"createdAt,omitempty"`
}

// OrderEvent is published to Kafka whenever an order is created or its
// status changes.
type OrderEvent struct {
	OrderID    int         `json:"order_id"`
	Status     OrderStatus `json:"status"`
	Provider   string      `json:"provider"`
	PaymentRef string      `json:"payment_ref"`
	EventType  string      `json:"event_type"` // order_created, order_status_updated
}
