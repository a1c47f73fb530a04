package models

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{OrderStatusPending, OrderStatusProcessing},
		{OrderStatusPending, OrderStatusOnHold},
		{OrderStatusOnHold, OrderStatusProcessing},
		{OrderStatusProcessing, OrderStatusCompleted},
		{OrderStatusCompleted, OrderStatusRefunded},
		{OrderStatusFailed, OrderStatusProcessing},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("CanTransition(%s, %s) = false, want true", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to OrderStatus }{
		{OrderStatusCompleted, OrderStatusPending},
		{OrderStatusProcessing, OrderStatusPending},
		{OrderStatusCancelled, OrderStatusProcessing},
		{OrderStatusRefunded, OrderStatusCompleted},
		{OrderStatusProcessing, OrderStatusProcessing}, // same status is a no-op, not a transition
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("CanTransition(%s, %s) = true, want false", tc.from, tc.to)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	cases := []struct {
		in   string
		want OrderStatus
		ok   bool
	}{
		{"processing", OrderStatusProcessing, true},
		{"ON_HOLD", OrderStatusOnHold, true},
		{"on-hold", OrderStatusOnHold, true},
		{"COMPLETED", OrderStatusCompleted, true},
		{"shipped", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseOrderStatus(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseOrderStatus(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestOrderStatusGraphQL(t *testing.T) {
	if got := OrderStatusOnHold.GraphQL(); got != "ON_HOLD" {
		t.Errorf("OrderStatusOnHold.GraphQL() = %q, want ON_HOLD", got)
	}
}

func TestIsDeferredSettlement(t *testing.T) {
	deferred := []PaymentMethod{PaymentMethodKlarna, PaymentMethodAfterpay, PaymentMethodAffirm}
	for _, m := range deferred {
		if !m.IsDeferredSettlement() {
			t.Errorf("%s.IsDeferredSettlement() = false, want true", m)
		}
	}
	immediate := []PaymentMethod{PaymentMethodCard, PaymentMethodPayPal}
	for _, m := range immediate {
		if m.IsDeferredSettlement() {
			t.Errorf("%s.IsDeferredSettlement() = true, want false", m)
		}
	}
}
