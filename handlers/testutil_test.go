package handlers

import (
	"context"
	"sync"

	"github.com/felixxplor/ecommerce-website-sub001/commerce"
	"github.com/felixxplor/ecommerce-website-sub001/models"
)

// Fakes for the handler dependency interfaces. Call counts are recorded so
// tests can assert on idempotency (no second provider call, no duplicate
// mutation).

type fakeStripe struct {
	createPaymentIntentFunc   func(ctx context.Context, amountCents int64, currency string, methods []string, metadata map[string]string) (models.ProviderSession, error)
	createCheckoutSessionFunc func(ctx context.Context, amountCents int64, currency string) (models.ProviderSession, error)
	getCheckoutSessionFunc    func(ctx context.Context, sessionID string) (models.SessionDetails, error)

	paymentIntentCalls int
	getSessionCalls    int
}

func (f *fakeStripe) CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, methods []string, metadata map[string]string) (models.ProviderSession, error) {
	f.paymentIntentCalls++
	if f.createPaymentIntentFunc != nil {
		return f.createPaymentIntentFunc(ctx, amountCents, currency, methods, metadata)
	}
	return models.ProviderSession{ID: "pi_test", ClientSecret: "secret_test", Status: models.PaymentSessionCreated}, nil
}

func (f *fakeStripe) CreateCheckoutSession(ctx context.Context, amountCents int64, currency string) (models.ProviderSession, error) {
	if f.createCheckoutSessionFunc != nil {
		return f.createCheckoutSessionFunc(ctx, amountCents, currency)
	}
	return models.ProviderSession{ID: "cs_test", ClientSecret: "secret_test", Status: models.PaymentSessionCreated}, nil
}

func (f *fakeStripe) GetCheckoutSession(ctx context.Context, sessionID string) (models.SessionDetails, error) {
	f.getSessionCalls++
	if f.getCheckoutSessionFunc != nil {
		return f.getCheckoutSessionFunc(ctx, sessionID)
	}
	return models.SessionDetails{ID: sessionID, PaymentStatus: "paid"}, nil
}

type fakePayPal struct {
	createOrderFunc  func(ctx context.Context, amountCents int64, currency, returnURL, cancelURL, customID string) (models.ProviderOrder, error)
	getOrderFunc     func(ctx context.Context, orderID string) (models.ProviderOrder, error)
	captureOrderFunc func(ctx context.Context, orderID, requestID string) (models.ProviderOrder, error)

	captureCalls  int
	lastRequestID string
}

func (f *fakePayPal) CreateOrder(ctx context.Context, amountCents int64, currency, returnURL, cancelURL, customID string) (models.ProviderOrder, error) {
	if f.createOrderFunc != nil {
		return f.createOrderFunc(ctx, amountCents, currency, returnURL, cancelURL, customID)
	}
	return models.ProviderOrder{ID: "PP_ORDER_1", Status: "CREATED", ApprovalURL: "https://paypal.test/approve"}, nil
}

func (f *fakePayPal) GetOrder(ctx context.Context, orderID string) (models.ProviderOrder, error) {
	if f.getOrderFunc != nil {
		return f.getOrderFunc(ctx, orderID)
	}
	return models.ProviderOrder{ID: orderID, Status: "APPROVED"}, nil
}

func (f *fakePayPal) CaptureOrder(ctx context.Context, orderID, requestID string) (models.ProviderOrder, error) {
	f.captureCalls++
	f.lastRequestID = requestID
	if f.captureOrderFunc != nil {
		return f.captureOrderFunc(ctx, orderID, requestID)
	}
	return models.ProviderOrder{ID: orderID, Status: "COMPLETED", CaptureID: "CAP123", CaptureStatus: "COMPLETED"}, nil
}

type fakeBackend struct {
	checkoutFunc       func(ctx context.Context, wooSession string, input commerce.CheckoutInput) (commerce.CheckoutResult, error)
	emptyCartErr       error
	getOrderStatusFunc func(ctx context.Context, orderID int) (models.OrderStatus, error)
	updateStatusErr    error

	checkoutCalls     int
	lastCheckoutInput commerce.CheckoutInput
	emptyCartCalls    int
	updateCalls       int
	lastUpdateStatus  models.OrderStatus
	lastUpdateOrderID int
}

func (f *fakeBackend) Checkout(ctx context.Context, wooSession string, input commerce.CheckoutInput) (commerce.CheckoutResult, error) {
	f.checkoutCalls++
	f.lastCheckoutInput = input
	if f.checkoutFunc != nil {
		return f.checkoutFunc(ctx, wooSession, input)
	}
	return commerce.CheckoutResult{OrderID: 42, OrderKey: "wc_order_test", Status: models.OrderStatusProcessing}, nil
}

func (f *fakeBackend) EmptyCart(ctx context.Context, wooSession string) error {
	f.emptyCartCalls++
	return f.emptyCartErr
}

func (f *fakeBackend) UpdateOrderStatus(ctx context.Context, orderID int, status models.OrderStatus) error {
	f.updateCalls++
	f.lastUpdateOrderID = orderID
	f.lastUpdateStatus = status
	return f.updateStatusErr
}

func (f *fakeBackend) GetOrderStatus(ctx context.Context, orderID int) (models.OrderStatus, error) {
	if f.getOrderStatusFunc != nil {
		return f.getOrderStatusFunc(ctx, orderID)
	}
	return models.OrderStatusPending, nil
}

// memCache is an in-memory MetadataCache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string]models.CheckoutMetadata
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]models.CheckoutMetadata)}
}

func (m *memCache) Set(ctx context.Context, sessionRef string, meta models.CheckoutMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionRef] = meta
	return nil
}

func (m *memCache) Get(ctx context.Context, sessionRef string) (models.CheckoutMetadata, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta, ok := m.data[sessionRef]
	return meta, ok, nil
}

func (m *memCache) Delete(ctx context.Context, sessionRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionRef)
	return nil
}

// memClaims is an in-memory ClaimStore for tests.
type memClaims struct {
	mu     sync.Mutex
	orders map[string]int
}

func newMemClaims() *memClaims {
	return &memClaims{orders: make(map[string]int)}
}

func (m *memClaims) Claim(ctx context.Context, paymentRef, provider string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.orders[paymentRef]; ok && id > 0 {
		return id, true, nil
	}
	m.orders[paymentRef] = 0
	return 0, false, nil
}

func (m *memClaims) SetOrderID(ctx context.Context, paymentRef string, orderID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[paymentRef] = orderID
	return nil
}
