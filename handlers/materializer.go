package handlers

import (
	"context"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/felixxplor/ecommerce-website-sub001/checkout"
	"github.com/felixxplor/ecommerce-website-sub001/commerce"
	"github.com/felixxplor/ecommerce-website-sub001/kafka"
	"github.com/felixxplor/ecommerce-website-sub001/middleware"
	"github.com/felixxplor/ecommerce-website-sub001/models"
)

// Materializer converts a verified payment plus a cart session into a
// backend order, exactly once per payment reference.
type Materializer struct {
	backend  CommerceBackend
	claims   ClaimStore
	producer sarama.SyncProducer
	logger   *zap.Logger
}

func NewMaterializer(backend CommerceBackend, claims ClaimStore, producer sarama.SyncProducer, logger *zap.Logger) *Materializer {
	return &Materializer{backend: backend, claims: claims, producer: producer, logger: logger}
}

// CreateOrder claims the payment reference locally, submits the checkout
// mutation and then empties the cart. Cart-emptying failures are swallowed:
// the order is the authoritative side effect.
func (m *Materializer) CreateOrder(ctx context.Context, wooSession string, rec models.PaymentRecord) (models.Order, error) {
	existingID, alreadyCreated, err := m.claims.Claim(ctx, rec.Reference, rec.Provider)
	if err != nil {
		return models.Order{}, err
	}
	if alreadyCreated {
		m.logger.Info("Order already exists for payment reference",
			zap.String("payment_ref", rec.Reference),
			zap.Int("order_id", existingID),
		)
		return models.Order{ID: existingID, Status: models.OrderStatusProcessing}, nil
	}

	input := commerce.CheckoutInput{
		ClientMutationID:       rec.Reference,
		PaymentMethod:          rec.Provider,
		IsPaid:                 rec.Paid,
		TransactionID:          rec.TransactionID,
		Billing:                rec.Billing,
		Shipping:               rec.Shipping,
		ShipToDifferentAddress: checkout.ShipToDifferentAddress(rec.Billing, rec.Shipping),
		MetaData: []commerce.MetaEntry{
			{Key: "_payment_provider", Value: rec.Provider},
			{Key: "_provider_transaction_id", Value: rec.TransactionID},
			{Key: "_payment_method_type", Value: string(rec.Method)},
		},
	}

	result, err := m.backend.Checkout(ctx, wooSession, input)
	if err != nil {
		middleware.RecordOrderCreated("failed")
		return models.Order{}, err
	}

	if err := m.claims.SetOrderID(ctx, rec.Reference, result.OrderID); err != nil {
		m.logger.Error("Failed to record order id for payment reference",
			zap.String("payment_ref", rec.Reference),
			zap.Int("order_id", result.OrderID),
			zap.Error(err),
		)
	}

	middleware.RecordOrderCreated("created")
	m.publishEvent(ctx, models.OrderEvent{
		OrderID:    result.OrderID,
		Status:     result.Status,
		Provider:   rec.Provider,
		PaymentRef: rec.Reference,
		EventType:  "order_created",
	})

	if err := m.backend.EmptyCart(ctx, wooSession); err != nil {
		m.logger.Warn("Failed to empty cart after order creation",
			zap.Int("order_id", result.OrderID),
			zap.Error(err),
		)
	}

	return models.Order{
		ID:            result.OrderID,
		OrderKey:      result.OrderKey,
		Status:        result.Status,
		Billing:       rec.Billing,
		Shipping:      rec.Shipping,
		TransactionID: rec.TransactionID,
		PaymentMethod: string(rec.Method),
	}, nil
}

// CreatePendingOrder creates an unpaid order for deferred-settlement
// methods. The cart is preserved because the provider confirms
// asynchronously; a follow-up status update parks the order on hold.
func (m *Materializer) CreatePendingOrder(ctx context.Context, wooSession string, rec models.PaymentRecord, shipToDifferent *bool) (models.Order, error) {
	mutationID := rec.Reference
	if mutationID == "" {
		// No provider reference yet for a deferred method; the mutation
		// still needs a stable id for backend-side dedup of client retries.
		mutationID = uuid.NewString()
	}

	shipDiff := checkout.ShipToDifferentAddress(rec.Billing, rec.Shipping)
	if shipToDifferent != nil {
		shipDiff = *shipToDifferent
	}

	input := commerce.CheckoutInput{
		ClientMutationID:       mutationID,
		PaymentMethod:          rec.Provider,
		IsPaid:                 false,
		Billing:                rec.Billing,
		Shipping:               rec.Shipping,
		ShipToDifferentAddress: shipDiff,
		MetaData: []commerce.MetaEntry{
			{Key: "_true_payment_method", Value: string(rec.Method)},
			{Key: "_do_not_empty_cart", Value: "yes"},
		},
	}

	result, err := m.backend.Checkout(ctx, wooSession, input)
	if err != nil {
		middleware.RecordOrderCreated("failed")
		return models.Order{}, err
	}

	middleware.RecordOrderCreated("pending")
	m.publishEvent(ctx, models.OrderEvent{
		OrderID:    result.OrderID,
		Status:     result.Status,
		Provider:   rec.Provider,
		PaymentRef: mutationID,
		EventType:  "order_created",
	})

	// Deferred methods settle later; the order waits on hold rather than
	// entering fulfillment.
	if result.Status != models.OrderStatusOnHold {
		if err := m.backend.UpdateOrderStatus(ctx, result.OrderID, models.OrderStatusOnHold); err != nil {
			m.logger.Warn("Failed to move pending order on hold",
				zap.Int("order_id", result.OrderID),
				zap.Error(err),
			)
		} else {
			result.Status = models.OrderStatusOnHold
		}
	}

	return models.Order{
		ID:            result.OrderID,
		OrderKey:      result.OrderKey,
		Status:        result.Status,
		Billing:       rec.Billing,
		Shipping:      rec.Shipping,
		PaymentMethod: string(rec.Method),
	}, nil
}

func (m *Materializer) publishEvent(ctx context.Context, event models.OrderEvent) {
	if m.producer == nil {
		return
	}
	if err := kafka.PublishOrderEvent(ctx, m.producer, kafka.OrderEventsTopic, event, m.logger); err != nil {
		m.logger.Error("Failed to publish order event",
			zap.Int("order_id", event.OrderID),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
	}
}

// orderIDFromMetadata parses the order id providers echo back in payment
// metadata. Empty when the metadata never carried one.
func orderIDFromMetadata(metadata map[string]string) (int, bool) {
	raw, ok := metadata["order_id"]
	if !ok || raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
