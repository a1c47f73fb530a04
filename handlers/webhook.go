package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/felixxplor/ecommerce-website-sub001/kafka"
	"github.com/felixxplor/ecommerce-website-sub001/middleware"
	"github.com/felixxplor/ecommerce-website-sub001/models"
)

// WebhookHandler reconciles order status from asynchronous provider
// events. It always acknowledges a verified event, even when the
// downstream status update fails: the provider would otherwise redeliver
// an event whose side effect may have partially succeeded.
type WebhookHandler struct {
	backend       CommerceBackend
	producer      sarama.SyncProducer
	signingSecret string
	logger        *zap.Logger
}

func NewWebhookHandler(backend CommerceBackend, producer sarama.SyncProducer, signingSecret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{backend: backend, producer: producer, signingSecret: signingSecret, logger: logger}
}

// statusForEvent maps provider event types onto order statuses.
func statusForEvent(eventType string) (models.OrderStatus, bool) {
	switch eventType {
	case "payment_intent.succeeded":
		return models.OrderStatusProcessing, true
	case "payment_intent.payment_failed":
		return models.OrderStatusFailed, true
	case "payment_intent.processing":
		return models.OrderStatusOnHold, true
	}
	return "", false
}

func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	ctx, span := otel.Tracer("checkout-service").Start(c.Request.Context(), "HandleWebhook")
	defer span.End()

	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read request body"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		middleware.RecordWebhookEvent("unknown", "rejected")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing Stripe-Signature header"})
		return
	}

	event, err := webhook.ConstructEvent(payload, signature, h.signingSecret)
	if err != nil {
		span.RecordError(err)
		middleware.RecordWebhookEvent("unknown", "rejected")
		h.logger.Warn("Rejected webhook with invalid signature", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid webhook signature"})
		return
	}

	span.SetAttributes(attribute.String("webhook.event_type", string(event.Type)))

	target, handled := statusForEvent(string(event.Type))
	if !handled {
		middleware.RecordWebhookEvent(string(event.Type), "ignored")
		h.logger.Info("Ignoring webhook event", zap.String("event_type", string(event.Type)))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		middleware.RecordWebhookEvent(string(event.Type), "malformed")
		h.logger.Error("Failed to decode webhook payment intent", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	orderID, ok := orderIDFromMetadata(intent.Metadata)
	if !ok {
		// Orders created after payment carry no order reference in the
		// intent metadata; nothing to reconcile.
		middleware.RecordWebhookEvent(string(event.Type), "no_order")
		h.logger.Info("Webhook event carries no order id",
			zap.String("event_type", string(event.Type)),
			zap.String("payment_intent_id", intent.ID),
		)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	h.syncOrderStatus(ctx, orderID, target, string(event.Type), intent.ID)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// syncOrderStatus applies the transition guard and swallows failures.
// Duplicate deliveries land on the same-status no-op branch.
func (h *WebhookHandler) syncOrderStatus(ctx context.Context, orderID int, target models.OrderStatus, eventType, paymentRef string) {
	current, err := h.backend.GetOrderStatus(ctx, orderID)
	if err != nil {
		middleware.RecordWebhookEvent(eventType, "failed")
		h.logger.Error("Failed to read order status for webhook event",
			zap.Int("order_id", orderID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if current == target {
		middleware.RecordWebhookEvent(eventType, "noop")
		h.logger.Info("Order already in target status",
			zap.Int("order_id", orderID),
			zap.String("status", string(target)),
		)
		return
	}
	if !models.CanTransition(current, target) {
		middleware.RecordWebhookEvent(eventType, "skipped")
		h.logger.Warn("Skipping disallowed status transition",
			zap.Int("order_id", orderID),
			zap.String("from", string(current)),
			zap.String("to", string(target)),
		)
		return
	}

	if err := h.backend.UpdateOrderStatus(ctx, orderID, target); err != nil {
		middleware.RecordWebhookEvent(eventType, "failed")
		h.logger.Error("Failed to update order status from webhook",
			zap.Int("order_id", orderID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	middleware.RecordWebhookEvent(eventType, "processed")
	h.logger.Info("Order status updated from webhook",
		zap.Int("order_id", orderID),
		zap.String("status", string(target)),
		zap.String("event_type", eventType),
	)

	if h.producer != nil {
		event := models.OrderEvent{
			OrderID:    orderID,
			Status:     target,
			Provider:   "stripe",
			PaymentRef: paymentRef,
			EventType:  "order_status_updated",
		}
		if err := kafka.PublishOrderEvent(ctx, h.producer, kafka.OrderEventsTopic, event, h.logger); err != nil {
			h.logger.Error("Failed to publish order status event", zap.Error(err))
		}
	}
}
