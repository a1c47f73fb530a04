package handlers

import (
	"net/http"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/felixxplor/ecommerce-website-sub001/kafka"
	"github.com/felixxplor/ecommerce-website-sub001/middleware"
	"github.com/felixxplor/ecommerce-website-sub001/models"
)

type StatusHandler struct {
	backend  CommerceBackend
	producer sarama.SyncProducer
	logger   *zap.Logger
}

func NewStatusHandler(backend CommerceBackend, producer sarama.SyncProducer, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{backend: backend, producer: producer, logger: logger}
}

// UpdateOrderStatus moves an order through the transition table. Setting
// the status it already has is a successful no-op.
func (h *StatusHandler) UpdateOrderStatus(c *gin.Context) {
	ctx, span := otel.Tracer("checkout-service").Start(c.Request.Context(), "UpdateOrderStatus")
	defer span.End()

	orderID, err := strconv.Atoi(c.Query("order_id"))
	if err != nil || orderID <= 0 {
		respondError(c, h.logger, &models.ValidationError{Message: "order_id must be a positive integer"})
		return
	}

	target, ok := models.ParseOrderStatus(c.Query("status"))
	if !ok {
		respondError(c, h.logger, &models.ValidationError{Message: "unknown status: " + c.Query("status")})
		return
	}

	span.SetAttributes(
		attribute.Int("order.id", orderID),
		attribute.String("order.status", string(target)),
	)

	current, err := h.backend.GetOrderStatus(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}

	if current == target {
		c.JSON(http.StatusOK, models.UpdateOrderStatusResponse{
			Success: true,
			OrderID: orderID,
			Status:  target,
		})
		return
	}

	if !models.CanTransition(current, target) {
		respondError(c, h.logger, &models.ValidationError{
			Message: "status cannot move from " + string(current) + " to " + string(target),
		})
		return
	}

	if err := h.backend.UpdateOrderStatus(ctx, orderID, target); err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Order status updated",
		zap.String("trace_id", middleware.GetTraceID(ctx)),
		zap.Int("order_id", orderID),
		zap.String("from", string(current)),
		zap.String("to", string(target)),
	)

	if h.producer != nil {
		event := models.OrderEvent{
			OrderID:   orderID,
			Status:    target,
			EventType: "order_status_updated",
		}
		if err := kafka.PublishOrderEvent(ctx, h.producer, kafka.OrderEventsTopic, event, h.logger); err != nil {
			h.logger.Error("Failed to publish order status event", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, models.UpdateOrderStatusResponse{
		Success: true,
		OrderID: orderID,
		Status:  target,
	})
}
