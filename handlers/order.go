package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/felixxplor/ecommerce-website-sub001/checkout"
	"github.com/felixxplor/ecommerce-website-sub001/middleware"
	"github.com/felixxplor/ecommerce-website-sub001/models"
)

type OrderHandler struct {
	stripe       StripeGateway
	store        MetadataCache
	materializer *Materializer
	logger       *zap.Logger
}

func NewOrderHandler(stripe StripeGateway, store MetadataCache, materializer *Materializer, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{stripe: stripe, store: store, materializer: materializer, logger: logger}
}

// CreateOrder turns a paid provider session into a backend order and then
// clears the cart it was paid from.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	ctx, span := otel.Tracer("checkout-service").Start(c.Request.Context(), "CreateOrder")
	defer span.End()

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if req.SessionID == "" {
		respondError(c, h.logger, &models.ValidationError{Message: "sessionId is required"})
		return
	}

	span.SetAttributes(attribute.String("payment.session_id", req.SessionID))

	details, err := h.stripe.GetCheckoutSession(ctx, req.SessionID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}
	if details.PaymentStatus != "paid" {
		respondError(c, h.logger, &models.ValidationError{Message: "payment not completed for session"})
		return
	}

	wooSession := req.WooSession
	if wooSession == "" {
		// Fall back to the metadata parked at session-creation time.
		if meta, ok, err := h.store.Get(ctx, req.SessionID); err == nil && ok {
			wooSession = meta.WooSession
		}
	}
	if wooSession == "" {
		respondError(c, h.logger, &models.ValidationError{Message: "wooSession is required"})
		return
	}

	rec := paymentRecordFromSession(details)

	order, err := h.materializer.CreateOrder(ctx, wooSession, rec)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}

	span.SetAttributes(attribute.Int("order.id", order.ID))
	h.logger.Info("Order created",
		zap.String("trace_id", middleware.GetTraceID(ctx)),
		zap.Int("order_id", order.ID),
		zap.String("payment_ref", rec.Reference),
	)

	// The cached metadata has served its purpose.
	if err := h.store.Delete(ctx, req.SessionID); err != nil {
		h.logger.Warn("Failed to drop checkout metadata", zap.Error(err))
	}

	c.JSON(http.StatusOK, models.CreateOrderResponse{
		Success:  true,
		OrderID:  order.ID,
		OrderKey: order.OrderKey,
		Status:   order.Status,
	})
}

// CreatePendingOrder is the deferred-settlement path: the order is created
// unpaid, the cart survives, and the provider confirms asynchronously.
func (h *OrderHandler) CreatePendingOrder(c *gin.Context) {
	ctx, span := otel.Tracer("checkout-service").Start(c.Request.Context(), "CreatePendingOrder")
	defer span.End()

	var req models.CreatePendingOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if req.WooSession == "" {
		respondError(c, h.logger, &models.ValidationError{Message: "wooSession is required"})
		return
	}

	method, ok := models.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		respondError(c, h.logger, &models.ValidationError{Message: "unknown payment method: " + req.PaymentMethod})
		return
	}
	if !method.IsDeferredSettlement() {
		respondError(c, h.logger, &models.ValidationError{Message: "payment method does not settle deferred: " + req.PaymentMethod})
		return
	}

	span.SetAttributes(attribute.String("payment.method", string(method)))

	rec := models.PaymentRecord{
		Provider: "stripe",
		Method:   method,
		Paid:     false,
		Billing:  req.BillingDetails,
		Shipping: req.ShippingDetails,
	}

	order, err := h.materializer.CreatePendingOrder(ctx, req.WooSession, rec, req.ShipToDifferentAddress)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}

	span.SetAttributes(attribute.Int("order.id", order.ID))
	h.logger.Info("Pending order created",
		zap.String("trace_id", middleware.GetTraceID(ctx)),
		zap.Int("order_id", order.ID),
		zap.String("payment_method", string(method)),
	)

	c.JSON(http.StatusOK, models.CreatePendingOrderResponse{
		Success:        true,
		OrderID:        order.ID,
		OrderKey:       order.OrderKey,
		Status:         order.Status,
		CartPreserved:  true,
		DoNotEmptyCart: true,
	})
}

// paymentRecordFromSession maps the provider's single-string names and
// addresses onto the backend's structured fields.
func paymentRecordFromSession(details models.SessionDetails) models.PaymentRecord {
	billingFirst, billingLast := checkout.SplitFullName(details.CustomerName)
	billing := details.BillingAddress
	billing.FirstName = billingFirst
	billing.LastName = billingLast
	billing.Email = details.CustomerEmail
	billing.Phone = details.CustomerPhone

	shippingName := details.ShippingName
	if shippingName == "" {
		shippingName = details.CustomerName
	}
	shippingFirst, shippingLast := checkout.SplitFullName(shippingName)
	shipping := details.ShippingAddress
	if shipping.Address1 == "" {
		shipping = details.BillingAddress
	}
	shipping.FirstName = shippingFirst
	shipping.LastName = shippingLast

	return models.PaymentRecord{
		Provider:      "stripe",
		Reference:     details.ID,
		TransactionID: details.PaymentIntentID,
		AmountCents:   details.AmountTotal,
		Currency:      details.Currency,
		Paid:          true,
		Method:        models.PaymentMethodCard,
		Billing:       billing,
		Shipping:      shipping,
	}
}
