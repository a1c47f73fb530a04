package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/felixxplor/ecommerce-website-sub001/checkout"
	"github.com/felixxplor/ecommerce-website-sub001/middleware"
	"github.com/felixxplor/ecommerce-website-sub001/models"
)

type PayPalHandler struct {
	paypal       PayPalGateway
	store        MetadataCache
	materializer *Materializer
	logger       *zap.Logger
}

func NewPayPalHandler(paypal PayPalGateway, store MetadataCache, materializer *Materializer, logger *zap.Logger) *PayPalHandler {
	return &PayPalHandler{paypal: paypal, store: store, materializer: materializer, logger: logger}
}

func (h *PayPalHandler) CreatePayPalSession(c *gin.Context) {
	ctx, span := otel.Tracer("checkout-service").Start(c.Request.Context(), "CreatePayPalSession")
	defer span.End()

	var req models.CreatePayPalSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	amountCents, err := checkout.ParseAmountToCents(req.OrderTotal)
	if err != nil {
		respondError(c, h.logger, &models.ValidationError{Message: err.Error()})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "AUD"
	}

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = os.Getenv("PAYPAL_RETURN_URL")
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = os.Getenv("PAYPAL_CANCEL_URL")
	}

	span.SetAttributes(attribute.Int64("payment.amount_cents", amountCents))

	order, err := h.paypal.CreateOrder(ctx, amountCents, currency, returnURL, cancelURL, req.WooSession)
	if err != nil {
		span.RecordError(err)
		middleware.RecordPaymentSession("paypal", "failed")
		respondError(c, h.logger, err)
		return
	}

	meta := models.CheckoutMetadata{
		WooSession:  req.WooSession,
		AmountCents: amountCents,
		Currency:    currency,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.store.Set(ctx, order.ID, meta); err != nil {
		h.logger.Warn("Failed to cache checkout metadata",
			zap.String("paypal_order_id", order.ID),
			zap.Error(err),
		)
	}

	middleware.RecordPaymentSession("paypal", "created")
	h.logger.Info("PayPal session created",
		zap.String("trace_id", middleware.GetTraceID(ctx)),
		zap.String("paypal_order_id", order.ID),
	)

	c.JSON(http.StatusOK, models.CreatePayPalSessionResponse{
		ApprovalURL:   order.ApprovalURL,
		PayPalOrderID: order.ID,
	})
}

// ProcessPayPalPayment captures an approved PayPal order and materializes
// the backend order. Checking status before capturing makes the endpoint
// re-entrant: an already-captured order returns its existing capture id
// without a second capture call.
func (h *PayPalHandler) ProcessPayPalPayment(c *gin.Context) {
	ctx, span := otel.Tracer("checkout-service").Start(c.Request.Context(), "ProcessPayPalPayment")
	defer span.End()

	var req models.ProcessPayPalPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if req.PayPalOrderID == "" {
		respondError(c, h.logger, &models.ValidationError{Message: "paypalOrderId is required"})
		return
	}

	span.SetAttributes(attribute.String("paypal.order_id", req.PayPalOrderID))

	order, err := h.paypal.GetOrder(ctx, req.PayPalOrderID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}

	if order.Status != "COMPLETED" {
		requestID := req.UniqueID
		if requestID == "" {
			requestID = req.TransactionID
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		order, err = h.paypal.CaptureOrder(ctx, req.PayPalOrderID, requestID)
		if err != nil {
			span.RecordError(err)
			middleware.RecordPaymentCaptured("paypal", "failed")
			respondError(c, h.logger, err)
			return
		}
	}

	middleware.RecordPaymentCaptured("paypal", "succeeded")
	span.SetAttributes(attribute.String("paypal.capture_id", order.CaptureID))

	wooSession := req.WooSession
	if wooSession == "" {
		if meta, ok, err := h.store.Get(ctx, req.PayPalOrderID); err == nil && ok {
			wooSession = meta.WooSession
		}
	}

	resp := models.ProcessPayPalPaymentResponse{
		CaptureID:     order.CaptureID,
		Status:        order.Status,
		TransactionID: order.CaptureID,
	}

	// Without a cart session there is nothing to materialize; the capture
	// result alone still answers the client.
	if wooSession != "" {
		rec := paymentRecordFromPayPal(order)
		created, err := h.materializer.CreateOrder(ctx, wooSession, rec)
		if err != nil {
			span.RecordError(err)
			respondError(c, h.logger, err)
			return
		}
		resp.OrderID = created.ID
		if err := h.store.Delete(ctx, req.PayPalOrderID); err != nil {
			h.logger.Warn("Failed to drop checkout metadata", zap.Error(err))
		}
	}

	h.logger.Info("PayPal payment processed",
		zap.String("trace_id", middleware.GetTraceID(ctx)),
		zap.String("paypal_order_id", req.PayPalOrderID),
		zap.String("capture_id", order.CaptureID),
		zap.Int("order_id", resp.OrderID),
	)

	c.JSON(http.StatusOK, resp)
}

func paymentRecordFromPayPal(order models.ProviderOrder) models.PaymentRecord {
	billingFirst, billingLast := checkout.SplitFullName(order.PayerName)
	billing := models.Address{
		FirstName: billingFirst,
		LastName:  billingLast,
		Email:     order.PayerEmail,
	}
	// PayPal reports no billing street address; billing falls back to the
	// shipping location so the backend gets a complete order.
	billing.Address1 = order.ShippingAddress.Address1
	billing.Address2 = order.ShippingAddress.Address2
	billing.City = order.ShippingAddress.City
	billing.State = order.ShippingAddress.State
	billing.Postcode = order.ShippingAddress.Postcode
	billing.Country = order.ShippingAddress.Country

	shippingName := order.ShippingName
	if shippingName == "" {
		shippingName = order.PayerName
	}
	shippingFirst, shippingLast := checkout.SplitFullName(shippingName)
	shipping := order.ShippingAddress
	shipping.FirstName = shippingFirst
	shipping.LastName = shippingLast

	return models.PaymentRecord{
		Provider:      "paypal",
		Reference:     order.ID,
		TransactionID: order.CaptureID,
		Paid:          order.CaptureStatus == "COMPLETED",
		Method:        models.PaymentMethodPayPal,
		Billing:       billing,
		Shipping:      shipping,
	}
}
