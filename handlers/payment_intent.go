package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/felixxplor/ecommerce-website-sub001/checkout"
	"github.com/felixxplor/ecommerce-website-sub001/middleware"
	"github.com/felixxplor/ecommerce-website-sub001/models"
)

type PaymentIntentHandler struct {
	stripe StripeGateway
	store  MetadataCache
	logger *zap.Logger
}

func NewPaymentIntentHandler(stripe StripeGateway, store MetadataCache, logger *zap.Logger) *PaymentIntentHandler {
	return &PaymentIntentHandler{stripe: stripe, store: store, logger: logger}
}

// methodsForCheckoutType maps the requested checkout family onto provider
// payment method types. Unknown types fall back to card-only.
func methodsForCheckoutType(checkoutType string) []string {
	switch checkoutType {
	case "bnpl", "deferred":
		return []string{
			string(models.PaymentMethodCard),
			string(models.PaymentMethodKlarna),
			string(models.PaymentMethodAfterpay),
			string(models.PaymentMethodAffirm),
		}
	default:
		return []string{string(models.PaymentMethodCard)}
	}
}

func (h *PaymentIntentHandler) CreatePaymentIntent(c *gin.Context) {
	ctx, span := otel.Tracer("checkout-service").Start(c.Request.Context(), "CreatePaymentIntent")
	defer span.End()

	var req models.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	amountCents, err := checkout.ParseAmountToCents(req.Amount)
	if err != nil {
		respondError(c, h.logger, &models.ValidationError{Message: err.Error()})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "aud"
	}

	span.SetAttributes(
		attribute.Int64("payment.amount_cents", amountCents),
		attribute.String("payment.currency", currency),
		attribute.String("payment.checkout_type", req.CheckoutType),
	)

	metadata := map[string]string{}
	if req.SessionToken != "" {
		metadata["woo_session"] = req.SessionToken
	}

	session, err := h.stripe.CreatePaymentIntent(ctx, amountCents, currency, methodsForCheckoutType(req.CheckoutType), metadata)
	if err != nil {
		span.RecordError(err)
		middleware.RecordPaymentSession("stripe", "failed")
		respondError(c, h.logger, err)
		return
	}

	// The provider round trip does not reliably preserve custom metadata,
	// so the cart token is also parked in Redis under the intent id.
	meta := models.CheckoutMetadata{
		WooSession:   req.SessionToken,
		CheckoutType: req.CheckoutType,
		AmountCents:  amountCents,
		Currency:     currency,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.store.Set(ctx, session.ID, meta); err != nil {
		h.logger.Warn("Failed to cache checkout metadata",
			zap.String("payment_intent_id", session.ID),
			zap.Error(err),
		)
	}

	middleware.RecordPaymentSession("stripe", "created")
	h.logger.Info("Payment intent created",
		zap.String("trace_id", middleware.GetTraceID(ctx)),
		zap.String("payment_intent_id", session.ID),
		zap.Int64("amount_cents", amountCents),
	)

	c.JSON(http.StatusOK, models.PaymentIntentResponse{
		ClientSecret:    session.ClientSecret,
		PaymentIntentID: session.ID,
	})
}
