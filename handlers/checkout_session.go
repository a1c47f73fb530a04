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

type CheckoutSessionHandler struct {
	stripe StripeGateway
	store  MetadataCache
	logger *zap.Logger
}

func NewCheckoutSessionHandler(stripe StripeGateway, store MetadataCache, logger *zap.Logger) *CheckoutSessionHandler {
	return &CheckoutSessionHandler{stripe: stripe, store: store, logger: logger}
}

func (h *CheckoutSessionHandler) CreateCheckoutSession(c *gin.Context) {
	ctx, span := otel.Tracer("checkout-service").Start(c.Request.Context(), "CreateCheckoutSession")
	defer span.End()

	var req models.CheckoutSessionRequest
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

	span.SetAttributes(attribute.Int64("payment.amount_cents", amountCents))

	session, err := h.stripe.CreateCheckoutSession(ctx, amountCents, currency)
	if err != nil {
		span.RecordError(err)
		middleware.RecordPaymentSession("stripe", "failed")
		respondError(c, h.logger, err)
		return
	}

	meta := models.CheckoutMetadata{
		AmountCents: amountCents,
		Currency:    currency,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.store.Set(ctx, session.ID, meta); err != nil {
		h.logger.Warn("Failed to cache checkout metadata",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}

	middleware.RecordPaymentSession("stripe", "created")

	c.JSON(http.StatusOK, models.CheckoutSessionResponse{
		ClientSecret: session.ClientSecret,
		SessionID:    session.ID,
	})
}

// GetCheckoutSession reports a completed session back to the client. An
// unpaid session is a 400: callers poll this after the provider redirect
// and must not treat an abandoned payment as success.
func (h *CheckoutSessionHandler) GetCheckoutSession(c *gin.Context) {
	ctx, span := otel.Tracer("checkout-service").Start(c.Request.Context(), "GetCheckoutSession")
	defer span.End()

	sessionID := c.Query("session_id")
	if sessionID == "" {
		respondError(c, h.logger, &models.ValidationError{Message: "session_id is required"})
		return
	}

	span.SetAttributes(attribute.String("payment.session_id", sessionID))

	details, err := h.stripe.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}

	if details.PaymentStatus != "paid" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "payment not completed",
			Details: details.PaymentStatus,
		})
		return
	}

	c.JSON(http.StatusOK, models.CheckoutSessionStatusResponse{
		Success:     true,
		SessionID:   details.ID,
		Status:      details.Status,
		AmountTotal: details.AmountTotal,
		Currency:    details.Currency,
	})
}
