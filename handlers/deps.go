package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/felixxplor/ecommerce-website-sub001/commerce"
	"github.com/felixxplor/ecommerce-website-sub001/middleware"
	"github.com/felixxplor/ecommerce-website-sub001/models"
)

// StripeGateway is the slice of the card provider the handlers need.
type StripeGateway interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, methods []string, metadata map[string]string) (models.ProviderSession, error)
	CreateCheckoutSession(ctx context.Context, amountCents int64, currency string) (models.ProviderSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (models.SessionDetails, error)
}

// PayPalGateway is the alternative provider's order lifecycle.
type PayPalGateway interface {
	CreateOrder(ctx context.Context, amountCents int64, currency, returnURL, cancelURL, customID string) (models.ProviderOrder, error)
	GetOrder(ctx context.Context, orderID string) (models.ProviderOrder, error)
	CaptureOrder(ctx context.Context, orderID, requestID string) (models.ProviderOrder, error)
}

// CommerceBackend is the headless commerce API the orders live in.
type CommerceBackend interface {
	Checkout(ctx context.Context, wooSession string, input commerce.CheckoutInput) (commerce.CheckoutResult, error)
	EmptyCart(ctx context.Context, wooSession string) error
	UpdateOrderStatus(ctx context.Context, orderID int, status models.OrderStatus) error
	GetOrderStatus(ctx context.Context, orderID int) (models.OrderStatus, error)
}

// MetadataCache bridges checkout metadata across the provider round trip.
type MetadataCache interface {
	Set(ctx context.Context, sessionRef string, meta models.CheckoutMetadata) error
	Get(ctx context.Context, sessionRef string) (models.CheckoutMetadata, bool, error)
	Delete(ctx context.Context, sessionRef string) error
}

// ClaimStore maps payment references to the orders they produced.
type ClaimStore interface {
	Claim(ctx context.Context, paymentRef, provider string) (existingOrderID int, alreadyCreated bool, err error)
	SetOrderID(ctx context.Context, paymentRef string, orderID int) error
}

// respondError maps the error taxonomy onto the single JSON envelope.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	traceID := middleware.GetTraceID(c.Request.Context())

	var validationErr *models.ValidationError
	var authErr *models.AuthenticationError
	var notFoundErr *models.NotFoundError
	var providerErr *models.ProviderError
	var orderErr *models.OrderCreationError
	var upstreamErr *models.UpstreamUnavailable

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: validationErr.Message})
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: authErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: notFoundErr.Error()})
	case errors.As(err, &providerErr):
		logger.Error("Provider error", zap.String("trace_id", traceID), zap.String("provider", providerErr.Provider), zap.String("body", providerErr.Body), zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: providerErr.Message, Details: providerErr.Body})
	case errors.As(err, &orderErr):
		logger.Error("Order creation failed", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: orderErr.Message})
	case errors.As(err, &upstreamErr):
		logger.Error("Upstream unavailable", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: upstreamErr.Message})
	default:
		logger.Error("Unhandled error", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error", Details: err.Error()})
	}
}
