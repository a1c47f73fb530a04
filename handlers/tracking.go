package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/felixxplor/ecommerce-website-sub001/models"
)

// TrackingHandler looks an order up across multiple candidate backend
// URLs. Each attempt is time-boxed; a timeout, non-2xx status or non-JSON
// body falls through to the next candidate.
type TrackingHandler struct {
	candidates []string
	client     *http.Client
	logger     *zap.Logger
}

func NewTrackingHandler(logger *zap.Logger) *TrackingHandler {
	raw := os.Getenv("TRACKING_BASE_URLS")
	if raw == "" {
		raw = "http://localhost:8080/wp-json/shop/v1/track"
	}
	var candidates []string
	for _, u := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			candidates = append(candidates, trimmed)
		}
	}
	return NewTrackingHandlerWithCandidates(candidates, logger)
}

func NewTrackingHandlerWithCandidates(candidates []string, logger *zap.Logger) *TrackingHandler {
	return &TrackingHandler{
		candidates: candidates,
		client:     &http.Client{Timeout: 5 * time.Second},
		logger:     logger,
	}
}

func (h *TrackingHandler) TrackOrder(c *gin.Context) {
	ctx, span := otel.Tracer("checkout-service").Start(c.Request.Context(), "TrackOrder")
	defer span.End()

	orderID := c.Query("order_id")
	if orderID == "" {
		respondError(c, h.logger, &models.ValidationError{Message: "order_id is required"})
		return
	}

	span.SetAttributes(attribute.String("order.id", orderID))

	for _, base := range h.candidates {
		lookupURL := fmt.Sprintf("%s?order_id=%s", base, url.QueryEscape(orderID))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
		if err != nil {
			continue
		}
		resp, err := h.client.Do(req)
		if err != nil {
			h.logger.Warn("Tracking candidate failed",
				zap.String("url", base),
				zap.Error(err),
			)
			continue
		}

		var payload map[string]any
		decodeErr := json.NewDecoder(resp.Body).Decode(&payload)
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 || decodeErr != nil {
			h.logger.Warn("Tracking candidate returned unusable response",
				zap.String("url", base),
				zap.Int("status", resp.StatusCode),
			)
			continue
		}

		c.JSON(http.StatusOK, payload)
		return
	}

	respondError(c, h.logger, &models.UpstreamUnavailable{
		Message: "order tracking is unavailable",
	})
}
