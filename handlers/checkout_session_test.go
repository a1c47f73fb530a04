package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/felixxplor/ecommerce-website-sub001/models"
)

func setupSessionTest(t *testing.T, stripe *fakeStripe) (*memCache, *gin.Engine) {
	t.Helper()
	store := newMemCache()
	handler := NewCheckoutSessionHandler(stripe, store, zaptest.NewLogger(t))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/checkout-session", handler.CreateCheckoutSession)
	router.GET("/checkout-session", handler.GetCheckoutSession)
	return store, router
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotAmount int64
	stripe := &fakeStripe{
		createCheckoutSessionFunc: func(ctx context.Context, amountCents int64, currency string) (models.ProviderSession, error) {
			gotAmount = amountCents
			return models.ProviderSession{ID: "cs_1", ClientSecret: "cs_secret_1"}, nil
		},
	}
	store, router := setupSessionTest(t, stripe)

	w := postJSON(t, router, "/checkout-session", models.CheckoutSessionRequest{Amount: "1,234.50"})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (%s)", w.Code, w.Body.String())
	}
	if gotAmount != 123450 {
		t.Errorf("amount_cents = %d, want 123450", gotAmount)
	}

	var resp models.CheckoutSessionResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.SessionID != "cs_1" || resp.ClientSecret != "cs_secret_1" {
		t.Errorf("response = %+v", resp)
	}

	if _, ok, _ := store.Get(context.Background(), "cs_1"); !ok {
		t.Errorf("checkout metadata not cached under the session id")
	}
}

func TestCreateCheckoutSession_InvalidAmount(t *testing.T) {
	_, router := setupSessionTest(t, &fakeStripe{})

	w := postJSON(t, router, "/checkout-session", models.CheckoutSessionRequest{Amount: "free"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestGetCheckoutSession_Paid(t *testing.T) {
	stripe := &fakeStripe{
		getCheckoutSessionFunc: func(ctx context.Context, sessionID string) (models.SessionDetails, error) {
			return models.SessionDetails{
				ID:            sessionID,
				Status:        "complete",
				PaymentStatus: "paid",
				AmountTotal:   12345,
				Currency:      "aud",
			}, nil
		},
	}
	_, router := setupSessionTest(t, stripe)

	req := httptest.NewRequest(http.MethodGet, "/checkout-session?session_id=cs_1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (%s)", w.Code, w.Body.String())
	}

	var resp models.CheckoutSessionStatusResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Success || resp.SessionID != "cs_1" || resp.AmountTotal != 12345 {
		t.Errorf("response = %+v", resp)
	}
}

func TestGetCheckoutSession_Unpaid(t *testing.T) {
	stripe := &fakeStripe{
		getCheckoutSessionFunc: func(ctx context.Context, sessionID string) (models.SessionDetails, error) {
			return models.SessionDetails{ID: sessionID, Status: "open", PaymentStatus: "unpaid"}, nil
		},
	}
	_, router := setupSessionTest(t, stripe)

	req := httptest.NewRequest(http.MethodGet, "/checkout-session?session_id=cs_1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400 for an unpaid session, got %d", w.Code)
	}

	var resp models.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "payment not completed" || resp.Details != "unpaid" {
		t.Errorf("error envelope = %+v", resp)
	}
}

func TestGetCheckoutSession_MissingSessionID(t *testing.T) {
	_, router := setupSessionTest(t, &fakeStripe{})

	req := httptest.NewRequest(http.MethodGet, "/checkout-session", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}
