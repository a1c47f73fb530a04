package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/felixxplor/ecommerce-website-sub001/models"
)

func TestCheckout_Success(t *testing.T) {
	var gotSession string
	var gotMutationID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSession = r.Header.Get("woocommerce-session")
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		input := req.Variables["input"].(map[string]any)
		gotMutationID, _ = input["clientMutationId"].(string)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"checkout": map[string]any{
					"order": map[string]any{
						"databaseId": 42,
						"orderKey":   "wc_order_abc",
						"status":     "PROCESSING",
					},
					"result": "success",
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClientWithEndpoint(srv.URL, zaptest.NewLogger(t))
	result, err := client.Checkout(context.Background(), "sess-token", CheckoutInput{
		ClientMutationID: "pi_123",
		PaymentMethod:    "stripe",
		IsPaid:           true,
	})
	if err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}
	if result.OrderID != 42 || result.Status != models.OrderStatusProcessing {
		t.Errorf("Checkout result = %+v, want order 42 processing", result)
	}
	if gotSession != "Session sess-token" {
		t.Errorf("woocommerce-session header = %q, want %q", gotSession, "Session sess-token")
	}
	if gotMutationID != "pi_123" {
		t.Errorf("clientMutationId = %q, want pi_123", gotMutationID)
	}
}

func TestCheckout_NoOrderID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"checkout": map[string]any{
					"order":  map[string]any{"databaseId": 0},
					"result": "failed",
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClientWithEndpoint(srv.URL, zaptest.NewLogger(t))
	_, err := client.Checkout(context.Background(), "sess-token", CheckoutInput{ClientMutationID: "pi_123"})

	var orderErr *models.OrderCreationError
	if !errors.As(err, &orderErr) {
		t.Fatalf("Checkout error = %T (%v), want *models.OrderCreationError", err, err)
	}
}

func TestCheckout_GraphQLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{{"message": "Not enough stock"}},
		})
	}))
	defer srv.Close()

	client := NewClientWithEndpoint(srv.URL, zaptest.NewLogger(t))
	_, err := client.Checkout(context.Background(), "sess-token", CheckoutInput{ClientMutationID: "pi_123"})
	if err == nil || !strings.Contains(err.Error(), "Not enough stock") {
		t.Errorf("Checkout error = %v, want backend message surfaced", err)
	}
}

func TestGetOrderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"order": map[string]any{"databaseId": 42, "status": "ON_HOLD"},
			},
		})
	}))
	defer srv.Close()

	client := NewClientWithEndpoint(srv.URL, zaptest.NewLogger(t))
	status, err := client.GetOrderStatus(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetOrderStatus returned error: %v", err)
	}
	if status != models.OrderStatusOnHold {
		t.Errorf("GetOrderStatus = %q, want on-hold", status)
	}
}

func TestGetOrderStatus_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"order": nil},
		})
	}))
	defer srv.Close()

	client := NewClientWithEndpoint(srv.URL, zaptest.NewLogger(t))
	_, err := client.GetOrderStatus(context.Background(), 999)

	var notFound *models.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("GetOrderStatus error = %T, want *models.NotFoundError", err)
	}
}

func TestDo_Backend500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClientWithEndpoint(srv.URL, zaptest.NewLogger(t))
	err := client.EmptyCart(context.Background(), "sess-token")

	var unavailable *models.UpstreamUnavailable
	if !errors.As(err, &unavailable) {
		t.Errorf("EmptyCart error = %T, want *models.UpstreamUnavailable", err)
	}
}
