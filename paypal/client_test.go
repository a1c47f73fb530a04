package paypal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/felixxplor/ecommerce-website-sub001/models"
)

// fakePayPal serves the token endpoint plus whatever order routes the test
// registers, counting capture calls.
func fakePayPal(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("token endpoint called with %s", r.Method)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	})
	return httptest.NewServer(mux)
}

func TestCreateOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want Bearer test-token", got)
		}
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		units := payload["purchase_units"].([]any)
		amount := units[0].(map[string]any)["amount"].(map[string]any)
		if amount["value"] != "123.45" {
			t.Errorf("amount value = %v, want 123.45", amount["value"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "PP_ORDER_1",
			"status": "CREATED",
			"links": []map[string]string{
				{"href": "https://paypal.test/approve/PP_ORDER_1", "rel": "approve"},
			},
		})
	})
	srv := fakePayPal(t, mux)
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, "id", "secret", zaptest.NewLogger(t))
	order, err := client.CreateOrder(context.Background(), 12345, "AUD",
		"https://shop.test/return", "https://shop.test/cancel", "woo-session-token")
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if order.ID != "PP_ORDER_1" {
		t.Errorf("order.ID = %q, want PP_ORDER_1", order.ID)
	}
	if order.ApprovalURL != "https://paypal.test/approve/PP_ORDER_1" {
		t.Errorf("order.ApprovalURL = %q", order.ApprovalURL)
	}
}

func TestGetOrder_CompletedWithCapture(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders/PP_ORDER_1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "PP_ORDER_1",
			"status": "COMPLETED",
			"payer": map[string]any{
				"name":          map[string]string{"given_name": "John Michael", "surname": "Smith"},
				"email_address": "john@example.com",
			},
			"purchase_units": []map[string]any{
				{
					"shipping": map[string]any{
						"name": map[string]string{"full_name": "John Michael Smith"},
						"address": map[string]string{
							"address_line_1": "1 Collins St",
							"admin_area_2":   "Melbourne",
							"admin_area_1":   "VIC",
							"postal_code":    "3000",
							"country_code":   "AU",
						},
					},
					"payments": map[string]any{
						"captures": []map[string]string{
							{"id": "CAP123", "status": "COMPLETED"},
						},
					},
				},
			},
		})
	})
	srv := fakePayPal(t, mux)
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, "id", "secret", zaptest.NewLogger(t))
	order, err := client.GetOrder(context.Background(), "PP_ORDER_1")
	if err != nil {
		t.Fatalf("GetOrder returned error: %v", err)
	}
	if order.Status != "COMPLETED" {
		t.Errorf("order.Status = %q, want COMPLETED", order.Status)
	}
	if order.CaptureID != "CAP123" || order.CaptureStatus != "COMPLETED" {
		t.Errorf("capture = (%q, %q), want (CAP123, COMPLETED)", order.CaptureID, order.CaptureStatus)
	}
	if order.PayerName != "John Michael Smith" {
		t.Errorf("order.PayerName = %q", order.PayerName)
	}
	if order.ShippingAddress.City != "Melbourne" {
		t.Errorf("shipping city = %q, want Melbourne", order.ShippingAddress.City)
	}
}

func TestCaptureOrder_SendsIdempotencyKey(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders/PP_ORDER_1/capture", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("PayPal-Request-Id"); got != "txn-unique-1" {
			t.Errorf("PayPal-Request-Id = %q, want txn-unique-1", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "PP_ORDER_1",
			"status": "COMPLETED",
			"purchase_units": []map[string]any{
				{
					"payments": map[string]any{
						"captures": []map[string]string{
							{"id": "CAP123", "status": "COMPLETED"},
						},
					},
				},
			},
		})
	})
	srv := fakePayPal(t, mux)
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, "id", "secret", zaptest.NewLogger(t))
	order, err := client.CaptureOrder(context.Background(), "PP_ORDER_1", "txn-unique-1")
	if err != nil {
		t.Fatalf("CaptureOrder returned error: %v", err)
	}
	if order.CaptureID != "CAP123" {
		t.Errorf("order.CaptureID = %q, want CAP123", order.CaptureID)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := fakePayPal(t, mux)
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, "id", "secret", zaptest.NewLogger(t))
	_, err := client.GetOrder(context.Background(), "MISSING")
	if err == nil {
		t.Fatal("GetOrder expected error for missing order")
	}
	var notFound *models.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("GetOrder error = %T, want *models.NotFoundError", err)
	}
}
