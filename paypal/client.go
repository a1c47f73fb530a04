package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/felixxplor/ecommerce-website-sub001/models"
)

// Client talks to the PayPal Orders v2 REST API. OAuth tokens are cached
// until shortly before expiry; captures carry a PayPal-Request-Id header so
// retries of the same capture are deduplicated provider-side.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(logger *zap.Logger) *Client {
	base := os.Getenv("PAYPAL_BASE_URL")
	if base == "" {
		base = "https://api-m.sandbox.paypal.com"
	}
	return NewClientWithBaseURL(base, os.Getenv("PAYPAL_CLIENT_ID"), os.Getenv("PAYPAL_CLIENT_SECRET"), logger)
}

func NewClientWithBaseURL(baseURL, clientID, clientSecret string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		logger:       logger,
	}
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &models.UpstreamUnavailable{Message: fmt.Sprintf("paypal token request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &models.ProviderError{Provider: "paypal", Message: "token request rejected", Body: string(body)}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode paypal token response: %w", err)
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)
	return c.accessToken, nil
}

// orderResponse is the subset of the Orders v2 payload the flow reads.
type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
	Payer struct {
		Name struct {
			GivenName string `json:"given_name"`
			Surname   string `json:"surname"`
		} `json:"name"`
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
	PurchaseUnits []struct {
		Shipping struct {
			Name struct {
				FullName string `json:"full_name"`
			} `json:"name"`
			Address struct {
				AddressLine1 string `json:"address_line_1"`
				AddressLine2 string `json:"address_line_2"`
				AdminArea2   string `json:"admin_area_2"`
				AdminArea1   string `json:"admin_area_1"`
				PostalCode   string `json:"postal_code"`
				CountryCode  string `json:"country_code"`
			} `json:"address"`
		} `json:"shipping"`
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (r orderResponse) toProviderOrder() models.ProviderOrder {
	order := models.ProviderOrder{
		ID:         r.ID,
		Status:     r.Status,
		PayerEmail: r.Payer.EmailAddress,
	}
	order.PayerName = strings.TrimSpace(r.Payer.Name.GivenName + " " + r.Payer.Name.Surname)
	for _, link := range r.Links {
		if link.Rel == "approve" {
			order.ApprovalURL = link.Href
		}
	}
	if len(r.PurchaseUnits) > 0 {
		unit := r.PurchaseUnits[0]
		order.ShippingName = unit.Shipping.Name.FullName
		order.ShippingAddress = models.Address{
			Address1: unit.Shipping.Address.AddressLine1,
			Address2: unit.Shipping.Address.AddressLine2,
			City:     unit.Shipping.Address.AdminArea2,
			State:    unit.Shipping.Address.AdminArea1,
			Postcode: unit.Shipping.Address.PostalCode,
			Country:  unit.Shipping.Address.CountryCode,
		}
		if len(unit.Payments.Captures) > 0 {
			order.CaptureID = unit.Payments.Captures[0].ID
			order.CaptureStatus = unit.Payments.Captures[0].Status
		}
	}
	return order
}

// CreateOrder opens a CAPTURE-intent order. customID rides along in the
// purchase unit so the cart token survives the approval round trip even if
// the local metadata cache entry expires.
func (c *Client) CreateOrder(ctx context.Context, amountCents int64, currency, returnURL, cancelURL, customID string) (models.ProviderOrder, error) {
	value := decimal.NewFromInt(amountCents).Div(decimal.NewFromInt(100)).StringFixed(2)
	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{
				"amount": map[string]string{
					"currency_code": currency,
					"value":         value,
				},
				"custom_id": customID,
			},
		},
		"application_context": map[string]string{
			"return_url": returnURL,
			"cancel_url": cancelURL,
		},
	}

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", "", payload, &resp); err != nil {
		return models.ProviderOrder{}, err
	}
	return resp.toProviderOrder(), nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (models.ProviderOrder, error) {
	var resp orderResponse
	if err := c.do(ctx, http.MethodGet, "/v2/checkout/orders/"+orderID, "", nil, &resp); err != nil {
		return models.ProviderOrder{}, err
	}
	return resp.toProviderOrder(), nil
}

// CaptureOrder captures an approved order. requestID becomes the
// PayPal-Request-Id idempotency key.
func (c *Client) CaptureOrder(ctx context.Context, orderID, requestID string) (models.ProviderOrder, error) {
	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders/"+orderID+"/capture", requestID, map[string]any{}, &resp); err != nil {
		return models.ProviderOrder{}, err
	}
	return resp.toProviderOrder(), nil
}

func (c *Client) do(ctx context.Context, method, path, requestID string, payload, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("PayPal-Request-Id", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.UpstreamUnavailable{Message: fmt.Sprintf("paypal request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return &models.NotFoundError{Resource: "paypal order", ID: strings.TrimPrefix(path, "/v2/checkout/orders/")}
	}
	if resp.StatusCode >= 400 {
		c.logger.Warn("PayPal request rejected",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		return &models.ProviderError{Provider: "paypal", Message: fmt.Sprintf("request failed with status %d", resp.StatusCode), Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode paypal response: %w", err)
		}
	}
	return nil
}
