package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/felixxplor/ecommerce-website-sub001/models"
)

// Client speaks WooGraphQL to the commerce backend. The shopper's cart is
// addressed by the woocommerce-session token sent as a request header; the
// backend resolves mutations against that cart.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(logger *zap.Logger) *Client {
	endpoint := os.Getenv("WOO_GRAPHQL_URL")
	if endpoint == "" {
		endpoint = "http://localhost:8080/graphql"
	}
	return NewClientWithEndpoint(endpoint, logger)
}

func NewClientWithEndpoint(endpoint string, logger *zap.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, wooSession string, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if wooSession != "" {
		req.Header.Set("woocommerce-session", "Session "+wooSession)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.UpstreamUnavailable{Message: fmt.Sprintf("commerce backend unreachable: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &models.UpstreamUnavailable{Message: fmt.Sprintf("failed to read backend response: %v", err)}
	}
	if resp.StatusCode >= 500 {
		return &models.UpstreamUnavailable{Message: fmt.Sprintf("commerce backend returned status %d", resp.StatusCode)}
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return &models.UpstreamUnavailable{Message: fmt.Sprintf("backend returned non-JSON response: %v", err)}
	}
	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		c.logger.Warn("Commerce backend returned errors",
			zap.Strings("messages", messages),
		)
		return fmt.Errorf("backend rejected request: %s", strings.Join(messages, "; "))
	}
	if out != nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode backend data: %w", err)
		}
	}
	return nil
}

// MetaEntry is an order meta key/value pair carried through checkout.
type MetaEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CheckoutInput is the order-creation mutation input. ClientMutationID is
// the payment reference so the backend can deduplicate replays of the same
// payment.
type CheckoutInput struct {
	ClientMutationID       string
	PaymentMethod          string
	IsPaid                 bool
	TransactionID          string
	Billing                models.Address
	Shipping               models.Address
	ShipToDifferentAddress bool
	MetaData               []MetaEntry
	CustomerNote           string
}

type CheckoutResult struct {
	OrderID  int
	OrderKey string
	Status   models.OrderStatus
}

const checkoutMutation = `
mutation Checkout($input: CheckoutInput!) {
  checkout(input: $input) {
    order {
      databaseId
      orderKey
      status
    }
    result
  }
}`

func addressInput(a models.Address) map[string]any {
	return map[string]any{
		"firstName": a.FirstName,
		"lastName":  a.LastName,
		"address1":  a.Address1,
		"address2":  a.Address2,
		"city":      a.City,
		"state":     a.State,
		"postcode":  a.Postcode,
		"country":   a.Country,
		"email":     a.Email,
		"phone":     a.Phone,
	}
}

// Checkout submits the order-creation mutation scoped to the cart session.
// A transport-level success that yields no order id becomes an
// OrderCreationError: the backend rejected the order (e.g. stock ran out)
// and the caller must treat it as a hard failure.
func (c *Client) Checkout(ctx context.Context, wooSession string, input CheckoutInput) (CheckoutResult, error) {
	meta := make([]map[string]string, 0, len(input.MetaData))
	for _, m := range input.MetaData {
		meta = append(meta, map[string]string{"key": m.Key, "value": m.Value})
	}

	variables := map[string]any{
		"input": map[string]any{
			"clientMutationId":       input.ClientMutationID,
			"paymentMethod":          input.PaymentMethod,
			"isPaid":                 input.IsPaid,
			"transactionId":          input.TransactionID,
			"billing":                addressInput(input.Billing),
			"shipping":               addressInput(input.Shipping),
			"shipToDifferentAddress": input.ShipToDifferentAddress,
			"metaData":               meta,
			"customerNote":           input.CustomerNote,
		},
	}

	var data struct {
		Checkout struct {
			Order struct {
				DatabaseID int    `json:"databaseId"`
				OrderKey   string `json:"orderKey"`
				Status     string `json:"status"`
			} `json:"order"`
			Result string `json:"result"`
		} `json:"checkout"`
	}
	if err := c.do(ctx, wooSession, checkoutMutation, variables, &data); err != nil {
		return CheckoutResult{}, err
	}

	if data.Checkout.Order.DatabaseID == 0 {
		return CheckoutResult{}, &models.OrderCreationError{
			Message: fmt.Sprintf("backend returned no order id (result=%q)", data.Checkout.Result),
		}
	}

	status, ok := models.ParseOrderStatus(data.Checkout.Order.Status)
	if !ok {
		status = models.OrderStatusPending
	}
	return CheckoutResult{
		OrderID:  data.Checkout.Order.DatabaseID,
		OrderKey: data.Checkout.Order.OrderKey,
		Status:   status,
	}, nil
}

const emptyCartMutation = `
mutation EmptyCart($input: EmptyCartInput!) {
  emptyCart(input: $input) {
    clearedCart {
      contents {
        itemCount
      }
    }
  }
}`

func (c *Client) EmptyCart(ctx context.Context, wooSession string) error {
	variables := map[string]any{
		"input": map[string]any{"clearPersistentCart": true},
	}
	return c.do(ctx, wooSession, emptyCartMutation, variables, nil)
}

const updateOrderMutation = `
mutation UpdateOrder($input: UpdateOrderInput!) {
  updateOrder(input: $input) {
    order {
      databaseId
      status
    }
  }
}`

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int, status models.OrderStatus) error {
	variables := map[string]any{
		"input": map[string]any{
			"orderId": orderID,
			"status":  status.GraphQL(),
		},
	}

	var data struct {
		UpdateOrder struct {
			Order struct {
				DatabaseID int    `json:"databaseId"`
				Status     string `json:"status"`
			} `json:"order"`
		} `json:"updateOrder"`
	}
	if err := c.do(ctx, "", updateOrderMutation, variables, &data); err != nil {
		return err
	}
	if data.UpdateOrder.Order.DatabaseID == 0 {
		return &models.NotFoundError{Resource: "order", ID: fmt.Sprintf("%d", orderID)}
	}
	return nil
}

const orderStatusQuery = `
query OrderStatus($id: ID!) {
  order(id: $id, idType: DATABASE_ID) {
    databaseId
    status
  }
}`

func (c *Client) GetOrderStatus(ctx context.Context, orderID int) (models.OrderStatus, error) {
	variables := map[string]any{"id": orderID}

	var data struct {
		Order *struct {
			DatabaseID int    `json:"databaseId"`
			Status     string `json:"status"`
		} `json:"order"`
	}
	if err := c.do(ctx, "", orderStatusQuery, variables, &data); err != nil {
		return "", err
	}
	if data.Order == nil || data.Order.DatabaseID == 0 {
		return "", &models.NotFoundError{Resource: "order", ID: fmt.Sprintf("%d", orderID)}
	}

	status, ok := models.ParseOrderStatus(data.Order.Status)
	if !ok {
		return "", fmt.Errorf("backend returned unknown order status %q", data.Order.Status)
	}
	return status, nil
}
