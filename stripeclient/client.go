package stripeclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"

	"github.com/felixxplor/ecommerce-website-sub001/models"
)

// Client wraps the Stripe SDK behind plain result types so handlers can be
// tested against a fake gateway.
type Client struct {
	api    *client.API
	logger *zap.Logger
}

func NewClient(logger *zap.Logger) *Client {
	api := &client.API{}
	api.Init(os.Getenv("STRIPE_SECRET_KEY"), nil)
	return &Client{api: api, logger: logger}
}

func (c *Client) CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, methods []string, metadata map[string]string) (models.ProviderSession, error) {
	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(amountCents),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice(methods),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	intent, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return models.ProviderSession{}, providerError(err, "")
	}

	return models.ProviderSession{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       sessionStatus(string(intent.Status)),
	}, nil
}

func (c *Client) CreateCheckoutSession(ctx context.Context, amountCents int64, currency string) (models.ProviderSession, error) {
	returnURL := os.Getenv("CHECKOUT_RETURN_URL")
	if returnURL == "" {
		returnURL = "http://localhost:3000/checkout/return?session_id={CHECKOUT_SESSION_ID}"
	}

	params := &stripe.CheckoutSessionParams{
		Params:    stripe.Params{Context: ctx},
		UIMode:    stripe.String(string(stripe.CheckoutSessionUIModeEmbedded)),
		Mode:      stripe.String(string(stripe.CheckoutSessionModePayment)),
		ReturnURL: stripe.String(returnURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(amountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Order total"),
					},
				},
			},
		},
	}

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return models.ProviderSession{}, providerError(err, "")
	}

	return models.ProviderSession{
		ID:           session.ID,
		ClientSecret: session.ClientSecret,
		Status:       models.PaymentSessionCreated,
	}, nil
}

func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (models.SessionDetails, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
	}
	params.AddExpand("payment_intent")

	session, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return models.SessionDetails{}, providerError(err, sessionID)
	}

	details := models.SessionDetails{
		ID:            session.ID,
		Status:        string(session.Status),
		PaymentStatus: string(session.PaymentStatus),
		AmountTotal:   session.AmountTotal,
		Currency:      string(session.Currency),
	}
	if session.PaymentIntent != nil {
		details.PaymentIntentID = session.PaymentIntent.ID
	}
	if cd := session.CustomerDetails; cd != nil {
		details.CustomerName = cd.Name
		details.CustomerEmail = cd.Email
		details.CustomerPhone = cd.Phone
		details.BillingAddress = convertAddress(cd.Address)
	}
	if sd := session.ShippingDetails; sd != nil {
		details.ShippingName = sd.Name
		details.ShippingAddress = convertAddress(sd.Address)
	}
	return details, nil
}

func convertAddress(a *stripe.Address) models.Address {
	if a == nil {
		return models.Address{}
	}
	return models.Address{
		Address1: a.Line1,
		Address2: a.Line2,
		City:     a.City,
		State:    a.State,
		Postcode: a.PostalCode,
		Country:  a.Country,
	}
}

func sessionStatus(s string) models.PaymentSessionStatus {
	switch s {
	case "succeeded":
		return models.PaymentSessionSucceeded
	case "processing":
		return models.PaymentSessionProcessing
	case "canceled":
		return models.PaymentSessionFailed
	default:
		return models.PaymentSessionCreated
	}
}

// providerError keeps as much of Stripe's original error payload as
// possible and distinguishes missing resources from rejections.
func providerError(err error, resourceID string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode == http.StatusNotFound {
			return &models.NotFoundError{Resource: "stripe session", ID: resourceID}
		}
		return &models.ProviderError{
			Provider: "stripe",
			Message:  stripeErr.Msg,
			Body:     fmt.Sprintf("code=%s type=%s", stripeErr.Code, stripeErr.Type),
		}
	}
	return &models.ProviderError{Provider: "stripe", Message: err.Error()}
}
