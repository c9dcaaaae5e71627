/**
 * @description
 * This package provides a client for the PayPal Orders API. It encapsulates the
 * client-credentials token exchange and the two order operations the donation
 * flow needs: creating a capture-intent order and capturing an approved order.
 *
 * The provider owns all order state (approval, fraud checks, settlement); this
 * client is stateless and fetches a fresh access token on every invocation, so
 * there is no token cache to invalidate at the cost of one extra round trip per
 * call. Order and capture responses are returned as raw JSON so callers can
 * pass them through to the browser unchanged.
 *
 * @dependencies
 * - bytes, context, encoding/json, net/http, net/url, time: Standard Go libraries.
 */
package paypalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PayPal REST API base URLs. The sandbox URL is the default; production is
// selected through configuration, not code.
const (
	SandboxAPIBaseURL = "https://api-m.sandbox.paypal.com"
	LiveAPIBaseURL    = "https://api-m.paypal.com"
)

// CurrencyCode is fixed for all donation orders.
const CurrencyCode = "USD"

// Sentinel errors identifying which outbound call failed. The HTTP layer maps
// these to client-facing messages without exposing the provider's payload.
var (
	ErrTokenExchange = errors.New("paypal token exchange failed")
	ErrCreateOrder   = errors.New("paypal order creation failed")
	ErrCaptureOrder  = errors.New("paypal capture failed")
)

// Client is a client for the PayPal Orders API.
type Client struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
}

// NewClient creates a new PayPal API client.
func NewClient(baseURL, clientID, clientSecret string) *Client {
	return &Client{
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// orderRequest is the payload for POST /v2/checkout/orders.
type orderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

// purchaseUnit carries the donation amount plus the campaign id as an opaque
// correlation tag (custom_id) so provider records can be cross-referenced
// against ledger rows later.
type purchaseUnit struct {
	Amount      amount `json:"amount"`
	Description string `json:"description"`
	CustomID    string `json:"custom_id"`
}

// amount is the PayPal money object; the value is a decimal string.
type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// tokenResponse is the success response from the token endpoint.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AccessToken performs the client-credentials exchange against the provider's
// token endpoint using HTTP Basic authentication. No retry, no caching.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": []string{"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.ClientID, c.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("level=warn component=paypal_client op=token status=%d body=%s", resp.StatusCode, bodyBytes)
		return "", fmt.Errorf("%w: status %d", ErrTokenExchange, resp.StatusCode)
	}

	var token tokenResponse
	if err := json.Unmarshal(bodyBytes, &token); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrTokenExchange)
	}

	return token.AccessToken, nil
}

// CreateOrder obtains an access token and creates a capture-intent order for
// the given amount (decimal dollar string) tagged with the campaign id. The
// provider's order response is returned verbatim; it contains the
// provider-assigned order id the caller needs for the capture step.
func (c *Client) CreateOrder(ctx context.Context, amountValue, campaignID string) (json.RawMessage, error) {
	accessToken, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{
			{
				Amount: amount{
					CurrencyCode: CurrencyCode,
					Value:        amountValue,
				},
				Description: fmt.Sprintf("Donation to campaign: %s", campaignID),
				CustomID:    campaignID,
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v2/checkout/orders", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return c.doOrderCall(req, "create_order", ErrCreateOrder)
}

// CaptureOrder obtains an access token and captures a previously approved
// order by id. No idempotency key is sent; a double capture is rejected by the
// provider, not reconciled here. The provider's capture response is returned
// verbatim.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	accessToken, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	captureURL := fmt.Sprintf("%s/v2/checkout/orders/%s/capture", c.BaseURL, url.PathEscape(orderID))
	req, err := http.NewRequestWithContext(ctx, "POST", captureURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create capture request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return c.doOrderCall(req, "capture_order", ErrCaptureOrder)
}

// doOrderCall executes an order request and returns the raw response body. On
// a non-2xx status the provider's error payload is logged, never returned to
// the caller.
func (c *Client) doOrderCall(req *http.Request, op string, sentinel error) (json.RawMessage, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sentinel, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("level=warn component=paypal_client op=%s status=%d body=%s", op, resp.StatusCode, bodyBytes)
		return nil, fmt.Errorf("%w: status %d", sentinel, resp.StatusCode)
	}

	return json.RawMessage(bodyBytes), nil
}
