package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sumit6569/Crowdfunding/pkg/paypalclient"
)

// providerStub implements PaymentProvider and records calls.
type providerStub struct {
	orderResponse   string
	captureResponse string
	err             error

	createCalls  int
	captureCalls int

	lastAmount     string
	lastCampaignID string
	lastOrderID    string
}

func (p *providerStub) CreateOrder(ctx context.Context, amount, campaignID string) (json.RawMessage, error) {
	p.createCalls++
	p.lastAmount = amount
	p.lastCampaignID = campaignID
	if p.err != nil {
		return nil, p.err
	}
	return json.RawMessage(p.orderResponse), nil
}

func (p *providerStub) CaptureOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	p.captureCalls++
	p.lastOrderID = orderID
	if p.err != nil {
		return nil, p.err
	}
	return json.RawMessage(p.captureResponse), nil
}

func gatewayRequest(t *testing.T, h *PaymentHandlers, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return body["error"]
}

func TestCreateOrderMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing amount", body: `{"campaignId":"c1"}`},
		{name: "missing campaignId", body: `{"amount":"25"}`},
		{name: "empty body", body: `{}`},
		{name: "zero amount", body: `{"amount":0,"campaignId":"c1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &providerStub{orderResponse: `{"id":"ORDER-1"}`}
			h := NewPaymentHandlers(stub)

			rec := gatewayRequest(t, h, http.MethodPost, "/payments/create-order", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if got := decodeError(t, rec); got != "Amount and campaignId are required" {
				t.Fatalf("unexpected error body: %q", got)
			}
			if stub.createCalls != 0 {
				t.Fatalf("expected no provider call on validation failure, got %d", stub.createCalls)
			}
		})
	}
}

func TestCapturePaymentMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing orderId", body: `{"campaignId":"c1","userId":"u1"}`},
		{name: "missing campaignId", body: `{"orderId":"o1","userId":"u1"}`},
		{name: "missing userId", body: `{"orderId":"o1","campaignId":"c1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &providerStub{captureResponse: `{"id":"o1"}`}
			h := NewPaymentHandlers(stub)

			rec := gatewayRequest(t, h, http.MethodPost, "/payments/capture-payment", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if got := decodeError(t, rec); got != "OrderId, campaignId, and userId are required" {
				t.Fatalf("unexpected error body: %q", got)
			}
			if stub.captureCalls != 0 {
				t.Fatalf("expected no provider call on validation failure, got %d", stub.captureCalls)
			}
		})
	}
}

func TestUnknownPathReturnsNotFound(t *testing.T) {
	h := NewPaymentHandlers(&providerStub{})

	for _, target := range []string{"/payments/refund", "/payments", "/payments/create-order/extra"} {
		rec := gatewayRequest(t, h, http.MethodPost, target, `{}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for %s, got %d", target, rec.Code)
		}
		if got := decodeError(t, rec); got != "Not found" {
			t.Fatalf("unexpected error body for %s: %q", target, got)
		}
	}

	// Known path, wrong method.
	rec := gatewayRequest(t, h, http.MethodGet, "/payments/create-order", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for GET, got %d", rec.Code)
	}
}

func TestOptionsPreflightReturnsNoContent(t *testing.T) {
	h := NewPaymentHandlers(&providerStub{})

	for _, target := range []string{"/payments/create-order", "/payments/anything"} {
		rec := gatewayRequest(t, h, http.MethodOptions, target, "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204 for OPTIONS %s, got %d", target, rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Fatalf("expected empty preflight body, got %q", rec.Body.String())
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Fatal("expected permissive CORS origin header on preflight")
		}
		if rec.Header().Get("Access-Control-Allow-Headers") == "" {
			t.Fatal("expected CORS allow-headers header on preflight")
		}
	}
}

func TestCreateOrderPassesProviderResponseThrough(t *testing.T) {
	stub := &providerStub{orderResponse: `{"id":"ORDER-1","status":"CREATED","links":[]}`}
	h := NewPaymentHandlers(stub)

	rec := gatewayRequest(t, h, http.MethodPost, "/payments/create-order", `{"amount":"25","campaignId":"c1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != stub.orderResponse {
		t.Fatalf("expected verbatim provider body, got %q", rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected application/json content type, got %q", rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected CORS headers on success response")
	}
	if stub.lastAmount != "25" || stub.lastCampaignID != "c1" {
		t.Fatalf("unexpected provider arguments: amount=%q campaign=%q", stub.lastAmount, stub.lastCampaignID)
	}
}

func TestCreateOrderAcceptsNumericAmount(t *testing.T) {
	stub := &providerStub{orderResponse: `{"id":"ORDER-1"}`}
	h := NewPaymentHandlers(stub)

	rec := gatewayRequest(t, h, http.MethodPost, "/payments/create-order", `{"amount":25.5,"campaignId":"c1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.lastAmount != "25.5" {
		t.Fatalf("expected amount forwarded as string, got %q", stub.lastAmount)
	}
}

func TestCapturePaymentNotDeduplicated(t *testing.T) {
	stub := &providerStub{captureResponse: `{"id":"o1","status":"COMPLETED"}`}
	h := NewPaymentHandlers(stub)
	body := `{"orderId":"o1","campaignId":"c1","userId":"u1"}`

	for i := 0; i < 2; i++ {
		rec := gatewayRequest(t, h, http.MethodPost, "/payments/capture-payment", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 on attempt %d, got %d", i+1, rec.Code)
		}
		if rec.Body.String() != stub.captureResponse {
			t.Fatalf("expected verbatim capture body, got %q", rec.Body.String())
		}
	}

	if stub.captureCalls != 2 {
		t.Fatalf("expected capture forwarded twice, got %d calls", stub.captureCalls)
	}
	if stub.lastOrderID != "o1" {
		t.Fatalf("unexpected order id %q", stub.lastOrderID)
	}
}

func TestUpstreamFailuresReturnGenericError(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		body    string
		err     error
		message string
	}{
		{
			name:    "token exchange failure on create",
			target:  "/payments/create-order",
			body:    `{"amount":"25","campaignId":"c1"}`,
			err:     paypalclient.ErrTokenExchange,
			message: "Failed to get PayPal access token",
		},
		{
			name:    "order create failure",
			target:  "/payments/create-order",
			body:    `{"amount":"25","campaignId":"c1"}`,
			err:     paypalclient.ErrCreateOrder,
			message: "Failed to create PayPal order",
		},
		{
			name:    "capture failure",
			target:  "/payments/capture-payment",
			body:    `{"orderId":"o1","campaignId":"c1","userId":"u1"}`,
			err:     paypalclient.ErrCaptureOrder,
			message: "Failed to capture PayPal payment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPaymentHandlers(&providerStub{err: tt.err})

			rec := gatewayRequest(t, h, http.MethodPost, tt.target, tt.body)

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d", rec.Code)
			}
			if got := decodeError(t, rec); got != tt.message {
				t.Fatalf("expected generic message %q, got %q", tt.message, got)
			}
		})
	}
}
