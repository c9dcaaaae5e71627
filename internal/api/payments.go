/**
 * @description
 * This file contains the payment order gateway: the HTTP bridge between the
 * browser's donation widget and the PayPal Orders API. It exposes two
 * operations selected by the final path segment of the request URL —
 * create-order and capture-payment — plus CORS preflight handling.
 *
 * The gateway is stateless between calls and holds no order state; PayPal owns
 * the order lifecycle (created → payer approval in the hosted widget →
 * captured). After a successful capture the web client is responsible for
 * recording the donation through the /donations endpoint; the gateway has no
 * transactional coupling to that write.
 *
 * @dependencies
 * - context, encoding/json, errors, log, net/http, path, strconv, strings: Standard Go libraries.
 * - pkg/paypalclient: The PayPal Orders API client.
 */

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/Sumit6569/Crowdfunding/pkg/paypalclient"
)

// Exact error bodies the donation widget matches on.
const (
	errCreateOrderFields    = "Amount and campaignId are required"
	errCapturePaymentFields = "OrderId, campaignId, and userId are required"
	errNotFound             = "Not found"
)

// Permissive cross-origin allowances; the provider widget runs in the browser
// on a different origin.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
}

// PaymentProvider is the subset of the PayPal client the gateway uses.
// Declared as an interface so tests can substitute a stub provider.
type PaymentProvider interface {
	CreateOrder(ctx context.Context, amount, campaignID string) (json.RawMessage, error)
	CaptureOrder(ctx context.Context, orderID string) (json.RawMessage, error)
}

// PaymentHandlers is the payment order gateway handler. It implements
// http.Handler and routes on the trailing path segment.
type PaymentHandlers struct {
	provider PaymentProvider
}

// NewPaymentHandlers creates a new payment gateway handler.
func NewPaymentHandlers(provider PaymentProvider) *PaymentHandlers {
	return &PaymentHandlers{provider: provider}
}

// paymentRequest is the union body for both gateway operations. Amount is a
// json.Number so the widget can send it as either a JSON number or a numeric
// string.
type paymentRequest struct {
	Amount     json.Number `json:"amount"`
	CampaignID string      `json:"campaignId"`
	OrderID    string      `json:"orderId"`
	UserID     string      `json:"userId"`
}

// ServeHTTP routes gateway requests: OPTIONS preflight from any path, POST to
// the two known trailing segments, 404 for everything else.
func (h *PaymentHandlers) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeCORSHeaders(w)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method == http.MethodPost {
		switch path.Base(r.URL.Path) {
		case "create-order":
			h.createOrder(w, r)
			return
		case "capture-payment":
			h.capturePayment(w, r)
			return
		}
	}

	writePaymentError(w, http.StatusNotFound, errNotFound)
}

// createOrder validates the request and asks the provider to create a
// capture-intent order. The provider's order response is passed through
// unchanged; it carries the order id the widget needs for approval.
func (h *PaymentHandlers) createOrder(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=payments endpoint=create_order outcome=reject reason=invalid_json err=%v", err)
		writePaymentError(w, http.StatusBadRequest, errCreateOrderFields)
		return
	}

	amount := req.Amount.String()
	if !isPositiveAmount(amount) || strings.TrimSpace(req.CampaignID) == "" {
		writePaymentError(w, http.StatusBadRequest, errCreateOrderFields)
		return
	}

	order, err := h.provider.CreateOrder(r.Context(), amount, req.CampaignID)
	if err != nil {
		log.Printf("level=error component=payments endpoint=create_order outcome=failed campaign_id=%s err=%v", req.CampaignID, err)
		writePaymentError(w, http.StatusInternalServerError, upstreamErrorMessage(err, "Failed to create PayPal order"))
		return
	}

	log.Printf("level=info component=payments endpoint=create_order outcome=created campaign_id=%s amount=%s", req.CampaignID, amount)
	writePaymentJSON(w, http.StatusOK, order)
}

// capturePayment validates the request and asks the provider to capture a
// previously approved order. The capture response is the web client's trigger
// to write the donation to the ledger; nothing is persisted here.
func (h *PaymentHandlers) capturePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=payments endpoint=capture_payment outcome=reject reason=invalid_json err=%v", err)
		writePaymentError(w, http.StatusBadRequest, errCapturePaymentFields)
		return
	}

	if strings.TrimSpace(req.OrderID) == "" || strings.TrimSpace(req.CampaignID) == "" || strings.TrimSpace(req.UserID) == "" {
		writePaymentError(w, http.StatusBadRequest, errCapturePaymentFields)
		return
	}

	capture, err := h.provider.CaptureOrder(r.Context(), req.OrderID)
	if err != nil {
		log.Printf("level=error component=payments endpoint=capture_payment outcome=failed order_id=%s campaign_id=%s err=%v", req.OrderID, req.CampaignID, err)
		writePaymentError(w, http.StatusInternalServerError, upstreamErrorMessage(err, "Failed to capture PayPal payment"))
		return
	}

	log.Printf("level=info component=payments endpoint=capture_payment outcome=captured order_id=%s campaign_id=%s user_id=%s", req.OrderID, req.CampaignID, req.UserID)
	writePaymentJSON(w, http.StatusOK, capture)
}

// isPositiveAmount reports whether the amount string parses as a positive
// decimal. An absent amount decodes to the empty string and fails here, so no
// network call is made for it.
func isPositiveAmount(amount string) bool {
	value, err := strconv.ParseFloat(amount, 64)
	return err == nil && value > 0
}

// upstreamErrorMessage maps a provider error to the generic client-facing
// message, keeping the provider's payload out of the response.
func upstreamErrorMessage(err error, fallback string) string {
	if errors.Is(err, paypalclient.ErrTokenExchange) {
		return "Failed to get PayPal access token"
	}
	return fallback
}

func writeCORSHeaders(w http.ResponseWriter) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}
}

func writePaymentJSON(w http.ResponseWriter, status int, body json.RawMessage) {
	writeCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writePaymentError(w http.ResponseWriter, status int, message string) {
	writeCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
