/**
 * @description
 * This file contains the HTTP handlers for the campaign and donation API
 * endpoints. Handlers are responsible for parsing incoming requests, calling
 * the appropriate methods on the application service, and writing the HTTP
 * response. They act as the bridge between the web layer and the business
 * logic layer.
 *
 * @dependencies
 * - encoding/json, errors, log, net, net/http: Standard Go libraries.
 * - github.com/go-chi/chi/v5: For URL parameter extraction.
 * - github.com/google/uuid: For parsing user identifiers.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Sumit6569/Crowdfunding/internal/app"
	"github.com/Sumit6569/Crowdfunding/internal/domain"
	"github.com/Sumit6569/Crowdfunding/internal/store"
)

// CampaignHandlers holds the application service that handlers will use.
type CampaignHandlers struct {
	service *app.Service
}

// NewCampaignHandlers creates a new instance of CampaignHandlers.
func NewCampaignHandlers(service *app.Service) *CampaignHandlers {
	return &CampaignHandlers{service: service}
}

// ListCampaignsHandler handles GET /campaigns with optional category, search,
// sort, and status query parameters.
func (h *CampaignHandlers) ListCampaignsHandler(w http.ResponseWriter, r *http.Request) {
	filter := domain.CampaignFilter{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Sort:     r.URL.Query().Get("sort"),
	}

	campaigns, err := h.service.ListCampaigns(r.Context(), filter)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_campaigns outcome=failed err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load campaigns")
		return
	}

	h.writeJSON(w, http.StatusOK, campaigns)
}

// GetCampaignHandler handles GET /campaigns/{id}.
func (h *CampaignHandlers) GetCampaignHandler(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	detail, err := h.service.GetCampaign(r.Context(), campaignID)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCampaignID) {
			h.writeError(w, http.StatusBadRequest, "Invalid campaign id")
			return
		}
		if errors.Is(err, store.ErrCampaignNotFound) {
			h.writeError(w, http.StatusNotFound, "Campaign not found")
			return
		}
		log.Printf("level=error component=api endpoint=get_campaign outcome=failed campaign_id=%s err=%v", campaignID, err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load campaign")
		return
	}

	h.writeJSON(w, http.StatusOK, detail)
}

// ListCampaignDonationsHandler handles GET /campaigns/{id}/donations.
func (h *CampaignHandlers) ListCampaignDonationsHandler(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	donations, err := h.service.ListCampaignDonations(r.Context(), campaignID)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCampaignID) {
			h.writeError(w, http.StatusBadRequest, "Invalid campaign id")
			return
		}
		if errors.Is(err, store.ErrCampaignNotFound) {
			h.writeError(w, http.StatusNotFound, "Campaign not found")
			return
		}
		log.Printf("level=error component=api endpoint=list_campaign_donations outcome=failed campaign_id=%s err=%v", campaignID, err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load donations")
		return
	}

	h.writeJSON(w, http.StatusOK, donations)
}

// CreateCampaignHandler handles POST /campaigns. Requires authentication.
func (h *CampaignHandlers) CreateCampaignHandler(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}

	var req domain.CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=create_campaign outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	campaign, err := h.service.CreateCampaign(r.Context(), creatorID, req)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidTitle),
			errors.Is(err, app.ErrInvalidDescription),
			errors.Is(err, app.ErrInvalidTargetAmount),
			errors.Is(err, app.ErrInvalidEndDate):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("level=error component=api endpoint=create_campaign outcome=failed creator_id=%s err=%v", creatorID, err)
			h.writeError(w, http.StatusInternalServerError, "Failed to create campaign")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, campaign)
}

// RecordDonationHandler handles POST /donations: the ledger write the web
// client makes after the payment gateway confirms a capture. Anonymous
// donations are accepted, so authentication is optional here.
func (h *CampaignHandlers) RecordDonationHandler(w http.ResponseWriter, r *http.Request) {
	var donorID *uuid.UUID
	subject := clientAddress(r)
	if userIDStr, ok := GetAuthUserID(r.Context()); ok {
		parsed, err := uuid.Parse(userIDStr)
		if err != nil {
			log.Printf("level=warn component=api endpoint=record_donation outcome=reject reason=invalid_user_id user_id=%s", userIDStr)
			h.writeError(w, http.StatusBadRequest, "Invalid user ID format")
			return
		}
		donorID = &parsed
		subject = parsed.String()
	}

	var req domain.RecordDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=record_donation outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	donation, err := h.service.RecordDonation(r.Context(), donorID, subject, req)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidCampaignID),
			errors.Is(err, app.ErrInvalidAmount),
			errors.Is(err, app.ErrMissingPaymentID):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrCampaignNotFound):
			h.writeError(w, http.StatusNotFound, "Campaign not found")
		case errors.Is(err, store.ErrCampaignInactive), errors.Is(err, store.ErrDuplicatePayment):
			h.writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, app.ErrDonationRateLimited):
			h.writeError(w, http.StatusTooManyRequests, err.Error())
		default:
			log.Printf("level=error component=api endpoint=record_donation outcome=failed campaign_id=%s err=%v", req.CampaignID, err)
			h.writeError(w, http.StatusInternalServerError, "Failed to record donation")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, donation)
}

// DashboardHandler handles GET /dashboard. Requires authentication.
func (h *CampaignHandlers) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.service.GetDashboard(r.Context(), userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=dashboard outcome=failed user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

// authenticatedUserID pulls the auth subject from the context and parses it as
// a UUID, writing the error response itself on failure.
func (h *CampaignHandlers) authenticatedUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		log.Printf("level=warn component=api outcome=reject reason=invalid_user_id user_id=%s", userIDStr)
		h.writeError(w, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

// clientAddress returns the caller's host without port, used as the anonymous
// rate-limit subject.
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeJSON is a helper for writing JSON responses.
func (h *CampaignHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("level=error component=api msg=\"failed to encode response\" err=%v", err)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *CampaignHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
