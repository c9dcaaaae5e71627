/**
 * @description
 * Donation models and DTOs. A donation is the ledger record written after the
 * payment provider confirms a capture; it carries the provider-assigned
 * payment id so rows can be cross-referenced against provider records.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Donation represents one completed contribution to a campaign. This struct
// maps directly to the `donations` table. DonorID is nil for anonymous
// donations made without an account.
type Donation struct {
	ID         uuid.UUID  `json:"id"`
	CampaignID uuid.UUID  `json:"campaign_id"`
	DonorID    *uuid.UUID `json:"donor_id,omitempty"`
	Amount     int64      `json:"amount"` // in cents
	PaymentID  string     `json:"payment_id"`
	Anonymous  bool       `json:"anonymous"`
	Message    *string    `json:"message,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// RecordDonationRequest is the DTO the web client posts after a successful
// provider-side capture. Amount is a decimal dollar string as rendered by the
// payment widget.
type RecordDonationRequest struct {
	CampaignID string `json:"campaign_id"`
	Amount     string `json:"amount"`
	PaymentID  string `json:"payment_id"`
	Anonymous  bool   `json:"anonymous"`
	Message    string `json:"message,omitempty"`
}

// DashboardSummary aggregates the signed-in user's campaigns and donations for
// the dashboard page.
type DashboardSummary struct {
	Campaigns     []*Campaign `json:"campaigns"`
	Donations     []*Donation `json:"donations"`
	TotalRaised   int64       `json:"total_raised"`  // across the user's campaigns, in cents
	TotalDonated  int64       `json:"total_donated"` // by the user, in cents
	ActiveCount   int         `json:"active_count"`
	DonationCount int         `json:"donation_count"`
}
