/**
 * @description
 * This file defines the core domain models for the crowdfunding backend.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Using distinct types for API requests and database models keeps the web
 *   layer decoupled from the persistence layer.
 * - Monetary amounts are stored as `int64` in cents to avoid floating-point
 *   inaccuracies; the API accepts decimal dollar strings and converts at the edge.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Campaign statuses as persisted in the `campaigns` table.
const (
	CampaignStatusActive    = "active"
	CampaignStatusCompleted = "completed"
	CampaignStatusCancelled = "cancelled"
)

// Sort keys accepted by the campaign listing endpoint.
const (
	SortNewest     = "newest"
	SortMostFunded = "mostFunded"
	SortEndingSoon = "endingSoon"
)

// Campaign represents a fundraising project record. This struct maps directly
// to the `campaigns` table in the database.
type Campaign struct {
	ID            uuid.UUID `json:"id"`
	CreatorID     uuid.UUID `json:"creator_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Location      string    `json:"location"`
	ImageURL      string    `json:"image_url"`
	TargetAmount  int64     `json:"target_amount"`  // in cents
	CurrentAmount int64     `json:"current_amount"` // in cents
	Status        string    `json:"status"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CampaignCreator is the public subset of the creator's profile embedded in a
// campaign detail response.
type CampaignCreator struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

// CampaignDetail is a campaign joined with its creator profile, returned by
// the campaign detail endpoint.
type CampaignDetail struct {
	Campaign
	Creator *CampaignCreator `json:"creator,omitempty"`
}

// CreateCampaignRequest is the DTO for incoming campaign creation API requests.
type CreateCampaignRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Location     string `json:"location"`
	ImageURL     string `json:"image_url"`
	TargetAmount string `json:"target_amount"` // decimal dollars, e.g. "15000.00"
	EndDate      string `json:"end_date"`      // RFC 3339
}

// CampaignFilter describes the listing query: status is always applied,
// category and search are optional, sort is one of the Sort* constants.
type CampaignFilter struct {
	Status   string
	Category string
	Search   string
	Sort     string
}
