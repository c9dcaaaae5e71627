/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the crowdfunding backend. Defining an interface
 * decouples the business logic from the PostgreSQL implementation and lets tests
 * substitute an in-memory fake.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/Sumit6569/Crowdfunding/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Campaign methods
	CreateCampaign(ctx context.Context, campaign *domain.Campaign) error
	GetCampaign(ctx context.Context, campaignID uuid.UUID) (*domain.CampaignDetail, error)
	ListCampaigns(ctx context.Context, filter domain.CampaignFilter) ([]*domain.Campaign, error)
	ListCampaignsByCreator(ctx context.Context, creatorID uuid.UUID) ([]*domain.Campaign, error)

	// Donation methods. RecordDonation inserts the donation row and increments
	// the campaign's current_amount inside a single database transaction.
	RecordDonation(ctx context.Context, donation *domain.Donation) error
	ListDonationsByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*domain.Donation, error)
	ListDonationsByDonor(ctx context.Context, donorID uuid.UUID) ([]*domain.Donation, error)
}
