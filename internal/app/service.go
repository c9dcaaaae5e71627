/**
 * @description
 * This file contains the core business logic for the crowdfunding backend. The
 * `Service` struct orchestrates campaign and donation operations, coordinating
 * between the database repository and the message broker.
 *
 * Key features:
 * - Campaign creation with validation (title, target amount, end date).
 * - Campaign listing with category/search filters and sort keys.
 * - Donation recording: the ledger write the web client performs after the
 *   payment provider confirms a capture. The payment gateway itself never
 *   touches the ledger; this service is the caller-side collaborator.
 * - Publishes donation.recorded events to RabbitMQ for asynchronous consumers.
 *
 * @dependencies
 * - context, errors, log, math, strconv, strings, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID generation.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/rabbitmq: For event publishing.
 */

package app

import (
	"context"
	"errors"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sumit6569/Crowdfunding/internal/domain"
	"github.com/Sumit6569/Crowdfunding/internal/store"
	"github.com/Sumit6569/Crowdfunding/pkg/rabbitmq"
)

var (
	ErrInvalidTitle        = errors.New("campaign title is required")
	ErrInvalidDescription  = errors.New("campaign description is required")
	ErrInvalidTargetAmount = errors.New("target amount must be a positive number")
	ErrInvalidEndDate      = errors.New("end date must be in the future")
	ErrInvalidCampaignID   = errors.New("invalid campaign id")
	ErrInvalidAmount       = errors.New("donation amount must be a positive number")
	ErrMissingPaymentID    = errors.New("payment id is required")
	ErrDonationRateLimited = errors.New("too many donation attempts; slow down")
)

const (
	donationRateLimitScope = "donation_record"
	maxTitleLength         = 120
)

// RateLimiter is the optional distributed limiter applied to donation
// recording. A nil limiter disables limiting.
type RateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// Service provides the core business logic for campaigns and donations.
type Service struct {
	repo          store.Repository
	eventProducer rabbitmq.Publisher

	rateLimiter            RateLimiter
	donationLimitPerMinute int
}

// NewService creates a new service instance.
func NewService(repo store.Repository, producer rabbitmq.Publisher) *Service {
	return &Service{
		repo:          repo,
		eventProducer: producer,
	}
}

// SetDonationRateLimiter installs a distributed rate limiter for donation
// recording, with a per-subject limit per minute.
func (s *Service) SetDonationRateLimiter(limiter RateLimiter, limitPerMinute int) {
	s.rateLimiter = limiter
	s.donationLimitPerMinute = limitPerMinute
}

// CreateCampaign validates and persists a new campaign for the given creator.
func (s *Service) CreateCampaign(ctx context.Context, creatorID uuid.UUID, req domain.CreateCampaignRequest) (*domain.Campaign, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || len(title) > maxTitleLength {
		return nil, ErrInvalidTitle
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, ErrInvalidDescription
	}

	targetCents, err := parseAmountToCents(req.TargetAmount)
	if err != nil || targetCents <= 0 {
		return nil, ErrInvalidTargetAmount
	}

	endDate, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndDate))
	if err != nil || !endDate.After(time.Now()) {
		return nil, ErrInvalidEndDate
	}

	campaign := &domain.Campaign{
		ID:            uuid.New(),
		CreatorID:     creatorID,
		Title:         title,
		Description:   req.Description,
		Category:      strings.TrimSpace(req.Category),
		Location:      strings.TrimSpace(req.Location),
		ImageURL:      strings.TrimSpace(req.ImageURL),
		TargetAmount:  targetCents,
		CurrentAmount: 0,
		Status:        domain.CampaignStatusActive,
		StartDate:     time.Now().UTC(),
		EndDate:       endDate.UTC(),
	}

	if err := s.repo.CreateCampaign(ctx, campaign); err != nil {
		return nil, err
	}

	log.Printf("level=info component=app op=create_campaign campaign_id=%s creator_id=%s target=%d", campaign.ID, creatorID, targetCents)
	return campaign, nil
}

// GetCampaign returns a campaign with its creator profile.
func (s *Service) GetCampaign(ctx context.Context, campaignID string) (*domain.CampaignDetail, error) {
	id, err := uuid.Parse(strings.TrimSpace(campaignID))
	if err != nil {
		return nil, ErrInvalidCampaignID
	}
	return s.repo.GetCampaign(ctx, id)
}

// ListCampaigns returns active campaigns matching the filter. Unrecognized
// sort keys fall back to newest; status defaults to active.
func (s *Service) ListCampaigns(ctx context.Context, filter domain.CampaignFilter) ([]*domain.Campaign, error) {
	if filter.Status == "" {
		filter.Status = domain.CampaignStatusActive
	}
	switch filter.Sort {
	case domain.SortNewest, domain.SortMostFunded, domain.SortEndingSoon:
	default:
		filter.Sort = domain.SortNewest
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Category = strings.TrimSpace(filter.Category)
	return s.repo.ListCampaigns(ctx, filter)
}

// ListCampaignDonations returns the donations recorded against a campaign.
func (s *Service) ListCampaignDonations(ctx context.Context, campaignID string) ([]*domain.Donation, error) {
	id, err := uuid.Parse(strings.TrimSpace(campaignID))
	if err != nil {
		return nil, ErrInvalidCampaignID
	}
	if _, err := s.repo.GetCampaign(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListDonationsByCampaign(ctx, id)
}

// RecordDonation writes the ledger entry for a captured payment: one donation
// row plus the campaign amount increment, atomically. donorID is nil for
// donations made without an account; subject is the rate-limit identity
// (user id or client address). There is no coupling to the provider here — a
// capture that never reaches this call leaves no ledger trace.
func (s *Service) RecordDonation(ctx context.Context, donorID *uuid.UUID, subject string, req domain.RecordDonationRequest) (*domain.Donation, error) {
	if err := s.consumeDonationRateLimit(ctx, subject); err != nil {
		return nil, err
	}

	campaignID, err := uuid.Parse(strings.TrimSpace(req.CampaignID))
	if err != nil {
		return nil, ErrInvalidCampaignID
	}

	amountCents, err := parseAmountToCents(req.Amount)
	if err != nil || amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	paymentID := strings.TrimSpace(req.PaymentID)
	if paymentID == "" {
		return nil, ErrMissingPaymentID
	}

	donation := &domain.Donation{
		ID:         uuid.New(),
		CampaignID: campaignID,
		DonorID:    donorID,
		Amount:     amountCents,
		PaymentID:  paymentID,
		Anonymous:  req.Anonymous || donorID == nil,
	}
	if msg := strings.TrimSpace(req.Message); msg != "" {
		donation.Message = &msg
	}

	if err := s.repo.RecordDonation(ctx, donation); err != nil {
		return nil, err
	}

	log.Printf("level=info component=app op=record_donation donation_id=%s campaign_id=%s amount=%d payment_id=%s", donation.ID, campaignID, amountCents, paymentID)

	if s.eventProducer != nil {
		event := rabbitmq.DonationEvent{
			DonationID: donation.ID,
			CampaignID: donation.CampaignID,
			DonorID:    donation.DonorID,
			Amount:     donation.Amount,
			PaymentID:  donation.PaymentID,
			Anonymous:  donation.Anonymous,
			Timestamp:  time.Now().UTC(),
		}
		if err := s.eventProducer.PublishDonationEvent(ctx, event); err != nil {
			// Event delivery is best-effort; the ledger write already committed.
			log.Printf("level=warn component=app op=record_donation msg=\"donation event publish failed\" donation_id=%s err=%v", donation.ID, err)
		}
	}

	return donation, nil
}

// GetDashboard aggregates the user's campaigns and donations.
func (s *Service) GetDashboard(ctx context.Context, userID uuid.UUID) (*domain.DashboardSummary, error) {
	campaigns, err := s.repo.ListCampaignsByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	donations, err := s.repo.ListDonationsByDonor(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &domain.DashboardSummary{
		Campaigns:     campaigns,
		Donations:     donations,
		DonationCount: len(donations),
	}
	for _, c := range campaigns {
		summary.TotalRaised += c.CurrentAmount
		if c.Status == domain.CampaignStatusActive {
			summary.ActiveCount++
		}
	}
	for _, d := range donations {
		summary.TotalDonated += d.Amount
	}
	return summary, nil
}

func (s *Service) consumeDonationRateLimit(ctx context.Context, subject string) error {
	if s.rateLimiter == nil || s.donationLimitPerMinute <= 0 {
		return nil
	}
	count, retryAfter, err := s.rateLimiter.ConsumeRateLimit(ctx, donationRateLimitScope, subject, s.donationLimitPerMinute, time.Minute)
	if err != nil {
		// A broken limiter must not block donations.
		log.Printf("level=warn component=app op=record_donation msg=\"rate limiter unavailable; allowing request\" err=%v", err)
		return nil
	}
	if count > s.donationLimitPerMinute {
		log.Printf("level=warn component=app op=record_donation outcome=rate_limited subject=%s count=%d retry_after=%d", subject, count, retryAfter)
		return ErrDonationRateLimited
	}
	return nil
}

// parseAmountToCents converts a decimal dollar string (e.g. "25" or "25.50")
// into cents. Rounding matches how the frontend renders two decimal places.
func parseAmountToCents(raw string) (int64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(value * 100)), nil
}
