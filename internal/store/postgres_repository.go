/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the SQL queries for the `campaigns` and `donations` tables,
 * including the transactional donation write that keeps the donation row and the
 * campaign's accumulated amount in step.
 *
 * @dependencies
 * - context, errors, fmt, strings: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sumit6569/Crowdfunding/internal/domain"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrCampaignInactive = errors.New("campaign is not active")
	ErrDuplicatePayment = errors.New("donation with this payment id already recorded")
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const campaignColumns = `id, creator_id, title, description, category, location, image_url,
	target_amount, current_amount, status, start_date, end_date, created_at, updated_at`

func scanCampaign(row pgx.Row, c *domain.Campaign) error {
	return row.Scan(
		&c.ID,
		&c.CreatorID,
		&c.Title,
		&c.Description,
		&c.Category,
		&c.Location,
		&c.ImageURL,
		&c.TargetAmount,
		&c.CurrentAmount,
		&c.Status,
		&c.StartDate,
		&c.EndDate,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

// CreateCampaign inserts a new campaign row.
func (r *PostgresRepository) CreateCampaign(ctx context.Context, campaign *domain.Campaign) error {
	query := `
		INSERT INTO campaigns (
			id,
			creator_id,
			title,
			description,
			category,
			location,
			image_url,
			target_amount,
			current_amount,
			status,
			start_date,
			end_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		campaign.ID,
		campaign.CreatorID,
		campaign.Title,
		campaign.Description,
		campaign.Category,
		campaign.Location,
		campaign.ImageURL,
		campaign.TargetAmount,
		campaign.CurrentAmount,
		campaign.Status,
		campaign.StartDate,
		campaign.EndDate,
	).Scan(&campaign.CreatedAt, &campaign.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert campaign: %w", err)
	}
	return nil
}

// GetCampaign retrieves a campaign together with its creator's public profile.
func (r *PostgresRepository) GetCampaign(ctx context.Context, campaignID uuid.UUID) (*domain.CampaignDetail, error) {
	var detail domain.CampaignDetail
	var creator domain.CampaignCreator
	query := `
		SELECT c.id, c.creator_id, c.title, c.description, c.category, c.location, c.image_url,
			c.target_amount, c.current_amount, c.status, c.start_date, c.end_date, c.created_at, c.updated_at,
			u.id, btrim(u.username), u.full_name, u.avatar_url
		FROM campaigns c
		JOIN users u ON u.id = c.creator_id
		WHERE c.id = $1
	`
	err := r.db.QueryRow(ctx, query, campaignID).Scan(
		&detail.ID,
		&detail.CreatorID,
		&detail.Title,
		&detail.Description,
		&detail.Category,
		&detail.Location,
		&detail.ImageURL,
		&detail.TargetAmount,
		&detail.CurrentAmount,
		&detail.Status,
		&detail.StartDate,
		&detail.EndDate,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&creator.ID,
		&creator.Username,
		&creator.FullName,
		&creator.AvatarURL,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	detail.Creator = &creator
	return &detail, nil
}

// ListCampaigns returns campaigns matching the filter. Category and search are
// optional; sort falls back to newest when the key is unrecognized.
func (r *PostgresRepository) ListCampaigns(ctx context.Context, filter domain.CampaignFilter) ([]*domain.Campaign, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + campaignColumns + " FROM campaigns WHERE status = $1")
	args := []interface{}{filter.Status}

	if filter.Category != "" {
		args = append(args, filter.Category)
		fmt.Fprintf(&sb, " AND category = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		fmt.Fprintf(&sb, " AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}

	switch filter.Sort {
	case domain.SortMostFunded:
		sb.WriteString(" ORDER BY current_amount DESC")
	case domain.SortEndingSoon:
		sb.WriteString(" ORDER BY end_date ASC")
	default:
		sb.WriteString(" ORDER BY created_at DESC")
	}

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCampaigns(rows)
}

// ListCampaignsByCreator returns all campaigns owned by a user, newest first.
func (r *PostgresRepository) ListCampaignsByCreator(ctx context.Context, creatorID uuid.UUID) ([]*domain.Campaign, error) {
	query := "SELECT " + campaignColumns + " FROM campaigns WHERE creator_id = $1 ORDER BY created_at DESC"
	rows, err := r.db.Query(ctx, query, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCampaigns(rows)
}

func collectCampaigns(rows pgx.Rows) ([]*domain.Campaign, error) {
	campaigns := make([]*domain.Campaign, 0)
	for rows.Next() {
		var c domain.Campaign
		if err := scanCampaign(rows, &c); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, &c)
	}
	return campaigns, rows.Err()
}

// RecordDonation inserts the donation row and increments the campaign's
// current_amount in one database transaction. The campaign row is locked for
// the duration of the transaction so concurrent donations serialize on the
// increment.
func (r *PostgresRepository) RecordDonation(ctx context.Context, donation *domain.Donation) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin donation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, "SELECT status FROM campaigns WHERE id = $1 FOR UPDATE", donation.CampaignID).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrCampaignNotFound
		}
		return err
	}
	if status != domain.CampaignStatusActive {
		return ErrCampaignInactive
	}

	insert := `
		INSERT INTO donations (id, campaign_id, donor_id, amount, payment_id, anonymous, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, insert,
		donation.ID,
		donation.CampaignID,
		donation.DonorID,
		donation.Amount,
		donation.PaymentID,
		donation.Anonymous,
		donation.Message,
	).Scan(&donation.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 = unique_violation on the payment_id index; the same capture
		// was already recorded.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePayment
		}
		return fmt.Errorf("failed to insert donation: %w", err)
	}

	update := `
		UPDATE campaigns
		SET current_amount = current_amount + $1, updated_at = $2
		WHERE id = $3
	`
	if _, err := tx.Exec(ctx, update, donation.Amount, time.Now().UTC(), donation.CampaignID); err != nil {
		return fmt.Errorf("failed to increment campaign amount: %w", err)
	}

	return tx.Commit(ctx)
}

// ListDonationsByCampaign returns all donations for a campaign, newest first.
func (r *PostgresRepository) ListDonationsByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*domain.Donation, error) {
	query := `
		SELECT id, campaign_id, donor_id, amount, payment_id, anonymous, message, created_at
		FROM donations
		WHERE campaign_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDonations(rows)
}

// ListDonationsByDonor returns all donations made by a user, newest first.
func (r *PostgresRepository) ListDonationsByDonor(ctx context.Context, donorID uuid.UUID) ([]*domain.Donation, error) {
	query := `
		SELECT id, campaign_id, donor_id, amount, payment_id, anonymous, message, created_at
		FROM donations
		WHERE donor_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, donorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDonations(rows)
}

func collectDonations(rows pgx.Rows) ([]*domain.Donation, error) {
	donations := make([]*domain.Donation, 0)
	for rows.Next() {
		var d domain.Donation
		if err := rows.Scan(
			&d.ID,
			&d.CampaignID,
			&d.DonorID,
			&d.Amount,
			&d.PaymentID,
			&d.Anonymous,
			&d.Message,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		donations = append(donations, &d)
	}
	return donations, rows.Err()
}
