package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sentinel/api/internal/models"
)

type marketingRepository struct {
	db DBTX
}

// NewMarketingRepository creates a PostgreSQL-backed marketing repository
func NewMarketingRepository(db DBTX) MarketingRepository {
	return &marketingRepository{db: db}
}

func (r *marketingRepository) BusinessProfile(ctx context.Context, userID uuid.UUID) (*models.BusinessProfile, error) {
	query := `
		SELECT id, user_id, status, business_desc, categories, services_offered,
		       service_area, hours, created_at, updated_at
		FROM business_profiles
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var p models.BusinessProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.Status, &p.BusinessDesc, &p.Categories, &p.ServicesOffered,
		&p.ServiceArea, &p.Hours, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get business profile: %w", err)
	}
	return &p, nil
}

func (r *marketingRepository) ActiveCampaign(ctx context.Context, userID uuid.UUID) (*models.AdsCampaign, error) {
	query := `
		SELECT id, user_id, campaign_name, geo_targets, keywords, negative_keywords,
		       daily_budget::text, bid_strategy_note, status, last_optimized_at, created_at
		FROM ads_campaign_plans
		WHERE user_id = $1 AND status = $2
		ORDER BY last_optimized_at DESC
		LIMIT 1
	`
	var (
		c      models.AdsCampaign
		budget string
	)
	err := r.db.QueryRow(ctx, query, userID, models.CampaignStatusActive).Scan(
		&c.ID, &c.UserID, &c.CampaignName, &c.GeoTargets, &c.Keywords, &c.NegativeKeywords,
		&budget, &c.BidStrategyNote, &c.Status, &c.LastOptimizedAt, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active campaign: %w", err)
	}
	if c.DailyBudget, err = decimal.NewFromString(budget); err != nil {
		return nil, fmt.Errorf("parse daily budget: %w", err)
	}
	return &c, nil
}

func (r *marketingRepository) RecentOptimizations(ctx context.Context, userID uuid.UUID, limit int) ([]models.OptimizationAction, error) {
	query := `
		SELECT id, user_id, area, action_summary, impact_note, timestamp
		FROM optimization_actions
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list optimizations: %w", err)
	}
	defer rows.Close()

	actions := []models.OptimizationAction{}
	for rows.Next() {
		var a models.OptimizationAction
		if err := rows.Scan(&a.ID, &a.UserID, &a.Area, &a.ActionSummary, &a.ImpactNote, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("scan optimization: %w", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list optimizations: %w", err)
	}
	return actions, nil
}

func (r *marketingRepository) LogOptimization(ctx context.Context, action *models.OptimizationAction) error {
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	query := `
		INSERT INTO optimization_actions (id, user_id, area, action_summary, impact_note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING timestamp
	`
	err := r.db.QueryRow(ctx, query, action.ID, action.UserID, action.Area, action.ActionSummary, action.ImpactNote).
		Scan(&action.Timestamp)
	if err != nil {
		return fmt.Errorf("log optimization: %w", translate(err))
	}
	return nil
}
