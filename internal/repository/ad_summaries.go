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

type adSummaryRepository struct {
	db DBTX
}

// NewAdSummaryRepository creates a PostgreSQL-backed ad summary repository
func NewAdSummaryRepository(db DBTX) AdSummaryRepository {
	return &adSummaryRepository{db: db}
}

func (r *adSummaryRepository) Latest(ctx context.Context, userID uuid.UUID) (*models.AdSummary, error) {
	query := `
		SELECT id, user_id, week_ending, spend::text, leads, est_revenue::text, created_at
		FROM ad_summaries
		WHERE user_id = $1
		ORDER BY week_ending DESC
		LIMIT 1
	`
	var (
		s                 models.AdSummary
		spend, estRevenue string
	)
	err := r.db.QueryRow(ctx, query, userID).
		Scan(&s.ID, &s.UserID, &s.WeekEnding, &spend, &s.Leads, &estRevenue, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest ad summary: %w", err)
	}

	if s.Spend, err = decimal.NewFromString(spend); err != nil {
		return nil, fmt.Errorf("parse spend: %w", err)
	}
	if s.EstRevenue, err = decimal.NewFromString(estRevenue); err != nil {
		return nil, fmt.Errorf("parse estimated revenue: %w", err)
	}
	return &s, nil
}
