// Package ads derives paid search performance figures from stored weekly
// summaries.
package ads

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sentinel/api/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Summary is the weekly ads report returned to the dashboard
type Summary struct {
	WeekEnding  *time.Time `json:"week_ending"`
	Spend       float64    `json:"spend"`
	Leads       int        `json:"leads"`
	EstRevenue  float64    `json:"est_revenue"`
	ROAS        float64    `json:"roas"`
	CostPerLead float64    `json:"cost_per_lead"`
}

// Service computes ads summaries
type Service struct {
	summaries repository.AdSummaryRepository
	logger    *zap.Logger
}

func NewService(summaries repository.AdSummaryRepository, logger *zap.Logger) *Service {
	return &Service{
		summaries: summaries,
		logger:    logger,
	}
}

// LatestSummary returns the most recent week for the user, or an all-zero
// summary when nothing has been recorded yet.
func (s *Service) LatestSummary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	row, err := s.summaries.Latest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ad summary: %w", err)
	}
	if row == nil {
		s.logger.Debug("No ad summary recorded", zap.String("user_id", userID.String()))
		return &Summary{}, nil
	}

	week := row.WeekEnding
	return &Summary{
		WeekEnding:  &week,
		Spend:       row.Spend.Round(2).InexactFloat64(),
		Leads:       row.Leads,
		EstRevenue:  row.EstRevenue.Round(2).InexactFloat64(),
		ROAS:        ROAS(row.Spend, row.EstRevenue).InexactFloat64(),
		CostPerLead: CostPerLead(row.Spend, row.Leads).InexactFloat64(),
	}, nil
}

// ROAS is revenue over spend rounded to cents, zero when nothing was spent.
func ROAS(spend, revenue decimal.Decimal) decimal.Decimal {
	if !spend.IsPositive() {
		return decimal.Zero
	}
	return revenue.DivRound(spend, 2)
}

// CostPerLead is spend over leads rounded to cents, zero without leads.
func CostPerLead(spend decimal.Decimal, leads int) decimal.Decimal {
	if leads <= 0 {
		return decimal.Zero
	}
	return spend.DivRound(decimal.NewFromInt(int64(leads)), 2)
}
