package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sentinel/api/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DemoEmail and DemoPassword are the credentials of the seeded account
	DemoEmail    = "demo@hvac.com"
	DemoPassword = "demo123"
)

type seedReview struct {
	rating int
	body   string
	status models.ReviewStatus
	reply  *string
}

type seedAction struct {
	area    models.OptimizationArea
	summary string
	impact  string
}

type seedMessage struct {
	role    models.ChatRole
	content string
}

func strPtr(s string) *string { return &s }

var demoKeywords = []models.Keyword{
	{Keyword: "24hr AC repair bellevue", MatchType: "phrase", Bid: 2.6},
	{Keyword: "emergency furnace repair tacoma", MatchType: "exact", Bid: 3.1},
	{Keyword: "emergency HVAC bellevue", MatchType: "phrase", Bid: 2.8},
	{Keyword: "furnace repair tacoma", MatchType: "broad", Bid: 1.9},
	{Keyword: "AC repair near me", MatchType: "phrase", Bid: 2.4},
}

var demoHours = map[string]string{
	"monday":    "24 hours",
	"tuesday":   "24 hours",
	"wednesday": "24 hours",
	"thursday":  "24 hours",
	"friday":    "24 hours",
	"saturday":  "24 hours",
	"sunday":    "24 hours",
}

var demoReviews = []seedReview{
	{
		rating: 5,
		body:   "Amazing service! They came out at 11pm when our furnace died. Fixed it in 30 minutes. Will definitely call again!",
		status: models.ReviewStatusNew,
		reply:  strPtr("Thank you so much for the kind words! We're always here 24/7 for emergencies. It was our pleasure to help get your heat back on quickly. We appreciate your business!"),
	},
	{
		rating: 4,
		body:   "Good work but a bit pricey for what was done. Tech was professional though.",
		status: models.ReviewStatusNew,
		reply:  strPtr("We appreciate your feedback! Our pricing reflects our 24/7 availability and certified technicians. We're glad you had a positive experience with our team. Thank you for choosing us!"),
	},
	{
		rating: 2,
		body:   "Waited 3 hours for the tech to show up. Not happy with the 'emergency' response time.",
		status: models.ReviewStatusEscalated,
	},
	{
		rating: 5,
		body:   "Best HVAC company in Tacoma! Always reliable and fair pricing.",
		status: models.ReviewStatusReplied,
		reply:  strPtr("Thank you for your continued trust!"),
	},
}

var demoActions = []seedAction{
	{models.AreaAds, `Increased bid on "emergency furnace repair tacoma" from $2.80 to $3.10 based on high conversion rate`, "Expected 15% increase in emergency calls"},
	{models.AreaGBP, `Posted seasonal promotion: "Winter furnace tune-up special - $79 (reg $129)"`, "Generated 23 profile views in first 24 hours"},
	{models.AreaAds, `Added negative keyword "DIY" to prevent wasted spend on non-buyer traffic`, "Reduced irrelevant clicks by 8%"},
	{models.AreaGBP, "Updated business hours to highlight 24/7 emergency availability", "Increased after-hours call volume"},
	{models.AreaAds, `Paused underperforming keyword "cheap AC repair" (0.4% CTR)`, "Reallocated $45/week to high-intent terms"},
}

var demoMessages = []seedMessage{
	{models.ChatRoleUser, "How are my ads performing this week?"},
	{models.ChatRoleAssistant, "Your ads are performing well! This week you spent $287.50 and generated 14 leads, with an estimated revenue of $4,200. That's a strong 14.6x ROAS. Your emergency keywords are converting especially well during evening hours."},
	{models.ChatRoleUser, "Should I increase my budget?"},
	{models.ChatRoleAssistant, "Based on your current performance, I'd recommend a modest 20% budget increase to $60/day. Your top keywords still have room to scale, and we're not hitting daily budget caps yet. This should capture more high-intent emergency calls without sacrificing ROI."},
}

// Seed loads the demo account and its dashboard data. It is a no-op when
// the demo user already exists.
func (p *Postgres) Seed(ctx context.Context, logger *zap.Logger) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, DemoEmail).Scan(&existing)
	if err == nil {
		logger.Info("Demo data already present", zap.String("email", DemoEmail))
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("look up demo user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	userID := uuid.New()
	if _, err := tx.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, plan_tier) VALUES ($1, $2, $3, 'growth')`,
		userID, DemoEmail, string(hash)); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO business_profiles (id, user_id, status, business_desc, categories, services_offered, service_area, hours)
		VALUES ($1, $2, 'live', $3, $4, $5, $6, $7)`,
		uuid.New(), userID,
		"We are a 24/7 emergency HVAC and furnace repair company serving Tacoma and Bellevue.",
		"HVAC contractor, Emergency AC repair",
		"24hr furnace repair, emergency AC repair, seasonal tune-up",
		"Tacoma, Bellevue, Seattle",
		demoHours); err != nil {
		return fmt.Errorf("seed business profile: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO ads_campaign_plans (id, user_id, campaign_name, geo_targets, keywords, negative_keywords, daily_budget, bid_strategy_note, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New(), userID,
		"24/7 Emergency HVAC Leads",
		"Tacoma,Bellevue",
		demoKeywords,
		"free, salary, DIY",
		"50.00",
		"Focus budget on after-hours emergency calls where close rate is highest.",
		models.CampaignStatusActive); err != nil {
		return fmt.Errorf("seed campaign: %w", err)
	}

	// Stagger timestamps so listing order is stable.
	now := time.Now().UTC()
	for i, r := range demoReviews {
		created := now.Add(-time.Duration(len(demoReviews)-i) * time.Hour)
		if _, err := tx.Exec(ctx, `
			INSERT INTO reviews (id, user_id, rating, content, source_platform, status, ai_suggested_reply, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'google', $5, $6, $7, $7)`,
			uuid.New(), userID, r.rating, r.body, r.status, r.reply, created); err != nil {
			return fmt.Errorf("seed review: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO ad_summaries (id, user_id, week_ending, spend, leads, est_revenue)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), userID, now, "287.50", 14, "4200.00"); err != nil {
		return fmt.Errorf("seed ad summary: %w", err)
	}

	for i, a := range demoActions {
		ts := now.Add(-time.Duration(len(demoActions)-i) * time.Hour)
		if _, err := tx.Exec(ctx, `
			INSERT INTO optimization_actions (id, user_id, area, action_summary, impact_note, timestamp)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), userID, a.area, a.summary, a.impact, ts); err != nil {
			return fmt.Errorf("seed optimization action: %w", err)
		}
	}

	for i, m := range demoMessages {
		ts := now.Add(-time.Duration(len(demoMessages)-i) * time.Minute)
		if _, err := tx.Exec(ctx, `
			INSERT INTO chat_messages (id, user_id, role, content, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), userID, m.role, m.content, ts); err != nil {
			return fmt.Errorf("seed chat message: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	logger.Info("Demo data seeded",
		zap.String("email", DemoEmail),
		zap.Int("reviews", len(demoReviews)),
		zap.Int("optimizations", len(demoActions)),
		zap.Int("chat_messages", len(demoMessages)),
	)
	return nil
}
