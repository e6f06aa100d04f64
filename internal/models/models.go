package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReviewStatus represents the moderation state of a customer review
type ReviewStatus string

const (
	ReviewStatusNew       ReviewStatus = "new"
	ReviewStatusReplied   ReviewStatus = "replied"
	ReviewStatusEscalated ReviewStatus = "escalated"
)

// OptimizationArea is the marketing channel an optimization targets
type OptimizationArea string

const (
	AreaGBP OptimizationArea = "GBP" // Google Business Profile
	AreaAds OptimizationArea = "ADS"
)

// Valid returns true if the area is a known value.
func (a OptimizationArea) Valid() bool {
	switch a {
	case AreaGBP, AreaAds:
		return true
	default:
		return false
	}
}

// ChatRole identifies the author of a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// CampaignStatusActive marks a campaign that is currently running
const CampaignStatusActive = "active"

// User represents a business owner account
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	PlanTier     string    `json:"plan_tier"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BusinessProfile is the Google Business Profile setup of a user
type BusinessProfile struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"user_id"`
	Status          string            `json:"status"`
	BusinessDesc    string            `json:"business_desc"`
	Categories      string            `json:"categories"`
	ServicesOffered string            `json:"services_offered"`
	ServiceArea     string            `json:"service_area"`
	Hours           map[string]string `json:"hours,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Keyword is a single targeted search term in an ads campaign
type Keyword struct {
	Keyword   string  `json:"keyword"`
	MatchType string  `json:"matchType"`
	Bid       float64 `json:"bid"`
}

// AdsCampaign is a paid search campaign plan
type AdsCampaign struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	CampaignName     string          `json:"campaign_name"`
	GeoTargets       string          `json:"geo_targets"`
	Keywords         []Keyword       `json:"keywords"`
	NegativeKeywords string          `json:"negative_keywords"`
	DailyBudget      decimal.Decimal `json:"daily_budget"`
	BidStrategyNote  string          `json:"bid_strategy_note"`
	Status           string          `json:"status"`
	LastOptimizedAt  time.Time       `json:"last_optimized_at"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Review is a customer review left on an external platform
type Review struct {
	ID               uuid.UUID    `json:"id"`
	UserID           uuid.UUID    `json:"user_id"`
	Rating           int          `json:"rating"`
	Content          string       `json:"content"`
	SourcePlatform   string       `json:"source_platform"`
	Status           ReviewStatus `json:"status"`
	AISuggestedReply *string      `json:"ai_suggested_reply"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// NeedsDraftReply reports whether a reply should be drafted for the review:
// positive (4+ stars), untouched, and without a suggestion yet.
func (r *Review) NeedsDraftReply() bool {
	return r.Rating >= 4 && r.Status == ReviewStatusNew && (r.AISuggestedReply == nil || *r.AISuggestedReply == "")
}

// AdSummary aggregates one week of paid search results
type AdSummary struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	WeekEnding time.Time       `json:"week_ending"`
	Spend      decimal.Decimal `json:"spend"`
	Leads      int             `json:"leads"`
	EstRevenue decimal.Decimal `json:"est_revenue"`
	CreatedAt  time.Time       `json:"created_at"`
}

// OptimizationAction records a change suggested or applied to a channel
type OptimizationAction struct {
	ID            uuid.UUID        `json:"id"`
	UserID        uuid.UUID        `json:"user_id"`
	Area          OptimizationArea `json:"area"`
	ActionSummary string           `json:"action_summary"`
	ImpactNote    string           `json:"impact_note"`
	Timestamp     time.Time        `json:"timestamp"`
}

// ChatMessage is one turn in the assistant conversation
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
