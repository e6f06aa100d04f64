// Package repository defines persistence contracts for the dashboard
// domain and their PostgreSQL implementations.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sentinel/api/internal/models"
)

var (
	// ErrNotFound is returned when no row matches the lookup
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict is returned when a unique constraint is violated
	ErrConflict = errors.New("repository: conflict")
)

// DBTX is the subset of pgxpool.Pool used by the repositories
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository persists user accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ReviewRepository persists customer reviews
type ReviewRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Review, error)
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.Review, error)
	SetSuggestedReply(ctx context.Context, id uuid.UUID, reply string) (*models.Review, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus) (*models.Review, error)
}

// ChatRepository persists assistant conversations
type ChatRepository interface {
	// Recent returns the newest limit messages in ascending time order.
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error)
	Append(ctx context.Context, msg *models.ChatMessage) error
}

// MarketingRepository persists business profiles, campaigns and the
// optimization action log. Lookups that find nothing return nil, nil.
type MarketingRepository interface {
	BusinessProfile(ctx context.Context, userID uuid.UUID) (*models.BusinessProfile, error)
	ActiveCampaign(ctx context.Context, userID uuid.UUID) (*models.AdsCampaign, error)
	RecentOptimizations(ctx context.Context, userID uuid.UUID, limit int) ([]models.OptimizationAction, error)
	LogOptimization(ctx context.Context, action *models.OptimizationAction) error
}

// AdSummaryRepository reads weekly ad results
type AdSummaryRepository interface {
	// Latest returns the summary with the most recent week ending, or nil, nil.
	Latest(ctx context.Context, userID uuid.UUID) (*models.AdSummary, error)
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}
