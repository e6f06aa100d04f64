package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sentinel/api/internal/models"
)

const reviewColumns = `id, user_id, rating, content, source_platform, status, ai_suggested_reply, created_at, updated_at`

type reviewRepository struct {
	db DBTX
}

// NewReviewRepository creates a PostgreSQL-backed review repository
func NewReviewRepository(db DBTX) ReviewRepository {
	return &reviewRepository{db: db}
}

func scanReview(row pgx.Row) (*models.Review, error) {
	var rv models.Review
	err := row.Scan(&rv.ID, &rv.UserID, &rv.Rating, &rv.Content, &rv.SourcePlatform,
		&rv.Status, &rv.AISuggestedReply, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1 AND user_id = $2`

	rv, err := scanReview(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, fmt.Errorf("get review: %w", translate(err))
	}
	return rv, nil
}

func (r *reviewRepository) SetSuggestedReply(ctx context.Context, id uuid.UUID, reply string) (*models.Review, error) {
	query := `
		UPDATE reviews SET ai_suggested_reply = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + reviewColumns

	rv, err := scanReview(r.db.QueryRow(ctx, query, id, reply))
	if err != nil {
		return nil, fmt.Errorf("set suggested reply: %w", translate(err))
	}
	return rv, nil
}

func (r *reviewRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus) (*models.Review, error) {
	query := `
		UPDATE reviews SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + reviewColumns

	rv, err := scanReview(r.db.QueryRow(ctx, query, id, status))
	if err != nil {
		return nil, fmt.Errorf("set review status: %w", translate(err))
	}
	return rv, nil
}
