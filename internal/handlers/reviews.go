package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sentinel/api/internal/eventbus"
	"github.com/sentinel/api/internal/llm"
	"github.com/sentinel/api/internal/middleware"
	"github.com/sentinel/api/internal/models"
	"github.com/sentinel/api/internal/prompts"
	"github.com/sentinel/api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultDraftConcurrency bounds parallel reply drafting per request
	DefaultDraftConcurrency = 4
	// DefaultDraftBudget bounds the time a list request spends drafting
	DefaultDraftBudget = 45 * time.Second
)

// ReviewHandler handles review moderation endpoints
type ReviewHandler struct {
	reviews          repository.ReviewRepository
	generator        llm.Generator
	events           eventbus.Publisher
	logger           *zap.Logger
	draftConcurrency int
	draftBudget      time.Duration
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews repository.ReviewRepository, generator llm.Generator, events eventbus.Publisher, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews:          reviews,
		generator:        generator,
		events:           events,
		logger:           logger,
		draftConcurrency: DefaultDraftConcurrency,
		draftBudget:      DefaultDraftBudget,
	}
}

// WithDraftBudget sets how long ListReviews waits for drafted replies.
// Non-positive values keep the default.
func (h *ReviewHandler) WithDraftBudget(d time.Duration) *ReviewHandler {
	if d > 0 {
		h.draftBudget = d
	}
	return h
}

// ReviewEvent is published when a review changes status
type ReviewEvent struct {
	ReviewID uuid.UUID           `json:"review_id"`
	UserID   uuid.UUID           `json:"user_id"`
	Status   models.ReviewStatus `json:"status"`
	Rating   int                 `json:"rating"`
}

// ListReviews returns the caller's reviews, drafting replies for positive
// reviews that do not have one yet.
//
//	@Summary	List reviews
//	@Tags		reviews
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	models.Review
//	@Router		/api/reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	reviews, err := h.reviews.ListByUser(ctx, userID)
	if err != nil {
		h.logger.Error("failed to list reviews", zap.Error(err))
		middleware.InternalError(c, "failed to load reviews")
		return
	}

	h.draftReplies(ctx, reviews)

	c.JSON(http.StatusOK, reviews)
}

// draftReplies fills in suggested replies for eligible reviews. Drafts not
// stored within the draft budget are dropped and retried on the next list.
func (h *ReviewHandler) draftReplies(ctx context.Context, reviews []models.Review) {
	pending := make(map[int]models.Review)
	for i := range reviews {
		if reviews[i].NeedsDraftReply() {
			pending[i] = reviews[i]
		}
	}
	if len(pending) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, h.draftBudget)
	defer cancel()

	var mu sync.Mutex
	drafted := make(map[int]models.Review, len(pending))

	done := make(chan struct{})
	go func() {
		defer close(done)

		var g errgroup.Group
		g.SetLimit(h.draftConcurrency)
		for i, rv := range pending {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if updated := h.draftReply(ctx, rv); updated != nil {
					mu.Lock()
					drafted[i] = *updated
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		h.logger.Warn("reply drafting cut short",
			zap.Int("pending", len(pending)),
			zap.Duration("budget", h.draftBudget),
			zap.Error(ctx.Err()),
		)
	}

	mu.Lock()
	defer mu.Unlock()
	for i, rv := range drafted {
		reviews[i] = rv
	}
}

// draftReply generates and stores one reply. It returns nil when nothing
// was stored, including when ctx expired during generation.
func (h *ReviewHandler) draftReply(ctx context.Context, rv models.Review) *models.Review {
	reply := h.generator.GenerateLowCost(ctx, prompts.ReviewReply(rv.Rating, rv.Content))
	if reply == "" || ctx.Err() != nil {
		return nil
	}
	updated, err := h.reviews.SetSuggestedReply(ctx, rv.ID, reply)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		h.logger.Warn("failed to store drafted reply",
			zap.String("review_id", rv.ID.String()),
			zap.Error(err),
		)
		return nil
	}
	return updated
}

// ApproveReply marks a review as replied
//
//	@Summary	Approve the suggested reply
//	@Tags		reviews
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Review ID"
//	@Success	200	{object}	models.Review
//	@Failure	404	{object}	middleware.ErrorResponse
//	@Router		/api/reviews/{id}/approve-reply [post]
func (h *ReviewHandler) ApproveReply(c *gin.Context) {
	h.transition(c, models.ReviewStatusReplied, eventbus.SubjectReviewReplied)
}

// Escalate flags a review for human follow-up
//
//	@Summary	Escalate a review
//	@Tags		reviews
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Review ID"
//	@Success	200	{object}	models.Review
//	@Failure	404	{object}	middleware.ErrorResponse
//	@Router		/api/reviews/{id}/escalate [post]
func (h *ReviewHandler) Escalate(c *gin.Context) {
	h.transition(c, models.ReviewStatusEscalated, eventbus.SubjectReviewEscalated)
}

func (h *ReviewHandler) transition(c *gin.Context, status models.ReviewStatus, subject string) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.NotFound(c, "review not found")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.reviews.GetForUser(ctx, reviewID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			middleware.NotFound(c, "review not found")
			return
		}
		h.logger.Error("failed to load review", zap.Error(err))
		middleware.InternalError(c, "failed to load review")
		return
	}

	review, err := h.reviews.SetStatus(ctx, reviewID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			middleware.NotFound(c, "review not found")
			return
		}
		h.logger.Error("failed to update review", zap.Error(err))
		middleware.InternalError(c, "failed to update review")
		return
	}

	h.logger.Info("review status changed",
		zap.String("review_id", review.ID.String()),
		zap.String("status", string(status)),
	)
	publish(ctx, h.events, h.logger, subject, ReviewEvent{
		ReviewID: review.ID,
		UserID:   userID,
		Status:   review.Status,
		Rating:   review.Rating,
	})

	c.JSON(http.StatusOK, review)
}
