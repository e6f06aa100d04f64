package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sentinel/api/internal/eventbus"
	"github.com/sentinel/api/internal/middleware"
	"go.uber.org/zap"
)

// currentUser returns the authenticated user id, writing a 401 when absent.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.Unauthorized(c, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// publish emits a domain event; failures are logged and swallowed.
func publish(ctx context.Context, events eventbus.Publisher, logger *zap.Logger, subject string, data any) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, subject, data); err != nil {
		logger.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
