package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sentinel/api/internal/ads"
	"github.com/sentinel/api/internal/middleware"
	"go.uber.org/zap"
)

// AdsHandler serves paid search reporting
type AdsHandler struct {
	service *ads.Service
	logger  *zap.Logger
}

func NewAdsHandler(service *ads.Service, logger *zap.Logger) *AdsHandler {
	return &AdsHandler{service: service, logger: logger}
}

// GetSummary returns the latest weekly ads summary
//
//	@Summary	Weekly ads summary
//	@Tags		ads
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	ads.Summary
//	@Router		/api/ads/summary [get]
func (h *AdsHandler) GetSummary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := h.service.LatestSummary(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load ads summary", zap.Error(err))
		middleware.InternalError(c, "failed to load ads summary")
		return
	}

	c.JSON(http.StatusOK, summary)
}
