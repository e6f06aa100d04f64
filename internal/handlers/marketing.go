package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
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
	recentOptimizationsLimit = 5
	summaryPreviewRunes      = 100
	pendingImpactNote        = "Pending implementation"
)

// MarketingHandler serves the marketing overview and optimization actions
type MarketingHandler struct {
	marketing repository.MarketingRepository
	generator llm.Generator
	events    eventbus.Publisher
	logger    *zap.Logger
}

func NewMarketingHandler(marketing repository.MarketingRepository, generator llm.Generator, events eventbus.Publisher, logger *zap.Logger) *MarketingHandler {
	return &MarketingHandler{marketing: marketing, generator: generator, events: events, logger: logger}
}

// OverviewResponse is the marketing dashboard payload
type OverviewResponse struct {
	BusinessProfile     *models.BusinessProfile     `json:"business_profile"`
	AdsCampaign         *models.AdsCampaign         `json:"ads_campaign"`
	RecentOptimizations []models.OptimizationAction `json:"recent_optimizations"`
}

// OptimizeRequest selects the channel to optimize
type OptimizeRequest struct {
	Area models.OptimizationArea `json:"area"`
}

// OptimizeResponse carries the generated suggestion
type OptimizeResponse struct {
	Suggestion string                  `json:"suggestion"`
	Area       models.OptimizationArea `json:"area"`
}

// GetOverview returns the profile, active campaign and recent actions
//
//	@Summary	Marketing overview
//	@Tags		marketing
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	OverviewResponse
//	@Router		/api/marketing/overview [get]
func (h *MarketingHandler) GetOverview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var resp OverviewResponse
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		resp.BusinessProfile, err = h.marketing.BusinessProfile(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		resp.AdsCampaign, err = h.marketing.ActiveCampaign(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		resp.RecentOptimizations, err = h.marketing.RecentOptimizations(ctx, userID, recentOptimizationsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("failed to load marketing overview", zap.Error(err))
		middleware.InternalError(c, "failed to load marketing overview")
		return
	}
	if resp.RecentOptimizations == nil {
		resp.RecentOptimizations = []models.OptimizationAction{}
	}

	c.JSON(http.StatusOK, resp)
}

// Optimize generates a suggestion for one channel and logs it
//
//	@Summary	Run an optimization
//	@Tags		marketing
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		OptimizeRequest	true	"Area (GBP or ADS)"
//	@Success	200		{object}	OptimizeResponse
//	@Failure	400		{object}	middleware.ErrorResponse
//	@Router		/api/marketing/optimize [post]
func (h *MarketingHandler) Optimize(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Area.Valid() {
		middleware.BadRequest(c, "area must be GBP or ADS")
		return
	}

	ctx := c.Request.Context()
	var suggestion, summary string

	switch req.Area {
	case models.AreaGBP:
		profile, err := h.marketing.BusinessProfile(ctx, userID)
		if err != nil {
			h.logger.Error("failed to load business profile", zap.Error(err))
			middleware.InternalError(c, "failed to load business profile")
			return
		}
		suggestion = h.generator.GenerateLowCost(ctx, prompts.GBPPost(profile))
		summary = fmt.Sprintf(`Generated new GBP promotional post: "%s..."`, prompts.Head(suggestion, summaryPreviewRunes))

	case models.AreaAds:
		campaign, err := h.marketing.ActiveCampaign(ctx, userID)
		if err != nil {
			h.logger.Error("failed to load ads campaign", zap.Error(err))
			middleware.InternalError(c, "failed to load ads campaign")
			return
		}
		suggestion = h.generator.GenerateCritical(ctx, prompts.AdsOptimization(campaign))
		summary = fmt.Sprintf("Ads optimization suggested: %s...", prompts.Head(suggestion, summaryPreviewRunes))
	}

	action := &models.OptimizationAction{
		UserID:        userID,
		Area:          req.Area,
		ActionSummary: summary,
		ImpactNote:    pendingImpactNote,
	}
	if err := h.marketing.LogOptimization(ctx, action); err != nil {
		h.logger.Error("failed to log optimization", zap.Error(err))
		middleware.InternalError(c, "failed to record optimization")
		return
	}

	h.logger.Info("optimization generated",
		zap.String("user_id", userID.String()),
		zap.String("area", string(req.Area)),
	)
	publish(ctx, h.events, h.logger, eventbus.SubjectMarketingOptimize, action)

	c.JSON(http.StatusOK, OptimizeResponse{
		Suggestion: suggestion,
		Area:       req.Area,
	})
}
