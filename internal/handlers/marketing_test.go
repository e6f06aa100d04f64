package handlers

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sentinel/api/internal/eventbus"
	"github.com/sentinel/api/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
)

func newMarketingRouter(t *testing.T, repo *memMarketing, gen *stubGenerator, events *recordingPublisher) *gin.Engine {
	h := NewMarketingHandler(repo, gen, events, zaptest.NewLogger(t))
	r := gin.New()
	api := r.Group("/api/marketing", asUser(uuid.New()))
	api.GET("/overview", h.GetOverview)
	api.POST("/optimize", h.Optimize)
	return r
}

func TestOptimizeGBP(t *testing.T) {
	repo := &memMarketing{profile: &models.BusinessProfile{BusinessDesc: "24/7 furnace repair"}}
	gen := &stubGenerator{lowText: strings.Repeat("a", 150)}
	events := &recordingPublisher{}
	r := newMarketingRouter(t, repo, gen, events)

	w := doJSON(t, r, http.MethodPost, "/api/marketing/optimize", `{"area":"GBP"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decode[OptimizeResponse](t, w)
	if got.Area != models.AreaGBP || got.Suggestion != gen.lowText {
		t.Errorf("unexpected response %+v", got)
	}
	if len(gen.lowCost) != 1 || len(gen.critical) != 0 {
		t.Fatalf("GBP must use the low-cost tier")
	}
	if !strings.Contains(gen.lowCost[0], "24/7 furnace repair") {
		t.Errorf("prompt should carry the business description: %q", gen.lowCost[0])
	}

	if len(repo.actions) != 1 {
		t.Fatalf("expected one logged action, got %d", len(repo.actions))
	}
	action := repo.actions[0]
	want := `Generated new GBP promotional post: "` + strings.Repeat("a", 100) + `..."`
	if action.ActionSummary != want {
		t.Errorf("unexpected summary %q", action.ActionSummary)
	}
	if action.ImpactNote != "Pending implementation" {
		t.Errorf("unexpected impact note %q", action.ImpactNote)
	}
	if subjects := events.subjects(); len(subjects) != 1 || subjects[0] != eventbus.SubjectMarketingOptimize {
		t.Errorf("unexpected events %v", subjects)
	}
}

func TestOptimizeAds(t *testing.T) {
	repo := &memMarketing{campaign: &models.AdsCampaign{
		Keywords:    []models.Keyword{{Keyword: "furnace repair tacoma", MatchType: "broad", Bid: 1.9}},
		DailyBudget: decimal.NewFromInt(50),
	}}
	gen := &stubGenerator{critText: "Raise the bid on furnace repair tacoma to $2.40."}
	r := newMarketingRouter(t, repo, gen, &recordingPublisher{})

	w := doJSON(t, r, http.MethodPost, "/api/marketing/optimize", `{"area":"ADS"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(gen.critical) != 1 || len(gen.lowCost) != 0 {
		t.Fatalf("ADS must use the critical tier")
	}
	if !strings.Contains(gen.critical[0], `"keyword":"furnace repair tacoma"`) {
		t.Errorf("prompt should carry campaign keywords: %q", gen.critical[0])
	}
	want := "Ads optimization suggested: " + gen.critText + "..."
	if repo.actions[0].ActionSummary != want {
		t.Errorf("unexpected summary %q", repo.actions[0].ActionSummary)
	}
}

func TestOptimizeRejectsUnknownArea(t *testing.T) {
	repo := &memMarketing{}
	gen := &stubGenerator{}
	r := newMarketingRouter(t, repo, gen, &recordingPublisher{})

	for _, body := range []string{`{}`, `{"area":"gbp"}`, `{"area":"SEO"}`, `[`} {
		w := doJSON(t, r, http.MethodPost, "/api/marketing/optimize", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
		}
	}
	if len(repo.actions) != 0 || len(gen.lowCost)+len(gen.critical) != 0 {
		t.Error("rejected requests must have no side effects")
	}
}

func TestOverview(t *testing.T) {
	repo := &memMarketing{
		profile:  &models.BusinessProfile{Status: "live"},
		campaign: &models.AdsCampaign{CampaignName: "Emergency HVAC", Status: models.CampaignStatusActive},
	}
	for i := 0; i < 7; i++ {
		repo.actions = append(repo.actions, models.OptimizationAction{
			ID:            uuid.New(),
			Area:          models.AreaAds,
			ActionSummary: string(rune('a' + i)),
			Timestamp:     time.Now().Add(time.Duration(i) * time.Minute),
		})
	}
	r := newMarketingRouter(t, repo, &stubGenerator{}, &recordingPublisher{})

	w := doJSON(t, r, http.MethodGet, "/api/marketing/overview", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := decode[OverviewResponse](t, w)
	if got.BusinessProfile == nil || got.AdsCampaign == nil {
		t.Fatalf("expected profile and campaign, got %+v", got)
	}
	if len(got.RecentOptimizations) != 5 || got.RecentOptimizations[0].ActionSummary != "g" {
		t.Errorf("expected the 5 newest actions, got %+v", got.RecentOptimizations)
	}
}

func TestOverviewEmpty(t *testing.T) {
	r := newMarketingRouter(t, &memMarketing{}, &stubGenerator{}, &recordingPublisher{})

	w := doJSON(t, r, http.MethodGet, "/api/marketing/overview", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`"business_profile":null`, `"ads_campaign":null`, `"recent_optimizations":[]`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in %s", want, body)
		}
	}
}

func TestOverviewRepositoryError(t *testing.T) {
	r := newMarketingRouter(t, &memMarketing{err: errors.New("db down")}, &stubGenerator{}, &recordingPublisher{})

	if w := doJSON(t, r, http.MethodGet, "/api/marketing/overview", ""); w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
