package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sentinel/api/internal/middleware"
	"github.com/sentinel/api/internal/models"
	"github.com/sentinel/api/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubGenerator records prompts and answers with fixed text per tier.
type stubGenerator struct {
	mu       sync.Mutex
	lowCost  []string
	critical []string
	lowText  string
	critText string
}

func (g *stubGenerator) GenerateLowCost(_ context.Context, prompt string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lowCost = append(g.lowCost, prompt)
	return g.lowText
}

func (g *stubGenerator) GenerateCritical(_ context.Context, prompt string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.critical = append(g.critical, prompt)
	return g.critText
}

type publishedEvent struct {
	subject string
	data    any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{subject, data})
	return p.err
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.subject
	}
	return out
}

type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[uuid.UUID]*models.User{}}
}

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrConflict
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	cp.PasswordHash = ""
	return &cp, nil
}

type memReviews struct {
	mu       sync.Mutex
	reviews  []*models.Review
	setReply int
	failSet  bool
}

func (m *memReviews) add(userID uuid.UUID, rating int, status models.ReviewStatus, reply *string, age time.Duration) *models.Review {
	rv := &models.Review{
		ID:               uuid.New(),
		UserID:           userID,
		Rating:           rating,
		Content:          "review body",
		SourcePlatform:   "google",
		Status:           status,
		AISuggestedReply: reply,
		CreatedAt:        time.Now().Add(-age),
	}
	m.reviews = append(m.reviews, rv)
	return rv
}

func (m *memReviews) find(id uuid.UUID) *models.Review {
	for _, rv := range m.reviews {
		if rv.ID == id {
			return rv
		}
	}
	return nil
}

func (m *memReviews) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Review{}
	for _, rv := range m.reviews {
		if rv.UserID == userID {
			out = append(out, *rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memReviews) GetForUser(_ context.Context, id, userID uuid.UUID) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rv := m.find(id)
	if rv == nil || rv.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *rv
	return &cp, nil
}

func (m *memReviews) SetSuggestedReply(_ context.Context, id uuid.UUID, reply string) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return nil, errors.New("write failed")
	}
	rv := m.find(id)
	if rv == nil {
		return nil, repository.ErrNotFound
	}
	m.setReply++
	rv.AISuggestedReply = &reply
	cp := *rv
	return &cp, nil
}

func (m *memReviews) SetStatus(_ context.Context, id uuid.UUID, status models.ReviewStatus) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rv := m.find(id)
	if rv == nil {
		return nil, repository.ErrNotFound
	}
	rv.Status = status
	cp := *rv
	return &cp, nil
}

type memChat struct {
	mu       sync.Mutex
	messages []models.ChatMessage
	clock    time.Time
}

func (m *memChat) Recent(_ context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var mine []models.ChatMessage
	for _, msg := range m.messages {
		if msg.UserID == userID {
			mine = append(mine, msg)
		}
	}
	if len(mine) > limit {
		mine = mine[len(mine)-limit:]
	}
	out := make([]models.ChatMessage, len(mine))
	copy(out, mine)
	return out, nil
}

func (m *memChat) Append(_ context.Context, msg *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clock.IsZero() {
		m.clock = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	m.clock = m.clock.Add(time.Second)
	msg.ID = uuid.New()
	msg.CreatedAt = m.clock
	m.messages = append(m.messages, *msg)
	return nil
}

type memMarketing struct {
	mu       sync.Mutex
	profile  *models.BusinessProfile
	campaign *models.AdsCampaign
	actions  []models.OptimizationAction
	err      error
}

func (m *memMarketing) BusinessProfile(context.Context, uuid.UUID) (*models.BusinessProfile, error) {
	return m.profile, m.err
}

func (m *memMarketing) ActiveCampaign(context.Context, uuid.UUID) (*models.AdsCampaign, error) {
	return m.campaign, m.err
}

func (m *memMarketing) RecentOptimizations(_ context.Context, _ uuid.UUID, limit int) ([]models.OptimizationAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.OptimizationAction{}
	for i := len(m.actions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.actions[i])
	}
	return out, nil
}

func (m *memMarketing) LogOptimization(_ context.Context, action *models.OptimizationAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	action.ID = uuid.New()
	action.Timestamp = time.Now()
	m.actions = append(m.actions, *action)
	return nil
}

// asUser injects an authenticated identity without a token.
func asUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetUser(c, id, "owner@example.com")
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

type errorBody = middleware.ErrorResponse
