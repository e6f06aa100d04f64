package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerRequestScopedFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tp := trace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(t.Context()) }()

	userID := uuid.New()
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zap.New(core)))
	r.Use(func(c *gin.Context) {
		ctx, span := tp.Tracer("test").Start(c.Request.Context(), "request")
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	r.GET("/api/reviews/:id", func(c *gin.Context) {
		SetUser(c, userID, "owner@example.com")
		NotFound(c, "review not found")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reviews/abc", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	entries := logs.FilterMessage("client error").All()
	if len(entries) != 1 {
		t.Fatalf("expected one access log line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["route"] != "/api/reviews/:id" || fields["path"] != "/api/reviews/abc" {
		t.Errorf("unexpected route/path %v / %v", fields["route"], fields["path"])
	}
	if fields["user_id"] != userID.String() {
		t.Errorf("expected user_id %s, got %v", userID, fields["user_id"])
	}
	if fields["request_id"] != w.Header().Get("X-Request-ID") || fields["request_id"] == "" {
		t.Errorf("request_id %v does not match response header", fields["request_id"])
	}
	if id, _ := fields["trace_id"].(string); len(id) != 32 {
		t.Errorf("expected a trace id, got %v", fields["trace_id"])
	}
	if errs, _ := fields["errors"].([]interface{}); len(errs) != 1 || errs[0] != "NOT_FOUND: review not found" {
		t.Errorf("expected recorded error, got %v", fields["errors"])
	}
}

func TestRequestLoggerUnmatchedRoute(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one log line, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["route"]; got != "unmatched" {
		t.Errorf("expected unmatched route, got %v", got)
	}
	if _, ok := entries[0].ContextMap()["user_id"]; ok {
		t.Error("anonymous request must not log a user id")
	}
}

func TestRespondErrorAbortsChain(t *testing.T) {
	reached := false
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		RespondErrorWithRetry(c, http.StatusTooManyRequests, ErrCodeRateLimited, "slow down", 1500)
	}, func(c *gin.Context) {
		reached = true
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if reached {
		t.Error("handlers after an error response must not run")
	}
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != ErrCodeRateLimited || body.Error.Message != "slow down" || body.Error.RetryAfter != 1500 {
		t.Errorf("unexpected body %+v", body)
	}
}
