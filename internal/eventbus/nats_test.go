package eventbus

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestNewEvent(t *testing.T) {
	evt, err := NewEvent(SubjectReviewReplied, map[string]string{"review_id": "abc"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	if evt.ID == "" || evt.Timestamp.IsZero() {
		t.Errorf("expected id and timestamp, got %+v", evt)
	}
	if evt.Subject != SubjectReviewReplied {
		t.Errorf("unexpected subject %q", evt.Subject)
	}

	var data map[string]string
	if err := json.Unmarshal(evt.Data, &data); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if data["review_id"] != "abc" {
		t.Errorf("unexpected payload %v", data)
	}
}

func TestNewEventRejectsUnencodable(t *testing.T) {
	if _, err := NewEvent(SubjectChatMessage, make(chan int)); err == nil {
		t.Error("expected encode error")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), SubjectChatMessage, "hi"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	p.Close()
}

func TestConnectUnreachable(t *testing.T) {
	if _, err := Connect("nats://127.0.0.1:1", zaptest.NewLogger(t)); err == nil {
		t.Error("expected connection error")
	}
}

func TestStreamCoversSubjects(t *testing.T) {
	for _, subject := range []string{
		SubjectReviewReplied, SubjectReviewEscalated, SubjectMarketingOptimize, SubjectChatMessage,
	} {
		covered := false
		for _, pattern := range streamSubjects {
			if strings.HasPrefix(subject, strings.TrimSuffix(pattern, "*")) {
				covered = true
			}
		}
		if !covered {
			t.Errorf("subject %s is not captured by the stream", subject)
		}
	}
}
