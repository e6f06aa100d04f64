// Package eventbus publishes domain events to NATS. Publishing is best
// effort: callers log failures and carry on.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subjects published by the API
const (
	SubjectReviewReplied     = "reviews.replied"
	SubjectReviewEscalated   = "reviews.escalated"
	SubjectMarketingOptimize = "marketing.optimization"
	SubjectChatMessage       = "chat.message"
)

// StreamName is the JetStream stream capturing every API subject
const StreamName = "SENTINEL"

var streamSubjects = []string{"reviews.*", "marketing.*", "chat.*"}

// Event wraps the payload with metadata
type Event struct {
	ID        string          `json:"id"`
	Subject   string          `json:"subject"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent encodes data into an envelope for subject.
func NewEvent(subject string, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", subject, err)
	}
	return &Event{
		ID:        uuid.NewString(),
		Subject:   subject,
		Data:      payload,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Publisher emits domain events
type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
	Close()
}

// NATSPublisher publishes to JetStream when the server supports it and to
// core NATS otherwise.
type NATSPublisher struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	logger *zap.Logger
}

// Connect dials NATS and ensures the event stream exists.
func Connect(natsURL string, logger *zap.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("sentinel-api"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, fmt.Errorf("error connecting to nats: %w", err)
	}

	p := &NATSPublisher{nc: nc, logger: logger}

	js, err := nc.JetStream()
	if err != nil {
		logger.Warn("JetStream unavailable, using core NATS", zap.Error(err))
		return p, nil
	}
	if err := ensureStream(js); err != nil {
		logger.Warn("Could not provision event stream, using core NATS", zap.Error(err))
		return p, nil
	}
	p.js = js

	logger.Info("NATS and JetStream initialized", zap.String("stream", StreamName))
	return p, nil
}

func ensureStream(js nats.JetStreamContext) error {
	_, err := js.StreamInfo(StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return err
	}
	_, err = js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: streamSubjects,
		MaxAge:   7 * 24 * time.Hour,
	})
	return err
}

// Publish encodes data as an Event and sends it on subject.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, data any) error {
	evt, err := NewEvent(subject, data)
	if err != nil {
		return err
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event envelope: %w", err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = body
	msg.Header.Set(nats.MsgIdHdr, evt.ID)

	if p.js != nil {
		_, err = p.js.PublishMsg(msg, nats.Context(ctx))
		return err
	}
	return p.nc.PublishMsg(msg)
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn("NATS drain failed", zap.Error(err))
		p.nc.Close()
	}
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

func (NopPublisher) Close() {}
