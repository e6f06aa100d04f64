// Package llm implements tiered text generation: remote chat-completion
// attempts in a fixed order per tier, then static or rule-based text.
// Generation never returns an error to the caller.
package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/sentinel/api/internal/llm")

// Tier is the cost/criticality class of a generation request
type Tier string

const (
	// TierLowCost is for routine content such as review replies and posts.
	TierLowCost Tier = "low-cost"
	// TierCritical is for output that drives business decisions.
	TierCritical Tier = "critical"
)

// Valid returns true if the tier is a known value.
func (t Tier) Valid() bool {
	return t == TierLowCost || t == TierCritical
}

// Source identifies what produced a generation outcome
type Source string

const (
	SourcePrimary  Source = "primary-model"
	SourceBackup   Source = "backup-model"
	SourceFallback Source = "fallback"
)

// Request is a single generation request
type Request struct {
	Prompt string
	Tier   Tier
}

// Outcome is the result of a generation request. Model is empty when
// Source is SourceFallback.
type Outcome struct {
	Text   string
	Source Source
	Model  string
}

// Models names the remote model identifiers used per tier
type Models struct {
	LowCostPrimary string
	LowCostBackup  string
	Critical       string
}

// Generator is what request handlers depend on.
type Generator interface {
	GenerateLowCost(ctx context.Context, prompt string) string
	GenerateCritical(ctx context.Context, prompt string) string
}

// Policy decides which models to call, in which order, and what to return
// when all of them fail. It holds no mutable state and is safe for
// concurrent use.
type Policy struct {
	completer Completer
	models    Models
	logger    *zap.Logger
	metrics   *Metrics
}

// NewPolicy creates a generation policy. metrics may be nil.
func NewPolicy(completer Completer, models Models, logger *zap.Logger, metrics *Metrics) *Policy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{
		completer: completer,
		models:    models,
		logger:    logger,
		metrics:   metrics,
	}
}

// GenerateLowCost runs the low-cost chain: primary, backup, static fallback.
func (p *Policy) GenerateLowCost(ctx context.Context, prompt string) string {
	return p.Generate(ctx, Request{Prompt: prompt, Tier: TierLowCost}).Text
}

// GenerateCritical runs the critical chain: critical model, rule-based response.
func (p *Policy) GenerateCritical(ctx context.Context, prompt string) string {
	return p.Generate(ctx, Request{Prompt: prompt, Tier: TierCritical}).Text
}

// Generate resolves req and reports which source produced the text.
// Unknown tiers are served as low-cost.
func (p *Policy) Generate(ctx context.Context, req Request) Outcome {
	tier := req.Tier
	if !tier.Valid() {
		tier = TierLowCost
	}

	var out Outcome
	switch tier {
	case TierCritical:
		out = p.critical(ctx, req.Prompt)
	default:
		out = p.lowCost(ctx, req.Prompt)
	}

	p.metrics.observeOutcome(tier, out.Source)
	p.logger.Debug("generation resolved",
		zap.String("tier", string(tier)),
		zap.String("source", string(out.Source)),
		zap.String("model", out.Model),
	)
	return out
}

func (p *Policy) lowCost(ctx context.Context, prompt string) Outcome {
	if text, ok := p.attempt(ctx, TierLowCost, p.models.LowCostPrimary, prompt); ok {
		return Outcome{Text: text, Source: SourcePrimary, Model: p.models.LowCostPrimary}
	}
	if text, ok := p.attempt(ctx, TierLowCost, p.models.LowCostBackup, prompt); ok {
		return Outcome{Text: text, Source: SourceBackup, Model: p.models.LowCostBackup}
	}
	return Outcome{Text: SafeFallback(prompt), Source: SourceFallback}
}

func (p *Policy) critical(ctx context.Context, prompt string) Outcome {
	if text, ok := p.attempt(ctx, TierCritical, p.models.Critical, prompt); ok {
		return Outcome{Text: text, Source: SourcePrimary, Model: p.models.Critical}
	}
	return Outcome{Text: DeterministicResponse(prompt), Source: SourceFallback}
}

// attempt makes one remote call. Every error, and any panic from the
// completer, is absorbed and reported as ok == false.
func (p *Policy) attempt(ctx context.Context, tier Tier, model, prompt string) (text string, ok bool) {
	ctx, span := tracer.Start(ctx, "llm.attempt")
	span.SetAttributes(
		attribute.String("llm.tier", string(tier)),
		attribute.String("llm.model", model),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("generation attempt panicked",
				zap.String("tier", string(tier)),
				zap.String("model", model),
				zap.Any("panic", r),
			)
			span.SetStatus(codes.Error, "panic")
			p.metrics.observeFailure(tier, model)
			text, ok = "", false
		}
	}()

	text, err := p.completer.Complete(ctx, model, prompt)
	if err != nil {
		p.logger.Warn("generation attempt failed",
			zap.String("tier", string(tier)),
			zap.String("model", model),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.metrics.observeFailure(tier, model)
		return "", false
	}
	return text, true
}
