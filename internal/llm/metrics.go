package llm

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts generation outcomes. A nil *Metrics records nothing.
type Metrics struct {
	outcomes *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewMetrics registers the generation counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "generation",
			Name:      "outcomes_total",
			Help:      "Generation results by tier and the source that produced the text.",
		}, []string{"tier", "source"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "generation",
			Name:      "attempt_failures_total",
			Help:      "Failed remote generation attempts by tier and model.",
		}, []string{"tier", "model"}),
	}
	reg.MustRegister(m.outcomes, m.failures)
	return m
}

func (m *Metrics) observeOutcome(tier Tier, source Source) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(string(tier), string(source)).Inc()
}

func (m *Metrics) observeFailure(tier Tier, model string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(string(tier), model).Inc()
}
