package llm

import "strings"

const (
	ReviewFallback = "Thank you so much for your feedback! We truly appreciate your business and are always here to help. Please don't hesitate to reach out if you need anything."

	PromotionalFallback = "🔧 Need reliable HVAC service? We're available 24/7 for all your heating and cooling needs. Call us today for fast, professional service!"

	BidAdvice = "Based on current performance data, consider increasing bids on high-converting keywords during peak hours (6pm-10pm) when emergency calls are highest. Monitor cost-per-lead and pause underperforming keywords with conversion rates below 2%."

	BudgetAdvice = "Current daily budget allocation is performing within acceptable ranges. Consider reallocating 20% of spend from broad match keywords to exact match high-intent terms for better ROI. Monitor closely for the next 7 days."

	ROIAdvice = "Based on historical data, your average customer lifetime value suggests maintaining current investment levels. Focus on improving conversion rate through better ad copy and landing page optimization before increasing budget."

	StrategyAdvice = "Analysis suggests maintaining current strategy while monitoring key performance indicators. Consider incremental adjustments based on weekly performance data."
)

// rule maps prompts containing any of its substrings to a fixed text.
type rule struct {
	substrings []string
	text       string
}

func (r rule) matches(prompt string) bool {
	for _, s := range r.substrings {
		if strings.Contains(prompt, s) {
			return true
		}
	}
	return false
}

// ruleTable is evaluated in order; the first matching rule wins and
// fallback is returned when none match. Matching is case-sensitive.
type ruleTable struct {
	rules    []rule
	fallback string
}

func (t ruleTable) pick(prompt string) string {
	for _, r := range t.rules {
		if r.matches(prompt) {
			return r.text
		}
	}
	return t.fallback
}

var safeFallbacks = ruleTable{
	rules: []rule{
		{substrings: []string{"review", "reply"}, text: ReviewFallback},
	},
	fallback: PromotionalFallback,
}

var deterministicResponses = ruleTable{
	rules: []rule{
		{substrings: []string{"bid", "keyword"}, text: BidAdvice},
		{substrings: []string{"budget", "spend"}, text: BudgetAdvice},
		{substrings: []string{"ROI", "revenue"}, text: ROIAdvice},
	},
	fallback: StrategyAdvice,
}

// SafeFallback returns the static low-cost reply for prompt.
func SafeFallback(prompt string) string {
	return safeFallbacks.pick(prompt)
}

// DeterministicResponse returns the rule-based critical reply for prompt.
func DeterministicResponse(prompt string) string {
	return deterministicResponses.pick(prompt)
}
