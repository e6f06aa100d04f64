// Package prompts builds the text sent to the generation policy from
// domain data. User-supplied fragments are sanitized and bounded here so
// the policy can treat every prompt as trusted and reasonably sized.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/sentinel/api/internal/models"
)

// MaxFragmentRunes bounds any single user-supplied fragment of a prompt
const MaxFragmentRunes = 1000

const (
	defaultBusinessDesc = "local service business"
	defaultKeywords     = "emergency HVAC services"
)

// ReviewReply asks for a short public response to a customer review.
func ReviewReply(rating int, content string) string {
	return fmt.Sprintf(`Write a polite, professional response (2-3 sentences) to this %d-star review: "%s"`,
		rating, Sanitize(content))
}

// GBPPost asks for a promotional Google Business Profile post.
func GBPPost(profile *models.BusinessProfile) string {
	desc := defaultBusinessDesc
	if profile != nil && strings.TrimSpace(profile.BusinessDesc) != "" {
		desc = Sanitize(profile.BusinessDesc)
	}
	return fmt.Sprintf(`Create a promotional Google Business Profile post (2-3 sentences) for a business with this description: "%s". Make it engaging and include a call-to-action.`, desc)
}

// AdsOptimization asks for one concrete change to a paid search campaign.
func AdsOptimization(campaign *models.AdsCampaign) string {
	keywords := defaultKeywords
	if campaign != nil && len(campaign.Keywords) > 0 {
		if b, err := json.Marshal(campaign.Keywords); err == nil {
			keywords = Truncate(string(b), MaxFragmentRunes)
		}
	}
	return fmt.Sprintf("Suggest one specific Google Ads optimization (bid adjustment, keyword change, or budget reallocation) for a campaign targeting: %s. Be specific with numbers.", keywords)
}

// ChatAssistant wraps a business owner's question for the assistant.
func ChatAssistant(message string) string {
	return fmt.Sprintf(`You are Sentinel, an AI marketing assistant for a local business. The business owner asks: "%s". Provide a helpful, concise response (2-3 sentences) about their marketing, ads, or business performance.`,
		Sanitize(message))
}

// Sanitize makes s safe to embed in a quoted prompt fragment: double
// quotes become single quotes, control characters and runs of whitespace
// collapse to one space, and the result is bounded to MaxFragmentRunes.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		switch {
		case r == '"':
			r = '\''
		case unicode.IsSpace(r) || unicode.IsControl(r):
			if !space {
				b.WriteRune(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}

	return Truncate(strings.TrimSpace(b.String()), MaxFragmentRunes)
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// Head returns at most the first n runes of s without any marker.
func Head(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
