package strategy

import (
	"strings"

	"github.com/brandpulse/brandpulse/internal/domain"
)

// keywordRule maps trigger substrings to a fixed field value. Rules are
// evaluated in declaration order; the first match wins.
type keywordRule struct {
	triggers []string
	value    string
}

var audienceRules = []keywordRule{
	{[]string{"student", "college"}, "college students and young adults"},
	{[]string{"teen", "gen z"}, "Gen Z"},
	{[]string{"professional", "business"}, "working professionals"},
	{[]string{"parent", "family", "families"}, "parents and families"},
	{[]string{"senior", "elder"}, "older adults"},
}

var toneRules = []keywordRule{
	{[]string{"sustainable", "eco"}, "eco-conscious and authentic"},
	{[]string{"luxury", "premium"}, "sophisticated and aspirational"},
	{[]string{"fun", "playful"}, "fun and energetic"},
	{[]string{"tech", "innovative"}, "modern and forward-looking"},
}

var goalRules = []keywordRule{
	{[]string{"awareness"}, "increase brand awareness"},
	{[]string{"sales", "sell", "revenue"}, "drive sales"},
	{[]string{"launch"}, "launch new product"},
	{[]string{"engagement", "community"}, "grow community engagement"},
}

const genericGoal = "increase brand awareness"

// FallbackParse builds a strategy from raw text with keyword heuristics,
// used when the LLM path is unavailable or fails. Pure function of the
// input: no network, no state.
func FallbackParse(text string) domain.CampaignStrategy {
	lowered := strings.ToLower(text)

	s := domain.CampaignStrategy{
		Product:   extractProductName(text),
		Audience:  matchRule(audienceRules, lowered, ""),
		Tone:      matchRule(toneRules, lowered, ""),
		Goal:      matchRule(goalRules, lowered, genericGoal),
		Platforms: append([]string(nil), domain.DefaultPlatforms...),
	}
	s.Normalize()
	return s
}

// extractProductName takes the text before the first dash-like separator,
// else the first 50 characters.
func extractProductName(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	if idx := strings.IndexAny(trimmed, "-–—:"); idx > 0 {
		return strings.TrimSpace(trimmed[:idx])
	}

	if len(trimmed) > 50 {
		trimmed = trimmed[:50]
	}
	return strings.TrimSpace(trimmed)
}

func matchRule(rules []keywordRule, loweredText, fallback string) string {
	for _, rule := range rules {
		for _, trigger := range rule.triggers {
			if strings.Contains(loweredText, trigger) {
				return rule.value
			}
		}
	}
	return fallback
}
