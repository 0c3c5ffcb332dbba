package competitor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/brandpulse/brandpulse/internal/domain"
)

// Fixed pools for the mock generator. Selection is seed-driven, so the same
// inputs always produce the same profile.
var (
	mockStrengthPool = []string{
		"Strong visual branding across landing pages",
		"Clear pricing presentation with tiered plans",
		"Active use of video content on the homepage",
		"Prominent social proof and customer logos",
		"Consistent call-to-action placement above the fold",
		"Well-structured product storytelling",
	}

	mockWeaknessPool = []string{
		"Sparse customer testimonials",
		"Limited content depth on key landing pages",
		"Few calls to action below the fold",
		"No visible video content",
		"Cluttered navigation structure",
		"Weak mobile-first layout signals",
	}

	mockValueProps = []string{
		"Trusted by thousands of customers",
		"Start free, upgrade anytime",
		"Built for modern teams",
		"Results you can measure",
	}
)

// mockMetric pairs a fixed label with its fixed base score
type mockMetric struct {
	label string
	base  int
}

var mockMetrics = []mockMetric{
	{"Visual Appeal", 70},
	{"Market Authority", 60},
	{"Social Engagement", 50},
}

// GenerateMock fabricates a competitor profile when live scraping is skipped,
// unconfigured, or fails. Deterministic: seed = len(hostname) + len(brandContext),
// and every choice is base + seed%range. Not random in any statistical sense,
// just stable pseudo-variation so repeated demos look consistent.
func GenerateMock(rawURL, brandContext, industry string) *domain.ExtractedFeatures {
	hostname := hostnameOf(rawURL)
	seed := len(hostname) + len(brandContext)

	if industry == "" {
		industry = "general"
	}

	metrics := make(map[string]int, len(mockMetrics))
	for _, m := range mockMetrics {
		score := m.base + seed%30
		if score > 98 {
			score = 98
		}
		metrics[m.label] = score
	}

	features := &domain.ExtractedFeatures{
		Title:           fmt.Sprintf("%s | %s solutions", titleCase(industry), hostname),
		MetaDescription: fmt.Sprintf("Leading %s provider serving the market from %s", strings.ToLower(industry), hostname),
		Headings: []string{
			fmt.Sprintf("Why teams choose %s", hostname),
			fmt.Sprintf("The %s platform built for growth", strings.ToLower(industry)),
		},
		Keywords: ExtractKeywords(
			fmt.Sprintf("%s %s marketing growth customers platform solutions brand", industry, brandContext),
			maxKeywords,
		),
		ValuePropositions: []string{
			mockValueProps[seed%len(mockValueProps)],
			mockValueProps[(seed+1)%len(mockValueProps)],
		},
		PricingSnippets: []string{
			fmt.Sprintf("$%d", 19+seed%50),
			fmt.Sprintf("$%d", 49+seed%50),
		},
		Testimonials: []string{
			fmt.Sprintf("Switching to %s was the best decision we made this year.", hostname),
		},
		DesignFlags: domain.DesignFlags{
			HasVideo:     seed%2 == 0,
			ImageCount:   5 + seed%15,
			CTACount:     2 + seed%8,
			Colors:       []string{"#1a1a2e", "#e94560"},
			HasHeader:    true,
			HasNav:       true,
			HasFooter:    true,
			HasSidebar:   seed%3 == 0,
			SectionCount: 3 + seed%5,
		},
		WordCount: 400 + seed%600,

		Strengths: []string{
			mockStrengthPool[seed%len(mockStrengthPool)],
			mockStrengthPool[(seed+2)%len(mockStrengthPool)],
			mockStrengthPool[(seed+4)%len(mockStrengthPool)],
		},
		Weaknesses: []string{
			mockWeaknessPool[seed%len(mockWeaknessPool)],
			mockWeaknessPool[(seed+3)%len(mockWeaknessPool)],
		},
		Metrics: metrics,
	}

	return features
}

func titleCase(s string) string {
	s = strings.ToLower(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// hostnameOf extracts the hostname from a URL, tolerating bare domains
func hostnameOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err == nil && parsed.Hostname() != "" {
		return parsed.Hostname()
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	if idx := strings.IndexAny(trimmed, "/?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}
