package competitor

import (
	"fmt"
	"math"
	"strings"

	"github.com/brandpulse/brandpulse/internal/domain"
)

// NoInsightsNote is returned in place of recommendations when every scrape
// failed and no mock substitution happened.
const NoInsightsNote = "No competitor data could be analyzed. Add competitor URLs or an industry to generate recommendations."

// Synthesize derives recommendations from the per-URL insight list. Each rule
// is evaluated independently in declaration order and appended when its gate
// passes. With zero valid insights it returns an empty list plus the sentinel
// note.
func Synthesize(insights []domain.CompetitorInsight, brandContext string) ([]domain.Recommendation, string) {
	recommendations := []domain.Recommendation{}

	valid := make([]*domain.ExtractedFeatures, 0, len(insights))
	for i := range insights {
		if insights[i].Valid() {
			valid = append(valid, insights[i].Analysis)
		}
	}

	if len(valid) == 0 {
		return recommendations, NoInsightsNote
	}

	// 1. Keyword gate
	if top := topKeywords(valid, 5); len(top) > 0 {
		recommendations = append(recommendations, domain.Recommendation{
			Category:    "Content Strategy",
			Title:       "Leverage Competitor Keywords",
			InsightText: fmt.Sprintf("Competitors rank around these terms: %s", strings.Join(top, ", ")),
			ActionText:  "Work these themes into your campaign copy and landing pages to compete for the same audience attention.",
			Priority:    domain.PriorityHigh,
		})
	}

	// 2. Video gate
	videoCount := 0
	for _, f := range valid {
		if f.DesignFlags.HasVideo {
			videoCount++
		}
	}
	if videoCount*2 > len(valid) {
		pct := int(math.Round(float64(videoCount) / float64(len(valid)) * 100))
		recommendations = append(recommendations, domain.Recommendation{
			Category:    "Media Strategy",
			Title:       "Video Content Opportunity",
			InsightText: fmt.Sprintf("%d%% of competitors feature video content prominently.", pct),
			ActionText:  "Produce short-form video assets for your top platforms to match the market baseline.",
			Priority:    domain.PriorityHigh,
		})
	}

	// 3. Value-prop gate (fixed text, does not vary with the propositions found)
	hasValueProps := false
	for _, f := range valid {
		if len(f.ValuePropositions) > 0 {
			hasValueProps = true
			break
		}
	}
	if hasValueProps {
		recommendations = append(recommendations, domain.Recommendation{
			Category:    "Messaging",
			Title:       "Sharpen Your Value Proposition",
			InsightText: "Competitors lead with explicit value propositions on their landing pages.",
			ActionText:  "State your differentiator in the first screen of every campaign page.",
			Priority:    domain.PriorityMedium,
		})
	}

	// 4. CTA density gate
	totalCTA := 0
	for _, f := range valid {
		totalCTA += f.DesignFlags.CTACount
	}
	avgCTA := float64(totalCTA) / float64(len(valid))
	if avgCTA > 5 {
		recommendations = append(recommendations, domain.Recommendation{
			Category:    "Conversion Optimization",
			Title:       "Increase Call-to-Action Density",
			InsightText: fmt.Sprintf("Competitors average %d calls to action per page.", int(math.Round(avgCTA))),
			ActionText:  "Add more conversion points along the page so visitors can act at any scroll depth.",
			Priority:    domain.PriorityMedium,
		})
	}

	// 5. Social-proof gate
	testimonialCount := 0
	for _, f := range valid {
		if len(f.Testimonials) > 0 {
			testimonialCount++
		}
	}
	if testimonialCount > 0 {
		pct := int(math.Round(float64(testimonialCount) / float64(len(valid)) * 100))
		recommendations = append(recommendations, domain.Recommendation{
			Category:    "Trust Building",
			Title:       "Showcase Social Proof",
			InsightText: fmt.Sprintf("%d%% of competitors display customer testimonials.", pct),
			ActionText:  "Collect and surface customer quotes, reviews, or case studies in campaign materials.",
			Priority:    domain.PriorityMedium,
		})
	}

	// 6. Content-depth gate
	totalWords := 0
	for _, f := range valid {
		totalWords += f.WordCount
	}
	avgWords := float64(totalWords) / float64(len(valid))
	if avgWords > 500 {
		recommendations = append(recommendations, domain.Recommendation{
			Category:    "Content Quality",
			Title:       "Invest in Long-Form Content",
			InsightText: fmt.Sprintf("Competitor pages average %d words of content.", int(math.Round(avgWords))),
			ActionText:  "Publish in-depth guides or landing pages to match the content depth buyers expect.",
			Priority:    domain.PriorityLow,
		})
	}

	return recommendations, ""
}

// topKeywords unions competitor keywords preserving per-competitor rank order
func topKeywords(features []*domain.ExtractedFeatures, limit int) []string {
	seen := make(map[string]struct{})
	top := []string{}

	for rank := 0; ; rank++ {
		advanced := false
		for _, f := range features {
			if rank >= len(f.Keywords) {
				continue
			}
			advanced = true
			kw := f.Keywords[rank]
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			top = append(top, kw)
			if len(top) >= limit {
				return top
			}
		}
		if !advanced {
			break
		}
	}
	return top
}
