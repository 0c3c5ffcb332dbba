package competitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandpulse/brandpulse/internal/domain"
)

func insightWith(f *domain.ExtractedFeatures) domain.CompetitorInsight {
	return domain.CompetitorInsight{
		SourceURL: "https://example.com",
		Domain:    "example.com",
		Analysis:  f,
	}
}

func TestSynthesize_ZeroValidInsightsReturnsNote(t *testing.T) {
	insights := []domain.CompetitorInsight{
		{SourceURL: "https://a.com", ScrapeError: "connection refused"},
		{SourceURL: "https://b.com", ScrapeError: "timeout"},
	}

	recs, note := Synthesize(insights, "brand")

	assert.Empty(t, recs)
	assert.Equal(t, NoInsightsNote, note)
	require.NotNil(t, recs, "recommendations must be an empty list, not nil")
}

func TestSynthesize_VideoGateAt100Percent(t *testing.T) {
	insights := []domain.CompetitorInsight{
		insightWith(&domain.ExtractedFeatures{DesignFlags: domain.DesignFlags{HasVideo: true}}),
		insightWith(&domain.ExtractedFeatures{DesignFlags: domain.DesignFlags{HasVideo: true}}),
	}

	recs, note := Synthesize(insights, "brand")

	assert.Empty(t, note)
	video := findRec(recs, "Video Content Opportunity")
	require.NotNil(t, video)
	assert.Equal(t, "Media Strategy", video.Category)
	assert.Contains(t, video.InsightText, "100%")
}

func TestSynthesize_VideoGateRequiresMajority(t *testing.T) {
	insights := []domain.CompetitorInsight{
		insightWith(&domain.ExtractedFeatures{DesignFlags: domain.DesignFlags{HasVideo: true}}),
		insightWith(&domain.ExtractedFeatures{}),
	}

	recs, _ := Synthesize(insights, "brand")

	// exactly half is not "more than half"
	assert.Nil(t, findRec(recs, "Video Content Opportunity"))
}

func TestSynthesize_KeywordGate(t *testing.T) {
	insights := []domain.CompetitorInsight{
		insightWith(&domain.ExtractedFeatures{Keywords: []string{"growth", "retention", "brand", "launch", "scale", "extra"}}),
	}

	recs, _ := Synthesize(insights, "brand")

	kw := findRec(recs, "Leverage Competitor Keywords")
	require.NotNil(t, kw)
	assert.Contains(t, kw.InsightText, "growth")
	assert.NotContains(t, kw.InsightText, "extra", "only the top 5 keywords are listed")
	assert.Equal(t, domain.PriorityHigh, kw.Priority)
}

func TestSynthesize_CTADensityGate(t *testing.T) {
	above := []domain.CompetitorInsight{
		insightWith(&domain.ExtractedFeatures{DesignFlags: domain.DesignFlags{CTACount: 8}}),
		insightWith(&domain.ExtractedFeatures{DesignFlags: domain.DesignFlags{CTACount: 6}}),
	}
	recs, _ := Synthesize(above, "brand")
	cta := findRec(recs, "Increase Call-to-Action Density")
	require.NotNil(t, cta)
	assert.Contains(t, cta.InsightText, "7")

	below := []domain.CompetitorInsight{
		insightWith(&domain.ExtractedFeatures{DesignFlags: domain.DesignFlags{CTACount: 5}}),
	}
	recs, _ = Synthesize(below, "brand")
	assert.Nil(t, findRec(recs, "Increase Call-to-Action Density"), "average of exactly 5 does not pass")
}

func TestSynthesize_SocialProofGate(t *testing.T) {
	insights := []domain.CompetitorInsight{
		insightWith(&domain.ExtractedFeatures{Testimonials: []string{"great product, changed my life"}}),
		insightWith(&domain.ExtractedFeatures{}),
	}

	recs, _ := Synthesize(insights, "brand")

	proof := findRec(recs, "Showcase Social Proof")
	require.NotNil(t, proof)
	assert.Contains(t, proof.InsightText, "50%")
}

func TestSynthesize_ContentDepthGate(t *testing.T) {
	insights := []domain.CompetitorInsight{
		insightWith(&domain.ExtractedFeatures{WordCount: 800}),
		insightWith(&domain.ExtractedFeatures{WordCount: 400}),
	}

	recs, _ := Synthesize(insights, "brand")

	depth := findRec(recs, "Invest in Long-Form Content")
	require.NotNil(t, depth)
	assert.Contains(t, depth.InsightText, "600")
	assert.Equal(t, domain.PriorityLow, depth.Priority)
}

func TestSynthesize_GateOrderIsFixed(t *testing.T) {
	// One insight that trips every gate
	insights := []domain.CompetitorInsight{
		insightWith(&domain.ExtractedFeatures{
			Keywords:          []string{"growth", "brand"},
			ValuePropositions: []string{"the best product ever made"},
			Testimonials:      []string{"this testimonial is long enough to count"},
			WordCount:         900,
			DesignFlags:       domain.DesignFlags{HasVideo: true, CTACount: 9},
		}),
	}

	recs, note := Synthesize(insights, "brand")

	assert.Empty(t, note)
	require.Len(t, recs, 6)
	categories := make([]string, len(recs))
	for i, r := range recs {
		categories[i] = r.Category
	}
	assert.Equal(t, []string{
		"Content Strategy",
		"Media Strategy",
		"Messaging",
		"Conversion Optimization",
		"Trust Building",
		"Content Quality",
	}, categories)
}

func TestSynthesize_IgnoresInvalidInsightsInAverages(t *testing.T) {
	insights := []domain.CompetitorInsight{
		insightWith(&domain.ExtractedFeatures{WordCount: 900}),
		{SourceURL: "https://failed.com", ScrapeError: "boom"},
	}

	recs, note := Synthesize(insights, "brand")

	assert.Empty(t, note)
	// Average over the single valid insight is 900, not 450
	assert.NotNil(t, findRec(recs, "Invest in Long-Form Content"))
}

func findRec(recs []domain.Recommendation, title string) *domain.Recommendation {
	for i := range recs {
		if recs[i].Title == title {
			return &recs[i]
		}
	}
	return nil
}
