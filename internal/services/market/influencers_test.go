package market

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandpulse/brandpulse/internal/config"
	"github.com/brandpulse/brandpulse/internal/domain"
)

func searchCfg() config.SearchConfig {
	return config.SearchConfig{
		GoogleAPIKey:   "test-key",
		GoogleEngineID: "test-cx",
		Timeout:        5 * time.Second,
		MaxResults:     10,
	}
}

func googleServer(t *testing.T, items []SearchResult) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "test-cx", r.URL.Query().Get("cx"))
		assert.NotEmpty(t, r.URL.Query().Get("q"))
		json.NewEncoder(w).Encode(map[string]any{"items": items})
	}))
}

func TestFindInfluencers_RequiresDomain(t *testing.T) {
	svc := NewService(searchCfg(), nil, nil)
	_, err := svc.FindInfluencers(context.Background(), "  ", "students", 5, nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestFindInfluencers_RequiresProvider(t *testing.T) {
	svc := NewService(config.SearchConfig{MaxResults: 10}, nil, nil)
	_, err := svc.FindInfluencers(context.Background(), "fashion", "students", 5, nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestFindInfluencers_GoogleResults(t *testing.T) {
	srv := googleServer(t, []SearchResult{
		{Title: "Eco influencer on Instagram", Link: "https://instagram.com/ecostar", Snippet: "instagram profile"},
		{Title: "Top 10 sustainability creators", Link: "https://blog.example.com/top10", Snippet: "youtube and tiktok roundup"},
	})
	defer srv.Close()

	svc := NewService(searchCfg(), nil, nil)
	svc.googleBaseURL = srv.URL

	report, err := svc.FindInfluencers(context.Background(), "sustainability", "college students", 5, nil)
	require.NoError(t, err)

	assert.Equal(t, "sustainability", report.Domain)
	assert.Len(t, report.QueriesUsed, 4)
	// same two results come back for each query, deduped by link
	assert.Equal(t, 2, report.InfluencersCount)
	// profile link sorts first
	assert.Equal(t, "https://instagram.com/ecostar", report.Influencers[0].Link)
}

func TestFindInfluencers_SerpAPIFallback(t *testing.T) {
	googleSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer googleSrv.Close()

	serpSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "serp-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "google", r.URL.Query().Get("engine"))
		json.NewEncoder(w).Encode(map[string]any{
			"organic_results": []SearchResult{
				{Title: "Fitness creator", Link: "https://tiktok.com/@fitperson", Snippet: "tiktok workouts"},
			},
		})
	}))
	defer serpSrv.Close()

	cfg := searchCfg()
	cfg.SerpAPIKey = "serp-key"
	svc := NewService(cfg, nil, nil)
	svc.googleBaseURL = googleSrv.URL
	svc.serpAPIBaseURL = serpSrv.URL

	report, err := svc.FindInfluencers(context.Background(), "fitness", "gym goers", 5, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.InfluencersCount)
	assert.Equal(t, "https://tiktok.com/@fitperson", report.Influencers[0].Link)
}

func TestFindInfluencers_AllQueriesFailYieldsEmptyReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewService(searchCfg(), nil, nil)
	svc.googleBaseURL = srv.URL

	report, err := svc.FindInfluencers(context.Background(), "fashion", "teens", 5, nil)
	require.NoError(t, err, "provider outage degrades to an empty report")

	assert.Equal(t, 0, report.InfluencersCount)
	assert.Equal(t, "low", report.Insights.SearchEffectiveness)
	assert.NotEmpty(t, report.Recommendations)
	assert.Contains(t, report.Recommendations[0], "Limited influencer results")
}

func TestFindInfluencers_CapsResults(t *testing.T) {
	items := make([]SearchResult, 8)
	for i := range items {
		items[i] = SearchResult{
			Title:   "creator",
			Link:    "https://blog.example.com/post" + string(rune('a'+i)),
			Snippet: "instagram",
		}
	}
	srv := googleServer(t, items)
	defer srv.Close()

	svc := NewService(searchCfg(), nil, nil)
	svc.googleBaseURL = srv.URL

	report, err := svc.FindInfluencers(context.Background(), "travel", "backpackers", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, report.InfluencersCount)
}

func TestIsProfileLink(t *testing.T) {
	tests := []struct {
		link string
		want bool
	}{
		{"https://instagram.com/ecostar", true},
		{"https://www.instagram.com/eco.star/", true},
		{"https://instagram.com/ecostar/reels/xyz", false},
		{"https://tiktok.com/@fitperson", true},
		{"https://twitter.com/someone", true},
		{"https://linkedin.com/in/jane-doe", true},
		{"https://youtube.com/@techchannel", true},
		{"https://youtube.com/channel/UC123abc", true},
		{"https://youtube.com/watch?v=abc", false},
		{"https://blog.example.com/top10", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isProfileLink(tt.link), "link: %s", tt.link)
	}
}

func TestBuildInsights(t *testing.T) {
	results := []SearchResult{
		{Title: "Instagram star", Link: "https://instagram.com/a", Snippet: "instagram content"},
		{Title: "YouTube channel", Link: "https://youtube.com/@b", Snippet: "video essays"},
		{Title: "Another instagram page", Link: "https://instagram.com/c", Snippet: ""},
		{Title: "Creator roundup", Link: "https://blog.example.com/x", Snippet: "blog post about tiktok"},
		{Title: "More creators", Link: "https://blog.example.com/y", Snippet: "blog list"},
	}

	insights := buildInsights(results)

	assert.Equal(t, 5, insights.TotalFound)
	assert.Equal(t, "high", insights.SearchEffectiveness)
	assert.Equal(t, 3, insights.PlatformDistribution["instagram"])
	assert.Equal(t, 2, insights.PlatformDistribution["blog"])
	assert.Len(t, insights.RecommendedPlatforms, 3)
	assert.Equal(t, "instagram", insights.RecommendedPlatforms[0])
}

func TestBuildInsights_EffectivenessThresholds(t *testing.T) {
	mk := func(n int) []SearchResult {
		out := make([]SearchResult, n)
		for i := range out {
			out[i] = SearchResult{Link: "https://x.example/" + string(rune('a'+i))}
		}
		return out
	}

	assert.Equal(t, "low", buildInsights(mk(2)).SearchEffectiveness)
	assert.Equal(t, "medium", buildInsights(mk(3)).SearchEffectiveness)
	assert.Equal(t, "high", buildInsights(mk(5)).SearchEffectiveness)
}

func TestBuildInsights_NoMentionsNoRecommendations(t *testing.T) {
	insights := buildInsights([]SearchResult{
		{Title: "nothing relevant", Link: "https://x.example/a", Snippet: "plain text"},
	})
	assert.Empty(t, insights.RecommendedPlatforms)
}

func TestBuildRecommendations(t *testing.T) {
	five := make([]SearchResult, 5)
	recs := buildRecommendations(five, []string{"Instagram", "YouTube"})

	require.Len(t, recs, 4)
	assert.Contains(t, recs[0], "Found 5 relevant influencers")
	assert.Contains(t, recs[1], "authentic engagement")
	assert.Contains(t, recs[2], "tutorial-style content")
	assert.Contains(t, recs[3], "verify influencer authenticity")

	three := make([]SearchResult, 3)
	recs = buildRecommendations(three, nil)
	assert.Contains(t, recs[0], "Research their engagement rates")

	recs = buildRecommendations(nil, []string{"TikTok"})
	require.Len(t, recs, 2)
	assert.Contains(t, recs[0], "Limited influencer results")
}

func TestDedupeByLink(t *testing.T) {
	in := []SearchResult{
		{Title: "a", Link: "https://x/1"},
		{Title: "b", Link: "https://x/2"},
		{Title: "a again", Link: "https://x/1"},
		{Title: "no link"},
	}
	out := dedupeByLink(in)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Title)
	assert.Equal(t, "b", out[1].Title)
}
