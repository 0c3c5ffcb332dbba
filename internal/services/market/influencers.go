// Package market discovers influencers and derives market insights for a
// campaign strategy, using Google Custom Search with a SerpAPI fallback.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/brandpulse/brandpulse/internal/config"
	"github.com/brandpulse/brandpulse/internal/domain"
	"github.com/brandpulse/brandpulse/internal/observability"
)

const (
	googleSearchURL  = "https://www.googleapis.com/customsearch/v1"
	serpAPISearchURL = "https://serpapi.com/search.json"
)

// SearchResult is one hit from a search provider
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// InfluencerReport is the assembled discovery payload
type InfluencerReport struct {
	Domain           string         `json:"domain"`
	TargetAudience   string         `json:"target_audience"`
	InfluencersCount int            `json:"influencers_count"`
	Influencers      []SearchResult `json:"influencers"`
	QueriesUsed      []string       `json:"search_queries_used"`
	Insights         MarketInsights `json:"insights"`
	Recommendations  []string       `json:"recommendations"`
}

// MarketInsights summarizes where the discovered influencers live
type MarketInsights struct {
	TotalFound           int            `json:"total_influencers_found"`
	PlatformDistribution map[string]int `json:"platform_distribution"`
	RecommendedPlatforms []string       `json:"recommended_platforms"`
	SearchEffectiveness  string         `json:"search_effectiveness"`
}

// profilePatterns detect links that are social profile pages rather than
// listicles or articles.
var profilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(www\.)?instagram\.com/[@A-Za-z0-9_.-]+/?$`),
	regexp.MustCompile(`^https?://(www\.)?tiktok\.com/@[\w.-]+/?`),
	regexp.MustCompile(`^https?://(www\.)?twitter\.com/[@A-Za-z0-9_.-]+/?$`),
	regexp.MustCompile(`^https?://(www\.)?linkedin\.com/in/[A-Za-z0-9-_%]+/?$`),
	regexp.MustCompile(`^https?://(www\.)?youtube\.com/(?:channel/|c/|user/|@)[A-Za-z0-9_\-@]+(?:/.*)?$`),
}

var insightPlatforms = []string{"instagram", "youtube", "tiktok", "blog", "twitter"}

// Service runs influencer discovery. Google CSE is the primary provider,
// SerpAPI the fallback; with neither configured the request fails with a
// validation-style error rather than fabricating results.
type Service struct {
	cfg        config.SearchConfig
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *observability.Metrics

	googleBaseURL  string
	serpAPIBaseURL string
}

// NewService creates the market discovery service
func NewService(cfg config.SearchConfig, logger *zap.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.GetMetrics()
	}
	return &Service{
		cfg:            cfg,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		logger:         logger,
		metrics:        metrics,
		googleBaseURL:  googleSearchURL,
		serpAPIBaseURL: serpAPISearchURL,
	}
}

// FindInfluencers searches for influencers in a domain for an audience.
// Queries are capped at 4 to bound provider quota usage; results are deduped
// by link and profile pages are prioritized.
func (s *Service) FindInfluencers(ctx context.Context, dom, targetAudience string, numResults int, strategyPlatforms []string) (*InfluencerReport, error) {
	if strings.TrimSpace(dom) == "" {
		return nil, domain.ValidationError("domain", "domain is required")
	}
	if !s.cfg.GoogleEnabled() && !s.cfg.SerpAPIEnabled() {
		return nil, domain.ValidationError("search", "no search provider configured")
	}
	if numResults <= 0 || numResults > s.cfg.MaxResults {
		numResults = s.cfg.MaxResults
	}
	if numResults <= 0 {
		numResults = 5
	}

	queries := buildQueries(dom, targetAudience)

	var all []SearchResult
	for _, q := range queries {
		results, err := s.search(ctx, q, numResults)
		if err != nil {
			s.logger.Warn("search query failed", zap.String("query", q), zap.Error(err))
			continue
		}
		all = append(all, results...)
	}

	unique := dedupeByLink(all)
	final := prioritizeProfiles(unique)
	if len(final) > numResults {
		final = final[:numResults]
	}

	insights := buildInsights(final)

	return &InfluencerReport{
		Domain:           dom,
		TargetAudience:   targetAudience,
		InfluencersCount: len(final),
		Influencers:      final,
		QueriesUsed:      queries,
		Insights:         insights,
		Recommendations:  buildRecommendations(final, strategyPlatforms),
	}, nil
}

// buildQueries assembles profile-biased search queries, capped at 4
func buildQueries(dom, audience string) []string {
	queries := []string{
		fmt.Sprintf("site:instagram.com %s %s influencer", dom, audience),
		fmt.Sprintf("site:youtube.com %s %s channel", dom, audience),
		fmt.Sprintf("top %s influencers for %s", dom, audience),
		fmt.Sprintf("%s content creators %s", dom, audience),
	}
	return queries
}

// search tries Google first and falls back to SerpAPI on failure
func (s *Service) search(ctx context.Context, query string, num int) ([]SearchResult, error) {
	if s.cfg.GoogleEnabled() {
		results, err := s.searchGoogle(ctx, query, num)
		if err == nil {
			s.metrics.RecordSearch("google", "ok")
			return results, nil
		}
		s.metrics.RecordSearch("google", "error")
		s.logger.Warn("google search failed", zap.Error(err))

		if !s.cfg.SerpAPIEnabled() {
			return nil, err
		}
	}

	results, err := s.searchSerpAPI(ctx, query, num)
	if err != nil {
		s.metrics.RecordSearch("serpapi", "error")
		return nil, err
	}
	s.metrics.RecordSearch("serpapi", "ok")
	return results, nil
}

func (s *Service) searchGoogle(ctx context.Context, query string, num int) ([]SearchResult, error) {
	if num > 10 {
		num = 10 // API limit per request
	}

	params := url.Values{}
	params.Set("key", s.cfg.GoogleAPIKey)
	params.Set("cx", s.cfg.GoogleEngineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))

	var payload struct {
		Items []SearchResult `json:"items"`
	}
	if err := s.getJSON(ctx, s.googleBaseURL+"?"+params.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("google search: %w", err)
	}
	return payload.Items, nil
}

func (s *Service) searchSerpAPI(ctx context.Context, query string, num int) ([]SearchResult, error) {
	if num > 10 {
		num = 10
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", s.cfg.SerpAPIKey)
	params.Set("engine", "google")
	params.Set("num", strconv.Itoa(num))

	var payload struct {
		OrganicResults []SearchResult `json:"organic_results"`
	}
	if err := s.getJSON(ctx, s.serpAPIBaseURL+"?"+params.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("serpapi search: %w", err)
	}
	return payload.OrganicResults, nil
}

func (s *Service) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func dedupeByLink(results []SearchResult) []SearchResult {
	seen := make(map[string]struct{})
	unique := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if r.Link == "" {
			continue
		}
		if _, dup := seen[r.Link]; dup {
			continue
		}
		seen[r.Link] = struct{}{}
		unique = append(unique, r)
	}
	return unique
}

// prioritizeProfiles moves profile-page links ahead of articles, preserving
// relative order within each group
func prioritizeProfiles(results []SearchResult) []SearchResult {
	profiles := make([]SearchResult, 0, len(results))
	others := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if isProfileLink(r.Link) {
			profiles = append(profiles, r)
		} else {
			others = append(others, r)
		}
	}
	return append(profiles, others...)
}

func isProfileLink(link string) bool {
	if link == "" {
		return false
	}
	for _, p := range profilePatterns {
		if p.MatchString(link) {
			return true
		}
	}
	return false
}

func buildInsights(results []SearchResult) MarketInsights {
	mentions := make(map[string]int, len(insightPlatforms))
	for _, p := range insightPlatforms {
		mentions[p] = 0
	}

	for _, r := range results {
		combined := strings.ToLower(r.Snippet + " " + r.Title + " " + r.Link)
		for _, p := range insightPlatforms {
			if strings.Contains(combined, p) {
				mentions[p]++
			}
		}
	}

	// Top three mentioned platforms, declaration order breaking ties
	type pair struct {
		platform string
		count    int
	}
	pairs := make([]pair, 0, len(insightPlatforms))
	for _, p := range insightPlatforms {
		pairs = append(pairs, pair{p, mentions[p]})
	}
	for i := 0; i < len(pairs); i++ {
		for j := i + 1; j < len(pairs); j++ {
			if pairs[j].count > pairs[i].count {
				pairs[i], pairs[j] = pairs[j], pairs[i]
			}
		}
	}

	recommended := []string{}
	for _, p := range pairs[:3] {
		if p.count > 0 {
			recommended = append(recommended, p.platform)
		}
	}

	effectiveness := "low"
	switch {
	case len(results) >= 5:
		effectiveness = "high"
	case len(results) >= 3:
		effectiveness = "medium"
	}

	return MarketInsights{
		TotalFound:           len(results),
		PlatformDistribution: mentions,
		RecommendedPlatforms: recommended,
		SearchEffectiveness:  effectiveness,
	}
}

func buildRecommendations(results []SearchResult, platforms []string) []string {
	recs := []string{}

	switch {
	case len(results) >= 5:
		recs = append(recs, fmt.Sprintf("Found %d relevant influencers. Consider reaching out to the top 3 for collaboration opportunities.", len(results)))
	case len(results) >= 3:
		recs = append(recs, fmt.Sprintf("Found %d potential influencers. Research their engagement rates before outreach.", len(results)))
	default:
		recs = append(recs, "Limited influencer results found. Consider broadening your domain or audience targeting.")
	}

	for _, p := range platforms {
		switch p {
		case "Instagram":
			recs = append(recs, "For Instagram campaigns, prioritize influencers with authentic engagement over follower count.")
		case "YouTube":
			recs = append(recs, "YouTube collaborations work best with product reviews or tutorial-style content.")
		}
	}

	recs = append(recs, "Always verify influencer authenticity and audience demographics before partnership.")
	return recs
}
