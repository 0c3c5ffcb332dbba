package competitor

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/brandpulse/brandpulse/internal/config"
	"github.com/brandpulse/brandpulse/internal/domain"
	"github.com/brandpulse/brandpulse/internal/observability"
)

// AnalyzeRequest carries the inputs of a competitor analysis
type AnalyzeRequest struct {
	BrandContext   string   `json:"brand_context"`
	Industry       string   `json:"industry,omitempty"`
	CompetitorURLs []string `json:"competitor_urls,omitempty"`
	AutoDiscover   bool     `json:"auto_discover,omitempty"`
}

// Service runs the competitor analysis pipeline: resolve URLs, scrape or
// mock each one, synthesize recommendations. Scrape failures degrade the
// single URL to a mock profile instead of failing the batch; a disabled
// scraper mocks everything. The service never returns a 5xx-worthy error
// for upstream failures.
type Service struct {
	fetcher Fetcher
	cfg     config.ScraperConfig
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewService creates the analysis service. fetcher may be nil, which forces
// the mock path for every URL.
func NewService(fetcher Fetcher, cfg config.ScraperConfig, logger *zap.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.GetMetrics()
	}
	return &Service{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// Analyze runs the full pipeline for one request
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*domain.AnalysisReport, error) {
	if strings.TrimSpace(req.BrandContext) == "" {
		return nil, domain.ValidationError("brand_context", "brand_context is required")
	}

	urls, source := s.resolveURLs(req)

	insights := make([]domain.CompetitorInsight, 0, len(urls))
	for _, u := range urls {
		insights = append(insights, s.analyzeURL(ctx, u, req.BrandContext, req.Industry))
	}

	recommendations, note := Synthesize(insights, req.BrandContext)
	s.metrics.RecordAnalysis(source, len(recommendations))

	s.logger.Info("competitor analysis complete",
		zap.String("source", source),
		zap.Int("urls", len(urls)),
		zap.Int("recommendations", len(recommendations)),
	)

	return &domain.AnalysisReport{
		BrandContext:    req.BrandContext,
		Industry:        req.Industry,
		Insights:        insights,
		Recommendations: recommendations,
		Note:            note,
		AnalyzedAt:      time.Now().UTC(),
	}, nil
}

// resolveURLs picks explicit URLs when given, otherwise falls back to the
// industry lookup table when auto-discovery was requested. The list is
// capped; scraping is sequential so latency scales linearly with its length.
func (s *Service) resolveURLs(req AnalyzeRequest) ([]string, string) {
	maxURLs := s.cfg.MaxURLs
	if maxURLs <= 0 {
		maxURLs = 3
	}

	urls := req.CompetitorURLs
	source := "explicit"
	if len(urls) == 0 && req.AutoDiscover {
		urls = DiscoverURLs(req.Industry)
		source = "discovered"
	}

	if len(urls) > maxURLs {
		urls = urls[:maxURLs]
	}
	return urls, source
}

func (s *Service) analyzeURL(ctx context.Context, rawURL, brandContext, industry string) domain.CompetitorInsight {
	insight := domain.CompetitorInsight{
		SourceURL: rawURL,
		Domain:    hostnameOf(rawURL),
		Timestamp: time.Now().UTC(),
	}

	if !s.cfg.Enabled || s.fetcher == nil {
		insight.Analysis = GenerateMock(rawURL, brandContext, industry)
		insight.Mocked = true
		s.metrics.RecordScrape("mock", "ok", 0)
		return insight
	}

	start := time.Now()
	html, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		s.logger.Warn("scrape failed, substituting mock",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		s.metrics.RecordScrape("live", "error", time.Since(start))
		insight.ScrapeError = err.Error()
		insight.Analysis = GenerateMock(rawURL, brandContext, industry)
		insight.Mocked = true
		return insight
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		s.metrics.RecordScrape("live", "error", time.Since(start))
		insight.ScrapeError = "parsing HTML: " + err.Error()
		insight.Analysis = GenerateMock(rawURL, brandContext, industry)
		insight.Mocked = true
		return insight
	}

	s.metrics.RecordScrape("live", "ok", time.Since(start))
	insight.Analysis = ExtractFeatures(doc, brandContext)
	return insight
}
