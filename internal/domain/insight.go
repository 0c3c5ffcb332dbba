package domain

import "time"

// DesignFlags captures coarse page-design signals from a competitor site
type DesignFlags struct {
	HasVideo     bool     `json:"has_video"`
	ImageCount   int      `json:"image_count"`
	CTACount     int      `json:"cta_count"`
	Colors       []string `json:"colors,omitempty"`
	HasHeader    bool     `json:"has_header"`
	HasNav       bool     `json:"has_nav"`
	HasFooter    bool     `json:"has_footer"`
	HasSidebar   bool     `json:"has_sidebar"`
	SectionCount int      `json:"section_count"`
}

// ExtractedFeatures is the best-effort feature record pulled from a single
// competitor page. Every field degrades to empty/zero when the page has no
// matching content; extraction itself never fails.
type ExtractedFeatures struct {
	Title             string      `json:"title"`
	MetaDescription   string      `json:"meta_description"`
	Headings          []string    `json:"headings"`
	Keywords          []string    `json:"keywords"`
	ValuePropositions []string    `json:"value_propositions"`
	PricingSnippets   []string    `json:"pricing_snippets"`
	Testimonials      []string    `json:"testimonials"`
	DesignFlags       DesignFlags `json:"design_flags"`
	WordCount         int         `json:"word_count"`

	// Populated only on the mock path
	Strengths  []string       `json:"strengths,omitempty"`
	Weaknesses []string       `json:"weaknesses,omitempty"`
	Metrics    map[string]int `json:"metrics,omitempty"`
}

// CompetitorInsight pairs one analyzed URL with its extracted (or mocked)
// features and any scrape error. Created once per URL per request, never
// mutated afterwards.
type CompetitorInsight struct {
	SourceURL   string             `json:"source_url"`
	Domain      string             `json:"domain"`
	Analysis    *ExtractedFeatures `json:"analysis"`
	ScrapeError string             `json:"error,omitempty"`
	Mocked      bool               `json:"mocked"`
	Timestamp   time.Time          `json:"timestamp"`
}

// Valid reports whether the insight carries usable features
func (i *CompetitorInsight) Valid() bool {
	return i.Analysis != nil
}

// Recommendation is a single derived suggestion from the synthesizer.
// Recommendations are computed per request and never stored.
type Recommendation struct {
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	InsightText string   `json:"insight"`
	ActionText  string   `json:"action"`
	Priority    Priority `json:"priority"`
}

// AnalysisReport is the assembled competitor-analysis payload. Note carries
// the sentinel message when no valid insights were available; Recommendations
// is then empty rather than absent.
type AnalysisReport struct {
	BrandContext    string              `json:"brand_context"`
	Industry        string              `json:"industry,omitempty"`
	Insights        []CompetitorInsight `json:"insights"`
	Recommendations []Recommendation    `json:"recommendations"`
	Note            string              `json:"note,omitempty"`
	AnalyzedAt      time.Time           `json:"analyzed_at"`
}
