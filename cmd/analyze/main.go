package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/brandpulse/brandpulse/internal/config"
	"github.com/brandpulse/brandpulse/internal/domain"
	"github.com/brandpulse/brandpulse/internal/llm"
	"github.com/brandpulse/brandpulse/internal/services/competitor"
	"github.com/brandpulse/brandpulse/internal/services/market"
	"github.com/brandpulse/brandpulse/internal/services/strategy"
)

var (
	green  = color.New(color.FgGreen, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	cyan   = color.New(color.FgCyan, color.Bold)
	bold   = color.New(color.Bold)
	dim    = color.New(color.Faint)
)

func main() {
	godotenv.Load()

	// Flags
	brief := flag.String("brief", "", "Campaign brief text")
	briefFile := flag.String("brief-file", "", "Path to a campaign brief text file")
	industry := flag.String("industry", "", "Industry hint for competitor discovery")
	competitors := flag.String("competitors", "", "Comma-separated competitor URLs")
	skipCompetitors := flag.Bool("skip-competitors", false, "Skip competitor analysis")
	skipInfluencers := flag.Bool("skip-influencers", false, "Skip influencer discovery")
	numInfluencers := flag.Int("influencers", 5, "Maximum influencers to list")
	verbose := flag.Bool("verbose", false, "Verbose output")

	flag.Parse()

	// Setup logger
	var logger *zap.Logger
	if *verbose {
		logger, _ = zap.NewDevelopment()
	} else {
		logCfg := zap.NewProductionConfig()
		logCfg.OutputPaths = []string{"/dev/null"}
		logger, _ = logCfg.Build()
	}
	defer logger.Sync()

	cfg, err := config.LoadWithDefaults()
	if err != nil {
		red.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	text, err := briefText(*brief, *briefFile)
	if err != nil {
		red.Printf("❌ %v\n", err)
		fmt.Println("   Pass -brief \"...\" or -brief-file path/to/brief.txt")
		os.Exit(1)
	}

	printBanner()

	ctx := context.Background()
	startTime := time.Now()

	//==========================================================================
	// STEP 1: STRATEGY EXTRACTION
	//==========================================================================
	printStep(1, "Strategy", "Extracting campaign strategy from brief...")

	var completer strategy.Completer
	if cfg.LLM.Enabled() {
		mistral, err := llm.NewMistralClient(llm.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		}, nil, logger)
		if err != nil {
			yellow.Printf("   ⚠ LLM client unavailable, using keyword extraction: %v\n", err)
		} else {
			completer = mistral
		}
	} else {
		yellow.Println("   ⚡ MISTRAL_API_KEY not set, using keyword extraction")
	}

	parser := strategy.NewParser(completer, logger, nil)
	parsed, err := parser.ParseText(ctx, text)
	if err != nil {
		red.Printf("   ❌ Strategy extraction failed: %v\n", err)
		os.Exit(1)
	}

	green.Printf("   ✓ Extracted %d/%d fields (%s confidence, %s)\n",
		parsed.Metadata.FieldsExtracted,
		parsed.Metadata.TotalFields,
		parsed.Metadata.Confidence,
		parsed.Metadata.Source)
	printStrategy(&parsed.Strategy)

	//==========================================================================
	// STEP 2: COMPETITOR ANALYSIS
	//==========================================================================
	var report *domain.AnalysisReport

	if *skipCompetitors {
		printStep(2, "Competitors", "SKIPPED")
	} else {
		printStep(2, "Competitors", "Analyzing competitor positioning...")

		var fetcher competitor.Fetcher
		if cfg.Scraper.Enabled {
			httpFetcher, err := competitor.NewHTTPFetcher(cfg.Scraper)
			if err != nil {
				yellow.Printf("   ⚠ Fetcher unavailable, using simulated profiles: %v\n", err)
			} else {
				fetcher = httpFetcher
			}
		}

		svc := competitor.NewService(fetcher, cfg.Scraper, logger, nil)
		req := competitor.AnalyzeRequest{
			BrandContext: parsed.Strategy.Product,
			Industry:     firstNonEmpty(*industry, parsed.Strategy.Domain),
			AutoDiscover: *competitors == "",
		}
		if *competitors != "" {
			req.CompetitorURLs = splitList(*competitors)
		}

		report = runWithProgress("   Scraping...", func() *domain.AnalysisReport {
			out, err := svc.Analyze(ctx, req)
			if err != nil {
				return nil
			}
			return out
		})
		if report == nil {
			red.Println("   ❌ Competitor analysis failed")
		} else {
			mocked := 0
			for _, in := range report.Insights {
				if in.Mocked {
					mocked++
				}
			}
			green.Printf("   ✓ Analyzed %d competitors (%d simulated), %d recommendations\n",
				len(report.Insights), mocked, len(report.Recommendations))
			if report.Note != "" {
				dim.Printf("      Note: %s\n", report.Note)
			}
			printRecommendations(report.Recommendations)
		}
	}

	//==========================================================================
	// STEP 3: INFLUENCER DISCOVERY
	//==========================================================================
	if *skipInfluencers {
		printStep(3, "Influencers", "SKIPPED")
	} else if !cfg.Search.GoogleEnabled() && !cfg.Search.SerpAPIEnabled() {
		printStep(3, "Influencers", "SKIPPED (no search provider configured)")
		dim.Println("      Set GOOGLE_CSE_API_KEY + GOOGLE_CSE_ENGINE_ID or SERPAPI_KEY")
	} else {
		printStep(3, "Influencers", fmt.Sprintf("Searching %s influencers...", parsed.Strategy.Domain))

		svc := market.NewService(cfg.Search, logger, nil)
		found, err := svc.FindInfluencers(ctx, parsed.Strategy.Domain, parsed.Strategy.Audience, *numInfluencers, parsed.Strategy.Platforms)
		if err != nil {
			red.Printf("   ❌ Influencer search failed: %v\n", err)
		} else {
			green.Printf("   ✓ Found %d influencers (%s search effectiveness)\n",
				found.InfluencersCount, found.Insights.SearchEffectiveness)
			for i, inf := range found.Influencers {
				cyan.Printf("      %d. %s\n", i+1, inf.Title)
				dim.Printf("         %s\n", inf.Link)
				if i >= 4 {
					break
				}
			}
			for _, rec := range found.Recommendations {
				dim.Printf("      • %s\n", rec)
			}
		}
	}

	//==========================================================================
	// COMPLETE
	//==========================================================================
	fmt.Println()
	bold.Println("═══════════════════════════════════════════════════════")
	green.Println("✅ ANALYSIS COMPLETE")
	bold.Println("═══════════════════════════════════════════════════════")
	fmt.Printf("   Total time: %.1fs\n", time.Since(startTime).Seconds())
	fmt.Println()
}

func briefText(brief, briefFile string) (string, error) {
	if brief != "" {
		return brief, nil
	}
	if briefFile != "" {
		data, err := os.ReadFile(briefFile)
		if err != nil {
			return "", fmt.Errorf("reading brief file: %w", err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("no brief provided")
}

func printBanner() {
	cyan.Println(`
╔══════════════════════════════════════════════════════╗
║   BRANDPULSE · campaign strategy analyzer            ║
╚══════════════════════════════════════════════════════╝`)
}

func printStep(num int, title, description string) {
	fmt.Println()
	bold.Printf("━━━ Step %d: %s ━━━\n", num, title)
	fmt.Printf("    %s\n", description)
}

func printStrategy(s *domain.CampaignStrategy) {
	dim.Printf("      Product:   %s\n", s.Product)
	dim.Printf("      Audience:  %s\n", s.Audience)
	dim.Printf("      Goal:      %s\n", s.Goal)
	dim.Printf("      Tone:      %s\n", s.Tone)
	dim.Printf("      Platforms: %s\n", strings.Join(s.Platforms, ", "))
	dim.Printf("      Domain:    %s\n", s.Domain)
}

func printRecommendations(recs []domain.Recommendation) {
	for i, rec := range recs {
		if i >= 3 {
			dim.Printf("      … %d more\n", len(recs)-3)
			break
		}
		cyan.Printf("      • [%s] %s\n", rec.Priority, rec.Title)
		dim.Printf("        %s\n", rec.ActionText)
	}
}

// runWithProgress shows an indeterminate bar while fn runs
func runWithProgress[T any](label string, fn func() T) T {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSpinnerType(14),
	)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				bar.Add(1)
				time.Sleep(100 * time.Millisecond)
			}
		}
	}()

	out := fn()
	close(done)
	bar.Finish()
	fmt.Println()
	return out
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
