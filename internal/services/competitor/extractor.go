package competitor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brandpulse/brandpulse/internal/domain"
)

const (
	maxHeadings      = 10
	maxKeywords      = 20
	maxValueProps    = 5
	maxPricing       = 5
	maxTestimonials  = 3
	maxColors        = 10
	mainTextMaxChars = 2000
)

var (
	pricingPattern = regexp.MustCompile(`(?i)\$\d+(?:[.,]\d+)?|\d+\s*(?:dollars|USD|EUR|price|cost)`)
	colorPattern   = regexp.MustCompile(`#(?:[0-9a-fA-F]{3}){1,2}\b|rgba?\([^)]+\)`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// ExtractFeatures pulls best-effort marketing signals out of a parsed page.
// brandContext is accepted for API symmetry with the mock path; extraction
// itself does not vary with it. Missing selectors yield empty collections,
// never an error.
func ExtractFeatures(doc *goquery.Document, brandContext string) *domain.ExtractedFeatures {
	_ = brandContext

	features := &domain.ExtractedFeatures{
		Headings:          []string{},
		Keywords:          []string{},
		ValuePropositions: []string{},
		PricingSnippets:   []string{},
		Testimonials:      []string{},
	}

	features.Title = cleanText(doc.Find("title").First().Text())
	features.MetaDescription, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
	features.MetaDescription = strings.TrimSpace(features.MetaDescription)

	// Headings in document order, length strictly between 3 and 200
	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if len(features.Headings) >= maxHeadings {
			return
		}
		text := cleanText(s.Text())
		if len(text) > 3 && len(text) < 200 {
			features.Headings = append(features.Headings, text)
		}
	})

	var mainParts []string
	doc.Find("p, article, main").Each(func(_ int, s *goquery.Selection) {
		if text := cleanText(s.Text()); text != "" {
			mainParts = append(mainParts, text)
		}
	})
	mainText := strings.Join(mainParts, " ")
	features.WordCount = len(strings.Fields(mainText))
	if len(mainText) > mainTextMaxChars {
		mainText = mainText[:mainTextMaxChars]
	}

	features.Keywords = ExtractKeywords(mainText+" "+strings.Join(features.Headings, " "), maxKeywords)

	features.PricingSnippets = extractPricing(doc)
	features.ValuePropositions = extractValueProps(doc)
	features.Testimonials = extractTestimonials(doc)
	features.DesignFlags = extractDesignFlags(doc)

	return features
}

func extractPricing(doc *goquery.Document) []string {
	text := doc.Find("body").Text()
	if text == "" {
		text = doc.Text()
	}

	seen := make(map[string]struct{})
	snippets := []string{}
	for _, match := range pricingPattern.FindAllString(text, -1) {
		match = strings.TrimSpace(match)
		if _, dup := seen[match]; dup {
			continue
		}
		seen[match] = struct{}{}
		snippets = append(snippets, match)
		if len(snippets) >= maxPricing {
			break
		}
	}
	return snippets
}

func extractValueProps(doc *goquery.Document) []string {
	props := []string{}
	doc.Find(`button, .cta, .hero, .value-prop, [class*="benefit"]`).Each(func(_ int, s *goquery.Selection) {
		if len(props) >= maxValueProps {
			return
		}
		text := cleanText(s.Text())
		if len(text) >= 10 && len(text) <= 150 {
			props = append(props, text)
		}
	})
	return props
}

func extractTestimonials(doc *goquery.Document) []string {
	quotes := []string{}
	doc.Find(`[class*="testimonial"], [class*="review"], [class*="feedback"]`).Each(func(_ int, s *goquery.Selection) {
		if len(quotes) >= maxTestimonials {
			return
		}
		text := cleanText(s.Text())
		if len(text) >= 20 && len(text) <= 300 {
			quotes = append(quotes, text)
		}
	})
	return quotes
}

func extractDesignFlags(doc *goquery.Document) domain.DesignFlags {
	flags := domain.DesignFlags{
		HasVideo:     doc.Find("video, iframe").Length() > 0,
		ImageCount:   doc.Find("img").Length(),
		CTACount:     doc.Find(`button, .cta, [class*="btn"]`).Length(),
		HasHeader:    doc.Find("header").Length() > 0,
		HasNav:       doc.Find("nav").Length() > 0,
		HasFooter:    doc.Find("footer").Length() > 0,
		HasSidebar:   doc.Find(`aside, [class*="sidebar"]`).Length() > 0,
		SectionCount: doc.Find("section").Length(),
	}

	seen := make(map[string]struct{})
	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		if len(flags.Colors) >= maxColors {
			return
		}
		style, _ := s.Attr("style")
		for _, color := range colorPattern.FindAllString(style, -1) {
			if len(flags.Colors) >= maxColors {
				return
			}
			color = strings.ToLower(color)
			if _, dup := seen[color]; dup {
				continue
			}
			seen[color] = struct{}{}
			flags.Colors = append(flags.Colors, color)
		}
	})

	return flags
}

func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
