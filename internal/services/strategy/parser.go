package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/brandpulse/brandpulse/internal/domain"
	"github.com/brandpulse/brandpulse/internal/llm"
	"github.com/brandpulse/brandpulse/internal/observability"
)

const extractionPrompt = `You are a marketing strategy extraction expert. Extract structured campaign information from the given text.

Extract these fields with STRICT CONCISENESS:
- product: ONLY product/brand name (max 3-5 words)
- audience: ONLY primary demographic label (max 3-5 words)
- goal: ONLY primary action verb + outcome (max 5-7 words)
- tone: ONLY 1-2 tone adjectives
- platforms: ONLY platform names in a list
- domain: ONLY industry category (1-2 words)

CRITICAL RULES:
1. Keep ALL fields extremely concise - remove all explanations, parentheses, and extra details
2. Extract the CORE label/term only
3. If not mentioned, return null

Return VALID JSON only:
{
  "product": "string or null",
  "audience": "string or null",
  "goal": "string or null",
  "tone": "string or null",
  "platforms": ["list"] or null,
  "domain": "string or null"
}`

const fillPrompt = `You are a marketing strategy advisor. Given partial campaign information, infer missing fields using marketing best practices.

Partial Strategy:
%s

Fill in ONLY the missing (null) fields with intelligent inferences based on what's already known, common marketing patterns for this type of product/audience, and industry standards.

Return VALID JSON with the COMPLETE strategy (keep existing fields, fill missing ones):
{
  "product": "string",
  "audience": "string",
  "goal": "string",
  "tone": "string",
  "platforms": ["list"],
  "domain": "string",
  "stylistics": "string"
}`

// Completer is the LLM surface the parser needs
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, result interface{}) (*llm.Usage, error)
}

// partialStrategy is the nullable extraction shape returned by the LLM
type partialStrategy struct {
	Product   *string  `json:"product"`
	Audience  *string  `json:"audience"`
	Goal      *string  `json:"goal"`
	Tone      *string  `json:"tone"`
	Platforms []string `json:"platforms"`
	Domain    *string  `json:"domain"`
}

// totalFields is the number of extractable fields scored for confidence
const totalFields = 6

// ParseResult pairs the normalized strategy with extraction metadata
type ParseResult struct {
	Strategy domain.CampaignStrategy `json:"strategy"`
	Metadata domain.StrategyMetadata `json:"metadata"`
}

// Parser turns campaign briefs into normalized strategies. The LLM path
// extracts and fills fields; on any failure the keyword fallback takes over,
// so parsing always yields a complete strategy.
type Parser struct {
	llm     Completer
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewParser creates a parser. llm may be nil to run fallback-only.
func NewParser(llm Completer, logger *zap.Logger, metrics *observability.Metrics) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.GetMetrics()
	}
	return &Parser{llm: llm, logger: logger, metrics: metrics}
}

// ParseText derives a strategy from a free-text brief
func (p *Parser) ParseText(ctx context.Context, text string) (*ParseResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ValidationError("text", "brief text is required")
	}

	if p.llm == nil {
		return p.fallbackResult(text), nil
	}

	partial, err := p.extractWithLLM(ctx, text)
	if err != nil {
		p.logger.Warn("LLM extraction failed, using keyword fallback", zap.Error(err))
		return p.fallbackResult(text), nil
	}

	cleanupVerboseFields(&partial)

	complete := p.fillMissingFields(ctx, partial)
	complete.Normalize()

	meta := scoreExtraction(partial, "llm")
	p.metrics.RecordStrategyParse(meta.Source, meta.Confidence)

	p.logger.Info("strategy parsed",
		zap.String("source", meta.Source),
		zap.String("confidence", meta.Confidence),
		zap.Int("fields_extracted", meta.FieldsExtracted),
	)

	return &ParseResult{Strategy: complete, Metadata: meta}, nil
}

func (p *Parser) fallbackResult(text string) *ParseResult {
	s := FallbackParse(text)
	meta := domain.StrategyMetadata{
		FieldsExtracted: 0,
		TotalFields:     totalFields,
		Confidence:      "low",
		ExtractionRatio: 0,
		Source:          "fallback",
	}
	p.metrics.RecordStrategyParse(meta.Source, meta.Confidence)
	return &ParseResult{Strategy: s, Metadata: meta}
}

func (p *Parser) extractWithLLM(ctx context.Context, text string) (partialStrategy, error) {
	var partial partialStrategy
	userPrompt := "Text to analyze:\n\n" + text
	if _, err := p.llm.CompleteJSON(ctx, extractionPrompt, userPrompt, &partial); err != nil {
		return partialStrategy{}, fmt.Errorf("extracting fields: %w", err)
	}
	return partial, nil
}

// fillMissingFields asks the LLM to infer nulls; on failure the strategy
// keeps its extracted fields and Normalize supplies the defaults.
func (p *Parser) fillMissingFields(ctx context.Context, partial partialStrategy) domain.CampaignStrategy {
	strategy := partial.toStrategy()

	if !partial.hasMissingFields() {
		strategy.Stylistics = generateStylistics(strategy)
		return strategy
	}

	encoded, err := json.MarshalIndent(partial, "", "  ")
	if err != nil {
		return strategy
	}

	var filled domain.CampaignStrategy
	prompt := fmt.Sprintf(fillPrompt, string(encoded))
	if _, err := p.llm.CompleteJSON(ctx, "You are a marketing strategy expert.", prompt, &filled); err != nil {
		p.logger.Warn("LLM field inference failed, applying defaults", zap.Error(err))
		return strategy
	}

	// Extracted values win over inferred ones
	mergeExtracted(&filled, strategy)
	return filled
}

func (ps partialStrategy) toStrategy() domain.CampaignStrategy {
	s := domain.CampaignStrategy{Platforms: ps.Platforms}
	if ps.Product != nil {
		s.Product = *ps.Product
	}
	if ps.Audience != nil {
		s.Audience = *ps.Audience
	}
	if ps.Goal != nil {
		s.Goal = *ps.Goal
	}
	if ps.Tone != nil {
		s.Tone = *ps.Tone
	}
	if ps.Domain != nil {
		s.Domain = *ps.Domain
	}
	return s
}

func (ps partialStrategy) hasMissingFields() bool {
	return ps.Product == nil || ps.Audience == nil || ps.Goal == nil ||
		ps.Tone == nil || len(ps.Platforms) == 0 || ps.Domain == nil
}

func (ps partialStrategy) extractedCount() int {
	count := 0
	if ps.Product != nil {
		count++
	}
	if ps.Audience != nil {
		count++
	}
	if ps.Goal != nil {
		count++
	}
	if ps.Tone != nil {
		count++
	}
	if len(ps.Platforms) > 0 {
		count++
	}
	if ps.Domain != nil {
		count++
	}
	return count
}

func (ps partialStrategy) inferredFields() []string {
	var inferred []string
	if ps.Product == nil {
		inferred = append(inferred, "product")
	}
	if ps.Audience == nil {
		inferred = append(inferred, "audience")
	}
	if ps.Goal == nil {
		inferred = append(inferred, "goal")
	}
	if ps.Tone == nil {
		inferred = append(inferred, "tone")
	}
	if len(ps.Platforms) == 0 {
		inferred = append(inferred, "platforms")
	}
	if ps.Domain == nil {
		inferred = append(inferred, "domain")
	}
	return inferred
}

func mergeExtracted(dst *domain.CampaignStrategy, extracted domain.CampaignStrategy) {
	if extracted.Product != "" {
		dst.Product = extracted.Product
	}
	if extracted.Audience != "" {
		dst.Audience = extracted.Audience
	}
	if extracted.Goal != "" {
		dst.Goal = extracted.Goal
	}
	if extracted.Tone != "" {
		dst.Tone = extracted.Tone
	}
	if len(extracted.Platforms) > 0 {
		dst.Platforms = extracted.Platforms
	}
	if extracted.Domain != "" {
		dst.Domain = extracted.Domain
	}
}

func scoreExtraction(partial partialStrategy, source string) domain.StrategyMetadata {
	extracted := partial.extractedCount()
	ratio := float64(extracted) / float64(totalFields)

	confidence := "low"
	switch {
	case ratio >= 0.8:
		confidence = "high"
	case ratio >= 0.5:
		confidence = "medium"
	}

	// round to 2 decimals like the ratio is reported elsewhere
	ratio = float64(int(ratio*100+0.5)) / 100

	return domain.StrategyMetadata{
		FieldsExtracted: extracted,
		TotalFields:     totalFields,
		Confidence:      confidence,
		ExtractionRatio: ratio,
		InferredFields:  partial.inferredFields(),
		Source:          source,
	}
}

var (
	parenRe       = regexp.MustCompile(`\([^)]*\)`)
	explainRe     = regexp.MustCompile(`(?i)\b(who|that|which|with)\b.*$`)
	exemplifyRe   = regexp.MustCompile(`(?i)\b(including|such as|like)\b.*$`)
	productTailRe = regexp.MustCompile(`\s*[-:].*$`)
)

// cleanupVerboseFields trims LLM outputs down to concise labels
func cleanupVerboseFields(ps *partialStrategy) {
	clean := func(v *string) *string {
		if v == nil {
			return nil
		}
		s := parenRe.ReplaceAllString(*v, "")
		s = explainRe.ReplaceAllString(s, "")
		s = exemplifyRe.ReplaceAllString(s, "")
		s = strings.Join(strings.Fields(s), " ")
		if s == "" {
			return nil
		}
		return &s
	}

	ps.Audience = clean(ps.Audience)
	ps.Tone = clean(ps.Tone)
	ps.Domain = clean(ps.Domain)

	if ps.Audience != nil {
		s := firstWords(*ps.Audience, 4)
		ps.Audience = &s
	}

	if ps.Product != nil {
		s := productTailRe.ReplaceAllString(*ps.Product, "")
		s = strings.Join(strings.Fields(s), " ")
		if s == "" {
			ps.Product = nil
		} else {
			s = firstWords(s, 3)
			ps.Product = &s
		}
	}

	if ps.Goal != nil {
		s := *ps.Goal
		s = strings.SplitN(s, ",", 2)[0]
		s = strings.SplitN(s, ";", 2)[0]
		s = strings.Join(strings.Fields(s), " ")
		if s == "" {
			ps.Goal = nil
		} else {
			s = firstWords(s, 7)
			ps.Goal = &s
		}
	}
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// generateStylistics derives the stylistics field from tone and domain
func generateStylistics(s domain.CampaignStrategy) string {
	tone := strings.ToLower(s.Tone)
	dom := s.Domain
	if dom == "" {
		dom = "general"
	}

	switch {
	case strings.Contains(tone, "friendly") || strings.Contains(tone, "casual"):
		return fmt.Sprintf("approachable and %s-focused", dom)
	case strings.Contains(tone, "professional"):
		return fmt.Sprintf("polished and %s-oriented", dom)
	default:
		return fmt.Sprintf("engaging %s content", dom)
	}
}
