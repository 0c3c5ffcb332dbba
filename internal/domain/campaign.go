package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultPlatforms is substituted whenever a strategy arrives without a
// platforms list, whatever produced it.
var DefaultPlatforms = []string{"Instagram", "YouTube", "TikTok"}

// CampaignStrategy is the normalized, fixed-shape marketing plan derived from
// user input. Every field is always present after normalization; missing
// values are replaced with defaults so downstream consumers never see a
// partial shape.
type CampaignStrategy struct {
	Product     string   `json:"product"`
	Audience    string   `json:"audience"`
	Goal        string   `json:"goal"`
	Tone        string   `json:"tone"`
	Platforms   []string `json:"platforms"`
	Domain      string   `json:"domain"`
	Stylistics  string   `json:"stylistics"`
	Location    string   `json:"location,omitempty"`
	Competitors []string `json:"competitors,omitempty"`
	KeyFeatures []string `json:"key_features,omitempty"`
	PainPoints  []string `json:"pain_points,omitempty"`
	Budget      string   `json:"budget,omitempty"`
	Timeline    string   `json:"timeline,omitempty"`
}

// Normalize fills empty fields with defaults so the strategy always has the
// complete shape.
func (s *CampaignStrategy) Normalize() {
	if strings.TrimSpace(s.Product) == "" {
		s.Product = "Product"
	}
	if strings.TrimSpace(s.Audience) == "" {
		s.Audience = "general audience"
	}
	if strings.TrimSpace(s.Goal) == "" {
		s.Goal = "increase brand awareness"
	}
	if strings.TrimSpace(s.Tone) == "" {
		s.Tone = "professional"
	}
	if len(s.Platforms) == 0 {
		s.Platforms = append([]string(nil), DefaultPlatforms...)
	}
	if strings.TrimSpace(s.Domain) == "" {
		s.Domain = "general"
	}
	if strings.TrimSpace(s.Stylistics) == "" {
		s.Stylistics = "modern and engaging"
	}
}

// StrategyMetadata describes how much of a strategy was extracted from the
// brief versus inferred by fallbacks.
type StrategyMetadata struct {
	FieldsExtracted int      `json:"fields_extracted"`
	TotalFields     int      `json:"total_fields"`
	Confidence      string   `json:"confidence"` // high, medium, low
	ExtractionRatio float64  `json:"extraction_ratio"`
	InferredFields  []string `json:"inferred_fields,omitempty"`
	Source          string   `json:"source"` // llm, fallback
}

// AgentResult is a blob contributed by a downstream agent after the campaign
// was created (copywriting, visuals, outreach and so on).
type AgentResult struct {
	Agent      string    `json:"agent"`
	Payload    JSONB     `json:"payload"`
	ReceivedAt time.Time `json:"received_at"`
}

// Campaign is the persisted record owning a strategy snapshot and the agent
// results that accumulate against it.
type Campaign struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	Strategy  CampaignStrategy `json:"strategy" db:"strategy"`
	Metadata  StrategyMetadata `json:"metadata" db:"metadata"`
	Status    CampaignStatus   `json:"status" db:"status"`
	InputType string           `json:"input_type" db:"input_type"` // text, pdf
	InputText string           `json:"input_text,omitempty" db:"input_text"`
	BriefURI  string           `json:"brief_uri,omitempty" db:"brief_uri"`
	Results   []AgentResult    `json:"results" db:"results"`
	Timestamps
}

// NewCampaign creates a pending campaign with the given strategy snapshot
func NewCampaign(strategy CampaignStrategy, metadata StrategyMetadata, inputType, inputText string) *Campaign {
	c := &Campaign{
		ID:        uuid.New(),
		Strategy:  strategy,
		Metadata:  metadata,
		Status:    CampaignStatusPending,
		InputType: inputType,
		InputText: inputText,
		Results:   []AgentResult{},
	}
	c.SetTimestamps()
	return c
}

// AppendResult records an agent contribution and moves a pending campaign to
// processing.
func (c *Campaign) AppendResult(agent string, payload JSONB) {
	c.Results = append(c.Results, AgentResult{
		Agent:      agent,
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	})
	if c.Status == CampaignStatusPending {
		c.Status = CampaignStatusProcessing
	}
	c.UpdatedAt = time.Now().UTC()
}
