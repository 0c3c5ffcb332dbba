package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/brandpulse/brandpulse/internal/observability"
)

// MistralClient provides access to the Mistral chat-completions API with
// rate limiting, response caching and usage metrics.
type MistralClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client

	rateLimiter *rate.Limiter
	cache       *ResponseCache
	maxRetries  int

	metrics Metrics
	obs     *observability.Metrics
	logger  *zap.Logger
}

// Config for the Mistral client
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	Timeout      time.Duration
	RateLimitRPM int // Requests per minute
	MaxRetries   int
	Cache        CacheConfig
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:      "https://api.mistral.ai",
		Model:        "mistral-large-latest",
		MaxTokens:    2048,
		Timeout:      60 * time.Second,
		RateLimitRPM: 50,
		MaxRetries:   3,
		Cache:        DefaultCacheConfig(),
	}
}

// Metrics tracks API usage
type Metrics struct {
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	TotalTokensIn   int64
	TotalTokensOut  int64
	TotalLatencyMs  int64
	CacheHits       int64
	CacheMisses     int64
}

// NewMistralClient creates a new Mistral API client. redisClient may be nil
// to run with the in-memory cache layer only.
func NewMistralClient(cfg Config, redisClient *redis.Client, logger *zap.Logger) (*MistralClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// Merge with defaults
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RateLimitRPM == 0 {
		cfg.RateLimitRPM = def.RateLimitRPM
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.Cache == (CacheConfig{}) {
		cfg.Cache = def.Cache
	}

	// Tokens per second = RPM / 60
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.RateLimitRPM)/60.0), 1)

	return &MistralClient{
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: limiter,
		cache:       NewResponseCache(cfg.Cache, redisClient, logger),
		maxRetries:  cfg.MaxRetries,
		obs:         observability.GetMetrics(),
		logger:      logger,
	}, nil
}

// Request represents a chat-completions request
type Request struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Message represents a conversation message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response represents a chat-completions response
type Response struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is a single completion candidate
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage contains token usage information
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete sends a completion request
func (c *MistralClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, *Usage, error) {
	atomic.AddInt64(&c.metrics.TotalRequests, 1)

	cacheKey := c.cache.Key(c.model, systemPrompt, userPrompt)
	if cached, ok := c.cache.Get(ctx, cacheKey); ok {
		atomic.AddInt64(&c.metrics.CacheHits, 1)
		c.obs.LLMCacheHits.Inc()
		return cached, nil, nil
	}
	atomic.AddInt64(&c.metrics.CacheMisses, 1)
	c.obs.LLMCacheMisses.Inc()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		atomic.AddInt64(&c.metrics.FailedRequests, 1)
		return "", nil, fmt.Errorf("rate limit: %w", err)
	}

	start := time.Now()

	messages := []Message{}
	if systemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, Message{Role: "user", Content: userPrompt})

	req := Request{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Messages:    messages,
		Temperature: 0.3, // Lower temperature for more deterministic output
	}

	resp, err := c.doRequest(ctx, req)
	if err != nil {
		atomic.AddInt64(&c.metrics.FailedRequests, 1)
		c.obs.RecordLLMRequest(c.model, "completion", "error", time.Since(start), 0, 0)
		return "", nil, err
	}

	atomic.AddInt64(&c.metrics.SuccessRequests, 1)
	atomic.AddInt64(&c.metrics.TotalTokensIn, int64(resp.Usage.PromptTokens))
	atomic.AddInt64(&c.metrics.TotalTokensOut, int64(resp.Usage.CompletionTokens))
	atomic.AddInt64(&c.metrics.TotalLatencyMs, time.Since(start).Milliseconds())
	c.obs.RecordLLMRequest(c.model, "completion", "ok", time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", &resp.Usage, fmt.Errorf("empty response")
	}

	text := resp.Choices[0].Message.Content
	c.cache.Set(ctx, cacheKey, text)
	c.obs.CacheSize.Set(float64(c.cache.Len()))

	return text, &resp.Usage, nil
}

// CompleteJSON sends a completion request and parses the JSON response into
// result, retrying on transport errors and malformed output.
func (c *MistralClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, result interface{}) (*Usage, error) {
	jsonSystemPrompt := systemPrompt + "\n\nIMPORTANT: Return ONLY valid JSON. No markdown, no code blocks, no explanations."

	var lastErr error
	var totalUsage Usage

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return &totalUsage, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		text, usage, err := c.Complete(ctx, jsonSystemPrompt, userPrompt)
		if err != nil {
			lastErr = err
			continue
		}

		if usage != nil {
			totalUsage.PromptTokens += usage.PromptTokens
			totalUsage.CompletionTokens += usage.CompletionTokens
			totalUsage.TotalTokens += usage.TotalTokens
		}

		jsonStr := ExtractJSON(text)
		if jsonStr == "" {
			lastErr = fmt.Errorf("no JSON found in response")
			continue
		}

		if err := json.Unmarshal([]byte(jsonStr), result); err != nil {
			lastErr = fmt.Errorf("invalid JSON: %w", err)
			continue
		}

		return &totalUsage, nil
	}

	return &totalUsage, fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

// doRequest performs the HTTP request
func (c *MistralClient) doRequest(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp Response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return &apiResp, nil
}

// GetMetrics returns current metrics
func (c *MistralClient) GetMetrics() Metrics {
	return Metrics{
		TotalRequests:   atomic.LoadInt64(&c.metrics.TotalRequests),
		SuccessRequests: atomic.LoadInt64(&c.metrics.SuccessRequests),
		FailedRequests:  atomic.LoadInt64(&c.metrics.FailedRequests),
		TotalTokensIn:   atomic.LoadInt64(&c.metrics.TotalTokensIn),
		TotalTokensOut:  atomic.LoadInt64(&c.metrics.TotalTokensOut),
		TotalLatencyMs:  atomic.LoadInt64(&c.metrics.TotalLatencyMs),
		CacheHits:       atomic.LoadInt64(&c.metrics.CacheHits),
		CacheMisses:     atomic.LoadInt64(&c.metrics.CacheMisses),
	}
}

// GetModel returns the model being used
func (c *MistralClient) GetModel() string {
	return c.model
}

// ExtractJSON extracts JSON from a string that might contain markdown or other text
func ExtractJSON(text string) string {
	// First, try to find JSON in code blocks
	codeBlockPattern := regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	matches := codeBlockPattern.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// Try to find JSON object or array directly
	text = strings.TrimSpace(text)

	// Find the first { or [
	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")

	start := -1
	isArray := false

	if startObj >= 0 && (startArr < 0 || startObj < startArr) {
		start = startObj
	} else if startArr >= 0 {
		start = startArr
		isArray = true
	}

	if start < 0 {
		return ""
	}

	// Find matching closing bracket
	text = text[start:]
	depth := 0
	inString := false
	escaped := false

	openBracket := byte('{')
	closeBracket := byte('}')
	if isArray {
		openBracket = '['
		closeBracket = ']'
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			continue
		}

		if c == '\\' && inString {
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if c == openBracket {
			depth++
		} else if c == closeBracket {
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}

	return ""
}
