package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/brandpulse/brandpulse/internal/config"
	"github.com/brandpulse/brandpulse/internal/domain"
)

// Cache provides Redis caching functionality
type Cache struct {
	client *redis.Client
}

// Key prefixes for different cache types
const (
	PrefixCampaign  = "campaign:"
	PrefixAnalysis  = "analysis:"
	PrefixRateLimit = "ratelimit:"
)

// Default TTLs
const (
	DefaultTTL      = 15 * time.Minute
	AnalysisTTL     = 1 * time.Hour
	RateLimitWindow = 1 * time.Minute
)

// New creates a new Redis cache client
func New(cfg config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Health checks Redis connectivity
func (c *Cache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Client returns the underlying Redis client for advanced operations
func (c *Cache) Client() *redis.Client {
	return c.client
}

// Campaign caching methods

// GetCampaign retrieves a cached campaign
func (c *Cache) GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	key := PrefixCampaign + id.String()
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var campaign domain.Campaign
	if err := json.Unmarshal(data, &campaign); err != nil {
		return nil, err
	}

	return &campaign, nil
}

// SetCampaign caches a campaign
func (c *Cache) SetCampaign(ctx context.Context, campaign *domain.Campaign) error {
	key := PrefixCampaign + campaign.ID.String()
	data, err := json.Marshal(campaign)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, DefaultTTL).Err()
}

// InvalidateCampaign removes a campaign and its status key from cache
func (c *Cache) InvalidateCampaign(ctx context.Context, id uuid.UUID) error {
	return c.DeletePattern(ctx, PrefixCampaign+id.String()+"*")
}

// Campaign status caching

// GetCampaignStatus retrieves cached campaign status
func (c *Cache) GetCampaignStatus(ctx context.Context, id uuid.UUID) (domain.CampaignStatus, error) {
	key := PrefixCampaign + id.String() + ":status"
	status, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}

	return domain.CampaignStatus(status), nil
}

// SetCampaignStatus caches campaign status
func (c *Cache) SetCampaignStatus(ctx context.Context, id uuid.UUID, status domain.CampaignStatus) error {
	key := PrefixCampaign + id.String() + ":status"
	return c.client.Set(ctx, key, string(status), DefaultTTL).Err()
}

// Competitor analysis caching. Reports are cached per brand context and URL
// set so repeated analyses skip the scrape entirely.

// GetAnalysis retrieves a cached analysis report
func (c *Cache) GetAnalysis(ctx context.Context, key string) (*domain.AnalysisReport, error) {
	data, err := c.client.Get(ctx, PrefixAnalysis+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var report domain.AnalysisReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}

	return &report, nil
}

// SetAnalysis caches an analysis report
func (c *Cache) SetAnalysis(ctx context.Context, key string, report *domain.AnalysisReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, PrefixAnalysis+key, data, AnalysisTTL).Err()
}

// Rate limiting

// CheckRateLimit checks and increments rate limit counter
func (c *Cache) CheckRateLimit(ctx context.Context, key string, limit int) (bool, int, error) {
	fullKey := PrefixRateLimit + key

	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, RateLimitWindow)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, 0, err
	}

	count := int(incr.Val())
	return count <= limit, count, nil
}

// Generic caching methods

// Get retrieves a value from cache
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Set stores a value in cache
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a value from cache
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// DeletePattern removes all keys matching a pattern
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}

	return nil
}
