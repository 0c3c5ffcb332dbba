package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheConfig holds response cache configuration
type CacheConfig struct {
	// Redis layer (optional, shared across instances)
	RedisEnabled bool
	RedisTTL     time.Duration

	// Memory layer
	MemoryEnabled bool
	MemoryMaxSize int
	MemoryTTL     time.Duration
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		RedisEnabled:  true,
		RedisTTL:      24 * time.Hour,
		MemoryEnabled: true,
		MemoryMaxSize: 1000,
		MemoryTTL:     1 * time.Hour,
	}
}

// ResponseCache is a two-layer cache for completion responses. The memory
// layer answers repeat prompts within a process; the Redis layer shares
// responses across instances and survives restarts.
type ResponseCache struct {
	config CacheConfig
	redis  *redis.Client
	logger *zap.Logger

	mu       sync.RWMutex
	memCache map[string]*memEntry
	order    []string // insertion order for eviction
}

type memEntry struct {
	response  string
	expiresAt time.Time
}

// NewResponseCache creates a response cache. redisClient may be nil, which
// disables the Redis layer regardless of config.
func NewResponseCache(config CacheConfig, redisClient *redis.Client, logger *zap.Logger) *ResponseCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseCache{
		config:   config,
		redis:    redisClient,
		logger:   logger,
		memCache: make(map[string]*memEntry),
	}
}

// Key derives a stable cache key from the prompt pair
func (c *ResponseCache) Key(model, systemPrompt, userPrompt string) string {
	h := sha256.Sum256([]byte(model + "\x00" + systemPrompt + "\x00" + userPrompt))
	return "llm:resp:" + hex.EncodeToString(h[:])
}

// Get checks memory first, then Redis. A Redis hit is promoted into memory.
func (c *ResponseCache) Get(ctx context.Context, key string) (string, bool) {
	if c.config.MemoryEnabled {
		c.mu.RLock()
		entry, ok := c.memCache[key]
		c.mu.RUnlock()
		if ok && time.Now().Before(entry.expiresAt) {
			return entry.response, true
		}
	}

	if c.config.RedisEnabled && c.redis != nil {
		val, err := c.redis.Get(ctx, key).Result()
		if err == nil {
			c.setMemory(key, val)
			return val, true
		}
		if err != redis.Nil {
			c.logger.Warn("redis cache read failed", zap.Error(err))
		}
	}

	return "", false
}

// Set stores the response in both layers
func (c *ResponseCache) Set(ctx context.Context, key, response string) {
	c.setMemory(key, response)

	if c.config.RedisEnabled && c.redis != nil {
		if err := c.redis.Set(ctx, key, response, c.config.RedisTTL).Err(); err != nil {
			c.logger.Warn("redis cache write failed", zap.Error(err))
		}
	}
}

func (c *ResponseCache) setMemory(key, response string) {
	if !c.config.MemoryEnabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.memCache[key]; !exists {
		// Evict oldest entries when full
		for len(c.order) >= c.config.MemoryMaxSize && len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.memCache, oldest)
		}
		c.order = append(c.order, key)
	}

	c.memCache[key] = &memEntry{
		response:  response,
		expiresAt: time.Now().Add(c.config.MemoryTTL),
	}
}

// Len returns the number of entries in the memory layer
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memCache)
}
