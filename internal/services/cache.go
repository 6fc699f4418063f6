package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/config"
)

// Cache TTLs per data class. Snapshot TTLs bound worst-case staleness when
// a run finishes without refreshing the cache; the pipeline normally
// overwrites these keys right after persisting.
const (
	NarrativeTTL      = 24 * time.Hour // AI narratives refresh daily at most
	RosterTTL         = 6 * time.Hour  // Roster moves are infrequent mid-week
	FreeAgentTTL      = 1 * time.Hour  // Pool shifts after games resolve
	StandingsTTL      = 6 * time.Hour  // Standings only move on game days
	RecommendationTTL = 6 * time.Hour
	RunSummaryTTL     = 7 * 24 * time.Hour
)

// CacheService is an optional Redis layer in front of the ESPN provider and
// the narrative generator. When Redis is disabled or unreachable every Get
// is a miss and every Set is a no-op: the pipeline never depends on it.
type CacheService struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewCacheService connects to Redis when enabled. A nil return with a nil
// error means caching is disabled by configuration.
func NewCacheService(cfg config.RedisConfig, logger *logrus.Logger) *CacheService {
	if !cfg.Enabled {
		logger.Info("Redis caching disabled")
		return &CacheService{logger: logger}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unreachable, continuing without cache")
		return &CacheService{logger: logger}
	}

	logger.WithField("addr", cfg.Addr).Info("Connected to Redis cache")
	return &CacheService{client: client, logger: logger}
}

// Enabled reports whether a live Redis connection backs this service.
func (c *CacheService) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *CacheService) buildKey(elements ...string) string {
	return fmt.Sprintf("fantasy-hockey:%s", strings.Join(elements, ":"))
}

// Set stores a value with TTL. Failures are logged and swallowed.
func (c *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !c.Enabled() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to marshal cache value")
		return
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to set cache value")
		return
	}

	c.logger.WithFields(logrus.Fields{
		"key": key,
		"ttl": ttl.String(),
	}).Debug("Cached value")
}

// Get retrieves a value. Returns false on miss, disabled cache, or error.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !c.Enabled() {
		return false
	}

	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).WithField("key", key).Warn("Failed to get cache value")
		}
		return false
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to unmarshal cache value")
		return false
	}

	c.logger.WithField("key", key).Debug("Cache hit")
	return true
}

// Narrative caching keyed by prompt hash so identical contexts reuse the
// prior completion.
func (c *CacheService) SetNarrative(ctx context.Context, promptHash string, text string) {
	c.Set(ctx, c.buildKey("narrative", promptHash), text, NarrativeTTL)
}

func (c *CacheService) GetNarrative(ctx context.Context, promptHash string) (string, bool) {
	var text string
	ok := c.Get(ctx, c.buildKey("narrative", promptHash), &text)
	return text, ok
}

// Latest-snapshot caching. One league and one team per deployment, so the
// keyspace is flat: each data class holds the output of the most recent
// run. The pipeline writes these after persisting; the API reads through
// them before falling back to disk.

func (c *CacheService) SetRoster(ctx context.Context, team interface{}) {
	c.Set(ctx, c.buildKey("roster", "latest"), team, RosterTTL)
}

func (c *CacheService) GetRoster(ctx context.Context, dest interface{}) bool {
	return c.Get(ctx, c.buildKey("roster", "latest"), dest)
}

func (c *CacheService) SetFreeAgents(ctx context.Context, position string, pool interface{}) {
	c.Set(ctx, c.buildKey("free-agents", positionKey(position)), pool, FreeAgentTTL)
}

func (c *CacheService) GetFreeAgents(ctx context.Context, position string, dest interface{}) bool {
	return c.Get(ctx, c.buildKey("free-agents", positionKey(position)), dest)
}

func (c *CacheService) SetStandings(ctx context.Context, standings interface{}) {
	c.Set(ctx, c.buildKey("standings", "latest"), standings, StandingsTTL)
}

func (c *CacheService) GetStandings(ctx context.Context, dest interface{}) bool {
	return c.Get(ctx, c.buildKey("standings", "latest"), dest)
}

func (c *CacheService) SetRecommendations(ctx context.Context, set interface{}) {
	c.Set(ctx, c.buildKey("recommendations", "latest"), set, RecommendationTTL)
}

func (c *CacheService) GetRecommendations(ctx context.Context, dest interface{}) bool {
	return c.Get(ctx, c.buildKey("recommendations", "latest"), dest)
}

func (c *CacheService) SetSwapAnalysis(ctx context.Context, analysis interface{}) {
	c.Set(ctx, c.buildKey("swaps", "latest"), analysis, RecommendationTTL)
}

func (c *CacheService) GetSwapAnalysis(ctx context.Context, dest interface{}) bool {
	return c.Get(ctx, c.buildKey("swaps", "latest"), dest)
}

func (c *CacheService) SetSummary(ctx context.Context, summary interface{}) {
	c.Set(ctx, c.buildKey("summary", "latest"), summary, RunSummaryTTL)
}

func (c *CacheService) GetSummary(ctx context.Context, dest interface{}) bool {
	return c.Get(ctx, c.buildKey("summary", "latest"), dest)
}

func positionKey(position string) string {
	if position == "" {
		return "all"
	}
	return strings.ReplaceAll(strings.ToLower(position), " ", "-")
}

// IsHealthy pings Redis for the readiness endpoint. A disabled cache is
// healthy by definition.
func (c *CacheService) IsHealthy(ctx context.Context) bool {
	if !c.Enabled() {
		return true
	}
	return c.client.Ping(ctx).Err() == nil
}

// Close releases the Redis connection.
func (c *CacheService) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
