// Package cache provides a Redis-backed cache for inbox analyses.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ayaanrathod/studybalance/internal/inbox/domain"
)

const keyPrefix = "studybalance:inbox:analysis:"

// RedisCache stores the latest analysis per user with a TTL so repeated
// lookups within the window skip the mail provider.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a cache from a Redis URL, e.g.
// redis://localhost:6379/0.
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return &RedisCache{client: redis.NewClient(opts), ttl: ttl}, nil
}

// NewRedisCacheWithClient creates a cache around an existing client.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached analysis for a user, or nil on a cache miss.
func (c *RedisCache) Get(ctx context.Context, userID string) (*domain.Analysis, error) {
	data, err := c.client.Get(ctx, keyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode cached analysis: %w", err)
	}
	return entry.toAnalysis(), nil
}

// Set stores the analysis under the user's key with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, analysis *domain.Analysis) error {
	entry := newCacheEntry(analysis)
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	key := keyPrefix + analysis.UserID().String()
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// cacheEntry is the JSON shape stored in Redis. The aggregate's fields are
// unexported, so it is flattened here and rehydrated on read.
type cacheEntry struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	AnalyzedAt      time.Time   `json:"analyzed_at"`
	DaysAnalyzed    int         `json:"days_analyzed"`
	TotalEmails     int         `json:"total_emails"`
	UrgentEmails    int         `json:"urgent_emails"`
	WorkEmails      int         `json:"work_emails"`
	WorkloadScore   float64     `json:"workload_score"`
	BurnoutRisk     string      `json:"burnout_risk"`
	StressKeywords  []string    `json:"stress_keywords"`
	PeakHours       []string    `json:"peak_hours"`
	HourlyCounts    map[int]int `json:"hourly_counts"`
	Recommendations []string    `json:"recommendations"`
	CreatedAt       time.Time   `json:"created_at"`
}

func newCacheEntry(analysis *domain.Analysis) cacheEntry {
	return cacheEntry{
		ID:              analysis.ID(),
		UserID:          analysis.UserID(),
		AnalyzedAt:      analysis.AnalyzedAt(),
		DaysAnalyzed:    analysis.DaysAnalyzed(),
		TotalEmails:     analysis.TotalEmails(),
		UrgentEmails:    analysis.UrgentEmails(),
		WorkEmails:      analysis.WorkEmails(),
		WorkloadScore:   analysis.WorkloadScore(),
		BurnoutRisk:     string(analysis.BurnoutRisk()),
		StressKeywords:  analysis.StressKeywords(),
		PeakHours:       analysis.PeakHours(),
		HourlyCounts:    analysis.HourlyCounts(),
		Recommendations: analysis.Recommendations(),
		CreatedAt:       analysis.CreatedAt(),
	}
}

func (e cacheEntry) toAnalysis() *domain.Analysis {
	return domain.RehydrateAnalysis(e.ID, e.UserID, e.AnalyzedAt, e.DaysAnalyzed,
		domain.Report{
			TotalEmails:     e.TotalEmails,
			UrgentEmails:    e.UrgentEmails,
			WorkEmails:      e.WorkEmails,
			WorkloadScore:   e.WorkloadScore,
			BurnoutRisk:     domain.BurnoutRisk(e.BurnoutRisk),
			StressKeywords:  e.StressKeywords,
			PeakHours:       e.PeakHours,
			HourlyCounts:    e.HourlyCounts,
			Recommendations: e.Recommendations,
		}, e.CreatedAt)
}
