// Package cache holds a Redis-backed transcript cache. Identical audio
// bytes produce the same transcript (modulo model temperature), so a
// hit skips both model calls entirely. The cache is optional and off
// unless a TTL is configured.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voicescribe/voicescribe/internal/pipeline"
)

type TranscriptCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTranscriptCache(client *redis.Client, ttl time.Duration) *TranscriptCache {
	return &TranscriptCache{client: client, ttl: ttl}
}

// Key derives the cache key from the audio bytes and the effective
// prompt override, so a custom prompt never serves a stale cleanup.
func (c *TranscriptCache) Key(audio []byte, promptOverride string) string {
	h := sha256.New()
	h.Write(audio)
	if promptOverride != "" {
		h.Write([]byte(promptOverride))
	}
	return "transcript:" + hex.EncodeToString(h.Sum(nil))
}

func (c *TranscriptCache) Get(ctx context.Context, key string) (*pipeline.Result, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	var res pipeline.Result
	if err := json.Unmarshal([]byte(val), &res); err != nil {
		return nil, fmt.Errorf("unmarshal cached result: %w", err)
	}
	return &res, nil
}

func (c *TranscriptCache) Set(ctx context.Context, key string, res *pipeline.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
