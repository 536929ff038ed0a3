package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tarifaninja/faresearch/internal/models"
)

// Cache stores merged offer lists under a deterministic query fingerprint.
// Caching is best-effort: a failed Get behaves as a miss and callers are
// expected to log and discard Set errors.
type Cache interface {
	Get(ctx context.Context, q models.Query) ([]models.Offer, bool)
	Set(ctx context.Context, q models.Query, offers []models.Offer) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, q models.Query) ([]models.Offer, bool) {
	data, err := c.client.Get(ctx, Fingerprint(q)).Bytes()
	if err != nil {
		return nil, false
	}

	var offers []models.Offer
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, false
	}
	return offers, true
}

func (c *RedisCache) Set(ctx context.Context, q models.Query, offers []models.Offer) error {
	data, err := json.Marshal(offers)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Fingerprint(q), data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NoOpCache serves deployments without a cache backend: every Get misses and
// Set discards.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, q models.Query) ([]models.Offer, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, q models.Query, offers []models.Offer) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// Fingerprint hashes the canonical field ordering of a normalized query, so
// identical queries map to the same key no matter how the request presented
// its fields.
func Fingerprint(q models.Query) string {
	keyData := struct {
		Origin      string
		Destination string
		DepartDate  string
		ReturnDate  string
		Pax         int
		Cabin       string
	}{
		Origin:      q.Origin,
		Destination: q.Destination,
		DepartDate:  q.DepartDate,
		ReturnDate:  q.ReturnDate,
		Pax:         q.Pax,
		Cabin:       q.Cabin,
	}

	data, _ := json.Marshal(keyData)
	hash := sha256.Sum256(data)
	return "search:" + hex.EncodeToString(hash[:])
}
