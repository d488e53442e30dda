package imaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
)

// ArtifactStore is an optional second-level cache behind the in-process
// one, shared across instances. Failures are soft: a broken store only
// costs regeneration.
type ArtifactStore interface {
	Get(ctx context.Context, key string) (*model.ImageArtifact, bool)
	Set(ctx context.Context, key string, artifact *model.ImageArtifact, ttl time.Duration)
}

// RedisArtifactStore keeps artifacts in Redis as JSON with a TTL.
type RedisArtifactStore struct {
	client *redis.Client
	prefix string
}

func NewRedisArtifactStore(url string) (*RedisArtifactStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisArtifactStore{client: client, prefix: "image:"}, nil
}

func (s *RedisArtifactStore) Get(ctx context.Context, key string) (*model.ImageArtifact, bool) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var artifact model.ImageArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, false
	}
	return &artifact, true
}

func (s *RedisArtifactStore) Set(ctx context.Context, key string, artifact *model.ImageArtifact, ttl time.Duration) {
	raw, err := json.Marshal(artifact)
	if err != nil {
		return
	}
	s.client.Set(ctx, s.prefix+key, raw, ttl)
}

func (s *RedisArtifactStore) Close() error { return s.client.Close() }
