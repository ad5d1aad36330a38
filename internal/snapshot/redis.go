package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mauv0809/permutatum/internal/participant"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultRedisKey is where the snapshot is stored when no key is given.
const DefaultRedisKey = "permutatum:snapshot"

var _ Cache = (*RedisCache)(nil)

// RedisCache shares one snapshot between every instance of the service. The
// snapshot is stored msgpack-encoded under a single key that expires after ttl.
// The version lives under key+":version" and is shared by every instance.
type RedisCache struct {
	client     *redis.Client
	key        string
	versionKey string
	ttl        time.Duration
}

// NewRedisCache creates a cache on client. An empty key uses DefaultRedisKey.
func NewRedisCache(client *redis.Client, key string, ttl time.Duration) *RedisCache {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisCache{client: client, key: key, versionKey: key + ":version", ttl: ttl}
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context) ([]participant.Participant, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached snapshot: %w", err)
	}
	var snapshot []participant.Participant
	if err := msgpack.Unmarshal(data, &snapshot); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached snapshot: %w", err)
	}
	return snapshot, true, nil
}

func (c *RedisCache) Version(ctx context.Context) (uint64, error) {
	return readVersion(ctx, c.client, c.versionKey)
}

func readVersion(ctx context.Context, cmd redis.StringCmdable, key string) (uint64, error) {
	v, err := cmd.Get(ctx, key).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read snapshot version: %w", err)
	}
	return v, nil
}

// Set writes the snapshot inside a transaction watching the version key, so an
// Invalidate from any instance between Version and Set wins.
func (c *RedisCache) Set(ctx context.Context, snapshot []participant.Participant, version uint64) (bool, error) {
	if c.ttl <= 0 {
		return false, nil
	}
	if snapshot == nil {
		snapshot = []participant.Participant{}
	}
	data, err := msgpack.Marshal(snapshot)
	if err != nil {
		return false, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(ctx, tx, c.versionKey)
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key, data, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, c.versionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to cache snapshot: %w", err)
	}
	return stored, nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.versionKey)
		pipe.Del(ctx, c.key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate cached snapshot: %w", err)
	}
	return nil
}
