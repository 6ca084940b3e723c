package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/markdave123-py/sermonchat/internal/core"
	"github.com/markdave123-py/sermonchat/internal/models"
)

const (
	defaultKeyPrefix = "sermonchat:sermons"
	maxWatchAttempts = 5
)

// RedisStore keeps an ordered list of sermon IDs next to a hash of encoded
// records. Creates push both in one MULTI/EXEC so the pair stays consistent.
type RedisStore struct {
	client  *redis.Client
	listKey string
	dataKey string
}

// NewRedisStore connects with a redis:// URL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL is empty")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStoreFromClient(client, ""), nil
}

// NewRedisStoreFromClient wraps an existing client. An empty prefix uses the default.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{
		client:  client,
		listKey: prefix + ":order",
		dataKey: prefix + ":data",
	}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) CreateSermon(ctx context.Context, sermon *models.Sermon) error {
	if sermon == nil {
		return errors.New("nil sermon")
	}
	payload, err := json.Marshal(sermon)
	if err != nil {
		return fmt.Errorf("encode sermon: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.dataKey, sermon.ID, payload)
		pipe.RPush(ctx, s.listKey, sermon.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis create sermon: %w", err)
	}
	return nil
}

func (s *RedisStore) ListSermons(ctx context.Context) ([]models.Sermon, error) {
	ids, err := s.client.LRange(ctx, s.listKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list sermon ids: %w", err)
	}
	out := make([]models.Sermon, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	values, err := s.client.HMGet(ctx, s.dataKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load sermons: %w", err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var sermon models.Sermon
		if err := json.Unmarshal([]byte(raw), &sermon); err != nil {
			return nil, fmt.Errorf("%w: sermon %s: %v", core.ErrCorruptStore, ids[i], err)
		}
		out = append(out, sermon)
	}
	return out, nil
}

func (s *RedisStore) GetSermonByID(ctx context.Context, id string) (*models.Sermon, error) {
	return s.get(ctx, s.client, id)
}

// UpdateSermonStatus is an optimistic WATCH/MULTI transaction on the data hash.
func (s *RedisStore) UpdateSermonStatus(ctx context.Context, id string, from, to models.SermonStatus) (*models.Sermon, error) {
	var updated *models.Sermon
	txf := func(tx *redis.Tx) error {
		sermon, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if sermon.Status != from {
			return fmt.Errorf("%w: sermon %s is %s", core.ErrInvalidTransition, id, sermon.Status)
		}
		sermon.Status = to
		payload, err := json.Marshal(sermon)
		if err != nil {
			return fmt.Errorf("encode sermon: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.dataKey, id, payload)
			return nil
		})
		if err == nil {
			updated = sermon
		}
		return err
	}

	for attempt := 0; attempt < maxWatchAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, s.dataKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("%w: sermon %s", core.ErrWriteConflict, id)
}

// hashGetter is satisfied by both *redis.Client and *redis.Tx.
type hashGetter interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

func (s *RedisStore) get(ctx context.Context, c hashGetter, id string) (*models.Sermon, error) {
	raw, err := c.HGet(ctx, s.dataKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrSermonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get sermon: %w", err)
	}
	var sermon models.Sermon
	if err := json.Unmarshal([]byte(raw), &sermon); err != nil {
		return nil, fmt.Errorf("%w: sermon %s: %v", core.ErrCorruptStore, id, err)
	}
	return &sermon, nil
}

var _ core.SermonStore = (*RedisStore)(nil)
