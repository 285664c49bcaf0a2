package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/xaenox/maeum/internal/models"
)

const (
	shareKeyPrefix  = "maeum:share:"
	maxWatchRetries = 5
)

// RedisShareStore keeps shared conversations as JSON values that expire
// after ttl.
type RedisShareStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedisShareStore(ctx context.Context, config RedisConfig, logger *zap.Logger) (*RedisShareStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error connecting to redis at %s: %w", config.Addr, err)
	}

	logger.Info("Connected to Redis", zap.String("addr", config.Addr), zap.Int("db", config.DB))
	return newRedisShareStore(client, config.TTL, logger), nil
}

func newRedisShareStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisShareStore {
	return &RedisShareStore{client: client, ttl: ttl, logger: logger}
}

func shareKey(id string) string {
	return shareKeyPrefix + id
}

func (s *RedisShareStore) SaveShare(ctx context.Context, conv *models.SharedConversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("error encoding shared conversation: %w", err)
	}
	if err := s.client.Set(ctx, shareKey(conv.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("error saving shared conversation: %w", err)
	}
	return nil
}

// GetShareAndCountView uses WATCH so concurrent readers never lose a view.
func (s *RedisShareStore) GetShareAndCountView(ctx context.Context, id string) (*models.SharedConversation, error) {
	key := shareKey(id)
	var conv models.SharedConversation

	increment := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &conv); err != nil {
			return fmt.Errorf("error decoding shared conversation: %w", err)
		}

		conv.Views++
		updated, err := json.Marshal(&conv)
		if err != nil {
			return fmt.Errorf("error encoding shared conversation: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err := s.client.Watch(ctx, increment, key)
		if errors.Is(err, redis.TxFailedErr) {
			s.logger.Debug("Share view update raced, retrying",
				zap.String("share_id", id),
				zap.Int("attempt", attempt+1))
			continue
		}
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("error counting share view: %w", err)
		}
		return &conv, nil
	}
	return nil, fmt.Errorf("error counting share view: too much contention on %s", id)
}

func (s *RedisShareStore) Close() error {
	return s.client.Close()
}
