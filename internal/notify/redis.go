package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cm-sla/sla-dashboard/internal/model"
)

// DefaultRedisKey is the hash holding ticket ID to alert time.
const DefaultRedisKey = "sla:notified"

// RedisConfig holds connection settings for the shared dedup store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// RedisStore records alerts in a Redis hash so several dashboard replicas
// share one dedup set.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to Redis. An unreachable server is logged, not
// fatal; operations fail until it becomes available.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger *slog.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", "addr", cfg.Addr, "error", err)
	} else {
		logger.Info("connected to redis", "addr", cfg.Addr)
	}

	key := cfg.Key
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) IsNotified(ctx context.Context, ticketID int) (bool, error) {
	ok, err := r.client.HExists(ctx, r.key, strconv.Itoa(ticketID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis hexists: %w", err)
	}
	return ok, nil
}

// MarkNotified keeps the first alert time when called twice.
func (r *RedisStore) MarkNotified(ctx context.Context, ticketID int, at time.Time) error {
	if err := r.client.HSetNX(ctx, r.key, strconv.Itoa(ticketID), at.UTC().Format(time.RFC3339)).Err(); err != nil {
		return fmt.Errorf("redis hsetnx: %w", err)
	}
	return nil
}

func (r *RedisStore) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	m, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	out := make([]model.Notification, 0, len(m))
	for k, v := range m {
		id, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		at, _ := time.Parse(time.RFC3339, v)
		out = append(out, model.Notification{TicketID: id, NotifiedAt: at})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NotifiedAt.Equal(out[j].NotifiedAt) {
			return out[i].NotifiedAt.After(out[j].NotifiedAt)
		}
		return out[i].TicketID < out[j].TicketID
	})
	return out, nil
}

// Ping verifies Redis connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
