package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"facilitybook/internal/config"
	"facilitybook/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	usersKey    = "users"
	bookingsKey = "bookings"
)

// NewRedisClient builds a client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// RedisSnapshotStore persists the user and booking collections as two JSON
// documents. A missing key loads as an empty collection.
type RedisSnapshotStore struct {
	client *redis.Client
	prefix string
}

func NewRedisSnapshotStore(client *redis.Client, prefix string) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, prefix: prefix}
}

func (r *RedisSnapshotStore) LoadUsers(ctx context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0)
	if err := r.load(ctx, usersKey, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *RedisSnapshotStore) SaveUsers(ctx context.Context, users []*models.User) error {
	return r.save(ctx, usersKey, users)
}

func (r *RedisSnapshotStore) LoadBookings(ctx context.Context) ([]*models.Booking, error) {
	bookings := make([]*models.Booking, 0)
	if err := r.load(ctx, bookingsKey, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *RedisSnapshotStore) SaveBookings(ctx context.Context, bookings []*models.Booking) error {
	return r.save(ctx, bookingsKey, bookings)
}

// Ping reports whether the server is reachable.
func (r *RedisSnapshotStore) Ping(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return r.client.Ping(ctx).Err()
}

func (r *RedisSnapshotStore) load(ctx context.Context, key string, dst interface{}) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func (r *RedisSnapshotStore) save(ctx context.Context, key string, src interface{}) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", key, err)
	}
	return nil
}
