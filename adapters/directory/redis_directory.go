package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
)

var _ ports.UserDirectory = (*RedisDirectory)(nil)

// RedisDirectory stores wallet users as JSON values in Redis
type RedisDirectory struct {
	client *redis.Client
	prefix string
}

// NewRedisDirectory creates a new Redis directory
func NewRedisDirectory(client *redis.Client) *RedisDirectory {
	return &RedisDirectory{
		client: client,
		prefix: "walletauth:user:",
	}
}

// FindByAddress returns the user bound to address
func (d *RedisDirectory) FindByAddress(ctx context.Context, address string) (*core.User, error) {
	data, err := d.client.Get(ctx, d.prefix+address).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user core.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

// Upsert writes the user. An existing record keeps its id and created_at;
// the read-modify-write runs inside a WATCH transaction.
func (d *RedisDirectory) Upsert(ctx context.Context, user *core.User) (*core.User, error) {
	key := d.prefix + user.Address
	stored := *user

	err := d.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			var existing core.User
			if err := json.Unmarshal(data, &existing); err != nil {
				return fmt.Errorf("failed to unmarshal user: %w", err)
			}
			stored.ID = existing.ID
			stored.CreatedAt = existing.CreatedAt
		}

		payload, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return &stored, nil
}
