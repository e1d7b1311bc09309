package dedup

import (
	"context"
	"fmt"
	"time"

	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
	"github.com/redis/go-redis/v9"
)

const DefaultReservationTTL = 5 * time.Minute

// RedisIndex shares claims between every process pointed at the same redis.
// The TTL bounds how long a crashed writer can hold an email.
type RedisIndex struct {
	client *redis.Client
	store  EmailChecker
	prefix string
	ttl    time.Duration
}

func NewRedisIndex(client *redis.Client, store EmailChecker, ttl time.Duration) *RedisIndex {
	if ttl <= 0 {
		ttl = DefaultReservationTTL
	}
	return &RedisIndex{
		client: client,
		store:  store,
		prefix: "user_pipeline:email_reservation",
		ttl:    ttl,
	}
}

func (i *RedisIndex) Reserve(ctx context.Context, email string) (bool, error) {
	email = domain.NormalizeEmail(email)

	claimed, err := i.client.SetNX(ctx, i.key(email), 1, i.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve email: %w", err)
	}
	if !claimed {
		return false, nil
	}

	exists, err := i.store.ExistsByEmail(ctx, email)
	if err != nil || exists {
		if relErr := i.Release(ctx, email); relErr != nil && err == nil {
			err = relErr
		}
		return false, err
	}
	return true, nil
}

func (i *RedisIndex) Release(ctx context.Context, email string) error {
	if err := i.client.Del(ctx, i.key(domain.NormalizeEmail(email))).Err(); err != nil {
		return fmt.Errorf("release email: %w", err)
	}
	return nil
}

func (i *RedisIndex) key(email string) string {
	return i.prefix + ":" + email
}
