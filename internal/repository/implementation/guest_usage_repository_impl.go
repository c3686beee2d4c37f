package implementation

import (
	"context"
	"time"

	"symptom-checker-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const guestUsageKeyPrefix = "guest_usage:"

type GuestUsageRepositoryImpl struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewGuestUsageRepository(rdb *redis.Client, ttl time.Duration) contract.GuestUsageRepository {
	return &GuestUsageRepositoryImpl{
		rdb: rdb,
		ttl: ttl,
	}
}

func (r *GuestUsageRepositoryImpl) Consume(ctx context.Context, guestKey string) (bool, error) {
	return r.rdb.SetNX(ctx, guestUsageKeyPrefix+guestKey, time.Now().Unix(), r.ttl).Result()
}
