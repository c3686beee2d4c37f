package memory

import (
	"context"
	"time"

	"symptom-checker-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type GuestUsageRepository struct {
	cache *cache.Cache
}

// NewGuestUsageRepository keeps used guest keys for ttl, which should match
// the client session cookie lifetime.
func NewGuestUsageRepository(ttl time.Duration) contract.GuestUsageRepository {
	return &GuestUsageRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *GuestUsageRepository) Consume(_ context.Context, guestKey string) (bool, error) {
	// Add fails when the key is already present, which makes it the atomic check-and-set.
	if err := r.cache.Add(guestKey, time.Now(), cache.DefaultExpiration); err != nil {
		return false, nil
	}
	return true, nil
}
