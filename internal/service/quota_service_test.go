package service

import (
	"context"
	"testing"
	"time"

	"symptom-checker-be/internal/dto"
	"symptom-checker-be/internal/entity"
	"symptom-checker-be/internal/pkg/apperror"
	"symptom-checker-be/internal/pkg/logger"
	"symptom-checker-be/internal/repository/memory"
	"symptom-checker-be/internal/repository/specification"
	"symptom-checker-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedQuotaUser(t *testing.T, factory unitofwork.RepositoryFactory) string {
	t.Helper()
	u := &entity.User{
		Id:           uuid.New(),
		Name:         "Quota User",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, factory.NewUnitOfWork(context.Background()).UserRepository().Create(context.Background(), u))
	return u.Id.String()
}

func usage(t *testing.T, factory unitofwork.RepositoryFactory, userId string) int {
	t.Helper()
	u, err := factory.NewUnitOfWork(context.Background()).UserRepository().
		FindOne(context.Background(), specification.ByID{ID: uuid.MustParse(userId)})
	require.NoError(t, err)
	return u.DailyUsage
}

func TestQuota_DailyLimit(t *testing.T) {
	factory := newTestFactory(t)
	userId := seedQuotaUser(t, factory)

	now := time.Date(2026, 3, 1, 22, 30, 0, 0, time.UTC)
	svc := NewQuotaService(factory, memory.NewGuestUsageRepository(time.Hour), 3, logger.NewNopLogger(),
		WithQuotaClock(func() time.Time { return now }))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		day, err := svc.Reserve(ctx, userId)
		require.NoError(t, err, "request %d", i+1)
		assert.Equal(t, "2026-03-01", day)
	}

	_, err := svc.Reserve(ctx, userId)
	var limitErr *dto.LimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.ErrorIs(t, err, apperror.ErrQuotaExceeded)
	assert.Equal(t, 3, limitErr.Limit)
	assert.Equal(t, 3, limitErr.Used)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), limitErr.ResetAfter)

	// a released reservation frees one slot
	svc.Release(ctx, userId, "2026-03-01")
	assert.Equal(t, 2, usage(t, factory, userId))
	_, err = svc.Reserve(ctx, userId)
	require.NoError(t, err)

	// the next calendar day starts over
	now = now.Add(2 * time.Hour)
	day, err := svc.Reserve(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", day)
	assert.Equal(t, 1, usage(t, factory, userId))

	// releasing yesterday's reservation does not touch today's counter
	svc.Release(ctx, userId, "2026-03-01")
	assert.Equal(t, 1, usage(t, factory, userId))
}

func TestQuota_UnknownUser(t *testing.T) {
	svc := NewQuotaService(newTestFactory(t), memory.NewGuestUsageRepository(time.Hour), 3, logger.NewNopLogger())

	_, err := svc.Reserve(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Reserve(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestQuota_GuestSingleUse(t *testing.T) {
	svc := NewQuotaService(newTestFactory(t), memory.NewGuestUsageRepository(time.Hour), 3, logger.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, svc.AdmitGuest(ctx, "cookie-a"))

	err := svc.AdmitGuest(ctx, "cookie-a")
	assert.ErrorIs(t, err, apperror.ErrGuestQuotaExceeded)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Code)

	assert.NoError(t, svc.AdmitGuest(ctx, "cookie-b"))
	assert.ErrorIs(t, svc.AdmitGuest(ctx, ""), apperror.ErrUnauthorized)
}
