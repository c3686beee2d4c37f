package service

import (
	"context"
	"time"

	"symptom-checker-be/internal/dto"
	"symptom-checker-be/internal/pkg/apperror"
	"symptom-checker-be/internal/pkg/logger"
	"symptom-checker-be/internal/repository/contract"
	"symptom-checker-be/internal/repository/specification"
	"symptom-checker-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const quotaDayLayout = "2006-01-02"

// IQuotaService is the Rate Limiter: a single analysis per guest client
// session and a daily request quota per user.
type IQuotaService interface {
	AdmitGuest(ctx context.Context, guestKey string) error
	Reserve(ctx context.Context, userId string) (string, error)
	Release(ctx context.Context, userId string, day string)
}

type QuotaOption func(*quotaService)

// WithQuotaClock replaces time.Now; the calendar day is taken in the
// returned time's location.
func WithQuotaClock(now func() time.Time) QuotaOption {
	return func(s *quotaService) {
		s.now = now
	}
}

type quotaService struct {
	uowFactory unitofwork.RepositoryFactory
	guestRepo  contract.GuestUsageRepository
	dailyLimit int
	logger     logger.ILogger
	now        func() time.Time
}

func NewQuotaService(
	uowFactory unitofwork.RepositoryFactory,
	guestRepo contract.GuestUsageRepository,
	dailyLimit int,
	sysLogger logger.ILogger,
	opts ...QuotaOption,
) IQuotaService {
	s := &quotaService{
		uowFactory: uowFactory,
		guestRepo:  guestRepo,
		dailyLimit: dailyLimit,
		logger:     sysLogger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *quotaService) AdmitGuest(ctx context.Context, guestKey string) error {
	if guestKey == "" {
		return apperror.Unauthorized("Missing guest session")
	}

	ok, err := s.guestRepo.Consume(ctx, guestKey)
	if err != nil {
		return apperror.Internal("failed to check guest usage", err)
	}
	if !ok {
		return apperror.GuestQuotaExceeded("Guest users are limited to one analysis. Please sign up or log in to continue.")
	}
	return nil
}

func (s *quotaService) Reserve(ctx context.Context, userId string) (string, error) {
	id, err := uuid.Parse(userId)
	if err != nil {
		return "", apperror.Unauthorized("Invalid user")
	}

	now := s.now()
	day := now.Format(quotaDayLayout)
	repo := s.uowFactory.NewUnitOfWork(ctx).UserRepository()

	user, err := repo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return "", apperror.Internal("failed to load user", err)
	}
	if user == nil {
		return "", apperror.Unauthorized("User not found")
	}

	if user.DailyUsageDay != day {
		if err := repo.ResetDailyUsage(ctx, id, day); err != nil {
			return "", apperror.Internal("failed to reset daily usage", err)
		}
	}

	counted, err := repo.TryIncrementDailyUsage(ctx, id, s.dailyLimit)
	if err != nil {
		return "", apperror.Internal("failed to count request", err)
	}
	if !counted {
		used := s.dailyLimit
		if fresh, err := repo.FindOne(ctx, specification.ByID{ID: id}); err == nil && fresh != nil {
			used = fresh.DailyUsage
		}
		s.logger.Info("QUOTA", "Daily limit reached", map[string]interface{}{
			"user_id": userId,
			"limit":   s.dailyLimit,
		})
		y, m, d := now.Date()
		return "", &dto.LimitExceededError{
			Limit:      s.dailyLimit,
			Used:       used,
			ResetAfter: time.Date(y, m, d+1, 0, 0, 0, 0, now.Location()),
		}
	}

	return day, nil
}

func (s *quotaService) Release(ctx context.Context, userId string, day string) {
	id, err := uuid.Parse(userId)
	if err != nil {
		return
	}
	if err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().DecrementDailyUsage(ctx, id, day); err != nil {
		s.logger.Warn("QUOTA", "Failed to release reserved request", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
	}
}
