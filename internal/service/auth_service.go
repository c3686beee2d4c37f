package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"symptom-checker-be/internal/dto"
	"symptom-checker-be/internal/entity"
	"symptom-checker-be/internal/pkg/apperror"
	"symptom-checker-be/internal/pkg/logger"
	"symptom-checker-be/internal/repository/specification"
	"symptom-checker-be/internal/repository/unitofwork"
	"symptom-checker-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs bearer tokens for a user id.
type TokenIssuer interface {
	IssueToken(userId string, ttl time.Duration) (string, error)
}

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Verify(ctx context.Context, userId string) (*dto.VerifyResponse, error)
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	tokens         TokenIssuer
	tokenTTL       time.Duration
	eventPublisher IPublisherService
	logger         logger.ILogger
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	tokens TokenIssuer,
	tokenTTL time.Duration,
	eventPublisher IPublisherService,
	sysLogger logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		tokens:         tokens,
		tokenTTL:       tokenTTL,
		eventPublisher: eventPublisher,
		logger:         sysLogger,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Internal("failed to begin transaction", err)
	}
	defer uow.Rollback()

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("Email already registered")
	}

	now := time.Now()
	user := &entity.User{
		Id:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, apperror.Internal("failed to create user", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.Internal("failed to commit user", err)
	}

	s.publish(ctx, events.New(events.UserRegistered, map[string]interface{}{
		"user_id": user.Id.String(),
	}))

	return s.authResponse(user)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperror.Unauthorized("Invalid email or password")
		}
		return nil, apperror.Internal("failed to check password", err)
	}

	s.publish(ctx, events.New(events.UserLogin, map[string]interface{}{
		"user_id": user.Id.String(),
	}))

	return s.authResponse(user)
}

func (s *authService) Verify(ctx context.Context, userId string) (*dto.VerifyResponse, error) {
	id, err := uuid.Parse(userId)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid token")
	}

	user, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil, apperror.Unauthorized("User not found")
	}

	return &dto.VerifyResponse{
		User:    toUserDTO(user),
		IsGuest: false,
	}, nil
}

func (s *authService) authResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.IssueToken(user.Id.String(), s.tokenTTL)
	if err != nil {
		return nil, apperror.Internal("failed to sign token", err)
	}
	return &dto.AuthResponse{
		Token: token,
		User:  *toUserDTO(user),
	}, nil
}

func (s *authService) publish(ctx context.Context, evt events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("AUTH", "Failed to publish event", map[string]interface{}{
			"event_type": evt.EventType(),
			"error":      err.Error(),
		})
	}
}

func toUserDTO(user *entity.User) *dto.UserDTO {
	return &dto.UserDTO{
		Id:    user.Id,
		Name:  user.Name,
		Email: user.Email,
	}
}
