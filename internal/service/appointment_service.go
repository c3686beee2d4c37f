package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"symptom-checker-be/internal/dto"
	"symptom-checker-be/internal/entity"
	"symptom-checker-be/internal/mapper"
	"symptom-checker-be/internal/pkg/apperror"
	"symptom-checker-be/internal/pkg/logger"
	"symptom-checker-be/internal/repository/contract"
	"symptom-checker-be/pkg/diagnosis"
	"symptom-checker-be/pkg/events"
	"symptom-checker-be/pkg/llm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type IAppointmentService interface {
	// Analyze runs one turn of the consultation. sessionId must already be
	// normalized; empty starts a new session.
	Analyze(ctx context.Context, userId string, isGuest bool, req *dto.AnalyzeRequest) (*dto.SessionResponse, error)
	GetHistory(ctx context.Context, userId string) ([]dto.HistoryItem, error)
	GetSession(ctx context.Context, userId string, sessionId string) (*dto.SessionResponse, error)
}

type AppointmentConfig struct {
	Timeout       time.Duration
	FormatRetries int
	MaxTokens     int // 0 leaves the provider default
}

type appointmentService struct {
	sessionRepo    contract.SessionRepository
	llmProvider    llm.LLMProvider
	eventPublisher IPublisherService
	logger         logger.ILogger
	mapper         *mapper.SessionMapper
	cfg            AppointmentConfig
}

func NewAppointmentService(
	sessionRepo contract.SessionRepository,
	llmProvider llm.LLMProvider,
	eventPublisher IPublisherService,
	sysLogger logger.ILogger,
	cfg AppointmentConfig,
) IAppointmentService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.FormatRetries < 0 {
		cfg.FormatRetries = 0
	}
	return &appointmentService{
		sessionRepo:    sessionRepo,
		llmProvider:    llmProvider,
		eventPublisher: eventPublisher,
		logger:         sysLogger,
		mapper:         mapper.NewSessionMapper(),
		cfg:            cfg,
	}
}

func (s *appointmentService) Analyze(ctx context.Context, userId string, isGuest bool, req *dto.AnalyzeRequest) (*dto.SessionResponse, error) {
	message := strings.TrimSpace(req.UserInput)
	if message == "" {
		return nil, apperror.Validation("userInput is required and must be a non-empty string")
	}
	if !isGuest && userId == "" {
		return nil, apperror.Unauthorized("Authentication required")
	}

	var prior *entity.Session
	if req.SessionId != "" {
		if isGuest {
			return nil, apperror.Forbidden("Guest sessions cannot be continued")
		}
		loaded, err := s.loadOwned(ctx, userId, req.SessionId)
		if err != nil {
			return nil, err
		}
		prior = loaded
	}

	result, err := s.runAnalysis(ctx, prior, message)
	if err != nil {
		return nil, err
	}

	ownerId := userId
	if isGuest {
		ownerId = ""
	}
	next := diagnosis.Merge(prior, ownerId, message, result)

	if isGuest {
		s.publish(ctx, events.New(events.GuestAnalysis, map[string]interface{}{
			"has_analysis": next.Analysis != nil,
		}))
		return s.mapper.ToResponse(next), nil
	}

	// The client may be gone by now; the commit still runs so the stored
	// state matches what the model answered.
	commitCtx := context.WithoutCancel(ctx)

	eventType := events.SessionUpdated
	if prior == nil {
		eventType = events.SessionCreated
		if err := s.sessionRepo.Create(commitCtx, next); err != nil {
			return nil, apperror.Internal("failed to create session", err)
		}
	} else {
		if err := s.sessionRepo.Update(commitCtx, next); err != nil {
			switch {
			case errors.Is(err, contract.ErrSessionVersionConflict):
				return nil, apperror.Conflict("Session was changed by another request. Please retry.")
			case errors.Is(err, contract.ErrSessionNotFound):
				return nil, apperror.NotFound("Session not found")
			}
			return nil, apperror.Internal("failed to update session", err)
		}
	}

	s.logger.Info("APPOINTMENT", "Session committed", map[string]interface{}{
		"session_id":   next.Id,
		"user_id":      userId,
		"version":      next.Version,
		"turns":        len(next.Conversation),
		"has_analysis": next.Analysis != nil,
	})
	s.publish(commitCtx, events.New(eventType, map[string]interface{}{
		"session_id": next.Id,
		"user_id":    userId,
		"version":    next.Version,
	}))

	return s.mapper.ToResponse(next), nil
}

func (s *appointmentService) GetHistory(ctx context.Context, userId string) ([]dto.HistoryItem, error) {
	if userId == "" {
		return nil, apperror.Unauthorized("Authentication required to view history")
	}

	summaries, err := s.sessionRepo.ListByUserId(ctx, userId)
	if err != nil {
		return nil, apperror.Internal("failed to list sessions", err)
	}
	return s.mapper.ToHistoryItems(summaries), nil
}

func (s *appointmentService) GetSession(ctx context.Context, userId string, sessionId string) (*dto.SessionResponse, error) {
	session, err := s.loadOwned(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}
	return s.mapper.ToResponse(session), nil
}

func (s *appointmentService) loadOwned(ctx context.Context, userId, sessionId string) (*entity.Session, error) {
	session, err := s.sessionRepo.FindById(ctx, sessionId)
	if err != nil {
		return nil, apperror.Internal("failed to load session", err)
	}
	if session == nil {
		return nil, apperror.NotFound("Session not found")
	}
	if session.UserId != userId {
		return nil, apperror.Forbidden("You do not have access to this session")
	}
	return session, nil
}

// runAnalysis calls the model under the configured timeout. Only malformed
// answers are re-prompted.
func (s *appointmentService) runAnalysis(ctx context.Context, prior *entity.Session, message string) (*diagnosis.Result, error) {
	prompt, err := diagnosis.BuildPrompt(prior, message)
	if err != nil {
		return nil, apperror.Internal("failed to build prompt", err)
	}
	history := []llm.Message{{Role: llm.RoleUser, Content: prompt}}
	opts := []llm.Option{llm.WithJSONMode(), llm.WithTemperature(0.4)}
	if s.cfg.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(s.cfg.MaxTokens))
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	callCtx, span := otel.Tracer("appointment").Start(callCtx, "diagnosis.analyze")
	defer span.End()
	span.SetAttributes(attribute.Bool("session.continued", prior != nil))

	for attempt := 0; ; attempt++ {
		span.SetAttributes(attribute.Int("llm.attempts", attempt+1))

		raw, err := s.llmProvider.Chat(callCtx, history, opts...)
		if err != nil && !errors.Is(err, llm.ErrEmptyResponse) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "upstream call failed")
			return nil, s.upstreamError(err)
		}

		result, parseErr := diagnosis.Parse(raw)
		if parseErr == nil {
			span.SetAttributes(attribute.Bool("analysis.sufficient", result.Analysis != nil))
			return result, nil
		}

		s.logger.Warn("APPOINTMENT", "Malformed analysis response", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   parseErr.Error(),
		})
		if attempt >= s.cfg.FormatRetries {
			span.SetStatus(codes.Error, "malformed upstream response")
			return nil, apperror.UpstreamFormat("Bad response from analysis service", parseErr)
		}
		history = diagnosis.CorrectionHistory(history, raw, parseErr)
	}
}

func (s *appointmentService) upstreamError(err error) error {
	s.logger.Error("APPOINTMENT", "Analysis service call failed", map[string]interface{}{
		"error": err.Error(),
	})

	if llm.IsTimeout(err) {
		return apperror.UpstreamTimeout("Analysis service timed out. Please try again.", err)
	}

	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperror.UpstreamAuth("Invalid or missing analysis API key. Please contact support.", err)
		case http.StatusTooManyRequests:
			return apperror.UpstreamQuota("Analysis service rate limit exceeded. Try again later.", err)
		case http.StatusNotFound:
			return apperror.UpstreamFailure("Analysis model not found or endpoint is incorrect. Please check your API configuration.", err)
		}
	}

	return apperror.UpstreamFailure("Error analyzing symptoms", err)
}

func (s *appointmentService) publish(ctx context.Context, evt events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("APPOINTMENT", "Failed to publish event", map[string]interface{}{
			"event_type": evt.EventType(),
			"error":      err.Error(),
		})
	}
}
