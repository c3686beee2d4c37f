package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"symptom-checker-be/internal/config"
	"symptom-checker-be/internal/controller"
	"symptom-checker-be/internal/pkg/logger"
	"symptom-checker-be/internal/pkg/serverutils"
	"symptom-checker-be/internal/repository/contract"
	"symptom-checker-be/internal/repository/implementation"
	"symptom-checker-be/internal/repository/memory"
	"symptom-checker-be/internal/repository/unitofwork"
	"symptom-checker-be/internal/service"
	"symptom-checker-be/pkg/llm"
	"symptom-checker-be/pkg/llm/factory"
	pktNats "symptom-checker-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

const eventTopic = "symptom_checker.events"

type Container struct {
	// Controllers
	AuthController        controller.IAuthController
	AppointmentController controller.IAppointmentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

type options struct {
	llmProvider llm.LLMProvider
	sysLogger   logger.ILogger
	auditLogger logger.ILogger
	quotaOpts   []service.QuotaOption
}

type Option func(*options)

// WithLLMProvider replaces the provider built from config.
func WithLLMProvider(p llm.LLMProvider) Option {
	return func(o *options) { o.llmProvider = p }
}

// WithLoggers replaces the file-backed system and audit loggers.
func WithLoggers(sysLogger, auditLogger logger.ILogger) Option {
	return func(o *options) {
		o.sysLogger = sysLogger
		o.auditLogger = auditLogger
	}
}

func WithQuotaOptions(opts ...service.QuotaOption) Option {
	return func(o *options) { o.quotaOpts = append(o.quotaOpts, opts...) }
}

// NewContainer wires stores, providers, services and controllers. mongoDB may
// be nil, in which case sessions live in process memory.
func NewContainer(db *gorm.DB, mongoDB *mongo.Database, cfg *config.Config, opts ...Option) (*Container, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := o.sysLogger
	if sysLogger == nil {
		sysLogger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	}
	auditLogger := o.auditLogger
	if auditLogger == nil {
		auditLogger = logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
	}

	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	publisherService := service.NewPublisherService(eventTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, eventTopic, auditLogger, sysLogger, forwarder)

	// 3. Stores
	var sessionRepo contract.SessionRepository
	if mongoDB != nil && cfg.Database.SessionStore != "memory" {
		sessionRepo = implementation.NewSessionRepository(mongoDB)
		log.Printf("[INFO] Using Session Store: MONGO (%s)", mongoDB.Name())
	} else {
		sessionRepo = memory.NewSessionRepository()
		log.Printf("[INFO] Using Session Store: MEMORY")
	}

	guestRepo := newGuestUsageRepository(cfg, c)

	// 4. External analysis capability
	llmProvider := o.llmProvider
	if llmProvider == nil {
		p, err := factory.NewLLMProvider(factory.ProviderConfig{
			Provider:     cfg.Ai.LLMProvider,
			Model:        cfg.Ai.LLMModel,
			GeminiAPIKey: cfg.Keys.GoogleGemini,
			OllamaURL:    cfg.Ai.OllamaBaseURL,
			Timeout:      cfg.Ai.RequestTimeout,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init LLM provider: %w", err)
		}
		llmProvider = p
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	// 5. Services
	sessionStore := session.New(session.Config{
		Expiration:     cfg.Quota.GuestSessionTTL,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	jwtAuth := serverutils.NewJwtAuth(cfg.Auth.JwtSecret, sessionStore)

	authService := service.NewAuthService(uowFactory, jwtAuth, cfg.Auth.TokenExpiry, publisherService, sysLogger)
	quotaService := service.NewQuotaService(uowFactory, guestRepo, cfg.Quota.DailyRequestLimit, sysLogger, o.quotaOpts...)
	appointmentService := service.NewAppointmentService(sessionRepo, llmProvider, publisherService, sysLogger, service.AppointmentConfig{
		Timeout:       cfg.Ai.RequestTimeout,
		FormatRetries: cfg.Ai.FormatRetries,
		MaxTokens:     cfg.Ai.MaxTokens,
	})

	// 6. Controllers
	c.AuthController = controller.NewAuthController(authService, jwtAuth)
	c.AppointmentController = controller.NewAppointmentController(appointmentService, jwtAuth, quotaService)

	return c, nil
}

func newGuestUsageRepository(cfg *config.Config, c *Container) contract.GuestUsageRepository {
	if cfg.App.RedisURL == "" {
		return memory.NewGuestUsageRepository(cfg.Quota.GuestSessionTTL)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Guest usage kept in memory", err)
		_ = rdb.Close()
		return memory.NewGuestUsageRepository(cfg.Quota.GuestSessionTTL)
	}

	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return implementation.NewGuestUsageRepository(rdb, cfg.Quota.GuestSessionTTL)
}

// Close releases connections opened by NewContainer.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
