package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"openbook-be/internal/config"
	"openbook-be/internal/controller"
	"openbook-be/internal/pkg/logger"
	"openbook-be/internal/repository/implementation"
	"openbook-be/internal/service"
	"openbook-be/pkg/ai/router"
	"openbook-be/pkg/blobstore"
	"openbook-be/pkg/cache"
	"openbook-be/pkg/clock"
	"openbook-be/pkg/database"
	"openbook-be/pkg/github"
	"openbook-be/pkg/knowledge"
	"openbook-be/pkg/llm/factory"

	pktNats "openbook-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)
	clk := clock.System()

	c := &Container{Logger: sysLogger}

	// 2. Storage
	store, err := newStore(cfg.Storage, c)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize storage: %v", err)
	}
	log.Printf("[INFO] Using Storage Driver: %s", cfg.Storage.Driver)

	profileRepo := implementation.NewProfileRepository(store, cfg.Storage.ProfilesPrefix)
	knowledgeBaseRepo := implementation.NewKnowledgeBaseRepository(store, cfg.Storage.KnowledgeBasePrefix, profileRepo)
	sessionRepo := implementation.NewChatSessionRepository(store, cfg.Storage.ChatSessionsPrefix, sysLogger)

	// 3. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		} else {
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	publisherService := service.NewPublisherService(cfg.App.EventTopic, pubSub)
	if natsPub != nil {
		c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.EventTopic, natsPub, sysLogger)
	} else {
		c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.EventTopic, nil, sysLogger)
	}

	// 4. Services
	llmProvider, err := factory.NewLLMProvider(cfg.Ai)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	githubClient := github.NewClient(cfg.GitHub.BaseURL, cfg.GitHub.AccessToken, cfg.GitHub.UserAgent, sysLogger)
	generator := knowledge.NewGenerator(llmProvider, clk, sysLogger, cfg.Cache.KnowledgeConcurrency)

	coordinator := cache.NewCoordinator(
		profileRepo,
		knowledgeBaseRepo,
		githubClient,
		generator,
		publisherService,
		clk,
		sysLogger,
		time.Duration(cfg.Cache.ProfileMaxAgeHours)*time.Hour,
	)

	chatService := service.NewChatService(
		sessionRepo,
		coordinator,
		router.NewRouter(llmProvider, sysLogger),
		llmProvider,
		publisherService,
		clk,
		sysLogger,
		llmLogger,
		cfg.Cache.HistoryWindow,
	)

	// 5. Controllers
	c.ChatController = controller.NewChatController(chatService)

	return c
}

// Close releases external connections opened by NewContainer.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newStore(cfg config.StorageConfig, c *Container) (blobstore.Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return blobstore.NewMemoryStore(), nil

	case "redis":
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		return blobstore.NewRedisStore(rdb, "openbook"), nil

	case "postgres":
		if cfg.DatabaseConnection == "" {
			return nil, fmt.Errorf("DB_CONNECTION_STRING is required for the postgres driver")
		}
		db, err := database.NewGormDBFromDSN(cfg.DatabaseConnection)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			c.closers = append(c.closers, func() { _ = sqlDB.Close() })
		}
		return implementation.NewGormObjectStore(db), nil

	case "gcs":
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("GCS_BUCKET is required for the gcs driver")
		}
		store, err := blobstore.NewGCSStore(context.Background(), cfg.GCSBucket, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() { _ = store.Close() })
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
