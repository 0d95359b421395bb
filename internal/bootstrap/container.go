package bootstrap

import (
	"context"
	"math/rand"
	"time"

	"store-locator-be/internal/config"
	"store-locator-be/internal/controller"
	"store-locator-be/internal/pkg/logger"
	"store-locator-be/internal/repository/contract"
	"store-locator-be/internal/repository/memory"
	"store-locator-be/internal/repository/redisstore"
	"store-locator-be/internal/repository/unitofwork"
	"store-locator-be/internal/service"
	"store-locator-be/pkg/agent/intent"
	"store-locator-be/pkg/agent/response"
	"store-locator-be/pkg/agent/session"
	"store-locator-be/pkg/discovery"
	"store-locator-be/pkg/enrich"
	"store-locator-be/pkg/events"
	"store-locator-be/pkg/geo/overpass"
	"store-locator-be/pkg/llm/factory"
	"store-locator-be/pkg/metadata"
	pktNats "store-locator-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	HealthController  controller.IHealthController
	SearchController  controller.ISearchController
	ChatController    controller.IChatController
	HistoryController controller.IHistoryController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	closers []func()
}

// NewContainer wires every component. db may be nil, in which case
// interaction events are only logged.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	ctx := context.Background()
	c := &Container{}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)
	c.Logger = sysLogger
	c.closers = append(c.closers, func() { _ = llmLogger.Sync(); _ = sysLogger.Sync() })

	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var sink events.Sink
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("EVENTS", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			sink = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}
	publisherService := service.NewPublisherService(pubSub, cfg.App.EventTopic, events.NewPublisher(sink, sysLogger), sysLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.EventTopic, uowFactory, sysLogger)

	// 3. Session storage
	sessionStore := newSessionStore(ctx, cfg, sysLogger, c)
	sessions := session.NewManager(sessionStore)

	// 4. Discovery
	fetcher := overpass.NewFetcher(cfg.Geo.Mirrors, cfg.Geo.RequestTimeout, sysLogger)
	synthesizer := metadata.NewSynthesizer(rand.NewSource(time.Now().UnixNano()))
	enricher := enrich.NewEnricher(factory.NewEnrichmentProvider(ctx, cfg.Ai, llmLogger), cfg.Ai.EnrichTimeout, llmLogger)
	pipeline := discovery.NewPipeline(fetcher, synthesizer, enricher, discovery.Options{
		Radius:        cfg.Geo.Radius,
		MaxResults:    cfg.Geo.MaxResults,
		KeywordRadius: cfg.Geo.KeywordRadius,
		KeywordLimit:  cfg.Geo.KeywordLimit,
		EnrichLimit:   cfg.Geo.EnrichLimit,
		CacheTTL:      cfg.Geo.CacheTTL,
	}, sysLogger)

	// 5. Agent
	chain := factory.NewAgentChain(ctx, cfg.Ai, llmLogger)
	classifier := intent.NewClassifier(chain, llmLogger)
	generator := response.NewGenerator(chain, llmLogger)

	// 6. Services
	searchService := service.NewSearchService(pipeline, sessions, publisherService, sysLogger)
	chatService := service.NewChatService(pipeline, classifier, generator, sessions, publisherService, sysLogger)
	historyService := service.NewHistoryService(uowFactory)

	// 7. Controllers
	c.HealthController = controller.NewHealthController()
	c.SearchController = controller.NewSearchController(searchService)
	c.ChatController = controller.NewChatController(chatService)
	c.HistoryController = controller.NewHistoryController(historyService)

	sysLogger.Info("BOOT", "Container ready", map[string]interface{}{
		"session_store":   cfg.App.SessionStore,
		"mirrors":         len(cfg.Geo.Mirrors),
		"llm_providers":   chain.Names(),
		"enrichment":      enricher.Enabled(),
		"interaction_log": uowFactory != nil,
		"nats":            sink != nil,
	})

	return c
}

func newSessionStore(ctx context.Context, cfg *config.Config, log logger.ILogger, c *Container) contract.SessionStore {
	if cfg.App.SessionStore != "redis" {
		return memory.NewSessionRepository(cfg.App.SessionTTL)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Warn("SESSION", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Warn("SESSION", "Failed to connect to Redis, falling back to memory sessions", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return memory.NewSessionRepository(cfg.App.SessionTTL)
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return redisstore.NewSessionRepository(rdb, cfg.App.SessionTTL)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
