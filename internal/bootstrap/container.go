package bootstrap

import (
	"context"
	"log"

	"github.com/mustafa-mbari/aiwmsa/internal/config"
	"github.com/mustafa-mbari/aiwmsa/internal/controller"
	"github.com/mustafa-mbari/aiwmsa/internal/pkg/logger"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/implementation"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/unitofwork"
	"github.com/mustafa-mbari/aiwmsa/internal/service"
	"github.com/mustafa-mbari/aiwmsa/internal/websocket"
	"github.com/mustafa-mbari/aiwmsa/pkg/analytics"
	"github.com/mustafa-mbari/aiwmsa/pkg/cache"
	"github.com/mustafa-mbari/aiwmsa/pkg/embedding"
	"github.com/mustafa-mbari/aiwmsa/pkg/llm/factory"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/answer"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/rerank"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/search"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/suggest"

	pktNats "github.com/mustafa-mbari/aiwmsa/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SearchController    controller.ISearchController
	DocumentController  controller.IDocumentController
	FeedbackController  controller.IFeedbackController
	AnalyticsController controller.IAnalyticsController

	// WebSockets
	AnswerStreamHandler *websocket.AnswerStreamHandler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	responseCache := cache.NewResponseCache(rdb, cfg.Search.CacheTTL)

	// 3. AI Providers
	usageSink := service.NewUsageSink(uowFactory, cfg.Ai, sysLogger)

	rawEmbedder, err := factory.NewEmbeddingProvider(cfg, usageSink)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	// Two-tier embedding cache: in-process fast tier over the persistent table.
	embeddingCacheRepo := implementation.NewEmbeddingCacheRepository(db)
	embeddingProvider := embedding.NewCachedProvider(rawEmbedder, embeddingCacheRepo, cfg.Search.CacheTTL)

	llmProvider, err := factory.NewLLMProvider(cfg, usageSink)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3.5 Retrieval Pipeline
	reranker := rerank.NewEngine(cfg.Search, sysLogger)
	suggester := suggest.NewSuggester(implementation.NewSuggestionRepository(db), cfg.Search.SuggestionLimit)
	trending := analytics.NewTrending(implementation.NewSearchQueryRepository(db), cfg.Search.TrendDecayLambda)
	synthesizer := answer.NewSynthesizer(llmProvider, cfg.Search.ConfidenceScale, 5)

	orchestrator := search.NewOrchestrator(
		uowFactory,
		embeddingProvider,
		reranker,
		suggester,
		responseCache,
		cfg.Search,
		sysLogger,
	)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Keys.EmbedChunkTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedChunkTopic,
		uowFactory,
		embeddingProvider,
		natsPub,
	)

	answerService := service.NewAnswerService(
		uowFactory,
		orchestrator,
		synthesizer,
		suggester,
		llmProvider,
		natsPub,
		cfg.Search,
		cfg.Ai,
		sysLogger,
	)
	searchService := service.NewSearchService(orchestrator, suggester, answerService, natsPub)
	documentService := service.NewDocumentService(uowFactory, publisherService, responseCache)
	feedbackService := service.NewFeedbackService(uowFactory, natsPub)
	analyticsService := service.NewAnalyticsService(uowFactory, trending)

	// WebSocket streaming uses its own log file to keep the request log readable.
	wsLogger := logger.NewIsolatedLogger("logs/answer_stream.log")
	answerStreamHandler := websocket.NewAnswerStreamHandler(answerService, wsLogger)

	// 5. Controllers
	return &Container{
		SearchController:    controller.NewSearchController(searchService, answerService),
		DocumentController:  controller.NewDocumentController(documentService),
		FeedbackController:  controller.NewFeedbackController(feedbackService),
		AnalyticsController: controller.NewAnalyticsController(analyticsService),

		AnswerStreamHandler: answerStreamHandler,

		ConsumerService: consumerService,
	}
}
