package bootstrap

import (
	"context"
	"log"
	"time"

	"policy-intel-be/internal/config"
	"policy-intel-be/internal/controller"
	"policy-intel-be/internal/handler"
	"policy-intel-be/internal/pkg/logger"
	"policy-intel-be/internal/pkg/mailer"
	"policy-intel-be/internal/repository/memory"
	"policy-intel-be/internal/repository/unitofwork"
	"policy-intel-be/internal/service"
	"policy-intel-be/internal/websocket"
	"policy-intel-be/pkg/chat"
	"policy-intel-be/pkg/chunker"
	"policy-intel-be/pkg/classify"
	"policy-intel-be/pkg/embedding"
	"policy-intel-be/pkg/extraction"
	"policy-intel-be/pkg/llm/factory"
	"policy-intel-be/pkg/pdf"
	"policy-intel-be/pkg/pipeline"
	"policy-intel-be/pkg/retrieval"

	pktNats "policy-intel-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const pipelineTopic = "document.process"

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	ChatController     controller.IChatController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	zapLogger := sysLogger.Raw()

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.App.ClientURL,
	)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "openai" {
		embeddingProvider = embedding.NewOpenAIProvider(
			cfg.Ai.OpenAIKey,
			cfg.Ai.EmbeddingModel,
			cfg.Ai.EmbeddingDimension,
		)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
			cfg.Ai.EmbeddingDimension,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

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

	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Pipeline
	guard := memory.NewProcessingGuard()

	classifier := classify.NewClassifier(llmProvider, classify.Options{
		SamplePages: cfg.Pipeline.ClassifySamplePages,
	})
	fieldExtractor := extraction.NewExtractor(llmProvider, extraction.Options{
		Strategy: cfg.Pipeline.ExtractionStrategy,
	})
	batcher := embedding.NewBatcher(embeddingProvider, embedding.BatcherOptions{
		BatchSize:   cfg.Pipeline.EmbedBatchSize,
		Concurrency: cfg.Pipeline.EmbedConcurrency,
		MaxRetries:  cfg.Pipeline.EmbedMaxRetries,
		BaseBackoff: 500 * time.Millisecond,
	})

	notifier := service.NewEventNotifier(natsPub, sysLogger)

	runner := pipeline.NewRunner(
		uowFactory,
		guard,
		pdf.NewExtractor(),
		chunker.Options{
			TargetTokens:  cfg.Pipeline.ChunkTargetTokens,
			MaxTokens:     cfg.Pipeline.ChunkMaxTokens,
			OverlapTokens: cfg.Pipeline.ChunkOverlapTokens,
		},
		classifier,
		fieldExtractor,
		batcher,
		notifier,
		zapLogger,
	)

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, pipelineTopic)
	consumerService := service.NewConsumerService(pubSub, pipelineTopic, runner, zapLogger)

	documentService := service.NewDocumentService(uowFactory, publisherService, guard, cfg.App.UploadDir)

	retriever := retrieval.NewRetriever(embeddingProvider, zapLogger)
	orchestrator := chat.NewOrchestrator(
		retriever,
		llmProvider,
		retrieval.Config{
			DBThreshold:     0.0,
			SimilarityFloor: cfg.Chat.SimilarityFloor,
			TopK:            cfg.Chat.TopK,
		},
		cfg.Chat.MaxTokens,
		zapLogger,
	)
	chatService := service.NewChatService(uowFactory, orchestrator, zapLogger)

	// 7. Notification system
	notifService := service.NewNotificationService(natsSub, wsHub, emailService, cfg.SMTP.ReviewInbox, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}

	notifHandler := handler.NewNotificationHandler(wsHub, cfg.App.JWTSecret, wsLogger)

	return &Container{
		DocumentController:  controller.NewDocumentController(documentService),
		ChatController:      controller.NewChatController(chatService),
		ConsumerService:     consumerService,
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}
