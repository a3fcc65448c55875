package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/queue"
	"github.com/ternarybob/colligo/internal/services/embeddings"
	"github.com/ternarybob/colligo/internal/services/index"
	"github.com/ternarybob/colligo/internal/services/ingest"
	"github.com/ternarybob/colligo/internal/services/llm"
	"github.com/ternarybob/colligo/internal/services/processing"
	"github.com/ternarybob/colligo/internal/services/qa"
	"github.com/ternarybob/colligo/internal/services/questions"
	"github.com/ternarybob/colligo/internal/services/reports"
	"github.com/ternarybob/colligo/internal/services/router"
	"github.com/ternarybob/colligo/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	ctx            context.Context
	cancelCtx      context.CancelFunc
	StorageManager interfaces.StorageManager

	// Model access
	Provider *llm.ProviderFactory
	Embedder *llm.GeminiEmbedder

	// Pipeline services
	IngestService     *ingest.Service
	EmbeddingService  *embeddings.Service
	Index             *index.Index
	ReportService     *reports.Service
	QAService         *qa.Service
	QuestionLoader    *questions.Loader
	Router            *router.Router
	Worker            *queue.Worker
	ProcessingService *processing.Service
	Scheduler         *processing.Scheduler
}

// New creates and wires all application components
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	storageManager, err := badger.NewManager(&config.Storage.Badger, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	provider := llm.NewProviderFactory(config, logger)
	embedder := llm.NewGeminiEmbedder(config, provider, logger)

	embeddingService := embeddings.NewService(embedder, storageManager, logger)
	idx := index.NewIndex(storageManager.ExcerptStorage(), embedder, logger)
	processingService := processing.NewService(config, embeddingService, logger)

	app := &App{
		Config:         config,
		Logger:         logger,
		ctx:            ctx,
		cancelCtx:      cancel,
		StorageManager: storageManager,

		Provider: provider,
		Embedder: embedder,

		IngestService:     ingest.NewService(config, storageManager.ExcerptStorage(), logger),
		EmbeddingService:  embeddingService,
		Index:             idx,
		ReportService:     reports.NewService(config, storageManager, logger),
		QAService:         qa.NewService(config, storageManager, idx, embedder, logger),
		QuestionLoader:    questions.NewLoader(storageManager.QuestionStorage(), logger),
		Router:            router.NewRouter(config, provider, logger),
		Worker:            queue.NewWorker(config, storageManager.JobStorage(), provider, logger),
		ProcessingService: processingService,
		Scheduler:         processing.NewScheduler(processingService, logger),
	}

	logger.Info().
		Str("badger_path", config.Storage.Badger.Path).
		Str("default_provider", config.LLM.DefaultProvider).
		Msg("Application initialized")
	return app, nil
}

// Context returns the application lifetime context
func (a *App) Context() context.Context {
	return a.ctx
}

// Close releases all application resources
func (a *App) Close() error {
	a.cancelCtx()

	if err := a.Provider.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close provider clients")
	}

	if err := a.StorageManager.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
