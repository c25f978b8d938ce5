package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/kyamadi/ai-chat-service/internal/common"
	"github.com/kyamadi/ai-chat-service/internal/handlers"
	"github.com/kyamadi/ai-chat-service/internal/interfaces"
	"github.com/kyamadi/ai-chat-service/internal/services/auth"
	"github.com/kyamadi/ai-chat-service/internal/services/events"
	"github.com/kyamadi/ai-chat-service/internal/services/export"
	"github.com/kyamadi/ai-chat-service/internal/services/extract"
	"github.com/kyamadi/ai-chat-service/internal/services/llm"
	"github.com/kyamadi/ai-chat-service/internal/services/maintenance"
	"github.com/kyamadi/ai-chat-service/internal/services/pipeline"
	"github.com/kyamadi/ai-chat-service/internal/services/websearch"
	badgerstorage "github.com/kyamadi/ai-chat-service/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Core services
	EventService interfaces.EventService
	LLMService   interfaces.LLMService
	SearchSvc    interfaces.WebSearchService
	Renderer     interfaces.PageRenderer
	Extractor    interfaces.ExtractorService
	ChatService  interfaces.ChatService
	Auth         *auth.Service
	ExportSvc    *export.Service
	Scheduler    *maintenance.Scheduler

	// HTTP handlers
	APIHandler     *handlers.APIHandler
	AuthHandler    *handlers.AuthHandler
	ProjectHandler *handlers.ProjectHandler
	ChatHandler    *handlers.ChatHandler
	ExportHandler  *handlers.ExportHandler
	WSHandler      *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app.EventService = events.NewService(app.Logger)
	app.WSHandler = handlers.NewWebSocketHandler(app.EventService, &cfg.WebSocket, app.Logger)

	if err := app.initServices(); err != nil {
		app.closeQuietly()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("llm_provider", app.LLMService.Provider()).
		Bool("search_enabled", app.SearchSvc != nil).
		Bool("rendering_enabled", app.Renderer != nil).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := badgerstorage.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes all business services in dependency order
func (a *App) initServices() error {
	var err error

	a.LLMService, err = llm.NewLLMService(a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM service: %w", err)
	}
	if err := a.LLMService.HealthCheck(context.Background()); err != nil {
		// Generation failures degrade to a canned answer at request
		// time, so a failed probe is not fatal
		a.Logger.Warn().Err(err).Msg("LLM health check failed - responses may degrade")
	} else {
		a.Logger.Debug().Str("provider", a.LLMService.Provider()).Msg("LLM service initialized")
	}

	if a.Config.Search.APIKey != "" && a.Config.Search.EngineID != "" {
		a.SearchSvc, err = websearch.NewGoogleService(&a.Config.Search, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize search service: %w", err)
		}
		a.Logger.Debug().Msg("Web search service initialized")
	} else {
		a.Logger.Warn().Msg("Search API key not configured - all responses will be degraded")
	}

	if !a.Config.Extractor.DisableRendering && a.Config.Extractor.RenderInstances > 0 {
		renderer, err := extract.NewChromeRenderer(&a.Config.Extractor, a.Logger)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("Browser renderer unavailable - extraction limited to static fetch")
		} else {
			a.Renderer = renderer
		}
	}
	a.Extractor = extract.NewService(&a.Config.Extractor, a.Renderer, a.Logger)

	a.ChatService = pipeline.NewService(
		&a.Config.Pipeline,
		a.LLMService,
		a.SearchSvc,
		a.Extractor,
		a.StorageManager,
		a.EventService,
		a.Logger,
	)

	a.Auth, err = auth.NewService(&a.Config.Auth, a.StorageManager.UserStorage(), a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize auth service: %w", err)
	}

	a.ExportSvc = export.NewService(a.StorageManager, a.Logger)

	a.Scheduler = maintenance.NewScheduler(&a.Config.Maintenance, a.StorageManager, a.Logger)
	if err := a.Scheduler.Start(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to start maintenance scheduler")
	}

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.StorageManager, a.LLMService, a.Logger)
	a.AuthHandler = handlers.NewAuthHandler(a.Auth, a.Logger)
	a.ProjectHandler = handlers.NewProjectHandler(a.StorageManager, a.EventService, a.Logger)
	a.ChatHandler = handlers.NewChatHandler(a.ChatService, a.ProjectHandler, a.StorageManager, a.Logger)
	a.ExportHandler = handlers.NewExportHandler(a.ExportSvc, a.ProjectHandler, a.Logger)
}

func (a *App) closeQuietly() {
	_ = a.Close()
}

// Close closes all application resources
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}

	// Extractor owns the renderer and closes it
	if a.Extractor != nil {
		if err := a.Extractor.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close extractor")
		}
	}

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
