package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/kyamadi/ai-chat-service/internal/common"
	"github.com/kyamadi/ai-chat-service/internal/interfaces"
	"github.com/kyamadi/ai-chat-service/internal/services/extract"
	"github.com/kyamadi/ai-chat-service/internal/services/llm"
	"github.com/kyamadi/ai-chat-service/internal/services/pipeline"
	"github.com/kyamadi/ai-chat-service/internal/services/websearch"
	badgerstorage "github.com/kyamadi/ai-chat-service/internal/storage/badger"
)

func main() {
	configPath := os.Getenv("AICHAT_CONFIG")
	if configPath == "" {
		configPath = "ai-chat-service.toml"
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	storageManager, err := badgerstorage.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storageManager.Close()

	llmService, err := llm.NewLLMService(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize LLM service")
	}
	defer llmService.Close()

	var searchService *websearch.GoogleService
	if config.Search.APIKey != "" && config.Search.EngineID != "" {
		searchService, err = websearch.NewGoogleService(&config.Search, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize search service")
		}
	}

	// Static extraction only; a headless browser pool does not belong in
	// a stdio subprocess
	extractor := extract.NewService(&config.Extractor, nil, logger)
	defer extractor.Close()

	chatService := pipeline.NewService(
		&config.Pipeline,
		llmService,
		searchServiceOrNil(searchService),
		extractor,
		storageManager,
		nil,
		logger,
	)

	mcpServer := server.NewMCPServer(
		"ai-chat-service",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createRecommendServiceTool(), handleRecommendService(chatService, storageManager, logger))
	mcpServer.AddTool(createListProjectsTool(), handleListProjects(storageManager, logger))
	mcpServer.AddTool(createGetHistoryTool(), handleGetHistory(storageManager, logger))
	mcpServer.AddTool(createGetArticleTool(), handleGetArticle(storageManager, logger))

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}

// searchServiceOrNil avoids handing the pipeline a typed-nil interface
func searchServiceOrNil(s *websearch.GoogleService) interfaces.WebSearchService {
	if s == nil {
		return nil
	}
	return s
}
