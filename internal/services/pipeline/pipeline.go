package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/kyamadi/ai-chat-service/internal/common"
	"github.com/kyamadi/ai-chat-service/internal/interfaces"
	"github.com/kyamadi/ai-chat-service/internal/models"
)

// Service runs the search-augmented response pipeline. Stages degrade
// independently: a failed search or extraction narrows the context but
// never fails the request, and only a failed generation prevents the
// assistant turn from being persisted.
type Service struct {
	config    *common.PipelineConfig
	logger    arbor.ILogger
	llm       interfaces.LLMService
	search    interfaces.WebSearchService
	extractor interfaces.ExtractorService
	storage   interfaces.StorageManager
	events    interfaces.EventService
}

// NewService creates the chat pipeline. The search service may be nil
// when no search provider is configured; every run is then degraded.
func NewService(
	config *common.PipelineConfig,
	llm interfaces.LLMService,
	search interfaces.WebSearchService,
	extractor interfaces.ExtractorService,
	storage interfaces.StorageManager,
	events interfaces.EventService,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:    config,
		logger:    logger,
		llm:       llm,
		search:    search,
		extractor: extractor,
		storage:   storage,
		events:    events,
	}
}

// Respond executes the full pipeline for a user prompt
func (s *Service) Respond(ctx context.Context, projectID, prompt string) (*interfaces.ChatResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}

	if _, err := s.storage.ProjectStorage().GetProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("project lookup failed: %w", err)
	}

	// History is captured before the new user turn is stored so the
	// prompt appears exactly once in the assembled conversation
	history, err := s.storage.MessageStorage().GetMessagesByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	userMessage := &models.Message{
		ID:        common.NewMessageID(),
		ProjectID: projectID,
		Role:      models.MessageRoleUser,
		Content:   prompt,
	}
	if err := s.storage.MessageStorage().CreateMessage(ctx, userMessage); err != nil {
		return nil, fmt.Errorf("failed to store user message: %w", err)
	}
	s.publishEvent(ctx, interfaces.EventMessageCreated, userMessage)

	startTime := time.Now()

	s.publishStage(ctx, projectID, interfaces.StageComposing, "")
	query := s.composeQuery(ctx, prompt)

	s.publishStage(ctx, projectID, interfaces.StageSearching, query)
	results := s.runSearch(ctx, query)

	s.publishStage(ctx, projectID, interfaces.StageExtracting, fmt.Sprintf("%d results", len(results)))
	articles := s.extractAndStore(ctx, results)

	degraded := true
	for _, a := range articles {
		if a.HasContent() {
			degraded = false
			break
		}
	}

	s.publishStage(ctx, projectID, interfaces.StageAssembling, "")
	messages := assembleMessages(history, articles, prompt, s.config.HistoryLimit, s.config.ContextCharCap)

	s.publishStage(ctx, projectID, interfaces.StageGenerating, "")
	answer, err := s.llm.Chat(ctx, messages)
	if err == nil {
		// Providers pad answers with leading and trailing whitespace
		answer = strings.TrimSpace(answer)
		if answer == "" {
			err = fmt.Errorf("model returned an empty answer")
		}
	}
	if err != nil {
		// The user sees a fixed message and nothing is persisted, so a
		// retry starts from a clean conversation state
		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("Response generation failed")
		s.publishStage(ctx, projectID, interfaces.StageDone, "generation failed")
		return &interfaces.ChatResult{
			UserMessage: userMessage,
			Answer:      fallbackAnswer,
			Articles:    articles,
			Degraded:    degraded,
		}, nil
	}

	s.publishStage(ctx, projectID, interfaces.StagePersisting, "")
	assistantMessage := &models.Message{
		ID:        common.NewMessageID(),
		ProjectID: projectID,
		Role:      models.MessageRoleAssistant,
		Content:   answer,
	}
	if err := s.storage.MessageStorage().CreateMessage(ctx, assistantMessage); err != nil {
		return nil, fmt.Errorf("failed to store assistant message: %w", err)
	}

	articleIDs := make([]string, 0, len(articles))
	for _, a := range articles {
		articleIDs = append(articleIDs, a.ID)
	}
	if err := s.storage.MessageStorage().LinkArticles(ctx, assistantMessage.ID, articleIDs); err != nil {
		return nil, fmt.Errorf("failed to link articles: %w", err)
	}
	assistantMessage.ArticleIDs = articleIDs
	s.publishEvent(ctx, interfaces.EventMessageCreated, assistantMessage)

	s.publishStage(ctx, projectID, interfaces.StageDone, "")
	s.logger.Info().
		Str("project_id", projectID).
		Int("articles", len(articles)).
		Bool("degraded", degraded).
		Dur("duration", time.Since(startTime)).
		Msg("Chat pipeline completed")

	return &interfaces.ChatResult{
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
		Answer:           answer,
		Articles:         articles,
		Degraded:         degraded,
	}, nil
}

// composeQuery asks the model for a focused search query. Any failure
// falls back to the raw prompt.
func (s *Service) composeQuery(ctx context.Context, prompt string) string {
	query, err := s.llm.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: composeQueryPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Query composition failed, using raw prompt")
		return prompt
	}

	query = strings.TrimSpace(strings.Trim(strings.TrimSpace(query), `"`))
	if query == "" {
		return prompt
	}
	// A multi-line reply means the model ignored the instruction
	if idx := strings.IndexByte(query, '\n'); idx >= 0 {
		query = strings.TrimSpace(query[:idx])
	}
	return query
}

// runSearch executes the web search; failures degrade to no results
func (s *Service) runSearch(ctx context.Context, query string) []interfaces.SearchResult {
	if s.search == nil {
		return nil
	}

	results, err := s.search.Search(ctx, query)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("query", query).
			Msg("Web search failed, continuing without results")
		return nil
	}
	return results
}

// extractAndStore runs the two-tier extractor over the results and
// upserts one article per result, preserving search order. Extraction
// failures still yield a stored article with title and URL so the
// response can cite the source.
func (s *Service) extractAndStore(ctx context.Context, results []interfaces.SearchResult) []*models.Article {
	if len(results) == 0 {
		return nil
	}

	extractions := s.extractor.ExtractAll(ctx, results)

	articles := make([]*models.Article, 0, len(extractions))
	for _, extraction := range extractions {
		if extraction.URL == "" {
			continue
		}
		stored, err := s.storage.ArticleStorage().UpsertArticle(ctx, &models.Article{
			ID:      common.NewArticleID(),
			Title:   extraction.Title,
			URL:     extraction.URL,
			Content: extraction.Content,
			Tier:    extraction.Tier,
		})
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("url", extraction.URL).
				Msg("Failed to store article")
			continue
		}
		articles = append(articles, stored)
	}
	return articles
}

func (s *Service) publishStage(ctx context.Context, projectID string, stage interfaces.PipelineStage, detail string) {
	s.publishEvent(ctx, interfaces.EventPipelineStage, interfaces.StageEvent{
		ProjectID: projectID,
		Stage:     stage,
		Detail:    detail,
	})
}

func (s *Service) publishEvent(ctx context.Context, eventType interfaces.EventType, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, interfaces.Event{Type: eventType, Payload: payload}); err != nil {
		s.logger.Warn().Err(err).Str("event", string(eventType)).Msg("Failed to publish event")
	}
}

var _ interfaces.ChatService = (*Service)(nil)
