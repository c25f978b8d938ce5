package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/kyamadi/ai-chat-service/internal/interfaces"
	"github.com/kyamadi/ai-chat-service/internal/models"
	"github.com/kyamadi/ai-chat-service/internal/services/export"
)

// ChatHandler handles conversation history and prompt submission
type ChatHandler struct {
	chat     interfaces.ChatService
	projects *ProjectHandler
	storage  interfaces.StorageManager
	logger   arbor.ILogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat interfaces.ChatService, projects *ProjectHandler, storage interfaces.StorageManager, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		chat:     chat,
		projects: projects,
		storage:  storage,
		logger:   logger,
	}
}

type chatRequest struct {
	Content string `json:"content"`
}

func articleResponse(a *models.Article) map[string]interface{} {
	return map[string]interface{}{
		"id":    a.ID,
		"title": a.Title,
		"url":   a.URL,
	}
}

// HistoryHandler handles GET /api/projects/{id}/messages. Each turn
// carries the title/url of its cited sources.
func (h *ChatHandler) HistoryHandler(w http.ResponseWriter, r *http.Request, projectID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, ok := h.projects.getOwnedProject(w, r, projectID); !ok {
		return
	}

	messages, err := h.storage.MessageStorage().GetMessagesByProject(r.Context(), projectID)
	if err != nil {
		h.logger.Error().Err(err).Str("project_id", projectID).Msg("Failed to load chat history")
		writeError(w, http.StatusInternalServerError, "Failed to load chat history")
		return
	}

	history := make([]map[string]interface{}, 0, len(messages))
	for _, message := range messages {
		entry := map[string]interface{}{
			"id":         message.ID,
			"role":       message.Role,
			"content":    message.Content,
			"created_at": message.CreatedAt,
		}
		if len(message.ArticleIDs) > 0 {
			articles, err := h.storage.ArticleStorage().GetArticles(r.Context(), message.ArticleIDs)
			if err == nil {
				cited := make([]map[string]interface{}, 0, len(articles))
				for _, a := range articles {
					cited = append(cited, articleResponse(a))
				}
				entry["articles"] = cited
			}
		}
		history = append(history, entry)
	}

	writeJSON(w, http.StatusOK, history)
}

// PromptHandler handles POST /api/projects/{id}/chat. The pipeline runs
// synchronously; stage progress streams separately over the websocket.
func (h *ChatHandler) PromptHandler(w http.ResponseWriter, r *http.Request, projectID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, ok := h.projects.getOwnedProject(w, r, projectID); !ok {
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Prompt content is required")
		return
	}

	result, err := h.chat.Respond(r.Context(), projectID, req.Content)
	if err != nil {
		h.logger.Error().Err(err).Str("project_id", projectID).Msg("Chat pipeline failed")
		writeError(w, http.StatusInternalServerError, "Failed to process prompt")
		return
	}

	articles := make([]map[string]interface{}, 0, len(result.Articles))
	for _, a := range result.Articles {
		articles = append(articles, articleResponse(a))
	}

	answerHTML, err := export.RenderMarkdownHTML(result.Answer)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to render answer HTML")
		answerHTML = ""
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"answer":      result.Answer,
		"answer_html": answerHTML,
		"articles":    articles,
		"degraded":    result.Degraded,
		"persisted":   result.AssistantMessage != nil,
	})
}
