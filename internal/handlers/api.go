package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/kyamadi/ai-chat-service/internal/common"
	"github.com/kyamadi/ai-chat-service/internal/interfaces"
)

type contextKey string

// userIDKey carries the authenticated user ID through the request context
const userIDKey contextKey = "user_id"

// WithUserID returns a context carrying the authenticated user ID
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext extracts the authenticated user ID
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// APIHandler serves version and health endpoints
type APIHandler struct {
	storage interfaces.StorageManager
	llm     interfaces.LLMService
	logger  arbor.ILogger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(storage interfaces.StorageManager, llm interfaces.LLMService, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		storage: storage,
		llm:     llm,
		logger:  logger,
	}
}

// VersionHandler handles GET /api/version
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version": common.GetVersion(),
		"build":   common.Build,
	})
}

// HealthHandler handles GET /api/health. Storage must answer; the LLM
// provider is reported but does not fail the endpoint since degraded
// chat still works.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, err := h.storage.UserStorage().CountUsers(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Storage health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"healthy": false,
			"error":   "storage unavailable",
		})
		return
	}

	llmHealthy := true
	if err := h.llm.HealthCheck(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("LLM health check failed")
		llmHealthy = false
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"healthy":      true,
		"llm_healthy":  llmHealthy,
		"llm_provider": h.llm.Provider(),
	})
}
