package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/kyamadi/ai-chat-service/internal/interfaces"
	"github.com/kyamadi/ai-chat-service/internal/models"
	badgerstorage "github.com/kyamadi/ai-chat-service/internal/storage/badger"

	"github.com/kyamadi/ai-chat-service/internal/common"
)

// ProjectHandler handles project CRUD and dashboard stats
type ProjectHandler struct {
	storage interfaces.StorageManager
	events  interfaces.EventService
	logger  arbor.ILogger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(storage interfaces.StorageManager, events interfaces.EventService, logger arbor.ILogger) *ProjectHandler {
	return &ProjectHandler{
		storage: storage,
		events:  events,
		logger:  logger,
	}
}

type projectRequest struct {
	Name string `json:"name"`
}

func projectResponse(p *models.Project) map[string]interface{} {
	return map[string]interface{}{
		"id":         p.ID,
		"name":       p.Name,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	}
}

// ProjectsHandler handles GET (list) and POST (create) on /api/projects
func (h *ProjectHandler) ProjectsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		projects, err := h.storage.ProjectStorage().GetProjectsByUser(r.Context(), userID)
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to list projects")
			writeError(w, http.StatusInternalServerError, "Failed to list projects")
			return
		}
		list := make([]map[string]interface{}, 0, len(projects))
		for _, p := range projects {
			list = append(list, projectResponse(p))
		}
		writeJSON(w, http.StatusOK, list)

	case http.MethodPost:
		var req projectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "Project name is required")
			return
		}

		project := &models.Project{
			ID:     common.NewProjectID(),
			UserID: userID,
			Name:   strings.TrimSpace(req.Name),
		}
		if err := h.storage.ProjectStorage().CreateProject(r.Context(), project); err != nil {
			h.logger.Error().Err(err).Msg("Failed to create project")
			writeError(w, http.StatusInternalServerError, "Failed to create project")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"project": projectResponse(project),
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// getOwnedProject loads a project and verifies the requesting user owns
// it. Missing and foreign projects are indistinguishable to the caller.
func (h *ProjectHandler) getOwnedProject(w http.ResponseWriter, r *http.Request, projectID string) (*models.Project, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}

	project, err := h.storage.ProjectStorage().GetProject(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, badgerstorage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return nil, false
		}
		h.logger.Error().Err(err).Str("project_id", projectID).Msg("Failed to load project")
		writeError(w, http.StatusInternalServerError, "Failed to load project")
		return nil, false
	}
	if project.UserID != userID {
		writeError(w, http.StatusNotFound, "Project not found")
		return nil, false
	}
	return project, true
}

// ProjectHandler handles GET/PUT/DELETE on /api/projects/{id}
func (h *ProjectHandler) ProjectHandler(w http.ResponseWriter, r *http.Request, projectID string) {
	project, ok := h.getOwnedProject(w, r, projectID)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, projectResponse(project))

	case http.MethodPut:
		var req projectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "Project name is required")
			return
		}

		project.Name = strings.TrimSpace(req.Name)
		if err := h.storage.ProjectStorage().UpdateProject(r.Context(), project); err != nil {
			h.logger.Error().Err(err).Msg("Failed to update project")
			writeError(w, http.StatusInternalServerError, "Failed to update project")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"project": projectResponse(project),
		})

	case http.MethodDelete:
		if err := h.storage.ProjectStorage().DeleteProject(r.Context(), project.ID); err != nil {
			h.logger.Error().Err(err).Msg("Failed to delete project")
			writeError(w, http.StatusInternalServerError, "Failed to delete project")
			return
		}
		if h.events != nil {
			_ = h.events.Publish(r.Context(), interfaces.Event{
				Type:    interfaces.EventProjectDeleted,
				Payload: project.ID,
			})
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// DashboardHandler handles GET /api/dashboard with per-user stats
func (h *ProjectHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	projects, err := h.storage.ProjectStorage().GetProjectsByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load dashboard projects")
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	messageCount := 0
	summaries := make([]map[string]interface{}, 0, len(projects))
	for _, p := range projects {
		messages, err := h.storage.MessageStorage().GetMessagesByProject(r.Context(), p.ID)
		if err != nil {
			h.logger.Warn().Err(err).Str("project_id", p.ID).Msg("Failed to count project messages")
			continue
		}
		messageCount += len(messages)
		summaries = append(summaries, map[string]interface{}{
			"id":            p.ID,
			"name":          p.Name,
			"message_count": len(messages),
			"updated_at":    p.UpdatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"project_count": len(projects),
		"message_count": messageCount,
		"projects":      summaries,
	})
}
