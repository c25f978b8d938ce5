package handlers

import (
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/kyamadi/ai-chat-service/internal/services/export"
)

// ExportHandler serves project transcript downloads
type ExportHandler struct {
	export   *export.Service
	projects *ProjectHandler
	logger   arbor.ILogger
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *export.Service, projects *ProjectHandler, logger arbor.ILogger) *ExportHandler {
	return &ExportHandler{
		export:   exportService,
		projects: projects,
		logger:   logger,
	}
}

// ExportPDFHandler handles GET /api/projects/{id}/export
func (h *ExportHandler) ExportPDFHandler(w http.ResponseWriter, r *http.Request, projectID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	project, ok := h.projects.getOwnedProject(w, r, projectID)
	if !ok {
		return
	}

	pdf, err := h.export.ExportProjectPDF(r.Context(), projectID)
	if err != nil {
		h.logger.Error().Err(err).Str("project_id", projectID).Msg("Failed to export project")
		writeError(w, http.StatusInternalServerError, "Failed to export project")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", project.Name+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
