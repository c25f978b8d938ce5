package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (stage progress, no auth on upgrade)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Authentication
	mux.HandleFunc("/api/auth/register", s.app.AuthHandler.RegisterHandler) // POST
	mux.HandleFunc("/api/auth/login", s.app.AuthHandler.LoginHandler)       // POST

	// API routes - Projects and chat
	mux.HandleFunc("/api/projects", s.requireAuth(s.app.ProjectHandler.ProjectsHandler)) // GET (list), POST (create)
	mux.HandleFunc("/api/projects/", s.requireAuth(s.handleProjectRoutes))               // /{id} and subpaths
	mux.HandleFunc("/api/dashboard", s.requireAuth(s.app.ProjectHandler.DashboardHandler))

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.notFoundHandler)

	return mux
}

// handleProjectRoutes routes project-scoped requests to the appropriate
// handler: /{id}, /{id}/messages, /{id}/chat, /{id}/export
func (s *Server) handleProjectRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/projects/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Project ID required", http.StatusBadRequest)
		return
	}
	projectID := parts[0]

	if len(parts) == 1 {
		s.app.ProjectHandler.ProjectHandler(w, r, projectID)
		return
	}

	switch parts[1] {
	case "messages":
		s.app.ChatHandler.HistoryHandler(w, r, projectID)
	case "chat":
		s.app.ChatHandler.PromptHandler(w, r, projectID)
	case "export":
		s.app.ExportHandler.ExportPDFHandler(w, r, projectID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Not found", http.StatusNotFound)
}
