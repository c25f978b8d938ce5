package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/kyamadi/ai-chat-service/internal/interfaces"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleRecommendService implements the recommend_service tool
func handleRecommendService(chat interfaces.ChatService, storage interfaces.StorageManager, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID, err := request.RequireString("project_id")
		if err != nil || projectID == "" {
			return textResult("Error: project_id parameter is required"), nil
		}
		prompt, err := request.RequireString("prompt")
		if err != nil || prompt == "" {
			return textResult("Error: prompt parameter is required"), nil
		}

		result, err := chat.Respond(ctx, projectID, prompt)
		if err != nil {
			logger.Error().Err(err).Str("project_id", projectID).Msg("Pipeline failed")
			return textResult(fmt.Sprintf("Chat error: %v", err)), nil
		}

		return textResult(formatChatResult(result)), nil
	}
}

// handleListProjects implements the list_projects tool
func handleListProjects(storage interfaces.StorageManager, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		username, err := request.RequireString("username")
		if err != nil || username == "" {
			return textResult("Error: username parameter is required"), nil
		}

		user, err := storage.UserStorage().GetUserByUsername(ctx, username)
		if err != nil {
			return textResult(fmt.Sprintf("User not found: %v", err)), nil
		}

		projects, err := storage.ProjectStorage().GetProjectsByUser(ctx, user.ID)
		if err != nil {
			logger.Error().Err(err).Str("username", username).Msg("Project listing failed")
			return textResult(fmt.Sprintf("List error: %v", err)), nil
		}

		return textResult(formatProjects(username, projects)), nil
	}
}

// handleGetHistory implements the get_history tool
func handleGetHistory(storage interfaces.StorageManager, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID, err := request.RequireString("project_id")
		if err != nil || projectID == "" {
			return textResult("Error: project_id parameter is required"), nil
		}
		limit := request.GetInt("limit", 20)

		project, err := storage.ProjectStorage().GetProject(ctx, projectID)
		if err != nil {
			return textResult(fmt.Sprintf("Project not found: %v", err)), nil
		}

		messages, err := storage.MessageStorage().GetMessagesByProject(ctx, projectID)
		if err != nil {
			logger.Error().Err(err).Str("project_id", projectID).Msg("History lookup failed")
			return textResult(fmt.Sprintf("History error: %v", err)), nil
		}
		if limit > 0 && len(messages) > limit {
			messages = messages[len(messages)-limit:]
		}

		return textResult(formatHistory(ctx, storage, project, messages)), nil
	}
}

// handleGetArticle implements the get_article tool
func handleGetArticle(storage interfaces.StorageManager, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil || url == "" {
			return textResult("Error: url parameter is required"), nil
		}

		article, err := storage.ArticleStorage().GetArticleByURL(ctx, url)
		if err != nil {
			return textResult(fmt.Sprintf("Article not found: %v", err)), nil
		}

		return textResult(formatArticle(article)), nil
	}
}
