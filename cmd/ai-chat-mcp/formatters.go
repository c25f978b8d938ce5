package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kyamadi/ai-chat-service/internal/interfaces"
	"github.com/kyamadi/ai-chat-service/internal/models"
)

// formatChatResult formats a pipeline response as markdown
func formatChatResult(result *interfaces.ChatResult) string {
	var sb strings.Builder
	sb.WriteString("## Answer\n\n")
	sb.WriteString(result.Answer)
	sb.WriteString("\n\n")

	if len(result.Articles) > 0 {
		sb.WriteString("## Sources\n\n")
		for i, article := range result.Articles {
			sb.WriteString(fmt.Sprintf("%d. **%s**\n   %s\n", i+1, article.Title, article.URL))
		}
		sb.WriteString("\n")
	}

	if result.Degraded {
		sb.WriteString("_Note: no source content could be retrieved; the answer is based on the model's own knowledge._\n")
	}
	if result.AssistantMessage == nil {
		sb.WriteString("_Note: the answer was not saved to the conversation._\n")
	}

	return sb.String()
}

// formatProjects formats a user's project list as markdown
func formatProjects(username string, projects []*models.Project) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Projects for %s (%d)\n\n", username, len(projects)))

	if len(projects) == 0 {
		sb.WriteString("No projects found.\n")
		return sb.String()
	}

	for i, p := range projects {
		sb.WriteString(fmt.Sprintf("%d. **%s** (%s)\n", i+1, p.Name, p.ID))
		sb.WriteString(fmt.Sprintf("   Updated: %s\n\n", p.UpdatedAt.Format(time.RFC3339)))
	}

	return sb.String()
}

// formatHistory formats a project conversation as markdown
func formatHistory(ctx context.Context, storage interfaces.StorageManager, project *models.Project, messages []*models.Message) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Conversation: %s (%d messages)\n\n", project.Name, len(messages)))

	if len(messages) == 0 {
		sb.WriteString("No messages yet.\n")
		return sb.String()
	}

	for _, message := range messages {
		role := "User"
		if message.Role == models.MessageRoleAssistant {
			role = "Assistant"
		}
		sb.WriteString(fmt.Sprintf("### %s (%s)\n\n", role, message.CreatedAt.Format(time.RFC3339)))
		sb.WriteString(message.Content)
		sb.WriteString("\n\n")

		if len(message.ArticleIDs) > 0 {
			if articles, err := storage.ArticleStorage().GetArticles(ctx, message.ArticleIDs); err == nil && len(articles) > 0 {
				sb.WriteString("Sources:\n")
				for _, a := range articles {
					sb.WriteString(fmt.Sprintf("- %s (%s)\n", a.Title, a.URL))
				}
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}

// formatArticle formats a stored article as markdown
func formatArticle(article *models.Article) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", article.Title))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", article.ID))
	sb.WriteString(fmt.Sprintf("**URL:** %s\n", article.URL))
	sb.WriteString(fmt.Sprintf("**Extraction:** %s\n", article.Tier))
	sb.WriteString(fmt.Sprintf("**Stored:** %s\n\n", article.CreatedAt.Format(time.RFC3339)))

	if article.HasContent() {
		sb.WriteString("## Content\n\n")
		sb.WriteString(article.Content)
		sb.WriteString("\n")
	} else {
		sb.WriteString("No extracted content is stored for this article.\n")
	}

	return sb.String()
}
