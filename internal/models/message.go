package models

import "time"

// MessageRole identifies the author of a conversation turn
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Message is a single conversation turn within a project. Assistant
// turns carry the IDs of the articles that informed the response;
// the list is the persisted side of the message-article association.
type Message struct {
	ID         string      `json:"id" badgerhold:"key"`
	ProjectID  string      `json:"project_id" badgerhold:"index"`
	Role       MessageRole `json:"role"`
	Content    string      `json:"content"`
	ArticleIDs []string    `json:"article_ids,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// HasArticle reports whether the message already links the given article
func (m *Message) HasArticle(articleID string) bool {
	for _, id := range m.ArticleIDs {
		if id == articleID {
			return true
		}
	}
	return false
}

// LinkArticle appends an article reference if not already present.
// Returns true when the link was added.
func (m *Message) LinkArticle(articleID string) bool {
	if m.HasArticle(articleID) {
		return false
	}
	m.ArticleIDs = append(m.ArticleIDs, articleID)
	return true
}
