package interfaces

import (
	"context"

	"github.com/kyamadi/ai-chat-service/internal/models"
)

// UserStorage - interface for account persistence
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int, error)
}

// ProjectStorage - interface for project persistence
type ProjectStorage interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	GetProjectsByUser(ctx context.Context, userID string) ([]*models.Project, error)
	UpdateProject(ctx context.Context, project *models.Project) error

	// DeleteProject removes the project and cascades to its messages.
	// Articles referenced by deleted messages are left in place.
	DeleteProject(ctx context.Context, id string) error

	CountProjects(ctx context.Context) (int, error)
}

// MessageStorage - interface for conversation turn persistence
type MessageStorage interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	GetMessage(ctx context.Context, id string) (*models.Message, error)

	// GetMessagesByProject returns the project's turns in creation order
	GetMessagesByProject(ctx context.Context, projectID string) ([]*models.Message, error)

	// LinkArticles idempotently associates articles with a message
	LinkArticles(ctx context.Context, messageID string, articleIDs []string) error

	DeleteMessage(ctx context.Context, id string) error
	DeleteMessagesByProject(ctx context.Context, projectID string) error
	CountMessages(ctx context.Context) (int, error)
}

// ArticleStorage - interface for extracted source persistence
type ArticleStorage interface {
	// UpsertArticle stores the article, or returns the existing record
	// when one with the same URL is already present. Existing articles
	// are never overwritten. The returned article is the canonical row.
	UpsertArticle(ctx context.Context, article *models.Article) (*models.Article, error)

	GetArticle(ctx context.Context, id string) (*models.Article, error)
	GetArticleByURL(ctx context.Context, url string) (*models.Article, error)
	GetArticles(ctx context.Context, ids []string) ([]*models.Article, error)
	CountArticles(ctx context.Context) (int, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	UserStorage() UserStorage
	ProjectStorage() ProjectStorage
	MessageStorage() MessageStorage
	ArticleStorage() ArticleStorage
	DB() interface{}
	Close() error
}
