package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/kyamadi/ai-chat-service/internal/interfaces"
	"github.com/kyamadi/ai-chat-service/internal/models"
)

// ArticleStorage implements the ArticleStorage interface for Badger
type ArticleStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewArticleStorage creates a new ArticleStorage instance
func NewArticleStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ArticleStorage {
	return &ArticleStorage{
		db:     db,
		logger: logger,
	}
}

// UpsertArticle inserts the article unless one with the same URL exists.
// The URL carries a unique index, so a concurrent insert of the same URL
// fails with ErrUniqueExists; in that case the existing row is re-read
// and returned. Stored articles are never overwritten.
func (s *ArticleStorage) UpsertArticle(ctx context.Context, article *models.Article) (*models.Article, error) {
	if article.URL == "" {
		return nil, fmt.Errorf("article URL is required")
	}

	if existing, err := s.GetArticleByURL(ctx, article.URL); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if article.ID == "" {
		return nil, fmt.Errorf("article ID is required")
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now()
	}

	err := s.db.Store().Insert(article.ID, article)
	if err == nil {
		return article, nil
	}
	if !errors.Is(err, badgerhold.ErrUniqueExists) {
		return nil, fmt.Errorf("failed to store article: %w", err)
	}

	// Lost the race to another writer; the winner's row is canonical
	existing, getErr := s.GetArticleByURL(ctx, article.URL)
	if getErr != nil {
		return nil, fmt.Errorf("failed to read article after unique conflict: %w", getErr)
	}
	return existing, nil
}

func (s *ArticleStorage) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	if err := s.db.Store().Get(id, &article); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return &article, nil
}

func (s *ArticleStorage) GetArticleByURL(ctx context.Context, url string) (*models.Article, error) {
	var articles []models.Article
	if err := s.db.Store().Find(&articles, badgerhold.Where("URL").Eq(url).Index("URL")); err != nil {
		return nil, fmt.Errorf("failed to find article: %w", err)
	}
	if len(articles) == 0 {
		return nil, ErrNotFound
	}
	return &articles[0], nil
}

// GetArticles resolves article IDs to records, preserving input order.
// Missing IDs are skipped rather than failing the whole read.
func (s *ArticleStorage) GetArticles(ctx context.Context, ids []string) ([]*models.Article, error) {
	articles := make([]*models.Article, 0, len(ids))
	for _, id := range ids {
		article, err := s.GetArticle(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				s.logger.Warn().Str("article_id", id).Msg("Linked article missing from store")
				continue
			}
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func (s *ArticleStorage) CountArticles(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Article{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return int(count), nil
}
