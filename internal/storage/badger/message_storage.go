package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/kyamadi/ai-chat-service/internal/interfaces"
	"github.com/kyamadi/ai-chat-service/internal/models"
)

// MessageStorage implements the MessageStorage interface for Badger
type MessageStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMessageStorage creates a new MessageStorage instance
func NewMessageStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MessageStorage {
	return &MessageStorage{
		db:     db,
		logger: logger,
	}
}

func (s *MessageStorage) CreateMessage(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		return fmt.Errorf("message ID is required")
	}
	if message.ProjectID == "" {
		return fmt.Errorf("project ID is required")
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	if err := s.db.Store().Insert(message.ID, message); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (s *MessageStorage) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	var message models.Message
	if err := s.db.Store().Get(id, &message); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &message, nil
}

func (s *MessageStorage) GetMessagesByProject(ctx context.Context, projectID string) ([]*models.Message, error) {
	var messages []models.Message
	if err := s.db.Store().Find(&messages, badgerhold.Where("ProjectID").Eq(projectID).Index("ProjectID")); err != nil {
		return nil, fmt.Errorf("failed to find messages: %w", err)
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	result := make([]*models.Message, len(messages))
	for i := range messages {
		result[i] = &messages[i]
	}
	return result, nil
}

// LinkArticles associates articles with a message. Already-linked
// articles are skipped, so repeated calls with the same IDs leave a
// single link per article.
func (s *MessageStorage) LinkArticles(ctx context.Context, messageID string, articleIDs []string) error {
	if len(articleIDs) == 0 {
		return nil
	}

	message, err := s.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}

	changed := false
	for _, articleID := range articleIDs {
		if articleID == "" {
			continue
		}
		if message.LinkArticle(articleID) {
			changed = true
		}
	}
	if !changed {
		return nil
	}

	if err := s.db.Store().Update(message.ID, message); err != nil {
		return fmt.Errorf("failed to link articles: %w", err)
	}
	return nil
}

func (s *MessageStorage) DeleteMessage(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Message{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func (s *MessageStorage) DeleteMessagesByProject(ctx context.Context, projectID string) error {
	if err := s.db.Store().DeleteMatching(&models.Message{}, badgerhold.Where("ProjectID").Eq(projectID).Index("ProjectID")); err != nil {
		return fmt.Errorf("failed to delete project messages: %w", err)
	}
	return nil
}

func (s *MessageStorage) CountMessages(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Message{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return int(count), nil
}
