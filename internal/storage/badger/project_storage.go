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

// ProjectStorage implements the ProjectStorage interface for Badger
type ProjectStorage struct {
	db       *BadgerDB
	messages interfaces.MessageStorage
	logger   arbor.ILogger
}

// NewProjectStorage creates a new ProjectStorage instance. The message
// storage is needed for cascade deletes.
func NewProjectStorage(db *BadgerDB, messages interfaces.MessageStorage, logger arbor.ILogger) interfaces.ProjectStorage {
	return &ProjectStorage{
		db:       db,
		messages: messages,
		logger:   logger,
	}
}

func (s *ProjectStorage) CreateProject(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		return fmt.Errorf("project ID is required")
	}
	if project.UserID == "" {
		return fmt.Errorf("user ID is required")
	}

	now := time.Now()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	if err := s.db.Store().Insert(project.ID, project); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (s *ProjectStorage) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := s.db.Store().Get(id, &project); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

func (s *ProjectStorage) GetProjectsByUser(ctx context.Context, userID string) ([]*models.Project, error) {
	var projects []models.Project
	if err := s.db.Store().Find(&projects, badgerhold.Where("UserID").Eq(userID).Index("UserID")); err != nil {
		return nil, fmt.Errorf("failed to find projects: %w", err)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.Before(projects[j].CreatedAt)
	})

	result := make([]*models.Project, len(projects))
	for i := range projects {
		result[i] = &projects[i]
	}
	return result, nil
}

func (s *ProjectStorage) UpdateProject(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now()
	if err := s.db.Store().Update(project.ID, project); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// DeleteProject removes the project and all of its messages. Articles
// referenced by those messages stay in the store since other messages
// may link them.
func (s *ProjectStorage) DeleteProject(ctx context.Context, id string) error {
	if err := s.messages.DeleteMessagesByProject(ctx, id); err != nil {
		return err
	}

	if err := s.db.Store().Delete(id, &models.Project{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.logger.Debug().Str("project_id", id).Msg("Project deleted with messages")
	return nil
}

func (s *ProjectStorage) CountProjects(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Project{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return int(count), nil
}
