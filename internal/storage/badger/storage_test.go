package badger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kyamadi/ai-chat-service/internal/common"
	"github.com/kyamadi/ai-chat-service/internal/interfaces"
	"github.com/kyamadi/ai-chat-service/internal/models"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()

	manager, err := NewManager(common.GetLogger(), &common.BadgerConfig{
		Path: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("failed to create storage manager: %v", err)
	}
	t.Cleanup(func() {
		_ = manager.Close()
	})
	return manager
}

func TestUserStorage_UniqueUsernameAndEmail(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	users := manager.UserStorage()

	first := &models.User{ID: common.NewUserID(), Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	if err := users.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	dupName := &models.User{ID: common.NewUserID(), Username: "alice", Email: "alice2@example.com", PasswordHash: "y"}
	if err := users.CreateUser(ctx, dupName); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists for duplicate username, got %v", err)
	}

	dupEmail := &models.User{ID: common.NewUserID(), Username: "alice2", Email: "alice@example.com", PasswordHash: "y"}
	if err := users.CreateUser(ctx, dupEmail); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists for duplicate email, got %v", err)
	}

	got, err := users.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("expected user %s, got %s", first.ID, got.ID)
	}

	byEmail, err := users.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != first.ID {
		t.Errorf("expected user %s, got %s", first.ID, byEmail.ID)
	}
}

func TestArticleStorage_UpsertIdempotent(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	articles := manager.ArticleStorage()

	original := &models.Article{
		ID:      common.NewArticleID(),
		Title:   "Gemini API overview",
		URL:     "https://example.com/gemini",
		Content: "Gemini is a family of multimodal models.",
		Tier:    models.ExtractionTierStatic,
	}

	stored, err := articles.UpsertArticle(ctx, original)
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if stored.ID != original.ID {
		t.Fatalf("expected inserted article back, got %s", stored.ID)
	}

	// Same URL with different content must return the stored row unchanged
	again, err := articles.UpsertArticle(ctx, &models.Article{
		ID:      common.NewArticleID(),
		Title:   "Different title",
		URL:     "https://example.com/gemini",
		Content: "replacement body that must not win",
		Tier:    models.ExtractionTierRendered,
	})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if again.ID != original.ID {
		t.Errorf("expected canonical article %s, got %s", original.ID, again.ID)
	}
	if again.Content != original.Content {
		t.Errorf("stored article content was overwritten")
	}

	count, err := articles.CountArticles(ctx)
	if err != nil {
		t.Fatalf("CountArticles failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 article, got %d", count)
	}
}

func TestArticleStorage_ConcurrentUpsertSameURL(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	articles := manager.ArticleStorage()

	const writers = 8
	results := make([]*models.Article, writers)
	errs := make([]error, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = articles.UpsertArticle(ctx, &models.Article{
				ID:      common.NewArticleID(),
				Title:   "Claude models",
				URL:     "https://example.com/claude",
				Content: "Claude model family documentation.",
				Tier:    models.ExtractionTierStatic,
			})
		}(i)
	}
	wg.Wait()

	for i := 0; i < writers; i++ {
		if errs[i] != nil {
			t.Fatalf("writer %d failed: %v", i, errs[i])
		}
	}

	// Every writer must converge on the same canonical row
	for i := 1; i < writers; i++ {
		if results[i].ID != results[0].ID {
			t.Errorf("writer %d got article %s, expected %s", i, results[i].ID, results[0].ID)
		}
	}

	count, err := articles.CountArticles(ctx)
	if err != nil {
		t.Fatalf("CountArticles failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 article after concurrent upserts, got %d", count)
	}
}

func TestMessageStorage_LinkArticlesIdempotent(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	messages := manager.MessageStorage()

	message := &models.Message{
		ID:        common.NewMessageID(),
		ProjectID: common.NewProjectID(),
		Role:      models.MessageRoleAssistant,
		Content:   "You could use the Gemini API for this.",
	}
	if err := messages.CreateMessage(ctx, message); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	ids := []string{"art_1", "art_2"}
	if err := messages.LinkArticles(ctx, message.ID, ids); err != nil {
		t.Fatalf("LinkArticles failed: %v", err)
	}
	if err := messages.LinkArticles(ctx, message.ID, ids); err != nil {
		t.Fatalf("repeat LinkArticles failed: %v", err)
	}
	if err := messages.LinkArticles(ctx, message.ID, []string{"art_2", "art_3"}); err != nil {
		t.Fatalf("partial overlap LinkArticles failed: %v", err)
	}

	got, err := messages.GetMessage(ctx, message.ID)
	if err != nil {
		t.Fatalf("GetMessage failed: %v", err)
	}
	want := []string{"art_1", "art_2", "art_3"}
	if len(got.ArticleIDs) != len(want) {
		t.Fatalf("expected %d links, got %d: %v", len(want), len(got.ArticleIDs), got.ArticleIDs)
	}
	for i, id := range want {
		if got.ArticleIDs[i] != id {
			t.Errorf("link %d: expected %s, got %s", i, id, got.ArticleIDs[i])
		}
	}
}

func TestProjectStorage_CascadeDeleteKeepsArticles(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	projects := manager.ProjectStorage()
	messages := manager.MessageStorage()
	articles := manager.ArticleStorage()

	project := &models.Project{
		ID:     common.NewProjectID(),
		UserID: common.NewUserID(),
		Name:   "image generation research",
	}
	if err := projects.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	article, err := articles.UpsertArticle(ctx, &models.Article{
		ID:      common.NewArticleID(),
		Title:   "Stable Diffusion guide",
		URL:     "https://example.com/sd",
		Content: "Guide to running diffusion models.",
		Tier:    models.ExtractionTierStatic,
	})
	if err != nil {
		t.Fatalf("UpsertArticle failed: %v", err)
	}

	msg := &models.Message{
		ID:         common.NewMessageID(),
		ProjectID:  project.ID,
		Role:       models.MessageRoleAssistant,
		Content:    "Try Stable Diffusion.",
		ArticleIDs: []string{article.ID},
	}
	if err := messages.CreateMessage(ctx, msg); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	if err := projects.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}

	if _, err := projects.GetProject(ctx, project.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected project gone, got %v", err)
	}
	if _, err := messages.GetMessage(ctx, msg.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected message gone, got %v", err)
	}

	// Shared sources survive the cascade
	if _, err := articles.GetArticle(ctx, article.ID); err != nil {
		t.Errorf("expected article to survive project delete, got %v", err)
	}
}

func TestMessageStorage_ProjectOrdering(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	messages := manager.MessageStorage()

	projectID := common.NewProjectID()
	contents := []string{"first", "second", "third"}
	for _, c := range contents {
		msg := &models.Message{
			ID:        common.NewMessageID(),
			ProjectID: projectID,
			Role:      models.MessageRoleUser,
			Content:   c,
		}
		if err := messages.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("CreateMessage failed: %v", err)
		}
	}

	got, err := messages.GetMessagesByProject(ctx, projectID)
	if err != nil {
		t.Fatalf("GetMessagesByProject failed: %v", err)
	}
	if len(got) != len(contents) {
		t.Fatalf("expected %d messages, got %d", len(contents), len(got))
	}
	for i, c := range contents {
		if got[i].Content != c {
			t.Errorf("message %d: expected %q, got %q", i, c, got[i].Content)
		}
	}
}
