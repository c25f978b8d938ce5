package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kyamadi/ai-chat-service/internal/common"
	"github.com/kyamadi/ai-chat-service/internal/interfaces"
	"github.com/kyamadi/ai-chat-service/internal/models"
	badgerstorage "github.com/kyamadi/ai-chat-service/internal/storage/badger"
)

// fakeLLM answers the compose call and the generation call separately
type fakeLLM struct {
	composedQuery string
	composeErr    error
	answer        string
	generateErr   error
	generateCalls [][]interfaces.Message
	searchQueries []string
}

func (f *fakeLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	if len(messages) > 0 && messages[0].Role == "system" && messages[0].Content == composeQueryPrompt {
		if f.composeErr != nil {
			return "", f.composeErr
		}
		return f.composedQuery, nil
	}
	f.generateCalls = append(f.generateCalls, messages)
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return f.answer, nil
}

func (f *fakeLLM) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeLLM) Provider() string                      { return "fake" }
func (f *fakeLLM) Close() error                          { return nil }

type fakeSearch struct {
	results []interfaces.SearchResult
	err     error
	queries []string
}

func (f *fakeSearch) Search(ctx context.Context, query string) ([]interfaces.SearchResult, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

// fakeExtractor returns canned content per URL without any network
type fakeExtractor struct {
	content map[string]string
}

func (f *fakeExtractor) Extract(ctx context.Context, result interfaces.SearchResult) interfaces.Extraction {
	e := interfaces.Extraction{Title: result.Title, URL: result.Link, Tier: models.ExtractionTierNone}
	if content, ok := f.content[result.Link]; ok && content != "" {
		e.Content = content
		e.Tier = models.ExtractionTierStatic
	}
	return e
}

func (f *fakeExtractor) ExtractAll(ctx context.Context, results []interfaces.SearchResult) []interfaces.Extraction {
	extractions := make([]interfaces.Extraction, len(results))
	for i, r := range results {
		extractions[i] = f.Extract(ctx, r)
	}
	return extractions
}

func (f *fakeExtractor) Close() error { return nil }

type fixture struct {
	service   *Service
	storage   interfaces.StorageManager
	llm       *fakeLLM
	search    *fakeSearch
	projectID string
}

func newFixture(t *testing.T, llm *fakeLLM, search *fakeSearch, extractor interfaces.ExtractorService) *fixture {
	t.Helper()

	storage, err := badgerstorage.NewManager(common.GetLogger(), &common.BadgerConfig{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })

	project := &models.Project{
		ID:     common.NewProjectID(),
		UserID: common.NewUserID(),
		Name:   "test project",
	}
	if err := storage.ProjectStorage().CreateProject(context.Background(), project); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	service := NewService(
		&common.PipelineConfig{ContextCharCap: 2000},
		llm, search, extractor, storage, nil, common.GetLogger(),
	)

	return &fixture{
		service:   service,
		storage:   storage,
		llm:       llm,
		search:    search,
		projectID: project.ID,
	}
}

func TestRespond_FullPipeline(t *testing.T) {
	llm := &fakeLLM{
		composedQuery: "best text to image AI services 2026",
		answer:        "I recommend these image generation services.",
	}
	search := &fakeSearch{results: []interfaces.SearchResult{
		{Title: "Service A", Link: "https://example.com/a"},
		{Title: "Service B", Link: "https://example.com/b"},
	}}
	extractor := &fakeExtractor{content: map[string]string{
		"https://example.com/a": "Service A generates images from text prompts.",
		"https://example.com/b": "Service B offers an image API with a free tier.",
	}}
	f := newFixture(t, llm, search, extractor)

	result, err := f.service.Respond(context.Background(), f.projectID, "I need to generate images")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	if result.Answer != llm.answer {
		t.Errorf("unexpected answer: %q", result.Answer)
	}
	if result.Degraded {
		t.Error("expected non-degraded run")
	}
	if result.AssistantMessage == nil {
		t.Fatal("expected persisted assistant message")
	}
	if len(result.Articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(result.Articles))
	}
	// Articles keep search result order
	if result.Articles[0].URL != "https://example.com/a" || result.Articles[1].URL != "https://example.com/b" {
		t.Errorf("article order does not match search order: %v, %v", result.Articles[0].URL, result.Articles[1].URL)
	}

	// Both turns persisted, assistant turn linked to the stored articles
	messages, err := f.storage.MessageStorage().GetMessagesByProject(context.Background(), f.projectID)
	if err != nil {
		t.Fatalf("failed to load messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(messages))
	}
	if messages[0].Role != models.MessageRoleUser || messages[1].Role != models.MessageRoleAssistant {
		t.Errorf("unexpected message roles: %s, %s", messages[0].Role, messages[1].Role)
	}
	if len(messages[1].ArticleIDs) != 2 {
		t.Errorf("expected 2 linked articles, got %d", len(messages[1].ArticleIDs))
	}
	if search.queries[0] != llm.composedQuery {
		t.Errorf("search should use composed query, got %q", search.queries[0])
	}
}

func TestRespond_GenerationFailureNothingPersisted(t *testing.T) {
	llm := &fakeLLM{
		composedQuery: "query",
		generateErr:   fmt.Errorf("provider unavailable"),
	}
	search := &fakeSearch{results: []interfaces.SearchResult{
		{Title: "Service A", Link: "https://example.com/a"},
	}}
	extractor := &fakeExtractor{content: map[string]string{
		"https://example.com/a": "Some content.",
	}}
	f := newFixture(t, llm, search, extractor)

	result, err := f.service.Respond(context.Background(), f.projectID, "hello")
	if err != nil {
		t.Fatalf("generation failure must not surface as an error, got %v", err)
	}

	if result.Answer != fallbackAnswer {
		t.Errorf("expected fallback answer, got %q", result.Answer)
	}
	if result.AssistantMessage != nil {
		t.Error("assistant message must not be persisted on generation failure")
	}

	// Only the user turn exists
	messages, err := f.storage.MessageStorage().GetMessagesByProject(context.Background(), f.projectID)
	if err != nil {
		t.Fatalf("failed to load messages: %v", err)
	}
	if len(messages) != 1 || messages[0].Role != models.MessageRoleUser {
		t.Fatalf("expected only the user turn persisted, got %d messages", len(messages))
	}
}

func TestRespond_AnswerWhitespaceTrimmed(t *testing.T) {
	llm := &fakeLLM{
		composedQuery: "query",
		answer:        "\n  recommended services  \n\n",
	}
	f := newFixture(t, llm, &fakeSearch{}, &fakeExtractor{})

	result, err := f.service.Respond(context.Background(), f.projectID, "what should I use?")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	if result.Answer != "recommended services" {
		t.Errorf("expected trimmed answer, got %q", result.Answer)
	}
	if result.AssistantMessage == nil || result.AssistantMessage.Content != "recommended services" {
		t.Errorf("assistant message must carry the trimmed answer, got %+v", result.AssistantMessage)
	}

	messages, err := f.storage.MessageStorage().GetMessagesByProject(context.Background(), f.projectID)
	if err != nil {
		t.Fatalf("failed to load messages: %v", err)
	}
	if messages[len(messages)-1].Content != "recommended services" {
		t.Errorf("stored assistant turn must be trimmed, got %q", messages[len(messages)-1].Content)
	}
}

func TestRespond_WhitespaceOnlyAnswerFallsBack(t *testing.T) {
	llm := &fakeLLM{
		composedQuery: "query",
		answer:        "  \n\t ",
	}
	f := newFixture(t, llm, &fakeSearch{}, &fakeExtractor{})

	result, err := f.service.Respond(context.Background(), f.projectID, "hello")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	if result.Answer != fallbackAnswer {
		t.Errorf("expected fallback answer for blank generation, got %q", result.Answer)
	}
	if result.AssistantMessage != nil {
		t.Error("blank answer must not be persisted")
	}
}

func TestRespond_SearchFailureDegrades(t *testing.T) {
	llm := &fakeLLM{
		composedQuery: "query",
		answer:        "Answer without sources.",
	}
	search := &fakeSearch{err: fmt.Errorf("search quota exceeded")}
	f := newFixture(t, llm, search, &fakeExtractor{})

	result, err := f.service.Respond(context.Background(), f.projectID, "what can summarize documents?")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	if !result.Degraded {
		t.Error("expected degraded run when search fails")
	}
	if len(result.Articles) != 0 {
		t.Errorf("expected no articles, got %d", len(result.Articles))
	}
	if result.AssistantMessage == nil {
		t.Error("degraded runs still persist the assistant turn")
	}

	// The context turn states there are no results
	if len(llm.generateCalls) != 1 {
		t.Fatalf("expected one generation call, got %d", len(llm.generateCalls))
	}
	assembled := llm.generateCalls[0]
	contextTurn := assembled[len(assembled)-2]
	if contextTurn.Content != noResultsContext {
		t.Errorf("expected no-results context turn, got %q", contextTurn.Content)
	}
}

func TestRespond_ComposeFailureUsesRawPrompt(t *testing.T) {
	llm := &fakeLLM{
		composeErr: fmt.Errorf("compose model down"),
		answer:     "answer",
	}
	search := &fakeSearch{}
	f := newFixture(t, llm, search, &fakeExtractor{})

	prompt := "recommend a code completion AI"
	if _, err := f.service.Respond(context.Background(), f.projectID, prompt); err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	if len(search.queries) != 1 || search.queries[0] != prompt {
		t.Errorf("expected raw prompt as search query, got %v", search.queries)
	}
}

func TestRespond_EmptyPrompt(t *testing.T) {
	f := newFixture(t, &fakeLLM{answer: "x"}, &fakeSearch{}, &fakeExtractor{})
	if _, err := f.service.Respond(context.Background(), f.projectID, "   "); err == nil {
		t.Fatal("expected error for blank prompt")
	}
}

func TestRespond_UnknownProject(t *testing.T) {
	f := newFixture(t, &fakeLLM{answer: "x"}, &fakeSearch{}, &fakeExtractor{})
	if _, err := f.service.Respond(context.Background(), "prj_missing", "hello"); err == nil {
		t.Fatal("expected error for unknown project")
	}
}

func TestAssembleMessages_Ordering(t *testing.T) {
	history := []*models.Message{
		{Role: models.MessageRoleUser, Content: "first question"},
		{Role: models.MessageRoleAssistant, Content: "first answer"},
	}
	articles := []*models.Article{
		{Title: "Doc", URL: "https://example.com/doc", Content: "Documentation body."},
	}

	messages := assembleMessages(history, articles, "new question", 0, 0)

	if messages[0].Role != "system" || messages[0].Content != personaPrompt {
		t.Error("first message must be the system persona")
	}
	if messages[1].Content != "first question" || messages[2].Content != "first answer" {
		t.Error("history must follow the persona in order")
	}
	last := messages[len(messages)-1]
	if last.Role != "user" || last.Content != "new question" {
		t.Errorf("prompt must be the final message, got %+v", last)
	}
	contextTurn := messages[len(messages)-2]
	if !strings.Contains(contextTurn.Content, "https://example.com/doc") {
		t.Errorf("context turn must cite article URL, got %q", contextTurn.Content)
	}
}

func TestAssembleMessages_HistoryLimit(t *testing.T) {
	history := make([]*models.Message, 10)
	for i := range history {
		history[i] = &models.Message{Role: models.MessageRoleUser, Content: fmt.Sprintf("msg %d", i)}
	}

	messages := assembleMessages(history, nil, "prompt", 4, 0)

	// system + 4 history + context + prompt
	if len(messages) != 7 {
		t.Fatalf("expected 7 messages, got %d", len(messages))
	}
	if messages[1].Content != "msg 6" {
		t.Errorf("expected oldest kept turn to be msg 6, got %q", messages[1].Content)
	}
}

func TestBuildContextTurn_TitleOnlyArticles(t *testing.T) {
	articles := []*models.Article{
		{Title: "Extracted", URL: "https://example.com/ok", Content: "Body text."},
		{Title: "Unextractable", URL: "https://example.com/blocked"},
	}

	turn := buildContextTurn(articles, 0)

	if !strings.Contains(turn, "Body text.") {
		t.Error("extracted body missing from context turn")
	}
	// Body-less sources still appear with title and link
	if !strings.Contains(turn, "Unextractable") || !strings.Contains(turn, "https://example.com/blocked") {
		t.Error("body-less article title/link missing from context turn")
	}
}

func TestBuildContextTurn_CharCap(t *testing.T) {
	articles := []*models.Article{
		{Title: "Long", URL: "https://example.com/long", Content: strings.Repeat("x", 5000)},
	}

	turn := buildContextTurn(articles, 100)
	if !strings.Contains(turn, strings.Repeat("x", 100)) {
		t.Error("expected content kept up to the cap")
	}
	if strings.Contains(turn, strings.Repeat("x", 101)) {
		t.Error("content exceeds the cap")
	}
}

func TestBuildContextTurn_CharCapKeepsRunesWhole(t *testing.T) {
	articles := []*models.Article{
		{Title: "Japanese", URL: "https://example.jp/doc", Content: strings.Repeat("画", 200)},
	}

	// 100 is not a multiple of the 3-byte rune width, so a byte cut
	// would land mid-rune
	turn := buildContextTurn(articles, 100)
	if !utf8.ValidString(turn) {
		t.Fatal("context turn contains a split rune")
	}
	if got := strings.Count(turn, "画"); got != 33 {
		t.Errorf("expected 33 whole runes under the cap, got %d", got)
	}
}
