package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kyamadi/ai-chat-service/internal/common"
	"github.com/kyamadi/ai-chat-service/internal/interfaces"
	"github.com/kyamadi/ai-chat-service/internal/models"
)

// fakeRenderer implements interfaces.PageRenderer for tests
type fakeRenderer struct {
	html   string
	err    error
	called int
}

func (f *fakeRenderer) Render(ctx context.Context, url string) (string, error) {
	f.called++
	if f.err != nil {
		return "", f.err
	}
	return f.html, nil
}

func (f *fakeRenderer) Close() error { return nil }

func testConfig() *common.ExtractorConfig {
	return &common.ExtractorConfig{
		UserAgent:        "test-agent",
		RequestTimeout:   5 * time.Second,
		RequestRate:      time.Millisecond,
		MinContentLength: 200,
		MaxConcurrency:   3,
	}
}

func longArticleHTML() string {
	return "<html><body><article><p>" + strings.Repeat("Generative AI services compared in depth. ", 20) + "</p></article></body></html>"
}

func TestService_StaticTierSufficient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, longArticleHTML())
	}))
	defer ts.Close()

	renderer := &fakeRenderer{html: longArticleHTML()}
	svc := NewService(testConfig(), renderer, common.GetLogger())

	extraction := svc.Extract(context.Background(), interfaces.SearchResult{
		Title: "Comparison",
		Link:  ts.URL,
	})

	if extraction.Tier != models.ExtractionTierStatic {
		t.Errorf("expected static tier, got %s", extraction.Tier)
	}
	if len(extraction.Content) < 200 {
		t.Errorf("expected substantial content, got %d chars", len(extraction.Content))
	}
	if renderer.called != 0 {
		t.Errorf("renderer should not run when static tier succeeds, called %d times", renderer.called)
	}
}

func TestService_FallsBackToRenderer(t *testing.T) {
	// Static response is a JS shell with almost no text
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><div id="root"></div></body></html>`)
	}))
	defer ts.Close()

	renderer := &fakeRenderer{html: longArticleHTML()}
	svc := NewService(testConfig(), renderer, common.GetLogger())

	extraction := svc.Extract(context.Background(), interfaces.SearchResult{
		Title: "SPA page",
		Link:  ts.URL,
	})

	if renderer.called != 1 {
		t.Fatalf("expected renderer to run once, called %d times", renderer.called)
	}
	if extraction.Tier != models.ExtractionTierRendered {
		t.Errorf("expected rendered tier, got %s", extraction.Tier)
	}
	if !strings.Contains(extraction.Content, "Generative AI services") {
		t.Errorf("expected rendered content, got %q", extraction.Content)
	}
}

func TestService_BothTiersFail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer ts.Close()

	renderer := &fakeRenderer{err: fmt.Errorf("chrome crashed")}
	svc := NewService(testConfig(), renderer, common.GetLogger())

	extraction := svc.Extract(context.Background(), interfaces.SearchResult{
		Title: "Dead link",
		Link:  ts.URL,
	})

	if extraction.Tier != models.ExtractionTierNone {
		t.Errorf("expected tier none, got %s", extraction.Tier)
	}
	if extraction.Content != "" {
		t.Errorf("expected empty content, got %q", extraction.Content)
	}
	// Title and URL stay populated for citation purposes
	if extraction.Title != "Dead link" || extraction.URL != ts.URL {
		t.Errorf("expected title and URL preserved, got %+v", extraction)
	}
}

func TestService_NilRendererSkipsTier2(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><p>short text</p></body></html>`)
	}))
	defer ts.Close()

	svc := NewService(testConfig(), nil, common.GetLogger())

	extraction := svc.Extract(context.Background(), interfaces.SearchResult{Link: ts.URL})

	// Below-threshold static content is kept when rendering is unavailable
	if extraction.Tier != models.ExtractionTierStatic {
		t.Errorf("expected static tier, got %s", extraction.Tier)
	}
	if !strings.Contains(extraction.Content, "short text") {
		t.Errorf("expected short static content kept, got %q", extraction.Content)
	}
}

func TestService_ExtractAllPreservesOrder(t *testing.T) {
	mux := http.NewServeMux()
	for i := 0; i < 5; i++ {
		page := fmt.Sprintf("/page%d", i)
		body := fmt.Sprintf("<html><body><article><p>Page %d. %s</p></article></body></html>",
			i, strings.Repeat("Padding sentence for length. ", 15))
		mux.HandleFunc(page, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, body)
		})
	}
	ts := httptest.NewServer(mux)
	defer ts.Close()

	svc := NewService(testConfig(), nil, common.GetLogger())

	results := make([]interfaces.SearchResult, 5)
	for i := range results {
		results[i] = interfaces.SearchResult{
			Title: fmt.Sprintf("Result %d", i),
			Link:  fmt.Sprintf("%s/page%d", ts.URL, i),
		}
	}

	extractions := svc.ExtractAll(context.Background(), results)
	if len(extractions) != len(results) {
		t.Fatalf("expected %d extractions, got %d", len(results), len(extractions))
	}
	for i, e := range extractions {
		if e.Title != results[i].Title {
			t.Errorf("position %d: expected %q, got %q", i, results[i].Title, e.Title)
		}
		if !strings.Contains(e.Content, fmt.Sprintf("Page %d.", i)) {
			t.Errorf("position %d: content does not match source page", i)
		}
	}
}

func TestExtractMainContent_StripsBoilerplate(t *testing.T) {
	html := `<html><body>
		<nav>Site navigation links</nav>
		<header>Header banner</header>
		<main><h1>Model pricing</h1><p>Pricing details for the API.</p></main>
		<footer>Copyright notice</footer>
		<script>console.log("tracking")</script>
	</body></html>`

	content, err := ExtractMainContent("https://example.com/pricing", html)
	if err != nil {
		t.Fatalf("ExtractMainContent failed: %v", err)
	}
	if !strings.Contains(content, "Model pricing") || !strings.Contains(content, "Pricing details") {
		t.Errorf("expected main content, got %q", content)
	}
	for _, boilerplate := range []string{"Site navigation", "Header banner", "Copyright", "tracking"} {
		if strings.Contains(content, boilerplate) {
			t.Errorf("boilerplate %q leaked into content", boilerplate)
		}
	}
}

func TestCleanWhitespace(t *testing.T) {
	in := "  Line one   with   gaps  \n\n\n\nLine two\t\ttabs  \n"
	got := cleanWhitespace(in)
	want := "Line one with gaps\n\nLine two tabs"
	if got != want {
		t.Errorf("cleanWhitespace:\n got %q\nwant %q", got, want)
	}
}
