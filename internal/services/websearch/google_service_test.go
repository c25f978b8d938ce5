package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kyamadi/ai-chat-service/internal/common"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *GoogleService {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	svc, err := NewGoogleService(&common.SearchConfig{
		APIKey:         "test-key",
		EngineID:       "test-cx",
		MaxResults:     3,
		RequestTimeout: 5 * time.Second,
	}, common.GetLogger())
	if err != nil {
		t.Fatalf("NewGoogleService failed: %v", err)
	}
	svc.endpoint = ts.URL
	return svc
}

func TestGoogleService_Search(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "best image generation api" {
			t.Errorf("unexpected query: %q", got)
		}
		if got := r.URL.Query().Get("cx"); got != "test-cx" {
			t.Errorf("unexpected engine ID: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"title":"DALL-E API","link":"https://example.com/dalle","snippet":"Image generation"},
			{"title":"Stable Diffusion","link":"https://example.com/sd","snippet":"Open source"},
			{"title":"No link item","link":""}
		]}`))
	})

	results, err := svc.Search(context.Background(), "best image generation api")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results (empty link skipped), got %d", len(results))
	}
	if results[0].Title != "DALL-E API" || results[0].Link != "https://example.com/dalle" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
}

func TestGoogleService_SearchAPIError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	if _, err := svc.Search(context.Background(), "anything"); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestGoogleService_EmptyQuery(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := svc.Search(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestGoogleService_NoItems(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})

	results, err := svc.Search(context.Background(), "obscure query")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
