package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/kyamadi/ai-chat-service/internal/common"
	"github.com/kyamadi/ai-chat-service/internal/interfaces"
)

const defaultEndpoint = "https://www.googleapis.com/customsearch/v1"

// GoogleService implements WebSearchService using the Google
// Programmable Search JSON API
type GoogleService struct {
	config   *common.SearchConfig
	logger   arbor.ILogger
	client   *http.Client
	endpoint string
}

// googleSearchResponse mirrors the fields we consume from the JSON API
type googleSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// NewGoogleService creates a new Google search service
func NewGoogleService(config *common.SearchConfig, logger arbor.ILogger) (*GoogleService, error) {
	if config.APIKey == "" || config.EngineID == "" {
		return nil, fmt.Errorf("search API key and engine ID are required (set via AICHAT_SEARCH_API_KEY and AICHAT_SEARCH_ENGINE_ID)")
	}

	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &GoogleService{
		config:   config,
		logger:   logger,
		client:   &http.Client{Timeout: timeout},
		endpoint: defaultEndpoint,
	}, nil
}

// Search runs the query against the Programmable Search API and returns
// up to the configured number of results
func (s *GoogleService) Search(ctx context.Context, query string) ([]interfaces.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	maxResults := s.config.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}

	params := url.Values{}
	params.Set("key", s.config.APIKey)
	params.Set("cx", s.config.EngineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxResults))
	if s.config.DomainScope != "" {
		params.Set("siteSearch", s.config.DomainScope)
		params.Set("siteSearchFilter", "i")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	startTime := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	var payload googleSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]interfaces.SearchResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.Link == "" {
			continue
		}
		results = append(results, interfaces.SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
		if len(results) >= maxResults {
			break
		}
	}

	s.logger.Debug().
		Str("query", query).
		Int("results", len(results)).
		Dur("duration", time.Since(startTime)).
		Msg("Web search completed")

	return results, nil
}
