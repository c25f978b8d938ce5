package interfaces

import "context"

// SearchResult is a single web search hit
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
}

// WebSearchService performs external web searches for the response
// pipeline. Implementations return at most the configured number of
// results; provider failures surface as errors and the caller decides
// how to degrade.
type WebSearchService interface {
	// Search runs the query against the configured search provider
	Search(ctx context.Context, query string) ([]SearchResult, error)
}
