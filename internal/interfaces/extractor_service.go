package interfaces

import (
	"context"

	"github.com/kyamadi/ai-chat-service/internal/models"
)

// Extraction is the outcome of extracting one search result.
// Content may be empty when both extraction tiers failed; Title and URL
// are always populated from the originating search result.
type Extraction struct {
	Title   string
	URL     string
	Content string
	Tier    models.ExtractionTier
}

// ExtractorService turns search results into article bodies. ExtractAll
// processes results concurrently but returns extractions in the same
// order as the input slice, one entry per result.
type ExtractorService interface {
	// Extract fetches and extracts a single page
	Extract(ctx context.Context, result SearchResult) Extraction

	// ExtractAll fetches and extracts all results, preserving input order
	ExtractAll(ctx context.Context, results []SearchResult) []Extraction

	// Close releases renderer resources
	Close() error
}

// PageRenderer renders a page with a headless browser and returns its
// HTML after JavaScript execution. Used as the Tier-2 fallback when a
// static fetch yields too little content.
type PageRenderer interface {
	Render(ctx context.Context, url string) (string, error)
	Close() error
}
