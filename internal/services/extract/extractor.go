package extract

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/kyamadi/ai-chat-service/internal/common"
	"github.com/kyamadi/ai-chat-service/internal/interfaces"
	"github.com/kyamadi/ai-chat-service/internal/models"
)

// Service implements the two-tier extraction strategy. A static fetch
// runs first; when it fails or yields less than the configured minimum
// content length, the page is re-fetched through the headless renderer.
// A nil renderer disables Tier-2.
type Service struct {
	config   *common.ExtractorConfig
	logger   arbor.ILogger
	fetcher  *StaticFetcher
	renderer interfaces.PageRenderer
}

// NewService creates the extractor. The renderer may be nil when
// rendering is disabled or Chrome is unavailable.
func NewService(config *common.ExtractorConfig, renderer interfaces.PageRenderer, logger arbor.ILogger) *Service {
	return &Service{
		config:   config,
		logger:   logger,
		fetcher:  NewStaticFetcher(config, logger),
		renderer: renderer,
	}
}

// Extract runs the two-tier strategy for a single search result.
// Failures never surface as errors; an extraction with empty content
// and TierNone marks an unusable source.
func (s *Service) Extract(ctx context.Context, result interfaces.SearchResult) interfaces.Extraction {
	extraction := interfaces.Extraction{
		Title: result.Title,
		URL:   result.Link,
		Tier:  models.ExtractionTierNone,
	}

	minLength := s.config.MinContentLength
	if minLength <= 0 {
		minLength = 200
	}

	startTime := time.Now()

	content, err := s.fetcher.Fetch(ctx, result.Link)
	if err == nil && len(content) >= minLength {
		extraction.Content = content
		extraction.Tier = models.ExtractionTierStatic
		s.logger.Debug().
			Str("url", result.Link).
			Int("content_length", len(content)).
			Dur("duration", time.Since(startTime)).
			Msg("Static extraction succeeded")
		return extraction
	}

	if err != nil {
		s.logger.Debug().
			Err(err).
			Str("url", result.Link).
			Msg("Static extraction failed, trying render")
	} else {
		s.logger.Debug().
			Str("url", result.Link).
			Int("content_length", len(content)).
			Int("min_length", minLength).
			Msg("Static extraction too short, trying render")
	}

	rendered := s.renderExtract(ctx, result.Link)
	if rendered != "" {
		extraction.Content = rendered
		extraction.Tier = models.ExtractionTierRendered
		return extraction
	}

	// Keep whatever the static pass produced, even below threshold
	if err == nil && content != "" {
		extraction.Content = content
		extraction.Tier = models.ExtractionTierStatic
		return extraction
	}

	s.logger.Warn().
		Str("url", result.Link).
		Msg("Both extraction tiers failed")
	return extraction
}

func (s *Service) renderExtract(ctx context.Context, pageURL string) string {
	if s.renderer == nil {
		return ""
	}

	html, err := s.renderer.Render(ctx, pageURL)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("url", pageURL).
			Msg("Rendered extraction failed")
		return ""
	}

	content, err := ExtractMainContent(pageURL, html)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("url", pageURL).
			Msg("Failed to extract content from rendered page")
		return ""
	}
	return content
}

// ExtractAll processes results with a bounded worker pool, returning one
// extraction per input in the original order
func (s *Service) ExtractAll(ctx context.Context, results []interfaces.SearchResult) []interfaces.Extraction {
	extractions := make([]interfaces.Extraction, len(results))
	if len(results) == 0 {
		return extractions
	}

	concurrency := s.config.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 3
	}
	if concurrency > len(results) {
		concurrency = len(results)
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for i, result := range results {
		wg.Add(1)
		go func(i int, result interfaces.SearchResult) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			extractions[i] = s.Extract(ctx, result)
		}(i, result)
	}
	wg.Wait()

	return extractions
}

// Close releases the renderer
func (s *Service) Close() error {
	if s.renderer != nil {
		return s.renderer.Close()
	}
	return nil
}

var _ interfaces.ExtractorService = (*Service)(nil)
