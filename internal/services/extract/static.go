package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/kyamadi/ai-chat-service/internal/common"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// StaticFetcher performs Tier-1 extraction: a plain HTTP fetch followed
// by content selection with goquery. No JavaScript is executed.
type StaticFetcher struct {
	config  *common.ExtractorConfig
	logger  arbor.ILogger
	client  *http.Client
	limiter *rate.Limiter
}

// NewStaticFetcher creates a Tier-1 fetcher. Outbound requests share a
// rate limiter so bursts of search results don't hammer hosts.
func NewStaticFetcher(config *common.ExtractorConfig, logger arbor.ILogger) *StaticFetcher {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	interval := config.RequestRate
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	return &StaticFetcher{
		config:  config,
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Fetch downloads the page and extracts its main content as markdown
func (f *StaticFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}

	maxBody := f.config.MaxBodySize
	if maxBody <= 0 {
		maxBody = 10 * 1024 * 1024
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	return ExtractMainContent(pageURL, string(body))
}

// ExtractMainContent pulls the readable text out of an HTML document.
// Boilerplate elements are stripped, then the main content region is
// selected and converted to markdown.
func ExtractMainContent(pageURL, html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav, header, footer, aside, iframe, form").Remove()

	selection := doc.Find("main, article, [role=main]").First()
	if selection.Length() == 0 {
		selection = doc.Find("body")
	}
	if selection.Length() == 0 {
		return "", fmt.Errorf("no content found in document")
	}

	contentHTML, err := goquery.OuterHtml(selection)
	if err != nil {
		return "", fmt.Errorf("failed to serialize content: %w", err)
	}

	converter := md.NewConverter(pageURL, true, nil)
	markdown, err := converter.ConvertString(contentHTML)
	if err != nil {
		// Fall back to plain text when markdown conversion chokes
		markdown = selection.Text()
	}

	return cleanWhitespace(markdown), nil
}

// cleanWhitespace collapses runs of whitespace while keeping paragraph
// breaks readable
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceRegex.ReplaceAllString(line, " "))
		if line == "" {
			if !blank && len(cleaned) > 0 {
				cleaned = append(cleaned, "")
			}
			blank = true
			continue
		}
		blank = false
		cleaned = append(cleaned, line)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
