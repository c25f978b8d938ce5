package extract

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/kyamadi/ai-chat-service/internal/common"
	"github.com/kyamadi/ai-chat-service/internal/interfaces"
)

// ChromeRenderer implements PageRenderer with a pool of headless Chrome
// contexts. Instances are allocated round-robin; a render holds its
// browser only for the duration of one page.
type ChromeRenderer struct {
	config           *common.ExtractorConfig
	logger           arbor.ILogger
	browsers         []context.Context
	browserCancels   []context.CancelFunc
	allocatorCancels []context.CancelFunc
	mu               sync.Mutex
	currentIndex     int
	initialized      bool
}

// NewChromeRenderer creates the renderer pool. Browser instances are
// launched eagerly so a broken Chrome install fails at startup rather
// than mid-request.
func NewChromeRenderer(config *common.ExtractorConfig, logger arbor.ILogger) (*ChromeRenderer, error) {
	r := &ChromeRenderer{
		config: config,
		logger: logger,
	}

	instances := config.RenderInstances
	if instances <= 0 {
		instances = 1
	}

	logger.Info().
		Int("pool_size", instances).
		Msg("Initializing headless browser pool")

	successCount := 0
	var lastErr error
	for i := 0; i < instances; i++ {
		if err := r.createBrowserInstance(i); err != nil {
			lastErr = err
			logger.Warn().
				Err(err).
				Int("browser_index", i).
				Msg("Failed to create browser instance")
			continue
		}
		successCount++
	}

	if successCount == 0 {
		r.cleanupInstances()
		return nil, fmt.Errorf("failed to create any browser instances: %w", lastErr)
	}

	r.initialized = true
	logger.Info().
		Int("browsers_created", successCount).
		Int("requested", instances).
		Msg("Headless browser pool initialized")

	return r, nil
}

func (r *ChromeRenderer) createBrowserInstance(index int) error {
	startTime := time.Now()

	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(r.config.UserAgent),
	)

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(
		context.Background(),
		allocatorOpts...,
	)

	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	testCtx, testCancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer testCancel()

	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return fmt.Errorf("browser instance failed startup test: %w", err)
	}

	r.browsers = append(r.browsers, browserCtx)
	r.browserCancels = append(r.browserCancels, browserCancel)
	r.allocatorCancels = append(r.allocatorCancels, allocatorCancel)

	r.logger.Debug().
		Int("browser_index", index).
		Dur("startup_time", time.Since(startTime)).
		Msg("Browser instance created")

	return nil
}

// Render navigates to the URL, waits for JavaScript to settle, and
// returns the resulting document HTML
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	browserCtx, err := r.getBrowser()
	if err != nil {
		return "", err
	}

	timeout := r.config.RenderTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	waitTime := r.config.RenderWaitTime
	if waitTime <= 0 {
		waitTime = 3 * time.Second
	}

	pageCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	// Propagate caller cancellation into the browser context
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-pageCtx.Done():
		}
	}()

	var html string
	err = chromedp.Run(pageCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
		chromedp.Navigate(url),
		chromedp.Sleep(waitTime),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("render failed: %w", err)
	}

	return html, nil
}

func (r *ChromeRenderer) getBrowser() (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized || len(r.browsers) == 0 {
		return nil, fmt.Errorf("browser pool not initialized")
	}

	index := r.currentIndex % len(r.browsers)
	r.currentIndex = (r.currentIndex + 1) % len(r.browsers)
	return r.browsers[index], nil
}

// Close shuts down all browser instances
func (r *ChromeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return nil
	}

	r.logger.Info().
		Int("browser_count", len(r.browsers)).
		Msg("Shutting down headless browser pool")

	r.cleanupInstances()
	r.initialized = false
	return nil
}

// cleanupInstances cancels all contexts (must be called with mutex held)
func (r *ChromeRenderer) cleanupInstances() {
	for _, cancel := range r.browserCancels {
		if cancel != nil {
			cancel()
		}
	}
	for _, cancel := range r.allocatorCancels {
		if cancel != nil {
			cancel()
		}
	}
	r.browsers = nil
	r.browserCancels = nil
	r.allocatorCancels = nil
	r.currentIndex = 0
}

var _ interfaces.PageRenderer = (*ChromeRenderer)(nil)
