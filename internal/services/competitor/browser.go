package competitor

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// BrowserFetcher renders pages in headless Chromium before extraction.
// JavaScript-heavy competitor sites return near-empty HTML to the plain
// HTTP fetcher; this fetcher waits for the network to settle first.
type BrowserFetcher struct {
	pw        *playwright.Playwright
	browser   playwright.Browser
	userAgent string
	timeout   time.Duration
}

// NewBrowserFetcher starts playwright and launches a headless browser
func NewBrowserFetcher(userAgent string, timeout time.Duration) (*BrowserFetcher, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &BrowserFetcher{
		pw:        pw,
		browser:   browser,
		userAgent: userAgent,
		timeout:   timeout,
	}, nil
}

// Fetch renders the page and returns its final HTML
func (f *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	browserCtx, err := f.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 800,
		},
		UserAgent: playwright.String(f.userAgent),
	})
	if err != nil {
		return "", fmt.Errorf("creating browser context: %w", err)
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		return "", fmt.Errorf("creating page: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			page.Close()
		case <-done:
		}
	}()

	if _, err := page.Goto(rawURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(f.timeout.Milliseconds())),
	}); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", rawURL, err)
	}

	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("reading page content: %w", err)
	}

	return html, nil
}

// Close shuts down the browser and playwright driver
func (f *BrowserFetcher) Close() error {
	if err := f.browser.Close(); err != nil {
		return err
	}
	return f.pw.Stop()
}
