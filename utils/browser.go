package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/chromedp/chromedp"

	"golfwear-extractor/internal/types"
	pkgerrors "golfwear-extractor/pkg/errors"
)

// settleDelay lets scripts react to a click before the page is re-read
const settleDelay = 500 * time.Millisecond

// BrowserClient renders pages in one headless Chrome for the whole crawl;
// every page gets its own tab.
type BrowserClient struct {
	config        *types.Config
	logger        types.Logger
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
}

// NewBrowserClient launches the browser. A launch failure is fatal.
func NewBrowserClient(config *types.Config, logger types.Logger) (*BrowserClient, error) {
	// Suppress chromedp debug logging
	log.SetOutput(io.Discard)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", config.Headless),
		chromedp.WindowSize(config.ViewportWidth, config.ViewportHeight),
		chromedp.UserAgent(config.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, pkgerrors.NewBrowser("", "failed to launch browser", err)
	}

	logger.Debugf("Browser started (headless=%v, viewport=%dx%d)", config.Headless, config.ViewportWidth, config.ViewportHeight)
	return &BrowserClient{
		config:        config,
		logger:        logger,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
	}, nil
}

// Fetch opens url in a new tab, waits for opts.WaitSelector, optionally
// clicks opts.ClickSelector and waits again, then returns the page HTML.
func (b *BrowserClient) Fetch(ctx context.Context, url string, opts FetchOptions) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	defer cancelTab()

	// close the tab when the caller gives up
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	if err := chromedp.Run(tabCtx); err != nil {
		return "", pkgerrors.NewBrowser("", "failed to open tab", err)
	}

	if err := b.runWithTimeout(tabCtx, b.config.Timeout, chromedp.Navigate(url)); err != nil {
		return "", classify(fmt.Sprintf("failed to navigate to %s", url), err)
	}

	if opts.WaitSelector != "" {
		if err := b.runWithTimeout(tabCtx, b.config.SelectorTimeout, chromedp.WaitReady(opts.WaitSelector, chromedp.ByQuery)); err != nil {
			return "", classify(fmt.Sprintf("selector %s not ready on %s", opts.WaitSelector, url), err)
		}
	}

	if opts.ClickSelector != "" {
		err := b.runWithTimeout(tabCtx, b.config.SelectorTimeout,
			chromedp.Click(opts.ClickSelector, chromedp.ByQuery, chromedp.NodeVisible),
			chromedp.Sleep(settleDelay),
		)
		if err != nil {
			b.logger.Debugf("Click on %s skipped for %s: %v", opts.ClickSelector, url, err)
		} else if opts.WaitSelector != "" {
			_ = b.runWithTimeout(tabCtx, b.config.SelectorTimeout, chromedp.WaitReady(opts.WaitSelector, chromedp.ByQuery))
		}
	}

	var html string
	if err := b.runWithTimeout(tabCtx, b.config.Timeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", classify(fmt.Sprintf("failed to read HTML of %s", url), err)
	}

	b.logger.Debugf("Successfully retrieved page content from %s (%d bytes)", url, len(html))
	return html, nil
}

func (b *BrowserClient) runWithTimeout(tabCtx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// Close shuts the browser down
func (b *BrowserClient) Close() {
	b.cancelBrowser()
	b.cancelAlloc()
}

// classify maps a driver error onto the timeout or navigation type
func classify(message string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.NewTimeout("", message, err)
	}
	return pkgerrors.NewNavigation("", message, err)
}
