package utils

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"golfwear-extractor/internal/types"
	pkgerrors "golfwear-extractor/pkg/errors"
)

// RodClient renders pages with go-rod using stealth pages, for storefronts
// that block plain headless Chrome.
type RodClient struct {
	config   *types.Config
	logger   types.Logger
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRodClient launches and connects the browser. A launch failure is fatal.
func NewRodClient(config *types.Config, logger types.Logger) (*RodClient, error) {
	l := launcher.New().Headless(config.Headless)
	u, err := l.Launch()
	if err != nil {
		return nil, pkgerrors.NewBrowser("", "failed to launch browser", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, pkgerrors.NewBrowser("", "failed to connect to browser", err)
	}

	logger.Debugf("Rod browser started (headless=%v)", config.Headless)
	return &RodClient{config: config, logger: logger, launcher: l, browser: browser}, nil
}

// Fetch implements PageFetcher
func (r *RodClient) Fetch(ctx context.Context, url string, opts FetchOptions) (string, error) {
	page, err := stealth.Page(r.browser)
	if err != nil {
		return "", pkgerrors.NewBrowser("", "failed to open page", err)
	}
	defer page.Close()

	page = page.Context(ctx)
	_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  r.config.ViewportWidth,
		Height: r.config.ViewportHeight,
	})
	_ = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.config.UserAgent})

	nav := page.Timeout(r.config.Timeout)
	if err := nav.Navigate(url); err != nil {
		return "", classify(fmt.Sprintf("failed to navigate to %s", url), err)
	}
	if err := nav.WaitLoad(); err != nil {
		return "", classify(fmt.Sprintf("page %s did not load", url), err)
	}

	if opts.WaitSelector != "" {
		if _, err := page.Timeout(r.config.SelectorTimeout).Element(opts.WaitSelector); err != nil {
			return "", classify(fmt.Sprintf("selector %s not ready on %s", opts.WaitSelector, url), err)
		}
	}

	if opts.ClickSelector != "" {
		el, err := page.Timeout(r.config.SelectorTimeout).Element(opts.ClickSelector)
		if err != nil {
			r.logger.Debugf("Click target %s not found on %s: %v", opts.ClickSelector, url, err)
		} else if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			r.logger.Debugf("Click on %s failed for %s: %v", opts.ClickSelector, url, err)
		} else {
			_ = page.Timeout(r.config.SelectorTimeout).WaitStable(settleDelay)
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", classify(fmt.Sprintf("failed to read HTML of %s", url), err)
	}

	r.logger.Debugf("Successfully retrieved page content from %s (%d bytes)", url, len(html))
	return html, nil
}

// Close shuts the browser down
func (r *RodClient) Close() {
	if err := r.browser.Close(); err != nil {
		r.logger.Debugf("Rod browser close: %v", err)
	}
	r.launcher.Kill()
}
