package utils

import (
	"context"
	"fmt"

	"golfwear-extractor/internal/types"
	pkgerrors "golfwear-extractor/pkg/errors"
)

// FetchOptions describes what to wait for on a rendered page
type FetchOptions struct {
	// WaitSelector must appear before the page counts as loaded
	WaitSelector string
	// ClickSelector is clicked once after load (e.g. a size-chart tab);
	// the page is then re-waited. A missing element is not an error.
	ClickSelector string
}

// PageFetcher returns the rendered HTML of a page
type PageFetcher interface {
	Fetch(ctx context.Context, url string, opts FetchOptions) (string, error)
	Close()
}

// NewFetcher creates the fetcher named by config.Driver. Browser drivers
// start their browser here, so a launch failure surfaces before any page.
func NewFetcher(config *types.Config, logger types.Logger) (PageFetcher, error) {
	switch config.Driver {
	case "", "chromedp":
		client, err := NewBrowserClient(config, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "rod":
		client, err := NewRodClient(config, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "http":
		return NewHTTPClient(config, logger), nil
	default:
		return nil, pkgerrors.NewConfiguration(fmt.Sprintf("unknown driver %q", config.Driver), nil)
	}
}
