package adapters

import (
	"context"
	"fmt"

	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/types"
	pkgerrors "golfwear-extractor/pkg/errors"
	"golfwear-extractor/utils"
)

// BrandAdapter turns one brand's listing and product pages into raw records
type BrandAdapter interface {
	// GetBrandName returns the display name of the brand
	GetBrandName() string

	// Config returns the brand configuration the adapter was built from
	Config() *config.BrandConfig

	// ExtractListing fetches one listing page and returns the products on it
	ExtractListing(ctx context.Context, pageURL, category string) ([]types.ListingProduct, error)

	// ExtractProduct fetches one product page and returns its raw fields
	ExtractProduct(ctx context.Context, productURL string) (*types.RawScrapeRecord, error)

	// Close releases the page fetcher
	Close()
}

// New picks the adapter for cfg.BrandID. Brands without a dedicated adapter
// use the config-driven one, which needs at least one configured selector.
func New(cfg *config.BrandConfig, fetcher utils.PageFetcher, logger types.Logger) (BrandAdapter, error) {
	switch cfg.BrandID {
	case "callaway":
		return NewCallawayAdapter(cfg, fetcher, logger), nil
	case "pearlygates", "masterbunny", "jackbunny":
		return NewPearlyGatesAdapter(cfg, fetcher, logger), nil
	case "lecoq":
		return NewLeCoqAdapter(cfg, fetcher, logger), nil
	}

	if len(cfg.Selectors) == 0 {
		return nil, pkgerrors.NewConfiguration(fmt.Sprintf("brand %q has no adapter and no selectors", cfg.BrandID), pkgerrors.ErrNoAdapter)
	}
	return NewConfigurableAdapter(cfg, fetcher, logger, nil, nil), nil
}
