package adapters

import (
	"github.com/PuerkitoBio/goquery"

	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/types"
	"golfwear-extractor/utils"
)

// LeCoqAdapter handles the le coq sportif golf storefront
type LeCoqAdapter struct {
	*ConfigurableAdapter
}

var leCoqSelectors = map[string][]string{
	SelListingItem:  {".product-grid__item", ".goods-list li"},
	SelListingTitle: {".product-grid__name", ".goods-name"},
	SelListingPrice: {".product-grid__price", ".goods-price"},
	SelTitle:        {".goods-detail__name", "h1"},
	SelPrice:        {".goods-detail__price", ".price"},
	SelColors:       {".goods-detail__color .name", ".color-list li"},
	SelSizes:        {".goods-detail__size .name", ".size-list li"},
	SelImages:       {".goods-detail__slider .swiper-slide img", ".goods-detail__thumbs img"},
	SelDescription:  {".goods-detail__description", ".goods-comment"},
	SelSizeChart:    {".goods-detail__size-chart", ".size-chart"},
	SelBreadcrumbs:  {".breadcrumbs li", ".breadcrumb li"},
	SelDetails:      {".goods-detail__spec", ".spec-table"},
}

const leCoqBrandHint = "le coq sportif golf"

// NewLeCoqAdapter creates a new le coq sportif golf adapter
func NewLeCoqAdapter(cfg *config.BrandConfig, fetcher utils.PageFetcher, logger types.Logger) *LeCoqAdapter {
	return &LeCoqAdapter{
		ConfigurableAdapter: NewConfigurableAdapter(cfg, fetcher, logger, leCoqSelectors, fixBrandHint),
	}
}

// fixBrandHint replaces the site name, which names the parent company,
// with the golf line.
func fixBrandHint(_ *goquery.Document, rec *types.RawScrapeRecord) {
	rec.BrandHint = leCoqBrandHint
}
