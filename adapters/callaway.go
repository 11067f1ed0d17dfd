package adapters

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/types"
	"golfwear-extractor/utils"
)

// CallawayAdapter handles the Callaway Apparel storefront
type CallawayAdapter struct {
	*ConfigurableAdapter
}

var callawaySelectors = map[string][]string{
	SelListingItem:  {".product-tile", ".p-product-list__item"},
	SelListingTitle: {".product-tile__name", ".p-product-list__name"},
	SelListingPrice: {".product-tile__price", ".p-product-list__price"},
	SelTitle:        {"h1.product-detail__name", "h1.p-product-detail__title", "h1"},
	SelPrice:        {".product-detail__price", ".p-product-detail__price"},
	SelColors:       {".color-chip__label", ".p-product-detail__color li"},
	SelSizes:        {".size-chip__label", ".p-product-detail__size li"},
	SelImages:       {".product-detail__gallery img", ".p-product-detail__slider img"},
	SelDescription:  {".product-detail__description", ".p-product-detail__text"},
	SelSizeChart:    {".product-detail__size-chart", ".p-size-table"},
	SelBreadcrumbs:  {".breadcrumb__item", ".c-breadcrumb li"},
	SelDetails:      {".product-detail__spec", ".p-product-detail__spec"},
}

// NewCallawayAdapter creates a new Callaway adapter
func NewCallawayAdapter(cfg *config.BrandConfig, fetcher utils.PageFetcher, logger types.Logger) *CallawayAdapter {
	a := &CallawayAdapter{}
	a.ConfigurableAdapter = NewConfigurableAdapter(cfg, fetcher, logger, callawaySelectors, a.swatchColors)
	return a
}

// swatchColors reads color names from swatch data attributes when the
// swatches carry no visible label.
func (a *CallawayAdapter) swatchColors(doc *goquery.Document, rec *types.RawScrapeRecord) {
	if len(rec.Colors) > 0 {
		return
	}

	doc.Find("[data-color-name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("data-color-name")
		if name = strings.TrimSpace(name); name != "" {
			rec.Colors = append(rec.Colors, types.ColorOption{Name: name, IsFirst: len(rec.Colors) == 0})
		}
	})
	if len(rec.Colors) > 0 {
		a.logger.Debugf("Read %d colors from swatch attributes on %s", len(rec.Colors), rec.URL)
	}
}
