package adapters

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/textutil"
	"golfwear-extractor/internal/types"
	"golfwear-extractor/utils"
)

// PearlyGatesAdapter handles the TSI Groove & Sports storefront used by
// PEARLY GATES, MASTER BUNNY and JACK BUNNY. The size chart sits behind a tab.
type PearlyGatesAdapter struct {
	*ConfigurableAdapter
}

var pearlyGatesSelectors = map[string][]string{
	SelListingItem:  {".item-list__item", ".product-list li"},
	SelListingTitle: {".item-list__name", ".product-name"},
	SelListingPrice: {".item-list__price", ".price"},
	SelProductWait:  {".item-detail", "h1"},
	SelTitle:        {".item-detail__name", "h1"},
	SelBrand:        {".item-detail__brand"},
	SelPrice:        {".item-detail__price"},
	SelColors:       {".item-detail__color-name", ".color-list li"},
	SelSizes:        {".item-detail__size li", ".size-list li"},
	SelImages:       {".item-detail__images img", ".swiper-slide img"},
	SelDescription:  {".item-detail__comment", ".item-detail__description"},
	SelSizeChart:    {"#size-table", ".item-detail__size-table"},
	SelSizeChartTab: {"[data-tab='size']", ".js-size-tab"},
	SelBreadcrumbs:  {".breadcrumb li", ".topic-path li"},
	SelDetails:      {".item-detail__spec", ".item-detail__info"},
}

// NewPearlyGatesAdapter creates a new PEARLY GATES adapter
func NewPearlyGatesAdapter(cfg *config.BrandConfig, fetcher utils.PageFetcher, logger types.Logger) *PearlyGatesAdapter {
	a := &PearlyGatesAdapter{}
	a.ConfigurableAdapter = NewConfigurableAdapter(cfg, fetcher, logger, pearlyGatesSelectors, a.descriptionFallback)
	return a
}

// descriptionFallback joins the material and care notes when the product
// comment is empty.
func (a *PearlyGatesAdapter) descriptionFallback(doc *goquery.Document, rec *types.RawScrapeRecord) {
	if rec.DescriptionRaw != "" {
		return
	}

	var parts []string
	doc.Find(".item-detail__material, .item-detail__care").Each(func(_ int, s *goquery.Selection) {
		if t := textutil.CollapseBlankLines(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) > 0 {
		rec.DescriptionRaw = strings.Join(parts, "\n\n")
	}
}
