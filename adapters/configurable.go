package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/normalize"
	"golfwear-extractor/internal/textutil"
	"golfwear-extractor/internal/types"
	"golfwear-extractor/utils"
)

// Selector names recognized in the "selectors" section of a brand config
const (
	SelListingItem  = "listingItem"
	SelListingLink  = "listingLink"
	SelListingTitle = "listingTitle"
	SelListingPrice = "listingPrice"
	SelListingImage = "listingImage"
	SelListingWait  = "listingWait"
	SelProductWait  = "productWait"
	SelTitle        = "title"
	SelBrand        = "brand"
	SelPrice        = "price"
	SelColors       = "colors"
	SelSizes        = "sizes"
	SelImages       = "images"
	SelDescription  = "description"
	SelSizeChart    = "sizeChart"
	SelSizeChartTab = "sizeChartTab"
	SelBreadcrumbs  = "breadcrumbs"
	SelDetails      = "details"
)

// SelectorNames lists every recognized selector name
var SelectorNames = []string{
	SelListingItem, SelListingLink, SelListingTitle, SelListingPrice, SelListingImage, SelListingWait,
	SelProductWait, SelTitle, SelBrand, SelPrice, SelColors, SelSizes, SelImages,
	SelDescription, SelSizeChart, SelSizeChartTab, SelBreadcrumbs, SelDetails,
}

// genericSelectors are tried when neither the config nor the brand adapter
// names a chain.
var genericSelectors = map[string][]string{
	SelListingItem:  {".product-list .item", ".item-list li", "li.product", ".product-item"},
	SelListingLink:  {"a[href]"},
	SelListingTitle: {".name", ".item-name", ".product-name", ".title"},
	SelListingPrice: {".price", ".item-price"},
	SelListingImage: {"img"},
	SelTitle:        {"h1.product-name", "h1.item-name", ".product-detail h1", "h1"},
	SelBrand:        {".brand-name", ".brand", ".maker"},
	SelPrice:        {".product-price .price", ".price", ".item-price"},
	SelColors:       {".color-list li", ".colors li", ".color-select option:not([value=''])"},
	SelSizes:        {".size-list li", ".sizes li", ".size-select option:not([value=''])"},
	SelImages:       {".product-images img", ".item-images img", ".swiper-slide img", ".slick-slide img"},
	SelDescription:  {".product-description", ".item-description", ".description"},
	SelSizeChart:    {".size-chart", ".sizechart", ".size-table", "table.size"},
	SelBreadcrumbs:  {".breadcrumb li", ".breadcrumbs li", ".topic-path li"},
	SelDetails:      {".product-spec", ".item-spec", ".spec", ".detail-table"},
}

// bodyTextLimit caps the page text kept for the last gender rule
const bodyTextLimit = 5000

// ConfigurableAdapter extracts records using only selector chains. Brand
// adapters wrap it with their own default chains and a post-processing hook.
type ConfigurableAdapter struct {
	*BaseAdapter
	defaults    map[string][]string
	postProcess func(doc *goquery.Document, rec *types.RawScrapeRecord)
}

// NewConfigurableAdapter creates a selector-driven adapter. defaults and
// postProcess may be nil.
func NewConfigurableAdapter(cfg *config.BrandConfig, fetcher utils.PageFetcher, logger types.Logger,
	defaults map[string][]string, postProcess func(*goquery.Document, *types.RawScrapeRecord)) *ConfigurableAdapter {
	return &ConfigurableAdapter{
		BaseAdapter: NewBaseAdapter(cfg, fetcher, logger),
		defaults:    defaults,
		postProcess: postProcess,
	}
}

// GetBrandName returns the brand name from the config
func (c *ConfigurableAdapter) GetBrandName() string {
	return c.config.Brand
}

// Selectors resolves the chain for name: config first, then the brand
// adapter's defaults, then the generic chain.
func (c *ConfigurableAdapter) Selectors(name string) []string {
	if chain := c.config.SelectorOr(name, c.defaults[name]...); len(chain) > 0 {
		return chain
	}
	return genericSelectors[name]
}

func (c *ConfigurableAdapter) first(name string) string {
	if chain := c.Selectors(name); len(chain) > 0 {
		return chain[0]
	}
	return ""
}

// anyOf joins the chain of name into one selector list, matched by the
// first element any alternative finds.
func (c *ConfigurableAdapter) anyOf(name string) string {
	return strings.Join(c.Selectors(name), ", ")
}

// ExtractListing implements BrandAdapter
func (c *ConfigurableAdapter) ExtractListing(ctx context.Context, pageURL, category string) ([]types.ListingProduct, error) {
	c.logger.Debugf("Fetching listing page: %s", pageURL)

	wait := c.anyOf(SelListingWait)
	if wait == "" {
		wait = c.anyOf(SelListingItem)
	}
	html, err := c.GetPageContent(ctx, pageURL, utils.FetchOptions{WaitSelector: wait})
	if err != nil {
		return nil, fmt.Errorf("failed to get listing page: %w", err)
	}

	return c.ParseListing(html, pageURL, category)
}

// ParseListing extracts the listing products from rendered listing HTML
func (c *ConfigurableAdapter) ParseListing(html, pageURL, category string) ([]types.ListingProduct, error) {
	doc, err := c.ParseHTML(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}

	items, ok := utils.FirstMatch(doc, utils.Chain(c.Selectors(SelListingItem), func(d *goquery.Document, sel string) (*goquery.Selection, bool) {
		s := d.Find(sel)
		return s, s.Length() > 0
	})...)
	if !ok {
		c.logger.Debugf("No listing items matched on %s, falling back to product links", pageURL)
		var products []types.ListingProduct
		for _, u := range c.ExtractProductURLs(doc, c.first(SelListingLink), pageURL) {
			products = append(products, types.ListingProduct{
				ProductID: normalize.ProductIDFromURL(u),
				URL:       u,
				Category:  category,
			})
		}
		return products, nil
	}

	seen := make(map[string]bool)
	var products []types.ListingProduct
	items.Each(func(_ int, item *goquery.Selection) {
		p := c.listingProduct(item, pageURL, category)
		if p.URL == "" || seen[p.URL] {
			return
		}
		seen[p.URL] = true
		products = append(products, p)
	})

	c.logger.Debugf("Found %d products on %s", len(products), pageURL)
	return products, nil
}

func (c *ConfigurableAdapter) listingProduct(item *goquery.Selection, pageURL, category string) types.ListingProduct {
	link := item
	if goquery.NodeName(item) != "a" {
		link = item.Find(c.first(SelListingLink)).First()
	}
	href, _ := link.Attr("href")
	if strings.TrimSpace(href) == "" {
		return types.ListingProduct{}
	}
	productURL := c.ResolveURL(pageURL, href)

	title := firstWithin(item, c.Selectors(SelListingTitle))
	if title == "" {
		title = textutil.CollapseSpaces(link.Text())
	}

	priceRaw := firstWithin(item, c.Selectors(SelListingPrice))
	price := normalize.ExtractPrice(priceRaw)
	if price == "" {
		price = priceRaw
	}

	image := ""
	for _, sel := range c.Selectors(SelListingImage) {
		if src := imageSource(item.Find(sel).First()); src != "" {
			image = c.ResolveURL(pageURL, src)
			break
		}
	}

	return types.ListingProduct{
		ProductID: normalize.ProductIDFromURL(productURL),
		Title:     title,
		URL:       productURL,
		Price:     price,
		Image:     image,
		Category:  category,
	}
}

// firstWithin is FirstText scoped to one listing item
func firstWithin(item *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if t := textutil.CollapseSpaces(item.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// ExtractProduct implements BrandAdapter
func (c *ConfigurableAdapter) ExtractProduct(ctx context.Context, productURL string) (*types.RawScrapeRecord, error) {
	c.logger.Debugf("Extracting product page: %s", productURL)

	wait := c.anyOf(SelProductWait)
	if wait == "" {
		wait = c.anyOf(SelTitle)
	}
	html, err := c.GetPageContent(ctx, productURL, utils.FetchOptions{
		WaitSelector:  wait,
		ClickSelector: c.first(SelSizeChartTab),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get product page: %w", err)
	}

	return c.ParseProduct(html, productURL)
}

// ParseProduct extracts the raw fields from rendered product HTML. Every
// field is optional; misses are logged at debug by the helpers.
func (c *ConfigurableAdapter) ParseProduct(html, productURL string) (*types.RawScrapeRecord, error) {
	doc, err := c.ParseHTML(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product page: %w", err)
	}

	rec := &types.RawScrapeRecord{
		URL:            productURL,
		TitleRaw:       c.FirstText(doc, "title", c.Selectors(SelTitle)),
		BrandHint:      c.FirstText(doc, "brand", c.Selectors(SelBrand)),
		PriceRaw:       c.FirstText(doc, "price", c.Selectors(SelPrice)),
		Sizes:          c.AllTexts(doc, "sizes", c.Selectors(SelSizes)),
		Images:         c.ExtractImages(doc, c.Selectors(SelImages), productURL),
		DescriptionRaw: c.FirstText(doc, "description", c.Selectors(SelDescription)),
		SizeChart:      c.ExtractSizeChart(doc, c.Selectors(SelSizeChart)),
		CategoryHints:  c.AllTexts(doc, "breadcrumbs", c.Selectors(SelBreadcrumbs)),
		Details:        c.ExtractDetails(doc, c.Selectors(SelDetails)),
	}

	for i, name := range c.AllTexts(doc, "colors", c.Selectors(SelColors)) {
		rec.Colors = append(rec.Colors, types.ColorOption{Name: name, IsFirst: i == 0})
	}

	if rec.BrandHint == "" {
		site, _ := c.ExtractAttribute(doc, `meta[property="og:site_name"]`, "content")
		rec.BrandHint = utils.FirstNonEmpty(site, c.config.Brand)
	}

	if c.postProcess != nil {
		c.postProcess(doc, rec)
	}

	doc.Find("script, style, noscript").Remove()
	rec.BodyText = textutil.Truncate(textutil.CollapseBlankLines(doc.Find("body").Text()), bodyTextLimit)

	return rec, nil
}
