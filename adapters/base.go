package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/textutil"
	"golfwear-extractor/internal/types"
	pkgerrors "golfwear-extractor/pkg/errors"
	"golfwear-extractor/utils"
)

// BaseAdapter provides the DOM helpers shared by all brand adapters.
// Brand adapters embed it and only decide which selectors to try.
type BaseAdapter struct {
	config  *config.BrandConfig
	fetcher utils.PageFetcher
	logger  types.Logger
}

// NewBaseAdapter creates a base adapter around an already started fetcher
func NewBaseAdapter(cfg *config.BrandConfig, fetcher utils.PageFetcher, logger types.Logger) *BaseAdapter {
	return &BaseAdapter{
		config:  cfg,
		fetcher: fetcher,
		logger:  logger,
	}
}

// GetPageContent retrieves the rendered HTML of a page
func (b *BaseAdapter) GetPageContent(ctx context.Context, pageURL string, opts utils.FetchOptions) (string, error) {
	return b.fetcher.Fetch(ctx, pageURL, opts)
}

// ParseHTML parses HTML content into a goquery document
func (b *BaseAdapter) ParseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// ExtractText extracts text from an element using a CSS selector
func (b *BaseAdapter) ExtractText(doc *goquery.Document, selector string) (string, error) {
	element := doc.Find(selector).First()
	if element.Length() == 0 {
		return "", fmt.Errorf("element not found with selector: %s", selector)
	}

	return strings.TrimSpace(element.Text()), nil
}

// ExtractAttribute extracts an attribute value from an element
func (b *BaseAdapter) ExtractAttribute(doc *goquery.Document, selector string, attribute string) (string, error) {
	element := doc.Find(selector).First()
	if element.Length() == 0 {
		return "", fmt.Errorf("element not found with selector: %s", selector)
	}

	value, exists := element.Attr(attribute)
	if !exists {
		return "", fmt.Errorf("attribute %s not found on element %s", attribute, selector)
	}

	return strings.TrimSpace(value), nil
}

// FirstText returns the text of the first selector in the chain that
// yields a non-empty value. A miss is logged at debug and returns "".
func (b *BaseAdapter) FirstText(doc *goquery.Document, field string, selectors []string) string {
	text, ok := utils.FirstMatch(doc, utils.Chain(selectors, func(d *goquery.Document, sel string) (string, bool) {
		t, err := b.ExtractText(d, sel)
		return t, err == nil && t != ""
	})...)
	if !ok {
		b.logMiss(field, selectors)
	}
	return text
}

func (b *BaseAdapter) logMiss(field string, selectors []string) {
	b.logger.Debug(pkgerrors.NewExtractionMiss(b.config.Brand, fmt.Sprintf("no %s found (tried %d selectors)", field, len(selectors))))
}

// AllTexts returns the trimmed texts of every node matched by the first
// selector in the chain that matches anything.
func (b *BaseAdapter) AllTexts(doc *goquery.Document, field string, selectors []string) []string {
	texts, ok := utils.FirstMatch(doc, utils.Chain(selectors, func(d *goquery.Document, sel string) ([]string, bool) {
		var out []string
		d.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if t := textutil.CollapseSpaces(s.Text()); t != "" {
				out = append(out, t)
			}
		})
		return out, len(out) > 0
	})...)
	if !ok {
		b.logMiss(field, selectors)
	}
	return texts
}

// ExtractTableData reads a <table> into headers and ordered rows. The first
// row is the header row when it has th cells or when there is a thead.
func (b *BaseAdapter) ExtractTableData(table *goquery.Selection) (*types.SizeChart, error) {
	if table.Length() == 0 {
		return nil, fmt.Errorf("table not found")
	}

	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("no rows found in table")
	}

	var headers []string
	var data [][]string
	rows.Each(func(i int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, textutil.CollapseSpaces(cell.Text()))
		})
		if len(cells) == 0 {
			return
		}

		isHeader := i == 0 && (tr.Find("th").Length() > 0 || tr.ParentsFiltered("thead").Length() > 0)
		if isHeader {
			headers = cells
			return
		}
		data = append(data, cells)
	})

	if len(headers) == 0 && len(data) > 0 {
		headers, data = data[0], data[1:]
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no data rows found in table")
	}

	return &types.SizeChart{Headers: headers, Rows: data}, nil
}

var sizeChartKeywords = []string{
	"サイズ", "着丈", "身幅", "肩幅", "袖丈", "胸囲", "ウエスト", "ヒップ", "股下", "裄丈",
	"size", "chest", "length", "width", "waist", "hip",
}

// IsValidSizeChart checks if the extracted data looks like a valid size chart
func (b *BaseAdapter) IsValidSizeChart(chart *types.SizeChart) bool {
	if chart == nil {
		return false
	}

	text := chart.Text
	if len(chart.Headers) > 0 {
		text = strings.Join(chart.Headers, " ") + " " + text
	}
	if strings.TrimSpace(text) == "" {
		return false
	}
	return textutil.ContainsAny(strings.ToLower(textutil.Fold(text)), sizeChartKeywords)
}

// ExtractSizeChart captures the first size-chart container in the chain.
// The HTML and text blobs are always kept; headers and rows are filled
// when the container holds a table.
func (b *BaseAdapter) ExtractSizeChart(doc *goquery.Document, selectors []string) types.SizeChart {
	chart, ok := utils.FirstMatch(doc, utils.Chain(selectors, func(d *goquery.Document, sel string) (types.SizeChart, bool) {
		node := d.Find(sel).First()
		if node.Length() == 0 {
			return types.SizeChart{}, false
		}

		html, _ := goquery.OuterHtml(node)
		out := types.SizeChart{
			HTML: strings.TrimSpace(html),
			Text: textutil.CollapseBlankLines(node.Text()),
		}

		table := node
		if goquery.NodeName(node) != "table" {
			table = node.Find("table").First()
		}
		if table.Length() > 0 {
			if parsed, err := b.ExtractTableData(table); err == nil {
				out.Headers, out.Rows = parsed.Headers, parsed.Rows
			}
		}
		return out, b.IsValidSizeChart(&out)
	})...)
	if !ok {
		b.logger.Debugf("No size chart found (tried %d selectors)", len(selectors))
	}
	return chart
}

// ExtractImages collects image URLs from the first selector that matches
// any image. src, data-src and the first srcset candidate are read, made
// absolute against pageURL and deduplicated in order.
func (b *BaseAdapter) ExtractImages(doc *goquery.Document, selectors []string, pageURL string) []string {
	images, ok := utils.FirstMatch(doc, utils.Chain(selectors, func(d *goquery.Document, sel string) ([]string, bool) {
		var out []string
		d.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if src := imageSource(s); src != "" {
				out = append(out, b.ResolveURL(pageURL, src))
			}
		})
		return out, len(out) > 0
	})...)
	if !ok {
		b.logger.Debugf("No images found on %s", pageURL)
	}
	return b.RemoveDuplicateURLs(images)
}

func imageSource(s *goquery.Selection) string {
	for _, attr := range []string{"data-src", "data-original", "src"} {
		if v, ok := s.Attr(attr); ok {
			v = strings.TrimSpace(v)
			if v != "" && !strings.HasPrefix(v, "data:") {
				return v
			}
		}
	}
	if v, ok := s.Attr("srcset"); ok {
		if first := strings.Fields(strings.Split(v, ",")[0]); len(first) > 0 {
			return first[0]
		}
	}
	return ""
}

// ExtractDetails reads label/value rows from spec tables (th/td) and
// definition lists (dt/dd) under the first matching selector.
func (b *BaseAdapter) ExtractDetails(doc *goquery.Document, selectors []string) []types.DetailRow {
	rows, ok := utils.FirstMatch(doc, utils.Chain(selectors, func(d *goquery.Document, sel string) ([]types.DetailRow, bool) {
		var out []types.DetailRow
		d.Find(sel).Each(func(_ int, root *goquery.Selection) {
			root.Find("tr").Each(func(_ int, tr *goquery.Selection) {
				label := textutil.CollapseSpaces(tr.Find("th").First().Text())
				value := textutil.CollapseSpaces(tr.Find("td").First().Text())
				if label != "" && value != "" {
					out = append(out, types.DetailRow{Label: label, Value: value})
				}
			})
			root.Find("dt").Each(func(_ int, dt *goquery.Selection) {
				label := textutil.CollapseSpaces(dt.Text())
				value := textutil.CollapseSpaces(dt.NextFiltered("dd").Text())
				if label != "" && value != "" {
					out = append(out, types.DetailRow{Label: label, Value: value})
				}
			})
		})
		return out, len(out) > 0
	})...)
	if !ok {
		b.logger.Debugf("No details table found (tried %d selectors)", len(selectors))
	}
	return rows
}

// ResolveURL makes href absolute against base. Unparseable input is returned as is.
func (b *BaseAdapter) ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// RemoveDuplicateURLs removes duplicate URLs from the slice, keeping order
func (b *BaseAdapter) RemoveDuplicateURLs(urls []string) []string {
	seen := make(map[string]bool)
	var uniqueURLs []string

	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		uniqueURLs = append(uniqueURLs, u)
	}

	return uniqueURLs
}

// ExtractProductURLs finds product links on a listing page. Links that
// leave the brand's host are dropped.
func (b *BaseAdapter) ExtractProductURLs(doc *goquery.Document, linkSelector string, pageURL string) []string {
	host := ""
	if u, err := url.Parse(b.config.BaseURL); err == nil {
		host = u.Hostname()
	}

	var productURLs []string
	doc.Find(linkSelector).Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || strings.TrimSpace(href) == "" || strings.HasPrefix(href, "#") {
			return
		}

		abs := b.ResolveURL(pageURL, href)
		if parsed, err := url.Parse(abs); err == nil && (host == "" || parsed.Hostname() == host) {
			productURLs = append(productURLs, abs)
		}
	})

	return b.RemoveDuplicateURLs(productURLs)
}

// Config returns the brand configuration
func (b *BaseAdapter) Config() *config.BrandConfig {
	return b.config
}

// Close releases the fetcher
func (b *BaseAdapter) Close() {
	if b.fetcher != nil {
		b.fetcher.Close()
	}
}
