package adapters

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"golfwear-extractor/internal/textutil"
	"golfwear-extractor/utils"
)

// ProbeResult describes how one selector name resolves on a live page
type ProbeResult struct {
	Name     string
	Selector string
	Matches  int
	Sample   string
	Tried    int
}

// Prober is implemented by adapters whose selector chains can be inspected
type Prober interface {
	Probe(ctx context.Context, pageURL string) ([]ProbeResult, error)
}

// Probe fetches pageURL and reports, for every selector name, the first
// selector in its chain that matches and how many nodes it matched.
func (c *ConfigurableAdapter) Probe(ctx context.Context, pageURL string) ([]ProbeResult, error) {
	html, err := c.GetPageContent(ctx, pageURL, utils.FetchOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get probe page: %w", err)
	}
	doc, err := c.ParseHTML(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return c.ProbeDocument(doc), nil
}

// ProbeDocument is Probe over an already parsed page
func (c *ConfigurableAdapter) ProbeDocument(doc *goquery.Document) []ProbeResult {
	results := make([]ProbeResult, 0, len(SelectorNames))
	for _, name := range SelectorNames {
		chain := c.Selectors(name)
		r := ProbeResult{Name: name, Tried: len(chain)}
		for _, sel := range chain {
			found := doc.Find(sel)
			if found.Length() == 0 {
				continue
			}
			r.Selector = sel
			r.Matches = found.Length()
			r.Sample = textutil.Truncate(textutil.CollapseSpaces(found.First().Text()), 40)
			break
		}
		results = append(results, r)
	}
	return results
}
