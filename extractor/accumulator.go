package extractor

import "golfwear-extractor/internal/types"

// accumulator deduplicates listing products within one crawl invocation.
// Products are keyed by product ID, or by URL when no ID was found.
type accumulator struct {
	seen     map[string]bool
	products []types.ListingProduct
}

func newAccumulator() *accumulator {
	return &accumulator{seen: make(map[string]bool)}
}

// Add records products and returns the ones not seen before, in order
func (a *accumulator) Add(products []types.ListingProduct) []types.ListingProduct {
	var fresh []types.ListingProduct
	for _, p := range products {
		key := p.ProductID
		if key == "" {
			key = p.URL
		}
		if key == "" || a.seen[key] {
			continue
		}
		a.seen[key] = true
		a.products = append(a.products, p)
		fresh = append(fresh, p)
	}
	return fresh
}

func (a *accumulator) Len() int {
	return len(a.products)
}
