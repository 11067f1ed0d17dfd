package extractor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golfwear-extractor/adapters"
	"golfwear-extractor/internal/brands"
	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/title"
	"golfwear-extractor/internal/types"
	pkgerrors "golfwear-extractor/pkg/errors"
	"golfwear-extractor/utils"
)

// Extractor orchestrates one brand's crawl: listing pages, detail pages in
// bounded batches, and the normalize, title, assemble pipeline.
type Extractor struct {
	adapter  adapters.BrandAdapter
	config   *config.BrandConfig
	scraper  *types.Config
	pipeline *Pipeline
	logger   types.Logger
	now      func() time.Time
}

// NewExtractor creates an extractor around an adapter. The adapter's fetcher
// is owned by the extractor from here on and released by Close.
func NewExtractor(adapter adapters.BrandAdapter, titles title.Generator, registry *brands.Registry, logger types.Logger) (*Extractor, error) {
	cfg := adapter.Config()

	pipeline, err := NewBrandPipeline(cfg, titles, registry, logger)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		adapter:  adapter,
		config:   cfg,
		scraper:  cfg.ScraperConfig(),
		pipeline: pipeline,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// CrawlListings walks up to maxPagesPerCategory listing pages per category
// and stops a category at the first page that adds no new product. Failed
// pages are recorded inline; only fatal errors are returned.
func (e *Extractor) CrawlListings(ctx context.Context, categories []string) (*types.OutputDocument[types.ListingProduct], error) {
	if len(categories) == 0 {
		categories = e.config.Categories
	}
	if len(categories) == 0 {
		return nil, pkgerrors.NewConfiguration(fmt.Sprintf("brand %s has no categories", e.config.BrandID), nil)
	}

	startTime := time.Now()
	e.logger.Infof("Starting %s listing crawl over %d categories", e.config.Brand, len(categories))

	doc := newDocument[types.ListingProduct](e.config, e.now())
	acc := newAccumulator()

	for _, category := range categories {
		for page := 1; page <= e.scraper.MaxPagesPerCategory; page++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			pageURL := e.config.CategoryURL(category, page)
			products, err := e.adapter.ExtractListing(ctx, pageURL, category)
			if err != nil {
				if pkgerrors.IsFatal(err) {
					return nil, err
				}
				e.logger.Warnf("Listing page %s failed: %v", pageURL, err)
				doc.Results = append(doc.Results, types.PageResult[types.ListingProduct]{
					Page:     page,
					URL:      pageURL,
					Products: []types.ListingProduct{},
					Error:    err.Error(),
				})
				break
			}

			fresh := acc.Add(products)
			if len(fresh) == 0 {
				e.logger.Debugf("No new products on %s, category %s done", pageURL, category)
				break
			}

			e.logger.Infof("Category %s page %d: %d new products", category, page, len(fresh))
			doc.Results = append(doc.Results, types.PageResult[types.ListingProduct]{
				Page:     page,
				URL:      pageURL,
				Products: fresh,
			})

			if err := e.pause(ctx); err != nil {
				return nil, err
			}
		}
	}

	doc.TotalProducts = acc.Len()
	e.logger.Infof("%s listing crawl completed in %v: %d products", e.config.Brand, time.Since(startTime), doc.TotalProducts)
	return doc, nil
}

// CrawlDetails runs the listing crawl and then extracts every listed product
func (e *Extractor) CrawlDetails(ctx context.Context, categories []string) (*types.OutputDocument[types.AssembledRecord], error) {
	listing, err := e.CrawlListings(ctx, categories)
	if err != nil {
		return nil, err
	}
	return e.ExtractDetails(ctx, ListedProducts(listing))
}

// ExtractDetails extracts product pages in batches of maxConcurrentPages.
// Each batch is awaited as a whole and followed by the request delay.
func (e *Extractor) ExtractDetails(ctx context.Context, products []types.ListingProduct) (*types.OutputDocument[types.AssembledRecord], error) {
	startTime := time.Now()
	workers := utils.WorkerCount(e.scraper.MaxConcurrentPages, e.logger)
	e.logger.Infof("Extracting %d product pages, %d at a time", len(products), workers)

	doc := newDocument[types.AssembledRecord](e.config, e.now())
	doc.Results = make([]types.PageResult[types.AssembledRecord], 0, len(products))

	for start := 0; start < len(products); start += workers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+workers, len(products))
		batch := products[start:end]
		results := make([]types.PageResult[types.AssembledRecord], len(batch))
		fatal := make([]error, len(batch))

		var wg sync.WaitGroup
		for i, p := range batch {
			i, p := i, p
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], fatal[i] = e.extractOne(ctx, start+i+1, p)
			}()
		}
		wg.Wait()

		for _, err := range fatal {
			if err != nil {
				return nil, err
			}
		}

		for _, r := range results {
			doc.TotalProducts += len(r.Products)
		}
		doc.Results = append(doc.Results, results...)
		e.logger.Infof("Processed %d/%d product pages", end, len(products))

		if end < len(products) {
			if err := e.pause(ctx); err != nil {
				return nil, err
			}
		}
	}

	e.logger.Infof("%s detail crawl completed in %v: %d/%d records", e.config.Brand, time.Since(startTime), doc.TotalProducts, len(products))
	return doc, nil
}

// extractOne returns the page result and, separately, a fatal error that
// must abort the crawl.
func (e *Extractor) extractOne(ctx context.Context, index int, p types.ListingProduct) (types.PageResult[types.AssembledRecord], error) {
	result := types.PageResult[types.AssembledRecord]{
		Page:     index,
		URL:      p.URL,
		Products: []types.AssembledRecord{},
	}

	raw, err := e.adapter.ExtractProduct(ctx, p.URL)
	if err != nil {
		if pkgerrors.IsFatal(err) {
			return result, err
		}
		e.logger.Warnf("Product page %s failed: %v", p.URL, err)
		result.Error = err.Error()
		return result, nil
	}

	record, flags := e.Process(ctx, raw)
	result.Products = append(result.Products, record)
	result.Flags = flags
	return result, nil
}

// Process runs one raw record through the brand's pipeline
func (e *Extractor) Process(ctx context.Context, raw *types.RawScrapeRecord) (types.AssembledRecord, []string) {
	return e.pipeline.Process(ctx, raw)
}

func (e *Extractor) pause(ctx context.Context) error {
	if e.scraper.RequestDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(e.scraper.RequestDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func newDocument[T any](cfg *config.BrandConfig, at time.Time) *types.OutputDocument[T] {
	return &types.OutputDocument[T]{
		Brand:      cfg.Brand,
		BrandID:    cfg.BrandID,
		ScrapeTime: at,
		Results:    []types.PageResult[T]{},
	}
}

// Close cleans up resources
func (e *Extractor) Close() {
	if e.adapter != nil {
		e.adapter.Close()
	}
}

// ListedProducts flattens a listing document into its products, in order
func ListedProducts(doc *types.OutputDocument[types.ListingProduct]) []types.ListingProduct {
	var products []types.ListingProduct
	for _, r := range doc.Results {
		products = append(products, r.Products...)
	}
	return products
}
