package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"golfwear-extractor/adapters"
	"golfwear-extractor/extractor"
	"golfwear-extractor/internal/brands"
	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/title"
	"golfwear-extractor/internal/types"
	"golfwear-extractor/utils"
)

var (
	categoriesFlag      []string
	overwriteLatestFlag bool
	outputDirFlag       string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl --brand <id> [--category <c>...]",
	Short: "Crawls the listing pages of a brand and writes the product list.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, cfg, err := newExtractor()
		if err != nil {
			return err
		}
		defer ex.Close()

		doc, err := ex.CrawlListings(cmd.Context(), categoriesFlag)
		if err != nil {
			return err
		}

		path, err := extractor.WriteDocument(doc, outputDir(cfg), cfg.Output.Filename+"_listing", overwriteLatestFlag)
		if err != nil {
			return err
		}
		logger.Infof("Results written to: %s", path)
		logger.Infof("Total products found: %d", doc.TotalProducts)
		return nil
	},
}

var detailCmd = &cobra.Command{
	Use:   "detail --brand <id> [--category <c>...] [--from <listing.json>]",
	Short: "Crawls listing and product pages of a brand and writes assembled records.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, cfg, err := newExtractor()
		if err != nil {
			return err
		}
		defer ex.Close()

		from, _ := cmd.Flags().GetString("from")
		var products []types.ListingProduct
		if from != "" {
			listing, err := extractor.ReadDocument[types.ListingProduct](from)
			if err != nil {
				return err
			}
			products = extractor.ListedProducts(listing)
		} else {
			listing, err := ex.CrawlListings(cmd.Context(), categoriesFlag)
			if err != nil {
				return err
			}
			products = extractor.ListedProducts(listing)
		}

		doc, err := ex.ExtractDetails(cmd.Context(), products)
		if err != nil {
			return err
		}

		path, err := extractor.WriteDocument(doc, outputDir(cfg), cfg.Output.Filename+"_details", overwriteLatestFlag)
		if err != nil {
			return err
		}

		flagged := 0
		for _, r := range doc.Results {
			if len(r.Flags) > 0 {
				flagged++
			}
		}
		logger.Infof("Results written to: %s", path)
		logger.Infof("Records assembled: %d/%d, flagged: %d", doc.TotalProducts, len(products), flagged)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{crawlCmd, detailCmd} {
		c.Flags().StringSliceVar(&categoriesFlag, "category", nil, "Category to crawl, repeatable (default: all configured)")
		c.Flags().BoolVar(&overwriteLatestFlag, "overwrite-latest", false, "Write <name>_latest.json instead of a timestamped file")
		c.Flags().StringVar(&outputDirFlag, "output-dir", "", "Output directory (default: the brand's output.path)")
		rootCmd.AddCommand(c)
	}
	detailCmd.Flags().String("from", "", "Reuse a listing document instead of crawling listings again")
}

func outputDir(cfg *config.BrandConfig) string {
	if outputDirFlag != "" {
		return outputDirFlag
	}
	return cfg.Output.Path
}

// loadBrand reads the config named by --brand
func loadBrand() (*config.BrandConfig, error) {
	if brandFlag == "" {
		return nil, fmt.Errorf("--brand is required")
	}
	cfg, err := config.LoadBrand(configDirFlag, brandFlag)
	if err != nil {
		return nil, err
	}
	if cfg.DefaultSeason == "" {
		cfg.DefaultSeason = settings.DefaultSeason
	}
	return cfg, nil
}

// newExtractor wires fetcher, adapter, title generator and extractor for
// the brand named by --brand.
func newExtractor() (*extractor.Extractor, *config.BrandConfig, error) {
	cfg, err := loadBrand()
	if err != nil {
		return nil, nil, err
	}

	fetcher, err := utils.NewFetcher(cfg.ScraperConfig(), logger)
	if err != nil {
		return nil, nil, err
	}

	adapter, err := adapters.New(cfg, fetcher, logger)
	if err != nil {
		fetcher.Close()
		return nil, nil, err
	}

	registry := brands.Default()
	titles := title.FromSettings(settings.Title, title.NewRuleGenerator(registry, cfg.DefaultSeason), logger)

	ex, err := extractor.NewExtractor(adapter, titles, registry, logger)
	if err != nil {
		adapter.Close()
		return nil, nil, err
	}

	logger.Infof("Using %s adapter with %s driver", adapter.GetBrandName(), cfg.Scraper.Driver)
	return ex, cfg, nil
}
