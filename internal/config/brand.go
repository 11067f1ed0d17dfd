// Package config loads per-brand crawl configs and process-wide settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"

	"golfwear-extractor/internal/types"
	pkgerrors "golfwear-extractor/pkg/errors"
)

// Viewport is the browser window size
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ScraperSection configures the page driver
type ScraperSection struct {
	Driver          string   `json:"driver"`
	Headless        *bool    `json:"headless"`
	Timeout         int      `json:"timeout"`
	SelectorTimeout int      `json:"selectorTimeout"`
	Viewport        Viewport `json:"viewport"`
	UserAgent       string   `json:"userAgent"`
}

// OutputSection names where output documents are written
type OutputSection struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// ConstraintsSection holds the politeness limits. Durations are milliseconds.
type ConstraintsSection struct {
	RequestDelay        int `json:"requestDelay"`
	MaxConcurrentPages  int `json:"maxConcurrentPages"`
	MaxPagesPerCategory int `json:"maxPagesPerCategory"`
	MaxRetries          int `json:"maxRetries"`
}

// NormalizeSection holds the brand-specific normalization rules
type NormalizeSection struct {
	MenURLMarkers      []string `json:"menUrlMarkers"`
	WomenURLMarkers    []string `json:"womenUrlMarkers"`
	ProductCodeLabels  []string `json:"productCodeLabels"`
	GenderLabels       []string `json:"genderLabels"`
	ProductCodePattern string   `json:"productCodePattern"`
	ImageMarker        string   `json:"imageMarker"`
	MaxImages          int      `json:"maxImages"`
}

// BrandConfig is one brand's crawl configuration
type BrandConfig struct {
	Brand               string             `json:"brand"`
	BrandID             string             `json:"brandId"`
	BaseURL             string             `json:"baseUrl"`
	Categories          []string           `json:"categories"`
	CategoryURLTemplate string             `json:"categoryUrlTemplate"`
	DefaultSeason       string             `json:"defaultSeason"`
	Selectors           map[string]any     `json:"selectors"`
	Scraper             ScraperSection     `json:"scraper"`
	Output              OutputSection      `json:"output"`
	Constraints         ConstraintsSection `json:"constraints"`
	Normalize           NormalizeSection   `json:"normalize"`
}

// DefaultCategoryURLTemplate is used when a config has no categoryUrlTemplate
const DefaultCategoryURLTemplate = "{base}/{category}?page={page}"

// LoadBrand reads <dir>/<brandID>.json merged with its .local override
func LoadBrand(dir, brandID string) (*BrandConfig, error) {
	return Load(filepath.Join(dir, brandID+".json"))
}

// Load reads a brand config file, merges <name>.local.<ext> over it,
// applies defaults and validates the result.
func Load(name string) (*BrandConfig, error) {
	cfg, err := readMerged[BrandConfig](name)
	if err != nil {
		return nil, pkgerrors.NewConfiguration(fmt.Sprintf("failed to read brand config %s", name), err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, pkgerrors.NewConfiguration(fmt.Sprintf("invalid brand config %s", name), err)
	}
	return &cfg, nil
}

// readMerged reads <name>.<ext> and merges <name>.local.<ext> over it.
// os.ErrNotExist is returned only when neither file exists.
func readMerged[T any](name string) (T, error) {
	var out T
	found := false

	base, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(base) > 0 {
		if err := json5.Unmarshal(base, &out); err != nil {
			return out, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		found = true
	}

	ext := filepath.Ext(name)
	localName := strings.TrimSuffix(name, ext) + ".local" + ext
	local, err := os.ReadFile(localName)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(local) > 0 {
		var override T
		if err := json5.Unmarshal(local, &override); err != nil {
			return out, fmt.Errorf("failed to parse %s: %w", localName, err)
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, fmt.Errorf("failed to merge %s: %w", localName, err)
		}
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}

func (c *BrandConfig) applyDefaults() {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Brand == "" {
		c.Brand = c.BrandID
	}
	if c.CategoryURLTemplate == "" {
		c.CategoryURLTemplate = DefaultCategoryURLTemplate
	}
	if c.Scraper.Driver == "" {
		c.Scraper.Driver = "chromedp"
	}
	if c.Scraper.Headless == nil {
		headless := true
		c.Scraper.Headless = &headless
	}
	if c.Scraper.Timeout <= 0 {
		c.Scraper.Timeout = 30000
	}
	if c.Scraper.SelectorTimeout <= 0 {
		c.Scraper.SelectorTimeout = 10000
	}
	if c.Output.Path == "" {
		c.Output.Path = "output"
	}
	if c.Output.Filename == "" {
		c.Output.Filename = c.BrandID
	}
	if c.Constraints.RequestDelay <= 0 {
		c.Constraints.RequestDelay = 2000
	}
	if c.Constraints.MaxPagesPerCategory <= 0 {
		c.Constraints.MaxPagesPerCategory = 5
	}
	if c.Constraints.MaxRetries < 0 {
		c.Constraints.MaxRetries = 0
	}
	if c.Normalize.MaxImages <= 0 {
		c.Normalize.MaxImages = 8
	}
}

// Validate checks the required keys
func (c *BrandConfig) Validate() error {
	if c.BrandID == "" {
		return fmt.Errorf("brandId is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("baseUrl is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("baseUrl must be an absolute http(s) URL, got: %s", c.BaseURL)
	}
	switch c.Scraper.Driver {
	case "chromedp", "rod", "http":
	default:
		return fmt.Errorf("scraper.driver must be one of chromedp, rod, http, got: %s", c.Scraper.Driver)
	}
	if c.Constraints.MaxConcurrentPages < 0 {
		return fmt.Errorf("constraints.maxConcurrentPages must not be negative")
	}
	return nil
}

// Selector returns the fallback chain configured under name.
// A single string and a list of strings are both accepted.
func (c *BrandConfig) Selector(name string) []string {
	raw, ok := c.Selectors[name]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	default:
		return nil
	}
}

// SelectorOr returns the configured chain for name, or fallback when none is set
func (c *BrandConfig) SelectorOr(name string, fallback ...string) []string {
	if chain := c.Selector(name); len(chain) > 0 {
		return chain
	}
	return fallback
}

// CategoryURL expands the category URL template for one page
func (c *BrandConfig) CategoryURL(category string, page int) string {
	u := c.CategoryURLTemplate
	if u == "" {
		u = DefaultCategoryURLTemplate
	}
	u = strings.ReplaceAll(u, "{base}", c.BaseURL)
	u = strings.ReplaceAll(u, "{category}", strings.Trim(category, "/"))
	u = strings.ReplaceAll(u, "{page}", fmt.Sprintf("%d", page))
	return u
}

// ScraperConfig converts the file sections into the driver configuration
func (c *BrandConfig) ScraperConfig() *types.Config {
	cfg := types.DefaultConfig()
	cfg.Driver = c.Scraper.Driver
	if c.Scraper.Headless != nil {
		cfg.Headless = *c.Scraper.Headless
	}
	cfg.Timeout = time.Duration(c.Scraper.Timeout) * time.Millisecond
	cfg.SelectorTimeout = time.Duration(c.Scraper.SelectorTimeout) * time.Millisecond
	if c.Scraper.Viewport.Width > 0 && c.Scraper.Viewport.Height > 0 {
		cfg.ViewportWidth = c.Scraper.Viewport.Width
		cfg.ViewportHeight = c.Scraper.Viewport.Height
	}
	if c.Scraper.UserAgent != "" {
		cfg.UserAgent = c.Scraper.UserAgent
	}
	cfg.RequestDelay = time.Duration(c.Constraints.RequestDelay) * time.Millisecond
	cfg.MaxRetries = c.Constraints.MaxRetries
	cfg.MaxConcurrentPages = c.Constraints.MaxConcurrentPages
	cfg.MaxPagesPerCategory = c.Constraints.MaxPagesPerCategory
	return cfg
}
