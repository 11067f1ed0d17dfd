// Package normalize turns a RawScrapeRecord into a NormalizedRecord.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"golfwear-extractor/internal/brands"
	"golfwear-extractor/internal/textutil"
	"golfwear-extractor/internal/types"
)

// DefaultProductCodePattern is the shape of a brand product code
const DefaultProductCodePattern = `^[A-Z]{2,}[A-Z0-9]{4,}$`

// Options holds the brand-specific rules. Zero fields fall back to DefaultOptions.
type Options struct {
	BrandKey           string
	MenURLMarkers      []string
	WomenURLMarkers    []string
	ProductCodeLabels  []string
	GenderLabels       []string
	ProductCodePattern string
	ImageMarker        string
	MaxImages          int
}

// DefaultOptions returns the rules shared by most Japanese storefronts
func DefaultOptions() Options {
	return Options{
		MenURLMarkers:      []string{"/ds_m/", "/mens/", "/men/"},
		WomenURLMarkers:    []string{"/ds_f/", "/ds_l/", "/womens/", "/women/", "/ladies/"},
		ProductCodeLabels:  []string{"品番", "商品番号", "メーカー品番", "型番", "商品コード", "Style No", "Item No"},
		GenderLabels:       []string{"性別", "対象", "対象性別", "Gender"},
		ProductCodePattern: DefaultProductCodePattern,
		ImageMarker:        "/commodity/",
		MaxImages:          8,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if len(o.MenURLMarkers) == 0 {
		o.MenURLMarkers = def.MenURLMarkers
	}
	if len(o.WomenURLMarkers) == 0 {
		o.WomenURLMarkers = def.WomenURLMarkers
	}
	if len(o.ProductCodeLabels) == 0 {
		o.ProductCodeLabels = def.ProductCodeLabels
	}
	if len(o.GenderLabels) == 0 {
		o.GenderLabels = def.GenderLabels
	}
	if o.ProductCodePattern == "" {
		o.ProductCodePattern = def.ProductCodePattern
	}
	if o.ImageMarker == "" {
		o.ImageMarker = def.ImageMarker
	}
	if o.MaxImages <= 0 {
		o.MaxImages = def.MaxImages
	}
	return o
}

// Normalizer applies the normalization cascades for one brand
type Normalizer struct {
	opts     Options
	brands   *brands.Registry
	logger   types.Logger
	codeFull *regexp.Regexp
	codeScan *regexp.Regexp
}

// New creates a normalizer. An invalid product code pattern is an error.
func New(opts Options, registry *brands.Registry, logger types.Logger) (*Normalizer, error) {
	opts = opts.withDefaults()

	body := strings.TrimSuffix(strings.TrimPrefix(opts.ProductCodePattern, "^"), "$")
	// a table value must be the whole code, whatever anchors the brand wrote
	full, err := regexp.Compile(`^(?:` + body + `)$`)
	if err != nil {
		return nil, fmt.Errorf("invalid product code pattern %q: %w", opts.ProductCodePattern, err)
	}
	scan, err := regexp.Compile(`\b(?:` + body + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("invalid product code pattern %q: %w", opts.ProductCodePattern, err)
	}

	if registry == nil {
		registry = brands.Default()
	}

	return &Normalizer{
		opts:     opts,
		brands:   registry,
		logger:   logger,
		codeFull: full,
		codeScan: scan,
	}, nil
}

// Normalize builds the NormalizedRecord. It never fails: every cascade has
// a safe default and misses are only logged.
func (n *Normalizer) Normalize(raw *types.RawScrapeRecord) *types.NormalizedRecord {
	if raw == nil {
		raw = &types.RawScrapeRecord{}
	}

	brand := n.resolveBrand(raw)

	productID := n.ResolveProductID(raw)
	if productID == "" {
		n.logger.Warnf("No product ID resolved for %s", raw.URL)
	}

	rec := &types.NormalizedRecord{
		URL:         strings.TrimSpace(raw.URL),
		TitleRaw:    textutil.CollapseSpaces(raw.TitleRaw),
		BrandKey:    brand.Key,
		BrandName:   brand.Name,
		ProductID:   productID,
		Gender:      n.ResolveGender(raw),
		Category:    InferCategory(raw.CategoryHints, raw.TitleRaw),
		ColorNames:  NormalizeColors(raw.Colors),
		SizeList:    NormalizeSizes(raw.Sizes),
		ImageURLs:   n.FilterImages(raw.Images, productID),
		Description: textutil.CollapseBlankLines(raw.DescriptionRaw),
		Price:       ExtractPrice(raw.PriceRaw),
		SizeChart:   raw.SizeChart,
	}

	if rec.BrandName == "" {
		rec.BrandName = strings.TrimSpace(raw.BrandHint)
	}

	n.logger.Debugf("Normalized %s: id=%q gender=%s category=%q colors=%d sizes=%d images=%d",
		rec.URL, rec.ProductID, rec.Gender, rec.Category, len(rec.ColorNames), len(rec.SizeList), len(rec.ImageURLs))
	return rec
}

// resolveBrand prefers the configured brand key and falls back to the text.
func (n *Normalizer) resolveBrand(raw *types.RawScrapeRecord) brands.Brand {
	if b, ok := n.brands.Lookup(n.opts.BrandKey); ok {
		return b
	}
	return n.brands.Resolve(raw.BrandHint, raw.TitleRaw)
}

var (
	pricePattern = regexp.MustCompile(`[¥$]\s?\d+(?:,\d+)*`)
	yenPattern   = regexp.MustCompile(`(\d+(?:,\d+)*)\s*円`)
)

// ExtractPrice returns the first currency-symbol price in text, as display text.
// A trailing 円 amount is rendered with ¥ when no symbol form is present.
func ExtractPrice(text string) string {
	folded := textutil.Fold(text)
	if m := pricePattern.FindString(folded); m != "" {
		return strings.Join(strings.Fields(m), "")
	}
	if m := yenPattern.FindStringSubmatch(folded); m != nil {
		return "¥" + m[1]
	}
	return ""
}
