package types

import "time"

// SizeChart is the size-chart blob captured from a product page.
// Headers and Rows are filled only when the chart was a real <table>.
type SizeChart struct {
	HTML    string     `json:"html"`
	Text    string     `json:"text"`
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
}

// ColorOption is one color variant as displayed on the page
type ColorOption struct {
	Name    string `json:"name"`
	IsFirst bool   `json:"isFirst"`
}

// DetailRow is one label/value pair from a product details table (th/td or dt/dd)
type DetailRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// RawScrapeRecord is the unstructured bag of fields pulled from one product page.
// Any field may be empty; consumers must apply their own fallbacks.
type RawScrapeRecord struct {
	URL            string        `json:"url"`
	TitleRaw       string        `json:"titleRaw"`
	BrandHint      string        `json:"brandHint"`
	PriceRaw       string        `json:"priceRaw"`
	Colors         []ColorOption `json:"colors"`
	Sizes          []string      `json:"sizes"`
	Images         []string      `json:"images"`
	DescriptionRaw string        `json:"descriptionRaw"`
	SizeChart      SizeChart     `json:"sizeChart"`
	CategoryHints  []string      `json:"categoryHints"`
	Details        []DetailRow   `json:"details,omitempty"`
	BodyText       string        `json:"bodyText,omitempty"`
}

// Gender is the resolved target gender of a product
type Gender string

const (
	GenderUnknown Gender = "unknown"
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnisex  Gender = "unisex"
)

// Label returns the spreadsheet label for the gender. Unknown maps to "".
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "男"
	case GenderFemale:
		return "女"
	case GenderUnisex:
		return "男女同款"
	default:
		return ""
	}
}

// NormalizedRecord is the typed, deduplicated derivation of a RawScrapeRecord.
// It is built once by the normalizer and not mutated afterwards.
type NormalizedRecord struct {
	URL         string    `json:"url"`
	TitleRaw    string    `json:"titleRaw"`
	BrandKey    string    `json:"brandKey"`
	BrandName   string    `json:"brandName"`
	ProductID   string    `json:"productId"`
	Gender      Gender    `json:"gender"`
	Category    string    `json:"category"`
	ColorNames  []string  `json:"colorNames"`
	SizeList    []string  `json:"sizeList"`
	ImageURLs   []string  `json:"imageUrls"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	SizeChart   SizeChart `json:"sizeChart"`
}

// AssembledRecord is the fixed 13-column spreadsheet row. Field order is column order.
// No field carries omitempty: every key is always present.
type AssembledRecord struct {
	URL         string `json:"商品链接"`
	ProductID   string `json:"商品ID"`
	Title       string `json:"商品标题"`
	Brand       string `json:"品牌名"`
	Price       string `json:"价格"`
	Gender      string `json:"性别"`
	Category    string `json:"衣服分类"`
	ImageCount  string `json:"图片总数"`
	ImageURLs   string `json:"图片链接"`
	Colors      string `json:"颜色"`
	Sizes       string `json:"尺码"`
	Description string `json:"详情页文字"`
	SizeChart   string `json:"尺码表"`
}

// ListingProduct is the listing-level record captured from a category page
type ListingProduct struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Price     string `json:"price"`
	Image     string `json:"image,omitempty"`
	Category  string `json:"category"`
}

// PageResult is one entry of the output results array. A failed page carries
// Error and no products; a title that failed validation is listed in Flags.
type PageResult[T any] struct {
	Page     int      `json:"page"`
	URL      string   `json:"url"`
	Products []T      `json:"products"`
	Error    string   `json:"error,omitempty"`
	Flags    []string `json:"flags,omitempty"`
}

// OutputDocument is the JSON artifact written at the end of a crawl
type OutputDocument[T any] struct {
	Brand         string          `json:"brand"`
	BrandID       string          `json:"brandId"`
	ScrapeTime    time.Time       `json:"scrapeTime"`
	TotalProducts int             `json:"totalProducts"`
	Results       []PageResult[T] `json:"results"`
}

// Config holds the scraper settings for one crawl invocation
type Config struct {
	Driver              string
	Headless            bool
	Timeout             time.Duration
	SelectorTimeout     time.Duration
	ViewportWidth       int
	ViewportHeight      int
	UserAgent           string
	RequestDelay        time.Duration
	MaxRetries          int
	MaxConcurrentPages  int
	MaxPagesPerCategory int
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Driver:              "chromedp",
		Headless:            true,
		Timeout:             30 * time.Second,
		SelectorTimeout:     10 * time.Second,
		ViewportWidth:       1366,
		ViewportHeight:      900,
		UserAgent:           "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		RequestDelay:        2 * time.Second,
		MaxRetries:          2,
		MaxConcurrentPages:  3,
		MaxPagesPerCategory: 5,
	}
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
