// Package assemble maps a normalized record and its title onto the fixed
// 13-column spreadsheet row.
package assemble

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"golfwear-extractor/internal/textutil"
	"golfwear-extractor/internal/types"
)

// Column keys in spreadsheet order
const (
	KeyURL         = "商品链接"
	KeyProductID   = "商品ID"
	KeyTitle       = "商品标题"
	KeyBrand       = "品牌名"
	KeyPrice       = "价格"
	KeyGender      = "性别"
	KeyCategory    = "衣服分类"
	KeyImageCount  = "图片总数"
	KeyImageURLs   = "图片链接"
	KeyColors      = "颜色"
	KeySizes       = "尺码"
	KeyDescription = "详情页文字"
	KeySizeChart   = "尺码表"
)

// Keys is the exact key set of an assembled record, in column order
var Keys = []string{
	KeyURL, KeyProductID, KeyTitle, KeyBrand, KeyPrice, KeyGender, KeyCategory,
	KeyImageCount, KeyImageURLs, KeyColors, KeySizes, KeyDescription, KeySizeChart,
}

const listSeparator = ","

// Assemble builds the row. A nil record yields a row of empty strings.
func Assemble(rec *types.NormalizedRecord, title string) types.AssembledRecord {
	if rec == nil {
		return types.AssembledRecord{Title: title}
	}

	return types.AssembledRecord{
		URL:         rec.URL,
		ProductID:   rec.ProductID,
		Title:       title,
		Brand:       rec.BrandName,
		Price:       rec.Price,
		Gender:      rec.Gender.Label(),
		Category:    rec.Category,
		ImageCount:  strconv.Itoa(len(rec.ImageURLs)),
		ImageURLs:   strings.Join(rec.ImageURLs, "\n"),
		Colors:      strings.Join(rec.ColorNames, listSeparator),
		Sizes:       strings.Join(rec.SizeList, listSeparator),
		Description: rec.Description,
		SizeChart:   FormatSizeChart(rec.SizeChart),
	}
}

// FormatSizeChart renders a parsed chart as a text table, one row per line.
// Unparsed charts fall back to their captured text.
func FormatSizeChart(chart types.SizeChart) string {
	if len(chart.Headers) == 0 || len(chart.Rows) == 0 {
		return textutil.CollapseBlankLines(chart.Text)
	}

	t := table.NewWriter()
	header := make(table.Row, len(chart.Headers))
	for i, h := range chart.Headers {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, r := range chart.Rows {
		row := make(table.Row, len(r))
		for i, cell := range r {
			row[i] = cell
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	return t.Render()
}

// Values returns the row values in column order
func Values(r types.AssembledRecord) []string {
	return []string{
		r.URL, r.ProductID, r.Title, r.Brand, r.Price, r.Gender, r.Category,
		r.ImageCount, r.ImageURLs, r.Colors, r.Sizes, r.Description, r.SizeChart,
	}
}

// FromValues is the inverse of Values. Missing trailing values stay empty.
func FromValues(values []string) types.AssembledRecord {
	v := make([]string, len(Keys))
	copy(v, values)
	return types.AssembledRecord{
		URL: v[0], ProductID: v[1], Title: v[2], Brand: v[3], Price: v[4], Gender: v[5], Category: v[6],
		ImageCount: v[7], ImageURLs: v[8], Colors: v[9], Sizes: v[10], Description: v[11], SizeChart: v[12],
	}
}

// ToMap returns the row keyed by column name
func ToMap(r types.AssembledRecord) map[string]string {
	values := Values(r)
	m := make(map[string]string, len(Keys))
	for i, k := range Keys {
		m[k] = values[i]
	}
	return m
}

// Completeness reports which keys are absent and which are present but empty.
// Only missing keys make a record incomplete.
type Completeness struct {
	MissingKeys []string `json:"missingKeys"`
	EmptyKeys   []string `json:"emptyKeys"`
}

// Complete reports whether every key is present
func (c Completeness) Complete() bool {
	return len(c.MissingKeys) == 0
}

// ValidateCompleteness checks a decoded record (e.g. a parsed output row)
// against the key set.
func ValidateCompleteness(record map[string]any) Completeness {
	c := Completeness{MissingKeys: []string{}, EmptyKeys: []string{}}
	for _, k := range Keys {
		v, ok := record[k]
		if !ok {
			c.MissingKeys = append(c.MissingKeys, k)
			continue
		}
		if isEmpty(v) {
			c.EmptyKeys = append(c.EmptyKeys, k)
		}
	}
	return c
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	default:
		return false
	}
}
