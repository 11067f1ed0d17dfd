package adapters

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/types"
	pkgerrors "golfwear-extractor/pkg/errors"
	"golfwear-extractor/utils"
)

type fakeFetcher struct {
	pages map[string]string
	opts  []utils.FetchOptions
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, opts utils.FetchOptions) (string, error) {
	f.opts = append(f.opts, opts)
	html, ok := f.pages[url]
	if !ok {
		return "", errors.New("not found")
	}
	return html, nil
}

func (f *fakeFetcher) Close() {}

func brandConfig(id, base string) *config.BrandConfig {
	return &config.BrandConfig{Brand: id, BrandID: id, BaseURL: base}
}

const callawayListing = `<html><body>
<div class="product-list">
  <div class="product-tile"><a href="/products/C23134100/">
    <img src="https://img.callawaygolf.jp/C23134100_1.jpg">
    <p class="product-tile__name">ストレッチ ブルゾン</p>
    <p class="product-tile__price">¥２２,０００</p></a></div>
  <div class="product-tile"><a href="/products/C23215201/">
    <img data-src="/img/C23215201.jpg">
    <p class="product-tile__name">ポロシャツ</p>
    <p class="product-tile__price">¥ 13,200</p></a></div>
  <div class="product-tile"><a href="/products/C23134100/">duplicate</a></div>
  <div class="product-tile"><span>no link</span></div>
</div>
</body></html>`

func TestCallaway_ParseListing(t *testing.T) {
	a := NewCallawayAdapter(brandConfig("callaway", "https://www.callawaygolf.jp"), &fakeFetcher{}, logrus.New())

	products, err := a.ParseListing(callawayListing, "https://www.callawaygolf.jp/apparel/mens?page=1", "mens")

	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, types.ListingProduct{
		ProductID: "C23134100",
		Title:     "ストレッチ ブルゾン",
		URL:       "https://www.callawaygolf.jp/products/C23134100/",
		Price:     "¥22,000",
		Image:     "https://img.callawaygolf.jp/C23134100_1.jpg",
		Category:  "mens",
	}, products[0])
	assert.Equal(t, "¥13,200", products[1].Price)
	assert.Equal(t, "https://www.callawaygolf.jp/img/C23215201.jpg", products[1].Image)
}

func TestConfigurable_ParseListing_FallsBackToLinks(t *testing.T) {
	cfg := brandConfig("shop", "https://shop.example.jp")
	a := NewConfigurableAdapter(cfg, &fakeFetcher{}, logrus.New(), nil, nil)

	html := `<body>
<a href="/item/ABC12345/">A</a>
<a href="https://other.example.com/item/XYZ99999/">B</a>
<a href="#top">top</a>
</body>`
	products, err := a.ParseListing(html, "https://shop.example.jp/list?page=1", "tops")

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "ABC12345", products[0].ProductID)
	assert.Equal(t, "https://shop.example.jp/item/ABC12345/", products[0].URL)
	assert.Equal(t, "tops", products[0].Category)
}

const pearlyGatesProduct = `<html><head><meta property="og:site_name" content="TSI"></head>
<body>
<ul class="breadcrumb"><li>HOME</li><li>メンズ</li><li>ポロシャツ</li></ul>
<div class="item-detail">
  <p class="item-detail__brand">PEARLY GATES</p>
  <h1 class="item-detail__name">鹿の子 半袖ポロシャツ</h1>
  <p class="item-detail__price">¥ 18,700（税込）</p>
  <span class="item-detail__color-name">ホワイト</span>
  <span class="item-detail__color-name">ネイビー</span>
  <span class="item-detail__color-name">ホワイト</span>
  <ul class="item-detail__size"><li>5(L)</li><li>4(M)</li></ul>
  <div class="item-detail__images">
    <img src="/img/commodity/0531234567_1.jpg">
    <img data-src="/img/commodity/0531234567_2.jpg" src="data:image/gif;base64,R0lGOD">
  </div>
  <div class="item-detail__comment">吸汗速干素材を使用した定番ポロ。</div>
  <div id="size-table"><table>
    <thead><tr><th>サイズ</th><th>着丈</th><th>身幅</th></tr></thead>
    <tbody><tr><td>M</td><td>68</td><td>52</td></tr><tr><td>L</td><td>70</td><td>54</td></tr></tbody>
  </table></div>
  <div class="item-detail__spec"><dl><dt>品番</dt><dd>053-1234567</dd><dt>素材</dt><dd>綿100%</dd></dl></div>
</div>
<script>var gender = "レディース";</script>
</body></html>`

func TestPearlyGates_ParseProduct(t *testing.T) {
	a := NewPearlyGatesAdapter(brandConfig("pearlygates", "https://www.pearlygates.net"), &fakeFetcher{}, logrus.New())
	url := "https://www.pearlygates.net/item/0531234567/"

	rec, err := a.ParseProduct(pearlyGatesProduct, url)

	require.NoError(t, err)
	assert.Equal(t, url, rec.URL)
	assert.Equal(t, "鹿の子 半袖ポロシャツ", rec.TitleRaw)
	assert.Equal(t, "PEARLY GATES", rec.BrandHint)
	assert.Equal(t, "¥ 18,700（税込）", rec.PriceRaw)
	assert.Equal(t, []types.ColorOption{
		{Name: "ホワイト", IsFirst: true},
		{Name: "ネイビー"},
		{Name: "ホワイト"},
	}, rec.Colors)
	assert.Equal(t, []string{"5(L)", "4(M)"}, rec.Sizes)
	assert.Equal(t, []string{
		"https://www.pearlygates.net/img/commodity/0531234567_1.jpg",
		"https://www.pearlygates.net/img/commodity/0531234567_2.jpg",
	}, rec.Images)
	assert.Equal(t, "吸汗速干素材を使用した定番ポロ。", rec.DescriptionRaw)
	assert.Equal(t, []string{"HOME", "メンズ", "ポロシャツ"}, rec.CategoryHints)
	assert.Equal(t, []types.DetailRow{
		{Label: "品番", Value: "053-1234567"},
		{Label: "素材", Value: "綿100%"},
	}, rec.Details)

	assert.Equal(t, []string{"サイズ", "着丈", "身幅"}, rec.SizeChart.Headers)
	assert.Equal(t, [][]string{{"M", "68", "52"}, {"L", "70", "54"}}, rec.SizeChart.Rows)
	assert.Contains(t, rec.SizeChart.HTML, "<table>")
	assert.Contains(t, rec.SizeChart.Text, "サイズ")

	assert.Contains(t, rec.BodyText, "鹿の子 半袖ポロシャツ")
	assert.NotContains(t, rec.BodyText, "レディース")
}

func TestPearlyGates_ExtractProductClicksSizeTab(t *testing.T) {
	url := "https://www.pearlygates.net/item/0531234567/"
	fetcher := &fakeFetcher{pages: map[string]string{url: pearlyGatesProduct}}
	a := NewPearlyGatesAdapter(brandConfig("pearlygates", "https://www.pearlygates.net"), fetcher, logrus.New())

	rec, err := a.ExtractProduct(context.Background(), url)

	require.NoError(t, err)
	assert.Equal(t, "鹿の子 半袖ポロシャツ", rec.TitleRaw)
	require.Len(t, fetcher.opts, 1)
	assert.Equal(t, utils.FetchOptions{WaitSelector: ".item-detail, h1", ClickSelector: "[data-tab='size']"}, fetcher.opts[0])
}

const callawayRenewedProduct = `<html><body>
<h1 class="p-product-detail__title">ストレッチ ブルゾン</h1>
<p class="p-product-detail__price">¥22,000</p>
</body></html>`

func TestCallaway_WaitCoversWholeChain(t *testing.T) {
	productURL := "https://www.callawaygolf.jp/products/C25128100/"
	listingURL := "https://www.callawaygolf.jp/apparel/mens?page=1"
	fetcher := &fakeFetcher{pages: map[string]string{
		productURL: callawayRenewedProduct,
		listingURL: callawayListing,
	}}
	a := NewCallawayAdapter(brandConfig("callaway", "https://www.callawaygolf.jp"), fetcher, logrus.New())

	rec, err := a.ExtractProduct(context.Background(), productURL)
	require.NoError(t, err)
	assert.Equal(t, "ストレッチ ブルゾン", rec.TitleRaw)

	_, err = a.ExtractListing(context.Background(), listingURL, "mens")
	require.NoError(t, err)

	require.Len(t, fetcher.opts, 2)
	assert.Equal(t, "h1.product-detail__name, h1.p-product-detail__title, h1", fetcher.opts[0].WaitSelector)
	assert.Equal(t, ".product-tile, .p-product-list__item", fetcher.opts[1].WaitSelector)
}

func TestConfigurable_WaitUsesConfiguredChain(t *testing.T) {
	url := "https://shop.example.jp/item/1/"
	cfg := brandConfig("shop", "https://shop.example.jp")
	cfg.Selectors = map[string]any{SelProductWait: []any{"#main", ".detail"}}
	fetcher := &fakeFetcher{pages: map[string]string{url: "<html><body><h1>x</h1></body></html>"}}
	a := NewConfigurableAdapter(cfg, fetcher, logrus.New(), nil, nil)

	_, err := a.ExtractProduct(context.Background(), url)

	require.NoError(t, err)
	require.Len(t, fetcher.opts, 1)
	assert.Equal(t, "#main, .detail", fetcher.opts[0].WaitSelector)
}

func TestConfigurable_ExtractProduct_FetchError(t *testing.T) {
	a := NewConfigurableAdapter(brandConfig("shop", "https://shop.example.jp"), &fakeFetcher{}, logrus.New(), nil, nil)

	_, err := a.ExtractProduct(context.Background(), "https://shop.example.jp/missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get product page")
}

func TestPearlyGates_DescriptionFallback(t *testing.T) {
	a := NewPearlyGatesAdapter(brandConfig("pearlygates", "https://www.pearlygates.net"), &fakeFetcher{}, logrus.New())
	html := `<body><h1>ニット</h1>
<div class="item-detail__material">毛50% アクリル50%</div>
<div class="item-detail__care">手洗い可</div></body>`

	rec, err := a.ParseProduct(html, "https://www.pearlygates.net/item/X1/")

	require.NoError(t, err)
	assert.Equal(t, "毛50% アクリル50%\n\n手洗い可", rec.DescriptionRaw)
}

func TestCallaway_SwatchColors(t *testing.T) {
	a := NewCallawayAdapter(brandConfig("callaway", "https://www.callawaygolf.jp"), &fakeFetcher{}, logrus.New())
	html := `<body><h1>ブルゾン</h1>
<ul><li data-color-name="ブラック"></li><li data-color-name=" ネイビー "></li></ul></body>`

	rec, err := a.ParseProduct(html, "https://www.callawaygolf.jp/products/C23134100/")

	require.NoError(t, err)
	assert.Equal(t, []types.ColorOption{{Name: "ブラック", IsFirst: true}, {Name: "ネイビー"}}, rec.Colors)
}

func TestLeCoq_BrandHint(t *testing.T) {
	a := NewLeCoqAdapter(brandConfig("lecoq", "https://store.descente.co.jp"), &fakeFetcher{}, logrus.New())
	html := `<head><meta property="og:site_name" content="DESCENTE STORE"></head><body><h1>ポロ</h1></body>`

	rec, err := a.ParseProduct(html, "https://store.descente.co.jp/commodity/QGMXJA01/")

	require.NoError(t, err)
	assert.Equal(t, "le coq sportif golf", rec.BrandHint)
}

func TestConfigurable_BrandHintFallsBackToSiteName(t *testing.T) {
	a := NewConfigurableAdapter(brandConfig("shop", "https://shop.example.jp"), &fakeFetcher{}, logrus.New(), nil, nil)
	html := `<head><meta property="og:site_name" content="BRIEFING GOLF"></head><body><h1>キャップ</h1></body>`

	rec, err := a.ParseProduct(html, "https://shop.example.jp/item/BRG231M01/")

	require.NoError(t, err)
	assert.Equal(t, "BRIEFING GOLF", rec.BrandHint)
}

func TestConfigurable_BrandHintFallsBackToConfigBrand(t *testing.T) {
	a := NewConfigurableAdapter(brandConfig("shop", "https://shop.example.jp"), &fakeFetcher{}, logrus.New(), nil, nil)

	rec, err := a.ParseProduct(`<body><h1>キャップ</h1></body>`, "https://shop.example.jp/item/1/")

	require.NoError(t, err)
	assert.Equal(t, "shop", rec.BrandHint)
}

func TestConfigurable_MissLoggedAsExtractionMiss(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	a := NewConfigurableAdapter(brandConfig("shop", "https://shop.example.jp"), &fakeFetcher{}, logger, nil, nil)

	_, err := a.ParseProduct(`<body><h1>キャップ</h1></body>`, "https://shop.example.jp/item/1/")
	require.NoError(t, err)

	var misses []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.DebugLevel && strings.HasPrefix(entry.Message, "[extraction_miss] shop: ") {
			misses = append(misses, entry.Message)
		}
	}
	assert.Contains(t, misses, "[extraction_miss] shop: no price found (tried 3 selectors)")
	assert.Contains(t, misses, "[extraction_miss] shop: no sizes found (tried 3 selectors)")
	for _, m := range misses {
		assert.NotContains(t, m, "no title found")
	}
}

func TestConfigurable_ConfigSelectorsWin(t *testing.T) {
	cfg := brandConfig("shop", "https://shop.example.jp")
	cfg.Selectors = map[string]any{"title": []any{".missing", ".custom-title"}}
	a := NewConfigurableAdapter(cfg, &fakeFetcher{}, logrus.New(), nil, nil)

	rec, err := a.ParseProduct(`<body><h1>wrong</h1><div class="custom-title">正しい</div></body>`, "https://shop.example.jp/x")

	require.NoError(t, err)
	assert.Equal(t, "正しい", rec.TitleRaw)
}

func TestNew(t *testing.T) {
	logger := logrus.New()

	a, err := New(brandConfig("callaway", "https://www.callawaygolf.jp"), &fakeFetcher{}, logger)
	require.NoError(t, err)
	assert.IsType(t, &CallawayAdapter{}, a)

	_, err = New(brandConfig("unknown", "https://shop.example.jp"), &fakeFetcher{}, logger)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrNoAdapter)
	assert.True(t, pkgerrors.IsFatal(err))

	cfg := brandConfig("unknown", "https://shop.example.jp")
	cfg.Selectors = map[string]any{"title": "h1"}
	a, err = New(cfg, &fakeFetcher{}, logger)
	require.NoError(t, err)
	assert.IsType(t, &ConfigurableAdapter{}, a)
}

func TestIsValidSizeChart(t *testing.T) {
	b := NewBaseAdapter(brandConfig("shop", "https://shop.example.jp"), &fakeFetcher{}, logrus.New())

	assert.True(t, b.IsValidSizeChart(&types.SizeChart{Headers: []string{"サイズ", "着丈"}}))
	assert.True(t, b.IsValidSizeChart(&types.SizeChart{Text: "SIZE  M  L\nChest 52 54"}))
	assert.False(t, b.IsValidSizeChart(&types.SizeChart{Text: "送料無料"}))
	assert.False(t, b.IsValidSizeChart(nil))
}

func TestExtractTableData_NoHeaderRow(t *testing.T) {
	b := NewBaseAdapter(brandConfig("shop", "https://shop.example.jp"), &fakeFetcher{}, logrus.New())
	doc, err := b.ParseHTML(`<table><tr><td>サイズ</td><td>胸囲</td></tr><tr><td>M</td><td>96</td></tr></table>`)
	require.NoError(t, err)

	chart, err := b.ExtractTableData(doc.Find("table"))

	require.NoError(t, err)
	assert.Equal(t, []string{"サイズ", "胸囲"}, chart.Headers)
	assert.Equal(t, [][]string{{"M", "96"}}, chart.Rows)
}

func TestProbe(t *testing.T) {
	url := "https://www.callawaygolf.jp/apparel/mens"
	fetcher := &fakeFetcher{pages: map[string]string{url: callawayListing}}
	a := NewCallawayAdapter(brandConfig("callaway", "https://www.callawaygolf.jp"), fetcher, logrus.New())

	results, err := a.Probe(context.Background(), url)

	require.NoError(t, err)
	require.Len(t, results, len(SelectorNames))

	byName := map[string]ProbeResult{}
	for _, r := range results {
		byName[r.Name] = r
	}
	assert.Equal(t, ProbeResult{Name: SelListingItem, Selector: ".product-tile", Matches: 4, Sample: "ストレッチ ブルゾン ¥２２,０００", Tried: 2}, byName[SelListingItem])
	assert.Equal(t, ".product-tile__name", byName[SelListingTitle].Selector)
	assert.Equal(t, 2, byName[SelListingTitle].Matches)
	assert.Empty(t, byName[SelSizeChart].Selector)
	assert.Zero(t, byName[SelSizeChart].Matches)

	_, err = a.Probe(context.Background(), "https://www.callawaygolf.jp/missing")
	assert.ErrorContains(t, err, "failed to get probe page")
}
