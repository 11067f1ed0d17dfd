package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golfwear-extractor/adapters"
	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/types"
	pkgerrors "golfwear-extractor/pkg/errors"
	"golfwear-extractor/utils"
)

const base = "https://shop.example.jp"

// fakeFetcher serves fixture pages and tracks how many fetches overlap
type fakeFetcher struct {
	mu       sync.Mutex
	pages    map[string]string
	errs     map[string]error
	fetched  []string
	inFlight int
	peak     int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, _ utils.FetchOptions) (string, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	time.Sleep(5 * time.Millisecond)

	if err, ok := f.errs[url]; ok {
		return "", err
	}
	html, ok := f.pages[url]
	if !ok {
		return "", errors.New("page not found")
	}
	return html, nil
}

func (f *fakeFetcher) Close() {}

func listingItem(id, name string) string {
	return `<li class="product-item"><a href="/item/` + id + `/"><span class="name">` + name +
		`</span><span class="price">¥19,800</span></a></li>`
}

func listingPage(items ...string) string {
	return "<html><body><ul>" + strings.Join(items, "\n") + "</ul></body></html>"
}

const jacketPage = `<html><body>
<ul class="breadcrumb"><li>HOME</li><li>メンズ</li><li>アウター</li></ul>
<h1>【25AW】タイトリスト メンズ 撥水 ストレッチ ブルゾン</h1>
<p class="price">¥19,800（税込）</p>
<ul class="color-list"><li>ブラック</li><li>ネイビー</li><li>ブラック</li></ul>
<ul class="size-list"><li>LL</li><li>M</li><li>L</li></ul>
<div class="product-images">
  <img src="/img/commodity/TKMS2401_1.jpg">
  <img src="/img/commodity/TKMS2401_2.jpg">
  <img src="/img/banner/sale.jpg">
</div>
<div class="product-description">撥水ストレッチ素材のブルゾン。</div>
<div class="spec"><dl><dt>品番</dt><dd>TKMS2401</dd></dl></div>
</body></html>`

const downPage = `<html><body>
<h1>25AW タイトリスト ユニセックス 撥水 ストレッチ 中綿 ダウン ジャケット</h1>
<div class="spec"><table>
  <tr><th>性別</th><td>ユニセックス</td></tr>
  <tr><th>品番</th><td>TKUN2402</td></tr>
</table></div>
</body></html>`

func newFixtureFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: map[string]string{
			base + "/mens?page=1": listingPage(listingItem("TKMS2401", "ブルゾン"), listingItem("TKUN2402", "ダウン")),
			base + "/mens?page=2": listingPage(listingItem("TKMS2401", "ブルゾン"), listingItem("TKWS2403", "スカート")),
			base + "/mens?page=3": listingPage(listingItem("TKUN2402", "ダウン")),
			base + "/mens?page=4": listingPage(listingItem("TKXX2499", "never reached")),
			base + "/item/TKMS2401/": jacketPage,
			base + "/item/TKUN2402/": downPage,
		},
		errs: map[string]error{},
	}
}

func newTestExtractor(t *testing.T, fetcher *fakeFetcher) *Extractor {
	t.Helper()
	cfg := &config.BrandConfig{
		Brand:         "Titleist",
		BrandID:       "titleist",
		BaseURL:       base,
		Categories:    []string{"mens"},
		DefaultSeason: "25春夏",
		Constraints:   config.ConstraintsSection{MaxConcurrentPages: 2, MaxPagesPerCategory: 5},
	}
	adapter := adapters.NewConfigurableAdapter(cfg, fetcher, logrus.New(), nil, nil)

	e, err := NewExtractor(adapter, nil, nil, logrus.New())
	require.NoError(t, err)
	e.now = func() time.Time { return time.Date(2025, 10, 1, 9, 30, 0, 0, time.UTC) }
	return e
}

func TestCrawlListings_StopsAtFirstPageWithoutNewProducts(t *testing.T) {
	fetcher := newFixtureFetcher()
	e := newTestExtractor(t, fetcher)

	doc, err := e.CrawlListings(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "titleist", doc.BrandID)
	assert.Equal(t, 3, doc.TotalProducts)
	require.Len(t, doc.Results, 2)
	assert.Len(t, doc.Results[0].Products, 2)
	require.Len(t, doc.Results[1].Products, 1)
	assert.Equal(t, "TKWS2403", doc.Results[1].Products[0].ProductID)

	assert.NotContains(t, fetcher.fetched, base+"/mens?page=4")

	var ids []string
	for _, p := range ListedProducts(doc) {
		ids = append(ids, p.ProductID)
	}
	assert.Equal(t, []string{"TKMS2401", "TKUN2402", "TKWS2403"}, ids)
}

func TestCrawlListings_FailedPageRecordedInline(t *testing.T) {
	fetcher := newFixtureFetcher()
	e := newTestExtractor(t, fetcher)

	doc, err := e.CrawlListings(context.Background(), []string{"womens", "mens"})

	require.NoError(t, err)
	require.NotEmpty(t, doc.Results)
	assert.Equal(t, base+"/womens?page=1", doc.Results[0].URL)
	assert.Contains(t, doc.Results[0].Error, "failed to get listing page")
	assert.Empty(t, doc.Results[0].Products)
	assert.Equal(t, 3, doc.TotalProducts)
}

func TestCrawlListings_NoCategories(t *testing.T) {
	e := newTestExtractor(t, newFixtureFetcher())
	e.config.Categories = nil

	_, err := e.CrawlListings(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsFatal(err))
}

func TestCrawlDetails(t *testing.T) {
	fetcher := newFixtureFetcher()
	e := newTestExtractor(t, fetcher)

	doc, err := e.CrawlDetails(context.Background(), nil)

	require.NoError(t, err)
	require.Len(t, doc.Results, 3)
	assert.Equal(t, 2, doc.TotalProducts)
	assert.LessOrEqual(t, fetcher.peak, 2)

	jacket := doc.Results[0]
	assert.Equal(t, 1, jacket.Page)
	assert.Empty(t, jacket.Error)
	assert.Empty(t, jacket.Flags)
	require.Len(t, jacket.Products, 1)
	rec := jacket.Products[0]
	assert.Equal(t, base+"/item/TKMS2401/", rec.URL)
	assert.Equal(t, "TKMS2401", rec.ProductID)
	assert.Equal(t, "25秋冬泰特利斯特高尔夫男士新款防泼防水弹力修身夹克", rec.Title)
	assert.Equal(t, "Titleist", rec.Brand)
	assert.Equal(t, "¥19,800", rec.Price)
	assert.Equal(t, "男", rec.Gender)
	assert.Equal(t, "2", rec.ImageCount)
	assert.Equal(t, base+"/img/commodity/TKMS2401_1.jpg\n"+base+"/img/commodity/TKMS2401_2.jpg", rec.ImageURLs)
	assert.Equal(t, "ブラック,ネイビー", rec.Colors)
	assert.Equal(t, "M,L,LL", rec.Sizes)
	assert.Equal(t, "撥水ストレッチ素材のブルゾン。", rec.Description)

	down := doc.Results[1]
	require.Len(t, down.Products, 1)
	assert.Equal(t, "男女同款", down.Products[0].Gender)
	assert.Equal(t, "25秋冬泰特利斯特高尔夫男女同款防泼防水保暖蓄热弹力修身羽绒", down.Products[0].Title)
	assert.Contains(t, down.Flags, "title: does not end with a category word")

	missing := doc.Results[2]
	assert.Equal(t, 3, missing.Page)
	assert.Empty(t, missing.Products)
	assert.Contains(t, missing.Error, "failed to get product page")
}

func TestCrawlDetails_FatalErrorAborts(t *testing.T) {
	fetcher := newFixtureFetcher()
	fetcher.errs[base+"/item/TKUN2402/"] = pkgerrors.NewBrowser("titleist", "tab crashed", nil)
	e := newTestExtractor(t, fetcher)

	doc, err := e.CrawlDetails(context.Background(), nil)

	require.Error(t, err)
	assert.Nil(t, doc)
	assert.True(t, pkgerrors.IsFatal(err))
}

func TestCrawlListings_Cancelled(t *testing.T) {
	e := newTestExtractor(t, newFixtureFetcher())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.CrawlListings(ctx, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcess_EmptyRecord(t *testing.T) {
	e := newTestExtractor(t, newFixtureFetcher())

	rec, flags := e.Process(context.Background(), &types.RawScrapeRecord{})

	assert.Equal(t, "0", rec.ImageCount)
	assert.Equal(t, "", rec.ProductID)
	assert.NotEmpty(t, rec.Title)
	assert.Empty(t, flags)
}

func TestAccumulator(t *testing.T) {
	acc := newAccumulator()

	fresh := acc.Add([]types.ListingProduct{
		{ProductID: "A1234", URL: base + "/a"},
		{URL: base + "/no-id"},
		{ProductID: "A1234", URL: base + "/a?color=2"},
	})
	assert.Len(t, fresh, 2)

	fresh = acc.Add([]types.ListingProduct{{URL: base + "/no-id"}, {ProductID: "B5678"}})
	require.Len(t, fresh, 1)
	assert.Equal(t, "B5678", fresh[0].ProductID)
	assert.Equal(t, 3, acc.Len())
}

func TestWriteDocument(t *testing.T) {
	dir := t.TempDir()
	doc := &types.OutputDocument[types.AssembledRecord]{
		Brand:         "Titleist",
		BrandID:       "titleist",
		ScrapeTime:    time.Date(2025, 10, 1, 9, 30, 5, 0, time.UTC),
		TotalProducts: 1,
		Results: []types.PageResult[types.AssembledRecord]{
			{Page: 1, URL: base + "/item/A/", Products: []types.AssembledRecord{{URL: base + "/item/A/", Title: "<标题>"}}},
			{Page: 2, URL: base + "/item/B/", Products: []types.AssembledRecord{}, Error: "timeout"},
		},
	}

	path, err := WriteDocument(doc, dir, "titleist_details", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "titleist_details_20251001_093005.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"商品标题": "<标题>"`)

	back, err := ReadDocument[types.AssembledRecord](path)
	require.NoError(t, err)
	assert.Equal(t, doc.BrandID, back.BrandID)
	assert.True(t, doc.ScrapeTime.Equal(back.ScrapeTime))

	records := Records(back)
	require.Len(t, records, 1)
	assert.Equal(t, "<标题>", records[0].Title)
}

func TestWriteDocument_OverwriteLatest(t *testing.T) {
	dir := t.TempDir()
	doc := &types.OutputDocument[types.ListingProduct]{BrandID: "titleist", ScrapeTime: time.Now()}

	first, err := WriteDocument(doc, dir, "titleist_list", true)
	require.NoError(t, err)
	doc.TotalProducts = 7
	second, err := WriteDocument(doc, dir, "titleist_list", true)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "titleist_list_latest.json", filepath.Base(second))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
