package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"golfwear-extractor/internal/assemble"
	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/types"
	pkgerrors "golfwear-extractor/pkg/errors"
)

func sampleRecords() []types.AssembledRecord {
	return []types.AssembledRecord{
		{
			URL:         "https://www.callawaygolf.jp/products/C23134100/",
			ProductID:   "C23134100",
			Title:       "25秋冬卡拉威高尔夫男士时尚百搭防泼防水弹力修身夹克",
			Brand:       "Callaway",
			Price:       "¥22,000",
			Gender:      "男",
			Category:    "外套",
			ImageCount:  "2",
			ImageURLs:   "https://img.example.jp/1.jpg\nhttps://img.example.jp/2.jpg",
			Colors:      "ブラック,ネイビー",
			Sizes:       "M,L,LL",
			Description: "撥水ストレッチ素材。\n\n手洗い可",
		},
		{URL: "https://www.callawaygolf.jp/products/C23215201/", ProductID: "C23215201", ImageCount: "0"},
		{URL: "https://www.callawaygolf.jp/products/no-id/", ImageCount: "0"},
	}
}

func TestXLSXSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "records.xlsx")
	s := NewXLSXSink(path, logrus.New())

	n, err := s.Write(context.Background(), sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, assemble.Keys, rows[0])
	assert.Equal(t, "C23134100", rows[1][1])
	assert.Equal(t, "ブラック,ネイビー", rows[1][9])
}

func TestCSVAndJSONSinks(t *testing.T) {
	dir := t.TempDir()
	records := sampleRecords()

	csvPath := filepath.Join(dir, "records.csv")
	_, err := NewCSVSink(csvPath, logrus.New()).Write(context.Background(), records)
	require.NoError(t, err)

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	fromCSV, err := assemble.ReadCSV(f)
	require.NoError(t, err)
	if diff := cmp.Diff(records, fromCSV); diff != "" {
		t.Errorf("CSV round trip mismatch (-want +got):\n%s", diff)
	}

	jsonPath := filepath.Join(dir, "records.json")
	_, err = NewJSONSink(jsonPath, logrus.New()).Write(context.Background(), records)
	require.NoError(t, err)

	g, err := os.Open(jsonPath)
	require.NoError(t, err)
	defer g.Close()
	fromJSON, err := assemble.ReadJSON(g)
	require.NoError(t, err)
	if diff := cmp.Diff(records, fromJSON); diff != "" {
		t.Errorf("JSON round trip mismatch (-want +got):\n%s", diff)
	}
}

type failingClose struct {
	bytes.Buffer
}

func (failingClose) Close() error { return errors.New("disk quota exceeded") }

func TestFileSinks_CloseError(t *testing.T) {
	orig := createFile
	defer func() { createFile = orig }()
	createFile = func(string) (io.WriteCloser, error) { return &failingClose{}, nil }

	for _, s := range []Sink{NewCSVSink("records.csv", logrus.New()), NewJSONSink("records.json", logrus.New())} {
		t.Run(s.Name(), func(t *testing.T) {
			n, err := s.Write(context.Background(), sampleRecords())

			require.Error(t, err)
			assert.Equal(t, 0, n)
			assert.Equal(t, pkgerrors.ErrorTypeSink, pkgerrors.TypeOf(err))
			assert.Contains(t, err.Error(), "disk quota exceeded")
		})
	}
}

func TestLedger(t *testing.T) {
	ctx := context.Background()
	l, err := OpenLedger(":memory:")
	require.NoError(t, err)
	defer l.Close()

	has, err := l.Has(ctx, "feishu:a/b", "C23134100")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, l.Mark(ctx, "feishu:a/b", []string{"C23134100", "C23215201"}, []string{"rec1"}))
	require.NoError(t, l.Mark(ctx, "feishu:a/b", []string{"C23134100"}, nil))

	has, err = l.Has(ctx, "feishu:a/b", "C23134100")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = l.Has(ctx, "feishu:other/table", "C23134100")
	require.NoError(t, err)
	assert.False(t, has)

	n, err := l.Count(ctx, "feishu:a/b")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

type bitableServer struct {
	mu         sync.Mutex
	tokenCalls int
	batches    [][]map[string]any
	authHeader []string
}

func (b *bitableServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v3/tenant_access_token/internal", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.tokenCalls++
		b.mu.Unlock()

		var req tokenRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if req.AppSecret != "secret" {
			json.NewEncoder(w).Encode(map[string]any{"code": 10014, "msg": "app secret invalid"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"code": 0, "msg": "ok", "tenant_access_token": "t-123", "expire": 7200})
	})
	mux.HandleFunc("/bitable/v1/apps/app/tables/tbl/records/batch_create", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Records []struct {
				Fields map[string]any `json:"fields"`
			} `json:"records"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		b.authHeader = append(b.authHeader, r.Header.Get("Authorization"))
		var batch []map[string]any
		var created []map[string]any
		for i, rec := range req.Records {
			batch = append(batch, rec.Fields)
			created = append(created, map[string]any{"record_id": fmt.Sprintf("rec%d_%d", len(b.batches), i), "fields": rec.Fields})
		}
		b.batches = append(b.batches, batch)
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"code": 0, "msg": "success", "data": map[string]any{"records": created}})
	})
	return mux
}

func newFeishuSink(t *testing.T, url, secret string) *FeishuSink {
	t.Helper()
	ledger, err := OpenLedger(":memory:")
	require.NoError(t, err)
	return NewFeishuSink(config.FeishuSettings{
		BaseURL:   url,
		AppID:     "cli_test",
		AppSecret: secret,
		AppToken:  "app",
		TableID:   "tbl",
		BatchSize: 2,
	}, ledger, logrus.New())
}

func TestFeishuSink_BatchesAndSkipsSynced(t *testing.T) {
	backend := &bitableServer{}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	s := newFeishuSink(t, server.URL, "secret")
	defer s.Close()
	ctx := context.Background()

	n, err := s.Write(ctx, sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, backend.batches, 2)
	assert.Len(t, backend.batches[0], 2)
	assert.Len(t, backend.batches[1], 1)
	assert.Equal(t, 1, backend.tokenCalls)
	for _, h := range backend.authHeader {
		assert.Equal(t, "Bearer t-123", h)
	}

	first := backend.batches[0][0]
	assert.Equal(t, float64(2), first[assemble.KeyImageCount])
	assert.Equal(t, "C23134100", first[assemble.KeyProductID])
	assert.Len(t, first, len(assemble.Keys))

	n, err = s.Write(ctx, sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, backend.batches, 2)
}

func TestFeishuSink_OneRowPerKey(t *testing.T) {
	backend := &bitableServer{}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	s := newFeishuSink(t, server.URL, "secret")
	defer s.Close()

	records := []types.AssembledRecord{
		{ProductID: "CGMA1234", URL: "https://shop.example.jp/item/CGMA1234/?color=BK"},
		{ProductID: "CGMA1234", URL: "https://shop.example.jp/item/CGMA1234/?color=WH"},
	}
	n, err := s.Write(context.Background(), records)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, backend.batches, 1)
	require.Len(t, backend.batches[0], 1)
	assert.Equal(t, "https://shop.example.jp/item/CGMA1234/?color=BK", backend.batches[0][0][assemble.KeyURL])

	synced, err := s.ledger.Count(context.Background(), s.target())
	require.NoError(t, err)
	assert.Equal(t, 1, synced)
}

func TestFeishuSink_TokenRejected(t *testing.T) {
	backend := &bitableServer{}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	s := newFeishuSink(t, server.URL, "wrong")
	defer s.Close()

	n, err := s.Write(context.Background(), sampleRecords())

	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, pkgerrors.ErrorTypeSink, pkgerrors.TypeOf(err))
	assert.Contains(t, err.Error(), "app secret invalid")
	assert.Empty(t, backend.batches)
}

func TestFields(t *testing.T) {
	fields := Fields(types.AssembledRecord{ImageCount: "not a number", Title: "标题"})

	assert.Equal(t, 0, fields[assemble.KeyImageCount])
	assert.Equal(t, "标题", fields[assemble.KeyTitle])
}

func TestRecordKey(t *testing.T) {
	assert.Equal(t, "C1234", RecordKey(types.AssembledRecord{ProductID: "C1234", URL: "u"}))
	assert.Equal(t, "u", RecordKey(types.AssembledRecord{URL: "u"}))
}

func TestNew(t *testing.T) {
	settings := &config.Settings{}

	_, err := New("parquet", "out.parquet", settings, logrus.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsFatal(err))

	_, err = New("feishu", "", settings, logrus.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOLFWEAR_FEISHU_APP_ID")

	s, err := New("csv", filepath.Join(t.TempDir(), "x.csv"), settings, logrus.New())
	require.NoError(t, err)
	assert.Equal(t, "csv", s.Name())
}

func TestRedisSink(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 0})
	defer client.Close()

	if _, err := client.Ping(ctx).Result(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	stream := "golfwear:test_records"
	client.Del(ctx, stream)
	defer client.Del(ctx, stream)

	s := NewRedisSink(config.RedisSettings{Addr: "localhost:6379", Stream: stream, MaxLength: 100}, logrus.New())
	defer s.Close()

	n, err := s.Write(ctx, sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	entries, err := client.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "C23134100", entries[0].Values["key"])

	var rec types.AssembledRecord
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["record"].(string)), &rec))
	assert.Equal(t, sampleRecords()[0], rec)
}
