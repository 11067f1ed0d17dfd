package sink

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"golfwear-extractor/internal/assemble"
	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/types"
	pkgerrors "golfwear-extractor/pkg/errors"
)

// tokenSlack renews the tenant token before Feishu expires it
const tokenSlack = 5 * time.Minute

type tokenRequest struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

type tokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"`
}

type bitableRecord struct {
	RecordID string         `json:"record_id,omitempty"`
	Fields   map[string]any `json:"fields"`
}

type batchCreateRequest struct {
	Records []bitableRecord `json:"records"`
}

type batchCreateResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Records []bitableRecord `json:"records"`
	} `json:"data"`
}

// FeishuSink batch-creates Bitable rows. Keys already in the ledger are
// skipped and new ones are marked after each successful batch.
type FeishuSink struct {
	client   *resty.Client
	settings config.FeishuSettings
	ledger   *Ledger
	limiter  *rate.Limiter
	logger   types.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewFeishuSink creates a Feishu sink. The sink owns ledger and closes it.
func NewFeishuSink(settings config.FeishuSettings, ledger *Ledger, logger types.Logger) *FeishuSink {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(settings.BaseURL, "/"))
	client.SetTimeout(30 * time.Second)
	client.SetHeader("Content-Type", "application/json; charset=utf-8")

	limit := rate.Inf
	if settings.RatePerSecond > 0 {
		limit = rate.Limit(settings.RatePerSecond)
	}
	if settings.BatchSize <= 0 {
		settings.BatchSize = 100
	}

	return &FeishuSink{
		client:   client,
		settings: settings,
		ledger:   ledger,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}
}

func (s *FeishuSink) Name() string { return "feishu" }

// Write pushes the records not yet in the ledger
func (s *FeishuSink) Write(ctx context.Context, records []types.AssembledRecord) (int, error) {
	var pending []types.AssembledRecord
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		key := RecordKey(r)
		if seen[key] {
			s.logger.Debugf("Skipping %s, repeated in this batch", key)
			continue
		}
		seen[key] = true

		done, err := s.ledger.Has(ctx, s.target(), key)
		if err != nil {
			return 0, pkgerrors.NewSink(s.Name(), "ledger lookup failed", err)
		}
		if done {
			s.logger.Debugf("Skipping %s, already synced", key)
			continue
		}
		pending = append(pending, r)
	}

	if skipped := len(records) - len(pending); skipped > 0 {
		s.logger.Infof("Skipping %d records already in Bitable or repeated", skipped)
	}

	written := 0
	for start := 0; start < len(pending); start += s.settings.BatchSize {
		end := min(start+s.settings.BatchSize, len(pending))
		batch := pending[start:end]

		ids, err := s.batchCreate(ctx, batch)
		if err != nil {
			return written, err
		}

		keys := make([]string, len(batch))
		for i, r := range batch {
			keys[i] = RecordKey(r)
		}
		if err := s.ledger.Mark(ctx, s.target(), keys, ids); err != nil {
			return written, pkgerrors.NewSink(s.Name(), "failed to mark synced records", err)
		}

		written += len(batch)
		s.logger.Infof("Synced %d/%d records to Bitable", written, len(pending))
	}

	return written, nil
}

// target names the Bitable table in the ledger
func (s *FeishuSink) target() string {
	return "feishu:" + s.settings.AppToken + "/" + s.settings.TableID
}

func (s *FeishuSink) batchCreate(ctx context.Context, batch []types.AssembledRecord) ([]string, error) {
	token, err := s.tenantToken(ctx)
	if err != nil {
		return nil, err
	}

	body := batchCreateRequest{Records: make([]bitableRecord, len(batch))}
	for i, r := range batch {
		body.Records[i] = bitableRecord{Fields: Fields(r)}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var out batchCreateResponse
	res, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetPathParams(map[string]string{"app": s.settings.AppToken, "table": s.settings.TableID}).
		SetBody(body).
		SetResult(&out).
		Post("/bitable/v1/apps/{app}/tables/{table}/records/batch_create")
	if err != nil {
		return nil, pkgerrors.NewSink(s.Name(), "batch_create request failed", err)
	}
	if res.IsError() || out.Code != 0 {
		return nil, pkgerrors.NewSink(s.Name(), fmt.Sprintf("batch_create rejected: status %d, code %d, %s", res.StatusCode(), out.Code, out.Msg), nil)
	}

	ids := make([]string, len(out.Data.Records))
	for i, r := range out.Data.Records {
		ids[i] = r.RecordID
	}
	return ids, nil
}

// tenantToken returns the cached tenant_access_token, refreshing it when
// it is about to expire.
func (s *FeishuSink) tenantToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expiresAt) {
		return s.token, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var out tokenResponse
	res, err := s.client.R().
		SetContext(ctx).
		SetBody(tokenRequest{AppID: s.settings.AppID, AppSecret: s.settings.AppSecret}).
		SetResult(&out).
		Post("/auth/v3/tenant_access_token/internal")
	if err != nil {
		return "", pkgerrors.NewSink(s.Name(), "token request failed", err)
	}
	if res.IsError() || out.Code != 0 || out.TenantAccessToken == "" {
		return "", pkgerrors.NewSink(s.Name(), fmt.Sprintf("token rejected: status %d, code %d, %s", res.StatusCode(), out.Code, out.Msg), nil)
	}

	s.token = out.TenantAccessToken
	s.expiresAt = time.Now().Add(time.Duration(out.Expire)*time.Second - tokenSlack)
	s.logger.Debugf("Obtained Feishu tenant token, valid for %ds", out.Expire)
	return s.token, nil
}

func (s *FeishuSink) Close() error {
	s.client.GetClient().CloseIdleConnections()
	return s.ledger.Close()
}

// Fields converts a record into Bitable fields. 图片总数 is sent as a
// number; every other column is text.
func Fields(r types.AssembledRecord) map[string]any {
	fields := make(map[string]any, len(assemble.Keys))
	for k, v := range assemble.ToMap(r) {
		fields[k] = v
	}
	if n, err := strconv.Atoi(r.ImageCount); err == nil {
		fields[assemble.KeyImageCount] = n
	} else {
		fields[assemble.KeyImageCount] = 0
	}
	return fields
}
