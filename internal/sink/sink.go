// Package sink pushes assembled records to files, spreadsheets and streams.
package sink

import (
	"context"
	"fmt"

	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/types"
	pkgerrors "golfwear-extractor/pkg/errors"
)

// Sink receives assembled records
type Sink interface {
	// Name identifies the sink in logs and in the ledger
	Name() string

	// Write delivers records and returns how many were written
	Write(ctx context.Context, records []types.AssembledRecord) (int, error)

	Close() error
}

// Kinds lists the sink names accepted by New
var Kinds = []string{"xlsx", "csv", "json", "redis", "feishu"}

// New creates the sink named kind. File sinks write to out; the network
// sinks take their connection from settings.
func New(kind, out string, settings *config.Settings, logger types.Logger) (Sink, error) {
	switch kind {
	case "xlsx":
		return NewXLSXSink(out, logger), nil
	case "csv":
		return NewCSVSink(out, logger), nil
	case "json":
		return NewJSONSink(out, logger), nil
	case "redis":
		return NewRedisSink(settings.Redis, logger), nil
	case "feishu":
		if err := settings.FeishuReady(); err != nil {
			return nil, pkgerrors.NewConfiguration("feishu sink is not configured", err)
		}
		ledger, err := OpenLedger(settings.Ledger.Path)
		if err != nil {
			return nil, err
		}
		return NewFeishuSink(settings.Feishu, ledger, logger), nil
	default:
		return nil, pkgerrors.NewConfiguration(fmt.Sprintf("unknown sink %q", kind), nil)
	}
}

// RecordKey identifies a record across runs: the product ID, or the URL
// when no ID was resolved.
func RecordKey(r types.AssembledRecord) string {
	if r.ProductID != "" {
		return r.ProductID
	}
	return r.URL
}
