package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/types"
	pkgerrors "golfwear-extractor/pkg/errors"
)

// RedisSink appends one stream entry per record for downstream listing
// workers. The stream is trimmed to roughly MaxLength entries.
type RedisSink struct {
	client    *redis.Client
	stream    string
	maxLength int64
	logger    types.Logger
}

// NewRedisSink creates a Redis stream sink
func NewRedisSink(settings config.RedisSettings, logger types.Logger) *RedisSink {
	client := redis.NewClient(&redis.Options{
		Addr: settings.Addr,
		DB:   settings.DB,
	})

	return &RedisSink{
		client:    client,
		stream:    settings.Stream,
		maxLength: settings.MaxLength,
		logger:    logger,
	}
}

func (s *RedisSink) Name() string { return "redis" }

// Write adds each record as {key, brand, record} where record is the
// 13-key JSON object.
func (s *RedisSink) Write(ctx context.Context, records []types.AssembledRecord) (int, error) {
	for i, r := range records {
		payload, err := json.Marshal(r)
		if err != nil {
			return i, pkgerrors.NewSink(s.Name(), "failed to marshal record", err)
		}

		args := &redis.XAddArgs{
			Stream: s.stream,
			Values: map[string]interface{}{
				"key":    RecordKey(r),
				"brand":  r.Brand,
				"record": string(payload),
			},
		}
		if s.maxLength > 0 {
			args.MaxLen = s.maxLength
			args.Approx = true
		}

		if err := s.client.XAdd(ctx, args).Err(); err != nil {
			return i, pkgerrors.NewSink(s.Name(), fmt.Sprintf("XADD to %s failed", s.stream), err)
		}
	}

	s.logger.Infof("Published %d records to stream %s", len(records), s.stream)
	return len(records), nil
}

// Close closes the Redis connection
func (s *RedisSink) Close() error {
	return s.client.Close()
}
