package title

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/types"
	pkgerrors "golfwear-extractor/pkg/errors"
)

const systemPrompt = `你是跨境电商标题编辑。根据日文商品名生成一个中文商品标题，要求：
1. 26到30个汉字；
2. 结构为 季节 + 品牌简称 + 高尔夫 + 性别 + 功能 + 品类；
3. "高尔夫"只出现一次；
4. 不含英文字母、空格和任何标点符号；
5. 以品类词结尾，例如夹克、马甲、长裤、翻领衫、球帽、手套、配件。
只输出标题本身。`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ExternalGenerator asks an OpenAI-compatible chat endpoint for a title and
// falls back to the rule generator when the call fails or the answer does
// not validate.
type ExternalGenerator struct {
	client   *resty.Client
	endpoint string
	model    string
	fallback *RuleGenerator
	logger   types.Logger
}

// NewExternalGenerator creates an external generator
func NewExternalGenerator(endpoint, apiKey, model string, fallback *RuleGenerator, logger types.Logger) *ExternalGenerator {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}

	return &ExternalGenerator{
		client:   client,
		endpoint: endpoint,
		model:    model,
		fallback: fallback,
		logger:   logger,
	}
}

// FromSettings returns the generator selected by settings.Provider
func FromSettings(settings config.TitleSettings, rule *RuleGenerator, logger types.Logger) Generator {
	if settings.Provider == "external" {
		return NewExternalGenerator(settings.APIURL, settings.APIKey, settings.Model, rule, logger)
	}
	return rule
}

// Generate implements Generator
func (e *ExternalGenerator) Generate(ctx context.Context, in Input) (string, error) {
	candidate, err := e.request(ctx, in)
	if err != nil {
		e.logger.Warnf("External title generation failed, using rules: %v", err)
		return e.fallback.Generate(ctx, in)
	}

	if report := Validate(candidate); !report.Valid {
		e.logger.Warnf("External title %q rejected (%s), using rules", candidate, strings.Join(report.Problems, "; "))
		return e.fallback.Generate(ctx, in)
	}
	return candidate, nil
}

func (e *ExternalGenerator) request(ctx context.Context, in Input) (string, error) {
	slots := e.fallback.Slots(in)
	user := fmt.Sprintf("商品名：%s\n季节：%s\n品牌简称：%s\n性别：%s", in.TitleRaw, slots.Season, slots.Brand, slots.Gender)

	var out chatResponse
	res, err := e.client.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: e.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: user},
			},
			Temperature: 0.3,
		}).
		SetResult(&out).
		Post(e.endpoint)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("unexpected status code: %d", res.StatusCode())
	}
	if len(out.Choices) == 0 {
		return "", pkgerrors.ErrEmptyTitle
	}

	candidate := cleanCandidate(out.Choices[0].Message.Content)
	if candidate == "" {
		return "", pkgerrors.ErrEmptyTitle
	}
	return candidate, nil
}

// cleanCandidate strips quotes and whitespace models like to add
func cleanCandidate(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, "\"'“”「」『』 ")
	return strings.Join(strings.Fields(s), "")
}
