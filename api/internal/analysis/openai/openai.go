package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"homework-tutor/api/internal/analysis"
	"homework-tutor/api/internal/analysis/types"
	"homework-tutor/api/internal/util"
)

// ZhipuBaseURL is the OpenAI-compatible endpoint of Zhipu's GLM vision models.
const ZhipuBaseURL = "https://open.bigmodel.cn/api/paas/v4/"

type Engine struct {
	name   string
	APIKey string
	Model  string
	// Strict asks for json_schema structured output; otherwise json_object is used.
	Strict bool
	client *goopenai.Client
}

// New builds the OpenAI engine ("gpt").
func New(key, model string) *Engine {
	return newEngine("gpt", key, model, "", true)
}

// NewZhipu builds an engine for Zhipu GLM-4V through its OpenAI-compatible API.
func NewZhipu(key, model, baseURL string) *Engine {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = ZhipuBaseURL
	}
	return newEngine("zhipu", key, model, baseURL, false)
}

// NewCompatible targets any OpenAI-compatible endpoint under the given name.
func NewCompatible(name, key, model, baseURL string, strict bool) *Engine {
	return newEngine(name, key, model, baseURL, strict)
}

func newEngine(name, key, model, baseURL string, strict bool) *Engine {
	cfg := goopenai.DefaultConfig(strings.TrimSpace(key))
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: 120 * time.Second}
	return &Engine{
		name:   name,
		APIKey: strings.TrimSpace(key),
		Model:  strings.TrimSpace(model),
		Strict: strict,
		client: goopenai.NewClientWithConfig(cfg),
	}
}

func (e *Engine) Name() string     { return e.name }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Analyze(ctx context.Context, in types.AnalyzeInput) (types.Result, error) {
	if e.APIKey == "" {
		return types.Result{}, fmt.Errorf("%s: API key is empty", e.name)
	}
	format, err := e.responseFormat()
	if err != nil {
		return types.Result{}, err
	}
	dataURL := util.MakeDataURL(in.MIME, base64Of(in.Image))

	req := goopenai.ChatCompletionRequest{
		Model: e.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{Type: goopenai.ChatMessagePartTypeText, Text: in.Prompt},
					{
						Type: goopenai.ChatMessagePartTypeImageURL,
						ImageURL: &goopenai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: goopenai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
		Temperature:    0.2,
		ResponseFormat: format,
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return types.Result{}, fmt.Errorf("%s %d: %s", e.name, apiErr.HTTPStatusCode, apiErr.Message)
		}
		return types.Result{}, fmt.Errorf("%s: %w", e.name, err)
	}
	if len(resp.Choices) == 0 {
		return types.Result{}, fmt.Errorf("%s: %w", e.name, analysis.ErrEmptyResponse)
	}
	return analysis.DecodeResult(e.name, resp.Choices[0].Message.Content)
}

func (e *Engine) responseFormat() (*goopenai.ChatCompletionResponseFormat, error) {
	if !e.Strict {
		return &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject}, nil
	}
	schema, err := util.StrictSchema(types.ResultSchema)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	return &goopenai.ChatCompletionResponseFormat{
		Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
			Name:   "analysis_result",
			Schema: json.RawMessage(raw),
			Strict: true,
		},
	}, nil
}
