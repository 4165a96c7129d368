package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"homework-tutor/api/internal/analysis"
	"homework-tutor/api/internal/analysis/types"
)

// Engine runs a local vision model through an Ollama server.
type Engine struct {
	URL    string
	Model  string
	client *api.Client
}

func New(rawURL, model string) (*Engine, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("ollama: invalid URL %q", rawURL)
	}
	// только схема и хост: путь вроде /api/chat клиент добавит сам
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &Engine{
		URL:    base.String(),
		Model:  strings.TrimSpace(model),
		client: api.NewClient(base, &http.Client{Timeout: 300 * time.Second}),
	}, nil
}

func (e *Engine) Name() string     { return "ollama" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Analyze(ctx context.Context, in types.AnalyzeInput) (types.Result, error) {
	stream := false
	req := &api.ChatRequest{
		Model: e.Model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: in.Prompt,
				Images:  []api.ImageData{api.ImageData(in.Image)},
			},
		},
		Stream:  &stream,
		Format:  json.RawMessage(types.ResultSchema),
		Options: map[string]any{"temperature": 0.2},
	}

	var content strings.Builder
	err := e.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return types.Result{}, fmt.Errorf("ollama chat: %w", err)
	}
	return analysis.DecodeResult("ollama", content.String())
}
