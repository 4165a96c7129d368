// Package client calls the analysis proxy and parses its answer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"homework-tutor/api/internal/analysis/types"
)

const maxResponseBytes = 2 << 20

type Client struct {
	url    string
	prompt string
	httpc  *http.Client
}

type Option func(*Client)

// WithPrompt replaces the tutor prompt sent with every request.
func WithPrompt(p string) Option {
	return func(c *Client) {
		if strings.TrimSpace(p) != "" {
			c.prompt = p
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

func New(url string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		prompt: types.TutorPrompt(types.DefaultLanguage),
		httpc:  &http.Client{Timeout: 180 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Prompt() string { return c.prompt }

// Analyze posts one image to the proxy. Any failure is an *AnalysisError and no
// partial result is returned.
func (c *Client) Analyze(ctx context.Context, imageBase64 string) (types.Result, error) {
	payload, err := json.Marshal(types.AnalyzeRequest{ImageBase64: imageBase64, Prompt: c.prompt})
	if err != nil {
		return types.Result{}, &AnalysisError{Kind: KindNetwork, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return types.Result{}, &AnalysisError{Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return types.Result{}, &AnalysisError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return types.Result{}, &AnalysisError{Kind: KindNetwork, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("analyze: proxy status %d: %s", resp.StatusCode, truncate(body, 512))
		return types.Result{}, &AnalysisError{
			Kind:   KindBadResponse,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("proxy status %d", resp.StatusCode),
		}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return types.Result{}, &AnalysisError{Kind: KindMissingResult, Status: resp.StatusCode, Err: fmt.Errorf("empty body")}
	}

	var out types.Result
	if err := json.Unmarshal(trimmed, &out); err != nil {
		log.Printf("analyze: bad JSON from proxy: %v", err)
		return types.Result{}, &AnalysisError{Kind: KindBadResponse, Status: resp.StatusCode, Err: err}
	}
	if out.Empty() {
		return types.Result{}, &AnalysisError{Kind: KindMissingResult, Status: resp.StatusCode, Err: fmt.Errorf("no analysis in body")}
	}
	return out.Normalize(), nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "…"
	}
	return string(b)
}
