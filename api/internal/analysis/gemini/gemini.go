package gemini

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"homework-tutor/api/internal/analysis"
	"homework-tutor/api/internal/analysis/types"
)

const attempts = 3

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Analyze sends the image and instruction and asks for JSON matching the Result schema.
func (e *Engine) Analyze(ctx context.Context, in types.AnalyzeInput) (types.Result, error) {
	if e.APIKey == "" {
		return types.Result{}, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return types.Result{}, err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return types.Result{}, fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0.2),
		ResponseMIMEType: "application/json",
		ResponseSchema:   resultSchema(),
	}

	parts := []genai.Part{
		genai.Text(in.Prompt),
		genai.Blob{MIMEType: in.MIME, Data: in.Image},
	}

	// Ретраи на случай 5xx/транзиентных сбоёв
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			log.Printf("gemini: attempt %d/%d failed: %v", attempt, attempts, err)
			if !sleep(ctx, time.Duration(attempt)*300*time.Millisecond) {
				return types.Result{}, ctx.Err()
			}
			continue
		}
		return analysis.DecodeResult("gemini", firstText(resp))
	}
	return types.Result{}, lastErr
}

// resultSchema mirrors types.ResultSchema in the SDK's schema type.
func resultSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	list := &genai.Schema{Type: genai.TypeArray, Items: str}
	coord := &genai.Schema{Type: genai.TypeInteger, Description: "0..1000 normalized to image size"}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"problemIdentified": str,
			"isCorrect":         {Type: genai.TypeBoolean, Nullable: true},
			"errorBoundingBox": {
				Type:     genai.TypeObject,
				Nullable: true,
				Properties: map[string]*genai.Schema{
					"ymin": coord, "xmin": coord, "ymax": coord, "xmax": coord,
				},
				Required: []string{"ymin", "xmin", "ymax", "xmax"},
			},
			"solutionSteps": list,
			"feedback":      str,
			"keyConcepts":   list,
			"learningPath":  str,
		},
		Required: []string{"problemIdentified", "isCorrect", "solutionSteps", "feedback", "keyConcepts", "learningPath"},
	}
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func ptrFloat32(v float32) *float32 { return &v }
