// Package render turns a session snapshot into what the user sees.
package render

import (
	"embed"
	"html/template"
	"io"

	"homework-tutor/api/internal/analysis/types"
	"homework-tutor/api/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.New("index.html").ParseFS(templatesFS, "templates/index.html"))

type Step struct {
	N    int
	Text string
}

type ResultView struct {
	Problem      string
	Tone         Tone
	Feedback     string
	Steps        []Step
	Concepts     []string
	LearningPath string
}

type OverlayView struct {
	Top, Left, Width, Height string
}

// Page is the view model of the single page.
type Page struct {
	State        string
	HasImage     bool
	ImageURL     string
	ImageName    string
	Overlay      *OverlayView
	CanAnalyze   bool
	ShowRetry    bool
	Analyzing    bool
	ErrorMessage string
	Notice       string
	Result       *ResultView
}

// NewResultView builds the presentation of one analysis result.
func NewResultView(r types.Result) *ResultView {
	rv := &ResultView{
		Problem:      r.ProblemIdentified,
		Tone:         ToneFor(r.IsCorrect),
		Feedback:     r.Feedback,
		Concepts:     r.KeyConcepts,
		LearningPath: r.LearningPath,
	}
	for i, s := range r.SolutionSteps {
		rv.Steps = append(rv.Steps, Step{N: i + 1, Text: s})
	}
	return rv
}

// NewPage builds the page for a snapshot. imageURL is where the browser fetches the preview.
func NewPage(v session.View, imageURL, notice string) Page {
	p := Page{
		State:        v.State.String(),
		HasImage:     v.HasImage(),
		CanAnalyze:   v.CanAnalyze(),
		ShowRetry:    v.State == session.Error && v.HasImage(),
		Analyzing:    v.State == session.Analyzing,
		ErrorMessage: v.ErrorMessage,
		Notice:       notice,
	}
	if v.Image != nil {
		p.ImageURL = imageURL
		p.ImageName = v.Image.Name
	}
	if v.State == session.Success && v.Result != nil {
		p.Result = NewResultView(*v.Result)
		if r, ok := Overlay(v.Result.ErrorBoundingBox); ok {
			p.Overlay = &OverlayView{Top: pct(r.Top), Left: pct(r.Left), Width: pct(r.Width), Height: pct(r.Height)}
		}
	}
	return p
}

func (p Page) Render(w io.Writer) error {
	return pageTmpl.Execute(w, p)
}
