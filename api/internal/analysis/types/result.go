package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Verdict is the tri-state correctness of the submitted work.
type Verdict int

const (
	// VerdictUnknown means only a problem statement was found, so there is nothing to grade.
	VerdictUnknown Verdict = iota
	VerdictCorrect
	VerdictIncorrect
)

// VerdictOf maps a plain correctness flag to a graded verdict.
func VerdictOf(ok bool) Verdict {
	if ok {
		return VerdictCorrect
	}
	return VerdictIncorrect
}

func (v Verdict) String() string {
	switch v {
	case VerdictCorrect:
		return "correct"
	case VerdictIncorrect:
		return "incorrect"
	default:
		return "unknown"
	}
}

// MarshalJSON keeps the wire shape of isCorrect: true | false | null.
func (v Verdict) MarshalJSON() ([]byte, error) {
	switch v {
	case VerdictCorrect:
		return []byte("true"), nil
	case VerdictIncorrect:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (v *Verdict) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "null", "":
		*v = VerdictUnknown
		return nil
	case "true", "false":
		*v = VerdictOf(string(b) == "true")
		return nil
	}
	// модели иногда присылают строку вместо bool
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("isCorrect: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "correct", "yes":
		*v = VerdictOf(true)
	case "false", "incorrect", "no":
		*v = VerdictOf(false)
	default:
		*v = VerdictUnknown
	}
	return nil
}

// Result is the structured feedback for one analyzed image.
type Result struct {
	ProblemIdentified string       `json:"problemIdentified"`
	IsCorrect         Verdict      `json:"isCorrect"`
	ErrorBoundingBox  *BoundingBox `json:"errorBoundingBox,omitempty"`
	SolutionSteps     []string     `json:"solutionSteps"`
	Feedback          string       `json:"feedback"`
	KeyConcepts       []string     `json:"keyConcepts"`
	LearningPath      string       `json:"learningPath"`
}

// Normalize trims text fields, drops blank list items and fixes up the error box.
// Lists are never nil after Normalize so they encode as [].
func (r Result) Normalize() Result {
	out := Result{
		ProblemIdentified: strings.TrimSpace(r.ProblemIdentified),
		IsCorrect:         r.IsCorrect,
		SolutionSteps:     compact(r.SolutionSteps),
		Feedback:          strings.TrimSpace(r.Feedback),
		KeyConcepts:       compact(r.KeyConcepts),
		LearningPath:      strings.TrimSpace(r.LearningPath),
	}
	if r.ErrorBoundingBox != nil {
		if b, ok := r.ErrorBoundingBox.Normalize(); ok {
			out.ErrorBoundingBox = &b
		}
	}
	return out
}

// Empty reports whether the result carries no feedback at all.
func (r Result) Empty() bool {
	return strings.TrimSpace(r.ProblemIdentified) == "" &&
		strings.TrimSpace(r.Feedback) == "" &&
		strings.TrimSpace(r.LearningPath) == "" &&
		len(compact(r.SolutionSteps)) == 0 &&
		len(compact(r.KeyConcepts)) == 0
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
