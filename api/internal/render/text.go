package render

import (
	"fmt"
	"strings"

	"homework-tutor/api/internal/analysis/types"
)

// Text formats a result as plain text for chat replies.
func Text(r types.Result) string {
	rv := NewResultView(r)
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", rv.Tone.Icon(), rv.Tone.Label())
	if rv.Problem != "" {
		fmt.Fprintf(&b, "\n📘 %s\n", rv.Problem)
	}
	if rv.Feedback != "" {
		fmt.Fprintf(&b, "\n%s\n", rv.Feedback)
	}
	if len(rv.Steps) > 0 {
		b.WriteString("\nSolution:\n")
		for _, s := range rv.Steps {
			fmt.Fprintf(&b, "%d. %s\n", s.N, s.Text)
		}
	}
	if len(rv.Concepts) > 0 {
		fmt.Fprintf(&b, "\nKey concepts: %s\n", strings.Join(rv.Concepts, " · "))
	}
	if rv.LearningPath != "" {
		fmt.Fprintf(&b, "\nNext: %s\n", rv.LearningPath)
	}
	return strings.TrimSpace(b.String())
}
