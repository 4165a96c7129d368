package render

import "homework-tutor/api/internal/analysis/types"

// Tone is the styling of the overview banner.
type Tone int

const (
	ToneExplanation Tone = iota // nothing to grade, neutral
	ToneCorrect                 // affirmative
	ToneIncorrect               // corrective
)

func ToneFor(v types.Verdict) Tone {
	switch v {
	case types.VerdictCorrect:
		return ToneCorrect
	case types.VerdictIncorrect:
		return ToneIncorrect
	case types.VerdictUnknown:
		return ToneExplanation
	}
	return ToneExplanation
}

func (t Tone) Label() string {
	switch t {
	case ToneCorrect:
		return "Correct answer"
	case ToneIncorrect:
		return "Needs correction"
	default:
		return "Problem explained"
	}
}

// Class is the CSS modifier used by the page template.
func (t Tone) Class() string {
	switch t {
	case ToneCorrect:
		return "correct"
	case ToneIncorrect:
		return "incorrect"
	default:
		return "explanation"
	}
}

func (t Tone) Icon() string {
	switch t {
	case ToneCorrect:
		return "✅"
	case ToneIncorrect:
		return "❌"
	default:
		return "💡"
	}
}
