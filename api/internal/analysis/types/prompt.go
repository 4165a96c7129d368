package types

import (
	"fmt"
	"strings"
)

// DefaultLanguage is used when no target language is configured.
const DefaultLanguage = "English"

// TutorPrompt is the fixed instruction sent with every image.
func TutorPrompt(language string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		language = DefaultLanguage
	}
	return fmt.Sprintf(`You are a patient, encouraging math tutor. Look at the PHOTO of a student's math homework.
1) Identify the problem and restate it briefly in "problemIdentified".
2) If the student wrote a solution, evaluate it: "isCorrect" is true when it is right and false when it is wrong.
   If there is only a problem statement and nothing to grade, solve it and set "isCorrect" to null.
3) If there is an error, locate the erroneous part on the photo as "errorBoundingBox" {ymin, xmin, ymax, xmax},
   integers on a 0..1000 grid normalized to the image size (0,0 is the top-left corner). Otherwise set it to null.
4) "solutionSteps": the correct solution, one step per item, in order.
5) "feedback": short, warm feedback for the student.
6) "keyConcepts": the math concepts this problem exercises.
7) "learningPath": what to practise next.
Write every text field in %s. Return STRICT JSON matching the schema, no text outside JSON.`, language)
}

// ResultSchema is the JSON Schema of Result used for provider-side structured output.
const ResultSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "problemIdentified": {"type": "string"},
    "isCorrect": {"type": ["boolean", "null"]},
    "errorBoundingBox": {
      "type": ["object", "null"],
      "additionalProperties": false,
      "properties": {
        "ymin": {"type": "integer"},
        "xmin": {"type": "integer"},
        "ymax": {"type": "integer"},
        "xmax": {"type": "integer"}
      },
      "required": ["ymin", "xmin", "ymax", "xmax"]
    },
    "solutionSteps": {"type": "array", "items": {"type": "string"}},
    "feedback": {"type": "string"},
    "keyConcepts": {"type": "array", "items": {"type": "string"}},
    "learningPath": {"type": "string"}
  },
  "required": ["problemIdentified", "isCorrect", "errorBoundingBox", "solutionSteps", "feedback", "keyConcepts", "learningPath"]
}`
