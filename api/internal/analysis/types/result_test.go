package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestVerdictJSON(t *testing.T) {
	cases := []struct {
		in   string
		want Verdict
	}{
		{`{"isCorrect": true}`, VerdictCorrect},
		{`{"isCorrect": false}`, VerdictIncorrect},
		{`{"isCorrect": null}`, VerdictUnknown},
		{`{}`, VerdictUnknown},
		{`{"isCorrect": "false"}`, VerdictIncorrect},
		{`{"isCorrect": "Yes"}`, VerdictCorrect},
		{`{"isCorrect": "n/a"}`, VerdictUnknown},
	}
	for _, c := range cases {
		var r Result
		if err := json.Unmarshal([]byte(c.in), &r); err != nil {
			t.Fatalf("%s: %v", c.in, err)
		}
		if r.IsCorrect != c.want {
			t.Errorf("%s: expected %v, got %v", c.in, c.want, r.IsCorrect)
		}
	}

	b, err := json.Marshal(Result{IsCorrect: VerdictUnknown})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"isCorrect":null`) {
		t.Errorf("unknown verdict should encode as null, got %s", b)
	}
	if strings.Contains(string(b), "errorBoundingBox") {
		t.Errorf("absent box should be omitted, got %s", b)
	}
}

func TestVerdictOf(t *testing.T) {
	if VerdictOf(true) != VerdictCorrect || VerdictOf(false) != VerdictIncorrect {
		t.Errorf("unexpected verdicts %v %v", VerdictOf(true), VerdictOf(false))
	}
	if VerdictOf(true).String() != "correct" {
		t.Errorf("unexpected label %q", VerdictOf(true))
	}
}

func TestResultScenarioDecode(t *testing.T) {
	body := `{"problemIdentified":"2+2=?","isCorrect":false,
		"errorBoundingBox":{"ymin":100,"xmin":100,"ymax":200,"xmax":300},
		"solutionSteps":["2+2=4"],"feedback":"Off by one","keyConcepts":["addition"],
		"learningPath":"Review addition"}`
	var r Result
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatal(err)
	}
	r = r.Normalize()
	if r.IsCorrect != VerdictIncorrect {
		t.Errorf("expected incorrect, got %v", r.IsCorrect)
	}
	if r.ErrorBoundingBox == nil || *r.ErrorBoundingBox != (BoundingBox{YMin: 100, XMin: 100, YMax: 200, XMax: 300}) {
		t.Errorf("unexpected box %+v", r.ErrorBoundingBox)
	}
	if len(r.SolutionSteps) != 1 || len(r.KeyConcepts) != 1 {
		t.Errorf("unexpected lists %v %v", r.SolutionSteps, r.KeyConcepts)
	}
}

func TestNormalizeDropsBlankItems(t *testing.T) {
	r := Result{SolutionSteps: []string{" a ", "", "  "}}.Normalize()
	if len(r.SolutionSteps) != 1 || r.SolutionSteps[0] != "a" {
		t.Errorf("expected [a], got %q", r.SolutionSteps)
	}
	if r.KeyConcepts == nil {
		t.Error("KeyConcepts should be non-nil after Normalize")
	}
}

func TestEmpty(t *testing.T) {
	if !(Result{SolutionSteps: []string{" "}}).Empty() {
		t.Error("blank result should be empty")
	}
	if (Result{Feedback: "ok"}).Empty() {
		t.Error("result with feedback is not empty")
	}
}

func TestBoundingBoxNormalize(t *testing.T) {
	cases := []struct {
		in   BoundingBox
		want BoundingBox
		ok   bool
	}{
		{BoundingBox{0, 0, 1000, 1000}, BoundingBox{0, 0, 1000, 1000}, true},
		{BoundingBox{YMin: 800, XMin: 900, YMax: 200, XMax: 100}, BoundingBox{YMin: 200, XMin: 100, YMax: 800, XMax: 900}, true},
		{BoundingBox{YMin: -50, XMin: -1, YMax: 1200, XMax: 5000}, BoundingBox{0, 0, 1000, 1000}, true},
		{BoundingBox{YMin: 10, XMin: 10, YMax: 10, XMax: 500}, BoundingBox{YMin: 10, XMin: 10, YMax: 10, XMax: 500}, false},
	}
	for _, c := range cases {
		got, ok := c.in.Normalize()
		if got != c.want || ok != c.ok {
			t.Errorf("Normalize(%+v) = %+v, %v; expected %+v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestBoundingBoxFractional(t *testing.T) {
	var b BoundingBox
	if err := json.Unmarshal([]byte(`{"ymin":99.6,"xmin":0,"ymax":200.2,"xmax":300}`), &b); err != nil {
		t.Fatal(err)
	}
	if b.YMin != 100 || b.YMax != 200 {
		t.Errorf("expected rounded coordinates, got %+v", b)
	}
}

func TestDegenerateBoxDropped(t *testing.T) {
	r := Result{ErrorBoundingBox: &BoundingBox{YMin: 5, XMin: 5, YMax: 5, XMax: 5}}.Normalize()
	if r.ErrorBoundingBox != nil {
		t.Errorf("zero-area box should be dropped, got %+v", r.ErrorBoundingBox)
	}
}

func TestResultSchemaIsValidJSON(t *testing.T) {
	var m map[string]any
	if err := json.Unmarshal([]byte(ResultSchema), &m); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if !strings.Contains(TutorPrompt(""), DefaultLanguage) {
		t.Error("prompt should fall back to the default language")
	}
}
