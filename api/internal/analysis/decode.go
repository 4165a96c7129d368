package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"homework-tutor/api/internal/analysis/types"
	"homework-tutor/api/internal/util"
)

var ErrEmptyResponse = errors.New("empty response")

// DecodeResult translates a model reply into a Result. Code fences and chatter
// around the JSON object are tolerated.
func DecodeResult(engine, raw string) (types.Result, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.Result{}, fmt.Errorf("%s: %w", engine, ErrEmptyResponse)
	}
	var r types.Result
	if err := json.Unmarshal([]byte(util.StripCodeFences(raw)), &r); err != nil {
		if err2 := json.Unmarshal([]byte(util.ExtractJSONObject(raw)), &r); err2 != nil {
			return types.Result{}, fmt.Errorf("%s: bad JSON: %w", engine, err)
		}
	}
	if r.Empty() {
		return types.Result{}, fmt.Errorf("%s: %w", engine, ErrEmptyResponse)
	}
	return r.Normalize(), nil
}
