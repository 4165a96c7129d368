package client

import (
	"errors"
	"fmt"
)

// Kind classifies why an analysis request failed.
type Kind int

const (
	KindNetwork       Kind = iota + 1 // request could not complete
	KindBadResponse                   // non-2xx status or unparsable body
	KindMissingResult                 // 2xx with nothing usable in it
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network failure"
	case KindBadResponse:
		return "bad response"
	case KindMissingResult:
		return "missing result"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is.
var (
	ErrNetwork       = errors.New("network failure")
	ErrBadResponse   = errors.New("bad response")
	ErrMissingResult = errors.New("missing result")
)

type AnalysisError struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *AnalysisError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("analysis: %s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("analysis: %s: %v", e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

func (e *AnalysisError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrBadResponse:
		return e.Kind == KindBadResponse
	case ErrMissingResult:
		return e.Kind == KindMissingResult
	}
	return false
}
