// Package analysis routes homework images to a multimodal model provider.
package analysis

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"homework-tutor/api/internal/analysis/types"
)

type Engine interface {
	Name() string
	GetModel() string
	Analyze(ctx context.Context, in types.AnalyzeInput) (types.Result, error)
}

var ErrUnknownEngine = errors.New("unknown llm_name")

// Engines is the set of configured providers plus the default one.
type Engines struct {
	mu  sync.RWMutex
	def string
	m   map[string]Engine
}

func NewEngines(def string) *Engines {
	return &Engines{def: strings.ToLower(strings.TrimSpace(def)), m: map[string]Engine{}}
}

// Register adds e under its name and any aliases. A nil engine is ignored.
func (e *Engines) Register(eng Engine, aliases ...string) {
	if eng == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.m[eng.Name()] = eng
	for _, a := range aliases {
		e.m[strings.ToLower(a)] = eng
	}
}

// GetEngine resolves llmName, falling back to the default for an empty name.
func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	e.mu.RLock()
	defer e.mu.RUnlock()
	if name == "" {
		name = e.def
		if _, ok := e.m[name]; !ok {
			// дефолт не сконфигурирован, берём любой доступный
			if names := e.namesLocked(); len(names) > 0 {
				return e.m[names[0]], nil
			}
		}
	}
	if eng, ok := e.m[name]; ok {
		return eng, nil
	}
	return nil, ErrUnknownEngine
}

// Describe lists engine names and their models, aliases excluded.
func (e *Engines) Describe() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := map[string]string{}
	for _, n := range e.namesLocked() {
		if eng := e.m[n]; eng.Name() == n {
			out[n] = eng.GetModel()
		}
	}
	return out
}

func (e *Engines) Len() int {
	return len(e.Describe())
}

func (e *Engines) namesLocked() []string {
	names := make([]string, 0, len(e.m))
	for n := range e.m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
