// Package session holds the per-user upload → analyze → display state machine.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"homework-tutor/api/internal/analysis/types"
	"homework-tutor/api/internal/upload"
	"homework-tutor/api/internal/util"
)

// ErrorMessage is the only failure text shown to the user.
const ErrorMessage = "We could not analyze this image. Try a clearer photo or a different problem."

var (
	ErrNoImage           = errors.New("no image selected")
	ErrInvalidTransition = errors.New("action not allowed in current state")
	errEmptyResult       = errors.New("analyzer returned an empty result")
)

// Analyzer performs one analysis request. *client.Client satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, imageBase64 string) (types.Result, error)
}

// View is an immutable snapshot handed to presentation code.
type View struct {
	State        State
	Image        *upload.Image
	Result       *types.Result
	ErrorMessage string
	Attempt      string
}

func (v View) HasImage() bool { return v.Image != nil }

// CanAnalyze reports whether an Analyze press would start a request.
func (v View) CanAnalyze() bool {
	return v.Image != nil && (v.State == Idle || v.State == Error)
}

type Machine struct {
	mu      sync.Mutex
	state   State
	image   *upload.Image
	result  *types.Result
	errMsg  string
	attempt string
	cancel  context.CancelFunc
	touched time.Time

	timeout  time.Duration
	observer func(Transition)
}

type Option func(*Machine)

// WithTimeout bounds every analysis attempt.
func WithTimeout(d time.Duration) Option {
	return func(m *Machine) { m.timeout = d }
}

func WithObserver(fn func(Transition)) Option {
	return func(m *Machine) { m.observer = fn }
}

func NewMachine(opts ...Option) *Machine {
	m := &Machine{state: Idle, timeout: 180 * time.Second, touched: time.Now()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Select replaces the current image and returns to Idle, dropping any result or error.
func (m *Machine) Select(img *upload.Image) error {
	if img == nil {
		return ErrNoImage
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	m.image = img
	m.setLocked(Idle)
	return nil
}

// Clear discards image, result and error.
func (m *Machine) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	m.image = nil
	m.setLocked(Idle)
}

// Analyze starts an attempt from Idle or Error. The returned channel is closed
// once the attempt settles, whether its outcome was applied or discarded.
func (m *Machine) Analyze(a Analyzer) (<-chan struct{}, error) {
	return m.run(a, false)
}

// Retry re-issues the request for the same image after a failure.
func (m *Machine) Retry(a Analyzer) (<-chan struct{}, error) {
	return m.run(a, true)
}

func (m *Machine) run(a Analyzer, retry bool) (<-chan struct{}, error) {
	att, err := m.begin(retry)
	if err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		res, err := a.Analyze(att.ctx, att.payload)
		m.complete(att.token, res, err)
	}()
	return done, nil
}

type attempt struct {
	token   string
	payload string
	ctx     context.Context
}

func (m *Machine) begin(retry bool) (attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched = time.Now()

	if m.image == nil {
		return attempt{}, ErrNoImage
	}
	switch {
	case retry && m.state != Error:
		return attempt{}, ErrInvalidTransition
	case m.state != Idle && m.state != Error:
		return attempt{}, ErrInvalidTransition
	}

	m.cancelLocked()
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	m.cancel = cancel
	m.attempt = uuid.NewString()
	m.result = nil
	m.errMsg = ""
	m.setLocked(Analyzing)
	log.Printf("session: attempt %s started (image %s)", util.ShortID(m.attempt), util.ShortID(m.image.Checksum))
	return attempt{token: m.attempt, payload: m.image.Base64, ctx: ctx}, nil
}

// complete applies the outcome of attempt token. Outcomes of superseded attempts are dropped.
func (m *Machine) complete(token string, res types.Result, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token == "" || token != m.attempt || m.state != Analyzing {
		log.Printf("session: discarding stale attempt %s", util.ShortID(token))
		return false
	}
	m.cancelLocked()

	if err == nil && res.Empty() {
		err = errEmptyResult
	}
	if err != nil {
		log.Printf("session: attempt %s failed: %v", util.ShortID(token), err)
		m.errMsg = ErrorMessage
		m.setLocked(Error)
		return true
	}
	r := res.Normalize()
	m.result = &r
	m.setLocked(Success)
	return true
}

func (m *Machine) Snapshot() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return View{
		State:        m.state,
		Image:        m.image,
		Result:       m.result,
		ErrorMessage: m.errMsg,
		Attempt:      m.attempt,
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastActive is the time of the last user action.
func (m *Machine) LastActive() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.touched
}

func (m *Machine) resetLocked() {
	m.cancelLocked()
	m.attempt = ""
	m.result = nil
	m.errMsg = ""
	m.touched = time.Now()
}

func (m *Machine) cancelLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Machine) setLocked(to State) {
	from := m.state
	m.state = to
	if m.observer != nil {
		m.observer(Transition{From: from, To: to, Attempt: m.attempt})
	}
}
