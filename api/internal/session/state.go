package session

// State is the application state of one session.
type State int

const (
	Idle State = iota
	Analyzing
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Analyzing:
		return "analyzing"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText lets State appear by name in JSON snapshots.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Transition is reported to observers every time the state changes or is re-entered.
type Transition struct {
	From    State
	To      State
	Attempt string
}
