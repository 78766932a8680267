package challenge

// State is the phase of a session.
type State int

const (
	// StateIdle is a session that has not started.
	StateIdle State = iota
	// StateActive is waiting for a command.
	StateActive
	// StateEvaluating is running a submitted command.
	StateEvaluating
	// StateSucceeded has solved the current challenge and waits for Next.
	StateSucceeded
	// StateFailed has rejected the last command; the challenge stays open.
	StateFailed
	// StateGameOver ran out of lives on the first level.
	StateGameOver
	// StateComplete has finished every level.
	StateComplete
)

var stateNames = map[State]string{
	StateIdle:       "idle",
	StateActive:     "active",
	StateEvaluating: "evaluating",
	StateSucceeded:  "succeeded",
	StateFailed:     "failed",
	StateGameOver:   "game over",
	StateComplete:   "complete",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Open reports whether commands can be submitted in this state.
func (s State) Open() bool {
	return s == StateActive || s == StateFailed
}

// Finished reports whether the session has ended.
func (s State) Finished() bool {
	return s == StateGameOver || s == StateComplete
}
