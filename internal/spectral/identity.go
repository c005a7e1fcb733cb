package spectral

import (
	"fmt"
	"strings"
)

// SessionType classifies a recording session relative to the normalization
// baseline. It is attached to artifacts at ingestion and carried forward, so
// downstream stages never re-derive it from a path.
type SessionType string

const (
	SessionBaseline SessionType = "baseline"
	SessionTest     SessionType = "test"
	SessionUnknown  SessionType = "unknown"
)

// SleepState is the categorical sleep stage a split recording belongs to.
// Wake epochs are removed during preprocessing and never reach the pipeline
// core.
type SleepState string

const (
	StateREM  SleepState = "rem"
	StateNREM SleepState = "nrem"
)

// SleepStates lists the states the pipeline produces artifacts for, in the
// order stages iterate them.
var SleepStates = []SleepState{StateREM, StateNREM}

// ClassifySession derives the session type from an underscore-separated
// session or file name. Names matching neither marker map to SessionUnknown,
// which still participates in downstream joins as its own column.
func ClassifySession(name string) SessionType {
	for _, part := range strings.Split(strings.ToLower(name), "_") {
		switch {
		case strings.HasPrefix(part, "baseline") || strings.HasPrefix(part, "bl"):
			return SessionBaseline
		case strings.HasPrefix(part, "test"):
			return SessionTest
		}
	}
	return SessionUnknown
}

// Identity is the explicit key of one unit of work: a single window of a
// single animal's recording in one sleep state. Every derived artifact
// carries its identity from creation instead of re-parsing it out of a path.
type Identity struct {
	Animal  string
	State   SleepState
	Session string
	Type    SessionType
	Chunk   int
}

// String renders the identity for log attributes.
func (id Identity) String() string {
	return fmt.Sprintf("%s/%s/%s/chunk_%02d", id.Animal, id.State, id.Session, id.Chunk)
}

// UnitKey identifies the (animal, state, chunk) group a set of per-session
// reduced rows belongs to.
type UnitKey struct {
	Animal string
	State  SleepState
	Chunk  int
}

// String renders the unit key for log attributes.
func (k UnitKey) String() string {
	return fmt.Sprintf("%s/%s/chunk_%02d", k.Animal, k.State, k.Chunk)
}
