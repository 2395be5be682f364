package pipeline

import "fmt"

// State is the orchestrator's position in a run. NoWork, Done, Invalid
// and Aborted are terminal.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateNoWork
	StateValidating
	StateInvalid
	StateProvisioning
	StateMarkingProcessed
	StateFanningOut
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateNoWork:
		return "no_work"
	case StateValidating:
		return "validating"
	case StateInvalid:
		return "invalid"
	case StateProvisioning:
		return "provisioning"
	case StateMarkingProcessed:
		return "marking_processed"
	case StateFanningOut:
		return "fanning_out"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Succeeded reports whether a terminal state maps to exit code 0.
func (s State) Succeeded() bool {
	return s == StateDone || s == StateNoWork
}

// InvalidPolicy decides what an inconsistent record does to the run.
type InvalidPolicy int

const (
	// PolicyAbort fails the whole run before any store mutation; a single
	// malformed submission blocks the batch until an operator fixes it.
	PolicyAbort InvalidPolicy = iota
	// PolicySkip drops invalid records, processes the rest and leaves the
	// invalid ones unmarked for a later run.
	PolicySkip
)

func ParseInvalidPolicy(s string) (InvalidPolicy, error) {
	switch s {
	case "", "abort":
		return PolicyAbort, nil
	case "skip":
		return PolicySkip, nil
	}
	return PolicyAbort, fmt.Errorf("unknown invalid-record policy %q", s)
}
