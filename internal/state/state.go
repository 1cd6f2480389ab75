// Package state holds the per-request display slots for the dashboard. Each
// request kind (prediction, movers, news) owns one typed slot, so a failed
// secondary fetch can never blank out the primary result's error-free state.
package state

// Phase tracks where a request currently stands.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is one request slot: phase, the payload of the last success, the
// message of the last failure, and the attempt number that last wrote it.
// Requests are not cancelled or sequenced; whichever response arrives last
// wins the slot regardless of submission order.
type State[T any] struct {
	phase    Phase
	value    T
	hasValue bool
	errMsg   string
	attempts uint64
	seq      uint64
}

// Begin moves the slot to loading, clears its error and hands out the
// attempt number for tagging the in-flight request.
func (s *State[T]) Begin() uint64 {
	s.attempts++
	s.phase = PhaseLoading
	s.errMsg = ""
	return s.attempts
}

// Resolve records a successful arrival.
func (s *State[T]) Resolve(seq uint64, v T) {
	s.phase = PhaseSucceeded
	s.value = v
	s.hasValue = true
	s.errMsg = ""
	s.seq = seq
}

// Fail records a failed arrival. A previously resolved value stays so the
// view can keep rendering stale data under the error banner.
func (s *State[T]) Fail(seq uint64, msg string) {
	s.phase = PhaseFailed
	s.errMsg = msg
	s.seq = seq
}

// Reset returns the slot to idle and drops its payload.
func (s *State[T]) Reset() {
	var zero T
	s.phase = PhaseIdle
	s.value = zero
	s.hasValue = false
	s.errMsg = ""
}

func (s *State[T]) Phase() Phase { return s.phase }

// Value returns the last successful payload and whether one exists.
func (s *State[T]) Value() (T, bool) { return s.value, s.hasValue }

// Err returns the message of the last failure, empty outside PhaseFailed.
func (s *State[T]) Err() string { return s.errMsg }

// Seq returns the attempt number that last resolved or failed the slot.
func (s *State[T]) Seq() uint64 { return s.seq }

// Loading reports whether an attempt is in flight.
func (s *State[T]) Loading() bool { return s.phase == PhaseLoading }
