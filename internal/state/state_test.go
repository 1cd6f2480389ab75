package state

import (
	"testing"

	"crypto-forecast-dashboard/internal/types"
)

func TestBeginClearsError(t *testing.T) {
	var s State[int]

	seq := s.Begin()
	s.Fail(seq, "boom")
	if s.Err() != "boom" {
		t.Fatalf("Expected error to be recorded, got %q", s.Err())
	}

	s.Begin()
	if s.Phase() != PhaseLoading {
		t.Errorf("Expected loading phase after Begin, got %v", s.Phase())
	}
	if s.Err() != "" {
		t.Errorf("Expected Begin to clear the error, got %q", s.Err())
	}
}

func TestBeginHandsOutIncreasingAttempts(t *testing.T) {
	var s State[int]

	first := s.Begin()
	second := s.Begin()
	if second <= first {
		t.Errorf("Expected increasing attempt numbers, got %d then %d", first, second)
	}
}

func TestResolveStoresValue(t *testing.T) {
	var s State[string]

	seq := s.Begin()
	s.Resolve(seq, "payload")

	if s.Phase() != PhaseSucceeded {
		t.Errorf("Expected succeeded phase, got %v", s.Phase())
	}
	v, ok := s.Value()
	if !ok || v != "payload" {
		t.Errorf("Expected stored payload, got %q (ok=%v)", v, ok)
	}
	if s.Seq() != seq {
		t.Errorf("Expected seq %d recorded, got %d", seq, s.Seq())
	}
}

func TestFailKeepsPreviousValue(t *testing.T) {
	var s State[string]

	seq := s.Begin()
	s.Resolve(seq, "first result")

	seq = s.Begin()
	s.Fail(seq, "network down")

	if s.Phase() != PhaseFailed {
		t.Errorf("Expected failed phase, got %v", s.Phase())
	}
	if s.Err() != "network down" {
		t.Errorf("Expected failure message, got %q", s.Err())
	}
	v, ok := s.Value()
	if !ok || v != "first result" {
		t.Errorf("Expected stale value to survive the failure, got %q (ok=%v)", v, ok)
	}
}

// Two submissions racing: whichever response arrives last determines the
// displayed state, regardless of which request was issued first. Expected,
// not necessarily desired; pinned here against regression.
func TestDoubleSubmitLastArrivalWins(t *testing.T) {
	var s State[string]

	first := s.Begin()
	second := s.Begin()

	// Second response arrives first, first response arrives last.
	s.Resolve(second, "newer request")
	s.Resolve(first, "older request")

	v, _ := s.Value()
	if v != "older request" {
		t.Errorf("Expected last arrival to win the slot, got %q", v)
	}
	if s.Seq() != first {
		t.Errorf("Expected seq of last arrival %d, got %d", first, s.Seq())
	}
}

func TestResetDropsPayload(t *testing.T) {
	var s State[string]

	s.Resolve(s.Begin(), "payload")
	s.Reset()

	if s.Phase() != PhaseIdle {
		t.Errorf("Expected idle phase after reset, got %v", s.Phase())
	}
	if _, ok := s.Value(); ok {
		t.Error("Expected payload to be dropped on reset")
	}
}

// A failed secondary fetch must not touch the prediction slot.
func TestContainerSecondaryFailureDoesNotClobberPrimary(t *testing.T) {
	var c Container

	seq := c.Prediction.Begin()
	c.Prediction.Resolve(seq, types.PredictionResponse{Prediction: types.DirectionUp})

	mseq := c.Movers.Begin()
	c.Movers.Fail(mseq, "movers unavailable")

	if c.Prediction.Phase() != PhaseSucceeded {
		t.Errorf("Expected prediction to stay succeeded, got %v", c.Prediction.Phase())
	}
	if c.Prediction.Err() != "" {
		t.Errorf("Expected prediction error channel untouched, got %q", c.Prediction.Err())
	}
	if c.Movers.Err() != "movers unavailable" {
		t.Errorf("Expected movers error recorded in its own slot, got %q", c.Movers.Err())
	}
}

func TestContainerAnyLoading(t *testing.T) {
	var c Container

	if c.AnyLoading() {
		t.Error("Expected no in-flight request on a fresh container")
	}

	c.News.Begin()
	if !c.AnyLoading() {
		t.Error("Expected AnyLoading with news in flight")
	}
}
