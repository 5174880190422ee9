package upload

import (
	"errors"
	"time"
)

// ErrUploadInProgress is returned when Start is called while uploading.
var ErrUploadInProgress = errors.New("upload: already in progress")

// Step is the progress added per tick.
const Step = 10

// Timing controls the simulated upload.
type Timing struct {
	Tick     time.Duration
	Complete time.Duration
	Redirect time.Duration
}

// DefaultTiming matches the web client's timers.
func DefaultTiming() Timing {
	return Timing{
		Tick:     200 * time.Millisecond,
		Complete: 2500 * time.Millisecond,
		Redirect: time.Second,
	}
}

// Normalize replaces non-positive durations with defaults.
func (t Timing) Normalize() Timing {
	def := DefaultTiming()
	if t.Tick <= 0 {
		t.Tick = def.Tick
	}
	if t.Complete <= 0 {
		t.Complete = def.Complete
	}
	if t.Redirect <= 0 {
		t.Redirect = def.Redirect
	}
	return t
}

// Phase is where an upload stands.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseUploading
	PhaseDone
)

// Tracker is the upload state machine. Each Start opens a new generation so
// timer events from an abandoned upload can be told apart and dropped.
type Tracker struct {
	phase      Phase
	progress   int
	generation int
}

// Phase returns the current phase.
func (t *Tracker) Phase() Phase { return t.phase }

// Uploading reports whether an upload is running.
func (t *Tracker) Uploading() bool { return t.phase == PhaseUploading }

// Progress returns the percentage in 0..100.
func (t *Tracker) Progress() int { return t.progress }

// Generation identifies the current upload.
func (t *Tracker) Generation() int { return t.generation }

// Start begins a new upload at 0% and returns its generation.
func (t *Tracker) Start() (int, error) {
	if t.phase == PhaseUploading {
		return t.generation, ErrUploadInProgress
	}
	t.generation++
	t.phase = PhaseUploading
	t.progress = 0
	return t.generation, nil
}

// Advance adds one step, capped at 100. It reports false for stale or
// finished generations, which means no further tick should be scheduled.
func (t *Tracker) Advance(gen int) bool {
	if gen != t.generation || t.phase != PhaseUploading {
		return false
	}
	t.progress += Step
	if t.progress > 100 {
		t.progress = 100
	}
	return true
}

// Complete forces 100% and ends the upload. It reports false for stale
// generations.
func (t *Tracker) Complete(gen int) bool {
	if gen != t.generation || t.phase != PhaseUploading {
		return false
	}
	t.progress = 100
	t.phase = PhaseDone
	return true
}

// Current reports whether gen is the latest upload.
func (t *Tracker) Current(gen int) bool {
	return gen == t.generation
}

// Reset abandons any running upload.
func (t *Tracker) Reset() {
	t.generation++
	t.phase = PhaseIdle
	t.progress = 0
}
