// Package timer supplies the time sources an engine.Engine consumes as
// engine.Delta: a fixed-step source for deterministic stepping, and a
// variable-step source that smooths a sliding window of recent frame
// durations and clamps to [deltaMin, deltaMax], using a
// PhysicsEngine ticker/frameHistory.
package timer

import "github.com/0x5844/physics2d/engine"

// Fixed produces a constant engine.Delta every call, for deterministic
// reproducible stepping.
type Fixed struct {
	step float64
}

// NewFixed returns a Fixed timer stepping by step every tick.
func NewFixed(step float64) *Fixed {
	return &Fixed{step: step}
}

// Next returns the next engine.Delta, with LastDelta equal to Delta.
func (f *Fixed) Next() engine.Delta {
	return engine.DeltaFrom(f.step)
}

// defaultHistorySize bounds the smoothing window.
const defaultHistorySize = 100

// Variable smooths wall-clock frame durations over a sliding window and
// clamps the result to [deltaMin, deltaMax], so a stalled frame (e.g. a GC
// pause or a debugger breakpoint) can't blow up the simulation with an
// enormous single step, via a sliding ring
// (trimmed via frameHistory[1:]) but applied to the step fed into the
// engine rather than to FPS reporting.
type Variable struct {
	deltaMin, deltaMax float64
	historySize        int
	history            []float64
	lastDelta          float64
}

// NewVariable returns a Variable timer clamping to [deltaMin, deltaMax].
func NewVariable(deltaMin, deltaMax float64) *Variable {
	return &Variable{
		deltaMin:    deltaMin,
		deltaMax:    deltaMax,
		historySize: defaultHistorySize,
		history:     make([]float64, 0, defaultHistorySize),
	}
}

// Next records rawDelta (the wall-clock duration of the last frame),
// smooths it against the recent window, clamps it, and returns the engine
// Delta for the upcoming step. The first call has no prior step to pair
// with, so LastDelta equals the (clamped) Delta.
func (v *Variable) Next(rawDelta float64) engine.Delta {
	clamped := clamp(rawDelta, v.deltaMin, v.deltaMax)

	v.history = append(v.history, clamped)
	if len(v.history) > v.historySize {
		v.history = v.history[1:]
	}

	smoothed := average(v.history)

	lastDelta := v.lastDelta
	if lastDelta == 0 {
		lastDelta = smoothed
	}
	v.lastDelta = smoothed

	return engine.Delta{Delta: smoothed, LastDelta: lastDelta}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func average(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
