package engine

import (
	"github.com/samber/lo"

	"github.com/lixenwraith/mpc-car/core"
	"github.com/lixenwraith/mpc-car/render"
)

// DefaultHistorySize bounds the in-memory trajectory record
const DefaultHistorySize = 4096

// Sample is the record of one completed tick
type Sample struct {
	Tick   uint64
	State  core.State
	Action core.Action
	Target core.TargetPose
}

// History is a fixed-capacity ring of samples
// Overflow: oldest samples overwritten when full
type History struct {
	samples []Sample
	head    uint64 // Oldest retained sample
	tail    uint64 // Next write position
}

// NewHistory creates a ring holding up to capacity samples
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{samples: make([]Sample, capacity)}
}

// Push appends a sample
func (h *History) Push(s Sample) {
	size := uint64(len(h.samples))
	h.samples[h.tail%size] = s
	h.tail++
	if h.tail-h.head > size {
		h.head = h.tail - size
	}
}

// Len returns the number of retained samples
func (h *History) Len() int {
	return int(h.tail - h.head)
}

// Samples returns the retained samples, oldest first
func (h *History) Samples() []Sample {
	size := uint64(len(h.samples))
	out := make([]Sample, 0, h.tail-h.head)
	for i := h.head; i < h.tail; i++ {
		out = append(out, h.samples[i%size])
	}
	return out
}

// Last returns the newest sample
func (h *History) Last() (Sample, bool) {
	if h.tail == h.head {
		return Sample{}, false
	}
	return h.samples[(h.tail-1)%uint64(len(h.samples))], true
}

// Series extracts one quantity per retained sample
func (h *History) Series(f func(Sample) float64) []float64 {
	return lo.Map(h.Samples(), func(s Sample, _ int) float64 {
		return f(s)
	})
}

// Sparklines summarizes the recorded trajectory, one labelled series per state and action component
func (h *History) Sparklines() []render.Series {
	return []render.Series{
		{Label: "x", Values: h.Series(func(s Sample) float64 { return s.State.X })},
		{Label: "y", Values: h.Series(func(s Sample) float64 { return s.State.Y })},
		{Label: "theta", Values: h.Series(func(s Sample) float64 { return s.State.Theta })},
		{Label: "delta", Values: h.Series(func(s Sample) float64 { return s.State.Delta })},
		{Label: "v", Values: h.Series(func(s Sample) float64 { return s.Action.V })},
		{Label: "phi", Values: h.Series(func(s Sample) float64 { return s.Action.Phi })},
	}
}
