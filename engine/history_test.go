package engine

import (
	"reflect"
	"testing"

	"github.com/lixenwraith/mpc-car/core"
)

func TestHistoryRing(t *testing.T) {
	h := NewHistory(3)
	if _, ok := h.Last(); ok {
		t.Fatal("empty history has no last sample")
	}

	for i := 0; i < 5; i++ {
		h.Push(Sample{Tick: uint64(i), State: core.State{X: float64(i)}, Action: core.Action{V: float64(10 * i)}})
	}

	if h.Len() != 3 {
		t.Fatalf("len=%d, want 3", h.Len())
	}
	ticks := []uint64{}
	for _, s := range h.Samples() {
		ticks = append(ticks, s.Tick)
	}
	if !reflect.DeepEqual(ticks, []uint64{2, 3, 4}) {
		t.Errorf("retained ticks = %v, want oldest overwritten", ticks)
	}
	if last, _ := h.Last(); last.Tick != 4 {
		t.Errorf("last tick = %d", last.Tick)
	}
	if got := h.Series(func(s Sample) float64 { return s.State.X }); !reflect.DeepEqual(got, []float64{2, 3, 4}) {
		t.Errorf("series = %v", got)
	}
}

func TestHistorySparklines(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i <= DefaultHistorySize; i++ {
		h.Push(Sample{Tick: uint64(i)})
	}
	if h.Len() != DefaultHistorySize {
		t.Errorf("default capacity retains %d samples", h.Len())
	}
	h.Push(Sample{State: core.State{X: 1, Y: 2, Theta: 3, Delta: 0.1}, Action: core.Action{V: 5, Phi: -1}})

	lines := h.Sparklines()
	labels := []string{}
	for _, s := range lines {
		labels = append(labels, s.Label)
	}
	if !reflect.DeepEqual(labels, []string{"x", "y", "theta", "delta", "v", "phi"}) {
		t.Errorf("labels = %v", labels)
	}
	if lines[4].Values[0] != 5 || lines[5].Values[0] != -1 {
		t.Errorf("action series = %+v %+v", lines[4], lines[5])
	}
}
