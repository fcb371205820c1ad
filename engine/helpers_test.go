package engine

import (
	"context"
	"testing"
	"time"

	"github.com/lixenwraith/mpc-car/control"
	"github.com/lixenwraith/mpc-car/core"
	"github.com/lixenwraith/mpc-car/input"
	"github.com/lixenwraith/mpc-car/render"
	"github.com/lixenwraith/mpc-car/scene"
)

var testStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// recorder collects the call sequence across collaborators
type recorder struct {
	calls []string
}

func (r *recorder) add(s string) {
	if r != nil {
		r.calls = append(r.calls, s)
	}
}

// fakeController returns a fixed action, failing on the listed call indices
type fakeController struct {
	rec    *recorder
	clock  *MockTimeProvider
	action core.Action
	fail   map[int]bool
	work   []time.Duration
	refs   []control.Reference
	calls  int
}

func (c *fakeController) ComputeAction(_ core.State, ref control.Reference) (core.Action, error) {
	c.rec.add("control")
	c.refs = append(c.refs, ref)
	i := c.calls
	c.calls++
	if c.clock != nil && i < len(c.work) {
		c.clock.Advance(c.work[i])
	}
	if c.fail[i] {
		return core.Action{}, &control.ControlFailure{Tick: uint64(i + 1), Status: control.StatusInfeasible}
	}
	return c.action, nil
}

// fakeSim moves x by v per step
type fakeSim struct {
	rec   *recorder
	steps []core.Action
}

func (s *fakeSim) Step(st core.State, a core.Action) core.State {
	s.rec.add("step")
	s.steps = append(s.steps, a)
	st.X += a.V
	return st
}

type fakeScene struct {
	rec *recorder
}

func (s *fakeScene) Project(st core.State, t core.TargetPose) []scene.Drawable {
	s.rec.add("project")
	return []scene.Drawable{{Role: scene.RoleBody, Anchor: st.Position()}}
}

// fakeCanvas replays one batch of events per poll
type fakeCanvas struct {
	rec     *recorder
	batches [][]input.Event
	polls   int
	hud     render.HUD
	frames  int
	closed  bool
}

func (c *fakeCanvas) Clear()               { c.rec.add("clear") }
func (c *fakeCanvas) Draw(scene.Drawable)  { c.rec.add("draw") }
func (c *fakeCanvas) DrawHUD(h render.HUD) { c.rec.add("hud"); c.hud = h }
func (c *fakeCanvas) Present()             { c.rec.add("present"); c.frames++ }
func (c *fakeCanvas) PointerPosition() core.Vec2 {
	return core.Vec2{}
}
func (c *fakeCanvas) Close() { c.closed = true }

func (c *fakeCanvas) PollEvents() []input.Event {
	c.rec.add("poll")
	i := c.polls
	c.polls++
	if i < len(c.batches) {
		return c.batches[i]
	}
	return nil
}

// recordingClock logs sleeps into the call sequence
type recordingClock struct {
	*MockTimeProvider
	rec *recorder
}

func (c recordingClock) Sleep(ctx context.Context, d time.Duration) {
	c.rec.add("sleep")
	c.MockTimeProvider.Sleep(ctx, d)
}

func testLoopConfig() LoopConfig {
	return LoopConfig{
		Period:    100 * time.Millisecond,
		CancelKey: 'q',
		Width:     1200,
		Height:    800,
	}
}

type harness struct {
	rec    *recorder
	clock  *MockTimeProvider
	ctrl   *fakeController
	sim    *fakeSim
	canvas *fakeCanvas
	loop   *Loop
}

func newHarness(t *testing.T, cfg LoopConfig, ctrl *fakeController, batches ...[]input.Event) *harness {
	t.Helper()
	rec := &recorder{}
	clock := NewMockTimeProvider(testStart)
	ctrl.rec = rec
	if ctrl.clock == nil {
		ctrl.clock = clock
	}
	h := &harness{
		rec:    rec,
		clock:  clock,
		ctrl:   ctrl,
		sim:    &fakeSim{rec: rec},
		canvas: &fakeCanvas{rec: rec, batches: batches},
	}
	loop, err := NewLoop(cfg, Deps{
		Controller: ctrl,
		Simulator:  h.sim,
		Scene:      &fakeScene{rec: rec},
		Canvas:     h.canvas,
		Clock:      recordingClock{MockTimeProvider: clock, rec: rec},
	}, core.State{X: 100, Y: 100}, core.TargetPose{X: 500, Y: 400})
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	h.loop = loop
	return h
}
