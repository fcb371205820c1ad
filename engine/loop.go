// Package engine runs the fixed-tick interaction loop: control, simulate, project, input, render, pace
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/mpc-car/control"
	"github.com/lixenwraith/mpc-car/core"
	"github.com/lixenwraith/mpc-car/input"
	"github.com/lixenwraith/mpc-car/render"
	"github.com/lixenwraith/mpc-car/scene"
)

// Controller produces the action for the measured state
type Controller interface {
	ComputeAction(state core.State, ref control.Reference) (core.Action, error)
}

// Stepper advances the true state by one tick
type Stepper interface {
	Step(state core.State, action core.Action) core.State
}

// Projector turns state and target into drawables
type Projector interface {
	Project(state core.State, target core.TargetPose) []scene.Drawable
}

// Cues receives notable loop events, audio feedback in the binary
type Cues interface {
	TargetCommitted()
	ControlFailed()
}

// statsSource is implemented by controllers exposing solver statistics
type statsSource interface {
	Stats() control.SolveStats
}

// LoopState is the state of the interaction loop
type LoopState uint8

const (
	StateRunning LoopState = iota
	StateStopped
)

func (s LoopState) String() string {
	if s == StateStopped {
		return "stopped"
	}
	return "running"
}

// StopReason records why the loop stopped
type StopReason uint8

const (
	StopNone StopReason = iota
	StopQuit
	StopCancelKey
	StopControlFailure
	StopContext
	StopTickLimit
)

var stopReasonNames = [...]string{
	StopNone:           "none",
	StopQuit:           "quit",
	StopCancelKey:      "cancel_key",
	StopControlFailure: "control_failure",
	StopContext:        "context",
	StopTickLimit:      "tick_limit",
}

func (r StopReason) String() string {
	if int(r) < len(stopReasonNames) {
		return stopReasonNames[r]
	}
	return "unknown"
}

// FailurePolicy selects the reaction to a ControlFailure
type FailurePolicy uint8

const (
	// PolicyStop stops the loop in the failing tick without stepping the simulator
	PolicyStop FailurePolicy = iota
	// PolicyHold applies the last successful action for one tick, a second consecutive failure stops
	PolicyHold
)

func (p FailurePolicy) String() string {
	if p == PolicyHold {
		return "hold"
	}
	return "stop"
}

// ParseFailurePolicy converts a configuration name
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "stop", "":
		return PolicyStop, nil
	case "hold":
		return PolicyHold, nil
	}
	return PolicyStop, core.Invalid("unknown failure policy %q", s)
}

// LoopConfig holds the interaction parameters
type LoopConfig struct {
	Period        time.Duration
	MaxTicks      uint64 // 0 runs until stopped
	CancelKey     rune
	FailurePolicy FailurePolicy
	TargetDelta   float64 // Desired steering angle at the target
	Width, Height float64 // Gesture clamp extent
	HistorySize   int
}

// Deps are the collaborators of the loop, Clock, Cues and Logger are optional
type Deps struct {
	Controller Controller
	Simulator  Stepper
	Scene      Projector
	Canvas     render.Canvas
	Clock      Clock
	Cues       Cues
	Logger     *slog.Logger
}

// Loop owns the state and the target pose and passes copies to every component
type Loop struct {
	cfg        LoopConfig
	controller Controller
	sim        Stepper
	scene      Projector
	canvas     render.Canvas
	cues       Cues
	logger     *slog.Logger

	pacer   *Pacer
	gesture *input.Gesture
	history *History

	state  core.State
	target core.TargetPose
	last   core.Action

	status   LoopState
	reason   StopReason
	err      error
	ticks    uint64
	failures int
	hasGood  bool
}

// NewLoop validates the configuration and wires the collaborators
func NewLoop(cfg LoopConfig, deps Deps, initial core.State, target core.TargetPose) (*Loop, error) {
	if cfg.Period <= 0 {
		return nil, core.Invalid("tick period must be positive, got %v", cfg.Period)
	}
	if !(cfg.Width > 0) || !(cfg.Height > 0) {
		return nil, core.Invalid("scene extent must be positive, got %vx%v", cfg.Width, cfg.Height)
	}
	if deps.Controller == nil || deps.Simulator == nil || deps.Scene == nil || deps.Canvas == nil {
		return nil, core.Invalid("loop requires controller, simulator, scene and canvas")
	}
	if !initial.IsFinite() {
		return nil, core.Invalid("initial state is not finite: %+v", initial)
	}
	clock := deps.Clock
	if clock == nil {
		clock = NewTimeProvider()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cues := deps.Cues
	if cues == nil {
		cues = silentCues{}
	}

	return &Loop{
		cfg:        cfg,
		controller: deps.Controller,
		sim:        deps.Simulator,
		scene:      deps.Scene,
		canvas:     deps.Canvas,
		cues:       cues,
		logger:     logger,
		pacer:      NewPacer(clock, cfg.Period),
		gesture:    input.NewGesture(cfg.Width, cfg.Height),
		history:    NewHistory(cfg.HistorySize),
		state:      initial,
		target:     target,
		status:     StateRunning,
	}, nil
}

// Run ticks until the loop stops; the returned error is the ControlFailure that stopped it, if any
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("loop started",
		"state", l.state, "target", l.target,
		"period", l.cfg.Period, "policy", l.cfg.FailurePolicy.String())
	l.pacer.Reset()

	for l.status == StateRunning {
		if ctx.Err() != nil {
			l.stop(StopContext, nil)
			break
		}
		l.Tick(ctx)
	}

	l.logger.Info("loop stopped",
		"reason", l.reason.String(), "ticks", l.ticks, "late_ticks", l.pacer.Late(), "state", l.state)
	return l.err
}

// Tick runs one cycle in strict order: reference, control, simulate, project, input, render, pace
// Input drained in a tick only affects the reference of the next one
func (l *Loop) Tick(ctx context.Context) {
	if l.status != StateRunning {
		return
	}

	ref := control.ReferenceFrom(l.target, l.cfg.TargetDelta)

	action, err := l.controller.ComputeAction(l.state, ref)
	if err != nil {
		if !l.recover(err) {
			l.render(l.scene.Project(l.state, l.target))
			return
		}
		action = l.last
	} else {
		l.failures = 0
		l.last = action
		l.hasGood = true
		if src, ok := l.controller.(statsSource); ok && l.logger.Enabled(ctx, slog.LevelDebug) {
			st := src.Stats()
			l.logger.Debug("solved", "tick", l.ticks, "status", st.Status.String(),
				"cost", st.Cost, "iterations", st.Iterations, "duration", st.Duration, "action", action)
		}
	}

	l.state = l.sim.Step(l.state, action)
	l.history.Push(Sample{Tick: l.ticks, State: l.state, Action: action, Target: l.target})

	drawables := l.scene.Project(l.state, l.target)

	l.handleEvents(l.canvas.PollEvents())

	l.render(drawables)

	l.ticks++
	if l.cfg.MaxTicks > 0 && l.ticks >= l.cfg.MaxTicks && l.status == StateRunning {
		l.stop(StopTickLimit, nil)
	}
	if l.status != StateRunning {
		return
	}

	if _, late := l.pacer.Wait(ctx); late {
		l.logger.Debug("tick overran period", "tick", l.ticks, "period", l.cfg.Period)
	}
}

// recover applies the failure policy and reports whether the tick may continue with the held action
func (l *Loop) recover(err error) bool {
	l.failures++
	l.cues.ControlFailed()

	var failure *control.ControlFailure
	status := "unknown"
	if errors.As(err, &failure) {
		status = failure.Status.String()
	}

	if l.cfg.FailurePolicy == PolicyHold && l.failures == 1 && l.hasGood {
		l.logger.Warn("control failure, holding last action",
			"tick", l.ticks, "status", status, "action", l.last, "error", err)
		return true
	}

	l.logger.Error("control failure, stopping",
		"tick", l.ticks, "status", status, "consecutive", l.failures, "error", err)
	l.stop(StopControlFailure, err)
	return false
}

func (l *Loop) handleEvents(events []input.Event) {
	for _, ev := range events {
		if l.status != StateRunning {
			return
		}
		switch ev.Type {
		case input.EventQuit:
			l.stop(StopQuit, nil)

		case input.EventKey:
			if l.cfg.CancelKey != 0 && ev.Key == l.cfg.CancelKey {
				l.stop(StopCancelKey, nil)
			}

		case input.EventPointerDown:
			if ev.Button == input.PrimaryButton {
				l.gesture.Press(ev.Pos)
			}

		case input.EventPointerUp:
			if ev.Button != input.PrimaryButton {
				continue
			}
			if target, ok := l.gesture.Release(ev.Pos); ok {
				l.target = target
				l.cues.TargetCommitted()
				l.logger.Debug("target committed", "tick", l.ticks, "target", target)
			}
		}
	}
}

func (l *Loop) render(drawables []scene.Drawable) {
	l.canvas.Clear()
	for _, d := range drawables {
		l.canvas.Draw(d)
	}
	l.canvas.DrawHUD(l.hud())
	l.canvas.Present()
}

func (l *Loop) hud() render.HUD {
	fields := []render.Field{
		{Label: "tick", Value: fmt.Sprintf("%d", l.ticks)},
		{Label: "pos", Value: fmt.Sprintf("%.0f,%.0f", l.state.X, l.state.Y)},
		{Label: "θ", Value: fmt.Sprintf("%.0f°", core.Degrees(l.state.Theta))},
		{Label: "δ", Value: fmt.Sprintf("%.1f°", core.Degrees(l.state.Delta))},
		{Label: "target", Value: fmt.Sprintf("%.0f,%.0f %.0f°", l.target.X, l.target.Y, core.Degrees(l.target.Theta))},
	}
	if src, ok := l.controller.(statsSource); ok {
		st := src.Stats()
		fields = append(fields, render.Field{
			Label: "solve",
			Value: fmt.Sprintf("%s %d it %.1fms", st.Status, st.Iterations, float64(st.Duration.Microseconds())/1000),
		})
	}

	h := render.HUD{
		Fields: fields,
		Series: []render.Series{
			{Label: "v", Values: l.recent(func(s Sample) float64 { return s.Action.V })},
			{Label: "φ", Values: l.recent(func(s Sample) float64 { return s.Action.Phi })},
		},
	}
	if l.status == StateStopped {
		h.Alert = "STOPPED: " + l.reason.String()
	}
	return h
}

// hudWindow is the number of recent samples shown live
const hudWindow = 128

func (l *Loop) recent(f func(Sample) float64) []float64 {
	values := l.history.Series(f)
	return values[max(len(values)-hudWindow, 0):]
}

func (l *Loop) stop(reason StopReason, err error) {
	if l.status == StateStopped {
		return
	}
	l.status = StateStopped
	l.reason = reason
	l.err = err
}

// State returns the current true state
func (l *Loop) State() core.State {
	return l.state
}

// Target returns the committed target pose
func (l *Loop) Target() core.TargetPose {
	return l.target
}

// Status returns the loop state
func (l *Loop) Status() LoopState {
	return l.status
}

// Reason returns why the loop stopped, StopNone while running
func (l *Loop) Reason() StopReason {
	return l.reason
}

// Err returns the failure that stopped the loop
func (l *Loop) Err() error {
	return l.err
}

// Ticks returns the number of completed ticks
func (l *Loop) Ticks() uint64 {
	return l.ticks
}

// History returns the trajectory record
func (l *Loop) History() *History {
	return l.history
}

// Pacer exposes tick timing statistics
func (l *Loop) Pacer() *Pacer {
	return l.pacer
}

// DistanceToTarget is the planar distance between the car and the target
func (l *Loop) DistanceToTarget() float64 {
	return math.Hypot(l.state.X-l.target.X, l.state.Y-l.target.Y)
}

type silentCues struct{}

func (silentCues) TargetCommitted() {}
func (silentCues) ControlFailed()   {}
