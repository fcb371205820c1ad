package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/mpc-car/audio"
	"github.com/lixenwraith/mpc-car/config"
	"github.com/lixenwraith/mpc-car/constants"
	"github.com/lixenwraith/mpc-car/control"
	"github.com/lixenwraith/mpc-car/core"
	"github.com/lixenwraith/mpc-car/engine"
	"github.com/lixenwraith/mpc-car/logs"
	"github.com/lixenwraith/mpc-car/physics"
	"github.com/lixenwraith/mpc-car/render"
	"github.com/lixenwraith/mpc-car/report"
	"github.com/lixenwraith/mpc-car/scene"
	"github.com/lixenwraith/mpc-car/solver"
)

func main() {
	// Panic Recovery: the registered cleanup closes the screen before the stack trace is printed
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// flags are the command line overrides applied on top of the configuration file
type flags struct {
	configPath string
	headless   bool
	ticks      int
	seed       int64
	debug      bool
	logFile    string
	mute       bool
	plotPath   string
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("mpc-car", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "Configuration file (.cue, .toml or .json)")
	fs.BoolVar(&f.headless, "headless", false, "Run on a simulated screen and print a summary")
	fs.IntVar(&f.ticks, "ticks", -1, "Stop after this many ticks, 0 runs until stopped")
	fs.Int64Var(&f.seed, "seed", 0, "Seed for the random initial state, 0 uses the configured seed")
	fs.BoolVar(&f.debug, "debug", false, "Log at debug level")
	fs.StringVar(&f.logFile, "log", "", "Log file, overrides the configured one")
	fs.BoolVar(&f.mute, "mute", false, "Disable audio cues")
	fs.StringVar(&f.plotPath, "plot", "", "Write a PNG plot of the recorded run to this file")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if fs.NArg() > 0 {
		return f, errors.Errorf("unexpected arguments: %v", fs.Args())
	}
	return f, nil
}

// apply merges the flags into cfg
func (f flags) apply(cfg *config.Config) {
	if f.headless {
		cfg.Display.Headless = true
	}
	switch {
	case f.ticks >= 0:
		cfg.Loop.MaxTicks = f.ticks
	case cfg.Display.Headless && cfg.Loop.MaxTicks == 0:
		cfg.Loop.MaxTicks = constants.HeadlessTicks
	}
	if f.seed != 0 {
		cfg.Initial.Seed = f.seed
	}
	if f.debug {
		cfg.Log.Level = "debug"
	}
	if f.logFile != "" {
		cfg.Log.File = f.logFile
	}
	if f.mute {
		cfg.Audio.Enabled = false
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	f.apply(&cfg)
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	// Windowed mode owns the tty, so records go to the log file; headless mode logs to stderr
	logOpts := logs.Options{Level: cfg.Log.Level, File: cfg.Log.File}
	if cfg.Display.Headless {
		logOpts.Writer = stderr
	}
	logger, err := logs.New(logOpts)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer logger.Close()

	app, err := newApp(cfg, logger.Logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		fmt.Fprintf(stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer app.close()

	runErr := app.loop.Run(ctx)
	// The screen is released before anything is printed to the tty
	app.close()

	if cfg.Display.Headless {
		writeSummary(stdout, app.loop)
	}
	if f.plotPath != "" && app.loop.History().Len() > 0 {
		if err := report.WritePNG(f.plotPath, app.loop.History().Samples(), cfg.Controller.TimeStep); err != nil {
			logger.Error("plot failed", "path", f.plotPath, "error", err)
			fmt.Fprintf(stderr, "Failed to write plot: %v\n", err)
			return 1
		}
	}
	if runErr != nil {
		fmt.Fprintf(stderr, "Stopped by control failure: %v\n", runErr)
		return 1
	}
	return 0
}

// app holds the wired components of one run
type app struct {
	loop   *engine.Loop
	canvas *render.TerminalCanvas
	sound  *audio.SoundManager
	closed bool
}

func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	dynamics, err := cfg.Dynamics()
	if err != nil {
		return nil, err
	}
	sim, err := physics.NewSimulator(dynamics, cfg.Controller.TimeStep)
	if err != nil {
		return nil, err
	}
	ctrl, err := control.NewMotionController(cfg.ControllerConfig(), dynamics, solver.NewShooting(solver.DefaultSettings()))
	if err != nil {
		return nil, err
	}
	sceneModel, err := scene.NewModel(cfg.Vehicle.Wheelbase)
	if err != nil {
		return nil, err
	}
	policy, err := engine.ParseFailurePolicy(cfg.Loop.FailurePolicy)
	if err != nil {
		return nil, err
	}

	seed := cfg.Initial.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	initial := cfg.InitialState(rand.New(rand.NewSource(seed)))

	mode := render.ModeWindowed
	if cfg.Display.Headless {
		mode = render.ModeHeadless
	}
	canvas, err := render.NewTerminalCanvas(render.Options{
		Mode:    mode,
		Width:   cfg.Scene.Width,
		Height:  cfg.Scene.Height,
		Title:   cfg.Display.Title,
		Columns: cfg.Display.Columns,
		Rows:    cfg.Display.Rows,
	})
	if err != nil {
		return nil, err
	}
	core.SetCrashCleanup(canvas.Close)

	a := &app{canvas: canvas}

	var cues engine.Cues
	if cfg.Audio.Enabled {
		sound := audio.NewSoundManager()
		if err := sound.Initialize(); err != nil {
			logger.Warn("audio unavailable, continuing without cues", "error", err)
		} else {
			a.sound = sound
			cues = sound
		}
	}

	loop, err := engine.NewLoop(engine.LoopConfig{
		Period:        cfg.TickPeriod(),
		MaxTicks:      uint64(cfg.Loop.MaxTicks),
		CancelKey:     cfg.CancelRune(),
		FailurePolicy: policy,
		TargetDelta:   cfg.Target.Delta,
		Width:         cfg.Scene.Width,
		Height:        cfg.Scene.Height,
		HistorySize:   cfg.Loop.HistorySize,
	}, engine.Deps{
		Controller: ctrl,
		Simulator:  sim,
		Scene:      sceneModel,
		Canvas:     canvas,
		Cues:       cues,
		Logger:     logger,
	}, initial, cfg.TargetPose())
	if err != nil {
		a.close()
		return nil, err
	}
	a.loop = loop

	logger.Info("starting",
		"mode", mode.String(),
		"integrator", cfg.Vehicle.Integrator,
		"horizon", cfg.Controller.Horizon,
		"time_step", cfg.Controller.TimeStep,
		"seed", seed,
		"initial", initial,
		"target", cfg.TargetPose(),
		"failure_policy", policy.String(),
	)
	return a, nil
}

func (a *app) close() {
	if a.closed {
		return
	}
	a.closed = true
	if a.sound != nil {
		a.sound.Cleanup()
	}
	a.canvas.Close()
	core.SetCrashCleanup(nil)
}

// writeSummary prints the final state and one sparkline per recorded series
func writeSummary(w io.Writer, loop *engine.Loop) {
	s, target := loop.State(), loop.Target()
	fmt.Fprintf(w, "stopped: %s after %d ticks (%d late)\n", loop.Reason(), loop.Ticks(), loop.Pacer().Late())
	fmt.Fprintf(w, "state:   x=%.2f y=%.2f theta=%.3f delta=%.3f\n", s.X, s.Y, s.Theta, s.Delta)
	fmt.Fprintf(w, "target:  x=%.2f y=%.2f theta=%.3f\n", target.X, target.Y, target.Theta)
	fmt.Fprintf(w, "distance: %.2f\n", loop.DistanceToTarget())
	if last, ok := loop.History().Last(); ok {
		fmt.Fprintf(w, "action:  v=%.2f phi=%.3f (tick %d)\n", last.Action.V, last.Action.Phi, last.Tick)
	}
	for _, series := range loop.History().Sparklines() {
		fmt.Fprintf(w, "%-6s %s\n", series.Label, render.Sparkline(series.Values, constants.SummaryWidth, series.Min, series.Max))
	}
}
