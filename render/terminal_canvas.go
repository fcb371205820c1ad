package render

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/lixenwraith/mpc-car/core"
	"github.com/lixenwraith/mpc-car/input"
	"github.com/lixenwraith/mpc-car/scene"
)

// Mode selects the display backing a TerminalCanvas
type Mode uint8

const (
	// ModeWindowed draws on the controlling terminal
	ModeWindowed Mode = iota
	// ModeHeadless draws on an in-memory screen that is never displayed
	ModeHeadless
)

func (m Mode) String() string {
	if m == ModeHeadless {
		return "headless"
	}
	return "windowed"
}

// HUDRows is the number of terminal rows reserved below the scene
const HUDRows = 2

const (
	defaultColumns = 160
	defaultRows    = 50
	halfBlock      = '▀'
)

// Options configures a TerminalCanvas
type Options struct {
	Mode Mode
	// Scene extent in scene units
	Width, Height float64
	Title         string
	// Headless screen size in cells, defaults to 160x50
	Columns, Rows int
}

// TerminalCanvas rasterizes drawables into half-block cells of a tcell screen
type TerminalCanvas struct {
	screen tcell.Screen
	opts   Options

	pixels *PixelBuffer
	view   Viewport
	cols   int
	rows   int

	hud     HUD
	pointer core.Vec2
	buttons tcell.ButtonMask
	closed  bool
}

// NewTerminalCanvas opens the screen selected by opts.Mode
func NewTerminalCanvas(opts Options) (*TerminalCanvas, error) {
	var screen tcell.Screen
	if opts.Mode == ModeHeadless {
		screen = tcell.NewSimulationScreen("UTF-8")
	} else {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, errors.Wrapf(ErrRenderingUnavailable, "open terminal: %v", err)
		}
		screen = s
	}
	return NewTerminalCanvasOn(screen, opts)
}

// NewTerminalCanvasOn initializes the canvas on an existing, not yet initialized screen
func NewTerminalCanvasOn(screen tcell.Screen, opts Options) (*TerminalCanvas, error) {
	if !(opts.Width > 0) || !(opts.Height > 0) {
		return nil, errors.Wrapf(ErrRenderingUnavailable, "scene extent %vx%v", opts.Width, opts.Height)
	}
	if err := screen.Init(); err != nil {
		return nil, errors.Wrapf(ErrRenderingUnavailable, "init screen: %v", err)
	}

	if opts.Mode == ModeHeadless {
		cols := lo.Ternary(opts.Columns > 0, opts.Columns, defaultColumns)
		rows := lo.Ternary(opts.Rows > 0, opts.Rows, defaultRows)
		screen.SetSize(cols, rows)
	}
	screen.EnableMouse()
	screen.HideCursor()
	screen.SetStyle(tcell.StyleDefault.Background(RgbLetterbox))
	if opts.Title != "" {
		screen.SetTitle(opts.Title)
	}

	c := &TerminalCanvas{
		screen: screen,
		opts:   opts,
		pixels: NewPixelBuffer(0, 0),
	}
	c.resize()
	return c, nil
}

// Screen exposes the underlying tcell screen
func (c *TerminalCanvas) Screen() tcell.Screen {
	return c.screen
}

// Viewport returns the current scene to pixel mapping
func (c *TerminalCanvas) Viewport() Viewport {
	return c.view
}

func (c *TerminalCanvas) resize() {
	c.cols, c.rows = c.screen.Size()
	sceneRows := max(c.rows-HUDRows, 1)
	c.pixels.Resize(c.cols, 2*sceneRows)
	c.view = NewViewport(c.opts.Width, c.opts.Height, c.cols, 2*sceneRows)
}

// Clear paints the letterbox and the scene background
func (c *TerminalCanvas) Clear() {
	c.pixels.Fill(RgbLetterbox)
	w, h := c.opts.Width, c.opts.Height
	extent := lo.Map([]core.Vec2{{}, {X: w}, {X: w, Y: h}, {Y: h}}, func(p core.Vec2, _ int) core.Vec2 {
		return c.view.ToPixel(p)
	})
	c.pixels.FillPolygon(extent, RgbBackground)
}

// Draw rasterizes a drawable, geometry with non-finite points is skipped
func (c *TerminalCanvas) Draw(d scene.Drawable) {
	pts := lo.Map(d.Points(), func(p core.Vec2, _ int) core.Vec2 {
		return c.view.ToPixel(p)
	})
	color := RoleColor(d.Role)
	switch d.Kind {
	case scene.KindPolygon:
		c.pixels.FillPolygon(pts, color)
	case scene.KindPolyline:
		c.pixels.StrokePolyline(pts, d.Thickness*c.view.Scale(), color)
	}
}

// DrawHUD stores the overlay shown by the next Present
func (c *TerminalCanvas) DrawHUD(h HUD) {
	c.hud = h
}

// Present writes the raster and the HUD to the screen and shows it
func (c *TerminalCanvas) Present() {
	if c.closed {
		return
	}
	_, ph := c.pixels.Size()
	for row := 0; row < ph/2; row++ {
		for col := 0; col < c.cols; col++ {
			style := tcell.StyleDefault.
				Foreground(c.pixels.At(col, 2*row)).
				Background(c.pixels.At(col, 2*row+1))
			c.screen.SetContent(col, row, halfBlock, nil, style)
		}
	}
	c.drawHUD(ph / 2)
	c.screen.Show()
}

func (c *TerminalCanvas) drawHUD(top int) {
	base := tcell.StyleDefault.Background(RgbStatusBg)
	for y := top; y < c.rows; y++ {
		for x := 0; x < c.cols; x++ {
			c.screen.SetContent(x, y, ' ', nil, base)
		}
	}
	if top >= c.rows {
		return
	}

	// Status line: fields then the alert
	x := 1
	for i, f := range c.hud.Fields {
		if i > 0 {
			x = c.text(x, top, " │ ", base.Foreground(RgbSeparator))
		}
		x = c.text(x, top, f.Label+" ", base.Foreground(RgbStatusLabel))
		x = c.text(x, top, f.Value, base.Foreground(RgbStatusBar).Bold(true))
	}
	if c.hud.Alert != "" {
		c.text(max(x+3, c.cols-len([]rune(c.hud.Alert))-1), top, c.hud.Alert, base.Foreground(RgbAlert).Bold(true))
	}

	// Sparkline row splits the width evenly between series
	if top+1 >= c.rows || len(c.hud.Series) == 0 {
		return
	}
	slot := c.cols / len(c.hud.Series)
	colors := []tcell.Color{RgbSparkSpeed, RgbSparkRate}
	for i, s := range c.hud.Series {
		x := i*slot + 1
		label := s.Label
		if n := len(s.Values); n > 0 {
			label = fmt.Sprintf("%s %+.2f ", s.Label, s.Values[n-1])
		}
		x = c.text(x, top+1, label, base.Foreground(RgbStatusLabel))
		width := (i+1)*slot - x - 1
		style := base.Foreground(colors[i%len(colors)])
		for _, r := range SparklineRunes(s.Values, width, s.Min, s.Max) {
			c.screen.SetContent(x, top+1, r, nil, style)
			x++
		}
	}
}

// text writes s from column x and returns the column after it
func (c *TerminalCanvas) text(x, y int, s string, style tcell.Style) int {
	for _, r := range s {
		if x >= c.cols {
			break
		}
		c.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// PollEvents drains pending tcell events and translates them
func (c *TerminalCanvas) PollEvents() []input.Event {
	var out []input.Event
	for !c.closed && c.screen.HasPendingEvent() {
		ev := c.screen.PollEvent()
		if ev == nil {
			break
		}
		if e, ok := c.translate(ev); ok {
			out = append(out, e)
		}
	}
	return out
}

func (c *TerminalCanvas) translate(ev tcell.Event) (input.Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return input.Event{Type: input.EventQuit}, true
		case tcell.KeyRune:
			return input.Event{Type: input.EventKey, Key: ev.Rune()}, true
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		c.pointer = c.CellToScene(x, y)

		// Wheel bits are not buttons
		buttons := ev.Buttons() & (tcell.Button1 | tcell.Button2 | tcell.Button3)
		pressed := buttons&tcell.ButtonPrimary != 0
		was := c.buttons&tcell.ButtonPrimary != 0
		c.buttons = buttons

		e := input.Event{Pos: c.pointer, Button: input.PrimaryButton}
		switch {
		case pressed && !was:
			e.Type = input.EventPointerDown
		case !pressed && was:
			e.Type = input.EventPointerUp
		default:
			e.Type = input.EventPointerMove
			e.Button = 0
		}
		return e, true

	case *tcell.EventResize:
		c.screen.Sync()
		c.resize()
		return input.Event{Type: input.EventResize}, true
	}
	return input.Event{}, false
}

// CellToScene maps the centre of a terminal cell to scene units
func (c *TerminalCanvas) CellToScene(x, y int) core.Vec2 {
	return c.view.ToScene(core.Vec2{X: float64(x) + 0.5, Y: 2*float64(y) + 1})
}

// SceneToCell maps a scene point to the terminal cell showing it
func (c *TerminalCanvas) SceneToCell(p core.Vec2) (int, int) {
	px := c.view.ToPixel(p)
	return int(math.Floor(px.X)), int(math.Floor(px.Y / 2))
}

// PointerPosition returns the last pointer location seen in the event stream
func (c *TerminalCanvas) PointerPosition() core.Vec2 {
	return c.pointer
}

// Close restores the terminal, further calls are no-ops
func (c *TerminalCanvas) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.screen.Fini()
}
