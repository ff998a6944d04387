package keyglow

import (
	"time"

	"libdb.so/keyglow/internal/heat"
	"libdb.so/keyglow/internal/led"
)

// DefaultUpdateInterval is how long the effect waits between render passes
// unless configured otherwise.
const DefaultUpdateInterval = time.Second

// KeyState is the set of transition flags delivered with a key event. The bit
// layout matches the matrixserial protocol.
type KeyState uint8

const (
	// KeyPressed is set while the key switch is held down.
	KeyPressed KeyState = 1 << 0
	// KeyWasPressed is set if the key was already down in the previous scan.
	KeyWasPressed KeyState = 1 << 1
	// KeyInjected marks a synthetic event not caused by a physical key switch.
	KeyInjected KeyState = 1 << 7
)

// ToggledOn reports whether the event is a fresh physical press: down now,
// not down in the previous scan.
func (s KeyState) ToggledOn() bool {
	return s&KeyPressed != 0 && s&KeyWasPressed == 0
}

// KeyEvent is a single key transition reported by the matrix controller.
type KeyEvent struct {
	Row   int
	Col   int
	State KeyState
}

// Surface is the LED surface a render pass writes to.
type Surface interface {
	// SetColorAt sets the color of the LED at the given matrix position.
	SetColorAt(row, col int, c led.RGBColor)
}

var _ Surface = (*led.Matrix)(nil)

// Effect is the keystroke heatmap effect: it counts key presses per cell and
// periodically repaints the whole matrix with gradient colors, hottest key
// getting the last palette stop.
//
// An Effect is owned by a single goroutine (the daemon's event loop); its
// methods must not be called concurrently.
type Effect struct {
	counter    *heat.Counter
	gradient   Gradient
	interval   time.Duration
	nextRender time.Time
}

// NewEffect creates a heatmap effect for a rows×cols matrix. An empty palette
// selects DefaultPalette and a zero interval selects DefaultUpdateInterval.
func NewEffect(rows, cols int, palette []led.RGBColor, interval time.Duration) *Effect {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}
	return &Effect{
		counter:  heat.NewCounter(rows, cols, len(palette)),
		gradient: NewGradient(palette),
		interval: interval,
	}
}

// SetPalette replaces the gradient palette. An empty palette selects
// DefaultPalette.
func (e *Effect) SetPalette(stops []led.RGBColor) {
	if len(stops) == 0 {
		stops = DefaultPalette
	}
	e.gradient = NewGradient(stops)
	e.counter.SetLevels(len(stops))
}

// SetUpdateInterval replaces the delay between render passes.
func (e *Effect) SetUpdateInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultUpdateInterval
	}
	e.interval = d
}

// Heat returns the raw press counter for the given cell.
func (e *Effect) Heat(row, col int) uint16 {
	return e.counter.At(row, col)
}

// HandleKeyEvent feeds one key transition into the heat counter. Injected
// events and events that are not a fresh press are ignored, so a held or
// repeated key counts once. Events with coordinates outside the matrix are
// dropped too: they can only come from a misbehaving controller, and a flat
// grid index must never be computed from them. The caller resumes normal
// event dispatch regardless.
func (e *Effect) HandleKeyEvent(ev KeyEvent) {
	if ev.Row < 0 || ev.Row >= e.counter.Rows() || ev.Col < 0 || ev.Col >= e.counter.Cols() {
		return
	}
	if ev.State&KeyInjected != 0 {
		return
	}
	if !ev.State.ToggledOn() {
		return
	}
	e.counter.Hit(ev.Row, ev.Col)
}

// Tick advances the effect's clock. The magnitude-based decay check runs on
// every tick; a render pass runs only once the update interval has elapsed
// (or if none was ever scheduled). Tick reports whether it rendered.
func (e *Effect) Tick(now time.Time, surface Surface) bool {
	// Decay depends only on how large the counters have grown, not on the
	// render cadence, so it is checked before the interval gate.
	if e.counter.ShouldDecay() {
		e.counter.Decay()
	}

	if !e.nextRender.IsZero() && now.Before(e.nextRender) {
		return false
	}
	e.nextRender = now.Add(e.interval)

	for r := 0; r < e.counter.Rows(); r++ {
		for c := 0; c < e.counter.Cols(); c++ {
			surface.SetColorAt(r, c, e.gradient.Compute(e.counter.Norm(r, c)))
		}
	}
	return true
}
