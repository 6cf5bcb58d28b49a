package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/twinkle/internal/canvas"
)

var (
	// ErrSurface wraps failures to acquire a drawing surface from the host
	ErrSurface = errors.New("cannot acquire drawing surface")
	// ErrNotActive is returned by Destroy when there is no live overlay
	ErrNotActive = errors.New("runner is not active")
	// ErrBadSchedule is returned by Play for a schedule that never ends the run
	ErrBadSchedule = errors.New("schedule has no destroy entry")
)

// State is the overlay lifecycle of a Runner
type State int

const (
	Idle State = iota
	Active
	Destroyed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Destroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Runner owns one overlay for the lifetime of one animation run. It turns a
// duration and frame rate into a Schedule, feeds FrameEvents to the frame
// callback in order and removes the overlay at the end.
type Runner struct {
	element       Host
	x, y          float64
	width, height int
	frame         FrameFunc

	clock      Clock
	afterFrame func(FrameEvent)
	zIndex     int

	mu      sync.Mutex
	state   State
	overlay Overlay
	ctx     *canvas.Context
}

// Option configures a Runner
type Option func(*Runner)

// WithClock sets the time source (RealClock by default)
func WithClock(c Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithAfterFrame registers a hook called after each painted frame while the
// overlay is still live. Used to capture composed output.
func WithAfterFrame(fn func(FrameEvent)) Option {
	return func(r *Runner) { r.afterFrame = fn }
}

// WithZIndex overrides the overlay layer
func WithZIndex(z int) Option {
	return func(r *Runner) { r.zIndex = z }
}

// NewRunner creates a Runner for a width x height overlay centred on the trigger position
func NewRunner(t Trigger, width, height int, frame FrameFunc, opts ...Option) *Runner {
	r := &Runner{
		element: t.Element,
		x:       t.Position.Left,
		y:       t.Position.Top,
		width:   width,
		height:  height,
		frame:   frame,
		clock:   RealClock(),
		zIndex:  DefaultZIndex,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current lifecycle state
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Overlay returns the geometry of the mounted overlay
func (r *Runner) Overlay() Overlay {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlay
}

// Init mounts the overlay on the host and binds a drawing context to it
func (r *Runner) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Idle {
		return fmt.Errorf("init: runner is %s", r.state)
	}
	if r.element == nil {
		return fmt.Errorf("%w: no host element", ErrSurface)
	}
	if r.width <= 0 || r.height <= 0 {
		return fmt.Errorf("%w: invalid size %dx%d", ErrSurface, r.width, r.height)
	}

	o := Overlay{
		ID:     uuid.New(),
		Left:   r.x - float64(r.width)*0.5,
		Top:    r.y - float64(r.height)*0.5,
		Width:  r.width,
		Height: r.height,
		ZIndex: r.zIndex,
	}
	surface, err := r.element.Mount(o)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSurface, err)
	}
	if surface == nil {
		return fmt.Errorf("%w: host returned no surface", ErrSurface)
	}

	r.overlay = o
	r.ctx = canvas.NewContext(surface, r.width, r.height)
	r.state = Active
	return nil
}

// Destroy detaches the overlay and drops the drawing context. It may only
// be called once, while the runner is active.
func (r *Runner) Destroy() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Active {
		return fmt.Errorf("%w: %s", ErrNotActive, r.state)
	}
	r.state = Destroyed
	r.ctx = nil
	if err := r.element.Unmount(r.overlay.ID); err != nil {
		return fmt.Errorf("unmount overlay %s: %w", r.overlay.ID, err)
	}
	return nil
}

// Run mounts the overlay, plays the schedule for duration at fps and returns
// once the overlay has been destroyed. Configuration errors are reported
// before anything is mounted. Cancelling ctx destroys the overlay early.
func (r *Runner) Run(ctx context.Context, duration time.Duration, fps float64) error {
	sched, err := NewSchedule(duration, fps)
	if err != nil {
		return err
	}
	return r.Play(ctx, sched)
}

// Play runs a prepared schedule. The overlay is gone when Play returns.
func (r *Runner) Play(ctx context.Context, sched *Schedule) error {
	if sched == nil || !sched.hasDestroy() {
		return ErrBadSchedule
	}
	if err := r.Init(); err != nil {
		return err
	}

	start := r.clock.Now()
	for _, e := range sched.entries {
		if wait := e.Offset - r.clock.Now().Sub(start); wait > 0 {
			select {
			case <-ctx.Done():
				return r.abort(ctx.Err())
			case <-r.clock.After(wait):
			}
		} else if err := ctx.Err(); err != nil {
			return r.abort(err)
		}

		switch e.Kind {
		case FrameEntry:
			r.fire(e)
		case DestroyEntry:
			return r.Destroy()
		}
	}
	return r.Destroy()
}

func (r *Runner) abort(cause error) error {
	if err := r.Destroy(); err != nil && !errors.Is(err, ErrNotActive) {
		return fmt.Errorf("%w (cleanup: %v)", cause, err)
	}
	return cause
}

// fire hands a frame to the callback unless the overlay is gone. The lock
// is held so Destroy cannot run while a frame is being painted.
func (r *Runner) fire(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Active {
		return
	}
	ev := FrameEvent{Ctx: r.ctx, Frac: e.Frac, Millis: e.Millis}
	r.frame(ev)
	if p, ok := r.ctx.Surface().(canvas.Presenter); ok {
		p.Present()
	}
	if r.afterFrame != nil {
		r.afterFrame(ev)
	}
}
