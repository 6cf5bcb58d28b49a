package canvas

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Call is one recorded Surface invocation
type Call struct {
	Op    string
	Args  []float64
	Style string
}

func (c Call) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, a := range c.Args {
		parts = append(parts, strconv.FormatFloat(a, 'g', 6, 64))
	}
	if c.Style != "" {
		parts = append(parts, strconv.Quote(c.Style))
	}
	return fmt.Sprintf("%s(%s)", c.Op, strings.Join(parts, ", "))
}

// Recorder is a Surface that draws nothing and remembers every call.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(op, style string, args ...float64) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Op: op, Args: args, Style: style})
	r.mu.Unlock()
}

// Calls returns a copy of the recorded calls
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Len returns the number of recorded calls
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Count returns how many calls of op were recorded
func (r *Recorder) Count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Last returns the most recent call of op
func (r *Recorder) Last(op string) (Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.calls) - 1; i >= 0; i-- {
		if r.calls[i].Op == op {
			return r.calls[i], true
		}
	}
	return Call{}, false
}

// Reset forgets all recorded calls
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

func (r *Recorder) BeginPath() { r.record("beginPath", "") }

func (r *Recorder) Arc(x, y, radius, startAngle, endAngle float64, counterclockwise bool) {
	ccw := 0.0
	if counterclockwise {
		ccw = 1
	}
	r.record("arc", "", x, y, radius, startAngle, endAngle, ccw)
}

func (r *Recorder) Stroke() { r.record("stroke", "") }

func (r *Recorder) Fill() { r.record("fill", "") }

func (r *Recorder) ClearRect(x, y, width, height float64) {
	r.record("clearRect", "", x, y, width, height)
}

func (r *Recorder) SetTransform(a, b, c, d, e, f float64) {
	r.record("setTransform", "", a, b, c, d, e, f)
}

func (r *Recorder) Translate(x, y float64) { r.record("translate", "", x, y) }

func (r *Recorder) Rotate(radians float64) { r.record("rotate", "", radians) }

func (r *Recorder) SetGlobalAlpha(alpha float64) { r.record("globalAlpha", "", alpha) }

func (r *Recorder) SetLineWidth(width float64) { r.record("lineWidth", "", width) }

func (r *Recorder) SetStrokeStyle(style string) { r.record("strokeStyle", style) }

func (r *Recorder) SetFillStyle(style string) { r.record("fillStyle", style) }
