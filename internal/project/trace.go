package project

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/twinkle/internal/canvas"
	"github.com/ivlev/twinkle/internal/effects"
	"github.com/ivlev/twinkle/internal/engine"
)

// recordingHost hands out Recorder surfaces to mounted overlays
type recordingHost struct {
	mu       sync.Mutex
	surfaces map[uuid.UUID]*canvas.Recorder
}

func newRecordingHost() *recordingHost {
	return &recordingHost{surfaces: make(map[uuid.UUID]*canvas.Recorder)}
}

func (h *recordingHost) Mount(o engine.Overlay) (canvas.Surface, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rec := canvas.NewRecorder()
	h.surfaces[o.ID] = rec
	return rec, nil
}

func (h *recordingHost) Unmount(id uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.surfaces[id]; !ok {
		return fmt.Errorf("unknown overlay %s", id)
	}
	delete(h.surfaces, id)
	return nil
}

func (h *recordingHost) live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.surfaces)
}

// Trace runs one effect against a recording surface and prints every
// drawing call, one frame per block. It returns the number of frames.
func Trace(ctx context.Context, reg *effects.Registry, id string, opts effects.Options, w io.Writer) (int, error) {
	host := newRecordingHost()
	frames := 0
	var rec *canvas.Recorder

	after := func(ev engine.FrameEvent) {
		if rec == nil {
			rec = ev.Ctx.Surface().(*canvas.Recorder)
		}
		fmt.Fprintf(w, "# frame %d frac=%.4f t=%.1fms\n", frames, ev.Frac, ev.Millis)
		for _, c := range rec.Calls() {
			fmt.Fprintf(w, "  %s\n", c)
		}
		rec.Reset()
		frames++
	}

	trigger := engine.Trigger{Element: host, Position: engine.Position{}}
	err := reg.Run(ctx, id, trigger, opts,
		engine.WithClock(engine.NewVirtualClock(time.Unix(0, 0))),
		engine.WithAfterFrame(after))
	if err != nil {
		return frames, err
	}
	if n := host.live(); n != 0 {
		return frames, fmt.Errorf("%d overlays left mounted", n)
	}
	return frames, nil
}
