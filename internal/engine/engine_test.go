package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/twinkle/internal/canvas"
)

type fakeHost struct {
	mu        sync.Mutex
	rec       *canvas.Recorder
	mountErr  error
	mounted   []Overlay
	unmounted []uuid.UUID
}

func newFakeHost() *fakeHost {
	return &fakeHost{rec: canvas.NewRecorder()}
}

func (h *fakeHost) Mount(o Overlay) (canvas.Surface, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mountErr != nil {
		return nil, h.mountErr
	}
	h.mounted = append(h.mounted, o)
	return h.rec, nil
}

func (h *fakeHost) Unmount(id uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unmounted = append(h.unmounted, id)
	return nil
}

func testTrigger(h Host) Trigger {
	return Trigger{Element: h, Position: Position{Left: 400, Top: 300}}
}

func TestScheduleFrames(t *testing.T) {
	s, err := NewSchedule(1000*time.Millisecond, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, s.FrameCount)

	entries := s.Entries()
	require.Len(t, entries, 27)

	frames := s.Frames()
	require.Len(t, frames, 26)
	for i, f := range frames {
		assert.InDelta(t, float64(i)/25, f.Frac, 1e-12, "frame %d", i)
		assert.InDelta(t, 1000*float64(i)/25, f.Millis, 1e-9, "frame %d", i)
		if i > 0 {
			assert.Greater(t, f.Frac, frames[i-1].Frac)
			assert.GreaterOrEqual(t, f.Offset, frames[i-1].Offset)
		}
	}
	assert.Equal(t, 0.0, frames[0].Frac)
	assert.Equal(t, 1.0, frames[25].Frac)

	last := entries[len(entries)-1]
	assert.Equal(t, DestroyEntry, last.Kind)
	assert.Equal(t, time.Second, last.Offset)

	destroys := 0
	for _, e := range entries {
		if e.Kind == DestroyEntry {
			destroys++
		}
	}
	assert.Equal(t, 1, destroys)
}

func TestScheduleRoundsFrameCount(t *testing.T) {
	s, err := NewSchedule(1000*time.Millisecond, 2.6)
	require.NoError(t, err)
	assert.Equal(t, 3, s.FrameCount)
	assert.Len(t, s.Frames(), 4)
	assert.Equal(t, 1.0, s.Frames()[3].Frac)

	_, err = NewSchedule(100*time.Millisecond, 4)
	assert.True(t, errors.Is(err, ErrNoFrames))

	_, err = NewSchedule(0, 25)
	assert.Error(t, err)
	_, err = NewSchedule(time.Second, 0)
	assert.Error(t, err)
	_, err = NewSchedule(time.Second, -1)
	assert.Error(t, err)

	_, err = NewSchedule(time.Second, 1e12)
	assert.True(t, errors.Is(err, ErrTooManyFrames))
}

func TestRunnerRun(t *testing.T) {
	host := newFakeHost()
	clock := NewVirtualClock(time.Unix(0, 0))

	var fracs, millis []float64
	frame := func(ev FrameEvent) {
		require.NotNil(t, ev.Ctx)
		ev.Ctx.Clear().Opacity(ev.Frac)
		fracs = append(fracs, ev.Frac)
		millis = append(millis, ev.Millis)
	}

	hooked := 0
	r := NewRunner(testTrigger(host), 200, 100, frame,
		WithClock(clock),
		WithAfterFrame(func(FrameEvent) { hooked++ }))

	start := clock.Now()
	require.NoError(t, r.Run(context.Background(), time.Second, 25))

	assert.Equal(t, Destroyed, r.State())
	assert.Len(t, fracs, 26)
	assert.Equal(t, 26, hooked)
	assert.Equal(t, 1000.0, millis[25])
	assert.Equal(t, time.Second, clock.Now().Sub(start))

	require.Len(t, host.mounted, 1)
	o := host.mounted[0]
	assert.Equal(t, 300.0, o.Left)
	assert.Equal(t, 250.0, o.Top)
	assert.Equal(t, 200, o.Width)
	assert.Equal(t, 100, o.Height)
	assert.Equal(t, DefaultZIndex, o.ZIndex)
	assert.Equal(t, []uuid.UUID{o.ID}, host.unmounted)

	assert.Equal(t, 26, host.rec.Count("clearRect"))
}

func TestNoDrawingAfterDestroy(t *testing.T) {
	host := newFakeHost()
	calls := 0
	r := NewRunner(testTrigger(host), 10, 10, func(ev FrameEvent) {
		calls++
		ev.Ctx.Clear()
	})

	require.NoError(t, r.Init())
	r.fire(Entry{Kind: FrameEntry, Frac: 0})
	require.Equal(t, 1, calls)
	require.NoError(t, r.Destroy())

	host.rec.Reset()
	r.fire(Entry{Kind: FrameEntry, Frac: 0.5})
	r.fire(Entry{Kind: FrameEntry, Frac: 1})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, host.rec.Len())
}

func TestDestroyTwice(t *testing.T) {
	host := newFakeHost()
	r := NewRunner(testTrigger(host), 10, 10, func(FrameEvent) {})

	assert.True(t, errors.Is(r.Destroy(), ErrNotActive))
	require.NoError(t, r.Init())
	require.NoError(t, r.Destroy())
	assert.True(t, errors.Is(r.Destroy(), ErrNotActive))
	assert.Len(t, host.unmounted, 1)
	assert.Error(t, r.Init())
}

func TestRunnerMountFailure(t *testing.T) {
	host := newFakeHost()
	host.mountErr = errors.New("no 2d context")
	called := false
	r := NewRunner(testTrigger(host), 10, 10, func(FrameEvent) { called = true },
		WithClock(NewVirtualClock(time.Now())))

	err := r.Run(context.Background(), time.Second, 25)
	assert.True(t, errors.Is(err, ErrSurface))
	assert.False(t, called)
	assert.Empty(t, host.unmounted)
	assert.Equal(t, Idle, r.State())
}

func TestRunnerRejectsBadScheduleBeforeMount(t *testing.T) {
	host := newFakeHost()
	r := NewRunner(testTrigger(host), 10, 10, func(FrameEvent) {})

	assert.Error(t, r.Run(context.Background(), time.Second, 0))
	assert.Empty(t, host.mounted)

	r = NewRunner(testTrigger(host), 0, 10, func(FrameEvent) {})
	assert.True(t, errors.Is(r.Run(context.Background(), time.Second, 25), ErrSurface))
	assert.Empty(t, host.mounted)
}

type bufferedSurface struct {
	*canvas.Recorder
	presented []int
}

func (b *bufferedSurface) Present() {
	b.presented = append(b.presented, b.Count("fill"))
}

type bufferedHost struct {
	surface *bufferedSurface
}

func (h *bufferedHost) Mount(Overlay) (canvas.Surface, error) { return h.surface, nil }
func (h *bufferedHost) Unmount(uuid.UUID) error               { return nil }

func TestRunnerPresentsFinishedFrames(t *testing.T) {
	host := &bufferedHost{surface: &bufferedSurface{Recorder: canvas.NewRecorder()}}
	r := NewRunner(testTrigger(host), 10, 10, func(ev FrameEvent) {
		ev.Ctx.Clear().Path().Circle(5, 5, 5).Fill("red")
	}, WithClock(NewVirtualClock(time.Unix(0, 0))))

	require.NoError(t, r.Run(context.Background(), 200*time.Millisecond, 25))
	// Present follows each complete frame
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, host.surface.presented)
}

func TestPlayRejectsUnfinishedSchedule(t *testing.T) {
	host := newFakeHost()
	r := NewRunner(testTrigger(host), 10, 10, func(FrameEvent) {},
		WithClock(NewVirtualClock(time.Unix(0, 0))))

	assert.True(t, errors.Is(r.Play(context.Background(), nil), ErrBadSchedule))
	assert.True(t, errors.Is(r.Play(context.Background(), &Schedule{}), ErrBadSchedule))

	frames := &Schedule{Duration: time.Second, FrameCount: 1, entries: []Entry{
		{Kind: FrameEntry},
		{Offset: time.Second, Kind: FrameEntry, Frac: 1},
	}}
	assert.True(t, errors.Is(r.Play(context.Background(), frames), ErrBadSchedule))
	assert.Empty(t, host.mounted)
	assert.Equal(t, Idle, r.State())
}

func TestRunnerCancel(t *testing.T) {
	host := newFakeHost()
	called := false
	r := NewRunner(testTrigger(host), 10, 10, func(FrameEvent) { called = true },
		WithClock(NewVirtualClock(time.Now())))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx, time.Second, 25)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, called)
	assert.Equal(t, Destroyed, r.State())
	assert.Len(t, host.unmounted, 1)
}

func TestRunnerRealClock(t *testing.T) {
	host := newFakeHost()
	frames := 0
	r := NewRunner(testTrigger(host), 10, 10, func(FrameEvent) { frames++ })

	start := time.Now()
	require.NoError(t, r.Run(context.Background(), 100*time.Millisecond, 50))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, 6, frames)
}

func TestVirtualClock(t *testing.T) {
	start := time.Unix(100, 0)
	c := NewVirtualClock(start)
	got := <-c.After(time.Second)
	assert.Equal(t, start.Add(time.Second), got)
	c.Advance(time.Second)
	assert.Equal(t, start.Add(2*time.Second), c.Now())
}
