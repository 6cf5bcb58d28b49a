package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// MaxFrames bounds the frames of one run
const MaxFrames = 1 << 20

var (
	// ErrNoFrames is returned when a duration and frame rate yield no frames
	ErrNoFrames = errors.New("schedule has no frames")
	// ErrTooManyFrames is returned above MaxFrames
	ErrTooManyFrames = errors.New("schedule has too many frames")
)

// EntryKind tells a frame tick from the final teardown
type EntryKind int

const (
	FrameEntry EntryKind = iota
	DestroyEntry
)

func (k EntryKind) String() string {
	switch k {
	case FrameEntry:
		return "frame"
	case DestroyEntry:
		return "destroy"
	default:
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
}

// Entry is one pending action of a run, Offset after its start
type Entry struct {
	Offset time.Duration
	Kind   EntryKind
	Frac   float64
	Millis float64
}

// Schedule is the ordered list of entries for one run
type Schedule struct {
	Duration   time.Duration
	FrameCount int
	entries    []Entry
}

// NewSchedule splits duration into round(seconds*fps) equal steps and
// schedules a frame at every step boundary, first and last included,
// followed by a destroy entry at duration.
func NewSchedule(duration time.Duration, fps float64) (*Schedule, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("invalid duration %v", duration)
	}
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return nil, fmt.Errorf("invalid fps %v", fps)
	}

	n := math.Round(duration.Seconds() * fps)
	if n < 1 {
		return nil, fmt.Errorf("%w: %v at %v fps", ErrNoFrames, duration, fps)
	}
	if n > MaxFrames {
		return nil, fmt.Errorf("%w: %v at %v fps", ErrTooManyFrames, duration, fps)
	}
	frameCount := int(n)

	durationMs := float64(duration) / float64(time.Millisecond)
	delta := 1 / float64(frameCount)

	entries := make([]Entry, 0, frameCount+2)
	for i := 0; i <= frameCount; i++ {
		frac := float64(i) * delta
		if i == frameCount {
			frac = 1
		}
		entries = append(entries, Entry{
			Offset: time.Duration(float64(duration) * frac),
			Kind:   FrameEntry,
			Frac:   frac,
			Millis: durationMs * frac,
		})
	}
	entries = append(entries, Entry{
		Offset: duration,
		Kind:   DestroyEntry,
		Frac:   1,
		Millis: durationMs,
	})

	// Already ordered by construction; the stable sort keeps frames ahead of
	// destroy at equal offsets.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Offset < entries[j].Offset
	})

	return &Schedule{
		Duration:   duration,
		FrameCount: frameCount,
		entries:    entries,
	}, nil
}

// Entries returns a copy of the ordered entries
func (s *Schedule) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Schedule) hasDestroy() bool {
	for _, e := range s.entries {
		if e.Kind == DestroyEntry {
			return true
		}
	}
	return false
}

// Frames returns only the frame entries
func (s *Schedule) Frames() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Kind == FrameEntry {
			out = append(out, e)
		}
	}
	return out
}
