package effects

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ivlev/twinkle/internal/engine"
)

var (
	ErrUnknownEffect   = errors.New("unknown effect")
	ErrDuplicateEffect = errors.New("effect already registered")
)

// Scene is a ready-to-run effect: overlay size, timing and frame callback
type Scene struct {
	Width    int
	Height   int
	Duration time.Duration
	FPS      float64
	Frame    engine.FrameFunc
}

// Builder turns merged settings into a Scene. It validates everything
// needed for the run so failures happen before an overlay exists.
type Builder func(s Settings) (Scene, error)

// Descriptor is one named effect
type Descriptor struct {
	ID       string
	Defaults Settings
	Build    Builder
}

// Registry maps effect ids to descriptors
type Registry struct {
	mu      sync.RWMutex
	effects map[string]Descriptor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{effects: make(map[string]Descriptor)}
}

// Default returns a registry with the built-in effects
func Default() *Registry {
	r := NewRegistry()
	for _, d := range []Descriptor{Splash(), Drop(), Drops(), Pulse(), Orbit()} {
		// Built-in ids are unique
		_ = r.Register(d)
	}
	return r
}

// Register adds an effect
func (r *Registry) Register(d Descriptor) error {
	if d.ID == "" {
		return fmt.Errorf("effect id is empty")
	}
	if d.Build == nil {
		return fmt.Errorf("effect %q has no builder", d.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.effects[d.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEffect, d.ID)
	}
	r.effects[d.ID] = d
	return nil
}

// Unregister removes an effect and reports whether it was present
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.effects[id]
	delete(r.effects, id)
	return ok
}

// Lookup finds an effect by id
func (r *Registry) Lookup(id string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.effects[id]
	return d, ok
}

// IDs lists the registered effect ids in order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.effects))
	for id := range r.effects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Prepare merges options over the effect defaults and builds its Scene
func (r *Registry) Prepare(id string, opts Options) (Scene, error) {
	d, ok := r.Lookup(id)
	if !ok {
		return Scene{}, fmt.Errorf("%w: %s", ErrUnknownEffect, id)
	}
	settings, err := Merge(d.Defaults, opts)
	if err != nil {
		return Scene{}, fmt.Errorf("%s: %w", id, err)
	}
	scene, err := d.Build(settings)
	if err != nil {
		return Scene{}, err
	}
	return scene, nil
}

// Run plays effect id at the trigger and blocks until its overlay is gone
func (r *Registry) Run(ctx context.Context, id string, t engine.Trigger, opts Options, runnerOpts ...engine.Option) error {
	scene, err := r.Prepare(id, opts)
	if err != nil {
		return err
	}
	sched, err := engine.NewSchedule(scene.Duration, scene.FPS)
	if err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}

	runner := engine.NewRunner(t, scene.Width, scene.Height, scene.Frame, runnerOpts...)
	if err := runner.Play(ctx, sched); err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	return nil
}
