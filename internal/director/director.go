package director

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/twinkle/internal/effects"
	"github.com/ivlev/twinkle/internal/engine"
)

// Director plays scripts: every cue becomes one effect run on a shared host
type Director struct {
	Registry *effects.Registry
	Clock    engine.Clock
}

// NewDirector creates a Director with the built-in effects and the wall clock
func NewDirector() *Director {
	return &Director{
		Registry: effects.Default(),
		Clock:    engine.RealClock(),
	}
}

// PlannedCue is a validated cue ready to run
type PlannedCue struct {
	Index    int
	Cue      Cue
	Scene    effects.Scene
	Schedule *engine.Schedule
}

// End is the time the cue's overlay is removed, relative to script start
func (p PlannedCue) End() time.Duration {
	return p.Cue.Offset() + p.Schedule.Duration
}

// Plan is a fully validated script
type Plan struct {
	Cues   []PlannedCue
	Length time.Duration
}

// Prepare validates every cue and builds its scene. Nothing is mounted.
func (d *Director) Prepare(script *Script) (*Plan, error) {
	if script == nil {
		return nil, fmt.Errorf("script is nil")
	}

	plan := &Plan{Cues: make([]PlannedCue, 0, len(script.Cues))}
	for i, cue := range script.Cues {
		if cue.At < 0 {
			return nil, fmt.Errorf("cue %d: negative start %vms", i, cue.At)
		}
		scene, err := d.Registry.Prepare(cue.Effect, cue.Options)
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", i, err)
		}
		sched, err := engine.NewSchedule(scene.Duration, scene.FPS)
		if err != nil {
			return nil, fmt.Errorf("cue %d (%s): %w", i, cue.Effect, err)
		}

		p := PlannedCue{Index: i, Cue: cue, Scene: scene, Schedule: sched}
		if end := p.End(); end > plan.Length {
			plan.Length = end
		}
		plan.Cues = append(plan.Cues, p)
	}

	sort.SliceStable(plan.Cues, func(i, j int) bool {
		return plan.Cues[i].Cue.At < plan.Cues[j].Cue.At
	})
	return plan, nil
}

// Play validates the script and then runs all cues concurrently on host.
// It returns when every overlay has been removed. The first failing cue
// cancels the others.
func (d *Director) Play(ctx context.Context, script *Script, host engine.Host, opts ...engine.Option) error {
	plan, err := d.Prepare(script)
	if err != nil {
		return err
	}
	return d.PlayPlan(ctx, plan, host, opts...)
}

// PlayPlan runs a prepared plan
func (d *Director) PlayPlan(ctx context.Context, plan *Plan, host engine.Host, opts ...engine.Option) error {
	clock := d.Clock
	if clock == nil {
		clock = engine.RealClock()
	}
	runnerOpts := append([]engine.Option{engine.WithClock(clock)}, opts...)

	g, gctx := errgroup.WithContext(ctx)
	start := clock.Now()

	for _, p := range plan.Cues {
		g.Go(func() error {
			if wait := p.Cue.Offset() - clock.Now().Sub(start); wait > 0 {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-clock.After(wait):
				}
			}

			trigger := engine.Trigger{
				Element:  host,
				Position: engine.Position{Left: p.Cue.X, Top: p.Cue.Y},
			}
			runner := engine.NewRunner(trigger, p.Scene.Width, p.Scene.Height, p.Scene.Frame, runnerOpts...)
			if err := runner.Play(gctx, p.Schedule); err != nil {
				log.Printf("[!] director: cue %d (%s) failed: %v", p.Index, p.Cue.Effect, err)
				return fmt.Errorf("cue %d (%s): %w", p.Index, p.Cue.Effect, err)
			}
			return nil
		})
	}

	return g.Wait()
}
