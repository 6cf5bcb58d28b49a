package project

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/twinkle/internal/analyzer"
	"github.com/ivlev/twinkle/internal/director"
	"github.com/ivlev/twinkle/internal/effects"
	"github.com/ivlev/twinkle/internal/engine"
	"github.com/ivlev/twinkle/internal/stage"
	"github.com/ivlev/twinkle/internal/video"
)

// PlayScript plays a script in real time and records the stage at the
// capture rate until the last overlay is gone
func (p *Project) PlayScript(ctx context.Context, script *director.Script, name string) (Result, error) {
	cfg := p.Config

	d := &director.Director{Registry: p.Registry, Clock: engine.RealClock()}
	plan, err := d.Prepare(script)
	if err != nil {
		return Result{}, err
	}

	width, height := script.Stage.Width, script.Stage.Height
	if width <= 0 || height <= 0 {
		width, height = cfg.Width, cfg.Height
	}
	width += width % 2
	height += height % 2

	background := script.Stage.Background
	if background == "" {
		background = cfg.Background
	}
	backdrop, page := script.Stage.Backdrop, script.Stage.Page
	if backdrop == "" {
		backdrop, page = cfg.Backdrop, cfg.Page
	}
	bg, err := p.Backdrop(width, height, background, backdrop, page)
	if err != nil {
		return Result{}, err
	}

	fps := cfg.FPS
	if fps <= 0 {
		fps = effects.DefaultFPS
	}

	enc, quality := "", 0
	path := filepath.Join(cfg.Output, scriptName(name))
	if cfg.Format == video.FormatMP4 {
		enc, quality = p.encoder()
		path += ".mp4"
	}

	sink, err := video.NewSink(ctx, cfg.Format, path, width, height, fps, enc, quality)
	if err != nil {
		return Result{}, err
	}

	fmt.Printf("[*] Сценарий: %d событий, %.1fs | Сцена: %dx%d @ %g FPS\n",
		len(plan.Cues), plan.Length.Seconds(), width, height, fps)

	st := stage.NewStage(width, height, bg)
	done := make(chan error, 1)
	go func() {
		done <- d.PlayPlan(ctx, plan, st)
	}()

	frames := 0
	capture := func() error {
		img := st.Compose()
		defer st.Release(img)
		if err := sink.WriteFrame(img); err != nil {
			return err
		}
		frames++
		return nil
	}

	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	var playErr, writeErr error
loop:
	for {
		select {
		case <-ticker.C:
			if writeErr == nil {
				writeErr = capture()
			}
		case playErr = <-done:
			break loop
		}
	}
	if writeErr == nil {
		// Closing frame shows the stage with every overlay removed
		writeErr = capture()
	}

	closeErr := sink.Close()
	switch {
	case playErr != nil:
		return Result{}, playErr
	case writeErr != nil:
		return Result{}, writeErr
	case closeErr != nil:
		return Result{}, closeErr
	}
	return Result{Effect: scriptName(name), Path: path, Frames: frames}, nil
}

func scriptName(name string) string {
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}

// SuggestScript detects regions of interest on the configured backdrop and
// builds a script that highlights them with effect
func (p *Project) SuggestScript(effect string, det analyzer.Detector) (*director.Script, error) {
	cfg := p.Config
	if cfg.Backdrop == "" {
		return nil, fmt.Errorf("no backdrop to analyze")
	}

	bg, err := p.Backdrop(cfg.Width, cfg.Height, cfg.Background, cfg.Backdrop, cfg.Page)
	if err != nil {
		return nil, err
	}
	regions, err := det.Detect(bg)
	if err != nil {
		return nil, fmt.Errorf("analyze backdrop: %w", err)
	}
	fmt.Printf("[*] Найдено областей: %d\n", len(regions))

	s := director.NewSuggester(cfg.Width, cfg.Height, effect)
	s.Tint = cfg.Tint
	script, err := s.Suggest(regions)
	if err != nil {
		return nil, err
	}
	script.Stage.Background = cfg.Background
	script.Stage.Backdrop = cfg.Backdrop
	script.Stage.Page = cfg.Page

	d := &director.Director{Registry: p.Registry}
	if _, err := d.Prepare(script); err != nil {
		return nil, err
	}
	return script, nil
}
