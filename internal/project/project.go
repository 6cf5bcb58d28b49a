package project

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/twinkle/internal/canvas"
	"github.com/ivlev/twinkle/internal/config"
	"github.com/ivlev/twinkle/internal/effects"
	"github.com/ivlev/twinkle/internal/engine"
	"github.com/ivlev/twinkle/internal/source"
	"github.com/ivlev/twinkle/internal/stage"
	"github.com/ivlev/twinkle/internal/system"
	"github.com/ivlev/twinkle/internal/video"
)

// Result describes one rendered effect
type Result struct {
	Effect string
	Path   string
	Frames int
}

// Project renders effects to frame sequences or video files
type Project struct {
	Config   *config.Config
	Registry *effects.Registry

	// BenchmarkLog receives one line per run when stats are enabled
	BenchmarkLog string
}

func NewProject(cfg *config.Config, reg *effects.Registry) *Project {
	return &Project{
		Config:       cfg,
		Registry:     reg,
		BenchmarkLog: "benchmark.log",
	}
}

// Backdrop builds the stage background: the background colour with the
// configured backdrop page fitted on top
func (p *Project) Backdrop(width, height int, background, backdrop string, page int) (image.Image, error) {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if background != "" {
		c, err := canvas.ParseStyle(background)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		draw.Draw(dst, dst.Rect, image.NewUniform(c), image.Point{}, draw.Src)
	}
	if backdrop == "" {
		return dst, nil
	}

	src, err := source.Open(backdrop)
	if err != nil {
		return nil, fmt.Errorf("backdrop: %w", err)
	}
	defer src.Close()

	if src.PageCount() == 0 {
		return nil, fmt.Errorf("источник не содержит страниц/кадров: %s", backdrop)
	}
	if page < 1 {
		page = 1
	}
	img, err := src.RenderPage(page-1, p.Config.DPI)
	if err != nil {
		return nil, fmt.Errorf("backdrop page %d: %w", page, err)
	}
	fitted := source.Fit(img, width, height)
	draw.Draw(dst, dst.Rect, fitted, image.Point{}, draw.Over)
	return dst, nil
}

func (p *Project) encoder() (string, int) {
	enc := p.Config.VideoEncoder
	if enc == "" {
		enc = system.GetBestH264Encoder()
	}
	quality := p.Config.Quality
	if quality == 0 {
		quality = system.DefaultQuality(enc)
	}
	return enc, quality
}

// Render plays every configured effect offline on its own stage and writes
// the composed frames. Effects run in parallel up to Config.Workers.
func (p *Project) Render(ctx context.Context) ([]Result, error) {
	startTime := time.Now()
	cfg := p.Config

	// Fail on bad options before anything is written
	for _, id := range cfg.Effects {
		if _, err := p.Registry.Prepare(id, cfg.EffectOptions(id)); err != nil {
			return nil, err
		}
	}

	bg, err := p.Backdrop(cfg.Width, cfg.Height, cfg.Background, cfg.Backdrop, cfg.Page)
	if err != nil {
		return nil, err
	}

	outDir := cfg.Output
	var tempDir string
	if cfg.Reel {
		tempDir, err = os.MkdirTemp("", "twinkle_")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(tempDir)
		outDir = tempDir
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	enc, quality := "", 0
	if cfg.Format == video.FormatMP4 {
		enc, quality = p.encoder()
	}

	fmt.Println("--- [TWINKLE: OFFLINE RENDER] ---")
	fmt.Printf("[*] Эффекты: %s\n", strings.Join(cfg.Effects, ", "))
	fmt.Printf("[*] Сцена: %dx%d | Формат: %s | Потоков: %d\n", cfg.Width, cfg.Height, cfg.Format, cfg.Workers)
	if enc != "" {
		fmt.Printf("[*] Энкодер: %s (качество %d)\n", enc, quality)
	}
	fmt.Println("-----------------------------")

	results := make([]Result, len(cfg.Effects))
	var ready int
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, id := range cfg.Effects {
		g.Go(func() error {
			path := outputPath(outDir, id, i, cfg.Format)
			frames, err := p.renderEffect(gctx, id, bg, path, enc, quality)
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			results[i] = Result{Effect: id, Path: path, Frames: frames}

			mu.Lock()
			ready++
			fmt.Printf("[>] Ready: %d/%d (%s, %d кадров)\n", ready, len(cfg.Effects), id, frames)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if cfg.Reel {
		paths := make([]string, len(results))
		for i, r := range results {
			paths[i] = r.Path
		}
		if err := os.MkdirAll(cfg.Output, 0755); err != nil {
			return nil, err
		}
		reel := filepath.Join(cfg.Output, "reel.mp4")
		fmt.Println("[*] Сборка общего ролика...")
		if err := video.Concatenate(ctx, paths, reel, tempDir); err != nil {
			return nil, fmt.Errorf("ошибка сборки ролика: %w", err)
		}
		total := 0
		for _, r := range results {
			total += r.Frames
		}
		results = []Result{{Effect: strings.Join(cfg.Effects, "+"), Path: reel, Frames: total}}
	}

	if cfg.ShowStats {
		p.report(time.Since(startTime), results)
	}
	return results, nil
}

func outputPath(dir, id string, index int, format string) string {
	name := fmt.Sprintf("%02d_%s", index+1, id)
	if format == video.FormatMP4 {
		return filepath.Join(dir, name+".mp4")
	}
	return filepath.Join(dir, name)
}

// renderEffect runs one effect against a virtual clock and captures the
// stage after every painted frame
func (p *Project) renderEffect(ctx context.Context, id string, bg image.Image, path, enc string, quality int) (int, error) {
	cfg := p.Config
	opts := cfg.EffectOptions(id)
	scene, err := p.Registry.Prepare(id, opts)
	if err != nil {
		return 0, err
	}

	st := stage.NewStage(cfg.Width, cfg.Height, bg)
	sink, err := video.NewSink(ctx, cfg.Format, path, cfg.Width, cfg.Height, scene.FPS, enc, quality)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := 0
	var writeErr error
	capture := func(engine.FrameEvent) {
		if writeErr != nil {
			return
		}
		img := st.Compose()
		defer st.Release(img)
		if err := sink.WriteFrame(img); err != nil {
			writeErr = err
			cancel()
			return
		}
		frames++
	}

	x, y := cfg.Position()
	trigger := engine.Trigger{Element: st, Position: engine.Position{Left: x, Top: y}}
	runErr := p.Registry.Run(ctx, id, trigger, opts,
		engine.WithClock(engine.NewVirtualClock(time.Unix(0, 0))),
		engine.WithAfterFrame(capture))

	closeErr := sink.Close()
	switch {
	case writeErr != nil:
		return frames, writeErr
	case runErr != nil:
		return frames, runErr
	case closeErr != nil:
		return frames, closeErr
	}
	return frames, nil
}

func (p *Project) report(total time.Duration, results []Result) {
	frames := 0
	for _, r := range results {
		frames += r.Frames
	}
	fps := float64(frames) / total.Seconds()

	host := "n/a"
	if stats, err := system.GetHostStats(); err == nil {
		host = stats.String()
	} else {
		log.Printf("[!] Не удалось получить сведения о системе: %v", err)
	}

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Host: %s\n"+
			"Total Time: %.2fs\n"+
			"Frames: %d\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		p.Config.BuildVersion, host, total.Seconds(), frames, fps,
	)
	fmt.Print(report)

	if p.BenchmarkLog == "" {
		return
	}
	logEntry := fmt.Sprintf("[%s] Build: %s | Effects: %s | Frames: %d | Total: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		strings.Join(p.Config.Effects, ","),
		frames,
		total.Seconds(),
		fps,
	)
	f, err := os.OpenFile(p.BenchmarkLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("[!] Не удалось записать %s: %v\n", p.BenchmarkLog, err)
		return
	}
	defer f.Close()
	f.WriteString(logEntry)
}
