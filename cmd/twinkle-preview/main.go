package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ivlev/twinkle/internal/config"
	"github.com/ivlev/twinkle/internal/director"
	"github.com/ivlev/twinkle/internal/effects"
	"github.com/ivlev/twinkle/internal/engine"
	"github.com/ivlev/twinkle/internal/project"
	"github.com/ivlev/twinkle/internal/stage"
)

var effectKeys = []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5}

// Preview hosts a stage in a window. Left click triggers the selected effect
// at the cursor, digits select the effect, S plays the script.
type Preview struct {
	ctx      context.Context
	cfg      *config.Config
	registry *effects.Registry
	director *director.Director
	script   *director.Script
	stage    *stage.Stage
	screen   *ebiten.Image
	ids      []string
	selected int
}

func (p *Preview) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	for i, k := range effectKeys {
		if i < len(p.ids) && inpututil.IsKeyJustPressed(k) {
			p.selected = i
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		id := p.ids[p.selected]
		trigger := engine.Trigger{
			Element:  p.stage,
			Position: engine.Position{Left: float64(x), Top: float64(y)},
		}
		go func() {
			if err := p.registry.Run(p.ctx, id, trigger, p.cfg.EffectOptions(id)); err != nil {
				log.Printf("[!] %v", err)
			}
		}()
	}

	if p.script != nil && inpututil.IsKeyJustPressed(ebiten.KeyS) {
		go func() {
			if err := p.director.Play(p.ctx, p.script, p.stage); err != nil {
				log.Printf("[!] Ошибка сценария: %v", err)
			}
		}()
	}
	return nil
}

func (p *Preview) Draw(screen *ebiten.Image) {
	img := p.stage.Compose()
	p.screen.WritePixels(img.Pix)
	p.stage.Release(img)

	screen.DrawImage(p.screen, nil)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s [1-%d] | overlays: %d | %.0f FPS",
		p.ids[p.selected], len(p.ids), p.stage.Len(), ebiten.ActualFPS()))
}

func (p *Preview) Layout(outsideWidth, outsideHeight int) (int, int) {
	return p.stage.Size()
}

func main() {
	configPtr := flag.String("config", "", "YAML файл настроек")
	optionsPtr := flag.String("options", "", "YAML файл с параметрами эффектов")
	scriptPtr := flag.String("script", "", "Сценарий для клавиши S")
	flag.Parse()

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения настроек: %v", err)
		}
		cfg = loaded
	}
	if *optionsPtr != "" {
		cfg.OptionsPath = *optionsPtr
	}
	if *scriptPtr != "" {
		cfg.ScriptPath = *scriptPtr
	}
	if cfg.OptionsPath != "" {
		opts, err := config.LoadOptions(cfg.OptionsPath)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения параметров эффектов: %v", err)
		}
		cfg.Options = opts
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Некорректные настройки: %v", err)
	}

	reg := effects.Default()
	p := &Preview{
		ctx:      context.Background(),
		cfg:      &cfg,
		registry: reg,
		director: &director.Director{Registry: reg, Clock: engine.RealClock()},
		ids:      reg.IDs(),
	}

	if cfg.ScriptPath != "" {
		script, err := director.ReadScript(cfg.ScriptPath)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения сценария: %v", err)
		}
		if _, err := p.director.Prepare(script); err != nil {
			log.Fatalf("[-] Ошибка сценария: %v", err)
		}
		p.script = script
		if script.Stage.Width > 0 && script.Stage.Height > 0 {
			cfg.Width, cfg.Height = script.Stage.Width, script.Stage.Height
		}
	}

	bg, err := project.NewProject(&cfg, reg).Backdrop(cfg.Width, cfg.Height, cfg.Background, cfg.Backdrop, cfg.Page)
	if err != nil {
		log.Fatalf("[-] Ошибка фона: %v", err)
	}
	p.stage = stage.NewStage(cfg.Width, cfg.Height, bg)
	p.screen = ebiten.NewImageWithOptions(image.Rect(0, 0, cfg.Width, cfg.Height), nil)
	for i, id := range p.ids {
		if len(cfg.Effects) > 0 && id == cfg.Effects[0] {
			p.selected = i
		}
	}

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("twinkle")
	if err := ebiten.RunGame(p); err != nil {
		log.Printf("[-] %v", err)
		os.Exit(1)
	}
}
