package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/twinkle/internal/analyzer"
	"github.com/ivlev/twinkle/internal/config"
	"github.com/ivlev/twinkle/internal/director"
	"github.com/ivlev/twinkle/internal/effects"
	"github.com/ivlev/twinkle/internal/interpolator"
	"github.com/ivlev/twinkle/internal/project"
	"github.com/ivlev/twinkle/internal/system"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const scriptsDir = "scripts"

func main() {
	// Создаем нужные директории, если их нет
	for _, d := range []string{scriptsDir, "input", "output"} {
		os.MkdirAll(d, 0755)
	}

	configPtr := flag.String("config", "", "YAML файл настроек (флаги имеют приоритет)")
	effectsPtr := flag.String("effects", "splash", "Эффекты через запятую: splash, drop, drops, pulse, orbit")
	optionsPtr := flag.String("options", "", "YAML файл с параметрами эффектов (ключ - id эффекта)")
	scriptPtr := flag.String("script", "", "Сценарий для play (по умолчанию: самый свежий файл в scripts/)")
	outputPtr := flag.String("output", "output", "Папка для результатов")
	formatPtr := flag.String("format", "png", "Формат вывода: png (последовательность кадров) или mp4")
	reelPtr := flag.Bool("reel", false, "Склеить все эффекты в один ролик (только mp4)")
	widthPtr := flag.Int("width", 1280, "Ширина сцены")
	heightPtr := flag.Int("height", 720, "Высота сцены")
	xPtr := flag.Float64("x", 0, "X точки запуска (по умолчанию: центр сцены)")
	yPtr := flag.Float64("y", 0, "Y точки запуска (по умолчанию: центр сцены)")
	fpsPtr := flag.Float64("fps", 0, "FPS (0 - частота эффекта)")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Потоки")
	backdropPtr := flag.String("backdrop", "", "Фон: PDF, изображение или папка с изображениями")
	pagePtr := flag.Int("page", 1, "Страница фона (с 1)")
	dpiPtr := flag.Int("dpi", 150, "DPI для PDF фона")
	backgroundPtr := flag.String("background", "black", "Цвет фона (CSS)")
	presetPtr := flag.String("preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	encoderPtr := flag.String("encoder", "", "Энкодер ffmpeg (по умолчанию: лучший доступный)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности")
	detectorPtr := flag.String("detector", "contrast", "Детектор областей для suggest")
	tintPtr := flag.Bool("tint", false, "suggest: свой цвет для каждой области")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Использование: %s [флаги] render|list|trace|play|suggest\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения настроек: %v", err)
		}
		cfg = loaded
		fmt.Printf("[*] Настройки: %s\n", *configPtr)
	} else {
		cfg.Workers = *workersPtr
	}

	// Явно заданные флаги перекрывают файл настроек
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "effects":
			cfg.Effects = splitList(*effectsPtr)
		case "options":
			cfg.OptionsPath = *optionsPtr
		case "script":
			cfg.ScriptPath = *scriptPtr
		case "output":
			cfg.Output = *outputPtr
		case "format":
			cfg.Format = *formatPtr
		case "reel":
			cfg.Reel = *reelPtr
		case "width":
			cfg.Width = *widthPtr
		case "height":
			cfg.Height = *heightPtr
		case "x":
			cfg.X = *xPtr
		case "y":
			cfg.Y = *yPtr
		case "fps":
			cfg.FPS = *fpsPtr
		case "workers":
			cfg.Workers = *workersPtr
		case "backdrop":
			cfg.Backdrop = *backdropPtr
		case "page":
			cfg.Page = *pagePtr
		case "dpi":
			cfg.DPI = *dpiPtr
		case "background":
			cfg.Background = *backgroundPtr
		case "encoder":
			cfg.VideoEncoder = *encoderPtr
		case "quality":
			cfg.Quality = *qualityPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		case "tint":
			cfg.Tint = *tintPtr
		}
	})

	switch *presetPtr {
	case "16:9":
		cfg.Width, cfg.Height = 1280, 720
	case "9:16":
		cfg.Width, cfg.Height = 720, 1280
	case "4:5":
		cfg.Width, cfg.Height = 1080, 1350
	}
	cfg.BuildVersion = version

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := effects.Default()
	cmd := "render"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	switch cmd {
	case "render":
		runRender(ctx, &cfg, reg)
	case "list":
		runList(reg)
	case "trace":
		runTrace(ctx, &cfg, reg)
	case "play":
		runPlay(ctx, &cfg, reg)
	case "suggest":
		runSuggest(&cfg, reg, *detectorPtr)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runRender(ctx context.Context, cfg *config.Config, reg *effects.Registry) {
	results, err := project.NewProject(cfg, reg).Render(ctx)
	if err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}
	for _, r := range results {
		fmt.Printf("[+++] Успех! %s: %s\n", r.Effect, r.Path)
	}
}

func runList(reg *effects.Registry) {
	for _, id := range reg.IDs() {
		d, _ := reg.Lookup(id)
		data, err := yaml.Marshal(map[string]effects.Settings{id: d.Defaults})
		if err != nil {
			log.Fatalf("[-] %v", err)
		}
		fmt.Print(string(data))
	}
	fmt.Printf("# easing: %s\n", strings.Join(interpolator.EasingNames(), ", "))
}

func runTrace(ctx context.Context, cfg *config.Config, reg *effects.Registry) {
	if len(cfg.Effects) == 0 {
		log.Fatalf("[-] Не указан эффект")
	}
	id := cfg.Effects[0]
	frames, err := project.Trace(ctx, reg, id, cfg.EffectOptions(id), os.Stdout)
	if err != nil {
		log.Fatalf("[-] Ошибка трассировки %s: %v", id, err)
	}
	fmt.Printf("[+++] %s: %d кадров\n", id, frames)
}

func runPlay(ctx context.Context, cfg *config.Config, reg *effects.Registry) {
	path := cfg.ScriptPath
	if path == "" {
		latest, err := director.FindLatestScript(scriptsDir)
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите сценарий в %s/", err, scriptsDir)
		}
		path = latest
		fmt.Printf("[*] Выбран сценарий: %s\n", path)
	}

	script, err := director.ReadScript(path)
	if err != nil {
		log.Fatalf("[-] Ошибка чтения сценария: %v", err)
	}

	res, err := project.NewProject(cfg, reg).PlayScript(ctx, script, filepath.Base(path))
	if err != nil {
		log.Fatalf("[-] Ошибка сценария: %v", err)
	}
	fmt.Printf("[+++] Успех! Записано %d кадров: %s\n", res.Frames, res.Path)
}

func runSuggest(cfg *config.Config, reg *effects.Registry, variant string) {
	if len(cfg.Effects) == 0 {
		log.Fatalf("[-] Не указан эффект")
	}
	det, err := analyzer.NewDetector(variant)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}
	if cfg.Backdrop == "" {
		latest, err := system.FindLatest("input", ".pdf", ".png", ".jpg", ".jpeg")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Укажите -backdrop или положите файл в input/", err)
		}
		cfg.Backdrop = latest
		fmt.Printf("[*] Выбран фон: %s\n", latest)
	}

	fmt.Println("[*] Режим генерации сценария...")
	script, err := project.NewProject(cfg, reg).SuggestScript(cfg.Effects[0], det)
	if err != nil {
		log.Fatalf("[-] Ошибка генерации сценария: %v", err)
	}

	outputPath := director.ScriptPath(scriptsDir)
	if err := director.WriteScript(script, outputPath); err != nil {
		log.Fatalf("[-] Ошибка записи сценария: %v", err)
	}
	fmt.Printf("[+++] Успех! Сценарий сохранен: %s\n", outputPath)
}
