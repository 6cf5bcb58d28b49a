package system

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// FindLatest возвращает самый свежий файл в dir с одним из расширений exts.
func FindLatest(dir string, exts ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExt(f.Name(), exts) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено файлов %s", dir, strings.Join(exts, ", "))
	}

	return latestFile, nil
}

func hasExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// GetBestH264Encoder выбирает аппаратный энкодер, если ffmpeg его поддерживает.
func GetBestH264Encoder() string {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)
	cmd := exec.Command("ffmpeg", "-hide_banner", "-encoders")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "libx264"
	}

	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name
		}
	}
	return "libx264"
}

// DefaultQuality подбирает качество под энкодер, если пользователь его не задал.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // Хорошее качество для VideoToolbox
	case "h264_nvenc":
		return 28 // Эквивалент CRF для NVENC
	default:
		return 23 // Стандартный CRF для x264
	}
}

// HostStats описывает машину, на которой идет рендеринг.
type HostStats struct {
	LogicalCPUs int
	TotalMemory uint64
	UsedPercent float64
}

// GetHostStats собирает сведения о CPU и памяти для отчета о производительности.
func GetHostStats() (HostStats, error) {
	var stats HostStats

	n, err := cpu.Counts(true)
	if err != nil {
		return stats, fmt.Errorf("cpu counts: %w", err)
	}
	stats.LogicalCPUs = n

	vm, err := mem.VirtualMemory()
	if err != nil {
		return stats, fmt.Errorf("virtual memory: %w", err)
	}
	stats.TotalMemory = vm.Total
	stats.UsedPercent = vm.UsedPercent

	return stats, nil
}

func (s HostStats) String() string {
	return fmt.Sprintf("CPU: %d | RAM: %.1f GiB (занято %.0f%%)",
		s.LogicalCPUs, float64(s.TotalMemory)/(1<<30), s.UsedPercent)
}
