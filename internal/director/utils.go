package director

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ivlev/twinkle/internal/system"
)

// ScriptPath creates a timestamped script filename inside dir
func ScriptPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("script_%s.yaml", timestamp))
}

// FindLatestScript finds the most recently modified script in dir
func FindLatestScript(dir string) (string, error) {
	path, err := system.FindLatest(dir, ".yaml", ".yml")
	if err != nil {
		return "", fmt.Errorf("no script found: %w", err)
	}
	return path, nil
}
