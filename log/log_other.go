//go:build !windows

package log

import (
	"os"
	"path/filepath"
	"runtime"
)

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "whisper"), nil
	}
	// Linux: same config tree the engine writes under.
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "whisper", "logs"), nil
}
