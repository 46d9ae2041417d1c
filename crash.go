package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/sjroesink/Whisper/log"
)

// initCrashLog arms crash capture before anything else runs, using the
// default log location. run re-arms it once flags pick the final one.
func initCrashLog() {
	dir, err := log.ResolveDir(os.Getenv("WHISPER_LOG_PATH"))
	if err != nil {
		return
	}
	log.SetDir(dir)
	if err := log.EnsureDir(); err != nil {
		return
	}
	armCrashLog(dir)
}

var armedCrashDir string

// armCrashLog points the runtime's crash output at crash_log.txt in dir.
// Re-arming with the same directory is a no-op.
func armCrashLog(dir string) {
	if dir == armedCrashDir {
		return
	}
	crashPath := filepath.Join(dir, "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	armedCrashDir = dir
}
