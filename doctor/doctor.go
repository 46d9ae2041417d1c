// Package doctor runs interactive environment checks: engine connectivity,
// settings sanity, clipboard, global hotkey, log directory.
package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sjroesink/Whisper/accel"
	"github.com/sjroesink/Whisper/clipboard"
	"github.com/sjroesink/Whisper/engine"
	"github.com/sjroesink/Whisper/hotkey"
	"github.com/sjroesink/Whisper/log"
	"github.com/sjroesink/Whisper/settings"
	"github.com/sjroesink/Whisper/shutdown"
)

const dialTimeout = 5 * time.Second

// Run executes the checks and returns an exit code (0=all pass, 1=any fail).
func Run(engineAddr string) int {
	resetTerminal()

	// The hotkey check may hold the terminal in raw mode; put it back
	// before dying on Ctrl+C.
	go func() {
		<-shutdown.Listen()
		fmt.Println("\nInterrupted")
		resetTerminal()
		os.Exit(1)
	}()

	fmt.Println("whisper doctor - interactive system diagnostics")
	fmt.Println("===============================================")

	allPass := true
	cfg := settings.Default()

	eng, ok := checkEngine(engineAddr)
	if !ok {
		allPass = false
	}
	if eng != nil {
		defer eng.Close()
		if got, ok := checkSettings(eng); ok {
			cfg = got
		} else {
			allPass = false
		}
	}
	if !checkClipboard() {
		allPass = false
	}
	if !checkHotkey(cfg.Hotkey) {
		allPass = false
	}
	if !checkLogDir() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkEngine(addr string) (*engine.Client, bool) {
	fmt.Println()
	fmt.Println("[1/5] Engine connection")
	fmt.Printf("Dialing %s...\n", addr)

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	eng, err := engine.Dial(ctx, addr)
	if err != nil {
		fmt.Printf("  FAIL: cannot reach engine: %v\n", err)
		fmt.Println("  Is the Whisper engine running?")
		return nil, false
	}

	recording, err := eng.RecordingState(ctx)
	if err != nil {
		fmt.Printf("  FAIL: engine answered but get_recording_state failed: %v\n", err)
		return eng, false
	}
	fmt.Printf("  PASS: engine reachable (recording=%v)\n", recording)
	return eng, true
}

func checkSettings(eng *engine.Client) (settings.Settings, bool) {
	fmt.Println()
	fmt.Println("[2/5] Settings round-trip")

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	cfg, err := eng.FetchSettings(ctx)
	if err != nil {
		fmt.Printf("  FAIL: get_settings: %v\n", err)
		return settings.Settings{}, false
	}
	if cfg.Hotkey == "" {
		cfg.Hotkey = accel.Default
	}
	fmt.Printf("  PASS: provider=%s mode=%s hotkey=%s\n",
		cfg.ActiveProvider.Name(), cfg.InteractionMode, cfg.Hotkey)
	return cfg, true
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[3/5] Clipboard round-trip")

	previous, prevErr := clipboard.Read()

	sentinel := fmt.Sprintf("whisper-doctor-%d", time.Now().UnixNano())
	if err := clipboard.Copy(sentinel); err != nil {
		fmt.Printf("  FAIL: clipboard copy failed: %v\n", err)
		return false
	}
	got, err := clipboard.Read()
	if err != nil {
		fmt.Printf("  FAIL: clipboard read failed: %v\n", err)
		return false
	}
	if got != sentinel {
		fmt.Printf("  FAIL: clipboard not preserved (got %q, want %q)\n", got, sentinel)
		return false
	}

	// Put back whatever was there before the check.
	if prevErr == nil {
		_ = clipboard.Copy(previous)
	}
	fmt.Println("  PASS: clipboard round-trip verified")
	return true
}

func checkHotkey(chord string) bool {
	fmt.Println()
	fmt.Println("[4/5] Hotkey detection")

	if msg, err := hotkey.Diagnose(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	} else {
		fmt.Printf("  %s\n", msg)
	}

	hk, err := hotkey.New(chord)
	if err != nil {
		fmt.Printf("  FAIL: cannot parse %q: %v\n", chord, err)
		return false
	}
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	fmt.Printf("Press %s...\n", accel.Display(chord, accel.CurrentPlatform()))

	select {
	case <-hk.Keydown():
		fmt.Println("  PASS: hotkey detected")
		// Wait for keyup to avoid leaking the release into the terminal.
		select {
		case <-hk.Keyup():
		case <-time.After(5 * time.Second):
		}
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

func checkLogDir() bool {
	fmt.Println()
	fmt.Println("[5/5] Log directory")

	dir := log.Dir()
	if dir == "" {
		var err error
		dir, err = log.ResolveDir("")
		if err != nil {
			fmt.Printf("  FAIL: cannot resolve log directory: %v\n", err)
			return false
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("  FAIL: cannot create %s: %v\n", dir, err)
		return false
	}
	probe := filepath.Join(dir, ".doctor_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		fmt.Printf("  FAIL: cannot write to %s: %v\n", dir, err)
		return false
	}
	_ = os.Remove(probe)
	fmt.Printf("  PASS: %s is writable\n", dir)
	return true
}
