//go:build gui

package main

import (
	"runtime"
	"sync"

	"github.com/sjroesink/Whisper/overlay"
)

var (
	overlayApp *overlay.App
	overlayMu  sync.Mutex
)

// initOverlay owns the main thread for the window toolkit and starts run
// once the indicator is up.
func initOverlay() {
	runtime.LockOSThread()

	app := overlay.NewApp(func() {
		run()
	})
	overlayMu.Lock()
	overlayApp = app
	overlayMu.Unlock()

	if err := overlay.Run(app); err != nil {
		panic(err)
	}
}

// overlaySetState mirrors the lifecycle flags onto the indicator.
func overlaySetState(recording, transcribing bool) {
	overlayMu.Lock()
	app := overlayApp
	overlayMu.Unlock()

	if app != nil {
		app.SetState(recording, transcribing)
	}
}

func overlayQuit() {
	overlayMu.Lock()
	app := overlayApp
	overlayMu.Unlock()

	if app != nil {
		app.Quit()
	}
}
