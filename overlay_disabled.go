//go:build !gui

package main

// Stubs for builds without the desktop overlay.

func initOverlay() {
	panic("whisper: built without overlay support (rebuild with -tags gui)")
}

func overlaySetState(recording, transcribing bool) {}

func overlayQuit() {}
