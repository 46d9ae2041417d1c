//go:build linux

package main

import "os"

func main() {
	// Set up crash logging early, before any engine traffic
	initCrashLog()

	for _, arg := range os.Args[1:] {
		if arg == "-overlay" {
			initOverlay()
			return
		}
	}
	run()
}
