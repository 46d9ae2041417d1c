//go:build windows

package shutdown

import (
	"os"
	"os/signal"
)

// SIGTERM does not exist on Windows; Ctrl+C is all we get.
func notify(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt)
}
