//go:build !windows

package doctor

import "os/exec"

// resetTerminal undoes raw-mode leftovers from an interrupted check.
// Harmless when the terminal is already sane or absent.
func resetTerminal() {
	exec.Command("stty", "sane").Run()
}
