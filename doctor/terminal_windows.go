//go:build windows

package doctor

// The console never leaves cooked mode on Windows.
func resetTerminal() {}
