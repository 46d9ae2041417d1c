// Package hotkey registers the system-wide dictation chord and reports
// presses on channels. Accelerator parsing is shared; registration is
// platform specific.
package hotkey

import (
	"fmt"
	"strings"
)

type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}

// binding is an accelerator parsed for registration. cmdOrCtrl is the
// CommandOrControl modifier: Ctrl here and on Windows, Cmd on macOS.
type binding struct {
	cmdOrCtrl bool
	ctrl      bool
	super     bool
	alt       bool
	shift     bool
	key       string
}

func parseAccel(s string) (binding, error) {
	var b binding
	parts := strings.Split(s, "+")
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "commandorcontrol", "cmdorctrl":
			b.cmdOrCtrl = true
		case "ctrl", "control":
			b.ctrl = true
		case "cmd", "command", "meta", "super", "win":
			b.super = true
		case "alt", "option":
			b.alt = true
		case "shift":
			b.shift = true
		default:
			return binding{}, fmt.Errorf("unknown modifier %q in %q", p, s)
		}
	}
	b.key = strings.TrimSpace(parts[len(parts)-1])
	if b.key == "" {
		return binding{}, fmt.Errorf("accelerator %q has no terminal key", s)
	}
	return b, nil
}
