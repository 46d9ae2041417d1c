// Package accel encodes keyboard chords as accelerator strings and decodes
// them for display. Canonical form is Electron-style: modifiers in fixed
// order (CommandOrControl, Alt, Shift), one terminal key, joined with "+".
package accel

import (
	"strings"
	"unicode"
)

// Default is the binding used when no setting exists and the one a capture
// reset falls back to.
const Default = "CommandOrControl+Shift+Space"

// Chord is one pressed key combination before encoding. Ctrl and Meta stay
// separate here; Encode folds both into CommandOrControl.
type Chord struct {
	Ctrl  bool
	Meta  bool
	Alt   bool
	Shift bool
	Key   string // terminal key, empty for modifier-only chords
}

// namedKeys maps terminal key names to accelerator tokens. Single runes are
// upper-cased instead; names not listed pass through unchanged.
var namedKeys = map[string]string{
	"space":  "Space",
	"enter":  "Enter",
	"return": "Enter",
	"tab":    "Tab",
	"up":     "Up",
	"down":   "Down",
	"left":   "Left",
	"right":  "Right",
	"home":   "Home",
	"end":    "End",
	"pgup":   "PageUp",
	"pgdown": "PageDown",
	"insert": "Insert",
}

// Encode renders c in canonical form. ok is false when the chord has no
// terminal key; modifiers alone are not a bindable accelerator.
func Encode(c Chord) (accel string, ok bool) {
	if c.Key == "" {
		return "", false
	}
	parts := make([]string, 0, 4)
	if c.Ctrl || c.Meta {
		parts = append(parts, "CommandOrControl")
	}
	if c.Alt {
		parts = append(parts, "Alt")
	}
	if c.Shift {
		parts = append(parts, "Shift")
	}
	parts = append(parts, canonicalKey(c.Key))
	return strings.Join(parts, "+"), true
}

// FromKeyString parses a terminal key string such as "ctrl+shift+a" or
// "alt+space" into a Chord. A lone upper-case rune implies Shift.
func FromKeyString(s string) Chord {
	if s == "+" {
		return Chord{Key: "+"}
	}
	var c Chord
	parts := strings.Split(s, "+")
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "ctrl", "control":
			c.Ctrl = true
		case "meta", "cmd", "command", "super", "win":
			c.Meta = true
		case "alt", "option", "opt":
			c.Alt = true
		case "shift":
			c.Shift = true
		}
	}
	key := strings.TrimSpace(parts[len(parts)-1])
	if r := []rune(key); len(r) == 1 && unicode.IsUpper(r[0]) {
		c.Shift = true
		key = string(unicode.ToLower(r[0]))
	}
	c.Key = key
	return c
}

func canonicalKey(k string) string {
	lower := strings.ToLower(k)
	if name, ok := namedKeys[lower]; ok {
		return name
	}
	if fn, ok := functionKey(lower); ok {
		return fn
	}
	if len([]rune(k)) == 1 {
		return strings.ToUpper(k)
	}
	return k
}

func functionKey(lower string) (string, bool) {
	if len(lower) < 2 || lower[0] != 'f' {
		return "", false
	}
	for _, r := range lower[1:] {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return "F" + lower[1:], true
}

// CaptureKey interprets one key press during hotkey re-binding. done reports
// that the session ended; accel is the new binding, empty when the press
// cancelled the capture. Backspace and Delete reset the binding to Default.
func CaptureKey(key string) (accel string, done bool) {
	switch key {
	case "esc", "escape":
		return "", true
	case "backspace", "delete":
		return Default, true
	}
	if enc, ok := Encode(FromKeyString(key)); ok {
		return enc, true
	}
	return "", false
}
