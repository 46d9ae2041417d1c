package accel

import (
	"runtime"
	"strings"
)

// Platform selects the display dialect for decoded accelerators.
type Platform int

const (
	// PlatformMac renders modifiers as single glyphs.
	PlatformMac Platform = iota
	// PlatformOther spells modifiers out as words.
	PlatformOther
)

// CurrentPlatform returns the dialect for the running OS.
func CurrentPlatform() Platform {
	if runtime.GOOS == "darwin" {
		return PlatformMac
	}
	return PlatformOther
}

var macLabels = map[string]string{
	"commandorcontrol": "⌘",
	"command":          "⌘",
	"cmd":              "⌘",
	"meta":             "⌘",
	"super":            "⌘",
	"control":          "⌃",
	"ctrl":             "⌃",
	"alt":              "⌥",
	"option":           "⌥",
	"shift":            "⇧",
}

var wordLabels = map[string]string{
	"commandorcontrol": "Ctrl",
	"control":          "Ctrl",
	"ctrl":             "Ctrl",
	"command":          "Super",
	"cmd":              "Super",
	"meta":             "Super",
	"super":            "Super",
	"alt":              "Alt",
	"option":           "Alt",
	"shift":            "Shift",
}

// Labels splits a canonical accelerator on "+" and maps every token through
// the platform table. Unrecognized tokens pass through verbatim.
func Labels(accel string, p Platform) []string {
	if accel == "" {
		return nil
	}
	table := wordLabels
	if p == PlatformMac {
		table = macLabels
	}
	parts := strings.Split(accel, "+")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if label, ok := table[strings.ToLower(part)]; ok {
			out = append(out, label)
			continue
		}
		out = append(out, part)
	}
	return out
}

// Display joins Labels in the platform's convention: glyphs run together on
// PlatformMac, words join with "+" elsewhere.
func Display(accel string, p Platform) string {
	sep := "+"
	if p == PlatformMac {
		sep = ""
	}
	return strings.Join(Labels(accel, p), sep)
}
