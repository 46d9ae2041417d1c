//go:build windows

package hotkey

import "golang.design/x/hotkey"

func modifiersFor(b binding) []hotkey.Modifier {
	mods := make([]hotkey.Modifier, 0, 4)
	if b.cmdOrCtrl || b.ctrl {
		mods = append(mods, hotkey.ModCtrl)
	}
	if b.super {
		mods = append(mods, hotkey.ModWin)
	}
	if b.alt {
		mods = append(mods, hotkey.ModAlt)
	}
	if b.shift {
		mods = append(mods, hotkey.ModShift)
	}
	return mods
}
