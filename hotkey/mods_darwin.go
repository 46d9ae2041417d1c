//go:build darwin

package hotkey

import "golang.design/x/hotkey"

func modifiersFor(b binding) []hotkey.Modifier {
	mods := make([]hotkey.Modifier, 0, 4)
	if b.cmdOrCtrl || b.super {
		mods = append(mods, hotkey.ModCmd)
	}
	if b.ctrl {
		mods = append(mods, hotkey.ModCtrl)
	}
	if b.alt {
		mods = append(mods, hotkey.ModOption)
	}
	if b.shift {
		mods = append(mods, hotkey.ModShift)
	}
	return mods
}
