//go:build !linux

package hotkey

import (
	"fmt"
	"strings"
	"sync"

	"golang.design/x/hotkey"
)

type xHotkey struct {
	hk      *hotkey.Hotkey
	keydown chan struct{}
	keyup   chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New prepares a system-wide registration for the given accelerator.
func New(accel string) (Hotkey, error) {
	b, err := parseAccel(accel)
	if err != nil {
		return nil, err
	}
	key, ok := xKeys[strings.ToLower(b.key)]
	if !ok {
		return nil, fmt.Errorf("key %q cannot be bound system-wide", b.key)
	}
	return &xHotkey{
		hk:      hotkey.New(modifiersFor(b), key),
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}, nil
}

func (h *xHotkey) Register() error {
	if err := h.hk.Register(); err != nil {
		return err
	}
	h.done = make(chan struct{})
	go h.pump(h.hk.Keydown(), h.keydown)
	go h.pump(h.hk.Keyup(), h.keyup)
	return nil
}

// pump forwards events until Unregister. Rebinding builds a fresh instance,
// so the forwarding goroutines must not outlive this one.
func (h *xHotkey) pump(from <-chan hotkey.Event, to chan struct{}) {
	for {
		select {
		case <-h.done:
			return
		case <-from:
			select {
			case to <- struct{}{}:
			default:
			}
		}
	}
}

func (h *xHotkey) Unregister() {
	h.once.Do(func() {
		h.hk.Unregister()
		if h.done != nil {
			close(h.done)
		}
	})
}

func (h *xHotkey) Keydown() <-chan struct{} {
	return h.keydown
}

func (h *xHotkey) Keyup() <-chan struct{} {
	return h.keyup
}

// xKeys names every key both macOS and Windows can register. The constant
// names are uniform across golang.design/x/hotkey platforms; the values are
// not, so the table cannot be computed.
var xKeys = map[string]hotkey.Key{
	"space": hotkey.KeySpace, "enter": hotkey.KeyReturn, "tab": hotkey.KeyTab,
	"delete": hotkey.KeyDelete,
	"up":     hotkey.KeyUp, "down": hotkey.KeyDown, "left": hotkey.KeyLeft, "right": hotkey.KeyRight,

	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,

	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,

	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
	"f13": hotkey.KeyF13, "f14": hotkey.KeyF14, "f15": hotkey.KeyF15, "f16": hotkey.KeyF16,
	"f17": hotkey.KeyF17, "f18": hotkey.KeyF18, "f19": hotkey.KeyF19, "f20": hotkey.KeyF20,
}

func Diagnose() (string, error) {
	return "system-wide hotkey support available", nil
}
