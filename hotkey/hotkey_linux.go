//go:build linux

package hotkey

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Wayland compositors refuse global keybinds, so on Linux the chord is
// scanned straight off the evdev devices instead.

const (
	evKey      = 1
	keyPress   = 1
	keyRelease = 0
	keyLCtrl   = 29
	keyRCtrl   = 97
	keyLShift  = 42
	keyRShift  = 54
	keyLAlt    = 56
	keyRAlt    = 100
	keyLMeta   = 125
	keyRMeta   = 126
)

const inputEventSize = 24

// evKeys maps accelerator key names to evdev key codes.
var evKeys = map[string]uint16{
	"space": 57, "enter": 28, "tab": 15,
	"insert": 110, "delete": 111,
	"home": 102, "end": 107, "pageup": 104, "pagedown": 109,
	"up": 103, "down": 108, "left": 105, "right": 106,

	"q": 16, "w": 17, "e": 18, "r": 19, "t": 20, "y": 21, "u": 22, "i": 23, "o": 24, "p": 25,
	"a": 30, "s": 31, "d": 32, "f": 33, "g": 34, "h": 35, "j": 36, "k": 37, "l": 38,
	"z": 44, "x": 45, "c": 46, "v": 47, "b": 48, "n": 49, "m": 50,

	"1": 2, "2": 3, "3": 4, "4": 5, "5": 6, "6": 7, "7": 8, "8": 9, "9": 10, "0": 11,

	"f1": 59, "f2": 60, "f3": 61, "f4": 62, "f5": 63,
	"f6": 64, "f7": 65, "f8": 66, "f9": 67, "f10": 68,
	"f11": 87, "f12": 88,
}

type linuxHotkey struct {
	b       binding
	code    uint16
	keydown chan struct{}
	keyup   chan struct{}
	files   []*os.File
	stop    chan struct{}
	once    sync.Once
}

// New prepares an evdev scan for the given accelerator.
func New(accel string) (Hotkey, error) {
	b, err := parseAccel(accel)
	if err != nil {
		return nil, err
	}
	code, ok := evKeys[strings.ToLower(b.key)]
	if !ok {
		return nil, fmt.Errorf("key %q cannot be bound on linux", b.key)
	}
	return &linuxHotkey{
		b:       b,
		code:    code,
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}, nil
}

func (h *linuxHotkey) Register() error {
	paths, err := scanKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	h.stop = make(chan struct{})
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		h.files = append(h.files, f)
		go h.readEvents(f)
	}
	if len(h.files) == 0 {
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}
	return nil
}

func (h *linuxHotkey) Unregister() {
	h.once.Do(func() {
		if h.stop != nil {
			close(h.stop)
		}
		// Closing the files unblocks any reader parked in Read.
		for _, f := range h.files {
			f.Close()
		}
	})
}

func (h *linuxHotkey) Keydown() <-chan struct{} { return h.keydown }
func (h *linuxHotkey) Keyup() <-chan struct{}   { return h.keyup }

func (h *linuxHotkey) readEvents(f *os.File) {
	buf := make([]byte, inputEventSize*16)
	st := chordState{b: h.b, code: h.code}

	for {
		select {
		case <-h.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		for off := 0; off+inputEventSize <= n; off += inputEventSize {
			// struct input_event on 64-bit kernels: 16 bytes of
			// timestamp, then type, code, value.
			if binary.LittleEndian.Uint16(buf[off+16:]) != evKey {
				continue
			}
			code := binary.LittleEndian.Uint16(buf[off+18:])
			value := int32(binary.LittleEndian.Uint32(buf[off+20:]))

			down, up := st.feed(code, value)
			if down {
				h.signal(h.keydown)
			}
			if up {
				h.signal(h.keyup)
			}
		}
	}
}

// signal never blocks; a slow consumer drops edges rather than stalling
// the device reader.
func (h *linuxHotkey) signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// chordState tracks modifier and target key state for one device. Each
// device gets its own tracker, so a chord split across two keyboards
// will not fire.
type chordState struct {
	b    binding
	code uint16

	ctrl  bool
	shift bool
	alt   bool
	meta  bool
	held  bool
}

// feed consumes one key event and reports a chord edge: down when the
// full chord engages, up when the target key releases. Autorepeat
// events keep modifiers held and are otherwise ignored.
func (c *chordState) feed(code uint16, value int32) (down, up bool) {
	pressed := value == keyPress
	released := value == keyRelease

	switch code {
	case keyLCtrl, keyRCtrl:
		c.ctrl = pressed || (!released && c.ctrl)
	case keyLShift, keyRShift:
		c.shift = pressed || (!released && c.shift)
	case keyLAlt, keyRAlt:
		c.alt = pressed || (!released && c.alt)
	case keyLMeta, keyRMeta:
		c.meta = pressed || (!released && c.meta)
	}

	if code != c.code {
		return false, false
	}
	switch {
	case pressed && !c.held && c.modsDown():
		c.held = true
		return true, false
	case released && c.held:
		c.held = false
		return false, true
	}
	return false, false
}

// modsDown reports whether every modifier the binding requires is held.
// Extra held modifiers do not block the chord.
func (c *chordState) modsDown() bool {
	if (c.b.cmdOrCtrl || c.b.ctrl) && !c.ctrl {
		return false
	}
	if c.b.super && !c.meta {
		return false
	}
	if c.b.alt && !c.alt {
		return false
	}
	if c.b.shift && !c.shift {
		return false
	}
	return true
}

// scanKeyboards lists /dev/input event nodes whose sysfs key capability
// mask is wide enough to be a real keyboard rather than a power button.
func scanKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "event") {
			continue
		}
		caps, err := os.ReadFile(filepath.Join("/sys/class/input", name, "device", "capabilities", "key"))
		if err != nil {
			continue
		}
		if len(strings.TrimSpace(string(caps))) > 10 {
			paths = append(paths, filepath.Join("/dev/input", name))
		}
	}
	return paths, nil
}

// Diagnose reports whether the evdev scan would work, for -doctor.
func Diagnose() (string, error) {
	paths, err := scanKeyboards()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		f.Close()
		return fmt.Sprintf("%d keyboard(s) found, opened %s", len(paths), path), nil
	}
	return "", fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER)", len(paths))
}
