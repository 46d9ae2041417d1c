package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/sjroesink/Whisper/engine"
)

// pickKey is one decoded keypress in the raw-mode device picker.
type pickKey int

const (
	pickNone pickKey = iota
	pickUp
	pickDown
	pickConfirm
	pickAbort
	pickDigit // pickDigit+n selects row n directly
)

// readPick decodes a keypress from stdin in raw mode. Arrow keys arrive
// as three-byte escape sequences, everything else as a single byte.
func readPick(buf []byte) (pickKey, error) {
	n, err := os.Stdin.Read(buf)
	if err != nil {
		return pickNone, fmt.Errorf("reading input: %w", err)
	}
	if n == 3 && buf[0] == 0x1b && buf[1] == '[' {
		switch buf[2] {
		case 'A':
			return pickUp, nil
		case 'B':
			return pickDown, nil
		}
		return pickNone, nil
	}
	if n != 1 {
		return pickNone, nil
	}
	switch b := buf[0]; {
	case b == '\r':
		return pickConfirm, nil
	case b == 3: // Ctrl+C
		return pickAbort, nil
	case b == 'k':
		return pickUp, nil
	case b == 'j':
		return pickDown, nil
	case b >= '1' && b <= '9':
		return pickDigit + pickKey(b-'1'), nil
	}
	return pickNone, nil
}

// selectDevice lets the user walk the engine's capture devices in a
// raw-mode list. Only the name is picked here; the engine applies it
// once it lands in settings.
func selectDevice(ctx context.Context, eng engine.Engine) (*engine.AudioDevice, error) {
	devices, err := eng.InputDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}

	switch len(devices) {
	case 0:
		return nil, fmt.Errorf("engine reports no capture devices")
	case 1:
		fmt.Printf("Using device: %s\n", devices[0].Name)
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	// Start on the engine's default device.
	cursor := 0
	for i, d := range devices {
		if d.Default {
			cursor = i
			break
		}
	}

	render := func() {
		fmt.Print("\r\x1b[J")
		fmt.Print("Select input device (↑/↓ or 1-9, Enter to confirm):\r\n\r\n")
		for i, d := range devices {
			name := d.Name
			if d.Default {
				name += " (default)"
			}
			if i == cursor {
				fmt.Printf("  \x1b[1;36m▶ %d  %s\x1b[0m\r\n", i+1, name)
			} else {
				fmt.Printf("    %d  %s\r\n", i+1, name)
			}
		}
	}

	render()
	buf := make([]byte, 3)
	for {
		k, err := readPick(buf)
		if err != nil {
			return nil, err
		}

		switch {
		case k == pickConfirm:
			fmt.Printf("\r\n")
			term.Restore(fd, oldState)
			return &devices[cursor], nil
		case k == pickAbort:
			fmt.Printf("\r\n")
			term.Restore(fd, oldState)
			os.Exit(0)
		case k == pickUp && cursor > 0:
			cursor--
		case k == pickDown && cursor < len(devices)-1:
			cursor++
		case k >= pickDigit && int(k-pickDigit) < len(devices):
			cursor = int(k - pickDigit)
		}

		fmt.Printf("\x1b[%dA", len(devices)+2)
		render()
	}
}
