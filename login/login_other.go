//go:build !darwin

package login

import "errors"

func Supported() bool { return false }

func Enabled() bool { return false }

func Enable() error {
	return errors.New("login item is only supported on macOS")
}

func Disable() error {
	return errors.New("login item is only supported on macOS")
}
