//go:build windows

package beep

// No audio backend wired on Windows; cues are silent.

func Init()      {}
func PlayStart() {}
func PlayEnd()   {}
func PlayError() {}
