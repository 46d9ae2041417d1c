// Package clipboard copies transcripts to the system clipboard and reads
// them back. OS-level paste into the focused window is the engine's job.
package clipboard

import cb "github.com/atotto/clipboard"

func Copy(text string) error {
	return cb.WriteAll(text)
}

func Read() (string, error) {
	return cb.ReadAll()
}
