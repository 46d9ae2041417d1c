// Package shutdown delivers the OS quit request as a channel receive.
package shutdown

import "os"

// Listen returns a channel that fires once when the OS asks the process
// to exit.
func Listen() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	notify(ch)
	return ch
}
