package hotkey

// Fake implements Hotkey for tests. Press and Release inject the chord
// edges a platform backend would deliver.
type Fake struct {
	down chan struct{}
	up   chan struct{}
}

func NewFake() *Fake {
	return &Fake{
		down: make(chan struct{}, 4),
		up:   make(chan struct{}, 4),
	}
}

func (f *Fake) Register() error          { return nil }
func (f *Fake) Unregister()              {}
func (f *Fake) Keydown() <-chan struct{} { return f.down }
func (f *Fake) Keyup() <-chan struct{}   { return f.up }

func (f *Fake) Press()   { f.down <- struct{}{} }
func (f *Fake) Release() { f.up <- struct{}{} }
