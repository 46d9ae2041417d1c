package hotkey

import (
	"sync"

	"github.com/sjroesink/Whisper/settings"
)

// Action is what a chord press asks the app to do.
type Action int

const (
	ActionToggle Action = iota
	ActionStart
	ActionStop
)

// Runner turns raw keydown/keyup pairs into dictation actions according to
// the configured interaction mode. Toggle emits one ActionToggle per press;
// PushToTalk brackets the hold with ActionStart and ActionStop. Changing the
// chord or the mode means building a fresh Runner on a fresh Hotkey.
type Runner struct {
	actions chan Action
	done    chan struct{}
	once    sync.Once
}

func NewRunner(hk Hotkey, mode settings.InteractionMode) *Runner {
	r := &Runner{
		actions: make(chan Action, 4),
		done:    make(chan struct{}),
	}
	go r.run(hk, mode)
	return r
}

// Actions is the stream the app loop consumes.
func (r *Runner) Actions() <-chan Action { return r.actions }

// Stop ends the run loop. It does not unregister the hotkey; the caller
// owns that.
func (r *Runner) Stop() {
	r.once.Do(func() { close(r.done) })
}

func (r *Runner) run(hk Hotkey, mode settings.InteractionMode) {
	for {
		select {
		case <-r.done:
			return
		case <-hk.Keydown():
			if mode == settings.ModePushToTalk {
				r.emit(ActionStart)
			} else {
				r.emit(ActionToggle)
			}
		case <-hk.Keyup():
			if mode == settings.ModePushToTalk {
				r.emit(ActionStop)
			}
		}
	}
}

func (r *Runner) emit(a Action) {
	select {
	case r.actions <- a:
	case <-r.done:
	}
}
