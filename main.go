package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"sync"
	"sync/atomic"

	"github.com/sjroesink/Whisper/beep"
	"github.com/sjroesink/Whisper/clipboard"
	"github.com/sjroesink/Whisper/config"
	"github.com/sjroesink/Whisper/doctor"
	"github.com/sjroesink/Whisper/engine"
	"github.com/sjroesink/Whisper/history"
	"github.com/sjroesink/Whisper/hotkey"
	"github.com/sjroesink/Whisper/log"
	"github.com/sjroesink/Whisper/settings"
	"github.com/sjroesink/Whisper/shutdown"
	"github.com/sjroesink/Whisper/store"
	"github.com/sjroesink/Whisper/update"
)

var version = "dev"

// sessionCount tracks transcriptions completed in this session, for the
// session_end log line.
var sessionCount atomic.Int64

var shutdownOnce sync.Once

// cueState turns snapshot deltas into audio cues. Cues follow confirmed
// engine events only, so a dispatched command that the engine rejects stays
// silent.
type cueState struct {
	mu        sync.Mutex
	recording bool
	lastError string
}

func (c *cueState) observe(snap store.Snapshot) {
	c.mu.Lock()
	started := snap.Recording && !c.recording
	stopped := !snap.Recording && c.recording
	failed := snap.LastError != "" && snap.LastError != c.lastError
	c.recording = snap.Recording
	c.lastError = snap.LastError
	c.mu.Unlock()

	switch {
	case started:
		beep.PlayStart()
	case stopped:
		beep.PlayEnd()
	}
	if failed {
		beep.PlayError()
	}
}

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		if n := int(sessionCount.Load()); n > 0 {
			log.SessionEnd(n)
		}
		log.Close()
		overlayQuit()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
		}
		os.Exit(0)
	})
}

func run() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if cfg.Version {
		fmt.Printf("whisper %s\n", version)
		os.Exit(0)
	}

	// Resolve log directory early
	logPath, err := log.ResolveDir(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	armCrashLog(log.Dir())

	if cfg.Profile != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof on http://%s/debug/pprof/\n", cfg.Profile)
			if err := http.ListenAndServe(cfg.Profile, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof: %v\n", err)
			}
		}()
	}

	// -crash proves the armed crash file catches a real panic.
	if cfg.Crash {
		panic("synthetic panic to exercise the crash log")
	}

	if cfg.Doctor {
		os.Exit(doctor.Run(cfg.EngineAddr))
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	log.SessionStart(version, cfg.EngineAddr)

	ctx := context.Background()

	// A dead engine still yields a usable surface: commands fail soft and
	// the screens render from cached state.
	var eng engine.Engine = engine.Headless{}
	if cfg.Headless {
		log.Info("running detached by request")
	} else if client, err := engine.Dial(ctx, cfg.EngineAddr); err != nil {
		log.Warnf("engine at %s unreachable: %v", cfg.EngineAddr, err)
		fmt.Fprintf(os.Stderr, "Warning: engine at %s unreachable, continuing detached\n", cfg.EngineAddr)
	} else {
		eng = client
		defer client.Close()
	}

	st := store.New(eng)
	st.Bootstrap(ctx)

	sub, err := st.Subscribe(ctx)
	if err != nil {
		log.Warnf("event subscription incomplete: %v", err)
	}
	defer sub.Close()

	// -setup runs before the TUI takes the terminal.
	if cfg.Setup {
		if dev, err := selectDevice(ctx, eng); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: device selection failed: %v\n", err)
		} else if dev != nil {
			st.Settings().SetInputDevice(dev.Name)
			if err := st.SaveSettings(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not save device choice: %v\n", err)
			}
		}
	}

	// One change hook fans out to the TUI, the overlay, the audio cues and
	// the hotkey rebinder. It must be wired before the TUI starts so nothing
	// is missed.
	cues := &cueState{recording: st.Snapshot().Recording}
	settingsChanged := make(chan struct{}, 1)
	st.OnChange(func() {
		tuiSend(StoreChangedMsg{})
		snap := st.Snapshot()
		show := snap.Canonical.ShowOverlay
		overlaySetState(show && snap.Recording, show && snap.Transcribing)
		cues.observe(snap)
		select {
		case settingsChanged <- struct{}{}:
		default:
		}
	})

	st.OnTranscription(func(e history.Entry) {
		sessionCount.Add(1)
		if err := clipboard.Copy(e.Text); err != nil {
			log.Warnf("clipboard: %v", err)
			return
		}
		tuiSend(CopiedMsg{})
	})

	tuiMu.Lock()
	tuiProgram = NewTUIProgram(ctx, st)
	tuiMu.Unlock()

	go func() {
		if _, err := tuiProgram.Run(); err != nil {
			log.Errorf("TUI error: %v", err)
			os.Exit(1)
		}
		gracefulShutdown()
	}()

	update.StartBackgroundCheck(version, log.Dir(), func(rel update.Release) {
		log.Infof("update available: %s", rel.Version)
		tuiSend(UpdateAvailableMsg{Version: rel.Version})
	})

	go func() {
		<-shutdown.Listen()
		gracefulShutdown()
	}()

	go beep.Init()

	// Hotkey loop. Rebinding happens here so registration always stays on
	// this goroutine, which mainthread pins on platforms that need it.
	var (
		hk      hotkey.Hotkey
		runner  *hotkey.Runner
		chord   string
		mode    settings.InteractionMode
		actions <-chan hotkey.Action
	)

	bind := func(s settings.Settings) {
		if runner != nil && s.Hotkey == chord && s.InteractionMode == mode {
			return
		}
		if runner != nil {
			runner.Stop()
			hk.Unregister()
			runner, actions = nil, nil
		}
		next, err := hotkey.New(s.Hotkey)
		if err != nil {
			log.Errorf("hotkey %q: %v", s.Hotkey, err)
			return
		}
		if err := next.Register(); err != nil {
			log.Errorf("hotkey register: %v", err)
			return
		}
		hk = next
		runner = hotkey.NewRunner(next, s.InteractionMode)
		chord = s.Hotkey
		mode = s.InteractionMode
		actions = runner.Actions()
		log.Infof("hotkey bound: %s (%s)", chord, mode)
	}

	bind(st.Settings().Canonical())

	for {
		select {
		case a := <-actions:
			switch a {
			case hotkey.ActionToggle:
				log.Event("hotkey_toggle")
				go st.Toggle(ctx)
			case hotkey.ActionStart:
				log.Event("hotkey_down")
				go st.StartRecording(ctx)
			case hotkey.ActionStop:
				log.Event("hotkey_up")
				go st.StopRecording(ctx)
			}

		case <-settingsChanged:
			bind(st.Settings().Canonical())
		}
	}
}
