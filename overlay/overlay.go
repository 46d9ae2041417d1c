//go:build gui

// Package overlay shows a small always-on-top indicator while the engine is
// recording or transcribing. It exists so a dictation started by hotkey has
// visible feedback even when the terminal is buried.
package overlay

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type App struct {
	fyneApp fyne.App
	window  fyne.Window
	dot     *Indicator
	onReady func()
	posX    int
	posY    int
}

func NewApp(onReady func()) *App {
	return &App{onReady: onReady}
}

// Run owns the main thread; onReady continues the rest of the program on a
// goroutine once the toolkit is up.
func Run(a *App) error {
	a.fyneApp = app.NewWithID("com.sjroesink.whisper.overlay")
	a.fyneApp.Settings().SetTheme(newOverlayTheme())
	a.installTray()

	a.dot = NewIndicator()
	a.window = a.newSplashWindow()
	a.window.SetContent(a.dot)
	a.window.SetFixedSize(true)
	a.window.SetPadded(false)

	size := a.dot.MinSize()
	a.window.Resize(size)
	a.posX, a.posY = placeBottomCenter(size)

	go a.onReady()

	// The loop starts with the window hidden; the first confirmed
	// recording shows it.
	a.fyneApp.Run()
	return nil
}

func (a *App) installTray() {
	desk, ok := a.fyneApp.(desktop.App)
	if !ok {
		return
	}
	desk.SetSystemTrayIcon(fyne.NewStaticResource("tray.png", trayIcon()))
	desk.SetSystemTrayMenu(fyne.NewMenu("Whisper",
		fyne.NewMenuItem("Quit", a.fyneApp.Quit),
	))
}

// Splash windows are frameless and stay out of the taskbar.
func (a *App) newSplashWindow() fyne.Window {
	if drv, ok := a.fyneApp.Driver().(desktop.Driver); ok {
		return drv.CreateSplashWindow()
	}
	return a.fyneApp.NewWindow("Whisper")
}

// placeBottomCenter picks a spot above the dock on the primary monitor.
func placeBottomCenter(size fyne.Size) (x, y int) {
	screenW, screenH := 1920, 1080
	if monitor := glfw.GetPrimaryMonitor(); monitor != nil {
		_, _, screenW, screenH = monitor.GetWorkarea()
	}
	return (screenW - int(size.Width)) / 2, screenH - int(size.Height) - 20
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		a.fyneApp.Quit()
	}
}

// SetState follows the lifecycle flags: visible while recording or
// transcribing, hidden when idle.
func (a *App) SetState(recording, transcribing bool) {
	switch {
	case recording:
		a.dot.SetPhase(PhaseRecording)
		a.show()
	case transcribing:
		a.dot.SetPhase(PhaseTranscribing)
		a.show()
	default:
		a.dot.SetPhase(PhaseIdle)
		a.hide()
	}
}

func (a *App) show() {
	fyne.Do(func() {
		if a.window == nil {
			return
		}
		if glfwWin := glfw.GetCurrentContext(); glfwWin != nil {
			glfwWin.SetPos(a.posX, a.posY)
			// Never steal focus from the window being dictated into.
			glfwWin.SetAttrib(glfw.FocusOnShow, glfw.False)
			glfwWin.SetAttrib(glfw.Floating, glfw.True)
			glfwWin.Show()
		} else {
			a.window.Show()
		}
	})
}

func (a *App) hide() {
	fyne.Do(func() {
		if a.window != nil {
			a.window.Hide()
		}
	})
}
