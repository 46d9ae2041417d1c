//go:build gui

package overlay

import (
	"image/color"
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const (
	dotCells = 13
	cellSize = 4
)

// Phase is what the indicator is showing.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRecording
	PhaseTranscribing
)

type palette struct {
	core color.RGBA
	ring color.RGBA
	rim  color.RGBA
}

var (
	paletteRec   = palette{core: color.RGBA{255, 50, 50, 255}, ring: color.RGBA{255, 120, 0, 255}, rim: color.RGBA{80, 20, 20, 255}}
	paletteTrans = palette{core: color.RGBA{255, 195, 40, 255}, ring: color.RGBA{200, 140, 0, 255}, rim: color.RGBA{90, 60, 10, 255}}
	background   = color.RGBA{18, 18, 18, 255}
)

// Indicator is a pulsing dot rendered on a cell grid. Recording pulses fast
// and red, transcribing slow and amber.
type Indicator struct {
	widget.BaseWidget
	mu     sync.Mutex
	frame  int
	phase  Phase
	stopCh chan struct{}
}

func NewIndicator() *Indicator {
	d := &Indicator{stopCh: make(chan struct{})}
	d.ExtendBaseWidget(d)
	go d.animate()
	return d
}

func (d *Indicator) SetPhase(p Phase) {
	d.mu.Lock()
	if d.phase != p {
		d.phase = p
		d.frame = 0
	}
	d.mu.Unlock()
}

func (d *Indicator) Stop() {
	select {
	case <-d.stopCh:
	default:
		close(d.stopCh)
	}
}

func (d *Indicator) animate() {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-d.stopCh:
			return
		case <-ticker.C:
			d.mu.Lock()
			d.frame++
			idle := d.phase == PhaseIdle
			d.mu.Unlock()
			if idle {
				continue
			}
			fyne.Do(func() {
				d.Refresh()
			})
		}
	}
}

func (d *Indicator) MinSize() fyne.Size {
	return fyne.NewSize(float32(dotCells*cellSize), float32(dotCells*cellSize))
}

func (d *Indicator) CreateRenderer() fyne.WidgetRenderer {
	r := &dotRenderer{dot: d}
	r.rects = make([][]*canvas.Rectangle, dotCells)
	for y := 0; y < dotCells; y++ {
		r.rects[y] = make([]*canvas.Rectangle, dotCells)
		for x := 0; x < dotCells; x++ {
			r.rects[y][x] = canvas.NewRectangle(background)
		}
	}
	return r
}

type dotRenderer struct {
	dot   *Indicator
	rects [][]*canvas.Rectangle
}

func (r *dotRenderer) Layout(size fyne.Size) {
	cellW := size.Width / float32(dotCells)
	cellH := size.Height / float32(dotCells)
	for y := 0; y < dotCells; y++ {
		for x := 0; x < dotCells; x++ {
			r.rects[y][x].Move(fyne.NewPos(float32(x)*cellW, float32(y)*cellH))
			r.rects[y][x].Resize(fyne.NewSize(cellW, cellH))
		}
	}
}

func (r *dotRenderer) MinSize() fyne.Size {
	return r.dot.MinSize()
}

func (r *dotRenderer) Refresh() {
	r.dot.mu.Lock()
	frame := r.dot.frame
	phase := r.dot.phase
	r.dot.mu.Unlock()

	pal := paletteRec
	speed := 0.20
	if phase == PhaseTranscribing {
		pal = paletteTrans
		speed = 0.08
	}

	// Pulse the core radius with a sine breath.
	breathe := math.Sin(float64(frame)*speed)*0.9 + 0.9
	coreR := 2.2 + breathe
	ringR := coreR + 1.8
	rimR := ringR + 1.0

	center := float64(dotCells)/2 - 0.5
	for y := 0; y < dotCells; y++ {
		for x := 0; x < dotCells; x++ {
			dx := float64(x) - center
			dy := float64(y) - center
			dist := math.Sqrt(dx*dx + dy*dy)

			var c color.RGBA
			switch {
			case phase == PhaseIdle:
				c = background
			case dist < coreR:
				c = pal.core
			case dist < ringR:
				c = pal.ring
			case dist < rimR:
				c = pal.rim
			default:
				c = background
			}
			r.rects[y][x].FillColor = c
			r.rects[y][x].Refresh()
		}
	}
}

func (r *dotRenderer) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, dotCells*dotCells)
	for y := 0; y < dotCells; y++ {
		for x := 0; x < dotCells; x++ {
			objs = append(objs, r.rects[y][x])
		}
	}
	return objs
}

func (r *dotRenderer) Destroy() {
	r.dot.Stop()
}
