//go:build gui

package overlay

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

// trayIcon renders the tray dot at startup instead of embedding an asset.
func trayIcon() []byte {
	const size = 22
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	center := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - center + 0.5
			dy := float64(y) - center + 0.5
			dist := math.Sqrt(dx*dx + dy*dy)

			switch {
			case dist < 4:
				img.Set(x, y, color.RGBA{255, 50, 50, 255})
			case dist < 7:
				t := (dist - 4) / 3
				img.Set(x, y, color.RGBA{uint8(255 - t*100), uint8(50 + t*50), 0, 255})
			case dist < 9:
				img.Set(x, y, color.RGBA{80, 20, 20, 255})
			case dist < 10:
				img.Set(x, y, color.RGBA{40, 10, 10, 255})
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
