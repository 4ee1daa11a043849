// Package tray puts the app in the notification area: an icon whose
// left click toggles the overlay and a small context menu. The Windows
// build talks to the shell directly so the left click reaches us; other
// platforms get a menu-only icon through fyne.io/systray.
package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
)

const (
	menuSettings = "Settings"
	menuRestart  = "Restart"
	menuQuit     = "Quit"
)

// defaultIcon renders the clipboard glyph used when the caller supplies
// no icon bytes. Drawing it beats shipping an asset the build has to
// locate at runtime.
var defaultIcon = sync.OnceValue(func() []byte {
	const size = 32
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	board := color.NRGBA{R: 0x2F, G: 0x6F, B: 0xC1, A: 0xFF}
	clip := color.NRGBA{R: 0x1E, G: 0x4A, B: 0x82, A: 0xFF}
	paper := color.NRGBA{R: 0xF4, G: 0xF6, B: 0xF9, A: 0xFF}
	line := color.NRGBA{R: 0xB9, G: 0xC4, B: 0xD2, A: 0xFF}

	fill := func(x0, y0, x1, y1 int, c color.NRGBA) {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				img.SetNRGBA(x, y, c)
			}
		}
	}

	fill(5, 3, 27, 30, board)
	fill(8, 6, 24, 27, paper)
	fill(12, 1, 20, 5, clip)
	for i, y := 0, 10; i < 4; i, y = i+1, y+4 {
		fill(10, y, 22, y+2, line)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("tray: encoding built-in icon: " + err.Error())
	}
	return buf.Bytes()
})
