package source

import (
	"image"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIconCacheKey(t *testing.T) {
	keyRe := regexp.MustCompile(`^[0-9a-f]{12}$`)

	a := IconCacheKey(`C:\Program Files\App\app.exe`)
	assert.Regexp(t, keyRe, a)

	// Case-insensitive spellings of the same executable share a key.
	b := IconCacheKey(`c:\program files\app\APP.EXE`)
	assert.Equal(t, a, b)

	other := IconCacheKey(`C:\Windows\notepad.exe`)
	assert.NotEqual(t, a, other)
}

func TestFileStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{`notepad.exe`, "notepad"},
		{`weird.name.exe`, "weird.name"},
		{`noext`, "noext"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fileStem(tt.path))
	}
}

func TestBGRAToRGBA(t *testing.T) {
	pix := []byte{
		1, 2, 3, 4, // BGRA
		5, 6, 7, 8,
	}
	bgraToRGBA(pix)
	assert.Equal(t, []byte{3, 2, 1, 4, 7, 6, 5, 8}, pix)
}

func TestScaleToIconSize(t *testing.T) {
	t.Run("PassThroughAtSize", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
		assert.Same(t, src, scaleToIconSize(src))
	})

	t.Run("DownscalesLargeIcon", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(0, 0, 48, 48))
		for i := range src.Pix {
			src.Pix[i] = 0xff
		}
		dst := scaleToIconSize(src)
		assert.Equal(t, iconSize, dst.Bounds().Dx())
		assert.Equal(t, iconSize, dst.Bounds().Dy())
		// A uniformly white source stays white after resampling.
		assert.Equal(t, uint8(0xff), dst.Pix[0])
	})
}
