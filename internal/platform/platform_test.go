package platform

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDropFiles(t *testing.T) {
	paths := []string{`C:\docs\a.txt`, `C:\spaced name\b.png`}
	buf := buildDropFiles(paths)

	require.Greater(t, len(buf), dropFilesHeaderSize)
	assert.Equal(t, uint32(dropFilesHeaderSize), binary.LittleEndian.Uint32(buf[0:4]), "pFiles offset")
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[16:20]), "fWide flag")

	// Decode the wide path list back out.
	units := make([]uint16, (len(buf)-dropFilesHeaderSize)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(buf[dropFilesHeaderSize+i*2:])
	}

	var got []string
	start := 0
	for i, u := range units {
		if u == 0 {
			if i == start {
				break // double NUL terminator
			}
			got = append(got, string(utf16.Decode(units[start:i])))
			start = i + 1
		}
	}
	assert.Equal(t, paths, got)

	// The list ends with the terminating empty string.
	require.GreaterOrEqual(t, len(units), 2)
	assert.Equal(t, uint16(0), units[len(units)-1])
	assert.Equal(t, uint16(0), units[len(units)-2])
}

func TestRectContains(t *testing.T) {
	r := Rect{Left: 10, Top: 20, Right: 110, Bottom: 220}

	assert.Equal(t, int32(100), r.Width())
	assert.Equal(t, int32(200), r.Height())

	assert.True(t, r.Contains(Point{X: 10, Y: 20}), "top-left corner is inside")
	assert.True(t, r.Contains(Point{X: 109, Y: 219}))
	assert.False(t, r.Contains(Point{X: 110, Y: 20}), "right edge is exclusive")
	assert.False(t, r.Contains(Point{X: 10, Y: 220}), "bottom edge is exclusive")
	assert.False(t, r.Contains(Point{X: 9, Y: 21}))
}

func TestAcquireInstanceLock(t *testing.T) {
	name := "ElegantClipboardTestLock"

	release, err := AcquireInstanceLock(name)
	require.NoError(t, err)
	require.NotNil(t, release)

	_, err = AcquireInstanceLock(name)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	release()

	release2, err := AcquireInstanceLock(name)
	require.NoError(t, err)
	release2()
}
