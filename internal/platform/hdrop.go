package platform

import (
	"encoding/binary"
	"unicode/utf16"
)

// dropFilesHeaderSize is sizeof(DROPFILES): pFiles, POINT, fNC, fWide.
const dropFilesHeaderSize = 20

// buildDropFiles packs absolute paths into a CF_HDROP payload: a
// DROPFILES header followed by a double-NUL-terminated wide path list.
func buildDropFiles(paths []string) []byte {
	var units []uint16
	for _, p := range paths {
		units = append(units, utf16.Encode([]rune(p))...)
		units = append(units, 0)
	}
	units = append(units, 0)

	buf := make([]byte, dropFilesHeaderSize+len(units)*2)
	binary.LittleEndian.PutUint32(buf[0:4], dropFilesHeaderSize)
	binary.LittleEndian.PutUint32(buf[16:20], 1) // fWide: UTF-16 paths
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[dropFilesHeaderSize+i*2:], u)
	}
	return buf
}
