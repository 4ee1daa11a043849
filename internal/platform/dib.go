package platform

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

// The clipboard carries bitmaps as packed DIBs: a BITMAPINFOHEADER (or a
// V4/V5 extension of it) followed by pixel rows. Interchange with storage
// is always PNG, so both directions are converted here.

const (
	biRGB       = 0
	biBitfields = 3

	infoHeaderSize = 40
)

type dibHeader struct {
	size        uint32
	width       int32
	height      int32
	bitCount    uint16
	compression uint32
}

func parseDIBHeader(data []byte) (dibHeader, error) {
	var h dibHeader
	if len(data) < infoHeaderSize {
		return h, fmt.Errorf("dib too short: %d bytes", len(data))
	}
	h.size = binary.LittleEndian.Uint32(data[0:4])
	h.width = int32(binary.LittleEndian.Uint32(data[4:8]))
	h.height = int32(binary.LittleEndian.Uint32(data[8:12]))
	h.bitCount = binary.LittleEndian.Uint16(data[14:16])
	h.compression = binary.LittleEndian.Uint32(data[16:20])
	if h.size < infoHeaderSize || int(h.size) > len(data) {
		return h, fmt.Errorf("bad dib header size %d", h.size)
	}
	return h, nil
}

// dibToPNG converts a packed clipboard DIB to PNG bytes. 32bpp and 24bpp
// uncompressed bitmaps cover what applications actually put on the
// clipboard; anything else is rejected as a transient read failure.
func dibToPNG(dib []byte) ([]byte, error) {
	h, err := parseDIBHeader(dib)
	if err != nil {
		return nil, err
	}

	offset := int(h.size)
	switch {
	case h.compression == biRGB && (h.bitCount == 32 || h.bitCount == 24):
	case h.compression == biBitfields && h.bitCount == 32:
		// Masks follow a plain BITMAPINFOHEADER; V4/V5 embed them.
		masks := dib[h.size:]
		if h.size == infoHeaderSize {
			offset += 12
		}
		if len(masks) < 12 {
			return nil, fmt.Errorf("dib bitfields truncated")
		}
		r := binary.LittleEndian.Uint32(masks[0:4])
		g := binary.LittleEndian.Uint32(masks[4:8])
		b := binary.LittleEndian.Uint32(masks[8:12])
		if r != 0x00FF0000 || g != 0x0000FF00 || b != 0x000000FF {
			return nil, fmt.Errorf("unsupported dib channel masks %08x/%08x/%08x", r, g, b)
		}
	default:
		return nil, fmt.Errorf("unsupported dib format: %d bpp compression %d", h.bitCount, h.compression)
	}

	width := int(h.width)
	height := int(h.height)
	topDown := false
	if height < 0 {
		height = -height
		topDown = true
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("bad dib dimensions %dx%d", width, height)
	}

	stride := ((width*int(h.bitCount) + 31) / 32) * 4
	if offset+stride*height > len(dib) {
		return nil, fmt.Errorf("dib pixel data truncated")
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	zeroAlpha := true
	for y := 0; y < height; y++ {
		srcY := y
		if !topDown {
			srcY = height - 1 - y
		}
		row := dib[offset+srcY*stride:]
		for x := 0; x < width; x++ {
			var b, g, r, a uint8
			if h.bitCount == 32 {
				b, g, r, a = row[x*4], row[x*4+1], row[x*4+2], row[x*4+3]
				if a != 0 {
					zeroAlpha = false
				}
			} else {
				b, g, r, a = row[x*3], row[x*3+1], row[x*3+2], 0xFF
			}
			i := img.PixOffset(x, y)
			img.Pix[i+0] = r
			img.Pix[i+1] = g
			img.Pix[i+2] = b
			img.Pix[i+3] = a
		}
	}

	// 32bpp writers routinely leave the alpha channel zeroed. An
	// all-zero channel means opaque, not invisible.
	if h.bitCount == 32 && zeroAlpha {
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i] = 0xFF
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode dib as png: %w", err)
	}
	return buf.Bytes(), nil
}

// pngToDIB converts PNG bytes to a packed 32bpp bottom-up DIB for
// SetClipboardData(CF_DIB).
func pngToDIB(data []byte) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode png: %w", err)
	}

	bounds := src.Bounds()
	img, ok := src.(*image.NRGBA)
	if !ok || bounds.Min != (image.Point{}) {
		img = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(img, img.Bounds(), src, bounds.Min, draw.Src)
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	stride := width * 4

	buf := make([]byte, infoHeaderSize+stride*height)
	binary.LittleEndian.PutUint32(buf[0:4], infoHeaderSize)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(width))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(height))
	binary.LittleEndian.PutUint16(buf[12:14], 1)
	binary.LittleEndian.PutUint16(buf[14:16], 32)
	binary.LittleEndian.PutUint32(buf[16:20], biRGB)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(stride*height))

	for y := 0; y < height; y++ {
		dst := buf[infoHeaderSize+(height-1-y)*stride:]
		srcRow := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			dst[x*4+0] = srcRow[x*4+2]
			dst[x*4+1] = srcRow[x*4+1]
			dst[x*4+2] = srcRow[x*4+0]
			dst[x*4+3] = srcRow[x*4+3]
		}
	}
	return buf, nil
}
