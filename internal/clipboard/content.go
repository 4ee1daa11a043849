package clipboard

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"strings"
	"unicode/utf8"

	"lukechampine.com/blake3"

	"github.com/elegantclip/elegantclip/internal/types"
)

// previewLimit is the maximum number of Unicode scalars in a preview.
const previewLimit = 200

const (
	previewImage = "[Image]"
	previewRTF   = "[RTF Content]"
)

// Content is one captured clipboard payload. Kind selects the
// authoritative field; Text additionally carries the plain-text
// extraction for HTML and RTF payloads when one exists.
type Content struct {
	Kind  types.ContentType
	Text  string
	HTML  string
	RTF   string
	Image []byte
	Files []string
}

// NewText wraps a plain-text payload.
func NewText(text string) *Content {
	return &Content{Kind: types.TypeText, Text: text}
}

// NewHTML wraps an HTML fragment with its optional plain-text extraction.
func NewHTML(html, text string) *Content {
	return &Content{Kind: types.TypeHTML, HTML: html, Text: text}
}

// NewRTF wraps an RTF payload with its optional plain-text extraction.
func NewRTF(rtf, text string) *Content {
	return &Content{Kind: types.TypeRTF, RTF: rtf, Text: text}
}

// NewImage wraps PNG bytes.
func NewImage(png []byte) *Content {
	return &Content{Kind: types.TypeImage, Image: png}
}

// NewFiles wraps a list of absolute paths.
func NewFiles(paths []string) *Content {
	return &Content{Kind: types.TypeFiles, Files: paths}
}

// Fingerprint hashes the payload behind a type tag so identical bytes
// under two interpretations never collide. Output is 64 lowercase hex
// characters of BLAKE3.
func (c *Content) Fingerprint() string {
	h := blake3.New(32, nil)
	switch c.Kind {
	case types.TypeText:
		h.Write([]byte("text:"))
		h.Write([]byte(c.Text))
	case types.TypeHTML:
		h.Write([]byte("html:"))
		h.Write([]byte(c.HTML))
	case types.TypeRTF:
		h.Write([]byte("rtf:"))
		h.Write([]byte(c.RTF))
	case types.TypeImage:
		h.Write([]byte("image:"))
		h.Write(c.Image)
	case types.TypeFiles:
		h.Write([]byte("files:"))
		for _, p := range c.Files {
			h.Write([]byte(p))
			h.Write([]byte("|"))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ByteSize reports the payload size: string length for text kinds, PNG
// length for images, and the sum of regular-file sizes for file lists.
func (c *Content) ByteSize() int64 {
	switch c.Kind {
	case types.TypeText:
		return int64(len(c.Text))
	case types.TypeHTML:
		return int64(len(c.HTML))
	case types.TypeRTF:
		return int64(len(c.RTF))
	case types.TypeImage:
		return int64(len(c.Image))
	case types.TypeFiles:
		var total int64
		for _, p := range c.Files {
			if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
				total += info.Size()
			}
		}
		return total
	}
	return 0
}

// CharCount reports the Unicode scalar count of the authoritative string,
// zero for images and file lists.
func (c *Content) CharCount() int64 {
	switch c.Kind {
	case types.TypeText:
		return int64(utf8.RuneCountInString(c.Text))
	case types.TypeHTML:
		return int64(utf8.RuneCountInString(c.HTML))
	case types.TypeRTF:
		return int64(utf8.RuneCountInString(c.RTF))
	}
	return 0
}

// Preview derives the UI snippet for the payload.
func (c *Content) Preview() string {
	switch c.Kind {
	case types.TypeText:
		return previewText(c.Text)
	case types.TypeHTML:
		if c.Text != "" {
			return previewText(c.Text)
		}
		return previewText(c.HTML)
	case types.TypeRTF:
		if c.Text != "" {
			return previewText(c.Text)
		}
		return previewRTF
	case types.TypeImage:
		return previewImage
	case types.TypeFiles:
		if len(c.Files) == 1 {
			return c.Files[0]
		}
		return fmt.Sprintf("%d files", len(c.Files))
	}
	return ""
}

func previewText(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= previewLimit {
		return s
	}
	return string(runes[:previewLimit]) + "…"
}

// TruncateUTF8 cuts s to at most limit bytes without splitting a
// codepoint: every character whose starting byte index is below the limit
// is kept whole, so the result can exceed limit by at most one character.
// Oversize payloads are rejected before reaching here; this guards the
// hasher against a limit change racing a capture.
func TruncateUTF8(s string, limit int64) string {
	if limit <= 0 || int64(len(s)) <= limit {
		return s
	}
	cut := int(limit)
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	return s[:cut]
}

// DecodeImageSize reads the PNG header only and returns the pixel
// dimensions.
func DecodeImageSize(png []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(png))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
