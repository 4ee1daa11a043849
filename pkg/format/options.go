package format

import "github.com/elegantclip/elegantclip/internal/types"

// Options controls history rendering.
type Options struct {
	UseColors    bool
	UseIcons     bool
	MaxWidth     int  // max preview width in runes, 0 = no limit
	ShowMetadata bool // show hash prefix, source app, timestamps
	Compact      bool // single line per item
}

// DefaultOptions returns the multi-line defaults.
func DefaultOptions() Options {
	return Options{
		UseColors:    true,
		UseIcons:     true,
		MaxWidth:     80,
		ShowMetadata: true,
	}
}

// CompactOptions returns one-line-per-item options.
func CompactOptions() Options {
	opts := DefaultOptions()
	opts.Compact = true
	opts.ShowMetadata = false
	return opts
}

// ContentIcons maps content types to glyphs.
var ContentIcons = map[types.ContentType]string{
	types.TypeText:  "📝",
	types.TypeImage: "🖼️",
	types.TypeHTML:  "🌐",
	types.TypeRTF:   "📄",
	types.TypeFiles: "📎",
}

// ContentColors maps content types to their accent color.
var ContentColors = map[types.ContentType]string{
	types.TypeText:  Cyan,
	types.TypeImage: Magenta,
	types.TypeHTML:  Green,
	types.TypeRTF:   Gray,
	types.TypeFiles: Yellow,
}
