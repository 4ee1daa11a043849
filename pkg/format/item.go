package format

import (
	"fmt"
	"strings"

	"github.com/elegantclip/elegantclip/internal/types"
)

// Item renders one history entry according to opts.
func Item(item *types.ClipboardItem, opts Options) string {
	if item == nil {
		return ColorizeIf("no item", Gray, opts.UseColors)
	}
	if opts.Compact {
		return compactLine(item, opts)
	}

	var b strings.Builder
	b.WriteString(header(item, opts))
	b.WriteByte('\n')

	preview := Truncate(item.Preview, opts.MaxWidth)
	b.WriteString("  " + preview)

	if opts.ShowMetadata {
		b.WriteByte('\n')
		b.WriteString("  " + DimIf(metadata(item), opts.UseColors))
	}
	return b.String()
}

// ItemList renders items separated by blank lines, or one per line in
// compact mode.
func ItemList(items []*types.ClipboardItem, opts Options) string {
	if len(items) == 0 {
		return ColorizeIf("history is empty", Gray, opts.UseColors)
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, Item(item, opts))
	}
	sep := "\n\n"
	if opts.Compact {
		sep = "\n"
	}
	return strings.Join(lines, sep)
}

func header(item *types.ClipboardItem, opts Options) string {
	var parts []string
	if opts.UseIcons {
		if icon, ok := ContentIcons[item.ContentType]; ok {
			parts = append(parts, icon)
		}
	}
	label := fmt.Sprintf("#%d", item.ID)
	parts = append(parts, BoldIf(label, opts.UseColors))
	parts = append(parts, ColorizeIf(string(item.ContentType), ContentColors[item.ContentType], opts.UseColors))
	if item.IsPinned {
		parts = append(parts, ColorizeIf("pinned", Yellow, opts.UseColors))
	}
	if item.IsFavorite {
		parts = append(parts, ColorizeIf("favorite", Red, opts.UseColors))
	}
	return strings.Join(parts, " ")
}

func compactLine(item *types.ClipboardItem, opts Options) string {
	width := opts.MaxWidth
	if width <= 0 {
		width = 60
	}
	preview := strings.ReplaceAll(item.Preview, "\n", " ")
	return header(item, opts) + " " + DimIf(Truncate(preview, width), opts.UseColors)
}

func metadata(item *types.ClipboardItem) string {
	parts := []string{
		Size(item.ByteSize),
		RelativeTime(item.CreatedAt),
	}
	if item.CharCount > 0 {
		parts = append(parts, fmt.Sprintf("%d chars", item.CharCount))
	}
	if item.ImageWidth > 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", item.ImageWidth, item.ImageHeight))
	}
	if item.SourceAppName != "" {
		parts = append(parts, "from "+item.SourceAppName)
	}
	if item.AccessCount > 0 {
		parts = append(parts, fmt.Sprintf("seen %d times", item.AccessCount+1))
	}
	if len(item.ContentHash) >= 12 {
		parts = append(parts, item.ContentHash[:12])
	}
	return strings.Join(parts, " · ")
}
