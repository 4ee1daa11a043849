package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/elegantclip/elegantclip/internal/types"
)

func TestSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Size(tt.bytes))
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "just now", RelativeTime(now.Add(-10*time.Second)))
	assert.Equal(t, "5 minutes ago", RelativeTime(now.Add(-5*time.Minute)))
	assert.Equal(t, "3 hours ago", RelativeTime(now.Add(-3*time.Hour)))
	assert.Equal(t, "2 days ago", RelativeTime(now.Add(-48*time.Hour)))

	old := time.Date(2020, 3, 14, 0, 0, 0, 0, time.Local)
	assert.Equal(t, "Mar 14, 2020", RelativeTime(old))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "long te…", Truncate("long text here", 8))
	// Rune-safe on multibyte input.
	assert.Equal(t, "日本…", Truncate("日本語テキスト", 3))
	assert.Equal(t, "unlimited", Truncate("unlimited", 0))
}

func TestItemCompact(t *testing.T) {
	item := &types.ClipboardItem{
		ID:          7,
		ContentType: types.TypeText,
		Preview:     "hello\nworld",
		CreatedAt:   time.Now(),
	}
	line := Item(item, Options{Compact: true, MaxWidth: 40})
	assert.Contains(t, line, "#7")
	assert.Contains(t, line, "text")
	// Newlines are flattened in compact mode.
	assert.NotContains(t, line, "\n")
}

func TestItemMetadata(t *testing.T) {
	item := &types.ClipboardItem{
		ID:            3,
		ContentType:   types.TypeImage,
		Preview:       "[Image]",
		ByteSize:      2048,
		ImageWidth:    640,
		ImageHeight:   480,
		ContentHash:   strings.Repeat("ab", 32),
		SourceAppName: "Paint",
		CreatedAt:     time.Now(),
	}
	out := Item(item, Options{ShowMetadata: true, MaxWidth: 80})
	assert.Contains(t, out, "2.0 KB")
	assert.Contains(t, out, "640x480")
	assert.Contains(t, out, "from Paint")
	assert.Contains(t, out, "abababababab")
}

func TestItemListEmpty(t *testing.T) {
	out := ItemList(nil, DefaultOptions())
	assert.Contains(t, out, "history is empty")
}
