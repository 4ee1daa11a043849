package clipboard

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elegantclip/elegantclip/internal/types"
)

func TestFingerprint(t *testing.T) {
	hexRe := regexp.MustCompile(`^[0-9a-f]{64}$`)

	t.Run("ShapeAndDeterminism", func(t *testing.T) {
		a := NewText("hello").Fingerprint()
		b := NewText("hello").Fingerprint()
		assert.Regexp(t, hexRe, a)
		assert.Equal(t, a, b)
	})

	t.Run("TypeTagSeparatesInterpretations", func(t *testing.T) {
		text := NewText("<b>x</b>").Fingerprint()
		html := NewHTML("<b>x</b>", "").Fingerprint()
		rtf := NewRTF("<b>x</b>", "").Fingerprint()
		assert.NotEqual(t, text, html)
		assert.NotEqual(t, text, rtf)
		assert.NotEqual(t, html, rtf)
	})

	t.Run("PlainTextExtractionDoesNotChangeHash", func(t *testing.T) {
		bare := NewHTML("<p>hi</p>", "").Fingerprint()
		withText := NewHTML("<p>hi</p>", "hi").Fingerprint()
		assert.Equal(t, bare, withText)
	})

	t.Run("FilesSeparatorPreservesBoundaries", func(t *testing.T) {
		a := NewFiles([]string{"ab", "c"}).Fingerprint()
		b := NewFiles([]string{"a", "bc"}).Fingerprint()
		assert.NotEqual(t, a, b)

		ordered := NewFiles([]string{"a", "b"}).Fingerprint()
		reversed := NewFiles([]string{"b", "a"}).Fingerprint()
		assert.NotEqual(t, ordered, reversed)
	})

	t.Run("ImageHashesBytes", func(t *testing.T) {
		a := NewImage([]byte{1, 2, 3}).Fingerprint()
		b := NewImage([]byte{1, 2, 4}).Fingerprint()
		assert.Regexp(t, hexRe, a)
		assert.NotEqual(t, a, b)
	})
}

func TestPreview(t *testing.T) {
	t.Run("TrimsWhitespace", func(t *testing.T) {
		assert.Equal(t, "hello", NewText("  hello \n").Preview())
	})

	t.Run("CutsAtTwoHundredScalars", func(t *testing.T) {
		long := strings.Repeat("字", 250)
		p := NewText(long).Preview()
		assert.Equal(t, 201, utf8.RuneCountInString(p))
		assert.True(t, strings.HasSuffix(p, "…"))

		exact := strings.Repeat("a", 200)
		assert.Equal(t, exact, NewText(exact).Preview())
	})

	t.Run("HTMLFallsBackToRaw", func(t *testing.T) {
		assert.Equal(t, "plain", NewHTML("<p>x</p>", "plain").Preview())
		assert.Equal(t, "<p>x</p>", NewHTML("<p>x</p>", "").Preview())
	})

	t.Run("RTFFallsBackToLiteral", func(t *testing.T) {
		assert.Equal(t, "plain", NewRTF(`{\rtf1 x}`, "plain").Preview())
		assert.Equal(t, "[RTF Content]", NewRTF(`{\rtf1 x}`, "").Preview())
	})

	t.Run("ImageLiteral", func(t *testing.T) {
		assert.Equal(t, "[Image]", NewImage([]byte{1}).Preview())
	})

	t.Run("Files", func(t *testing.T) {
		assert.Equal(t, `C:\only.txt`, NewFiles([]string{`C:\only.txt`}).Preview())
		assert.Equal(t, "3 files", NewFiles([]string{"a", "b", "c"}).Preview())
	})
}

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int64
		want  string
	}{
		{"NoLimit", "hello", 0, "hello"},
		{"UnderLimit", "hello", 10, "hello"},
		{"ExactLimit", "hello", 5, "hello"},
		{"ASCIICut", "hello", 3, "hel"},
		{"KeepsRuneStartingBeforeLimit", "aé", 2, "aé"},
		{"CutAfterWholeRune", "日本語", 3, "日"},
		{"CutInsideRuneKeepsIt", "日本語", 4, "日本"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateUTF8(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestByteSizeAndCharCount(t *testing.T) {
	t.Run("TextCounts", func(t *testing.T) {
		c := NewText("日本語")
		assert.Equal(t, int64(9), c.ByteSize())
		assert.Equal(t, int64(3), c.CharCount())
	})

	t.Run("FilesSumRegularSizes", func(t *testing.T) {
		dir := t.TempDir()
		fileA := filepath.Join(dir, "a.bin")
		require.NoError(t, os.WriteFile(fileA, bytes.Repeat([]byte{0}, 100), 0o644))
		fileB := filepath.Join(dir, "b.bin")
		require.NoError(t, os.WriteFile(fileB, bytes.Repeat([]byte{0}, 50), 0o644))
		subdir := filepath.Join(dir, "sub")
		require.NoError(t, os.Mkdir(subdir, 0o755))

		c := NewFiles([]string{fileA, fileB, subdir, filepath.Join(dir, "missing.bin")})
		assert.Equal(t, int64(150), c.ByteSize())
		assert.Equal(t, int64(0), c.CharCount())
	})
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImageSize(t *testing.T) {
	data := encodePNG(t, 2, 2)

	w, h, err := DecodeImageSize(data)
	require.NoError(t, err)
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)

	_, _, err = DecodeImageSize([]byte("not a png"))
	assert.Error(t, err)
}

func TestContentKinds(t *testing.T) {
	tests := []struct {
		content *Content
		want    types.ContentType
	}{
		{NewText("x"), types.TypeText},
		{NewHTML("<p>", "p"), types.TypeHTML},
		{NewRTF(`{\rtf1}`, ""), types.TypeRTF},
		{NewImage([]byte{1}), types.TypeImage},
		{NewFiles([]string{"a"}), types.TypeFiles},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.content.Kind)
		assert.True(t, tt.content.Kind.Valid())
	}
}
