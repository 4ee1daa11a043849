//go:build windows

package platform

import (
	"fmt"
	"os"
	"sync"
	"time"
	"unicode/utf16"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/elegantclip/elegantclip/internal/clipboard"
	"github.com/elegantclip/elegantclip/internal/types"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procOpenClipboard              = user32.NewProc("OpenClipboard")
	procCloseClipboard             = user32.NewProc("CloseClipboard")
	procEmptyClipboard             = user32.NewProc("EmptyClipboard")
	procGetClipboardData           = user32.NewProc("GetClipboardData")
	procSetClipboardData           = user32.NewProc("SetClipboardData")
	procIsClipboardFormatAvailable = user32.NewProc("IsClipboardFormatAvailable")
	procRegisterClipboardFormatW   = user32.NewProc("RegisterClipboardFormatW")

	procGlobalAlloc  = kernel32.NewProc("GlobalAlloc")
	procGlobalFree   = kernel32.NewProc("GlobalFree")
	procGlobalLock   = kernel32.NewProc("GlobalLock")
	procGlobalUnlock = kernel32.NewProc("GlobalUnlock")
	procGlobalSize   = kernel32.NewProc("GlobalSize")
)

const (
	cfUnicodeText = 13
	cfDIB         = 8
	cfHDROP       = 15

	gmemMoveable = 0x0002
)

// Registered formats keep their atom for the session, so resolve once.
var (
	pngFormat = sync.OnceValue(func() uint32 { return registerFormat("PNG") })
)

func registerFormat(name string) uint32 {
	ptr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0
	}
	r, _, _ := procRegisterClipboardFormatW.Call(uintptr(unsafe.Pointer(ptr)))
	return uint32(r)
}

// Clipboard reads and writes the Windows clipboard. Every operation
// opens the clipboard, works, and closes it; the monitor's paused flag
// keeps our own writes out of the capture pipeline.
type Clipboard struct {
	logger *zap.Logger
}

func NewClipboard(logger *zap.Logger) *Clipboard {
	return &Clipboard{logger: logger}
}

// openSession opens the clipboard with a short retry: another process
// may hold it for a few milliseconds at a time.
func openSession() (close func(), err error) {
	for attempt := 0; attempt < 10; attempt++ {
		r, _, callErr := procOpenClipboard.Call(0)
		if r != 0 {
			return func() { procCloseClipboard.Call() }, nil
		}
		err = callErr
		time.Sleep(10 * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to open clipboard: %w", err)
}

func formatAvailable(format uint32) bool {
	r, _, _ := procIsClipboardFormatAvailable.Call(uintptr(format))
	return r != 0
}

// readFormat copies the payload of an already-open clipboard format.
func readFormat(format uint32) ([]byte, error) {
	h, _, err := procGetClipboardData.Call(uintptr(format))
	if h == 0 {
		return nil, fmt.Errorf("failed to get clipboard data: %w", err)
	}
	ptr, _, err := procGlobalLock.Call(h)
	if ptr == 0 {
		return nil, fmt.Errorf("failed to lock clipboard memory: %w", err)
	}
	defer procGlobalUnlock.Call(h)

	size, _, _ := procGlobalSize.Call(h)
	if size == 0 {
		return nil, nil
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size))
	return out, nil
}

// writeFormat allocates moveable global memory, fills it and hands it to
// the clipboard. Ownership transfers on success; on failure the block is
// freed here.
func writeFormat(format uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	h, _, err := procGlobalAlloc.Call(gmemMoveable, uintptr(len(data)))
	if h == 0 {
		return fmt.Errorf("failed to allocate clipboard memory: %w", err)
	}
	ptr, _, err := procGlobalLock.Call(h)
	if ptr == 0 {
		procGlobalFree.Call(h)
		return fmt.Errorf("failed to lock clipboard memory: %w", err)
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(ptr)), len(data)), data)
	procGlobalUnlock.Call(h)

	if r, _, err := procSetClipboardData.Call(uintptr(format), h); r == 0 {
		procGlobalFree.Call(h)
		return fmt.Errorf("failed to set clipboard data: %w", err)
	}
	return nil
}

// ReadText returns the clipboard text, or clipboard.ErrNoContent when no
// text is on offer.
func (c *Clipboard) ReadText() (string, error) {
	closeFn, err := openSession()
	if err != nil {
		return "", err
	}
	defer closeFn()

	if !formatAvailable(cfUnicodeText) {
		return "", clipboard.ErrNoContent
	}

	h, _, callErr := procGetClipboardData.Call(cfUnicodeText)
	if h == 0 {
		return "", fmt.Errorf("failed to get clipboard text: %w", callErr)
	}
	ptr, _, callErr := procGlobalLock.Call(h)
	if ptr == 0 {
		return "", fmt.Errorf("failed to lock clipboard text: %w", callErr)
	}
	defer procGlobalUnlock.Call(h)

	size, _, _ := procGlobalSize.Call(h)
	units := unsafe.Slice((*uint16)(unsafe.Pointer(ptr)), size/2)
	return windows.UTF16ToString(units), nil
}

// ReadImage returns PNG bytes. Applications that copy images offer a
// registered "PNG" format, a packed DIB, or both; the PNG is preferred
// because it round-trips byte-identically.
func (c *Clipboard) ReadImage() ([]byte, error) {
	closeFn, err := openSession()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	if png := pngFormat(); png != 0 && formatAvailable(png) {
		data, err := readFormat(png)
		if err == nil && len(data) > 0 {
			return data, nil
		}
		if err != nil {
			c.logger.Debug("png clipboard read failed", zap.Error(err))
		}
	}

	if formatAvailable(cfDIB) {
		dib, err := readFormat(cfDIB)
		if err != nil {
			return nil, err
		}
		data, err := dibToPNG(dib)
		if err != nil {
			return nil, fmt.Errorf("failed to convert clipboard bitmap: %w", err)
		}
		return data, nil
	}

	return nil, clipboard.ErrNoContent
}

// WriteText replaces the clipboard with UTF-16 text.
func (c *Clipboard) WriteText(text string) error {
	units := utf16.Encode([]rune(text))
	units = append(units, 0)
	data := unsafe.Slice((*byte)(unsafe.Pointer(&units[0])), len(units)*2)

	closeFn, err := openSession()
	if err != nil {
		return err
	}
	defer closeFn()

	if r, _, callErr := procEmptyClipboard.Call(); r == 0 {
		return fmt.Errorf("failed to empty clipboard: %w", callErr)
	}
	return writeFormat(cfUnicodeText, data)
}

// WriteImage replaces the clipboard with an image, offered both as raw
// PNG and as a DIB so every paste target finds a format it understands.
func (c *Clipboard) WriteImage(pngBytes []byte) error {
	dib, err := pngToDIB(pngBytes)
	if err != nil {
		return err
	}

	closeFn, err := openSession()
	if err != nil {
		return err
	}
	defer closeFn()

	if r, _, callErr := procEmptyClipboard.Call(); r == 0 {
		return fmt.Errorf("failed to empty clipboard: %w", callErr)
	}
	if png := pngFormat(); png != 0 {
		if err := writeFormat(png, pngBytes); err != nil {
			return err
		}
	}
	return writeFormat(cfDIB, dib)
}

// WriteFiles replaces the clipboard with a CF_HDROP file list, the shape
// Explorer produces for copied files.
func (c *Clipboard) WriteFiles(paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no file paths to write")
	}

	closeFn, err := openSession()
	if err != nil {
		return err
	}
	defer closeFn()

	if r, _, callErr := procEmptyClipboard.Call(); r == 0 {
		return fmt.Errorf("failed to empty clipboard: %w", callErr)
	}
	return writeFormat(cfHDROP, buildDropFiles(paths))
}

// Clear empties the clipboard.
func (c *Clipboard) Clear() error {
	closeFn, err := openSession()
	if err != nil {
		return err
	}
	defer closeFn()

	if r, _, callErr := procEmptyClipboard.Call(); r == 0 {
		return fmt.Errorf("failed to empty clipboard: %w", callErr)
	}
	return nil
}

// WriteItem puts a stored item back on the clipboard in the shape it was
// captured: text-like kinds as text, images as PNG+DIB, file lists as
// CF_HDROP. HTML and RTF are re-injected as their plain-text reading.
func (c *Clipboard) WriteItem(item *types.ClipboardItem) error {
	switch item.ContentType {
	case types.TypeText, types.TypeHTML, types.TypeRTF:
		return c.WriteText(item.PlainText())
	case types.TypeImage:
		data, err := os.ReadFile(item.ImagePath)
		if err != nil {
			return fmt.Errorf("failed to read stored image: %w", err)
		}
		return c.WriteImage(data)
	case types.TypeFiles:
		return c.WriteFiles(item.FilePaths)
	default:
		return fmt.Errorf("unknown content type %q", item.ContentType)
	}
}
