//go:build windows

package source

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

var (
	modshell32 = windows.NewLazySystemDLL("shell32.dll")
	modgdi32   = windows.NewLazySystemDLL("gdi32.dll")

	procSHGetFileInfoW = modshell32.NewProc("SHGetFileInfoW")

	procGetIconInfo = moduser32.NewProc("GetIconInfo")
	procDrawIconEx  = moduser32.NewProc("DrawIconEx")
	procDestroyIcon = moduser32.NewProc("DestroyIcon")

	procCreateCompatibleDC = modgdi32.NewProc("CreateCompatibleDC")
	procDeleteDC           = modgdi32.NewProc("DeleteDC")
	procCreateDIBSection   = modgdi32.NewProc("CreateDIBSection")
	procSelectObject       = modgdi32.NewProc("SelectObject")
	procDeleteObject       = modgdi32.NewProc("DeleteObject")
	procGetObjectW         = modgdi32.NewProc("GetObjectW")
	procGdiFlush           = modgdi32.NewProc("GdiFlush")
)

const (
	shgfiIcon      = 0x000000100
	shgfiLargeIcon = 0x000000000
	diNormal       = 0x0003
	biRGB          = 0
)

type shFileInfo struct {
	HIcon         uintptr
	IIcon         int32
	DwAttributes  uint32
	SzDisplayName [260]uint16
	SzTypeName    [80]uint16
}

type iconInfo struct {
	FIcon    int32
	XHotspot uint32
	YHotspot uint32
	HbmMask  uintptr
	HbmColor uintptr
}

type gdiBitmap struct {
	Type       int32
	Width      int32
	Height     int32
	WidthBytes int32
	Planes     uint16
	BitsPixel  uint16
	Bits       uintptr
}

type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

type bitmapInfo struct {
	Header bitmapInfoHeader
	Colors [1]uint32
}

// Scoped GDI acquisition: each helper pairs the handle with its release
// so no exit path can leak one.

type memDC struct {
	handle uintptr
}

func newMemDC() (*memDC, error) {
	h, _, _ := procCreateCompatibleDC.Call(0)
	if h == 0 {
		return nil, fmt.Errorf("failed to create memory DC")
	}
	return &memDC{handle: h}, nil
}

func (d *memDC) Close() {
	procDeleteDC.Call(d.handle)
}

type gdiObject struct {
	handle uintptr
}

func (o *gdiObject) Close() {
	if o.handle != 0 {
		procDeleteObject.Call(o.handle)
	}
}

type heldIcon struct {
	handle uintptr
}

func (i *heldIcon) Close() {
	if i.handle != 0 {
		procDestroyIcon.Call(i.handle)
	}
}

// cachedIcon returns the path of the cached 32x32 PNG icon of exePath,
// extracting it on a cache miss. An empty path means no icon is
// available; the capture proceeds without one.
func (r *Resolver) cachedIcon(exePath string) string {
	key := IconCacheKey(exePath)
	path := filepath.Join(r.iconsDir, key+".png")
	if _, err := os.Stat(path); err == nil {
		return path
	}

	img, err := extractIcon(exePath)
	if err != nil {
		r.logger.Debug("icon extraction failed",
			zap.String("exe", exePath),
			zap.Error(err))
		return ""
	}

	if err := os.MkdirAll(r.iconsDir, 0o755); err != nil {
		r.logger.Warn("failed to create icons directory", zap.Error(err))
		return ""
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaleToIconSize(img)); err != nil {
		r.logger.Warn("failed to encode icon", zap.Error(err))
		return ""
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		r.logger.Warn("failed to write icon cache file", zap.Error(err))
		return ""
	}

	return path
}

// extractIcon renders the shell icon of exePath into an NRGBA image at
// the icon's native size.
func extractIcon(exePath string) (*image.NRGBA, error) {
	pathPtr, err := windows.UTF16PtrFromString(exePath)
	if err != nil {
		return nil, fmt.Errorf("invalid exe path: %w", err)
	}

	var sfi shFileInfo
	r1, _, _ := procSHGetFileInfoW.Call(
		uintptr(unsafe.Pointer(pathPtr)),
		0,
		uintptr(unsafe.Pointer(&sfi)),
		unsafe.Sizeof(sfi),
		shgfiIcon|shgfiLargeIcon,
	)
	if r1 == 0 || sfi.HIcon == 0 {
		return nil, fmt.Errorf("no shell icon for %s", filepath.Base(exePath))
	}
	icon := &heldIcon{handle: sfi.HIcon}
	defer icon.Close()

	width, height, err := iconDimensions(sfi.HIcon)
	if err != nil {
		return nil, err
	}

	dc, err := newMemDC()
	if err != nil {
		return nil, err
	}
	defer dc.Close()

	bmi := bitmapInfo{Header: bitmapInfoHeader{
		Size:        uint32(unsafe.Sizeof(bitmapInfoHeader{})),
		Width:       int32(width),
		Height:      -int32(height), // top-down rows
		Planes:      1,
		BitCount:    32,
		Compression: biRGB,
	}}

	var bits uintptr
	hbm, _, _ := procCreateDIBSection.Call(
		dc.handle,
		uintptr(unsafe.Pointer(&bmi)),
		0,
		uintptr(unsafe.Pointer(&bits)),
		0,
		0,
	)
	if hbm == 0 || bits == 0 {
		return nil, fmt.Errorf("failed to create DIB section")
	}
	dib := &gdiObject{handle: hbm}
	defer dib.Close()

	prev, _, _ := procSelectObject.Call(dc.handle, hbm)
	defer procSelectObject.Call(dc.handle, prev)

	r1, _, _ = procDrawIconEx.Call(
		dc.handle,
		0, 0,
		sfi.HIcon,
		uintptr(width), uintptr(height),
		0, 0,
		diNormal,
	)
	if r1 == 0 {
		return nil, fmt.Errorf("failed to draw icon")
	}

	// GDI batches drawing; the DIB bits are undefined until flushed.
	procGdiFlush.Call()

	raw := unsafe.Slice((*byte)(unsafe.Pointer(bits)), width*height*4)
	pix := make([]byte, len(raw))
	copy(pix, raw)
	bgraToRGBA(pix)

	return &image.NRGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}

// iconDimensions reads the icon's native pixel size from its color
// bitmap. Both GetIconInfo bitmaps are owned by the caller and are
// released here.
func iconDimensions(hIcon uintptr) (int, int, error) {
	var ii iconInfo
	r1, _, _ := procGetIconInfo.Call(hIcon, uintptr(unsafe.Pointer(&ii)))
	if r1 == 0 {
		return 0, 0, fmt.Errorf("failed to query icon info")
	}
	mask := &gdiObject{handle: ii.HbmMask}
	defer mask.Close()
	color := &gdiObject{handle: ii.HbmColor}
	defer color.Close()

	if ii.HbmColor == 0 {
		return 0, 0, fmt.Errorf("icon has no color bitmap")
	}

	var bm gdiBitmap
	r1, _, _ = procGetObjectW.Call(
		ii.HbmColor,
		unsafe.Sizeof(bm),
		uintptr(unsafe.Pointer(&bm)),
	)
	if r1 == 0 || bm.Width <= 0 || bm.Height <= 0 {
		return 0, 0, fmt.Errorf("failed to read icon bitmap")
	}
	return int(bm.Width), int(bm.Height), nil
}
