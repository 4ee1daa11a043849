package types

import (
	"strings"
	"time"
)

// ContentType represents the kind of clipboard payload an item carries
type ContentType string

const (
	TypeText  ContentType = "text"
	TypeImage ContentType = "image"
	TypeHTML  ContentType = "html"
	TypeRTF   ContentType = "rtf"
	TypeFiles ContentType = "files"
)

// Valid reports whether t is one of the known content types
func (t ContentType) Valid() bool {
	switch t {
	case TypeText, TypeImage, TypeHTML, TypeRTF, TypeFiles:
		return true
	}
	return false
}

// ClipboardItem represents one persisted clipboard entry
type ClipboardItem struct {
	ID            int64       `json:"id"`
	ContentType   ContentType `json:"content_type"`
	TextContent   string      `json:"text_content,omitempty"`
	HTMLContent   string      `json:"html_content,omitempty"`
	RTFContent    string      `json:"rtf_content,omitempty"`
	ImagePath     string      `json:"image_path,omitempty"`
	FilePaths     []string    `json:"file_paths,omitempty"`
	ContentHash   string      `json:"content_hash"`
	Preview       string      `json:"preview"`
	ByteSize      int64       `json:"byte_size"`
	CharCount     int64       `json:"char_count,omitempty"`
	ImageWidth    int         `json:"image_width,omitempty"`
	ImageHeight   int         `json:"image_height,omitempty"`
	IsPinned      bool        `json:"is_pinned"`
	IsFavorite    bool        `json:"is_favorite"`
	SortOrder     int64       `json:"sort_order"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	LastAccessed  time.Time   `json:"last_accessed_at"`
	AccessCount   int64       `json:"access_count"`
	SourceAppName string      `json:"source_app_name,omitempty"`
	SourceAppIcon string      `json:"source_app_icon,omitempty"`
}

// PlainText returns the item's plain-text reading: the text counterpart
// when one was captured, otherwise the raw markup, a newline-joined path
// list for files, and "" for images.
func (i *ClipboardItem) PlainText() string {
	switch i.ContentType {
	case TypeText:
		return i.TextContent
	case TypeHTML:
		if i.TextContent != "" {
			return i.TextContent
		}
		return i.HTMLContent
	case TypeRTF:
		if i.TextContent != "" {
			return i.TextContent
		}
		return i.RTFContent
	case TypeFiles:
		return strings.Join(i.FilePaths, "\n")
	}
	return ""
}

// PathText returns the item's on-disk path reading: the stored PNG path
// for images, the newline-joined list for files, and "" otherwise.
func (i *ClipboardItem) PathText() string {
	switch i.ContentType {
	case TypeImage:
		return i.ImagePath
	case TypeFiles:
		return strings.Join(i.FilePaths, "\n")
	}
	return ""
}

// ListOptions narrows and pages a history listing. A zero value lists
// everything in display order.
type ListOptions struct {
	Search       string      `json:"search,omitempty"`
	ContentType  ContentType `json:"content_type,omitempty"`
	PinnedOnly   bool        `json:"pinned_only,omitempty"`
	FavoriteOnly bool        `json:"favorite_only,omitempty"`
	Limit        int         `json:"limit,omitempty"`
	Offset       int         `json:"offset,omitempty"`
}

// DataSize breaks down on-disk usage for the data-size command
type DataSize struct {
	DatabaseBytes int64 `json:"database_bytes"`
	ImageBytes    int64 `json:"image_bytes"`
	ImageCount    int   `json:"image_count"`
	IconBytes     int64 `json:"icon_bytes"`
	IconCount     int   `json:"icon_count"`
	TotalBytes    int64 `json:"total_bytes"`
	ItemCount     int64 `json:"item_count"`
}

// FileDetail describes one path of a files item for the file-details command
type FileDetail struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	IsDir  bool   `json:"is_dir"`
	Size   int64  `json:"size"`
}
