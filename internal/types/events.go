package types

// Event names delivered to subscribed UI clients.
const (
	EventClipboardUpdated = "clipboard-updated"
	EventEscapePressed    = "escape-pressed"
	EventWindowHidden     = "window-hidden"
	EventWindowShown      = "window-shown"
	EventUpdateProgress   = "update-download-progress"
)

// MonitorStatus represents the current state of clipboard monitoring
type MonitorStatus struct {
	IsRunning bool `json:"is_running"`
	IsPaused  bool `json:"is_paused"`
}

// UpdateProgress is the payload of update-download-progress events
type UpdateProgress struct {
	Downloaded int64   `json:"downloaded"`
	Total      int64   `json:"total"`
	Percent    float64 `json:"percent"`
}
