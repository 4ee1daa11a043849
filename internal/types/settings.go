package types

import "strconv"

// Well-known settings table keys. All UI-visible configuration lives in the
// database; the on-disk config file only carries what must be known before
// the database opens.
const (
	SettingMaxHistoryCount  = "max_history_count"
	SettingMaxContentSizeKB = "max_content_size_kb"
	SettingGlobalShortcut   = "global_shortcut"
	SettingTheme            = "theme"
	SettingLanguage         = "language"
	SettingSaveImages       = "save_images"
	SettingSaveHTML         = "save_html"
	SettingSaveRTF          = "save_rtf"
	SettingWinVReplacement  = "winv_replacement"
)

// DefaultMaxHistoryCount is both the seeded value of max_history_count and
// the in-code fallback when the setting is missing or unparseable. Zero
// disables retention.
const DefaultMaxHistoryCount = 1000

// DefaultShortcut is the overlay toggle binding used until the user stores
// another one.
const DefaultShortcut = "Alt+C"

// DefaultSettings seeds the settings table at schema creation.
func DefaultSettings() map[string]string {
	return map[string]string{
		SettingMaxHistoryCount:  strconv.Itoa(DefaultMaxHistoryCount),
		SettingMaxContentSizeKB: "1024",
		SettingGlobalShortcut:   DefaultShortcut,
		SettingTheme:            "system",
		SettingLanguage:         "en",
		SettingSaveImages:       "true",
		SettingSaveHTML:         "true",
		SettingSaveRTF:          "true",
		SettingWinVReplacement:  "false",
	}
}
