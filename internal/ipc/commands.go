package ipc

// Command names the daemon accepts over the control socket.
const (
	CmdList                = "list"
	CmdCount               = "count"
	CmdGetByID             = "get_by_id"
	CmdTogglePin           = "toggle_pin"
	CmdToggleFavorite      = "toggle_favorite"
	CmdMove                = "move"
	CmdDelete              = "delete"
	CmdClearHistory        = "clear_history"
	CmdClearAll            = "clear_all"
	CmdUpdateTextContent   = "update_text_content"
	CmdCopyToClipboard     = "copy_to_clipboard"
	CmdPasteContent        = "paste_content"
	CmdPasteContentAsPlain = "paste_content_as_plain"
	CmdPasteTextDirect     = "paste_text_direct"
	CmdPasteAsPath         = "paste_as_path"
	CmdQuickPasteBySlot    = "quick_paste_by_slot"
	CmdPauseMonitor        = "pause_monitor"
	CmdResumeMonitor       = "resume_monitor"
	CmdMonitorStatus       = "monitor_status"
	CmdOptimizeDB          = "optimize_db"
	CmdVacuumDB            = "vacuum_db"
	CmdCheckFilesExist     = "check_files_exist"
	CmdFileDetails         = "file_details"
	CmdDataSize            = "data_size"
	CmdGetSettings         = "get_settings"
	CmdGetSetting          = "get_setting"
	CmdSetSetting          = "set_setting"
	CmdEnableAutostart     = "enable_autostart"
	CmdDisableAutostart    = "disable_autostart"
	CmdIsAutostart         = "is_autostart"
	CmdEnableWinV          = "enable_winv_replacement"
	CmdDisableWinV         = "disable_winv_replacement"
	CmdIsWinV              = "is_winv_replacement"
	CmdUpdateShortcut      = "update_shortcut"
	CmdOpenSettingsWindow  = "open_settings_window"
	CmdSetWindowVisibility = "set_window_visibility"
	CmdDownloadUpdate      = "download_update"
	CmdRestart             = "restart"
	CmdQuit                = "quit"
)
