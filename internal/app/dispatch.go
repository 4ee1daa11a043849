package app

import (
	"context"

	"github.com/elegantclip/elegantclip/internal/ipc"
	"github.com/elegantclip/elegantclip/internal/types"
)

// Handle serves one control-socket request. Every command error comes
// back as a string response; the connection layer never sees it.
func (a *App) Handle(req *ipc.Request) *ipc.Response {
	ctx, cancel := a.commandContext()
	defer cancel()

	switch req.Command {
	case ipc.CmdList:
		items, err := a.List(ctx, listOptions(req))
		if err != nil {
			return ipc.Errorf("list failed: %v", err)
		}
		return ipc.Ok(items)

	case ipc.CmdCount:
		n, err := a.Count(ctx, listOptions(req))
		if err != nil {
			return ipc.Errorf("count failed: %v", err)
		}
		return ipc.Ok(n)

	case ipc.CmdGetByID:
		id, ok := req.Int64("id")
		if !ok {
			return ipc.Errorf("missing id")
		}
		item, err := a.GetByID(ctx, id)
		if err != nil {
			return ipc.Errorf("get failed: %v", err)
		}
		return ipc.Ok(item)

	case ipc.CmdTogglePin:
		return a.toggleResponse(ctx, req, a.TogglePin)

	case ipc.CmdToggleFavorite:
		return a.toggleResponse(ctx, req, a.ToggleFavorite)

	case ipc.CmdMove:
		from, okFrom := req.Int64("from")
		to, okTo := req.Int64("to")
		if !okFrom || !okTo {
			return ipc.Errorf("missing from/to ids")
		}
		if err := a.Move(ctx, from, to); err != nil {
			return ipc.Errorf("move failed: %v", err)
		}
		return ipc.Ok(nil)

	case ipc.CmdDelete:
		id, ok := req.Int64("id")
		if !ok {
			return ipc.Errorf("missing id")
		}
		if err := a.Delete(ctx, id); err != nil {
			return ipc.Errorf("delete failed: %v", err)
		}
		return ipc.Ok(nil)

	case ipc.CmdClearHistory:
		deleted, err := a.ClearHistory(ctx)
		if err != nil {
			return ipc.Errorf("clear failed: %v", err)
		}
		return ipc.Ok(deleted)

	case ipc.CmdClearAll:
		deleted, err := a.ClearAll(ctx)
		if err != nil {
			return ipc.Errorf("clear-all failed: %v", err)
		}
		return ipc.Ok(deleted)

	case ipc.CmdUpdateTextContent:
		id, ok := req.Int64("id")
		if !ok {
			return ipc.Errorf("missing id")
		}
		text, _ := req.String("text")
		if err := a.UpdateTextContent(ctx, id, text); err != nil {
			return ipc.Errorf("update failed: %v", err)
		}
		return ipc.Ok(nil)

	case ipc.CmdCopyToClipboard:
		return a.idCommand(ctx, req, a.CopyToClipboard)

	case ipc.CmdPasteContent:
		return a.idCommand(ctx, req, a.PasteContent)

	case ipc.CmdPasteContentAsPlain:
		return a.idCommand(ctx, req, a.PasteContentAsPlain)

	case ipc.CmdPasteTextDirect:
		text, ok := req.String("text")
		if !ok || text == "" {
			return ipc.Errorf("missing text")
		}
		if err := a.PasteTextDirect(text); err != nil {
			return ipc.Errorf("paste failed: %v", err)
		}
		return ipc.Ok(nil)

	case ipc.CmdPasteAsPath:
		return a.idCommand(ctx, req, a.PasteAsPath)

	case ipc.CmdQuickPasteBySlot:
		slot, ok := req.Int("slot")
		if !ok {
			return ipc.Errorf("missing slot")
		}
		if err := a.QuickPasteBySlot(ctx, slot); err != nil {
			return ipc.Errorf("quick paste failed: %v", err)
		}
		return ipc.Ok(nil)

	case ipc.CmdPauseMonitor:
		a.PauseMonitor()
		return ipc.Ok(a.MonitorStatus())

	case ipc.CmdResumeMonitor:
		a.ResumeMonitor()
		return ipc.Ok(a.MonitorStatus())

	case ipc.CmdMonitorStatus:
		return ipc.Ok(a.MonitorStatus())

	case ipc.CmdOptimizeDB:
		if err := a.OptimizeDB(ctx); err != nil {
			return ipc.Errorf("optimize failed: %v", err)
		}
		return ipc.Ok(nil)

	case ipc.CmdVacuumDB:
		if err := a.VacuumDB(ctx); err != nil {
			return ipc.Errorf("vacuum failed: %v", err)
		}
		return ipc.Ok(nil)

	case ipc.CmdCheckFilesExist:
		paths := stringSlice(req, "paths")
		existence, err := a.CheckFilesExist(ctx, paths)
		if err != nil {
			return ipc.Errorf("check failed: %v", err)
		}
		return ipc.Ok(existence)

	case ipc.CmdFileDetails:
		id, ok := req.Int64("id")
		if !ok {
			return ipc.Errorf("missing id")
		}
		details, err := a.FileDetails(ctx, id)
		if err != nil {
			return ipc.Errorf("file details failed: %v", err)
		}
		return ipc.Ok(details)

	case ipc.CmdDataSize:
		size, err := a.DataSize(ctx)
		if err != nil {
			return ipc.Errorf("data size failed: %v", err)
		}
		return ipc.Ok(size)

	case ipc.CmdGetSettings:
		settings, err := a.GetSettings(ctx)
		if err != nil {
			return ipc.Errorf("settings read failed: %v", err)
		}
		return ipc.Ok(settings)

	case ipc.CmdGetSetting:
		key, ok := req.String("key")
		if !ok {
			return ipc.Errorf("missing key")
		}
		value, err := a.GetSetting(ctx, key)
		if err != nil {
			return ipc.Errorf("setting read failed: %v", err)
		}
		return ipc.Ok(value)

	case ipc.CmdSetSetting:
		key, okKey := req.String("key")
		value, okValue := req.String("value")
		if !okKey || !okValue {
			return ipc.Errorf("missing key/value")
		}
		if err := a.SetSetting(ctx, key, value); err != nil {
			return ipc.Errorf("setting write failed: %v", err)
		}
		return ipc.Ok(nil)

	case ipc.CmdEnableAutostart:
		if err := a.EnableAutostart(); err != nil {
			return ipc.Errorf("autostart enable failed: %v", err)
		}
		return ipc.Ok(nil)

	case ipc.CmdDisableAutostart:
		if err := a.DisableAutostart(); err != nil {
			return ipc.Errorf("autostart disable failed: %v", err)
		}
		return ipc.Ok(nil)

	case ipc.CmdIsAutostart:
		enabled, err := a.IsAutostart()
		if err != nil {
			return ipc.Errorf("autostart check failed: %v", err)
		}
		return ipc.Ok(enabled)

	case ipc.CmdEnableWinV:
		if err := a.EnableWinVReplacement(ctx); err != nil {
			return ipc.Errorf("Win+V enable failed: %v", err)
		}
		return ipc.Ok(nil)

	case ipc.CmdDisableWinV:
		if err := a.DisableWinVReplacement(ctx); err != nil {
			return ipc.Errorf("Win+V disable failed: %v", err)
		}
		return ipc.Ok(nil)

	case ipc.CmdIsWinV:
		enabled, applied := a.IsWinVReplacement(ctx)
		return ipc.Ok(map[string]bool{"enabled": enabled, "applied": applied})

	case ipc.CmdUpdateShortcut:
		shortcut, ok := req.String("shortcut")
		if !ok {
			return ipc.Errorf("missing shortcut")
		}
		if err := a.UpdateShortcut(ctx, shortcut); err != nil {
			return ipc.Errorf("shortcut update failed: %v", err)
		}
		return ipc.Ok(nil)

	case ipc.CmdOpenSettingsWindow:
		a.OpenSettingsWindow()
		return ipc.Ok(nil)

	case ipc.CmdSetWindowVisibility:
		visible, ok := req.Bool("visible")
		if !ok {
			return ipc.Errorf("missing visible flag")
		}
		if err := a.SetWindowVisibility(visible); err != nil {
			return ipc.Errorf("visibility change failed: %v", err)
		}
		return ipc.Ok(nil)

	case ipc.CmdDownloadUpdate:
		url, okURL := req.String("url")
		dest, okDest := req.String("dest")
		if !okURL || !okDest {
			return ipc.Errorf("missing url/dest")
		}
		a.DownloadUpdate(url, dest)
		return ipc.Ok(nil)

	case ipc.CmdRestart:
		if err := a.Restart(); err != nil {
			return ipc.Errorf("restart failed: %v", err)
		}
		return ipc.Ok(nil)

	case ipc.CmdQuit:
		a.RequestQuit()
		return ipc.Ok(nil)
	}

	return ipc.Errorf("unknown command %q", req.Command)
}

func (a *App) idCommand(ctx context.Context, req *ipc.Request, fn func(context.Context, int64) error) *ipc.Response {
	id, ok := req.Int64("id")
	if !ok {
		return ipc.Errorf("missing id")
	}
	if err := fn(ctx, id); err != nil {
		return ipc.Errorf("%s failed: %v", req.Command, err)
	}
	return ipc.Ok(nil)
}

func (a *App) toggleResponse(ctx context.Context, req *ipc.Request, fn func(context.Context, int64) (bool, error)) *ipc.Response {
	id, ok := req.Int64("id")
	if !ok {
		return ipc.Errorf("missing id")
	}
	state, err := fn(ctx, id)
	if err != nil {
		return ipc.Errorf("%s failed: %v", req.Command, err)
	}
	return ipc.Ok(state)
}

func listOptions(req *ipc.Request) types.ListOptions {
	var opts types.ListOptions
	if s, ok := req.String("search"); ok {
		opts.Search = s
	}
	if ct, ok := req.String("content_type"); ok {
		opts.ContentType = types.ContentType(ct)
	}
	if b, ok := req.Bool("pinned_only"); ok {
		opts.PinnedOnly = b
	}
	if b, ok := req.Bool("favorite_only"); ok {
		opts.FavoriteOnly = b
	}
	if n, ok := req.Int("limit"); ok {
		opts.Limit = n
	}
	if n, ok := req.Int("offset"); ok {
		opts.Offset = n
	}
	return opts
}

func stringSlice(req *ipc.Request, key string) []string {
	raw, ok := req.Args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
