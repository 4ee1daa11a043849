package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/elegantclip/elegantclip/internal/ipc"
	"github.com/elegantclip/elegantclip/internal/types"
	"github.com/elegantclip/elegantclip/pkg/format"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and manage clipboard history",
		Long: `Browse and manage clipboard history:
list, inspect and delete entries, pin or favorite them, and reorder.`,
	}
	cmd.AddCommand(
		newHistoryListCmd(),
		newHistoryShowCmd(),
		newHistoryDeleteCmd(),
		newHistoryClearCmd(),
		newHistoryPinCmd(),
		newHistoryFavoriteCmd(),
		newHistoryMoveCmd(),
		newHistoryEditCmd(),
	)
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var (
		limit      int
		offset     int
		search     string
		typeFilter string
		pinned     bool
		favorites  bool
		compact    bool
		noColors   bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clipboard history",
		Long: `List clipboard history entries in display order: pinned first, then
manual order, newest first.

Examples:
  elegantclip history list                 # last 10 entries
  elegantclip history list -n 20           # last 20 entries
  elegantclip history list --search todo   # substring search
  elegantclip history list --type image    # only images
  elegantclip history list --pinned        # only pinned entries`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reqArgs := map[string]interface{}{
				"limit":  limit,
				"offset": offset,
			}
			if search != "" {
				reqArgs["search"] = search
			}
			if typeFilter != "" {
				reqArgs["content_type"] = typeFilter
			}
			if pinned {
				reqArgs["pinned_only"] = true
			}
			if favorites {
				reqArgs["favorite_only"] = true
			}

			data, err := request(ipc.CmdList, reqArgs)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(data)
			}

			var items []*types.ClipboardItem
			if err := decodeData(data, &items); err != nil {
				return err
			}
			opts := format.DefaultOptions()
			if compact {
				opts = format.CompactOptions()
			}
			if noColors {
				opts.UseColors = false
			}
			fmt.Println(format.ItemList(items, opts))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of entries to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset")
	cmd.Flags().StringVarP(&search, "search", "s", "", "substring to search for")
	cmd.Flags().StringVarP(&typeFilter, "type", "t", "", "filter by content type (text, image, html, rtf, files)")
	cmd.Flags().BoolVar(&pinned, "pinned", false, "only pinned entries")
	cmd.Flags().BoolVar(&favorites, "favorites", false, "only favorite entries")
	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "one line per entry")
	cmd.Flags().BoolVar(&noColors, "no-colors", false, "disable colored output")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	var (
		raw    bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			data, err := request(ipc.CmdGetByID, map[string]interface{}{"id": id})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(data)
			}

			var item types.ClipboardItem
			if err := decodeData(data, &item); err != nil {
				return err
			}
			if raw {
				fmt.Print(item.PlainText())
				return nil
			}
			opts := format.DefaultOptions()
			opts.MaxWidth = 0
			fmt.Println(format.Item(&item, opts))
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print only the plain-text payload")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := request(ipc.CmdDelete, map[string]interface{}{"id": id}); err != nil {
				return err
			}
			fmt.Printf("deleted item %d\n", id)
			return nil
		},
	}
}

func newHistoryClearCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear history",
		Long: `Clear history. Without --all, pinned and favorited entries
are kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := ipc.CmdClearHistory
			if all {
				command = ipc.CmdClearAll
			}
			data, err := request(command, nil)
			if err != nil {
				return err
			}
			var deleted int64
			if err := decodeData(data, &deleted); err != nil {
				return err
			}
			fmt.Printf("removed %d items\n", deleted)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also remove pinned and favorited entries")
	return cmd
}

func newHistoryPinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin <id>",
		Short: "Toggle an entry's pinned flag",
		Args:  cobra.ExactArgs(1),
		RunE:  toggleRunE(ipc.CmdTogglePin, "pinned"),
	}
}

func newHistoryFavoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <id>",
		Short: "Toggle an entry's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE:  toggleRunE(ipc.CmdToggleFavorite, "favorite"),
	}
}

func toggleRunE(command, noun string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		data, err := request(command, map[string]interface{}{"id": id})
		if err != nil {
			return err
		}
		var state bool
		if err := decodeData(data, &state); err != nil {
			return err
		}
		if state {
			fmt.Printf("item %d is now %s\n", id, noun)
		} else {
			fmt.Printf("item %d is no longer %s\n", id, noun)
		}
		return nil
	}
}

func newHistoryMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <from-id> <to-id>",
		Short: "Swap the display positions of two entries",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseID(args[0])
			if err != nil {
				return err
			}
			to, err := parseID(args[1])
			if err != nil {
				return err
			}
			_, err = request(ipc.CmdMove, map[string]interface{}{"from": from, "to": to})
			return err
		},
	}
}

func newHistoryEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text>",
		Short: "Replace a text entry's content",
		Long: `Replace a text entry's content. An empty replacement deletes the
entry.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			text := ""
			if len(args) == 2 {
				text = args[1]
			}
			_, err = request(ipc.CmdUpdateTextContent, map[string]interface{}{"id": id, "text": text})
			return err
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", s)
	}
	return id, nil
}
