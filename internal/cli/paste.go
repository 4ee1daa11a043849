package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elegantclip/elegantclip/internal/ipc"
)

func newCopyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <id>",
		Short: "Put a history entry back on the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			_, err = request(ipc.CmdCopyToClipboard, map[string]interface{}{"id": id})
			return err
		},
	}
}

func newPasteCmd() *cobra.Command {
	var (
		plain  bool
		asPath bool
		slot   int
		text   string
	)

	cmd := &cobra.Command{
		Use:   "paste [id]",
		Short: "Paste an entry into the focused application",
		Long: `Paste an entry into the focused application: the payload is written
to the clipboard and Ctrl+V is injected.

Examples:
  elegantclip paste 42            # paste entry 42 in its captured shape
  elegantclip paste 42 --plain    # paste its plain-text reading
  elegantclip paste 42 --as-path  # paste its on-disk path
  elegantclip paste --slot 3      # paste the third entry in display order
  elegantclip paste --text "hi"   # paste literal text`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case text != "":
				_, err := request(ipc.CmdPasteTextDirect, map[string]interface{}{"text": text})
				return err

			case slot > 0:
				_, err := request(ipc.CmdQuickPasteBySlot, map[string]interface{}{"slot": slot})
				return err

			case len(args) == 1:
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				command := ipc.CmdPasteContent
				if plain {
					command = ipc.CmdPasteContentAsPlain
				}
				if asPath {
					command = ipc.CmdPasteAsPath
				}
				_, err = request(command, map[string]interface{}{"id": id})
				return err
			}
			return fmt.Errorf("an item id, --slot or --text is required")
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "paste the plain-text reading")
	cmd.Flags().BoolVar(&asPath, "as-path", false, "paste the on-disk path instead of the content")
	cmd.Flags().IntVar(&slot, "slot", 0, "paste by display position, 1-9")
	cmd.Flags().StringVar(&text, "text", "", "paste literal text not taken from history")
	cmd.MarkFlagsMutuallyExclusive("plain", "as-path")
	return cmd
}
