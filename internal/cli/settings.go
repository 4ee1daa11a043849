package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/elegantclip/elegantclip/internal/ipc"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write daemon settings",
	}
	cmd.AddCommand(
		newSettingsListCmd(),
		newSettingsGetCmd(),
		newSettingsSetCmd(),
		newSettingsShortcutCmd(),
	)
	return cmd
}

func newSettingsListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show every setting",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := request(ipc.CmdGetSettings, nil)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(data)
			}
			var settings map[string]string
			if err := decodeData(data, &settings); err != nil {
				return err
			}
			keys := make([]string, 0, len(settings))
			for k := range settings {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%s = %s\n", k, settings[k])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := request(ipc.CmdGetSetting, map[string]interface{}{"key": args[0]})
			if err != nil {
				return err
			}
			var value string
			if err := decodeData(data, &value); err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := request(ipc.CmdSetSetting, map[string]interface{}{
				"key":   args[0],
				"value": args[1],
			})
			return err
		},
	}
}

func newSettingsShortcutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shortcut <chord>",
		Short: "Change the overlay toggle shortcut",
		Long: `Change the overlay toggle shortcut, e.g. "Alt+C" or
"Ctrl+Shift+V". While the Win+V takeover is active the effective
binding stays Super+V; the stored chord applies once the takeover is
disabled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := request(ipc.CmdUpdateShortcut, map[string]interface{}{"shortcut": args[0]})
			return err
		},
	}
}
