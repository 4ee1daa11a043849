package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elegantclip/elegantclip/internal/ipc"
)

func newQuitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quit",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := request(ipc.CmdQuit, nil)
			return err
		},
	}
}

func newRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := request(ipc.CmdRestart, nil)
			return err
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <url> <dest>",
		Short: "Ask the daemon to download an update package",
		Long: `Starts a background download in the daemon. Progress is published as
update-download-progress events; use "elegantclip watch" to follow them.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := request(ipc.CmdDownloadUpdate, map[string]interface{}{
				"url":  args[0],
				"dest": args[1],
			})
			if err != nil {
				return err
			}
			fmt.Println("download started")
			return nil
		},
	}
}
