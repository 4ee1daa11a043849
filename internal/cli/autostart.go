package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elegantclip/elegantclip/internal/ipc"
)

func newAutostartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Control launch-at-login registration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Launch the daemon at login",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := request(ipc.CmdEnableAutostart, nil)
				return err
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Remove the login registration",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := request(ipc.CmdDisableAutostart, nil)
				return err
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the registration state",
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := request(ipc.CmdIsAutostart, nil)
				if err != nil {
					return err
				}
				var enabled bool
				if err := decodeData(data, &enabled); err != nil {
					return err
				}
				fmt.Printf("autostart: %v\n", enabled)
				return nil
			},
		},
	)
	return cmd
}
