package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elegantclip/elegantclip/internal/ipc"
)

func newWinVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "winv",
		Short: "Control the Win+V takeover",
		Long: `Control the Win+V takeover: when enabled, the built-in Windows
clipboard popup is disabled through the Explorer registry and the
overlay answers Super+V instead. Explorer is restarted to apply the
change.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Take over Win+V",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := request(ipc.CmdEnableWinV, nil)
				return err
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Restore the built-in Win+V popup",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := request(ipc.CmdDisableWinV, nil)
				return err
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the takeover state",
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := request(ipc.CmdIsWinV, nil)
				if err != nil {
					return err
				}
				var state struct {
					Enabled bool `json:"enabled"`
					Applied bool `json:"applied"`
				}
				if err := decodeData(data, &state); err != nil {
					return err
				}
				fmt.Printf("preference: %v\nregistry:   %v\n", state.Enabled, state.Applied)
				return nil
			},
		},
	)
	return cmd
}
