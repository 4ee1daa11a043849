package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/elegantclip/elegantclip/internal/ipc"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream daemon events to stdout",
		Long: `Stream daemon events (clipboard-updated, window-shown, …) as JSON
lines until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, cancel, err := ipc.Subscribe(paths.SocketFile)
			if err != nil {
				return err
			}
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			enc := json.NewEncoder(os.Stdout)
			for {
				select {
				case ev, ok := <-ch:
					if !ok {
						return fmt.Errorf("event stream closed by daemon")
					}
					if err := enc.Encode(ev); err != nil {
						return err
					}
				case <-sigCh:
					return nil
				}
			}
		},
	}
}
