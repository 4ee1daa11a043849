package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elegantclip/elegantclip/internal/ipc"
	"github.com/elegantclip/elegantclip/internal/types"
)

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Control clipboard capture",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "pause",
			Short: "Suspend clipboard capture",
			RunE:  monitorRunE(ipc.CmdPauseMonitor),
		},
		&cobra.Command{
			Use:   "resume",
			Short: "Resume clipboard capture",
			RunE:  monitorRunE(ipc.CmdResumeMonitor),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show monitor state",
			RunE:  monitorRunE(ipc.CmdMonitorStatus),
		},
	)
	return cmd
}

func monitorRunE(command string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		data, err := request(command, nil)
		if err != nil {
			return err
		}
		var status types.MonitorStatus
		if err := decodeData(data, &status); err != nil {
			return err
		}
		switch {
		case !status.IsRunning:
			fmt.Println("monitor: stopped")
		case status.IsPaused:
			fmt.Println("monitor: paused")
		default:
			fmt.Println("monitor: capturing")
		}
		return nil
	}
}
