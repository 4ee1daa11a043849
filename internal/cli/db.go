package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elegantclip/elegantclip/internal/ipc"
	"github.com/elegantclip/elegantclip/internal/types"
	"github.com/elegantclip/elegantclip/pkg/format"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "optimize",
			Short: "Run PRAGMA optimize",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := request(ipc.CmdOptimizeDB, nil)
				return err
			},
		},
		&cobra.Command{
			Use:   "vacuum",
			Short: "Rebuild the database file",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := request(ipc.CmdVacuumDB, nil)
				return err
			},
		},
		newDBStatsCmd(),
	)
	return cmd
}

func newDBStatsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show on-disk usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := request(ipc.CmdDataSize, nil)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(data)
			}
			var size types.DataSize
			if err := decodeData(data, &size); err != nil {
				return err
			}
			fmt.Printf("items:    %d\n", size.ItemCount)
			fmt.Printf("database: %s\n", format.Size(size.DatabaseBytes))
			fmt.Printf("images:   %s (%d files)\n", format.Size(size.ImageBytes), size.ImageCount)
			fmt.Printf("icons:    %s (%d files)\n", format.Size(size.IconBytes), size.IconCount)
			fmt.Printf("total:    %s\n", format.Size(size.TotalBytes))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
