package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/elegantclip/elegantclip/internal/ipc"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the daemon's configuration",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigExportCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the config file and resolved paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("config file:  %s\n", paths.ConfigFile)
			fmt.Printf("data root:    %s\n", paths.Root)
			fmt.Printf("database:     %s\n", paths.DBFile)
			fmt.Printf("images:       %s\n", paths.ImagesDir)
			fmt.Printf("icons:        %s\n", paths.IconsDir)
			fmt.Printf("socket:       %s\n", paths.SocketFile)
			fmt.Printf("log to file:  %v\n", cfg.LogToFile)
			fmt.Printf("run as admin: %v\n", cfg.RunAsAdmin)
			return nil
		},
	}
}

func newConfigExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export effective configuration as YAML",
		Long: `Export a YAML snapshot of the config file, the resolved paths, and
the daemon's settings table. The settings are fetched from the running
daemon; without one only the local parts are exported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var settings map[string]string
			if data, err := request(ipc.CmdGetSettings, nil); err == nil {
				if err := decodeData(data, &settings); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(os.Stderr, "daemon not reachable; exporting local config only")
			}
			return cfg.Export(os.Stdout, paths, settings)
		},
	}
}
