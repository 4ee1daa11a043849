// Package cli is the command-line surface. Running the binary with no
// subcommand starts the daemon in the foreground; every subcommand
// talks to an already-running daemon over its control socket.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/app"
	"github.com/elegantclip/elegantclip/internal/config"
	"github.com/elegantclip/elegantclip/internal/logging"
)

var (
	// Version information, set by main via SetVersionInfo.
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "none"

	// Persistent flags.
	logLevel string
	dataDir  string

	// Populated by PersistentPreRunE for every command.
	cfg    *config.Config
	paths  config.Paths
	logger *zap.Logger
)

// SetVersionInfo records the ldflags-injected build identifiers.
func SetVersionInfo(version, buildTime, commit string) {
	Version = version
	BuildTime = buildTime
	Commit = commit
}

var rootCmd = &cobra.Command{
	Use:   "elegantclip",
	Short: "ElegantClipboard is a clipboard history manager",
	Long: `ElegantClipboard captures every clipboard change, keeps a searchable
history with pinning and favorites, and pastes past entries back into
the focused application.

Running elegantclip without a subcommand starts the daemon in the
foreground. Subcommands talk to the running daemon.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if dataDir != "" {
			os.Setenv("ELEGANTCLIP_DATA_DIR", dataDir)
		}

		var err error
		cfg, err = config.Load("")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		paths, err = config.Resolve(cfg)
		if err != nil {
			return err
		}

		logger, err = logging.New(logging.Options{
			Level:    logLevel,
			ToFile:   cfg.LogToFile,
			FilePath: paths.LogFile,
		})
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func runDaemon() error {
	logger.Info("starting daemon",
		zap.String("version", Version),
		zap.String("commit", Commit))
	return app.Run(app.Options{
		Config: cfg,
		Paths:  paths,
		Logger: logger,
	})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override the data root directory")

	rootCmd.AddCommand(
		newHistoryCmd(),
		newCopyCmd(),
		newPasteCmd(),
		newMonitorCmd(),
		newSettingsCmd(),
		newConfigCmd(),
		newDBCmd(),
		newWinVCmd(),
		newAutostartCmd(),
		newWatchCmd(),
		newUpdateCmd(),
		newRestartCmd(),
		newQuitCmd(),
		newVersionCmd(),
	)
}

// Execute runs the root command, exiting non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
