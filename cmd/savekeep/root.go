package main

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/savekeep/internal/version"
	"github.com/arthur-debert/savekeep/pkg/config"
	"github.com/arthur-debert/savekeep/pkg/errors"
	"github.com/arthur-debert/savekeep/pkg/logging"
	"github.com/arthur-debert/savekeep/pkg/migrate"
	"github.com/arthur-debert/savekeep/pkg/ui"
	"github.com/arthur-debert/savekeep/pkg/ui/chooser"
)

var (
	verbosity int
	cfgFile   string

	rootCmd = &cobra.Command{
		Use:   "savekeep [system [pid]]",
		Short: "Durable SaveRAM persistence for BizHawk installations",
		Long: `savekeep keeps emulator save data in a canonical, user-controlled
directory and points the emulator-visible SaveRAM location at it via a
symlink, so saves survive emulator reinstalls and updates.

With no arguments every system directory that needs repair is migrated.
With a system name only that directory is migrated and the emulator is
relaunched afterward. An optional second argument is the emulator's
last-known pid, terminated before any save file is touched.`,
		Args: cobra.MaximumNArgs(2),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE:          runMigration,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default is the launcher's settings under the XDG config dir)")

	rootCmd.AddCommand(versionCmd)
}

func runMigration(cmd *cobra.Command, args []string) error {
	var system string
	targetPID := 0

	if len(args) > 0 {
		system = args[0]
	}
	if len(args) > 1 {
		pid, err := strconv.Atoi(args[1])
		if err != nil || pid <= 0 {
			err = errors.Newf(errors.ErrInvalidPID, "invalid emulator pid argument: %s", args[1])
			ui.ReportError(err.Error())
			return err
		}
		targetPID = pid
	}

	settings, err := loadSettings()
	if err != nil {
		ui.ReportError(err.Error())
		return err
	}

	orch := migrate.New(migrate.Options{
		Settings: settings,
		Chooser:  chooser.New(),
	})

	// The orchestrator is the reporting boundary; errors coming back
	// here are already surfaced and only drive the exit status.
	if system != "" {
		return orch.MigrateOne(system, targetPID)
	}
	return orch.MigrateAll()
}

func loadSettings() (*config.Settings, error) {
	if cfgFile != "" {
		return config.LoadFrom(cfgFile)
	}
	return config.Load()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("savekeep version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}
