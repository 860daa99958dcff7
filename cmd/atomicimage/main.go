package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/atomicimage/pkg/build"
	cmdutil "github.com/mutagen-io/atomicimage/pkg/cmd"
	"github.com/mutagen-io/atomicimage/pkg/logging"
)

func rootMain(command *cobra.Command, arguments []string) error {
	command.Help()
	return nil
}

var rootCommand = &cobra.Command{
	Use:   "atomicimage",
	Short: "atomicimage installs a staged image tree into a live root via atomic renames",
	Run:   cmdutil.Mainify(rootMain),
}

// logLevelFlag holds the raw --log-level value until PersistentPreRunE
// resolves and applies it.
var logLevelFlag string

func applyLogLevel(command *cobra.Command, arguments []string) error {
	if logLevelFlag == "" {
		return nil
	}
	level, ok := logging.NameToLevel(logLevelFlag)
	if !ok {
		return fmt.Errorf("invalid log level: %s", logLevelFlag)
	}
	logging.SetLevel(level)
	return nil
}

func init() {
	color.NoColor = !isatty.IsTerminal(os.Stdout.Fd())

	cobra.EnableCommandSorting = false

	rootCommand.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "set the log level (disabled, error, warn, info, debug, trace)")
	rootCommand.PersistentPreRunE = applyLogLevel

	rootCommand.AddCommand(
		checkCommand,
		prepareCommand,
		mergeCommand,
		cleanupCommand,
		rollbackCommand,
		replayCommand,
		versionCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}

// versionCommand prints the atomicimage version.
var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(command *cobra.Command, arguments []string) {
		fmt.Println(build.Version)
	},
}
