package main

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdutil "github.com/mutagen-io/atomicimage/pkg/cmd"
)

func cleanupMain(command *cobra.Command, arguments []string) error {
	if _, err := loadManifest(arguments); err != nil {
		return err
	}
	// Post-install reattribution of sidelined files is an external
	// collaborator's responsibility; there's nothing left for the core to
	// do once every rename has landed.
	fmt.Println("cleanup: nothing to do")
	return nil
}

var cleanupCommand = &cobra.Command{
	Use:   "cleanup <manifest>",
	Short: "Mark a completed transaction as finished",
	Args:  cobra.ExactArgs(1),
	Run:   cmdutil.Mainify(cleanupMain),
}
