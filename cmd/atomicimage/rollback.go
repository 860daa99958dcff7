package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	cmdutil "github.com/mutagen-io/atomicimage/pkg/cmd"
	"github.com/mutagen-io/atomicimage/pkg/install"
	"github.com/mutagen-io/atomicimage/pkg/logging"
)

func rollbackMain(command *cobra.Command, arguments []string) error {
	manifest, err := loadManifest(arguments)
	if err != nil {
		return errors.Wrap(err, "unable to load manifest")
	}
	if manifest.Filelist == "" {
		return errors.New("manifest missing required field: filelist")
	}

	transactionID, filelist, err := loadFilelist(manifest.Filelist)
	if err != nil {
		return errors.Wrap(err, "unable to load prepared filelist")
	}

	install.Rollback(filelist, logging.RootLogger.Sublogger("rollback"))
	fmt.Printf("rollback: transaction %s, shadows removed\n", transactionID)
	return nil
}

var rollbackCommand = &cobra.Command{
	Use:   "rollback <manifest>",
	Short: "Remove shadows created by a prepare that never reached merge",
	Args:  cobra.ExactArgs(1),
	Run:   cmdutil.Mainify(rollbackMain),
}
