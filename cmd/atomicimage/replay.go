package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	cmdutil "github.com/mutagen-io/atomicimage/pkg/cmd"
	"github.com/mutagen-io/atomicimage/pkg/install"
)

func replayMain(command *cobra.Command, arguments []string) error {
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

	if err := install.Replay(filelist); err != nil {
		return errors.Wrap(err, "replay failed")
	}

	fmt.Printf("replay: transaction %s, filelist reapplied\n", transactionID)
	return nil
}

var replayCommand = &cobra.Command{
	Use:   "replay <manifest>",
	Short: "Resume a merge that was interrupted partway through",
	Args:  cobra.ExactArgs(1),
	Run:   cmdutil.Mainify(replayMain),
}
