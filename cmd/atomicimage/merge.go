package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	cmdutil "github.com/mutagen-io/atomicimage/pkg/cmd"
	"github.com/mutagen-io/atomicimage/pkg/install"
)

func mergeMain(command *cobra.Command, arguments []string) error {
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

	// Executing a freshly prepared filelist is the degenerate case of
	// replay: every entry's source (a shadow, or for a stray entry the
	// pre-existing destination) still exists, so every rename is issued
	// exactly once. Reusing replay here
	// means a crash partway through a merge and a crash before one starts
	// are recovered by the same code path.
	if err := install.Replay(filelist); err != nil {
		return errors.Wrap(err, "merge failed")
	}

	var moved int
	for _, e := range filelist {
		if e.IsSynthetic() {
			moved++
		}
	}
	fmt.Printf("merge: transaction %s, %d renames applied, %d pre-existing entries sidelined\n", transactionID, len(filelist), moved)
	return nil
}

var mergeCommand = &cobra.Command{
	Use:   "merge <manifest>",
	Short: "Execute the prepared filelist's renames",
	Args:  cobra.ExactArgs(1),
	Run:   cmdutil.Mainify(mergeMain),
}
