package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	cmdutil "github.com/mutagen-io/atomicimage/pkg/cmd"
	"github.com/mutagen-io/atomicimage/pkg/install"
)

func prepareMain(command *cobra.Command, arguments []string) error {
	manifest, err := loadManifest(arguments)
	if err != nil {
		return errors.Wrap(err, "unable to load manifest")
	}
	if manifest.Filelist == "" {
		return errors.New("manifest missing required field: filelist")
	}

	allowed, err := install.NewCollisionAllowance(manifest.AllowedCollisions)
	if err != nil {
		return errors.Wrap(err, "invalid collision allowance")
	}

	installer := install.New(manifest.Image, manifest.Root, allowed)

	report, plan, err := installer.Check()
	if err != nil {
		return errors.Wrap(err, "check failed")
	}
	if !report.Empty() {
		return errors.New("check found problems; run check for details")
	}

	callback, finish := progressPrinter()
	filelist, err := installer.Prepare(callback)
	finish()
	if err != nil {
		return errors.Wrap(err, "prepare failed")
	}

	if err := saveFilelist(manifest.Filelist, installer.TransactionID(), filelist); err != nil {
		return errors.Wrap(err, "unable to persist filelist")
	}

	fmt.Printf("prepare: transaction %s, %d entries shadowed, %d scheduled\n", installer.TransactionID(), len(filelist), plan.Len())
	return nil
}

var prepareCommand = &cobra.Command{
	Use:   "prepare <manifest>",
	Short: "Materialize shadow copies for every scheduled entry",
	Args:  cobra.ExactArgs(1),
	Run:   cmdutil.Mainify(prepareMain),
}
