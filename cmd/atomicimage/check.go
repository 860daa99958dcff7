package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	cmdutil "github.com/mutagen-io/atomicimage/pkg/cmd"
	"github.com/mutagen-io/atomicimage/pkg/install"
)

func checkMain(command *cobra.Command, arguments []string) error {
	manifest, err := loadManifest(arguments)
	if err != nil {
		return errors.Wrap(err, "unable to load manifest")
	}

	allowed, err := install.NewCollisionAllowance(manifest.AllowedCollisions)
	if err != nil {
		return errors.Wrap(err, "invalid collision allowance")
	}

	report, plan, err := install.Check(manifest.Image, manifest.Root, allowed)
	if err != nil {
		return errors.Wrap(err, "check failed")
	}

	if report.Empty() {
		fmt.Printf("check: clean, %d entries scheduled\n", plan.Len())
		return nil
	}

	for _, category := range install.Categories() {
		for _, rel := range report.Paths(category) {
			cmdutil.Warning(fmt.Sprintf("%s: %s", category, rel))
		}
	}
	return errors.New("check found problems, see warnings above")
}

var checkCommand = &cobra.Command{
	Use:   "check <manifest>",
	Short: "Walk the image and report any problems with installing it",
	Args:  cobra.ExactArgs(1),
	Run:   cmdutil.Mainify(checkMain),
}
