package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/mutagen-io/atomicimage/pkg/configuration"
	cmdutil "github.com/mutagen-io/atomicimage/pkg/cmd"
	"github.com/mutagen-io/atomicimage/pkg/install"
)

// loadManifest loads the transaction manifest named by the command's sole
// positional argument.
func loadManifest(arguments []string) (*configuration.Manifest, error) {
	if len(arguments) != 1 {
		return nil, errors.New("expected a single manifest path argument")
	}
	return configuration.Load(arguments[0])
}

// saveFilelist persists a prepared filelist, tagged with the Installer's
// transaction ID, to the manifest's configured path, so that rollback or
// replay can reload it (and log its origin) after a crash.
func saveFilelist(path, transactionID string, filelist []*install.PlanEntry) error {
	doc := install.SerializeFilelistDocument(transactionID, filelist)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "unable to marshal filelist")
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(err, "unable to write filelist")
	}
	return nil
}

// loadFilelist reloads a filelist (and its originating transaction ID)
// previously persisted by saveFilelist.
func loadFilelist(path string) (string, []*install.PlanEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, errors.Wrap(err, "unable to read filelist")
	}
	var doc install.FilelistDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", nil, errors.Wrap(err, "unable to parse filelist")
	}
	transactionID, filelist := install.DeserializeFilelistDocument(doc)
	return transactionID, filelist, nil
}

// progressPrinter renders progress events to standard output, returning the
// callback to pass to Prepare alongside a finish function the caller must
// invoke afterward. Routine installs overwrite a single status line without
// flooding the terminal; a move or link is surfaced as its own permanent
// line, since both record a decision (a sidelined pre-existing entry, a
// symlink target) worth keeping in scrollback.
func progressPrinter() (install.ProgressFunc, func()) {
	status := &cmdutil.StatusLinePrinter{}
	callback := func(event install.ProgressEvent) {
		switch event.Action {
		case install.ProgressLink:
			status.Clear()
			fmt.Printf("%s %s -> %s\n", color.CyanString("link:"), event.Path, event.Detail)
		case install.ProgressMove:
			status.Clear()
			fmt.Printf("%s %s -> %s\n", color.YellowString("move:"), event.Path, event.Detail)
		default:
			status.Print(fmt.Sprintf("%s %s", color.GreenString("install:"), event.Path))
		}
	}
	return callback, status.BreakIfNonEmpty
}
