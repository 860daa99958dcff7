// Package cmd provides small utilities shared by atomicimage's subcommands.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Mainify wraps a non-standard Cobra entry point (one returning an error)
// and generates a standard Cobra entry point, so that entry points can rely
// on defer-based cleanup even when they terminate with an error.
func Mainify(entry func(*cobra.Command, []string) error) func(*cobra.Command, []string) {
	return func(command *cobra.Command, arguments []string) {
		if err := entry(command, arguments); err != nil {
			Fatal(err)
		}
	}
}

// Warning prints a warning message to standard error.
func Warning(message string) {
	fmt.Fprintln(color.Error, color.YellowString("Warning:"), message)
}

// Error prints an error message to standard error.
func Error(err error) {
	fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
}

// Fatal prints an error message to standard error and terminates the
// process with an error exit code.
func Fatal(err error) {
	Error(err)
	os.Exit(1)
}

// statusLineFormat truncates and pads messages to 80 columns so that a
// printed status line fully overwrites whatever was printed before it.
const statusLineFormat = "\r%-80.80s"

// StatusLinePrinter prints successive single-line progress updates in
// place, clearing on demand.
type StatusLinePrinter struct {
	// nonEmpty tracks whether the printer has printed anything non-empty since
	// the last Clear, so that BreakIfNonEmpty knows whether a trailing
	// newline is owed.
	nonEmpty bool
}

// Print prints message as the current status line.
func (p *StatusLinePrinter) Print(message string) {
	fmt.Printf(statusLineFormat, message)
	p.nonEmpty = message != ""
}

// Clear erases the current status line.
func (p *StatusLinePrinter) Clear() {
	fmt.Printf(statusLineFormat+"\r", "")
	p.nonEmpty = false
}

// BreakIfNonEmpty prints a trailing newline if the last printed status line
// was non-empty, so that subsequent output doesn't overwrite it.
func (p *StatusLinePrinter) BreakIfNonEmpty() {
	if p.nonEmpty {
		fmt.Println()
	}
}
