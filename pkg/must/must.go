// Package must provides best-effort wrappers around operations whose
// failure should be logged rather than propagated: cleanup paths where the
// caller has already committed to continuing regardless of the outcome.
package must

import (
	"io"
	"os"

	"github.com/mutagen-io/atomicimage/pkg/logging"
)

// Close calls c.Close, logging (rather than returning) any error.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %s", err.Error())
	}
}

// OSRemove calls os.Remove, logging (rather than returning) any error.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil {
		logger.Warnf("unable to remove '%s': %s", name, err.Error())
	}
}

// RemoveAll calls os.RemoveAll, logging (rather than returning) any error.
// It's used during rollback, where a shadow that fails to remove shouldn't
// stop the rest of the shadows from being cleaned up.
func RemoveAll(path string, logger *logging.Logger) {
	if err := os.RemoveAll(path); err != nil {
		logger.Warnf("unable to remove '%s': %s", path, err.Error())
	}
}
