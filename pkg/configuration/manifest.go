// Package configuration loads the YAML manifest that drives the
// atomicimage CLI: the image/root pair an invocation operates on and the
// collision allow-list to pass through to the core.
package configuration

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk description of a single install transaction.
type Manifest struct {
	// Image is the absolute path to the staged image tree.
	Image string `yaml:"image"`
	// Root is the absolute path to the destination tree.
	Root string `yaml:"root"`
	// AllowedCollisions lists image-relative path patterns permitted to
	// collide with an existing destination entry.
	AllowedCollisions []string `yaml:"allowedCollisions,omitempty"`
	// Filelist is the path at which the prepared filelist should be
	// persisted, so that a crash between prepare and merge (or mid-merge)
	// can be recovered with rollback or replay.
	Filelist string `yaml:"filelist"`
}

// Load reads and strictly decodes a Manifest from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read manifest: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	manifest := &Manifest{}
	if err := decoder.Decode(manifest); err != nil {
		return nil, fmt.Errorf("unable to parse manifest: %w", err)
	}

	if manifest.Image == "" {
		return nil, fmt.Errorf("manifest missing required field: image")
	}
	if manifest.Root == "" {
		return nil, fmt.Errorf("manifest missing required field: root")
	}

	return manifest, nil
}
