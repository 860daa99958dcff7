package install

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// CollisionAllowance represents the optional collision allow-list input. It
// is deliberately distinct from an empty set: a nil *CollisionAllowance
// means any collision with the existing root is fatal, while a non-nil
// value (even with zero patterns) permits only the paths it matches.
type CollisionAllowance struct {
	patterns []string
}

// NewCollisionAllowance builds a CollisionAllowance from a set of
// image-relative path patterns. Patterns may be literal relative paths or
// doublestar glob patterns (e.g. "etc/**", "*.conf"), matched against the
// image-relative path.
func NewCollisionAllowance(patterns []string) (*CollisionAllowance, error) {
	for _, pattern := range patterns {
		if _, err := doublestar.Match(pattern, "a"); err != nil {
			return nil, fmt.Errorf("invalid collision allowance pattern %q: %w", pattern, err)
		}
	}
	cloned := make([]string, len(patterns))
	copy(cloned, patterns)
	return &CollisionAllowance{patterns: cloned}, nil
}

// allows reports whether rel is permitted to collide with an existing
// destination entry.
func (c *CollisionAllowance) allows(rel string) bool {
	if c == nil {
		return false
	}
	for _, pattern := range c.patterns {
		if rel == pattern {
			return true
		}
		if match, _ := doublestar.Match(pattern, rel); match {
			return true
		}
	}
	return false
}
