package install

import "strings"

const (
	// mergingPrefix is the reserved basename prefix under which shadow
	// copies are materialized during prepare. The namespace it denotes is
	// owned exclusively by the core: it may remove anything found under a
	// "<parent>/.MERGING-*" path at any time.
	mergingPrefix = ".MERGING-"
	// strayPrefix is the reserved basename prefix under which
	// type-mismatched pre-existing destination entries are sidelined
	// during prepare. Unlike the merging namespace, stray entries are
	// preserved across phases and surfaced via the MoveList.
	strayPrefix = ".STRAY-"
)

// isReservedName reports whether a basename falls inside one of the core's
// reserved namespaces.
func isReservedName(base string) bool {
	return strings.HasPrefix(base, mergingPrefix) || strings.HasPrefix(base, strayPrefix)
}

// shadowName computes the ".MERGING-"-prefixed sibling basename for base.
func shadowName(base string) string {
	return mergingPrefix + base
}

// strayName computes the ".STRAY-"-prefixed sibling basename for base.
func strayName(base string) string {
	return strayPrefix + base
}
