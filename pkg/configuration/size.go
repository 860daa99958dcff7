package configuration

import (
	"github.com/dustin/go-humanize"
)

// ByteSize is a uint64 value that supports unmarshalling from both
// human-friendly string representations ("10 MB") and numeric
// representations, used for reporting install footprint.
type ByteSize uint64

// UnmarshalText implements the text unmarshalling interface used when
// loading from YAML.
func (s *ByteSize) UnmarshalText(textBytes []byte) error {
	value, err := humanize.ParseBytes(string(textBytes))
	if err != nil {
		return err
	}
	*s = ByteSize(value)
	return nil
}

// String renders the size using humanize's SI (base-1000) formatting.
func (s ByteSize) String() string {
	return humanize.Bytes(uint64(s))
}
