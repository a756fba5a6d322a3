// Package corpus loads voice and background inventories and splits them into
// reproducible shards.
package corpus

import (
	"errors"
	"fmt"
)

// Mask markers. A mask such as "xoo" selects the first of three shards,
// "oxxx" selects shards two to four of four.
const (
	Include = 'x'
	Exclude = 'o'
)

var (
	ErrEmptyMask   = errors.New("empty partition mask")
	ErrInvalidMask = errors.New("invalid partition mask")
)

// ParseMask converts a mask string into per-position include flags.
func ParseMask(mask string) ([]bool, error) {
	if mask == "" {
		return nil, ErrEmptyMask
	}

	flags := make([]bool, 0, len(mask))
	for i, r := range mask {
		switch r {
		case Include:
			flags = append(flags, true)
		case Exclude:
			flags = append(flags, false)
		default:
			return nil, fmt.Errorf("%w: %q at position %d (want %c or %c)", ErrInvalidMask, r, i, Include, Exclude)
		}
	}

	return flags, nil
}

// ApplyMask returns the items whose position modulo the mask length lands on
// an include marker. Order is preserved.
func ApplyMask[T any](mask string, items []T) ([]T, error) {
	flags, err := ParseMask(mask)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(items)/len(flags)+1)
	for i, item := range items {
		if flags[i%len(flags)] {
			out = append(out, item)
		}
	}

	return out, nil
}
