// Package units provides binary size multipliers and human-readable size
// parsing for capacity hints.
package units

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// Binary size multipliers.
const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
)

// ErrSizeOverflow is returned when a parsed size does not fit into an int.
var ErrSizeOverflow = errors.New("units: size overflows int")

// ParseBytes parses a size such as "64KiB", "4 MB" or "1024". An empty string
// parses as zero.
func ParseBytes(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", value, err)
	}

	if n > math.MaxInt {
		return 0, fmt.Errorf("%w: %q", ErrSizeOverflow, value)
	}

	return int(n), nil
}

// FormatBytes renders a byte count with IEC units, e.g. "64 KiB".
func FormatBytes(n int) string {
	if n < 0 {
		n = 0
	}

	return humanize.IBytes(uint64(n))
}
