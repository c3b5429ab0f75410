// Package present orders and labels inventory records for display and
// names them for export.
package present

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/imgsweep/internal/aggregate"
)

// SortMode selects a display order. The inventory itself is never
// reordered; Sort works on a copy.
type SortMode string

const (
	SortOriginal SortMode = "original"
	SortSizeDesc SortMode = "size-desc"
	SortSizeAsc  SortMode = "size-asc"
	SortType     SortMode = "type"
)

// SortModes lists every valid mode.
var SortModes = []SortMode{SortOriginal, SortSizeDesc, SortSizeAsc, SortType}

// ErrUnknownSort is returned by ParseSortMode.
var ErrUnknownSort = errors.New("unknown sort mode")

// ParseSortMode validates s. The empty string means SortOriginal.
func ParseSortMode(s string) (SortMode, error) {
	if s == "" {
		return SortOriginal, nil
	}
	m := SortMode(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(SortModes, m) {
		return m, nil
	}
	return "", fmt.Errorf("%w %q (valid: original, size-desc, size-asc, type)", ErrUnknownSort, s)
}

// Area is width times height, zero when either is unknown.
func Area(r aggregate.Record) int {
	return r.Width * r.Height
}

// Sort returns a stably sorted copy of records. Ties keep discovery order.
// An unrecognised mode behaves like SortOriginal.
func Sort(records []aggregate.Record, mode SortMode) []aggregate.Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b aggregate.Record) int {
		return a.Index - b.Index
	})

	switch mode {
	case SortSizeDesc:
		slices.SortStableFunc(out, func(a, b aggregate.Record) int {
			return Area(b) - Area(a)
		})
	case SortSizeAsc:
		slices.SortStableFunc(out, func(a, b aggregate.Record) int {
			return Area(a) - Area(b)
		})
	case SortType:
		slices.SortStableFunc(out, func(a, b aggregate.Record) int {
			return strings.Compare(string(a.Category), string(b.Category))
		})
	}
	return out
}
