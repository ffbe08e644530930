package barrier

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultRanges are the 1H gold barrier zones the sniper ships with.
func DefaultRanges() []Range {
	return []Range{
		NewRange(4551, 4570),
		NewRange(4380, 4400),
		NewRange(4253, 4273),
		NewRange(3980, 4000),
		NewRange(3871, 3891),
		NewRange(3651, 3671),
	}
}

// ParseRanges parses "4551-4570,4380-4400" (whitespace and ';' also separate entries).
func ParseRanges(spec string) ([]Range, error) {
	fields := strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, ErrEmpty
	}

	ranges := make([]Range, 0, len(fields))
	for _, f := range fields {
		r, err := parseRange(f)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

func parseRange(s string) (Range, error) {
	// Bounds are positive so the first '-' after a digit is the separator
	idx := strings.Index(s, "-")
	if idx <= 0 || idx == len(s)-1 {
		return Range{}, fmt.Errorf("%w: %q is not lower-upper", ErrInvalidRange, s)
	}

	lower, err := decimal.NewFromString(s[:idx])
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q: %v", ErrInvalidRange, s, err)
	}
	upper, err := decimal.NewFromString(s[idx+1:])
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q: %v", ErrInvalidRange, s, err)
	}
	return Range{Lower: lower, Upper: upper}, nil
}
