// Package barrier holds the static price zones the sniper watches.
package barrier

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BARRIER SET - Fixed support/resistance zones
// ═══════════════════════════════════════════════════════════════════════════════
//
// A Set is built once at startup and never mutated. Lookups:
//   NearestResistance  closest zone entirely above price
//   NearestSupport     closest zone entirely below price
//   Containing         zone price currently sits in
//
// ═══════════════════════════════════════════════════════════════════════════════

var (
	ErrEmpty        = errors.New("barrier set is empty")
	ErrInvalidRange = errors.New("invalid barrier range")
	ErrOverlap      = errors.New("barrier ranges overlap")
)

// Range is a price zone. Two ranges with equal bounds are the same range.
type Range struct {
	Lower decimal.Decimal
	Upper decimal.Decimal
}

// NewRange builds a range from float bounds
func NewRange(lower, upper float64) Range {
	return Range{
		Lower: decimal.NewFromFloat(lower),
		Upper: decimal.NewFromFloat(upper),
	}
}

// Equal compares by value
func (r Range) Equal(o Range) bool {
	return r.Lower.Equal(o.Lower) && r.Upper.Equal(o.Upper)
}

// Contains reports Lower <= price <= Upper
func (r Range) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(r.Lower) && price.LessThanOrEqual(r.Upper)
}

// Width returns Upper - Lower
func (r Range) Width() decimal.Decimal {
	return r.Upper.Sub(r.Lower)
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Lower.StringFixed(3), r.Upper.StringFixed(3))
}

func (r Range) validate() error {
	if !r.Lower.IsPositive() || !r.Upper.IsPositive() {
		return fmt.Errorf("%w: %s has a non-positive bound", ErrInvalidRange, r)
	}
	if r.Lower.GreaterThanOrEqual(r.Upper) {
		return fmt.Errorf("%w: lower %s must be below upper %s",
			ErrInvalidRange, r.Lower.StringFixed(3), r.Upper.StringFixed(3))
	}
	return nil
}

// Same reports whether two optional ranges are the same by value
func Same(a, b *Range) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Set is an immutable collection of disjoint ranges ordered by descending lower bound.
type Set struct {
	ranges []Range
}

// NewSet validates and sorts the configured ranges.
func NewSet(ranges ...Range) (*Set, error) {
	if len(ranges) == 0 {
		return nil, ErrEmpty
	}

	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	for _, r := range sorted {
		if err := r.validate(); err != nil {
			return nil, err
		}
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Lower.GreaterThan(sorted[j].Lower)
	})

	// Sorted descending: each range must sit strictly above the next one
	for i := 0; i+1 < len(sorted); i++ {
		hi, lo := sorted[i], sorted[i+1]
		if hi.Lower.LessThanOrEqual(lo.Upper) {
			return nil, fmt.Errorf("%w: %s and %s", ErrOverlap, hi, lo)
		}
	}

	return &Set{ranges: sorted}, nil
}

// MustSet is NewSet for static tables known to be valid.
func MustSet(ranges ...Range) *Set {
	s, err := NewSet(ranges...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of ranges
func (s *Set) Len() int {
	return len(s.ranges)
}

// Ranges returns a copy in table order (highest first)
func (s *Set) Ranges() []Range {
	out := make([]Range, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// NearestResistance returns the range with the smallest lower bound above price.
func (s *Set) NearestResistance(price decimal.Decimal) *Range {
	var best *Range
	for i := range s.ranges {
		r := &s.ranges[i]
		if !r.Lower.GreaterThan(price) {
			continue
		}
		if best == nil || r.Lower.LessThan(best.Lower) {
			best = r
		}
	}
	return copyRange(best)
}

// NearestSupport returns the range with the largest lower bound among ranges below price.
func (s *Set) NearestSupport(price decimal.Decimal) *Range {
	var best *Range
	for i := range s.ranges {
		r := &s.ranges[i]
		if !r.Upper.LessThan(price) {
			continue
		}
		if best == nil || r.Lower.GreaterThan(best.Lower) {
			best = r
		}
	}
	return copyRange(best)
}

// Containing returns the range price sits in, if any.
func (s *Set) Containing(price decimal.Decimal) *Range {
	for i := range s.ranges {
		if s.ranges[i].Contains(price) {
			return copyRange(&s.ranges[i])
		}
	}
	return nil
}

func copyRange(r *Range) *Range {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
