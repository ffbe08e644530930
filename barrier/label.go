package barrier

import "github.com/shopspring/decimal"

// Label classifies a single range against the current price for table display.
type Label int

const (
	LabelNone Label = iota
	LabelResistance
	LabelSupport
	LabelInside
)

func (l Label) String() string {
	switch l {
	case LabelResistance:
		return "RESISTANCE"
	case LabelSupport:
		return "SUPPORT"
	case LabelInside:
		return "INSIDE"
	default:
		return ""
	}
}

// Row is one line of the barrier table
type Row struct {
	Range Range
	Label Label
}

// Classify labels every range in table order. Resistance wins over support,
// support over inside.
func (s *Set) Classify(price decimal.Decimal) []Row {
	res := s.NearestResistance(price)
	sup := s.NearestSupport(price)

	rows := make([]Row, 0, len(s.ranges))
	for _, r := range s.ranges {
		label := LabelNone
		switch {
		case res != nil && r.Equal(*res):
			label = LabelResistance
		case sup != nil && r.Equal(*sup):
			label = LabelSupport
		case r.Contains(price):
			label = LabelInside
		}
		rows = append(rows, Row{Range: r, Label: label})
	}
	return rows
}
