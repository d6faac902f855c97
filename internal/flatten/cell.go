package flatten

import (
	"strconv"
	"strings"
	"time"
)

// CellKind identifies the value stored in a Cell.
type CellKind int

const (
	// KindNull is the null marker. It is the zero value so a missing
	// column projects to null without special casing.
	KindNull CellKind = iota
	KindNumber
	KindText
	KindTime
)

// Cell is a single typed value in a flattened row.
type Cell struct {
	Kind CellKind
	Num  float64
	Text string
	Time time.Time
}

// NullCell returns the null marker.
func NullCell() Cell { return Cell{} }

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell { return Cell{Kind: KindNumber, Num: f} }

// TextCell returns a text cell.
func TextCell(s string) Cell { return Cell{Kind: KindText, Text: s} }

// TimeCell returns a timestamp cell.
func TimeCell(t time.Time) Cell { return Cell{Kind: KindTime, Time: t} }

// IsNull reports whether the cell is the null marker.
func (c Cell) IsNull() bool { return c.Kind == KindNull }

// String renders the cell for tabular output. Null renders as the empty
// field, numbers in locale-independent decimal form, timestamps as RFC 3339.
func (c Cell) String() string {
	switch c.Kind {
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case KindText:
		return c.Text
	case KindTime:
		return c.Time.Format(time.RFC3339)
	default:
		return ""
	}
}

// CoerceValue applies the numeric-detection rule to a raw textual value:
// a value is numeric when removing at most one decimal point leaves a
// non-empty string of digits. Anything else stays text; the empty string
// is null. Negative numbers and scientific notation stay text.
func CoerceValue(raw string) Cell {
	if raw == "" {
		return NullCell()
	}
	if isPlainNumber(raw) {
		f, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			return NumberCell(f)
		}
	}
	return TextCell(raw)
}

func isPlainNumber(s string) bool {
	if strings.Count(s, ".") > 1 {
		return false
	}
	digits := 0
	for _, r := range s {
		if r == '.' {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
		digits++
	}
	return digits > 0
}
