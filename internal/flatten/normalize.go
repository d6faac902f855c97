package flatten

import (
	"strconv"
	"time"
)

// FieldKind is the declared semantic type of a fixed field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldNumber
	FieldTime
)

// FieldSpec declares one fixed field of a source kind.
type FieldSpec struct {
	Name string
	Kind FieldKind
	// Required marks fields whose coercion failure discards the record
	// (e.g. latitude/longitude). An absent required field is also a
	// malformed record.
	Required bool
}

// Normalizer splits raw records into coerced fixed fields and a coerced
// dynamic bag. It holds no mutable state; Normalize is pure.
type Normalizer struct {
	fields []FieldSpec
}

// NewNormalizer returns a Normalizer for the given fixed-field layout.
func NewNormalizer(fields []FieldSpec) *Normalizer {
	return &Normalizer{fields: fields}
}

// FixedColumns returns the fixed column names in source order.
func (n *Normalizer) FixedColumns() []string {
	cols := make([]string, len(n.fields))
	for i, f := range n.fields {
		cols[i] = f.Name
	}
	return cols
}

// Normalize coerces a raw record. A required field that is absent or
// unparsable yields a MalformedFieldError; an optional absent field
// yields a null cell. Optional fields that fail coercion degrade to
// text rather than discarding the record.
func (n *Normalizer) Normalize(rec RawRecord) (NormalizedRecord, error) {
	out := NormalizedRecord{
		Unit:    rec.Unit,
		Fixed:   make(map[string]Cell, len(n.fields)),
		Dynamic: make(map[string]Cell, len(rec.Dynamic)),
	}

	for _, f := range n.fields {
		raw, ok := rec.Fixed[f.Name]
		if !ok {
			if f.Required {
				return NormalizedRecord{}, &MalformedFieldError{Field: f.Name, Err: errMissing}
			}
			out.Fixed[f.Name] = NullCell()
			continue
		}
		cell, err := coerceFixed(raw, f.Kind)
		if err != nil {
			if f.Required {
				return NormalizedRecord{}, &MalformedFieldError{Field: f.Name, Value: raw, Err: err}
			}
			cell = TextCell(raw)
		}
		out.Fixed[f.Name] = cell
	}

	for k, v := range rec.Dynamic {
		out.Dynamic[k] = CoerceValue(v)
	}

	return out, nil
}

var errMissing = missingError{}

type missingError struct{}

func (missingError) Error() string { return "field missing" }

func coerceFixed(raw string, kind FieldKind) (Cell, error) {
	if raw == "" {
		return NullCell(), nil
	}
	switch kind {
	case FieldNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Cell{}, err
		}
		return NumberCell(f), nil
	case FieldTime:
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Cell{}, err
		}
		return TimeCell(t), nil
	default:
		return TextCell(raw), nil
	}
}
