// Package flatten implements the dynamic-schema flattening engine: it
// discovers a single stable column schema from a corpus of records whose
// optional-field sets vary per record, then projects every record onto
// that schema.
package flatten

import "context"

// RawRecord is one record as read from a source, before coercion.
// Map presence distinguishes an absent field from a present-but-empty one.
type RawRecord struct {
	// Unit identifies the source unit the record came from.
	Unit string
	// Fixed holds the declared fields; keys are the same for every
	// record of a source kind.
	Fixed map[string]string
	// Dynamic holds the per-record attribute bag; keys are discovered,
	// not predeclared.
	Dynamic map[string]string
}

// NormalizedRecord is a RawRecord after type coercion.
type NormalizedRecord struct {
	Unit    string
	Fixed   map[string]Cell
	Dynamic map[string]Cell
}

// Unit is one logical source unit: a parsed file, or one record-type
// query. A unit either failed to parse (Err set) or can stream its
// records via Each. Each may be invoked more than once; every invocation
// re-reads the unit in source order.
type Unit struct {
	ID   string
	Err  error
	Each func(fn func(RawRecord) error) error
}

// Source yields a sequence of units. ForEachUnit may be called multiple
// times and must deliver the same units in the same order each time.
type Source interface {
	// Fields describes the fixed columns in source order.
	Fields() []FieldSpec
	ForEachUnit(ctx context.Context, fn func(Unit) error) error
}

// Sink receives the flattened table. WriteHeader is called exactly once,
// before any row.
type Sink interface {
	WriteHeader(columns []string) error
	WriteRow(row []Cell) error
	Flush() error
}
