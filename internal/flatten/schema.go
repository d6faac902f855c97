package flatten

import "sort"

// Schema is the stable column layout of one flattening run: the fixed
// columns in source order, followed by the sorted union of every dynamic
// key observed in the corpus. A Schema is immutable once built.
type Schema struct {
	fixed   []string
	dynamic []string
}

// Columns returns the full header in schema order.
func (s *Schema) Columns() []string {
	cols := make([]string, 0, len(s.fixed)+len(s.dynamic))
	cols = append(cols, s.fixed...)
	cols = append(cols, s.dynamic...)
	return cols
}

// FixedColumns returns the fixed column names.
func (s *Schema) FixedColumns() []string { return s.fixed }

// DynamicColumns returns the inferred dynamic column names.
func (s *Schema) DynamicColumns() []string { return s.dynamic }

// Len returns the total column count.
func (s *Schema) Len() int { return len(s.fixed) + len(s.dynamic) }

// Project maps a normalized record onto the schema. The row has exactly
// one cell per column, in schema order; a dynamic key the record lacks
// projects to the null marker.
func (s *Schema) Project(rec NormalizedRecord) []Cell {
	row := make([]Cell, 0, s.Len())
	for _, c := range s.fixed {
		row = append(row, rec.Fixed[c])
	}
	for _, c := range s.dynamic {
		row = append(row, rec.Dynamic[c])
	}
	return row
}

// SchemaBuilder accumulates the dynamic-key union across a corpus. The
// union is commutative, so observation order never affects the result.
type SchemaBuilder struct {
	fixed []string
	keys  map[string]struct{}
}

// NewSchemaBuilder returns a builder for the given fixed columns.
func NewSchemaBuilder(fixedColumns []string) *SchemaBuilder {
	return &SchemaBuilder{
		fixed: append([]string(nil), fixedColumns...),
		keys:  make(map[string]struct{}),
	}
}

// Observe records the dynamic keys of one record.
func (b *SchemaBuilder) Observe(rec RawRecord) {
	for k := range rec.Dynamic {
		b.keys[k] = struct{}{}
	}
}

// ObserveKey records a single dynamic key.
func (b *SchemaBuilder) ObserveKey(k string) {
	b.keys[k] = struct{}{}
}

// Build returns the inferred schema. The dynamic columns are sorted and
// deduplicated, so two builds over the same record multiset are
// identical regardless of order. A dynamic key that equals a fixed
// column name is a SchemaCollisionError.
func (b *SchemaBuilder) Build() (*Schema, error) {
	fixedSet := make(map[string]struct{}, len(b.fixed))
	for _, c := range b.fixed {
		fixedSet[c] = struct{}{}
	}

	dynamic := make([]string, 0, len(b.keys))
	for k := range b.keys {
		if _, clash := fixedSet[k]; clash {
			return nil, &SchemaCollisionError{Key: k}
		}
		dynamic = append(dynamic, k)
	}
	sort.Strings(dynamic)

	return &Schema{fixed: b.fixed, dynamic: dynamic}, nil
}

// InferSchema computes the schema of a fully materialized record
// sequence. An empty sequence yields a schema with fixed columns only.
func InferSchema(records []RawRecord, fixedColumns []string) (*Schema, error) {
	b := NewSchemaBuilder(fixedColumns)
	for _, rec := range records {
		b.Observe(rec)
	}
	return b.Build()
}
