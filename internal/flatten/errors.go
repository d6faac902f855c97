package flatten

import "fmt"

// ParseError reports a source unit whose raw content is not valid. It is
// non-fatal: the driver skips the unit and continues.
type ParseError struct {
	Unit string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unit %s: parse failed: %v", e.Unit, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MalformedFieldError reports a record whose required fixed field could
// not be coerced. It is non-fatal: the driver skips the record.
type MalformedFieldError struct {
	Field string
	Value string
	Err   error
}

func (e *MalformedFieldError) Error() string {
	return fmt.Sprintf("field %s: cannot coerce %q: %v", e.Field, e.Value, e.Err)
}

func (e *MalformedFieldError) Unwrap() error { return e.Err }

// SchemaCollisionError reports a dynamic key that equals a fixed column
// name. It is fatal: the ambiguous schema cannot be safely flattened.
type SchemaCollisionError struct {
	Key string
}

func (e *SchemaCollisionError) Error() string {
	return fmt.Sprintf("dynamic key %q collides with a fixed column", e.Key)
}

// EmptyCorpusError reports a run that discovered no source units, or no
// records at all. It is fatal.
type EmptyCorpusError struct {
	Reason string
}

func (e *EmptyCorpusError) Error() string {
	return fmt.Sprintf("empty corpus: %s", e.Reason)
}
