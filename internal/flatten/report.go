package flatten

import "fmt"

// UnitFailure records one skipped source unit and why.
type UnitFailure struct {
	Unit string
	Err  error
}

// Report accounts for every unit and record a run touched. It is always
// produced, so callers can tell the user what was skipped instead of
// silently dropping data.
type Report struct {
	UnitsOK        int
	UnitsSkipped   int
	RecordsOK      int
	RecordsSkipped int
	Columns        int
	Failures       []UnitFailure
}

func (r *Report) skipUnit(id string, err error) {
	r.UnitsSkipped++
	r.Failures = append(r.Failures, UnitFailure{Unit: id, Err: err})
}

// Summary returns a one-line human summary of the run.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d records from %d units across %d columns (%d units skipped, %d records skipped)",
		r.RecordsOK, r.UnitsOK, r.Columns, r.UnitsSkipped, r.RecordsSkipped)
}
