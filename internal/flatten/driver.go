package flatten

import (
	"context"
	"log/slog"
)

// Driver orchestrates one flattening run: it iterates the source's
// units, isolates per-unit failures, infers the schema, and projects
// every surviving record into the sink.
//
// Two strategies are provided. Materialize holds all normalized records
// in memory and suits many small units; Stream scans the source twice
// and emits rows without retaining them, trading an extra scan for
// bounded peak memory. Both produce byte-identical output for the same
// source.
type Driver struct {
	logger *slog.Logger
}

// NewDriver returns a driver logging skipped units and records to logger.
func NewDriver(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{logger: logger}
}

// Materialize ingests the whole corpus, infers the schema once, then
// projects and writes every record.
func (d *Driver) Materialize(ctx context.Context, src Source, sink Sink) (*Report, error) {
	norm := NewNormalizer(src.Fields())
	builder := NewSchemaBuilder(norm.FixedColumns())
	report := &Report{}

	var records []NormalizedRecord
	discovered := 0

	err := src.ForEachUnit(ctx, func(u Unit) error {
		discovered++
		unitRaws, err := d.collectUnit(u)
		if err != nil {
			d.logger.Warn("skipping unit", "unit", u.ID, "error", err)
			report.skipUnit(u.ID, err)
			return nil
		}

		n := 0
		for _, raw := range unitRaws {
			rec, err := norm.Normalize(raw)
			if err != nil {
				d.logger.Warn("skipping record", "unit", u.ID, "error", err)
				report.RecordsSkipped++
				continue
			}
			builder.Observe(raw)
			records = append(records, rec)
			n++
		}
		report.UnitsOK++
		report.RecordsOK += n
		return nil
	})
	if err != nil {
		return report, err
	}

	if err := d.checkCorpus(discovered, report.RecordsOK); err != nil {
		return report, err
	}

	schema, err := builder.Build()
	if err != nil {
		return report, err
	}
	report.Columns = schema.Len()

	if err := sink.WriteHeader(schema.Columns()); err != nil {
		return report, err
	}
	for _, rec := range records {
		if err := sink.WriteRow(schema.Project(rec)); err != nil {
			return report, err
		}
	}
	return report, sink.Flush()
}

// Stream runs two passes over the source: the first computes the
// dynamic-key union, the second projects and emits each row
// immediately. The full row set is never held in memory.
func (d *Driver) Stream(ctx context.Context, src Source, sink Sink) (*Report, error) {
	norm := NewNormalizer(src.Fields())
	builder := NewSchemaBuilder(norm.FixedColumns())
	report := &Report{}

	// Pass 1: dynamic keys only. Units that fail here are excluded from
	// pass 2 so a failure cannot surface after rows were emitted.
	failed := make(map[string]error)
	discovered := 0
	total := 0

	err := src.ForEachUnit(ctx, func(u Unit) error {
		discovered++
		if u.Err != nil {
			failed[u.ID] = &ParseError{Unit: u.ID, Err: u.Err}
			return nil
		}
		// Keys are committed only after the unit scans cleanly, so a
		// mid-stream failure cannot leak keys into the schema. The key
		// set is bounded; the records themselves are never retained.
		unitKeys := make(map[string]struct{})
		n := 0
		err := u.Each(func(raw RawRecord) error {
			if _, err := norm.Normalize(raw); err != nil {
				return nil
			}
			for k := range raw.Dynamic {
				unitKeys[k] = struct{}{}
			}
			n++
			return nil
		})
		if err != nil {
			failed[u.ID] = &ParseError{Unit: u.ID, Err: err}
			return nil
		}
		for k := range unitKeys {
			builder.ObserveKey(k)
		}
		total += n
		return nil
	})
	if err != nil {
		return report, err
	}

	if err := d.checkCorpus(discovered, total); err != nil {
		for id, uerr := range failed {
			report.skipUnit(id, uerr)
		}
		return report, err
	}

	schema, err := builder.Build()
	if err != nil {
		return report, err
	}
	report.Columns = schema.Len()

	if err := sink.WriteHeader(schema.Columns()); err != nil {
		return report, err
	}

	// Pass 2: normalize, project, emit.
	err = src.ForEachUnit(ctx, func(u Unit) error {
		if uerr, skip := failed[u.ID]; skip {
			d.logger.Warn("skipping unit", "unit", u.ID, "error", uerr)
			report.skipUnit(u.ID, uerr)
			return nil
		}
		n := 0
		err := u.Each(func(raw RawRecord) error {
			rec, err := norm.Normalize(raw)
			if err != nil {
				d.logger.Warn("skipping record", "unit", u.ID, "error", err)
				report.RecordsSkipped++
				return nil
			}
			if err := sink.WriteRow(schema.Project(rec)); err != nil {
				return err
			}
			n++
			return nil
		})
		if err != nil {
			return err
		}
		report.UnitsOK++
		report.RecordsOK += n
		return nil
	})
	if err != nil {
		return report, err
	}
	return report, sink.Flush()
}

// collectUnit materializes a unit's records, surfacing both up-front and
// mid-stream parse failures as a single ParseError so the unit is
// excluded whole, never half-ingested.
func (d *Driver) collectUnit(u Unit) ([]RawRecord, error) {
	if u.Err != nil {
		return nil, &ParseError{Unit: u.ID, Err: u.Err}
	}
	var raws []RawRecord
	err := u.Each(func(raw RawRecord) error {
		raws = append(raws, raw)
		return nil
	})
	if err != nil {
		return nil, &ParseError{Unit: u.ID, Err: err}
	}
	return raws, nil
}

func (d *Driver) checkCorpus(units, records int) error {
	if units == 0 {
		return &EmptyCorpusError{Reason: "no source units discovered"}
	}
	if records == 0 {
		return &EmptyCorpusError{Reason: "no records produced by any unit"}
	}
	return nil
}
