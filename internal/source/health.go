package source

import (
	"context"
	"encoding/xml"
	"io"
	"os"
	"sort"

	"github.com/trailpack-labs/healthcsv/internal/flatten"
)

// Health record fixed columns, in output order. Apple writes every
// attribute as text; none are required.
const (
	colStartDate  = "startDate"
	colValue      = "value"
	colUnit       = "unit"
	colSourceName = "sourceName"
)

// HealthSource yields a single unit: all records of one type from an
// Apple Health export.xml. The export can be very large, so records are
// scanned with a streaming decoder and the unit can be re-scanned for
// the driver's two-pass strategy.
type HealthSource struct {
	path       string
	recordType string
}

// NewHealthSource creates a source over the export at path, restricted
// to records of recordType.
func NewHealthSource(path, recordType string) *HealthSource {
	return &HealthSource{path: path, recordType: recordType}
}

// Fields implements flatten.Source.
func (s *HealthSource) Fields() []flatten.FieldSpec {
	return []flatten.FieldSpec{
		{Name: colStartDate, Kind: flatten.FieldText},
		{Name: colValue, Kind: flatten.FieldText},
		{Name: colUnit, Kind: flatten.FieldText},
		{Name: colSourceName, Kind: flatten.FieldText},
	}
}

// ForEachUnit implements flatten.Source. The unit's Each re-opens the
// export on every call.
func (s *HealthSource) ForEachUnit(ctx context.Context, fn func(flatten.Unit) error) error {
	u := flatten.Unit{
		ID: s.recordType,
		Each: func(fn func(flatten.RawRecord) error) error {
			return s.scan(ctx, fn)
		},
	}
	if _, err := os.Stat(s.path); err != nil {
		u.Err = err
		u.Each = nil
	}
	return fn(u)
}

type healthRecord struct {
	StartDate  string          `xml:"startDate,attr"`
	Value      string          `xml:"value,attr"`
	Unit       string          `xml:"unit,attr"`
	SourceName string          `xml:"sourceName,attr"`
	Metadata   []metadataEntry `xml:"MetadataEntry"`
}

type metadataEntry struct {
	Key   string `xml:"key,attr"`
	Value string `xml:"value,attr"`
}

// scan streams the export and invokes fn for every record of the
// requested type, in document order. Non-matching records are not
// skipped wholesale so records nested inside correlations are found.
func (s *HealthSource) scan(ctx context.Context, fn func(flatten.RawRecord) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Record" {
			continue
		}
		if attrValue(se, "type") != s.recordType {
			continue
		}

		var rec healthRecord
		if err := dec.DecodeElement(&rec, &se); err != nil {
			return err
		}

		raw := flatten.RawRecord{
			Unit: s.recordType,
			Fixed: map[string]string{
				colStartDate:  rec.StartDate,
				colValue:      rec.Value,
				colUnit:       rec.Unit,
				colSourceName: rec.SourceName,
			},
			Dynamic: make(map[string]string, len(rec.Metadata)),
		}
		for _, m := range rec.Metadata {
			raw.Dynamic[m.Key] = m.Value
		}
		if err := fn(raw); err != nil {
			return err
		}
	}
}

// TypeCount is one record type and how many records carry it.
type TypeCount struct {
	Type  string
	Count int
}

// ListTypes scans the export once and returns every record type present,
// sorted, with record counts.
func (s *HealthSource) ListTypes(ctx context.Context) ([]TypeCount, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	counts := make(map[string]int)
	dec := xml.NewDecoder(f)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Record" {
			continue
		}
		if t := attrValue(se, "type"); t != "" {
			counts[t]++
		}
	}

	types := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		types = append(types, TypeCount{Type: t, Count: n})
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Type < types[j].Type })
	return types, nil
}

func attrValue(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
