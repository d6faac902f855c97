// Package source provides record source adapters for the flattening
// engine: GPX workout-route files and Apple Health export.xml queries.
package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/trailpack-labs/healthcsv/internal/flatten"
)

// GPX fixed columns, in output order.
const (
	colFilename  = "filename"
	colLatitude  = "latitude"
	colLongitude = "longitude"
	colElevation = "elevation"
	colTime      = "time"
)

// GPXSource yields one unit per GPX file matching a glob pattern. Files
// are parsed concurrently but units are always delivered in glob order,
// so the output never depends on the degree of parallelism.
type GPXSource struct {
	pattern string
	workers int
}

// NewGPXSource creates a source over all files matching pattern.
// workers bounds concurrent file parsing; <=0 means one per CPU.
func NewGPXSource(pattern string, workers int) *GPXSource {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &GPXSource{pattern: pattern, workers: workers}
}

// Fields implements flatten.Source. Latitude and longitude are required:
// a trackpoint without parsable coordinates is discarded.
func (s *GPXSource) Fields() []flatten.FieldSpec {
	return []flatten.FieldSpec{
		{Name: colFilename, Kind: flatten.FieldText},
		{Name: colLatitude, Kind: flatten.FieldNumber, Required: true},
		{Name: colLongitude, Kind: flatten.FieldNumber, Required: true},
		{Name: colElevation, Kind: flatten.FieldNumber},
		{Name: colTime, Kind: flatten.FieldTime},
	}
}

// ForEachUnit implements flatten.Source.
func (s *GPXSource) ForEachUnit(ctx context.Context, fn func(flatten.Unit) error) error {
	files, err := filepath.Glob(s.pattern)
	if err != nil {
		return fmt.Errorf("invalid glob pattern %q: %w", s.pattern, err)
	}
	sort.Strings(files)

	units := make([]flatten.Unit, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			name := filepath.Base(path)
			records, err := parseGPXFile(path, name)
			units[i] = flatten.Unit{
				ID:  name,
				Err: err,
				Each: func(fn func(flatten.RawRecord) error) error {
					for _, rec := range records {
						if err := fn(rec); err != nil {
							return err
						}
					}
					return nil
				},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
	}
	return nil
}

type gpxDoc struct {
	XMLName xml.Name   `xml:"gpx"`
	Points  []gpxPoint `xml:"trk>trkseg>trkpt"`
}

type gpxPoint struct {
	Lat        string         `xml:"lat,attr"`
	Lon        string         `xml:"lon,attr"`
	Ele        *string        `xml:"ele"`
	Time       *string        `xml:"time"`
	Extensions *gpxExtensions `xml:"extensions"`
}

type gpxExtensions struct {
	Children []gpxExtension `xml:",any"`
}

type gpxExtension struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// parseGPXFile extracts one RawRecord per trackpoint. Extension elements
// become the dynamic bag, keyed by namespace-stripped tag name.
func parseGPXFile(path, unit string) ([]flatten.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc gpxDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	records := make([]flatten.RawRecord, 0, len(doc.Points))
	for _, pt := range doc.Points {
		rec := flatten.RawRecord{
			Unit:    unit,
			Fixed:   map[string]string{colFilename: unit},
			Dynamic: map[string]string{},
		}
		if pt.Lat != "" {
			rec.Fixed[colLatitude] = pt.Lat
		}
		if pt.Lon != "" {
			rec.Fixed[colLongitude] = pt.Lon
		}
		if pt.Ele != nil {
			rec.Fixed[colElevation] = strings.TrimSpace(*pt.Ele)
		}
		if pt.Time != nil {
			rec.Fixed[colTime] = strings.TrimSpace(*pt.Time)
		}
		if pt.Extensions != nil {
			for _, ext := range pt.Extensions.Children {
				rec.Dynamic[ext.XMLName.Local] = strings.TrimSpace(ext.Value)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
