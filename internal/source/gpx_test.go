package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailpack-labs/healthcsv/internal/flatten"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1" creator="Apple Health Export">
  <trk>
    <trkseg>
      <trkpt lat="52.5200" lon="13.4050">
        <ele>34.5</ele>
        <time>2023-04-02T09:30:00Z</time>
        <extensions>
          <speed>2.8</speed>
          <hAcc>3.1</hAcc>
        </extensions>
      </trkpt>
      <trkpt lat="52.5201" lon="13.4051">
        <time>2023-04-02T09:30:05Z</time>
      </trkpt>
    </trkseg>
  </trk>
</gpx>
`

const prefixedGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1">
  <trk>
    <trkseg>
      <trkpt lat="1.0" lon="2.0">
        <extensions>
          <gpxtpx:hr xmlns:gpxtpx="http://www.garmin.com/xmlschemas/TrackPointExtension/v1">120</gpxtpx:hr>
        </extensions>
      </trkpt>
    </trkseg>
  </trk>
</gpx>
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func collectUnits(t *testing.T, src flatten.Source) []flatten.Unit {
	t.Helper()
	var units []flatten.Unit
	err := src.ForEachUnit(context.Background(), func(u flatten.Unit) error {
		units = append(units, u)
		return nil
	})
	require.NoError(t, err)
	return units
}

func collectRecords(t *testing.T, u flatten.Unit) []flatten.RawRecord {
	t.Helper()
	require.NoError(t, u.Err)
	var recs []flatten.RawRecord
	require.NoError(t, u.Each(func(r flatten.RawRecord) error {
		recs = append(recs, r)
		return nil
	}))
	return recs
}

func TestGPXSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "route1.gpx", sampleGPX)
	writeFile(t, dir, "route2.gpx", prefixedGPX)

	src := NewGPXSource(filepath.Join(dir, "*.gpx"), 2)
	units := collectUnits(t, src)
	require.Len(t, units, 2)

	t.Run("units delivered in glob order", func(t *testing.T) {
		assert.Equal(t, "route1.gpx", units[0].ID)
		assert.Equal(t, "route2.gpx", units[1].ID)
	})

	t.Run("trackpoints become raw records", func(t *testing.T) {
		recs := collectRecords(t, units[0])
		require.Len(t, recs, 2)

		first := recs[0]
		assert.Equal(t, "route1.gpx", first.Unit)
		assert.Equal(t, "route1.gpx", first.Fixed["filename"])
		assert.Equal(t, "52.5200", first.Fixed["latitude"])
		assert.Equal(t, "13.4050", first.Fixed["longitude"])
		assert.Equal(t, "34.5", first.Fixed["elevation"])
		assert.Equal(t, "2023-04-02T09:30:00Z", first.Fixed["time"])
		assert.Equal(t, map[string]string{"speed": "2.8", "hAcc": "3.1"}, first.Dynamic)
	})

	t.Run("absent elevation stays absent", func(t *testing.T) {
		recs := collectRecords(t, units[0])
		_, hasEle := recs[1].Fixed["elevation"]
		assert.False(t, hasEle)
		assert.Empty(t, recs[1].Dynamic)
	})

	t.Run("extension tags are namespace stripped", func(t *testing.T) {
		recs := collectRecords(t, units[1])
		require.Len(t, recs, 1)
		assert.Equal(t, map[string]string{"hr": "120"}, recs[0].Dynamic)
	})

	t.Run("units are re-iterable", func(t *testing.T) {
		assert.Len(t, collectRecords(t, units[0]), 2)
		assert.Len(t, collectRecords(t, units[0]), 2)
	})
}

func TestGPXSourceCorruptFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.gpx", sampleGPX)
	writeFile(t, dir, "bad.gpx", "<gpx><trk><unclosed")

	src := NewGPXSource(filepath.Join(dir, "*.gpx"), 0)
	units := collectUnits(t, src)
	require.Len(t, units, 2)

	assert.Equal(t, "bad.gpx", units[0].ID)
	assert.Error(t, units[0].Err)
	assert.NoError(t, units[1].Err)
}

func TestGPXSourceNoMatches(t *testing.T) {
	src := NewGPXSource(filepath.Join(t.TempDir(), "*.gpx"), 0)
	units := collectUnits(t, src)
	assert.Empty(t, units)
}

func TestGPXSourceFields(t *testing.T) {
	fields := NewGPXSource("*.gpx", 0).Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"filename", "latitude", "longitude", "elevation", "time"}, names)

	assert.True(t, fields[1].Required, "latitude must be required")
	assert.True(t, fields[2].Required, "longitude must be required")
	assert.False(t, fields[3].Required)
}
