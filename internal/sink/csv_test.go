package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailpack-labs/healthcsv/internal/flatten"
)

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	c := NewCSV(&buf)

	require.NoError(t, c.WriteHeader([]string{"filename", "latitude", "hr", "note"}))
	require.NoError(t, c.WriteRow([]flatten.Cell{
		flatten.TextCell("a.gpx"),
		flatten.NumberCell(52.52),
		flatten.NullCell(),
		flatten.TextCell("with, comma"),
	}))
	require.NoError(t, c.WriteRow([]flatten.Cell{
		flatten.TextCell("b.gpx"),
		flatten.NumberCell(1),
		flatten.NumberCell(120),
		flatten.TimeCell(time.Date(2023, 4, 2, 9, 30, 0, 0, time.UTC)),
	}))
	require.NoError(t, c.Flush())

	assert.Equal(t,
		"filename,latitude,hr,note\n"+
			"a.gpx,52.52,,\"with, comma\"\n"+
			"b.gpx,1,120,2023-04-02T09:30:00Z\n",
		buf.String())
}

func TestFileCSVCreatesLazily(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	s := NewFileCSV(path)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file must not exist before the header is written")
	require.NoError(t, s.Close(), "closing an unused sink is a no-op")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, s.WriteHeader([]string{"a", "b"}))
	require.NoError(t, s.WriteRow([]flatten.Cell{flatten.NumberCell(1), flatten.NullCell()}))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\n", string(data))
}
