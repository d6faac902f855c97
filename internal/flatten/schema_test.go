package flatten

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(dynamic ...string) RawRecord {
	d := make(map[string]string, len(dynamic))
	for _, k := range dynamic {
		d[k] = "1"
	}
	return RawRecord{Dynamic: d}
}

func TestInferSchema(t *testing.T) {
	fixed := []string{"lat", "lon"}

	t.Run("union of dynamic keys, sorted after fixed", func(t *testing.T) {
		schema, err := InferSchema([]RawRecord{rec("hr"), rec("cad"), rec("hr", "power")}, fixed)
		require.NoError(t, err)
		assert.Equal(t, []string{"lat", "lon", "cad", "hr", "power"}, schema.Columns())
		assert.Equal(t, 5, schema.Len())
	})

	t.Run("deterministic under permutation", func(t *testing.T) {
		records := []RawRecord{rec("hr"), rec("cad"), rec("vo2", "hr"), rec(), rec("stride")}
		want, err := InferSchema(records, fixed)
		require.NoError(t, err)

		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 20; i++ {
			shuffled := append([]RawRecord(nil), records...)
			rng.Shuffle(len(shuffled), func(a, b int) {
				shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
			})
			got, err := InferSchema(shuffled, fixed)
			require.NoError(t, err)
			assert.Equal(t, want.Columns(), got.Columns())
		}
	})

	t.Run("empty dynamic union is fine", func(t *testing.T) {
		schema, err := InferSchema([]RawRecord{rec(), rec()}, fixed)
		require.NoError(t, err)
		assert.Equal(t, fixed, schema.Columns())
		assert.Empty(t, schema.DynamicColumns())
	})

	t.Run("empty record sequence is fine", func(t *testing.T) {
		schema, err := InferSchema(nil, fixed)
		require.NoError(t, err)
		assert.Equal(t, fixed, schema.Columns())
	})

	t.Run("dynamic key colliding with fixed column fails", func(t *testing.T) {
		_, err := InferSchema([]RawRecord{rec("lat")}, fixed)
		var sce *SchemaCollisionError
		require.ErrorAs(t, err, &sce)
		assert.Equal(t, "lat", sce.Key)
	})
}

func TestProject(t *testing.T) {
	schema, err := InferSchema([]RawRecord{rec("hr"), rec("cad")}, []string{"lat", "lon"})
	require.NoError(t, err)

	t.Run("row is complete and schema ordered", func(t *testing.T) {
		row := schema.Project(NormalizedRecord{
			Fixed:   map[string]Cell{"lat": NumberCell(1), "lon": NumberCell(2)},
			Dynamic: map[string]Cell{"hr": NumberCell(120)},
		})
		require.Len(t, row, schema.Len())
		assert.Equal(t, NumberCell(1), row[0])
		assert.Equal(t, NumberCell(2), row[1])
		assert.True(t, row[2].IsNull(), "cad must project to null")
		assert.Equal(t, NumberCell(120), row[3])
	})

	t.Run("missing dynamic key is null, never zero or empty text", func(t *testing.T) {
		row := schema.Project(NormalizedRecord{
			Fixed:   map[string]Cell{"lat": NumberCell(3), "lon": NumberCell(4)},
			Dynamic: map[string]Cell{"cad": NumberCell(80)},
		})
		assert.Equal(t, NumberCell(80), row[2])
		assert.Equal(t, KindNull, row[3].Kind)
		assert.Equal(t, "", row[3].String())
	})
}
