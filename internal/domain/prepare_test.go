package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func districtTable(rows ...[]string) Table {
	return Table{
		Header: []string{"district", "fy_2022_obligations", "fy_2023_obligations", "fy_2024_obligations"},
		Rows:   rows,
	}
}

func TestPrepareData_EndToEndScenario(t *testing.T) {
	table := Table{
		Header: []string{"district", "amount"},
		Rows: [][]string{
			{"CA-01", "1200000"},
			{"CA-02", "7000000000"},
		},
	}

	p, err := PrepareData(table, PrepareOptions{
		GeoCol:    "district",
		ValueCols: []string{"amount"},
		Agg:       AggMean,
		Level:     LevelDistrict,
	})
	require.NoError(t, err)

	want := map[string]float64{"0601": 1_200_000, "0602": 7_000_000_000}
	if diff := cmp.Diff(want, p.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1_200_000.0, p.Min)
	assert.Equal(t, 7_000_000_000.0, p.Max)
	assert.Equal(t, 2, p.Rows)
	assert.Zero(t, p.Dropped)
	assert.Empty(t, p.Duplicates)
}

func TestPrepareData_Aggregations(t *testing.T) {
	table := districtTable([]string{"TX-07", "100", "400", "250"})
	cols := []string{"fy_2022_obligations", "fy_2023_obligations", "fy_2024_obligations"}

	tests := []struct {
		agg  AggFunc
		want float64
	}{
		{AggMean, 250},
		{AggSum, 750},
		{AggMedian, 250},
	}
	for _, tt := range tests {
		t.Run(string(tt.agg), func(t *testing.T) {
			p, err := PrepareData(table, PrepareOptions{GeoCol: "district", ValueCols: cols, Agg: tt.agg, Level: LevelDistrict})
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Values["4807"])
		})
	}
}

func TestPrepareData_CoercesUnparseableToZero(t *testing.T) {
	table := districtTable(
		[]string{"CA-01", "", "n/a", "300"},
		[]string{"CA-02", "1,000", "NaN", "Inf"},
	)
	cols := []string{"fy_2022_obligations", "fy_2023_obligations", "fy_2024_obligations"}

	p, err := PrepareData(table, PrepareOptions{GeoCol: "district", ValueCols: cols, Agg: AggSum, Level: LevelDistrict})
	require.NoError(t, err)

	assert.Equal(t, 300.0, p.Values["0601"])
	assert.Equal(t, 0.0, p.Values["0602"])
	assert.Equal(t, 0.0, p.Min)
	assert.Equal(t, 300.0, p.Max)
}

func TestPrepareData_DropsUnresolvableIdentifiers(t *testing.T) {
	table := districtTable(
		[]string{"CA-01", "10", "10", "10"},
		[]string{"ZZ-01", "10", "10", "10"},
		[]string{"", "10", "10", "10"},
		[]string{"Puerto Rico", "10", "10", "10"},
	)

	p, err := PrepareData(table, PrepareOptions{GeoCol: "district", ValueCols: []string{"fy_2024_obligations"}, Agg: AggMean, Level: LevelDistrict})
	require.NoError(t, err)

	assert.Len(t, p.Values, 1)
	assert.Equal(t, 4, p.Rows)
	assert.Equal(t, 3, p.Dropped)
}

func TestPrepareData_DuplicateKeysLastWriteWins(t *testing.T) {
	table := districtTable(
		[]string{"CA-1", "10", "10", "10"},
		[]string{"CA-01", "99", "99", "99"},
	)

	p, err := PrepareData(table, PrepareOptions{GeoCol: "district", ValueCols: []string{"fy_2024_obligations"}, Agg: AggMean, Level: LevelDistrict})
	require.NoError(t, err)

	assert.Equal(t, 99.0, p.Values["0601"])
	assert.Equal(t, []string{"0601"}, p.Duplicates)
}

func TestPrepareData_EmptyDefaultsRange(t *testing.T) {
	p, err := PrepareData(districtTable(), PrepareOptions{GeoCol: "district", ValueCols: []string{"fy_2024_obligations"}, Agg: AggMean, Level: LevelDistrict})
	require.NoError(t, err)

	assert.Empty(t, p.Values)
	assert.Equal(t, 0.0, p.Min)
	assert.Equal(t, 1.0, p.Max)
}

func TestPrepareData_StateLevel(t *testing.T) {
	table := Table{
		Header: []string{"state", "total"},
		Rows:   [][]string{{"tx", "5"}, {"CA", "7"}, {"CA-01", "9"}},
	}

	p, err := PrepareData(table, PrepareOptions{GeoCol: "state", ValueCols: []string{"total"}, Agg: AggMean, Level: LevelState})
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"48": 5, "06": 7}, p.Values)
	assert.Equal(t, 1, p.Dropped)
}

func TestPrepareData_Errors(t *testing.T) {
	table := districtTable([]string{"CA-01", "1", "2", "3"})

	t.Run("invalid level", func(t *testing.T) {
		_, err := PrepareData(table, PrepareOptions{GeoCol: "district", ValueCols: []string{"fy_2024_obligations"}, Level: "county"})
		require.ErrorIs(t, err, ErrInvalidLevel)
	})

	t.Run("invalid aggregation", func(t *testing.T) {
		_, err := PrepareData(table, PrepareOptions{GeoCol: "district", ValueCols: []string{"fy_2024_obligations"}, Agg: "max", Level: LevelDistrict})
		require.ErrorIs(t, err, ErrInvalidAggFunc)
	})

	t.Run("unknown geo column", func(t *testing.T) {
		_, err := PrepareData(table, PrepareOptions{GeoCol: "cd", ValueCols: []string{"fy_2024_obligations"}, Level: LevelDistrict})
		require.ErrorIs(t, err, ErrUnknownColumn)
		assert.Contains(t, err.Error(), `"cd"`)
	})

	t.Run("unknown value column", func(t *testing.T) {
		_, err := PrepareData(table, PrepareOptions{GeoCol: "district", ValueCols: []string{"fy_2030"}, Level: LevelDistrict})
		require.ErrorIs(t, err, ErrUnknownColumn)
	})

	t.Run("no value columns", func(t *testing.T) {
		_, err := PrepareData(table, PrepareOptions{GeoCol: "district", Level: LevelDistrict})
		require.ErrorIs(t, err, ErrNoValueColumns)
	})
}

func TestPrepareData_ShortRowsReadAsZero(t *testing.T) {
	table := districtTable([]string{"CA-01", "40"})
	cols := []string{"fy_2022_obligations", "fy_2023_obligations"}

	p, err := PrepareData(table, PrepareOptions{GeoCol: "district", ValueCols: cols, Agg: AggMean, Level: LevelDistrict})
	require.NoError(t, err)
	assert.Equal(t, 20.0, p.Values["0601"])
}

func TestAggFunc_MedianEvenCount(t *testing.T) {
	assert.Equal(t, 2.5, AggMedian.Apply([]float64{4, 1, 3, 2}))
	assert.Equal(t, 0.0, AggMean.Apply(nil))
}

func TestParseAggFunc(t *testing.T) {
	agg, err := ParseAggFunc("")
	require.NoError(t, err)
	assert.Equal(t, AggMean, agg)

	agg, err = ParseAggFunc("SUM")
	require.NoError(t, err)
	assert.Equal(t, AggSum, agg)

	_, err = ParseAggFunc("max")
	require.ErrorIs(t, err, ErrInvalidAggFunc)
}
