package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/soilplot/internal/mapping"
	"github.com/roach88/soilplot/internal/table"
)

func studyMapping(t *testing.T) *mapping.Config {
	t.Helper()
	cfg, err := mapping.Load(filepath.Join("testdata", "cw_mapping.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestDetect(t *testing.T) {
	tests := []struct {
		path   string
		format Format
	}{
		{"export.csv", FormatCSV},
		{"S9081 HMVT CR1000X_measurements.dat", FormatTOA5},
		{"export.XLSX", FormatXLSX},
		{"legacy.xls", FormatXLS},
	}
	for _, tc := range tests {
		format, err := Detect(tc.path)
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.format, format, tc.path)
	}
}

func TestDetectUnsupported(t *testing.T) {
	_, err := Detect("notes.txt")
	require.Error(t, err)

	var uf *UnsupportedFormatError
	require.True(t, errors.As(err, &uf))
	assert.Equal(t, ".txt", uf.Ext)
	assert.Equal(t, ErrCodeUnsupportedFormat, CodeOf(err))
	assert.Contains(t, err.Error(), `".txt"`)
}

func TestLoadTOA5(t *testing.T) {
	tab, info, err := LoadDetailed(filepath.Join("testdata", "cw_sample.dat"), Options{Mapping: studyMapping(t)})
	require.NoError(t, err)

	assert.Equal(t, FormatTOA5, info.Format)
	assert.Equal(t, "S9081", info.Station)
	assert.Equal(t, "Measurements", info.TableName)

	// RECORD and batt_volt_Avg dropped, spare retained as unmapped.
	assert.Equal(t, []string{"CW1S1-1", "CW1S1-2", "CW1S1", "spare_Avg(1)"}, tab.Labels())
	assert.Equal(t, []string{"spare_Avg(1)"}, tab.UnmappedLabels())
	assert.Equal(t, table.KindRedox, tab.Columns[0].Kind)
	assert.Equal(t, table.KindTemperature, tab.Columns[2].Kind)
	assert.Equal(t, "mV", tab.Columns[0].Unit)
	assert.Equal(t, "Deg C", tab.Columns[2].Unit) // units line wins over the kind default

	require.Len(t, tab.Rows, 3)
	assert.Equal(t, 5, tab.Rows[0].SourceRow)
	assert.Equal(t, 7, tab.Rows[2].SourceRow)

	// +200 mV correction applies to redox channels only.
	assert.Equal(t, table.Number(-252.25), tab.Rows[0].Readings[0])
	assert.Equal(t, table.Number(14.2), tab.Rows[0].Readings[2])
	assert.Equal(t, table.Number(1.5), tab.Rows[0].Readings[3])

	// NAN and empty cells become NoData, never 0.0.
	assert.Equal(t, table.NoData{}, tab.Rows[0].Readings[1])
	assert.Equal(t, table.NoData{}, tab.Rows[1].Readings[3])
	assert.Equal(t, table.NoData{}, tab.Rows[2].Readings[2])

	assert.True(t, tab.CheckOrder().Clean())
}

func TestLoadTOA5Golden(t *testing.T) {
	tab, err := Load(filepath.Join("testdata", "cw_sample.dat"), Options{Mapping: studyMapping(t)})
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, tab.WriteCSV(buf))

	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "cw_sample_normalized", buf.Bytes())
}

func TestRoundTripIdempotent(t *testing.T) {
	first, err := Load(filepath.Join("testdata", "cw_sample.dat"), Options{Mapping: studyMapping(t)})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "normalized.csv")
	buf := &bytes.Buffer{}
	require.NoError(t, first.WriteCSV(buf))
	require.NoError(t, os.WriteFile(out, buf.Bytes(), 0o644))

	second, err := Load(out, Options{Mapping: mapping.NoOp(first.Columns)})
	require.NoError(t, err)

	assert.Equal(t, first.Labels(), second.Labels())
	require.Len(t, second.Rows, len(first.Rows))
	for i := range first.Rows {
		assert.True(t, first.Rows[i].Stamp.Equal(second.Rows[i].Stamp), "row %d", i)
		assert.Equal(t, first.Rows[i].Readings, second.Rows[i].Readings, "row %d", i)
	}

	// And once more: normalizing its own output is a fixed point.
	buf.Reset()
	require.NoError(t, second.WriteCSV(buf))
	require.NoError(t, os.WriteFile(out, buf.Bytes(), 0o644))
	third, err := Load(out, Options{Mapping: mapping.NoOp(second.Columns)})
	require.NoError(t, err)
	assert.Equal(t, second.Labels(), third.Labels())
	assert.Equal(t, second.Rows, third.Rows)
}

func TestRoundTripValueOnVendorMarker(t *testing.T) {
	// A raw -10199 corrects to exactly -9999, which collides with a stock
	// vendor error marker. The canonical form only ever writes NAN for
	// gaps, so the reload must keep the value a number.
	dir := t.TempDir()
	path := filepath.Join(dir, "export.csv")
	content := "TIMESTAMP,redox_raw_Avg(1)\n" +
		"2024-09-01 13:00:00,-10199\n" +
		"2024-09-01 14:00:00,NAN\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	first, err := Load(path, Options{Mapping: studyMapping(t)})
	require.NoError(t, err)
	require.Equal(t, table.Number(-9999), first.Rows[0].Readings[0])
	require.Equal(t, table.NoData{}, first.Rows[1].Readings[0])

	out := filepath.Join(dir, "normalized.csv")
	buf := &bytes.Buffer{}
	require.NoError(t, first.WriteCSV(buf))
	require.NoError(t, os.WriteFile(out, buf.Bytes(), 0o644))

	second, err := Load(out, Options{Mapping: mapping.NoOp(first.Columns)})
	require.NoError(t, err)
	assert.Equal(t, table.Number(-9999), second.Rows[0].Readings[0])
	assert.Equal(t, table.NoData{}, second.Rows[1].Readings[0])
}

func TestLoadCSVWithPreamble(t *testing.T) {
	tab, err := Load(filepath.Join("testdata", "preamble.csv"), Options{
		Mapping:  studyMapping(t),
		SkipRows: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"CW1S1-1", "CW1S1-2", "CW1S1-3", "CW1S1"}, tab.Labels())
	require.Len(t, tab.Rows, 2)
	assert.Equal(t, 4, tab.Rows[0].SourceRow)

	// Both configured markers coerce to NoData.
	assert.Equal(t, table.NoData{}, tab.Rows[0].Readings[2]) // NAN
	assert.Equal(t, table.NoData{}, tab.Rows[1].Readings[2]) // -9999
}

func TestLoadEndToEnd(t *testing.T) {
	// A comma-separated file with 2 preamble lines, 100 data rows and 4
	// raw channels mapped to canonical labels.
	cfg := mapping.Default()
	cfg.Channels = []mapping.Channel{
		{Raw: "redox_raw_Avg(1)", Label: "CW-In", Kind: table.KindRedox},
		{Raw: "redox_raw_Avg(2)", Label: "CW-Mid", Kind: table.KindRedox},
		{Raw: "redox_raw_Avg(3)", Label: "CW-Out", Kind: table.KindRedox},
		{Raw: "temp_C_Avg(1)", Label: "Temp", Kind: table.KindTemperature},
	}

	buf := &bytes.Buffer{}
	fmt.Fprintln(buf, "station export")
	fmt.Fprintln(buf, "second preamble line")
	fmt.Fprintln(buf, "TIMESTAMP,redox_raw_Avg(1),redox_raw_Avg(2),redox_raw_Avg(3),temp_C_Avg(1)")
	start := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		fmt.Fprintf(buf, "%s,-450.5,-430.25,-410.75,%d\n", start.Add(time.Duration(i)*time.Hour).Format(table.TimeLayout), 10+i%5)
	}
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	tab, err := Load(path, Options{Mapping: cfg, SkipRows: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"CW-In", "CW-Mid", "CW-Out", "Temp"}, tab.Labels())
	require.Len(t, tab.Rows, 100)
	for i, row := range tab.Rows {
		assert.Equal(t, 4+i, row.SourceRow) // original file order
	}
	assert.True(t, tab.CheckOrder().Clean())
}

func TestLoadXLSX(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"study export"},
		{"TIMESTAMP", "redox_raw_Avg(1)", "temp_C_Avg(1)"},
		{"2024-09-01 13:00:00", "-452.25", "14.2"},
		{"2024-09-01 14:00:00", "NAN", "14.1"},
		{"2024-09-01 15:00:00", "-450.75", ""}, // ragged rows get padded
	})

	tab, info, err := LoadDetailed(path, Options{Mapping: studyMapping(t), SkipRows: 1})
	require.NoError(t, err)

	assert.Equal(t, FormatXLSX, info.Format)
	assert.Equal(t, []string{"CW1S1-1", "CW1S1"}, tab.Labels())
	require.Len(t, tab.Rows, 3)
	assert.Equal(t, table.Number(-252.25), tab.Rows[0].Readings[0])
	assert.Equal(t, table.NoData{}, tab.Rows[1].Readings[0])
	assert.Equal(t, table.NoData{}, tab.Rows[2].Readings[1])
}

func TestTimestampParseError(t *testing.T) {
	tests := []struct {
		name  string
		stamp string
	}{
		{"corrupted", "N/A"},
		{"empty", ""},
		{"partial", "2024-13-40"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "export.csv")
			content := "TIMESTAMP,redox_raw_Avg(1)\n" +
				"2024-09-01 13:00:00,-452.25\n" +
				tc.stamp + ",-451.5\n"
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			_, err := Load(path, Options{Mapping: studyMapping(t)})
			require.Error(t, err)

			var tp *TimestampParseError
			require.True(t, errors.As(err, &tp))
			assert.Equal(t, 3, tp.RowIndex)
			assert.Equal(t, tc.stamp, tp.Value)
			assert.Contains(t, err.Error(), "row 3")
			assert.Equal(t, ErrCodeTimestampParse, CodeOf(err))
		})
	}
}

func TestMalformedValueError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	content := "TIMESTAMP,redox_raw_Avg(1),temp_C_Avg(1)\n" +
		"2024-09-01 13:00:00,-452.25,14.2\n" +
		"2024-09-01 14:00:00,offline,14.1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path, Options{Mapping: studyMapping(t)})
	require.Error(t, err)

	var mv *MalformedValueError
	require.True(t, errors.As(err, &mv))
	assert.Equal(t, 3, mv.RowIndex)
	assert.Equal(t, "CW1S1-1", mv.Column)
	assert.Equal(t, "offline", mv.Value)
	assert.Equal(t, ErrCodeMalformedValue, CodeOf(err))
}

func TestMalformedFileYieldsNoTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	content := "TIMESTAMP,redox_raw_Avg(1)\n" +
		"2024-09-01 13:00:00,-452.25\n" +
		"2024-09-01 14:00:00,offline\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tab, err := Load(path, Options{Mapping: studyMapping(t)})
	require.Error(t, err)
	assert.Nil(t, tab) // fail-fast: no partial table
}

func TestUnmappedDropPolicy(t *testing.T) {
	cfg := studyMapping(t)
	cfg.Unmapped = mapping.PolicyDrop

	tab, err := Load(filepath.Join("testdata", "cw_sample.dat"), Options{Mapping: cfg})
	require.NoError(t, err)
	assert.Equal(t, []string{"CW1S1-1", "CW1S1-2", "CW1S1"}, tab.Labels())
	assert.Empty(t, tab.UnmappedLabels())
}

func TestMissingTimestampColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	content := "time,redox_raw_Avg(1)\n2024-09-01 13:00:00,-452.25\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path, Options{Mapping: studyMapping(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"TIMESTAMP"`)
}

func TestLoadRowCountMatchesDataRows(t *testing.T) {
	// Header and preamble rows never count as data.
	tab, err := Load(filepath.Join("testdata", "preamble.csv"), Options{
		Mapping:  studyMapping(t),
		SkipRows: 2,
	})
	require.NoError(t, err)
	assert.Len(t, tab.Rows, 2)

	tab, err = Load(filepath.Join("testdata", "cw_sample.dat"), Options{Mapping: studyMapping(t)})
	require.NoError(t, err)
	assert.Len(t, tab.Rows, 3)
}
