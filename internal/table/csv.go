package table

import (
	"encoding/csv"
	"io"
)

// Canonical CSV form. Reloading a file written by WriteCSV through a
// no-op mapping reproduces the same labels and rows, which is what makes
// normalization idempotent.
const (
	// TimeLayout is the timestamp layout of the canonical CSV form. It
	// matches the vendor's own layout so normalized files stay readable
	// by the same tools as raw exports.
	TimeLayout = "2006-01-02 15:04:05"

	// TimeColumn is the header entry of the timestamp column.
	TimeColumn = "TIMESTAMP"

	// GapMarker is how NoData is written. It is also a recognized error
	// marker on load, which closes the round trip.
	GapMarker = "NAN"
)

// WriteCSV writes the table in the canonical normalized form: a single
// header row of canonical labels, then one record per row in file order.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, TimeColumn)
	header = append(header, t.Labels()...)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(t.Columns)+1)
	for _, row := range t.Rows {
		record[0] = row.Stamp.Format(TimeLayout)
		for i, r := range row.Readings {
			record[i+1] = FormatReading(r)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
