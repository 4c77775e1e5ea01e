package table

import (
	"fmt"
	"time"
)

// Kind classifies what a channel measures.
type Kind string

const (
	// KindRedox is redox potential in millivolts.
	KindRedox Kind = "redox"

	// KindTemperature is soil temperature in degrees Celsius.
	KindTemperature Kind = "temperature"

	// KindOther covers channels the mapping does not classify.
	KindOther Kind = "other"
)

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindRedox, KindTemperature, KindOther:
		return true
	}
	return false
}

// Unit returns the measurement unit for the kind, or "" for KindOther.
func (k Kind) Unit() string {
	switch k {
	case KindRedox:
		return "mV"
	case KindTemperature:
		return "°C"
	}
	return ""
}

// AxisLabel returns the y-axis label used when plotting this kind.
func (k Kind) AxisLabel() string {
	switch k {
	case KindRedox:
		return "Redox potential [mV]"
	case KindTemperature:
		return "Temperature [°C]"
	}
	return "Value"
}

// Column describes one channel of the normalized table.
type Column struct {
	// Label is the canonical node label after mapping.
	Label string `json:"label"`

	// Raw is the header entry as it appeared in the source file.
	Raw string `json:"raw"`

	// Kind classifies the measurement.
	Kind Kind `json:"kind"`

	// Unit is the measurement unit, from the file's units line when the
	// format carries one, otherwise derived from Kind.
	Unit string `json:"unit,omitempty"`

	// Unmapped marks a header the channel mapping did not cover and the
	// retain policy kept under its raw name.
	Unmapped bool `json:"unmapped,omitempty"`
}

// Row is one timestamped observation.
type Row struct {
	// Stamp is the parsed observation time.
	Stamp time.Time `json:"stamp"`

	// SourceRow is the 1-based row number in the source file, kept so
	// diagnostics stay traceable to the file.
	SourceRow int `json:"source_row"`

	// Readings is parallel to the table's Columns.
	Readings []Reading `json:"readings"`
}

// Table is the normalized output of the loader: uniform columns, rows in
// file order. Treat it as immutable; derived views return new tables.
type Table struct {
	Columns []Column
	Rows    []Row
}

// New builds a Table, enforcing the uniform-schema invariant: every row
// must carry exactly one reading per column.
func New(columns []Column, rows []Row) (*Table, error) {
	for _, row := range rows {
		if len(row.Readings) != len(columns) {
			return nil, fmt.Errorf("row %d has %d readings, want %d",
				row.SourceRow, len(row.Readings), len(columns))
		}
	}
	return &Table{Columns: columns, Rows: rows}, nil
}

// ColumnIndex returns the index of the column with the given canonical
// label, or false if no column carries it.
func (t *Table) ColumnIndex(label string) (int, bool) {
	for i, c := range t.Columns {
		if c.Label == label {
			return i, true
		}
	}
	return 0, false
}

// Labels returns the canonical column labels in column order.
func (t *Table) Labels() []string {
	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		labels[i] = c.Label
	}
	return labels
}

// UnmappedLabels returns the labels of columns the mapping did not cover.
// Non-empty output means the mapping has gaps for this file.
func (t *Table) UnmappedLabels() []string {
	var labels []string
	for _, c := range t.Columns {
		if c.Unmapped {
			labels = append(labels, c.Label)
		}
	}
	return labels
}

// Window returns a table restricted to rows with from <= stamp < to.
// A zero from or to leaves that side unbounded. Row order is preserved
// and the column set is unchanged.
func (t *Table) Window(from, to time.Time) *Table {
	rows := make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		if !from.IsZero() && row.Stamp.Before(from) {
			continue
		}
		if !to.IsZero() && !row.Stamp.Before(to) {
			continue
		}
		rows = append(rows, row)
	}
	return &Table{Columns: t.Columns, Rows: rows}
}

// OrderReport lists rows whose timestamps break chronological order.
// The table itself is never reordered; callers decide what to do.
type OrderReport struct {
	// OutOfOrder holds source row numbers whose stamp precedes the
	// previous row's stamp.
	OutOfOrder []int `json:"out_of_order,omitempty"`

	// Duplicates holds source row numbers whose stamp repeats an
	// earlier row's stamp.
	Duplicates []int `json:"duplicates,omitempty"`
}

// Clean reports whether the rows are strictly increasing in time.
func (r OrderReport) Clean() bool {
	return len(r.OutOfOrder) == 0 && len(r.Duplicates) == 0
}

// CheckOrder flags out-of-order and duplicate timestamps against file
// order.
func (t *Table) CheckOrder() OrderReport {
	var report OrderReport
	seen := make(map[int64]bool, len(t.Rows))
	var prev time.Time
	for i, row := range t.Rows {
		if i > 0 && row.Stamp.Before(prev) {
			report.OutOfOrder = append(report.OutOfOrder, row.SourceRow)
		}
		key := row.Stamp.UnixNano()
		if seen[key] {
			report.Duplicates = append(report.Duplicates, row.SourceRow)
		}
		seen[key] = true
		prev = row.Stamp
	}
	return report
}
