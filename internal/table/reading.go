package table

import (
	"encoding/json"
	"strconv"
)

// Reading is a sealed interface representing one channel measurement.
// Only Number and NoData implement it. A missing measurement is always
// NoData; 0.0 is a valid measured Number and never stands in for a gap.
type Reading interface {
	reading() // Sealed - only these types implement it
}

// Number is a measured value: redox potential in mV or temperature in °C,
// depending on the column's Kind.
type Number float64

func (Number) reading() {}

// MarshalJSON implements json.Marshaler for Number.
func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(n))
}

// NoData marks a gap: an empty cell or a vendor error marker in the source
// file. Gaps render as breaks in a plotted line.
type NoData struct{}

func (NoData) reading() {}

// MarshalJSON implements json.Marshaler for NoData.
func (NoData) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Value unpacks a Reading. ok is false for NoData.
func Value(r Reading) (v float64, ok bool) {
	if n, isNum := r.(Number); isNum {
		return float64(n), true
	}
	return 0, false
}

// IsGap reports whether r is NoData.
func IsGap(r Reading) bool {
	_, ok := r.(NoData)
	return ok
}

// FormatReading renders a Reading for the canonical CSV form: shortest
// round-trippable decimal for numbers, GapMarker for gaps.
func FormatReading(r Reading) string {
	if v, ok := Value(r); ok {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return GapMarker
}
