// Package mapping holds the channel mapping configuration: how raw vendor
// headers translate to canonical node labels, which columns to drop, which
// cell values mean "sensor error", and the redox reference correction.
//
// A Config is injected into the loader per call. There is no package-level
// mapping state, so different studies can load files with different
// mappings in the same process.
package mapping

import (
	"fmt"
	"strings"

	"github.com/roach88/soilplot/internal/table"
)

// Policy controls what happens to header entries the mapping does not
// cover.
type Policy string

const (
	// PolicyRetain keeps unmapped headers under their raw name, flagged
	// as unmapped so callers can detect mapping gaps. This is the
	// default: silent data loss is worse than a noisy column.
	PolicyRetain Policy = "retain"

	// PolicyDrop removes unmapped headers from the output table.
	PolicyDrop Policy = "drop"
)

// Valid reports whether p is a defined policy.
func (p Policy) Valid() bool {
	return p == PolicyRetain || p == PolicyDrop
}

// Channel maps one raw header entry to its canonical label and kind.
type Channel struct {
	Raw   string     `yaml:"raw"`
	Label string     `yaml:"label"`
	Kind  table.Kind `yaml:"kind"`
}

// Config is the full mapping configuration for one study.
type Config struct {
	// Channels lists the known raw-header translations.
	Channels []Channel `yaml:"channels"`

	// Unmapped is the policy for headers not listed in Channels.
	Unmapped Policy `yaml:"unmapped"`

	// Drop lists housekeeping columns removed outright (e.g. RECORD,
	// batt_volt_Avg). Unlike unmapped headers, dropping these is never
	// a mapping gap.
	Drop []string `yaml:"drop"`

	// ErrorMarkers are cell values the logger writes when a sensor
	// fails. They normalize to NoData, never to a number.
	ErrorMarkers []string `yaml:"error_markers"`

	// RedoxCorrectionMV is added to every redox reading during
	// normalization, correcting for the reference electrode (+200 mV
	// for a 3M KCl electrode in the pilot study).
	RedoxCorrectionMV float64 `yaml:"redox_correction_mv"`

	// TimestampColumn is the header entry of the timestamp column.
	TimestampColumn string `yaml:"timestamp_column"`

	// Groups name sets of canonical labels selectable together at plot
	// time (e.g. all nodes of one wetland at one depth).
	Groups map[string][]string `yaml:"groups"`
}

// Default returns the configuration used when no mapping file is given:
// no translations, retain policy, the vendor's stock error markers, no
// correction.
func Default() *Config {
	return &Config{
		Unmapped:        PolicyRetain,
		ErrorMarkers:    []string{"NAN", "-9999"},
		TimestampColumn: table.TimeColumn,
	}
}

// NoOp returns a mapping that carries the given columns through unchanged,
// with their kinds preserved and no correction. Reloading a normalized
// CSV through NoOp reproduces the table. Only the gap marker counts as an
// error marker here: the canonical form writes gaps as GapMarker alone,
// and a measured value that happens to format as another vendor marker
// (a corrected reading landing on -9999) must stay a number.
func NoOp(columns []table.Column) *Config {
	cfg := Default()
	cfg.ErrorMarkers = []string{table.GapMarker}
	for _, c := range columns {
		cfg.Channels = append(cfg.Channels, Channel{Raw: c.Label, Label: c.Label, Kind: c.Kind})
	}
	return cfg
}

// applyDefaults fills zero-value fields after decoding.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Unmapped == "" {
		c.Unmapped = d.Unmapped
	}
	if c.ErrorMarkers == nil {
		c.ErrorMarkers = d.ErrorMarkers
	}
	if c.TimestampColumn == "" {
		c.TimestampColumn = d.TimestampColumn
	}
	for i := range c.Channels {
		if c.Channels[i].Kind == "" {
			c.Channels[i].Kind = table.KindOther
		}
	}
}

// Validate checks internal consistency beyond what the schema covers.
func (c *Config) Validate() error {
	if !c.Unmapped.Valid() {
		return fmt.Errorf("unmapped policy %q: must be %q or %q", c.Unmapped, PolicyRetain, PolicyDrop)
	}
	seen := make(map[string]bool, len(c.Channels))
	labels := make(map[string]bool, len(c.Channels))
	for _, ch := range c.Channels {
		if ch.Raw == "" || ch.Label == "" {
			return fmt.Errorf("channel entry %+v: raw and label must be non-empty", ch)
		}
		if !ch.Kind.Valid() {
			return fmt.Errorf("channel %q: unknown kind %q", ch.Raw, ch.Kind)
		}
		if seen[ch.Raw] {
			return fmt.Errorf("channel %q mapped twice", ch.Raw)
		}
		seen[ch.Raw] = true
		labels[ch.Label] = true
	}
	for name, members := range c.Groups {
		for _, label := range members {
			if !labels[label] {
				return fmt.Errorf("group %q references unmapped label %q", name, label)
			}
		}
	}
	return nil
}

// Resolve looks up the translation for a raw header entry.
func (c *Config) Resolve(raw string) (Channel, bool) {
	for _, ch := range c.Channels {
		if ch.Raw == raw {
			return ch, true
		}
	}
	return Channel{}, false
}

// Dropped reports whether a raw header is on the drop list.
func (c *Config) Dropped(raw string) bool {
	for _, d := range c.Drop {
		if d == raw {
			return true
		}
	}
	return false
}

// IsErrorMarker reports whether a cell value is a configured sensor error
// marker. Matching ignores surrounding whitespace.
func (c *Config) IsErrorMarker(v string) bool {
	v = strings.TrimSpace(v)
	for _, m := range c.ErrorMarkers {
		if v == m {
			return true
		}
	}
	return false
}

// Group returns the member labels of a named node group.
func (c *Config) Group(name string) ([]string, bool) {
	members, ok := c.Groups[name]
	return members, ok
}
