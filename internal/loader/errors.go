package loader

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes loader errors for CLI output.
type ErrorCode string

const (
	// ErrCodeUnsupportedFormat indicates an unrecognized file extension.
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"

	// ErrCodeTimestampParse indicates a row whose timestamp cannot be
	// parsed.
	ErrCodeTimestampParse ErrorCode = "TIMESTAMP_PARSE"

	// ErrCodeMalformedValue indicates a channel value that is neither
	// numeric nor a recognized error marker.
	ErrCodeMalformedValue ErrorCode = "MALFORMED_VALUE"
)

// UnsupportedFormatError reports a file whose extension maps to none of
// the supported formats.
type UnsupportedFormatError struct {
	// Ext is the offending extension, including the dot ("" when the
	// path has no extension).
	Ext string
}

// Code returns the error category.
func (e *UnsupportedFormatError) Code() ErrorCode { return ErrCodeUnsupportedFormat }

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported file extension %q (want .csv, .dat, .xlsx or .xls)",
		ErrCodeUnsupportedFormat, e.Ext)
}

// TimestampParseError reports a data row whose timestamp field is empty or
// unparseable. The row is not skipped; the caller decides what to do.
type TimestampParseError struct {
	// RowIndex is the 1-based row number in the source file.
	RowIndex int

	// Value is the offending timestamp field, verbatim.
	Value string
}

// Code returns the error category.
func (e *TimestampParseError) Code() ErrorCode { return ErrCodeTimestampParse }

func (e *TimestampParseError) Error() string {
	return fmt.Sprintf("%s: cannot parse timestamp %q (row %d)",
		ErrCodeTimestampParse, e.Value, e.RowIndex)
}

// MalformedValueError reports a channel value that is neither numeric nor
// a configured error marker, which means the file does not match the
// expected vendor format.
type MalformedValueError struct {
	// RowIndex is the 1-based row number in the source file.
	RowIndex int

	// Column is the canonical label of the offending column.
	Column string

	// Value is the offending cell content, verbatim.
	Value string
}

// Code returns the error category.
func (e *MalformedValueError) Code() ErrorCode { return ErrCodeMalformedValue }

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("%s: value %q is not numeric and not an error marker (row %d, column %q)",
		ErrCodeMalformedValue, e.Value, e.RowIndex, e.Column)
}

// CodeOf extracts the loader error code from err, unwrapping as needed.
// Returns "" for non-loader errors.
func CodeOf(err error) ErrorCode {
	var uf *UnsupportedFormatError
	if errors.As(err, &uf) {
		return uf.Code()
	}
	var tp *TimestampParseError
	if errors.As(err, &tp) {
		return tp.Code()
	}
	var mv *MalformedValueError
	if errors.As(err, &mv) {
		return mv.Code()
	}
	return ""
}
