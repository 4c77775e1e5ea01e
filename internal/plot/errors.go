package plot

import (
	"errors"
	"fmt"
)

// ErrCodeMissingNode indicates a requested node label is not a column of
// the table.
const ErrCodeMissingNode = "MISSING_NODE"

// MissingNodeError reports a plot request for a node the table does not
// contain.
type MissingNodeError struct {
	// Label is the requested canonical node label.
	Label string
}

// Code returns the error category.
func (e *MissingNodeError) Code() string { return ErrCodeMissingNode }

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("%s: node %q not present in table", ErrCodeMissingNode, e.Label)
}

// IsMissingNode reports whether err is a MissingNodeError, unwrapping as
// needed.
func IsMissingNode(err error) bool {
	var mn *MissingNodeError
	return errors.As(err, &mn)
}
