package infer

import (
	"errors"
	"fmt"

	"github.com/nconklindev/sheetsync/internal/types"
)

var ErrUnparseable = errors.New("unparseable cell")

// CoercionError reports a non-missing cell that a committed conversion turned into null.
type CoercionError struct {
	Column string
	Row    int
	Value  string
	Kind   types.Kind
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("column %s row %d: cannot parse %q as %s", e.Column, e.Row, e.Value, e.Kind)
}

func (e *CoercionError) Unwrap() error {
	return ErrUnparseable
}

// lost collects strict-mode errors for cells that were present but did not parse.
func lost(column string, kind types.Kind, cells []types.Cell, valid []bool) error {
	var errs []error
	for i, c := range cells {
		if !c.Missing && !valid[i] {
			errs = append(errs, &CoercionError{Column: column, Row: i, Value: c.Value, Kind: kind})
		}
	}
	return errors.Join(errs...)
}
