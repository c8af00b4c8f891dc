package infer

import (
	"errors"
	"fmt"

	"github.com/nconklindev/sheetsync/internal/types"
)

type Policy string

const (
	PolicyFast  Policy = "fast"
	PolicyLoose Policy = "loose"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyFast, PolicyLoose:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown inference policy: %s", s)
	}
}

// Inferer converts untyped columns into typed ones. Implementations never
// modify their input; the returned table holds its own references.
type Inferer interface {
	Infer(t *types.Table) (*Result, error)
	InferColumn(c *types.Column) (*types.Column, ColumnReport, error)
	Policy() Policy
}

// ColumnReport describes the decision made for one column.
type ColumnReport struct {
	Name string
	From types.Kind
	To   types.Kind

	// Parsed counts the cells that parsed as the winning candidate, or as a
	// number when no candidate was committed.
	Parsed int
	Total  int
	Nulls  int

	// Layout is the strftime pattern of a committed date format.
	Layout    string
	Committed bool
}

type Result struct {
	Table   *types.Table
	Columns []ColumnReport
}

// New returns the inferer for the given policy.
func New(p Policy, cfg Config) (Inferer, error) {
	switch p {
	case PolicyFast:
		return NewFast(cfg)
	case PolicyLoose:
		return NewLoose(cfg)
	default:
		return nil, fmt.Errorf("unknown inference policy: %s", p)
	}
}

func inferTable(in *types.Table, inferColumn func(*types.Column) (*types.Column, ColumnReport, error)) (*Result, error) {
	out := &types.Table{Columns: make([]*types.Column, 0, len(in.Columns))}
	if in.Index != nil {
		in.Index.Retain()
		out.Index = in.Index
	}
	res := &Result{Table: out, Columns: make([]ColumnReport, 0, len(in.Columns))}

	var errs []error
	for _, c := range in.Columns {
		nc, report, err := inferColumn(c)
		res.Columns = append(res.Columns, report)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out.Columns = append(out.Columns, nc)
	}
	if len(errs) > 0 {
		out.Release()
		return nil, errors.Join(errs...)
	}
	return res, nil
}

// keep hands back the input column unchanged with an extra reference.
func keep(c *types.Column, report ColumnReport) (*types.Column, ColumnReport, error) {
	c.Retain()
	report.Nulls = c.NullCount()
	return c, report, nil
}
