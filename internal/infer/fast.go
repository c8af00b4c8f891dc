package infer

import (
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/nconklindev/sheetsync/internal/types"
)

// Fast is the threshold-gated policy. Numbers take priority over dates and
// date formats are tried in configuration order; the first format that
// clears the threshold wins even if a later one would parse more cells.
type Fast struct {
	cfg Config
}

func NewFast(cfg Config) (*Fast, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Fast{cfg: cfg}, nil
}

func (f *Fast) Policy() Policy {
	return PolicyFast
}

func (f *Fast) Infer(t *types.Table) (*Result, error) {
	return inferTable(t, f.InferColumn)
}

// InferColumn leaves typed and empty columns untouched, which makes a second
// pass over an already converted table a no-op.
func (f *Fast) InferColumn(c *types.Column) (*types.Column, ColumnReport, error) {
	report := ColumnReport{Name: c.Name, From: c.Kind, To: c.Kind, Total: c.Len()}
	if !c.Kind.IsTextual() || c.Len() == 0 {
		return keep(c, report)
	}

	cells := c.Cells()
	need := float64(len(cells)) * f.cfg.ConfidenceThreshold

	num := parseNumeric(cells)
	report.Parsed = num.parsed
	if float64(num.parsed) >= need {
		out := num.column(c.Name)
		return f.commit(out, report, num.parsed, cells, num.valid)
	}

	// strptime semantics: months and days need not be zero-padded.
	for _, format := range f.cfg.DateFormats {
		dates := parseDates(cells, func(s string) (time.Time, error) {
			return strftime.Parse(format, s)
		})
		if float64(dates.parsed) >= need {
			out := types.NewDateColumn(c.Name, dates.values, dates.valid)
			out.Layout = format
			report.Layout = out.Layout
			return f.commit(out, report, dates.parsed, cells, dates.valid)
		}
	}

	return keep(c, report)
}

func (f *Fast) commit(out *types.Column, report ColumnReport, parsed int, cells []types.Cell, valid []bool) (*types.Column, ColumnReport, error) {
	report.To = out.Kind
	report.Parsed = parsed
	report.Nulls = out.NullCount()
	report.Committed = true
	if f.cfg.Mode == ModeStrict {
		if err := lost(out.Name, out.Kind, cells, valid); err != nil {
			out.Release()
			return nil, report, err
		}
	}
	return out, report, nil
}
