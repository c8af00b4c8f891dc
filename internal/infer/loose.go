package infer

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/araddon/dateparse"

	"github.com/nconklindev/sheetsync/internal/types"
)

// Loose is the ungated policy: untyped columns always become numeric, text
// columns always become dates, and unparseable cells become null however
// many there are.
type Loose struct {
	cfg Config
}

func NewLoose(cfg Config) (*Loose, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Loose{cfg: cfg}, nil
}

func (l *Loose) Policy() Policy {
	return PolicyLoose
}

func (l *Loose) Infer(t *types.Table) (*Result, error) {
	return inferTable(t, l.InferColumn)
}

func (l *Loose) InferColumn(c *types.Column) (*types.Column, ColumnReport, error) {
	report := ColumnReport{Name: c.Name, From: c.Kind, To: c.Kind, Total: c.Len()}
	if c.Len() == 0 {
		return keep(c, report)
	}

	switch c.Kind {
	case types.KindUntyped:
		cells := c.Cells()
		num := parseNumeric(cells)
		parsed := num.column(c.Name)
		out := narrow(parsed)
		if out != parsed {
			parsed.Release()
		}
		return l.commit(out, report, num.parsed, cells, num.valid)

	case types.KindText:
		cells := c.Cells()
		dates := parseDates(cells, parseAnyDate)
		out := types.NewDateColumn(c.Name, dates.values, dates.valid)
		return l.commit(out, report, dates.parsed, cells, dates.valid)

	case types.KindFloat:
		out := narrow(c)
		if out == c {
			return keep(c, report)
		}
		report.Parsed = out.Len() - out.NullCount()
		return l.commit(out, report, report.Parsed, nil, nil)

	default:
		return keep(c, report)
	}
}

func (l *Loose) commit(out *types.Column, report ColumnReport, parsed int, cells []types.Cell, valid []bool) (*types.Column, ColumnReport, error) {
	report.To = out.Kind
	report.Parsed = parsed
	report.Nulls = out.NullCount()
	report.Committed = true
	if l.cfg.Mode == ModeStrict && cells != nil {
		if err := lost(out.Name, out.Kind, cells, valid); err != nil {
			out.Release()
			return nil, report, err
		}
	}
	return out, report, nil
}

// narrow turns a Float column whose present values are all integral, or
// which holds no values at all, into an Integer column. Any other column is
// returned as is.
func narrow(c *types.Column) *types.Column {
	arr, ok := c.Data.(*array.Float64)
	if !ok {
		return c
	}
	ints := make([]int64, arr.Len())
	valid := make([]bool, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			continue
		}
		v := arr.Value(i)
		if !integral(v) {
			return c
		}
		ints[i], valid[i] = int64(v), true
	}
	return types.NewIntegerColumn(c.Name, ints, valid)
}

// parseAnyDate recognizes free-form dates and keeps the calendar date only.
func parseAnyDate(s string) (time.Time, error) {
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
