package infer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nconklindev/sheetsync/internal/types"
)

type number struct {
	i     int64
	f     float64
	isInt bool
}

// parseNumber accepts trimmed decimal integers and finite floats. Hex
// literals, digit separators, NaN, infinities and values that overflow a
// float64 are rejected.
func parseNumber(raw string) (number, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return number{}, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return number{i: i, f: float64(i), isInt: true}, true
	}
	lower := strings.ToLower(s)
	if strings.ContainsAny(lower, "x_") || strings.Contains(lower, "nan") {
		return number{}, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return number{}, false
	}
	return number{f: f}, true
}

type numericParse struct {
	nums   []number
	valid  []bool
	parsed int
	allInt bool
}

func parseNumeric(cells []types.Cell) numericParse {
	p := numericParse{
		nums:   make([]number, len(cells)),
		valid:  make([]bool, len(cells)),
		allInt: true,
	}
	for i, c := range cells {
		if c.Missing {
			continue
		}
		n, ok := parseNumber(c.Value)
		if !ok {
			continue
		}
		p.nums[i], p.valid[i] = n, true
		p.parsed++
		if !n.isInt {
			p.allInt = false
		}
	}
	return p
}

// column builds an Integer column when every parsed cell was an integer literal.
func (p numericParse) column(name string) *types.Column {
	if p.allInt {
		ints := make([]int64, len(p.nums))
		for i, n := range p.nums {
			ints[i] = n.i
		}
		return types.NewIntegerColumn(name, ints, p.valid)
	}
	floats := make([]float64, len(p.nums))
	for i, n := range p.nums {
		floats[i] = n.f
	}
	return types.NewFloatColumn(name, floats, p.valid)
}

type dateParse struct {
	values []time.Time
	valid  []bool
	parsed int
}

func parseDates(cells []types.Cell, parse func(string) (time.Time, error)) dateParse {
	p := dateParse{
		values: make([]time.Time, len(cells)),
		valid:  make([]bool, len(cells)),
	}
	for i, c := range cells {
		if c.Missing {
			continue
		}
		s := strings.TrimSpace(c.Value)
		if s == "" {
			continue
		}
		t, err := parse(s)
		if err != nil {
			continue
		}
		p.values[i], p.valid[i] = t, true
		p.parsed++
	}
	return p
}

// integral reports whether f can be stored as an int64 without loss.
func integral(f float64) bool {
	return !math.IsInf(f, 0) && f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64
}
