package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/nconklindev/sheetsync/internal/types"
)

const HeaderSearchLimit = 20

// FromRows shapes raw rows into an untyped table: rows above the header are
// discarded, fully empty rows and columns are dropped, blank names become
// "Unnamed: <i>" and repeated names get ".1", ".2" suffixes. Empty strings
// are missing cells.
func FromRows(rows [][]string, opts ReadOptions) (*types.Table, error) {
	header := opts.HeaderRow
	if header == AutoHeader {
		header = FindHeaderRow(rows)
		if header == -1 {
			header = 0
		}
	}
	if header < 0 {
		return nil, fmt.Errorf("invalid header row: %d", opts.HeaderRow)
	}

	t := &types.Table{}
	if header >= len(rows) {
		return t, nil
	}

	names := rows[header]
	var data [][]string
	width := len(names)
	for _, row := range rows[header+1:] {
		if isBlank(row) {
			continue
		}
		data = append(data, row)
		if len(row) > width {
			width = len(row)
		}
	}

	seen := make(map[string]bool, width)
	for col := 0; col < width; col++ {
		name := cellAt(names, col)
		cells := make([]types.Cell, len(data))
		empty := true
		for i, row := range data {
			v := cellAt(row, col)
			if v == "" {
				cells[i] = types.Missing()
				continue
			}
			cells[i] = types.Text(v)
			empty = false
		}
		if name == "" && empty {
			continue
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(col)
		}
		name = uniqueName(name, seen)
		t.Columns = append(t.Columns, types.NewUntypedColumn(name, cells))
	}

	if opts.IndexCol != "" {
		if err := t.SetIndex(opts.IndexCol); err != nil {
			t.Release()
			return nil, err
		}
	}
	return t, nil
}

// ToRows renders a table as a header row followed by data rows of text.
func ToRows(t *types.Table, includeIndex bool) [][]string {
	cols := columnsOf(t, includeIndex)
	rows := make([][]string, 0, t.NumRows()+1)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}
	rows = append(rows, header)

	for r := 0; r < t.NumRows(); r++ {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.Format(r)
		}
		rows = append(rows, row)
	}
	return rows
}

// ToValues is ToRows for destinations that accept native numbers. Nulls and
// non-finite floats are nil and dates are rendered as YYYY-MM-DD text.
func ToValues(t *types.Table, includeIndex bool) [][]any {
	cols := columnsOf(t, includeIndex)
	rows := make([][]any, 0, t.NumRows()+1)

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}
	rows = append(rows, header)

	for r := 0; r < t.NumRows(); r++ {
		row := make([]any, len(cols))
		for i, c := range cols {
			switch v := c.Value(r).(type) {
			case time.Time:
				row[i] = v.Format(types.DateLayout)
			case float64:
				if math.IsInf(v, 0) || math.IsNaN(v) {
					row[i] = nil
				} else {
					row[i] = v
				}
			default:
				row[i] = v
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func columnsOf(t *types.Table, includeIndex bool) []*types.Column {
	if includeIndex && t.Index != nil {
		return append([]*types.Column{t.Index}, t.Columns...)
	}
	return t.Columns
}

// FindHeaderRow locates the first row that appears to be a header
// by finding the row with the most non-empty text cells
func FindHeaderRow(rows [][]string) int {
	maxNonEmpty := 0
	headerIdx := -1

	searchLimit := len(rows)
	if searchLimit > HeaderSearchLimit {
		searchLimit = HeaderSearchLimit
	}

	for i := 0; i < searchLimit; i++ {
		nonEmptyCount := 0
		hasText := false

		for _, cell := range rows[i] {
			trimmed := strings.TrimSpace(cell)
			if trimmed != "" {
				nonEmptyCount++
				if containsLetters(trimmed) {
					hasText = true
				}
			}
		}

		// Header should have multiple columns AND contain text
		if nonEmptyCount >= 2 && hasText && nonEmptyCount > maxNonEmpty {
			maxNonEmpty = nonEmptyCount
			headerIdx = i
		}
	}

	return headerIdx
}

func containsLetters(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func uniqueName(name string, seen map[string]bool) string {
	candidate := name
	for n := 1; seen[candidate]; n++ {
		candidate = name + "." + strconv.Itoa(n)
	}
	seen[candidate] = true
	return candidate
}
