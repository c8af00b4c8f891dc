package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/nconklindev/sheetsync/internal/infer"
	"github.com/nconklindev/sheetsync/internal/types"
)

const previewRows = 10

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	nullStyle   = cellStyle.Foreground(lipgloss.Color("#626262"))
)

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")))
}

// renderReports prints one row per inference decision.
func renderReports(w io.Writer, reports []infer.ColumnReport) {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		layout := r.Layout
		if layout == "" {
			layout = "-"
		}
		rows = append(rows, []string{
			r.Name,
			r.From.String(),
			r.To.String(),
			fmt.Sprintf("%d/%d", r.Parsed, r.Total),
			strconv.Itoa(r.Nulls),
			layout,
		})
	}

	t := newTable().
		Headers("COLUMN", "FROM", "TO", "PARSED", "NULLS", "LAYOUT").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

// renderPreview prints the first rows of t with the index, if any, first.
func renderPreview(w io.Writer, t *types.Table) {
	cols := t.Columns
	if t.Index != nil {
		cols = append([]*types.Column{t.Index}, cols...)
	}
	if len(cols) == 0 {
		fmt.Fprintln(w, "(empty table)")
		return
	}

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = fmt.Sprintf("%s (%s)", c.Name, c.Kind)
	}

	n := min(t.NumRows(), previewRows)
	rows := make([][]string, n)
	for r := 0; r < n; r++ {
		rows[r] = make([]string, len(cols))
		for i, c := range cols {
			rows[r][i] = c.Format(r)
		}
	}

	tbl := newTable().
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if cols[col].IsNull(row) {
				return nullStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, tbl.Render())
	if t.NumRows() > n {
		fmt.Fprintf(w, "... %s more rows\n", humanize.Comma(int64(t.NumRows()-n)))
	}
}

func renderConversion(w io.Writer, res *types.ConversionResult) {
	fmt.Fprintf(w, "Converted %s -> %s\n", res.InputFile, res.OutputFile)
	fmt.Fprintf(w, "Rows: %s  Size: %s\n", humanize.Comma(int64(res.RowsProcessed)), humanize.Bytes(uint64(res.OutputBytes)))
	for _, c := range res.Columns {
		fmt.Fprintf(w, "  %-24s %-8s parsed %s, nulls %s\n", c.Name, c.Kind, humanize.Comma(int64(c.Parsed)), humanize.Comma(int64(c.Nulls)))
	}
}
