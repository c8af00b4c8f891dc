package xlsx

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nconklindev/sheetsync/internal/store"
	"github.com/nconklindev/sheetsync/internal/types"
)

func sample(t *testing.T) *types.Table {
	t.Helper()
	tbl, err := types.NewTable(
		types.NewIntegerColumn("qty", []int64{3, 0}, []bool{true, false}),
		types.NewFloatColumn("price", []float64{1.25, 2}, nil),
		types.NewDateColumn("day", []time.Time{time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), {}}, []bool{true, false}),
	)
	require.NoError(t, err)
	return tbl
}

func cellsOf(t *testing.T, tbl *types.Table, name string) []string {
	t.Helper()
	c, err := tbl.Column(name)
	require.NoError(t, err)
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.Format(i)
	}
	return out
}

func TestWriteThenRead(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "book.xlsx"))

	require.NoError(t, s.Write(ctx, sample(t), "Orders", store.WriteOptions{}))

	sheets, err := s.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Orders"}, sheets)

	got, err := s.ReadRaw(ctx, "Orders", store.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"qty", "price", "day"}, got.Names())
	assert.Equal(t, []string{"3", ""}, cellsOf(t, got, "qty"))
	assert.Equal(t, []string{"1.25", "2"}, cellsOf(t, got, "price"))
	assert.Equal(t, []string{"2024-02-29", ""}, cellsOf(t, got, "day"))
	for _, c := range got.Columns {
		assert.Equal(t, types.KindUntyped, c.Kind)
	}
}

func TestWriteReplacesContents(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "book.xlsx"))

	require.NoError(t, s.Write(ctx, sample(t), "Data", store.WriteOptions{}))
	require.NoError(t, s.Write(ctx, sample(t), "Other", store.WriteOptions{}))

	small, err := types.NewTable(types.UntypedStrings("only", "x"))
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, small, "Data", store.WriteOptions{}))

	got, err := s.ReadRaw(ctx, "Data", store.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, got.Names())
	assert.Equal(t, 1, got.NumRows())

	sheets, err := s.Tables(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Data", "Other"}, sheets)
}

func TestWriteIncludeIndex(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "book.xlsx"))

	tbl, err := types.NewTable(types.UntypedStrings("v", "1", "2"))
	require.NoError(t, err)
	tbl.Index = types.UntypedStrings("id", "a", "b")
	require.NoError(t, s.Write(ctx, tbl, "", store.WriteOptions{IncludeIndex: true}))

	got, err := s.ReadRaw(ctx, "", store.ReadOptions{IndexCol: "id"})
	require.NoError(t, err)
	require.NotNil(t, got.Index)
	assert.Equal(t, "a", got.Index.Format(0))
	assert.Equal(t, []string{"v"}, got.Names())
}

func TestReadMissing(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "book.xlsx"))

	_, err := s.ReadRaw(ctx, "Nope", store.ReadOptions{})
	assert.ErrorIs(t, err, store.ErrTableNotFound)

	require.NoError(t, s.Create(ctx, "Here"))
	_, err = s.ReadRaw(ctx, "Nope", store.ReadOptions{})
	assert.ErrorIs(t, err, store.ErrTableNotFound)

	got, err := s.ReadRaw(ctx, "Here", store.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumCols())
}

func TestReadAutoHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Weekly report"))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"Employee", "Hours"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"Ann", 7.5}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := New(path).ReadRaw(context.Background(), "", store.ReadOptions{HeaderRow: store.AutoHeader})
	require.NoError(t, err)
	assert.Equal(t, []string{"Employee", "Hours"}, got.Names())
	assert.Equal(t, []string{"7.5"}, cellsOf(t, got, "Hours"))
}

func TestTablesMissingWorkbook(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "none.xlsx"))

	sheets, err := s.Tables(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sheets)
}
