package gsheets

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nconklindev/sheetsync/internal/store"
	"github.com/nconklindev/sheetsync/internal/types"
)

type fakeAPI struct {
	sheets  []Worksheet
	values  map[string][][]any
	resized [][2]int64
	err     error
}

func newFake(titles ...string) *fakeAPI {
	f := &fakeAPI{values: map[string][][]any{}}
	for i, title := range titles {
		f.sheets = append(f.sheets, Worksheet{ID: int64(i), Title: title, Rows: DefaultRows, Cols: DefaultCols})
	}
	return f
}

func title(rng string) string {
	rng = strings.TrimSuffix(rng, "!A1")
	return strings.ReplaceAll(strings.Trim(rng, "'"), "''", "'")
}

func (f *fakeAPI) Worksheets(ctx context.Context, id string) ([]Worksheet, error) {
	return f.sheets, f.err
}

func (f *fakeAPI) AddWorksheet(ctx context.Context, id, title string, rows, cols int64) (Worksheet, error) {
	ws := Worksheet{ID: int64(len(f.sheets)), Title: title, Rows: rows, Cols: cols}
	f.sheets = append(f.sheets, ws)
	return ws, nil
}

func (f *fakeAPI) Resize(ctx context.Context, id string, sheetID, rows, cols int64) error {
	f.resized = append(f.resized, [2]int64{rows, cols})
	f.sheets[sheetID].Rows, f.sheets[sheetID].Cols = rows, cols
	return nil
}

func (f *fakeAPI) Clear(ctx context.Context, id, rng string) error {
	delete(f.values, title(rng))
	return nil
}

func (f *fakeAPI) Update(ctx context.Context, id, rng string, values [][]any) error {
	f.values[title(rng)] = values
	return nil
}

func (f *fakeAPI) Values(ctx context.Context, id, rng string) ([][]any, error) {
	return f.values[title(rng)], nil
}

func TestWriteCreatesWorksheet(t *testing.T) {
	api := newFake("Sheet1")
	s := New(api, "sid")

	tbl, err := types.NewTable(
		types.NewIntegerColumn("n", []int64{1, 0}, []bool{true, false}),
		types.NewDateColumn("d", []time.Time{time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), {}}, []bool{true, false}),
	)
	require.NoError(t, err)
	require.NoError(t, s.Write(context.Background(), tbl, "Bob's data", store.WriteOptions{}))

	require.Len(t, api.sheets, 2)
	added := api.sheets[1]
	assert.Equal(t, "Bob's data", added.Title)
	assert.Equal(t, int64(DefaultRows), added.Rows)
	assert.Equal(t, int64(DefaultCols), added.Cols)
	assert.Empty(t, api.resized)

	assert.Equal(t, [][]any{
		{"n", "d"},
		{int64(1), "2024-01-31"},
		{"", ""},
	}, api.values["Bob's data"])
}

func TestWriteGrowsWorksheet(t *testing.T) {
	api := newFake("Data")
	s := New(api, "sid")

	n := 150
	values := make([]int64, n)
	tbl, err := types.NewTable(types.NewIntegerColumn("n", values, nil))
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), tbl, "Data", store.WriteOptions{}))
	assert.Equal(t, [][2]int64{{int64(n + 1), DefaultCols}}, api.resized)
}

func TestReadRaw(t *testing.T) {
	api := newFake("Data")
	api.values["Data"] = [][]any{
		{"id", "amount", "when"},
		{"a", "1,200", "2024-01-01"},
		{"b"},
	}
	s := New(api, "sid")

	got, err := s.ReadRaw(context.Background(), "Data", store.ReadOptions{IndexCol: "id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"amount", "when"}, got.Names())
	amount, err := got.Column("amount")
	require.NoError(t, err)
	assert.Equal(t, "1,200", amount.Format(0))
	assert.True(t, amount.IsNull(1))

	first, err := s.ReadRaw(context.Background(), "", store.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, first.NumCols())
}

func TestReadMissingAndCreate(t *testing.T) {
	api := newFake("Sheet1")
	s := New(api, "sid")
	ctx := context.Background()

	_, err := s.ReadRaw(ctx, "New", store.ReadOptions{})
	assert.ErrorIs(t, err, store.ErrTableNotFound)

	require.NoError(t, s.Create(ctx, "New"))
	require.NoError(t, s.Create(ctx, "New"))
	assert.Len(t, api.sheets, 2)

	got, err := s.ReadRaw(ctx, "New", store.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumCols())
}

func TestErrorsPropagate(t *testing.T) {
	boom := errors.New("unauthorized")
	api := newFake()
	api.err = boom
	s := New(api, "sid")

	_, err := s.ReadRaw(context.Background(), "x", store.ReadOptions{})
	assert.ErrorIs(t, err, boom)

	tbl, err := types.NewTable(types.UntypedStrings("a", "1"))
	require.NoError(t, err)
	assert.ErrorIs(t, s.Write(context.Background(), tbl, "x", store.WriteOptions{}), boom)
}

func TestQuoteTitle(t *testing.T) {
	assert.Equal(t, "'it''s'", quoteTitle("it's"))
}

func TestTables(t *testing.T) {
	s := New(newFake("Sheet1", "Hours"), "sid")

	titles, err := s.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1", "Hours"}, titles)
}
