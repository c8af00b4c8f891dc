package csvdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nconklindev/sheetsync/internal/store"
	"github.com/nconklindev/sheetsync/internal/types"
)

func TestWriteThenRead(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "tables"))

	tbl, err := types.NewTable(
		types.NewIntegerColumn("n", []int64{1, 2}, []bool{true, false}),
		types.NewTextColumn("note", []types.Cell{types.Text("a, b"), types.Text("\"q\"")}),
	)
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, tbl, "people", store.WriteOptions{}))

	raw, err := os.ReadFile(filepath.Join(s.Dir, "people.csv"))
	require.NoError(t, err)
	assert.Equal(t, "n,note\n1,\"a, b\"\n,\"\"\"q\"\"\"\n", string(raw))

	got, err := s.ReadRaw(ctx, "people", store.ReadOptions{})
	require.NoError(t, err)
	n, err := got.Column("n")
	require.NoError(t, err)
	assert.Equal(t, "1", n.Format(0))
	assert.True(t, n.IsNull(1))

	names, err := s.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"people"}, names)
}

func TestReadMissingAndCreate(t *testing.T) {
	ctx := context.Background()
	s := New(t.TempDir())

	_, err := s.ReadRaw(ctx, "absent", store.ReadOptions{})
	assert.ErrorIs(t, err, store.ErrTableNotFound)

	require.NoError(t, s.Create(ctx, "absent"))
	got, err := s.ReadRaw(ctx, "absent", store.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumCols())

	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "kept.csv"), []byte("a\n1\n"), 0644))
	require.NoError(t, s.Create(ctx, "kept"))
	got, err = s.ReadRaw(ctx, "kept", store.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumRows())
}

func TestRaggedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "r.csv"), []byte("title\nA,B\n1,2\n"), 0644))

	got, err := New(dir).ReadRaw(context.Background(), "r", store.ReadOptions{HeaderRow: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got.Names())
}

func TestInvalidName(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.ReadRaw(context.Background(), "../x", store.ReadOptions{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrTableNotFound)
}
