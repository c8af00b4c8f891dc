package manager

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nconklindev/sheetsync/internal/infer"
	"github.com/nconklindev/sheetsync/internal/store"
	"github.com/nconklindev/sheetsync/internal/store/csvdir"
	"github.com/nconklindev/sheetsync/internal/types"
)

// readOnly hides the Creator implementation of the wrapped store.
type readOnly struct {
	store.Store
}

type failing struct{ err error }

func (f failing) ReadRaw(context.Context, string, store.ReadOptions) (*types.Table, error) {
	return nil, f.err
}

func (f failing) Write(context.Context, *types.Table, string, store.WriteOptions) error {
	return f.err
}

func fast(t *testing.T) infer.Inferer {
	t.Helper()
	inf, err := infer.New(infer.PolicyFast, infer.DefaultConfig())
	require.NoError(t, err)
	return inf
}

func TestUploadThenDownload(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	m := New(csvdir.New(t.TempDir()), fast(t), logger)

	in, err := types.NewTable(
		types.UntypedStrings("qty", "1", "2", "3"),
		types.UntypedStrings("day", "2024-01-01", "2024-01-02", "2024-01-03"),
		types.UntypedStrings("who", "a", "b", "c"),
	)
	require.NoError(t, err)
	in.Index = types.UntypedStrings("id", "x", "y", "z")

	require.NoError(t, m.Upload(ctx, in, "report", true))
	assert.Equal(t, "Uploaded table", hook.LastEntry().Message)
	assert.Equal(t, "report", hook.LastEntry().Data["table"])

	res, err := m.Download(ctx, "report", DownloadOptions{IndexCol: "id", AutoConvert: true})
	require.NoError(t, err)
	defer res.Table.Release()

	kinds := map[string]types.Kind{}
	for _, c := range res.Table.Columns {
		kinds[c.Name] = c.Kind
	}
	assert.Equal(t, map[string]types.Kind{
		"qty": types.KindInteger,
		"day": types.KindDate,
		"who": types.KindUntyped,
	}, kinds)
	require.NotNil(t, res.Table.Index)
	assert.Equal(t, types.KindUntyped, res.Table.Index.Kind)
	assert.Len(t, res.Columns, 3)
}

func TestDownloadWithoutConversion(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	s := csvdir.New(t.TempDir())
	m := New(s, fast(t), logger)

	in, err := types.NewTable(types.UntypedStrings("n", "1"))
	require.NoError(t, err)
	require.NoError(t, m.Upload(ctx, in, "t", false))

	res, err := m.Download(ctx, "t", DownloadOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Columns)
	c, err := res.Table.Column("n")
	require.NoError(t, err)
	assert.Equal(t, types.KindUntyped, c.Kind)
}

func TestDownloadCreatesMissing(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	s := csvdir.New(t.TempDir())
	m := New(s, fast(t), logger)

	res, err := m.Download(ctx, "fresh", DefaultDownloadOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Table.NumCols())
	assert.Equal(t, "Created missing table", hook.LastEntry().Message)

	names, err := s.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, names)
}

func TestDownloadMissingWithoutCreator(t *testing.T) {
	logger, hook := test.NewNullLogger()
	m := New(readOnly{csvdir.New(t.TempDir())}, fast(t), logger)

	res, err := m.Download(context.Background(), "gone", DefaultDownloadOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Table.NumRows())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestErrorsPropagate(t *testing.T) {
	boom := errors.New("permission denied")
	m := New(failing{boom}, fast(t), nil)

	_, err := m.Download(context.Background(), "x", DefaultDownloadOptions())
	assert.ErrorIs(t, err, boom)

	tbl, err := types.NewTable(types.UntypedStrings("a", "1"))
	require.NoError(t, err)
	assert.ErrorIs(t, m.Upload(context.Background(), tbl, "x", false), boom)
}

func TestStrictDownloadFails(t *testing.T) {
	ctx := context.Background()
	cfg := infer.DefaultConfig()
	cfg.Mode = infer.ModeStrict
	inf, err := infer.New(infer.PolicyFast, cfg)
	require.NoError(t, err)

	s := csvdir.New(t.TempDir())
	m := New(s, inf, nil)

	in, err := types.NewTable(types.UntypedStrings("n", "1", "2", "3", "4", "oops"))
	require.NoError(t, err)
	require.NoError(t, m.Upload(ctx, in, "t", false))

	_, err = m.Download(ctx, "t", DefaultDownloadOptions())
	var ce *infer.CoercionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "oops", ce.Value)
	assert.ErrorIs(t, err, infer.ErrUnparseable)
}
