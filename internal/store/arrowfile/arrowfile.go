// Package arrowfile keeps tables as Feather (Arrow IPC file) or Parquet files
// in a directory. Column kinds survive the round trip, so ReadTyped hands back
// the same table that was written.
package arrowfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/nconklindev/sheetsync/internal/store"
	"github.com/nconklindev/sheetsync/internal/types"
)

type Format int

const (
	FormatFeather Format = iota
	FormatParquet
)

func (f Format) String() string {
	if f == FormatParquet {
		return "parquet"
	}
	return "feather"
}

func (f Format) Ext() string {
	if f == FormatParquet {
		return ".parquet"
	}
	return ".feather"
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "feather", "arrow", "ipc":
		return FormatFeather, nil
	case "parquet":
		return FormatParquet, nil
	default:
		return FormatFeather, fmt.Errorf("unknown arrow file format: %s", s)
	}
}

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".feather", ".arrow", ".ipc":
		return FormatFeather, true
	case ".parquet":
		return FormatParquet, true
	default:
		return FormatFeather, false
	}
}

type Store struct {
	Dir    string
	Format Format
}

func New(dir string, format Format) *Store {
	return &Store{Dir: dir, Format: format}
}

func (s *Store) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid table name %q", name)
	}
	return filepath.Join(s.Dir, name+s.Format.Ext()), nil
}

// Tables lists the table names stored in the directory's format, sorted.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ext := s.Format.Ext()
	matches, err := filepath.Glob(filepath.Join(s.Dir, "*"+ext))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = strings.TrimSuffix(filepath.Base(m), ext)
	}
	return names, nil
}

// ReadTyped returns the table with the kinds it was written with.
func (s *Store) ReadTyped(ctx context.Context, name string) (*types.Table, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	t, err := ReadFile(ctx, path, s.Format)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", store.ErrTableNotFound, name)
	}
	return t, err
}

// ReadRaw stringifies a typed read so the table can go through inference again.
func (s *Store) ReadRaw(ctx context.Context, name string, opts store.ReadOptions) (*types.Table, error) {
	t, err := s.ReadTyped(ctx, name)
	if err != nil {
		return nil, err
	}
	defer t.Release()
	return store.FromRows(store.ToRows(t, true), opts)
}

func (s *Store) Write(ctx context.Context, t *types.Table, name string, opts store.WriteOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}
	if !opts.IncludeIndex {
		t = &types.Table{Columns: t.Columns}
	}
	return WriteFile(path, t, s.Format)
}

// ReadFile loads a whole Feather or Parquet file into one table.
func ReadFile(ctx context.Context, path string, format Format) (*types.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mem := memory.DefaultAllocator
	var rec arrow.Record
	switch format {
	case FormatParquet:
		rec, err = readParquet(ctx, f, mem)
	default:
		rec, err = readFeather(f, mem)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer rec.Release()
	return types.FromRecord(rec)
}

func readFeather(f *os.File, mem memory.Allocator) (arrow.Record, error) {
	r, err := ipc.NewFileReader(f, ipc.WithAllocator(mem))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	recs := make([]arrow.Record, 0, r.NumRecords())
	defer func() {
		for _, rec := range recs {
			rec.Release()
		}
	}()
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.RecordAt(i)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	columns := make([][]arrow.Array, r.Schema().NumFields())
	for _, rec := range recs {
		for i := range columns {
			columns[i] = append(columns[i], rec.Column(i))
		}
	}
	return combine(r.Schema(), columns, mem)
}

func readParquet(ctx context.Context, f *os.File, mem memory.Allocator) (arrow.Record, error) {
	tbl, err := pqarrow.ReadTable(ctx, f, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, err
	}
	defer tbl.Release()

	columns := make([][]arrow.Array, tbl.NumCols())
	for i := range columns {
		columns[i] = tbl.Column(i).Data().Chunks()
	}
	return combine(tbl.Schema(), columns, mem)
}

// combine concatenates the chunks of each column into a single record.
func combine(schema *arrow.Schema, columns [][]arrow.Array, mem memory.Allocator) (arrow.Record, error) {
	arrays := make([]arrow.Array, len(columns))
	defer func() {
		for _, a := range arrays {
			if a != nil {
				a.Release()
			}
		}
	}()

	rows := int64(-1)
	for i, chunks := range columns {
		switch len(chunks) {
		case 0:
			b := array.NewBuilder(mem, schema.Field(i).Type)
			arrays[i] = b.NewArray()
			b.Release()
		case 1:
			chunks[0].Retain()
			arrays[i] = chunks[0]
		default:
			arr, err := array.Concatenate(chunks, mem)
			if err != nil {
				return nil, err
			}
			arrays[i] = arr
		}
		rows = int64(arrays[i].Len())
	}
	if rows < 0 {
		rows = 0
	}
	return array.NewRecord(schema, arrays, rows), nil
}

// WriteFile writes the table, index included, to a temporary file that is
// renamed over path once complete.
func WriteFile(path string, t *types.Table, format Format) error {
	rec := t.Record()
	defer rec.Release()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	switch format {
	case FormatParquet:
		err = writeParquet(tmp, rec)
	default:
		err = writeFeather(tmp, rec)
	}
	if cerr := tmp.Close(); err == nil && cerr != nil && !errors.Is(cerr, os.ErrClosed) {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func writeFeather(f *os.File, rec arrow.Record) error {
	w, err := ipc.NewFileWriter(f, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return err
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// writeParquet closes f through the parquet writer.
func writeParquet(f *os.File, rec arrow.Record) error {
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	w, err := pqarrow.NewFileWriter(rec.Schema(), f, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
