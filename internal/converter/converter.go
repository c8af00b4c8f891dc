package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/sheetsync/internal/infer"
	"github.com/nconklindev/sheetsync/internal/store"
	"github.com/nconklindev/sheetsync/internal/store/arrowfile"
	"github.com/nconklindev/sheetsync/internal/store/csvdir"
	"github.com/nconklindev/sheetsync/internal/store/xlsx"
	"github.com/nconklindev/sheetsync/internal/types"
)

// AllowedTypes lists the file extensions ReadFile and WriteFile understand.
var AllowedTypes = []string{".csv", ".xlsx", ".feather", ".arrow", ".parquet"}

// Supported reports whether the file extension is one of AllowedTypes.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, t := range AllowedTypes {
		if ext == t {
			return true
		}
	}
	return false
}

// OutputPath names the converted file next to the input, with the extension
// of the requested output type.
func OutputPath(input, ext string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "_converted" + ext
}

// ReadFile reads the first sheet or table of a file. CSV and XLSX come back
// untyped; Feather and Parquet keep the kinds they were written with.
func ReadFile(ctx context.Context, path string, opts store.ReadOptions) (*types.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".csv":
		rows, err := csvdir.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("empty file")
		}
		return store.FromRows(rows, opts)
	case ".xlsx":
		return xlsx.New(path).ReadRaw(ctx, "", opts)
	}

	if format, ok := arrowfile.FormatForPath(path); ok {
		t, err := arrowfile.ReadFile(ctx, path, format)
		if err != nil {
			return nil, err
		}
		if opts.IndexCol != "" && t.Index == nil {
			if err := t.SetIndex(opts.IndexCol); err != nil {
				t.Release()
				return nil, err
			}
		}
		return t, nil
	}
	return nil, fmt.Errorf("unsupported file type: %s", ext)
}

// WriteFile writes t, index first, in the format given by the extension.
func WriteFile(ctx context.Context, path string, t *types.Table) error {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".csv":
		return csvdir.WriteFile(path, store.ToRows(t, true))
	case ".xlsx":
		return xlsx.New(path).Write(ctx, t, "", store.WriteOptions{IncludeIndex: true})
	}

	if format, ok := arrowfile.FormatForPath(path); ok {
		return arrowfile.WriteFile(path, t, format)
	}
	return fmt.Errorf("unsupported file type: %s", ext)
}

// Preview infers kinds for a table without writing anything.
func Preview(t *types.Table, inf infer.Inferer) (*infer.Result, error) {
	return inf.Infer(t)
}

// ConvertFile reads inputFile, infers every column and writes the typed
// table to outputFile. Progress in [0, 1] is sent without blocking.
func ConvertFile(ctx context.Context, inputFile, outputFile string, opts store.ReadOptions, inf infer.Inferer, progressChan chan<- float64) (*types.ConversionResult, error) {
	report := func(p float64) {
		if progressChan != nil {
			select {
			case progressChan <- p:
			default:
			}
		}
	}

	in, err := ReadFile(ctx, inputFile, opts)
	if err != nil {
		return nil, err
	}
	defer in.Release()
	report(0.1)

	out := &types.Table{Columns: make([]*types.Column, 0, in.NumCols())}
	if in.Index != nil {
		in.Index.Retain()
		out.Index = in.Index
	}
	defer out.Release()

	summaries := make([]types.ColumnSummary, 0, in.NumCols())
	var errs []error
	for i, c := range in.Columns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nc, r, err := inf.InferColumn(c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out.Columns = append(out.Columns, nc)
		summaries = append(summaries, types.ColumnSummary{Name: r.Name, Kind: r.To, Parsed: r.Parsed, Nulls: r.Nulls})
		report(0.1 + 0.8*float64(i+1)/float64(len(in.Columns)))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := WriteFile(ctx, outputFile, out); err != nil {
		return nil, err
	}
	report(1)

	result := &types.ConversionResult{
		InputFile:     inputFile,
		OutputFile:    outputFile,
		Columns:       summaries,
		RowsProcessed: out.NumRows(),
	}
	if info, err := os.Stat(outputFile); err == nil {
		result.OutputBytes = info.Size()
	}
	return result, nil
}
