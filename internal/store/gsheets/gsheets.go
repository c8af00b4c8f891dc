// Package gsheets reads and writes worksheets of one Google Sheets
// spreadsheet. Each worksheet title is a table name.
package gsheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/nconklindev/sheetsync/internal/store"
	"github.com/nconklindev/sheetsync/internal/types"
)

// New worksheets start at this size and grow when a write needs more room.
const (
	DefaultRows = 100
	DefaultCols = 20
)

type Worksheet struct {
	ID    int64
	Title string
	Rows  int64
	Cols  int64
}

// API is the subset of the Sheets service the store relies on.
type API interface {
	Worksheets(ctx context.Context, spreadsheetID string) ([]Worksheet, error)
	AddWorksheet(ctx context.Context, spreadsheetID, title string, rows, cols int64) (Worksheet, error)
	Resize(ctx context.Context, spreadsheetID string, sheetID, rows, cols int64) error
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
	// Values returns cells as displayed, with formulas evaluated.
	Values(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
}

type Store struct {
	api           API
	spreadsheetID string
}

func New(api API, spreadsheetID string) *Store {
	return &Store{api: api, spreadsheetID: spreadsheetID}
}

func (s *Store) lookup(ctx context.Context, name string) (Worksheet, bool, error) {
	sheets, err := s.api.Worksheets(ctx, s.spreadsheetID)
	if err != nil {
		return Worksheet{}, false, fmt.Errorf("failed to list worksheets: %w", err)
	}
	if name == "" && len(sheets) > 0 {
		return sheets[0], true, nil
	}
	for _, ws := range sheets {
		if ws.Title == name {
			return ws, true, nil
		}
	}
	return Worksheet{}, false, nil
}

// Tables lists worksheet titles in tab order.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	sheets, err := s.api.Worksheets(ctx, s.spreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list worksheets: %w", err)
	}
	titles := make([]string, len(sheets))
	for i, ws := range sheets {
		titles[i] = ws.Title
	}
	return titles, nil
}

// open returns the named worksheet, adding it at the default size when absent.
func (s *Store) open(ctx context.Context, name string) (Worksheet, error) {
	ws, ok, err := s.lookup(ctx, name)
	if err != nil || ok {
		return ws, err
	}
	if name == "" {
		return Worksheet{}, fmt.Errorf("spreadsheet %s has no worksheets", s.spreadsheetID)
	}
	ws, err = s.api.AddWorksheet(ctx, s.spreadsheetID, name, DefaultRows, DefaultCols)
	if err != nil {
		return Worksheet{}, fmt.Errorf("failed to add worksheet %q: %w", name, err)
	}
	return ws, nil
}

func (s *Store) ReadRaw(ctx context.Context, name string, opts store.ReadOptions) (*types.Table, error) {
	ws, ok, err := s.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: worksheet %q", store.ErrTableNotFound, name)
	}

	values, err := s.api.Values(ctx, s.spreadsheetID, quoteTitle(ws.Title))
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", ws.Title, err)
	}

	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			if v != nil {
				rows[i][j] = fmt.Sprint(v)
			}
		}
	}
	return store.FromRows(rows, opts)
}

// Write clears the worksheet and writes the table from A1, growing the grid
// first when the table does not fit.
func (s *Store) Write(ctx context.Context, t *types.Table, name string, opts store.WriteOptions) error {
	ws, err := s.open(ctx, name)
	if err != nil {
		return err
	}

	values := store.ToValues(t, opts.IncludeIndex)
	for _, row := range values {
		for i, v := range row {
			if v == nil {
				row[i] = ""
			}
		}
	}

	rows, cols := int64(len(values)), int64(0)
	if rows > 0 {
		cols = int64(len(values[0]))
	}
	if rows > ws.Rows || cols > ws.Cols {
		if err := s.api.Resize(ctx, s.spreadsheetID, ws.ID, max(rows, ws.Rows), max(cols, ws.Cols)); err != nil {
			return fmt.Errorf("failed to resize worksheet %q: %w", ws.Title, err)
		}
	}

	if err := s.api.Clear(ctx, s.spreadsheetID, quoteTitle(ws.Title)); err != nil {
		return fmt.Errorf("failed to clear worksheet %q: %w", ws.Title, err)
	}
	if err := s.api.Update(ctx, s.spreadsheetID, quoteTitle(ws.Title)+"!A1", values); err != nil {
		return fmt.Errorf("failed to update worksheet %q: %w", ws.Title, err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, name string) error {
	_, err := s.open(ctx, name)
	return err
}

func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
