// Package xlsx stores tables as worksheets of a single Excel workbook.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/nconklindev/sheetsync/internal/store"
	"github.com/nconklindev/sheetsync/internal/types"
)

const defaultSheet = "Sheet1"

// Store is a workbook on disk. An empty table name refers to the first sheet.
type Store struct {
	Path string

	mu sync.Mutex
}

func New(path string) *Store {
	return &Store{Path: path}
}

func (s *Store) ReadRaw(ctx context.Context, name string, opts store.ReadOptions) (*types.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", store.ErrTableNotFound, s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := s.sheetName(f, name)
	if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
		return nil, fmt.Errorf("%w: sheet %q", store.ErrTableNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return store.FromRows(rows, opts)
}

// Write fills a temporary sheet and then swaps it in for the target, so a
// failed write leaves the previous contents in place.
func (s *Store) Write(ctx context.Context, t *types.Table, name string, opts store.WriteOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, fresh, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := s.sheetName(f, name)
	if fresh && name == "" {
		sheet = defaultSheet
	}

	tmp := "tmp_" + uuid.NewString()[:8]
	if _, err := f.NewSheet(tmp); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	for i, row := range store.ToValues(t, opts.IncludeIndex) {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(tmp, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if idx, _ := f.GetSheetIndex(sheet); idx != -1 {
		if err := f.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("failed to replace sheet %q: %w", sheet, err)
		}
	}
	if fresh && sheet != defaultSheet {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return err
		}
	}
	if err := f.SetSheetName(tmp, sheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	idx, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(idx)

	return s.save(f)
}

// Create adds an empty sheet, creating the workbook when needed.
func (s *Store) Create(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, fresh, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if name == "" {
		if !fresh {
			return nil
		}
		name = defaultSheet
	}
	if idx, _ := f.GetSheetIndex(name); idx != -1 {
		if !fresh {
			return nil
		}
		return s.save(f)
	}
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}
	if fresh {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return err
		}
	}
	return s.save(f)
}

// Tables lists the workbook's sheet names in order. A missing workbook has none.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func (s *Store) open() (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open workbook: %w", err)
	}
	return f, false, nil
}

func (s *Store) sheetName(f *excelize.File, name string) string {
	if name != "" {
		return name
	}
	return f.GetSheetName(0)
}

// save writes next to the target and renames over it.
func (s *Store) save(f *excelize.File) error {
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp := s.Path + ".tmp-" + uuid.NewString()[:8] + ".xlsx"
	if err := f.SaveAs(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace workbook: %w", err)
	}
	return nil
}
