// Package store defines how tables are read from and written to remote or
// local tabular destinations, and the row shaping every adapter shares.
package store

import (
	"context"
	"errors"

	"github.com/nconklindev/sheetsync/internal/types"
)

var ErrTableNotFound = errors.New("table not found")

// AutoHeader asks ReadRaw to pick the header row heuristically.
const AutoHeader = -1

type ReadOptions struct {
	// HeaderRow is the 0-based row holding column names; rows above it are discarded.
	HeaderRow int `mapstructure:"header_row"`
	// IndexCol names a column to move into Table.Index.
	IndexCol string `mapstructure:"index_col"`
}

type WriteOptions struct {
	IncludeIndex bool
}

// Store reads raw tables and replaces destination tables wholesale.
type Store interface {
	// ReadRaw returns every cell as text. Missing destinations return ErrTableNotFound.
	ReadRaw(ctx context.Context, name string, opts ReadOptions) (*types.Table, error)
	// Write replaces the named table's contents, creating it if absent.
	Write(ctx context.Context, t *types.Table, name string, opts WriteOptions) error
}

// Lister is implemented by stores that can enumerate their tables.
type Lister interface {
	Tables(ctx context.Context) ([]string, error)
}

// Creator is implemented by stores that can create an empty destination.
type Creator interface {
	Create(ctx context.Context, name string) error
}
