// Package sqlstore keeps tables in a relational database reached through
// database/sql. SQLite, MySQL and PostgreSQL are supported.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nconklindev/sheetsync/internal/store"
	"github.com/nconklindev/sheetsync/internal/types"
)

var ErrNoColumns = errors.New("table has no columns")

type Store struct {
	db      *sql.DB
	dialect *dialect
}

// Open connects with the named driver and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", d.name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", d.name, err)
	}
	return &Store{db: db, dialect: d}, nil
}

// New wraps an existing connection.
func New(db *sql.DB, driver string) (*Store, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, dialect: d}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) exists(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, name string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, s.dialect.existsQuery, name).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return n > 0, nil
}

// Tables lists base tables in the current schema.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.listQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (s *Store) ReadRaw(ctx context.Context, name string, opts store.ReadOptions) (*types.Table, error) {
	ok, err := s.exists(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrTableNotFound, name)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+s.dialect.quoteIdentifier(name))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	records := [][]string{columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		record := make([]string, len(columns))
		for i, v := range values {
			record[i] = stringify(v)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return store.FromRows(records, opts)
}

// Write loads the table into a fresh tmp_<uuid> table and renames it over
// the target inside one transaction. MySQL commits DDL implicitly, so there
// the swap is only as atomic as RENAME TABLE.
func (s *Store) Write(ctx context.Context, t *types.Table, name string, opts store.WriteOptions) error {
	cols := t.Columns
	if opts.IncludeIndex && t.Index != nil {
		cols = append([]*types.Column{t.Index}, cols...)
	}
	if len(cols) == 0 {
		return fmt.Errorf("failed to write %s: %w", name, ErrNoColumns)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	tmp := "tmp_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := tx.ExecContext(ctx, s.dialect.createTable(tmp, cols)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.dialect.insert(tmp, cols))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, row := range store.ToValues(t, opts.IncludeIndex)[1:] {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}

	ok, err := s.exists(ctx, tx, name)
	if err != nil {
		return err
	}
	if ok {
		if _, err := tx.ExecContext(ctx, "DROP TABLE "+s.dialect.quoteIdentifier(name)); err != nil {
			return fmt.Errorf("failed to drop %s: %w", name, err)
		}
	}
	if _, err := tx.ExecContext(ctx, s.dialect.rename(tmp, name)); err != nil {
		return fmt.Errorf("failed to rename table: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(types.DateLayout)
		}
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
