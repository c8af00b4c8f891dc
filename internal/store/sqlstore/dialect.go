package sqlstore

import (
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/nconklindev/sheetsync/internal/types"
)

type dialect struct {
	name        string
	quoteChar   string
	numbered    bool
	existsQuery string
	listQuery   string
	renameStmt  string
	columnTypes map[types.Kind]string
}

var dialects = map[string]*dialect{
	"sqlite": {
		name:        "sqlite",
		quoteChar:   `"`,
		existsQuery: "SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
		listQuery:   "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name",
		renameStmt:  "ALTER TABLE %s RENAME TO %s",
		columnTypes: map[types.Kind]string{
			types.KindUntyped: "TEXT",
			types.KindText:    "TEXT",
			types.KindInteger: "INTEGER",
			types.KindFloat:   "REAL",
			types.KindDate:    "TEXT",
		},
	},
	"mysql": {
		name:        "mysql",
		quoteChar:   "`",
		existsQuery: "SELECT count(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?",
		listQuery:   "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE' ORDER BY table_name",
		renameStmt:  "RENAME TABLE %s TO %s",
		columnTypes: map[types.Kind]string{
			types.KindUntyped: "TEXT",
			types.KindText:    "TEXT",
			types.KindInteger: "BIGINT",
			types.KindFloat:   "DOUBLE",
			types.KindDate:    "DATE",
		},
	},
	"postgres": {
		name:        "postgres",
		quoteChar:   `"`,
		numbered:    true,
		existsQuery: "SELECT count(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1",
		listQuery:   "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name",
		renameStmt:  "ALTER TABLE %s RENAME TO %s",
		columnTypes: map[types.Kind]string{
			types.KindUntyped: "TEXT",
			types.KindText:    "TEXT",
			types.KindInteger: "BIGINT",
			types.KindFloat:   "DOUBLE PRECISION",
			types.KindDate:    "DATE",
		},
	},
}

func lookupDialect(driver string) (*dialect, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return dialects["sqlite"], nil
	case "mysql", "MySQL":
		return dialects["mysql"], nil
	case "postgres", "Postgres", "PostgreSQL":
		return dialects["postgres"], nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// driverName is the database/sql registration name for the dialect.
func (d *dialect) driverName() string {
	return d.name
}

func (d *dialect) quoteIdentifier(name string) string {
	return d.quoteChar + strings.ReplaceAll(name, d.quoteChar, d.quoteChar+d.quoteChar) + d.quoteChar
}

func (d *dialect) placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		if d.numbered {
			ph[i] = fmt.Sprintf("$%d", i+1)
		} else {
			ph[i] = "?"
		}
	}
	return strings.Join(ph, ", ")
}

func (d *dialect) createTable(name string, cols []*types.Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = d.quoteIdentifier(c.Name) + " " + d.columnTypes[c.Kind]
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", d.quoteIdentifier(name), strings.Join(defs, ", "))
}

func (d *dialect) insert(name string, cols []*types.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = d.quoteIdentifier(c.Name)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.quoteIdentifier(name), strings.Join(names, ", "), d.placeholders(len(cols)))
}

func (d *dialect) rename(from, to string) string {
	return fmt.Sprintf(d.renameStmt, d.quoteIdentifier(from), d.quoteIdentifier(to))
}
