package types

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

var (
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrRaggedColumns   = errors.New("columns have different lengths")
	ErrColumnNotFound  = errors.New("column not found")
)

const (
	kindKey   = "sheetsync.kind"
	layoutKey = "sheetsync.layout"
	indexKey  = "sheetsync.index"

	DateLayout = "2006-01-02"
)

// Column is a named, homogeneously typed sequence of cells. Textual kinds
// are stored as Arrow string arrays where null is the missing marker.
type Column struct {
	Name   string
	Kind   Kind
	Data   arrow.Array
	Layout string
}

func NewColumn(name string, kind Kind, data arrow.Array) *Column {
	return &Column{Name: name, Kind: kind, Data: data}
}

// NewUntypedColumn builds a raw string column from cells.
func NewUntypedColumn(name string, cells []Cell) *Column {
	return newStringColumn(name, KindUntyped, cells)
}

// NewTextColumn builds a column already declared as text.
func NewTextColumn(name string, cells []Cell) *Column {
	return newStringColumn(name, KindText, cells)
}

// UntypedStrings is a shorthand for an untyped column without missing cells.
func UntypedStrings(name string, values ...string) *Column {
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = Text(v)
	}
	return NewUntypedColumn(name, cells)
}

func newStringColumn(name string, kind Kind, cells []Cell) *Column {
	b := array.NewStringBuilder(memory.DefaultAllocator)
	defer b.Release()
	b.Reserve(len(cells))
	for _, c := range cells {
		if c.Missing {
			b.AppendNull()
			continue
		}
		b.Append(c.Value)
	}
	return NewColumn(name, kind, b.NewArray())
}

// NewIntegerColumn builds an Int64 column. A nil valid slice marks every value present.
func NewIntegerColumn(name string, values []int64, valid []bool) *Column {
	b := array.NewInt64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return NewColumn(name, KindInteger, b.NewArray())
}

func NewFloatColumn(name string, values []float64, valid []bool) *Column {
	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return NewColumn(name, KindFloat, b.NewArray())
}

// NewDateColumn builds a Date32 column; the time-of-day part of each value is dropped.
func NewDateColumn(name string, values []time.Time, valid []bool) *Column {
	b := array.NewDate32Builder(memory.DefaultAllocator)
	defer b.Release()
	b.Reserve(len(values))
	for i, v := range values {
		if valid != nil && !valid[i] {
			b.AppendNull()
			continue
		}
		b.Append(arrow.Date32FromTime(v))
	}
	return NewColumn(name, KindDate, b.NewArray())
}

func (c *Column) Len() int {
	if c.Data == nil {
		return 0
	}
	return c.Data.Len()
}

func (c *Column) IsNull(i int) bool {
	return c.Data.IsNull(i)
}

func (c *Column) NullCount() int {
	if c.Data == nil {
		return 0
	}
	return c.Data.NullN()
}

// Value returns nil, string, int64, float64 or time.Time depending on the kind.
func (c *Column) Value(i int) any {
	if c.Data.IsNull(i) {
		return nil
	}
	switch arr := c.Data.(type) {
	case *array.String:
		return arr.Value(i)
	case *array.Int64:
		return arr.Value(i)
	case *array.Float64:
		return arr.Value(i)
	case *array.Date32:
		return arr.Value(i).ToTime()
	default:
		return arr.ValueStr(i)
	}
}

// Format renders the cell at i the way it is written to text destinations.
func (c *Column) Format(i int) string {
	switch v := c.Value(i).(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(DateLayout)
	default:
		return fmt.Sprint(v)
	}
}

// Cells returns the column as raw cells, stringifying typed values.
func (c *Column) Cells() []Cell {
	cells := make([]Cell, c.Len())
	for i := range cells {
		if c.IsNull(i) {
			cells[i] = Missing()
			continue
		}
		cells[i] = Text(c.Format(i))
	}
	return cells
}

func (c *Column) Retain() {
	if c != nil && c.Data != nil {
		c.Data.Retain()
	}
}

func (c *Column) Release() {
	if c != nil && c.Data != nil {
		c.Data.Release()
	}
}

func (c *Column) field() arrow.Field {
	keys := []string{kindKey}
	vals := []string{c.Kind.String()}
	if c.Layout != "" {
		keys = append(keys, layoutKey)
		vals = append(vals, c.Layout)
	}
	return arrow.Field{
		Name:     c.Name,
		Type:     c.Data.DataType(),
		Nullable: true,
		Metadata: arrow.NewMetadata(keys, vals),
	}
}

// Table is an ordered set of equally long, uniquely named columns with an
// optional index column that is never type-inferred.
type Table struct {
	Columns []*Column
	Index   *Column
}

func NewTable(cols ...*Column) (*Table, error) {
	t := &Table{Columns: cols}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks name uniqueness and equal column lengths.
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.Columns))
	rows := -1
	if t.Index != nil {
		rows = t.Index.Len()
	}
	for _, c := range t.Columns {
		if seen[c.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateColumn, c.Name)
		}
		seen[c.Name] = true
		if rows == -1 {
			rows = c.Len()
		} else if c.Len() != rows {
			return fmt.Errorf("%w: %s has %d rows, want %d", ErrRaggedColumns, c.Name, c.Len(), rows)
		}
	}
	return nil
}

func (t *Table) NumRows() int {
	if t.Index != nil {
		return t.Index.Len()
	}
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

func (t *Table) NumCols() int {
	return len(t.Columns)
}

func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func (t *Table) Column(name string) (*Column, error) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
}

// SetIndex moves the named column out of Columns and into Index.
func (t *Table) SetIndex(name string) error {
	for i, c := range t.Columns {
		if c.Name == name {
			t.Index = c
			t.Columns = append(t.Columns[:i:i], t.Columns[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrColumnNotFound, name)
}

func (t *Table) Retain() {
	t.Index.Retain()
	for _, c := range t.Columns {
		c.Retain()
	}
}

func (t *Table) Release() {
	t.Index.Release()
	for _, c := range t.Columns {
		c.Release()
	}
}

// Record converts the table to an Arrow record. Kinds, date layouts and the
// index column survive in field metadata so FromRecord can restore them.
func (t *Table) Record() arrow.Record {
	var (
		fields []arrow.Field
		cols   []arrow.Array
	)
	if t.Index != nil {
		f := t.Index.field()
		keys := append(f.Metadata.Keys(), indexKey)
		vals := append(f.Metadata.Values(), "true")
		f.Metadata = arrow.NewMetadata(keys, vals)
		fields = append(fields, f)
		cols = append(cols, t.Index.Data)
	}
	for _, c := range t.Columns {
		fields = append(fields, c.field())
		cols = append(cols, c.Data)
	}
	return array.NewRecord(arrow.NewSchema(fields, nil), cols, int64(t.NumRows()))
}

// FromRecord builds a table over the record's arrays. Fields without kind
// metadata get a kind derived from their Arrow type.
func FromRecord(rec arrow.Record) (*Table, error) {
	t := &Table{}
	for i, f := range rec.Schema().Fields() {
		data := rec.Column(i)
		kind, err := kindOf(f)
		if err != nil {
			return nil, err
		}
		data.Retain()
		c := NewColumn(f.Name, kind, data)
		if idx := f.Metadata.FindKey(layoutKey); idx >= 0 {
			c.Layout = f.Metadata.Values()[idx]
		}
		if idx := f.Metadata.FindKey(indexKey); idx >= 0 && t.Index == nil {
			t.Index = c
			continue
		}
		t.Columns = append(t.Columns, c)
	}
	if err := t.Validate(); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

func kindOf(f arrow.Field) (Kind, error) {
	if idx := f.Metadata.FindKey(kindKey); idx >= 0 {
		return ParseKind(f.Metadata.Values()[idx])
	}
	switch f.Type.ID() {
	case arrow.STRING, arrow.LARGE_STRING:
		return KindText, nil
	case arrow.INT64:
		return KindInteger, nil
	case arrow.FLOAT64:
		return KindFloat, nil
	case arrow.DATE32:
		return KindDate, nil
	default:
		return KindUntyped, fmt.Errorf("unsupported arrow type %s for column %s", f.Type, f.Name)
	}
}
