package types

import "fmt"

type Kind int

const (
	KindUntyped Kind = iota
	KindText
	KindInteger
	KindFloat
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindUntyped:
		return "untyped"
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "untyped":
		return KindUntyped, nil
	case "text":
		return KindText, nil
	case "integer":
		return KindInteger, nil
	case "float":
		return KindFloat, nil
	case "date":
		return KindDate, nil
	default:
		return KindUntyped, fmt.Errorf("unknown column kind: %s", s)
	}
}

// IsTextual reports whether columns of this kind hold strings.
func (k Kind) IsTextual() bool {
	return k == KindUntyped || k == KindText
}

// Cell is a raw value as read from a store.
type Cell struct {
	Value   string
	Missing bool
}

func Missing() Cell {
	return Cell{Missing: true}
}

func Text(s string) Cell {
	return Cell{Value: s}
}

type ColumnSummary struct {
	Name   string
	Kind   Kind
	Parsed int
	Nulls  int
}

type ConversionResult struct {
	InputFile     string
	OutputFile    string
	OutputBytes   int64
	Columns       []ColumnSummary
	RowsProcessed int
}
