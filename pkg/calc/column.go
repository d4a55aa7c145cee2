package calc

// ColumnType is the type tag of a column. It fixes how values written to the
// column are coerced and what default an untouched column reads as.
type ColumnType string

// Column type tags. TypeOther is the untyped tag; any tag outside this set
// behaves like TypeOther.
const (
	TypeInt    ColumnType = "int"
	TypeFloat  ColumnType = "float"
	TypeString ColumnType = "string"
	TypeBool   ColumnType = "bool"
	TypeArray  ColumnType = "array"
	TypeCell   ColumnType = "cell"
	TypeOther  ColumnType = ""
)

// validColumnTypes is the set of recognized column type tags.
var validColumnTypes = map[ColumnType]bool{
	TypeInt:    true,
	TypeFloat:  true,
	TypeString: true,
	TypeBool:   true,
	TypeArray:  true,
	TypeCell:   true,
	TypeOther:  true,
}

// Column declares a named, typed field of a Cell.
type Column struct {
	Name string     // Column name, unique within a cell.
	Type ColumnType // One of the Type constants.
}

// Col is shorthand for Column{Name: name, Type: t}.
func Col(name string, t ColumnType) Column {
	return Column{Name: name, Type: t}
}

// IsValidColumnType reports whether t is one of the recognized tags.
func IsValidColumnType(t ColumnType) bool {
	return validColumnTypes[t]
}

// ParseColumnType maps a textual tag to a ColumnType. The spelling "other"
// is accepted as an alias of the empty tag. Unrecognized tags map to
// TypeOther and ok is false.
func ParseColumnType(s string) (t ColumnType, ok bool) {
	if s == "other" {
		return TypeOther, true
	}
	t = ColumnType(s)
	if !validColumnTypes[t] {
		return TypeOther, false
	}
	return t, true
}

// String returns the tag, with "other" for the untyped tag.
func (t ColumnType) String() string {
	if t == TypeOther {
		return "other"
	}
	return string(t)
}

// DefaultValue returns the value a column of type t holds before its first
// write: int64(0) for int, float64(0) for float, "" for string, an empty
// *Array for array, and nil for bool, cell and untyped columns. Each call
// returns a fresh value.
func DefaultValue(t ColumnType) any {
	switch t {
	case TypeInt:
		return int64(0)
	case TypeFloat:
		return float64(0)
	case TypeString:
		return ""
	case TypeArray:
		return NewArray()
	default:
		return nil
	}
}
