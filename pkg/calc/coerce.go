package calc

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// numericPrefix matches the leading numeric part of a string, after leading
// whitespace has been trimmed.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

const leadingSpace = " \t\n\r\v\f"

// coerce converts v to the Go representation of column type t.
func coerce(t ColumnType, v any) any {
	switch t {
	case TypeInt:
		return toInt(v)
	case TypeFloat:
		return toFloat(v)
	case TypeString:
		return toString(v)
	case TypeArray:
		return toArray(v)
	default:
		return v
	}
}

// toInt converts v to int64. Strings contribute their leading numeric part
// ("42abc" is 42, "abc" is 0); values with no numeric reading are 0.
func toInt(v any) int64 {
	switch x := v.(type) {
	case string:
		n, ok := parseLeading(x)
		if !ok {
			return 0
		}
		if n.isFloat {
			return floatToInt(n.f)
		}
		return n.i
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	case uint, uint64:
		if u := cast.ToUint64(x); u > math.MaxInt64 {
			return math.MaxInt64
		}
	case *Array:
		if x.Len() > 0 {
			return 1
		}
		return 0
	case *Cell:
		if x == nil {
			return 0
		}
		return 1
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0
	}
	return n
}

// toFloat converts v to float64 with the same rules as toInt.
func toFloat(v any) float64 {
	switch x := v.(type) {
	case string:
		n, ok := parseLeading(x)
		if !ok {
			return 0
		}
		return n.float()
	case *Array:
		if x.Len() > 0 {
			return 1
		}
		return 0
	case *Cell:
		if x == nil {
			return 0
		}
		return 1
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return f
}

// toString converts v to a string. nil and false are "", true is "1".
func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "1"
		}
		return ""
	case *Array:
		return "Array"
	case *Cell:
		if x == nil {
			return ""
		}
		return "Cell"
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// toArray keeps *Array values, converts slices to list arrays and
// string-keyed maps to keyed arrays (keys sorted), and resets anything else
// to an empty array.
func toArray(v any) *Array {
	switch x := v.(type) {
	case *Array:
		if x == nil {
			return NewArray()
		}
		return x
	case []any:
		return NewArray(x...)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		a := NewArray()
		for _, k := range keys {
			a.Put(k, x[k])
		}
		return a
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		a := NewArray()
		for i := range rv.Len() {
			a.Push(rv.Index(i).Interface())
		}
		return a
	}
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		m := make(map[string]any, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			m[it.Key().String()] = it.Value().Interface()
		}
		return toArray(m)
	}
	return NewArray()
}

// floatToInt truncates f toward zero, saturating at the int64 bounds. NaN
// and infinities are 0.
func floatToInt(f float64) int64 {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0
	case f >= float64(math.MaxInt64):
		return math.MaxInt64
	case f <= float64(math.MinInt64):
		return math.MinInt64
	}
	return int64(f)
}

// number is an arithmetic operand: integral unless isFloat.
type number struct {
	i       int64
	f       float64
	isFloat bool
}

func (n number) float() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func (n number) value() any {
	if n.isFloat {
		return n.f
	}
	return n.i
}

// parseLeading reads the numeric prefix of s.
func parseLeading(s string) (number, bool) {
	m := numericPrefix.FindString(strings.TrimLeft(s, leadingSpace))
	if m == "" {
		return number{}, false
	}
	return parseNumber(m)
}

func parseNumber(s string) (number, bool) {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return number{i: i}, true
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return number{}, false
	}
	return number{f: f, isFloat: true}, true
}

// operand reads v as an arithmetic operand. nil is 0 and booleans are 0 or
// 1; strings must be numeric apart from surrounding whitespace.
func operand(v any) (number, error) {
	switch x := v.(type) {
	case nil:
		return number{}, nil
	case bool:
		if x {
			return number{i: 1}, nil
		}
		return number{}, nil
	case float32:
		return number{f: float64(x), isFloat: true}, nil
	case float64:
		return number{f: x, isFloat: true}, nil
	case uint, uint64:
		if u := cast.ToUint64(x); u > math.MaxInt64 {
			return number{f: float64(u), isFloat: true}, nil
		}
		return number{i: cast.ToInt64(x)}, nil
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return number{i: cast.ToInt64(x)}, nil
	case string:
		t := strings.Trim(x, leadingSpace)
		if numericPrefix.FindString(t) == t && t != "" {
			if n, ok := parseNumber(t); ok {
				return n, nil
			}
		}
	}
	return number{}, fmt.Errorf("%w: %T(%v)", ErrNonNumeric, v, v)
}

// arith applies op to the operands, in int64 when both are integral and the
// result fits, and in float64 otherwise.
func arith(op byte, a, b number) number {
	if !a.isFloat && !b.isFloat {
		if r, ok := intArith(op, a.i, b.i); ok {
			return number{i: r}
		}
	}
	x, y := a.float(), b.float()
	switch op {
	case '+':
		return number{f: x + y, isFloat: true}
	case '-':
		return number{f: x - y, isFloat: true}
	default:
		return number{f: x * y, isFloat: true}
	}
}

// intArith reports false when the int64 result overflows.
func intArith(op byte, x, y int64) (int64, bool) {
	switch op {
	case '+':
		r := x + y
		return r, (r > x) == (y > 0)
	case '-':
		r := x - y
		return r, (r < x) == (y > 0)
	default:
		if x == 0 || y == 0 {
			return 0, true
		}
		r := x * y
		// MinInt64 / -1 wraps back to MinInt64 instead of failing the check.
		if (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
			return r, false
		}
		return r, r/y == x
	}
}

// looseEqual compares two element values the way UniqueAppend needs.
func looseEqual(a, b any) bool {
	if ca, ok := a.(*Cell); ok {
		cb, ok := b.(*Cell)
		return ok && ca == cb
	}
	if aa, ok := a.(*Array); ok {
		ab, ok := b.(*Array)
		return ok && arraysEqual(aa, ab)
	}
	if isNumber(a) && isNumber(b) {
		na, _ := operand(a)
		nb, _ := operand(b)
		if !na.isFloat && !nb.isFloat {
			return na.i == nb.i
		}
		return na.float() == nb.float()
	}
	return reflect.DeepEqual(a, b)
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}
