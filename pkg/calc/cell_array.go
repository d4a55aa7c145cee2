package calc

// Append adds item to the array in column under the next sequential key and
// writes the result back through Set, so subscriptions see the previous and
// the extended array. It returns an *Error with code InvalidArgument when
// column is undeclared or not an array column.
func (c *Cell) Append(column string, item any) error {
	return c.AppendKey(column, "", item)
}

// AppendKey stores item under key in the array in column, replacing any
// element already there. An empty key appends as Append does.
func (c *Cell) AppendKey(column, key string, item any) error {
	arr, err := c.arrayCopy("append", column)
	if err != nil {
		return err
	}
	if key == "" {
		arr.Push(item)
	} else {
		arr.Put(key, item)
	}
	return c.Set(column, arr)
}

// UniqueAppend appends item to the array in column unless an equal element
// is already present (see Array.Contains). Nothing is written, and no
// subscription fires, when the array already holds item.
func (c *Cell) UniqueAppend(column string, item any) error {
	return c.UniqueAppendKey(column, "", item, false)
}

// UniqueAppendKey stores item under key when key is absent or holds nil, or
// when override is set. An empty key behaves as UniqueAppend. Nothing is written when the
// array is left unchanged.
func (c *Cell) UniqueAppendKey(column, key string, item any, override bool) error {
	arr, err := c.arrayCopy("unique append", column)
	if err != nil {
		return err
	}
	switch {
	case key == "":
		if arr.Contains(item) {
			return nil
		}
		arr.Push(item)
	case override || !isSet(arr, key):
		arr.Put(key, item)
	default:
		return nil
	}
	return c.Set(column, arr)
}

// arrayCopy validates column as an array column and returns a copy of its
// current array.
func (c *Cell) arrayCopy(op, column string) (*Array, error) {
	t, ok := c.types[column]
	if !ok {
		return nil, invalidColumn(op, column)
	}
	if t != TypeArray {
		return nil, notArrayColumn(op, column)
	}
	cur, _ := c.materialize(column).(*Array)
	return cur.Clone(), nil
}

// isSet reports whether key holds a non-nil element.
func isSet(a *Array, key string) bool {
	v, ok := a.Get(key)
	return ok && v != nil
}
