package calc

import (
	"iter"
	"strconv"
)

// Array is the value held by array columns: an ordered sequence of elements
// addressed by string keys. Elements appended with Push receive sequential
// integer keys ("0", "1", ...); Put stores under an explicit key.
//
// Array is mutable, but Cell treats array values as values: Append and
// UniqueAppend clone the stored array before changing it, so callbacks see
// the previous array as old.
type Array struct {
	keys   []string
	values map[string]any
	next   int64
}

// NewArray returns an array holding items under keys "0".."len(items)-1".
func NewArray(items ...any) *Array {
	a := &Array{values: make(map[string]any, len(items))}
	for _, item := range items {
		a.Push(item)
	}
	return a
}

// Len returns the number of elements.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Keys returns the keys in order.
func (a *Array) Keys() []string {
	if a == nil {
		return []string{}
	}
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Values returns the elements in order.
func (a *Array) Values() []any {
	out := make([]any, 0, a.Len())
	for _, v := range a.All() {
		out = append(out, v)
	}
	return out
}

// All iterates over key/element pairs in order.
func (a *Array) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if a == nil {
			return
		}
		for _, k := range a.keys {
			if !yield(k, a.values[k]) {
				return
			}
		}
	}
}

// Get returns the element stored under key.
func (a *Array) Get(key string) (any, bool) {
	if a == nil {
		return nil, false
	}
	v, ok := a.values[key]
	return v, ok
}

// Has reports whether key is present.
func (a *Array) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Push appends item under the next sequential integer key and returns that
// key. The next key is one past the largest non-negative integer key ever
// stored, or "0" when there is none.
func (a *Array) Push(item any) string {
	key := strconv.FormatInt(a.next, 10)
	a.Put(key, item)
	return key
}

// Put stores item under key. An existing key keeps its position.
func (a *Array) Put(key string, item any) {
	if a.values == nil {
		a.values = make(map[string]any)
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = item
	if n, ok := intKey(key); ok && n >= a.next {
		a.next = n + 1
	}
}

// Contains reports whether any element is loosely equal to item. Numbers
// compare by value regardless of int/float representation, cells compare by
// identity, and arrays compare by key/element pairs.
func (a *Array) Contains(item any) bool {
	for _, v := range a.All() {
		if looseEqual(v, item) {
			return true
		}
	}
	return false
}

// Clone returns a shallow copy: elements are shared, keys and ordering are
// not.
func (a *Array) Clone() *Array {
	if a == nil {
		return NewArray()
	}
	c := &Array{
		keys:   make([]string, len(a.keys)),
		values: make(map[string]any, len(a.values)),
		next:   a.next,
	}
	copy(c.keys, a.keys)
	for k, v := range a.values {
		c.values[k] = v
	}
	return c
}

// IsList reports whether the keys are exactly "0".."Len()-1" in order.
func (a *Array) IsList() bool {
	for i, k := range a.Keys() {
		if k != strconv.Itoa(i) {
			return false
		}
	}
	return true
}

// intKey reports whether key is the canonical decimal form of an integer.
func intKey(key string) (int64, bool) {
	n, err := strconv.ParseInt(key, 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != key {
		return 0, false
	}
	return n, true
}

func arraysEqual(a, b *Array) bool {
	if a.Len() != b.Len() {
		return false
	}
	for k, v := range a.All() {
		w, ok := b.Get(k)
		if !ok || !looseEqual(v, w) {
			return false
		}
	}
	return true
}
