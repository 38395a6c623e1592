package asmutable

import (
	"math"
	"reflect"
	"strconv"
)

// A Key names a property of a container. Sequence elements are keyed by
// their canonical decimal index, see Index.
type Key string

// LengthKey is the key under which a sequence exposes its length.
const LengthKey Key = "length"

// maxLength bounds the length a sequence can be given through LengthKey.
const maxLength = 1<<32 - 1

// Index returns the key of the i'th element of a sequence.
func Index(i int) Key {
	return Key(strconv.Itoa(i))
}

// index reports the element index named by k, if k is a canonical index
// ("0", "1", ..., no sign, no leading zeroes).
func (k Key) index() (int, bool) {
	s := string(k)
	if s == "" || len(s) > 1 && s[0] == '0' {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n >= maxLength {
		return 0, false
	}
	return n, true
}

// lengthValue converts v to a sequence length, if it is a non-negative
// integral number in range.
func lengthValue(v interface{}) (int, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	default:
		return 0, false
	}
	if f < 0 || f > maxLength || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// sameValue reports whether a and b are the same value: equal comparable
// values, NaN with NaN, or the same reference for slices, maps, funcs and
// pointers. It never panics on uncomparable dynamic types.
func sameValue(a, b interface{}) bool {
	switch v := a.(type) {
	case float64:
		if w, ok := b.(float64); ok {
			return v == w || math.IsNaN(v) && math.IsNaN(w)
		}
		return false
	case float32:
		if w, ok := b.(float32); ok {
			return v == w || v != v && w != w
		}
		return false
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() {
		return a == b
	}
	switch va.Kind() {
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	return false
}
