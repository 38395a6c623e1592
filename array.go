package asmutable

import "sort"

// holeT marks a missing element of a sparse Array.
type holeT struct{}

var hole interface{} = holeT{}

// Array is a plain, ordered sequence. Its own keys are the present element
// indices in ascending order, LengthKey, then any named properties in
// insertion order. Writing an index at or past the length grows the array,
// leaving holes in between; writing LengthKey truncates or grows it;
// deleting an element leaves a hole. Holes read as absent.
//
// Elements are kept densely up to the last one written close to the rest;
// an element written far past them is kept sparsely, so a far index or a
// huge length costs no more than the elements actually present. Values and
// the encoders still visit every index up to the length.
type Array struct {
	elems []interface{}
	// sparse holds present elements at indices >= len(elems).
	sparse   map[int]interface{}
	length   int
	named    propertyList
	ancestor Container
	fixed    bool
}

// minDenseGap is how far past the dense elements a write may land and
// still extend them.
const minDenseGap = 64

// NewArray returns an array holding values.
func NewArray(values ...interface{}) *Array {
	return &Array{elems: append([]interface{}(nil), values...), length: len(values)}
}

// Len returns the length of the array.
func (a *Array) Len() int {
	return a.length
}

// Append adds values at the end of the array.
func (a *Array) Append(values ...interface{}) {
	if a.fixed {
		return
	}
	for _, v := range values {
		a.store(a.length, v)
	}
}

// Values returns a copy of the elements, with holes as nil.
func (a *Array) Values() []interface{} {
	values := make([]interface{}, a.length)
	for i, v := range a.elems {
		if v != hole {
			values[i] = v
		}
	}
	for i, v := range a.sparse {
		values[i] = v
	}
	return values
}

// indices returns the present element indices in ascending order.
func (a *Array) indices() []int {
	indices := make([]int, 0, len(a.elems)+len(a.sparse))
	for i, v := range a.elems {
		if v != hole {
			indices = append(indices, i)
		}
	}
	if len(a.sparse) > 0 {
		far := make([]int, 0, len(a.sparse))
		for i := range a.sparse {
			far = append(far, i)
		}
		sort.Ints(far)
		indices = append(indices, far...)
	}
	return indices
}

func (a *Array) element(k Key) (interface{}, bool) {
	i, ok := k.index()
	if !ok || i >= a.length {
		return nil, false
	}
	if i < len(a.elems) {
		v := a.elems[i]
		return v, v != hole
	}
	v, ok := a.sparse[i]
	return v, ok
}

func (a *Array) lengthDescriptor() Descriptor {
	return Descriptor{Value: a.length, Writable: true}
}

func (a *Array) setLength(n int) {
	if n < len(a.elems) {
		clear(a.elems[n:])
		a.elems = a.elems[:n]
	}
	if n < a.length {
		for i := range a.sparse {
			if i >= n {
				delete(a.sparse, i)
			}
		}
	}
	a.length = n
}

func (a *Array) store(i int, v interface{}) {
	switch gap := i - len(a.elems); {
	case gap < 0:
		a.elems[i] = v
	case gap <= max(minDenseGap, len(a.elems)):
		a.extend(i + 1)
		a.elems[i] = v
	default:
		if a.sparse == nil {
			a.sparse = map[int]interface{}{}
		}
		a.sparse[i] = v
	}
	if i >= a.length {
		a.length = i + 1
	}
}

// extend grows the dense elements to n, pulling in sparse elements that now
// fall inside them.
func (a *Array) extend(n int) {
	from := len(a.elems)
	a.elems = append(a.elems, make([]interface{}, n-from)...)
	for i := from; i < n; i++ {
		a.elems[i] = hole
	}
	for i, v := range a.sparse {
		if i < n {
			a.elems[i] = v
			delete(a.sparse, i)
		}
	}
}

func (a *Array) clearElement(i int) {
	if i < len(a.elems) {
		a.elems[i] = hole
		return
	}
	delete(a.sparse, i)
}

// Get returns the element, the length, a named property or an inherited
// one.
func (a *Array) Get(k Key) (interface{}, bool) {
	if k == LengthKey {
		return a.length, true
	}
	if v, ok := a.element(k); ok {
		return v, true
	}
	if d, ok := a.named.get(k); ok {
		return d.Value, true
	}
	if a.ancestor != nil {
		return a.ancestor.Get(k)
	}
	return nil, false
}

// Set assigns v to k. Invalid lengths are ignored, as is growing a
// non-extensible array.
func (a *Array) Set(k Key, v interface{}) {
	if k == LengthKey {
		if n, ok := lengthValue(v); ok && (n <= a.length || !a.fixed) {
			a.setLength(n)
		}
		return
	}
	if i, ok := k.index(); ok {
		if i < a.length || !a.fixed {
			a.store(i, v)
		}
		return
	}
	a.named.assign(k, v, !a.fixed)
}

// Delete leaves a hole at an index or removes a named property. LengthKey
// cannot be deleted.
func (a *Array) Delete(k Key) bool {
	if k == LengthKey {
		return false
	}
	if i, ok := k.index(); ok {
		a.clearElement(i)
		return true
	}
	return a.named.erase(k)
}

// Has reports whether k is present here or on the ancestor. Holes are
// absent.
func (a *Array) Has(k Key) bool {
	if _, ok := a.OwnDescriptor(k); ok {
		return true
	}
	return a.ancestor != nil && a.ancestor.Has(k)
}

// OwnKeys lists present indices, LengthKey, then named properties.
func (a *Array) OwnKeys() []Key {
	indices := a.indices()
	keys := make([]Key, 0, len(indices)+1+len(a.named.keys))
	for _, i := range indices {
		keys = append(keys, Index(i))
	}
	keys = append(keys, LengthKey)
	return append(keys, a.named.keys...)
}

// OwnDescriptor describes elements as plain data properties and LengthKey
// as writable only.
func (a *Array) OwnDescriptor(k Key) (Descriptor, bool) {
	if k == LengthKey {
		return a.lengthDescriptor(), true
	}
	if v, ok := a.element(k); ok {
		return DataDescriptor(v), true
	}
	if _, ok := k.index(); ok {
		return Descriptor{}, false
	}
	return a.named.get(k)
}

// DefineProperty installs d. Elements only hold values, so the attributes
// of an element descriptor are not retained. LengthKey is
// non-configurable and cannot be redefined.
func (a *Array) DefineProperty(k Key, d Descriptor) bool {
	if k == LengthKey {
		return false
	}
	if i, ok := k.index(); ok {
		if i >= a.length && a.fixed {
			return false
		}
		a.store(i, d.Value)
		return true
	}
	return a.named.define(k, d, !a.fixed)
}

// Ancestor returns the container consulted for keys that are not own.
func (a *Array) Ancestor() Container {
	return a.ancestor
}

// SetAncestor replaces the ancestor. It always succeeds.
func (a *Array) SetAncestor(c Container) bool {
	a.ancestor = c
	return true
}

func (a *Array) Extensible() bool {
	return !a.fixed
}

// PreventExtensions stops the array from growing or taking new named
// properties. Shrinking it is still allowed.
func (a *Array) PreventExtensions() bool {
	a.fixed = true
	return true
}

func (a *Array) duplicate() duplicable {
	var sparse map[int]interface{}
	if len(a.sparse) > 0 {
		sparse = make(map[int]interface{}, len(a.sparse))
		for i, v := range a.sparse {
			sparse[i] = v
		}
	}
	return &Array{
		elems:    append([]interface{}(nil), a.elems...),
		sparse:   sparse,
		length:   a.length,
		named:    a.named.clone(),
		ancestor: a.ancestor,
		fixed:    a.fixed,
	}
}

func (a *Array) install(k Key, d Descriptor) {
	if k == LengthKey {
		if n, ok := lengthValue(d.Value); ok {
			a.setLength(n)
		}
		return
	}
	if i, ok := k.index(); ok {
		a.store(i, d.Value)
		return
	}
	a.named.put(k, d)
}

func (a *Array) remove(k Key) {
	if i, ok := k.index(); ok {
		a.clearElement(i)
		return
	}
	a.named.remove(k)
}
