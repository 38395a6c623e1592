package asmutable

// Object is a plain, ordered keyed container. Own properties keep their
// insertion order; keys that are not own are looked up on the ancestor.
// Objects are ordinary mutable values: wrap one to mutate it without
// touching it.
type Object struct {
	props    propertyList
	ancestor Container
	fixed    bool
}

// NewObject returns an empty, extensible object with no ancestor.
func NewObject() *Object {
	return &Object{}
}

// With assigns v to k and returns the object, for building literals.
func (o *Object) With(k Key, v interface{}) *Object {
	o.Set(k, v)
	return o
}

// Len returns the number of own properties.
func (o *Object) Len() int {
	return len(o.props.keys)
}

// Get returns the own value of k, or the ancestor's.
func (o *Object) Get(k Key) (interface{}, bool) {
	if d, ok := o.props.get(k); ok {
		return d.Value, true
	}
	if o.ancestor != nil {
		return o.ancestor.Get(k)
	}
	return nil, false
}

// Set assigns v to k. Assignments to non-writable properties, and of new
// keys to a non-extensible object, are ignored.
func (o *Object) Set(k Key, v interface{}) {
	o.props.assign(k, v, !o.fixed)
}

// Delete removes k unless it is non-configurable.
func (o *Object) Delete(k Key) bool {
	return o.props.erase(k)
}

// Has reports whether k is own or inherited.
func (o *Object) Has(k Key) bool {
	if _, ok := o.props.get(k); ok {
		return true
	}
	return o.ancestor != nil && o.ancestor.Has(k)
}

// OwnKeys returns the own keys in insertion order, non-enumerable ones
// included.
func (o *Object) OwnKeys() []Key {
	return append([]Key(nil), o.props.keys...)
}

func (o *Object) OwnDescriptor(k Key) (Descriptor, bool) {
	return o.props.get(k)
}

// DefineProperty fails if k is non-configurable, or is new and the object
// is not extensible.
func (o *Object) DefineProperty(k Key, d Descriptor) bool {
	return o.props.define(k, d, !o.fixed)
}

// Ancestor returns the container consulted for keys that are not own.
func (o *Object) Ancestor() Container {
	return o.ancestor
}

// SetAncestor replaces the ancestor. It always succeeds.
func (o *Object) SetAncestor(a Container) bool {
	o.ancestor = a
	return true
}

func (o *Object) Extensible() bool {
	return !o.fixed
}

// PreventExtensions makes the object reject new keys. Existing keys stay
// writable and deletable.
func (o *Object) PreventExtensions() bool {
	o.fixed = true
	return true
}

func (o *Object) duplicate() duplicable {
	return &Object{
		props:    o.props.clone(),
		ancestor: o.ancestor,
		fixed:    o.fixed,
	}
}

func (o *Object) install(k Key, d Descriptor) {
	o.props.put(k, d)
}

func (o *Object) remove(k Key) {
	o.props.remove(k)
}
