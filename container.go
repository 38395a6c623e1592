package asmutable

// Descriptor describes one own property of a container.
type Descriptor struct {
	Value        interface{}
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// DataDescriptor returns a writable, enumerable, configurable descriptor
// holding v; the kind of property an ordinary assignment creates.
func DataDescriptor(v interface{}) Descriptor {
	return Descriptor{Value: v, Writable: true, Enumerable: true, Configurable: true}
}

func (d Descriptor) sameAttributes(other Descriptor) bool {
	return d.Writable == other.Writable &&
		d.Enumerable == other.Enumerable &&
		d.Configurable == other.Configurable
}

// Container is the set of structural operations shared by plain containers
// (*Object, *Array) and the buffered views over them (*Facade). Code that
// wants to be indifferent to whether it is mutating a plain value or a
// buffered one should be written against Container.
type Container interface {
	// Get returns the value of the own or inherited property k.
	Get(k Key) (interface{}, bool)
	// Set assigns v to k.
	Set(k Key, v interface{})
	// Delete removes the own property k. It fails only if k is
	// non-configurable; deleting an absent key succeeds.
	Delete(k Key) bool
	// Has reports whether k is an own or inherited property.
	Has(k Key) bool
	// OwnKeys returns the own property keys in order.
	OwnKeys() []Key
	// OwnDescriptor returns the descriptor of the own property k.
	OwnDescriptor(k Key) (Descriptor, bool)
	// DefineProperty installs d as the descriptor of k.
	DefineProperty(k Key, d Descriptor) bool
	// Ancestor returns the container consulted for keys that are not own.
	Ancestor() Container
	// SetAncestor replaces the ancestor.
	SetAncestor(a Container) bool
	// Extensible reports whether new own properties may be added.
	Extensible() bool
	// PreventExtensions stops new own properties from being added.
	PreventExtensions() bool
}

// duplicable containers can be shallow-copied and patched by the
// materializer, bypassing the attribute checks ordinary callers get.
type duplicable interface {
	Container
	duplicate() duplicable
	install(k Key, d Descriptor)
	remove(k Key)
}

var (
	_ duplicable = (*Object)(nil)
	_ duplicable = (*Array)(nil)
	_ Container  = (*Facade)(nil)
)

// propertyList is an insertion-ordered set of own properties.
type propertyList struct {
	keys  []Key
	props map[Key]Descriptor
}

func (p *propertyList) get(k Key) (Descriptor, bool) {
	d, ok := p.props[k]
	return d, ok
}

func (p *propertyList) put(k Key, d Descriptor) {
	if p.props == nil {
		p.props = map[Key]Descriptor{}
	}
	if _, ok := p.props[k]; !ok {
		p.keys = append(p.keys, k)
	}
	p.props[k] = d
}

func (p *propertyList) remove(k Key) {
	if _, ok := p.props[k]; !ok {
		return
	}
	delete(p.props, k)
	for i, key := range p.keys {
		if key == k {
			p.keys = append(p.keys[:i:i], p.keys[i+1:]...)
			break
		}
	}
}

func (p *propertyList) clone() propertyList {
	c := propertyList{
		keys:  append([]Key(nil), p.keys...),
		props: make(map[Key]Descriptor, len(p.props)),
	}
	for k, d := range p.props {
		c.props[k] = d
	}
	return c
}

// define applies the ordinary defineProperty rules to the list.
func (p *propertyList) define(k Key, d Descriptor, extensible bool) bool {
	cur, ok := p.props[k]
	if ok && !cur.Configurable {
		return false
	}
	if !ok && !extensible {
		return false
	}
	p.put(k, d)
	return true
}

// assign applies ordinary assignment rules to the list.
func (p *propertyList) assign(k Key, v interface{}, extensible bool) {
	if cur, ok := p.props[k]; ok {
		if !cur.Writable {
			return
		}
		cur.Value = v
		p.props[k] = cur
		return
	}
	if extensible {
		p.put(k, DataDescriptor(v))
	}
}

// erase applies ordinary delete rules to the list.
func (p *propertyList) erase(k Key) bool {
	cur, ok := p.props[k]
	if !ok {
		return true
	}
	if !cur.Configurable {
		return false
	}
	p.remove(k)
	return true
}
