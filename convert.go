package asmutable

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// FromGo converts Go maps with string keys (members sorted by key), slices,
// arrays and structs (exported fields, json tag names) into *Object and
// *Array containers, recursively. []byte, structs that marshal themselves
// (json.Marshaler, encoding.TextMarshaler), Containers and other values are
// kept as they are. Nil maps, slices and pointers convert to nil. A pointer,
// map or slice reached again while it is being converted yields ErrCycle.
func FromGo(v interface{}) (interface{}, error) {
	c := converter{active: map[visit]struct{}{}}
	return c.fromGo(reflect.ValueOf(v), 0)
}

// visit identifies a reference on the current conversion path.
type visit struct {
	ptr uintptr
	typ reflect.Type
}

type converter struct {
	active map[visit]struct{}
}

// enter marks rv as being converted. The returned func unmarks it.
func (c *converter) enter(rv reflect.Value) (func(), error) {
	key := visit{ptr: rv.Pointer(), typ: rv.Type()}
	if _, ok := c.active[key]; ok {
		return nil, fmt.Errorf("%v: %w", rv.Type(), ErrCycle)
	}
	c.active[key] = struct{}{}
	return func() { delete(c.active, key) }, nil
}

func (c *converter) fromGo(rv reflect.Value, depth int) (interface{}, error) {
	if depth > DefaultMaxDepth {
		return nil, ErrTooDeep
	}
	if !rv.IsValid() {
		return nil, nil
	}
	if rv.CanInterface() {
		if container, ok := rv.Interface().(Container); ok {
			return container, nil
		}
	}
	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return c.fromGo(rv.Elem(), depth)
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		leave, err := c.enter(rv)
		if err != nil {
			return nil, err
		}
		defer leave()
		return c.fromGo(rv.Elem(), depth+1)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return rv.Interface(), nil
		}
		if rv.IsNil() {
			return nil, nil
		}
		leave, err := c.enter(rv)
		if err != nil {
			return nil, err
		}
		defer leave()
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		o := NewObject()
		for _, k := range keys {
			v, err := c.fromGo(rv.MapIndex(k), depth+1)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", k.String(), err)
			}
			o.Set(Key(k.String()), v)
		}
		return o, nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Interface(), nil
		}
		if rv.IsNil() {
			return nil, nil
		}
		leave, err := c.enter(rv)
		if err != nil {
			return nil, err
		}
		defer leave()
		return c.sequence(rv, depth)
	case reflect.Array:
		return c.sequence(rv, depth)
	case reflect.Struct:
		t := rv.Type()
		if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) ||
			reflect.PointerTo(t).Implements(jsonMarshalerType) ||
			reflect.PointerTo(t).Implements(textMarshalerType) {
			return rv.Interface(), nil
		}
		o := NewObject()
		for _, f := range structFields(t) {
			fv := rv.FieldByIndex(f.index)
			if f.omitEmpty && fv.IsZero() {
				continue
			}
			v, err := c.fromGo(fv, depth+1)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.name, err)
			}
			o.Set(Key(f.name), v)
		}
		return o, nil
	}
	return rv.Interface(), nil
}

func (c *converter) sequence(rv reflect.Value, depth int) (*Array, error) {
	a := NewArray()
	for i := 0; i < rv.Len(); i++ {
		v, err := c.fromGo(rv.Index(i), depth+1)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		a.Append(v)
	}
	return a, nil
}

// ToGo converts containers into map[string]interface{} (enumerable own
// properties) and []interface{} (holes as nil), recursively, materializing
// Facades on the way. Other values are returned unchanged.
func ToGo(v interface{}) (interface{}, error) {
	return toGo(v, 0)
}

func toGo(v interface{}, depth int) (interface{}, error) {
	if depth > DefaultMaxDepth {
		return nil, ErrTooDeep
	}
	switch c := v.(type) {
	case *Facade:
		if c == nil {
			return nil, nil
		}
		m, err := c.Materialize()
		if err != nil {
			return nil, err
		}
		return toGo(m, depth)
	case *Object:
		if c == nil {
			return nil, nil
		}
		out := make(map[string]interface{}, c.Len())
		for _, k := range c.props.keys {
			d := c.props.props[k]
			if !d.Enumerable {
				continue
			}
			value, err := toGo(d.Value, depth+1)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", k, err)
			}
			out[string(k)] = value
		}
		return out, nil
	case *Array:
		if c == nil {
			return nil, nil
		}
		out := c.Values()
		for i, e := range out {
			value, err := toGo(e, depth+1)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = value
		}
		return out, nil
	}
	return v, nil
}
