package asmutable

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DiffFunc receives one difference found by DiffIter. path locates the
// entry from the root. Invocation with added==removed==false signifies an
// entry whose value changed. Returning keepGoing==false or an error stops
// the iteration.
type DiffFunc func(added, removed bool, path []Key, addedValue, removedValue interface{}) (keepGoing bool, err error)

// DiffIter invokes f for every entry that differs between oldValue and
// newValue, after materializing either if it is a Facade. Only enumerable
// own properties and sequence elements are compared. Identical references
// are skipped without being visited, so diffing a materialized value
// against its origin costs time in proportion to the branches that were
// touched. Two objects, or two arrays, are compared entry by entry; for
// arrays, removed elements are reported from the end backwards.
func DiffIter(oldValue, newValue interface{}, f DiffFunc) error {
	oldPlain, err := Unwrap(oldValue)
	if err != nil {
		return fmt.Errorf("unwrap old: %w", err)
	}
	newPlain, err := Unwrap(newValue)
	if err != nil {
		return fmt.Errorf("unwrap new: %w", err)
	}
	stack := newDiffStack(diffItem{
		oldValue: oldPlain, newValue: newPlain,
		oldPresent: true, newPresent: true,
	})
	for {
		item := stack.pop()
		if item == nil {
			return nil
		}
		if len(item.path) > DefaultMaxDepth {
			return ErrTooDeep
		}
		var keepGoing bool
		switch {
		case !item.oldPresent:
			keepGoing, err = f(true, false, item.path, item.newValue, nil)
		case !item.newPresent:
			keepGoing, err = f(false, true, item.path, nil, item.oldValue)
		case sameValue(item.oldValue, item.newValue):
			continue
		default:
			if stack.pushChildren(item) {
				continue
			}
			keepGoing, err = f(false, false, item.path, item.newValue, item.oldValue)
		}
		if err != nil {
			return fmt.Errorf("callback: %w", err)
		}
		if !keepGoing {
			return nil
		}
	}
}

// DiffIter reports how the materialized value differs from the origin.
func (f *Facade) DiffIter(cb DiffFunc) error {
	c, err := f.Materialize()
	if err != nil {
		return err
	}
	return DiffIter(f.w.origin, c, cb)
}

type diffItem struct {
	path       []Key
	oldValue   interface{}
	newValue   interface{}
	oldPresent bool
	newPresent bool
}

type diffStack struct {
	things []diffItem
}

func newDiffStack(item diffItem) diffStack {
	return diffStack{[]diffItem{item}}
}

func (stack *diffStack) pop() *diffItem {
	if len(stack.things) > 0 {
		popped := stack.things[len(stack.things)-1]
		stack.things = stack.things[0 : len(stack.things)-1]
		return &popped
	}
	return nil
}

func (stack *diffStack) push(item diffItem) {
	stack.things = append(stack.things, item)
}

// pushChildren expands a pair of objects or a pair of arrays into their
// entries, pushed so they pop in order. It reports false for any other
// pair, which is then a plain change.
func (stack *diffStack) pushChildren(item *diffItem) bool {
	var children []diffItem
	switch o := item.oldValue.(type) {
	case *Object:
		n, ok := item.newValue.(*Object)
		if !ok || o == nil || n == nil {
			return false
		}
		children = objectChildren(item.path, o, n)
	case *Array:
		n, ok := item.newValue.(*Array)
		if !ok || o == nil || n == nil {
			return false
		}
		children = arrayChildren(item.path, o, n)
	default:
		return false
	}
	for i := len(children) - 1; i >= 0; i-- {
		stack.push(children[i])
	}
	return true
}

func childPath(path []Key, k Key) []Key {
	p := make([]Key, len(path)+1)
	copy(p, path)
	p[len(path)] = k
	return p
}

func enumerable(o *Object, k Key) (interface{}, bool) {
	d, ok := o.props.get(k)
	if !ok || !d.Enumerable {
		return nil, false
	}
	return d.Value, true
}

func objectChildren(path []Key, o, n *Object) []diffItem {
	var children []diffItem
	for _, k := range n.props.keys {
		newValue, ok := enumerable(n, k)
		if !ok {
			continue
		}
		oldValue, oldOk := enumerable(o, k)
		children = append(children, diffItem{
			path: childPath(path, k), oldValue: oldValue, newValue: newValue,
			oldPresent: oldOk, newPresent: true,
		})
	}
	for _, k := range o.props.keys {
		oldValue, ok := enumerable(o, k)
		if !ok {
			continue
		}
		if _, ok := enumerable(n, k); ok {
			continue
		}
		children = append(children, diffItem{
			path: childPath(path, k), oldValue: oldValue,
			oldPresent: true, newPresent: false,
		})
	}
	return children
}

func arrayChildren(path []Key, o, n *Array) []diffItem {
	oldValues, newValues := o.Values(), n.Values()
	var children []diffItem
	for i, newValue := range newValues {
		item := diffItem{path: childPath(path, Index(i)), newValue: newValue, newPresent: true}
		if i < len(oldValues) {
			item.oldValue, item.oldPresent = oldValues[i], true
		}
		children = append(children, item)
	}
	for i := len(oldValues) - 1; i >= len(newValues); i-- {
		children = append(children, diffItem{
			path: childPath(path, Index(i)), oldValue: oldValues[i],
			oldPresent: true, newPresent: false,
		})
	}
	return children
}

type patchOperation struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// JSONPatch renders the differences between oldValue and newValue as an
// RFC 6902 JSON Patch document, in the order DiffIter reports them.
func JSONPatch(oldValue, newValue interface{}) ([]byte, error) {
	ops := []patchOperation{}
	err := DiffIter(oldValue, newValue, func(added, removed bool, path []Key, addedValue, _ interface{}) (bool, error) {
		op := patchOperation{Path: jsonPointer(path)}
		switch {
		case added:
			op.Op = "add"
		case removed:
			op.Op = "remove"
		default:
			op.Op = "replace"
		}
		if !removed {
			body, err := json.Marshal(addedValue)
			if err != nil {
				return false, fmt.Errorf("marshal %s: %w", op.Path, err)
			}
			op.Value = body
		}
		ops = append(ops, op)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(ops)
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func jsonPointer(path []Key) string {
	var b strings.Builder
	for _, k := range path {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(string(k)))
	}
	return b.String()
}
