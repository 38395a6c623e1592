package asmutable

import (
	"errors"
	"fmt"
)

var (
	// ErrCycle is returned when a Facade is reached again while it is being
	// materialized, e.g. after assigning a Facade into itself.
	ErrCycle = errors.New("asmutable: cyclic container")
	// ErrTooDeep is returned when nesting exceeds the configured MaxDepth.
	ErrTooDeep = errors.New("asmutable: container nesting too deep")
)

// Unwrap returns the plain container a Facade materializes to. Any other
// value is returned unchanged.
func Unwrap(v interface{}) (interface{}, error) {
	f, ok := v.(*Facade)
	if !ok || f == nil {
		return v, nil
	}
	c, err := f.Materialize()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// MustUnwrap is like Unwrap but panics on error.
func MustUnwrap(v interface{}) interface{} {
	c, err := Unwrap(v)
	if err != nil {
		panic(err)
	}
	return c
}

// Materialize applies the buffered operations to a shallow duplicate of the
// origin, recursively materializing nested Facades. If nothing ends up
// differing from the origin, the origin itself is returned. Materialize
// never modifies the Facade; calling it again returns a separate but equal
// result.
func (f *Facade) Materialize() (Container, error) {
	m := materializer{
		active:   map[*worker]struct{}{},
		maxDepth: f.w.opts.MaxDepth,
	}
	return m.materialize(f.w, 0)
}

type materializer struct {
	// active holds the workers on the current path, to detect cycles.
	active   map[*worker]struct{}
	maxDepth int
}

func (m *materializer) value(v interface{}, depth int) (interface{}, error) {
	f, ok := v.(*Facade)
	if !ok || f == nil {
		return v, nil
	}
	c, err := m.materialize(f.w, depth+1)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (m *materializer) materialize(w *worker, depth int) (Container, error) {
	if depth > m.maxDepth {
		return nil, fmt.Errorf("depth %d: %w", depth, ErrTooDeep)
	}
	if _, ok := m.active[w]; ok {
		return nil, ErrCycle
	}
	ancestor := w.ancestor()
	rebound := !sameValue(ancestor, w.origin.Ancestor())
	if len(w.order) == 0 && !rebound {
		return w.origin, nil
	}
	m.active[w] = struct{}{}
	defer delete(m.active, w)

	dup := w.origin.duplicate()
	changed := rebound
	if rebound {
		dup.SetAncestor(ancestor)
	}
	for _, k := range w.order {
		op := w.ops[k]
		switch op.kind {
		case opDelete:
			dup.remove(k)
			changed = true
		case opDefine:
			d := op.desc
			v, err := m.value(d.Value, depth)
			if err != nil {
				return nil, fmt.Errorf("materialize %q: %w", k, err)
			}
			d.Value = v
			dup.install(k, d)
			changed = true
		default:
			d := op.desc
			v, err := m.value(d.Value, depth)
			if err != nil {
				return nil, fmt.Errorf("materialize %q: %w", k, err)
			}
			d.Value = v
			prev, ok := w.origin.OwnDescriptor(k)
			if !ok || !sameValue(prev.Value, v) || !prev.sameAttributes(d) {
				changed = true
			}
			dup.install(k, d)
		}
	}
	w.logger().Debug().
		Int("entries", len(w.order)).
		Bool("changed", changed).
		Int("depth", depth).
		Msg("materialized")
	if !changed {
		return w.origin, nil
	}
	return dup, nil
}
