package asmutable

import (
	"sort"

	"github.com/rs/zerolog"
)

// worker holds the state behind one Facade: the origin it reads through
// to, the ancestor binding, and the log of buffered operations. The origin
// is never written.
type worker struct {
	origin  duplicable
	opts    *Options
	seq     bool
	binding ancestorBinding
	ops     map[Key]operation
	// order lists logged keys in the order they were first recorded.
	order []Key
}

// ancestorBinding resolves the ancestor according to the policy: live
// against the origin, or a snapshot taken when the worker was created.
// Once rebound, both policies answer with the rebound ancestor.
type ancestorBinding struct {
	snapshot Container
	rebound  bool
	bound    Container
}

func newWorker(origin duplicable, opts *Options) *worker {
	_, seq := origin.(*Array)
	w := &worker{
		origin: origin,
		opts:   opts,
		seq:    seq,
		ops:    map[Key]operation{},
	}
	if opts.AncestorPolicy == SnapshotAncestor {
		w.binding.snapshot = origin.Ancestor()
	}
	return w
}

func (w *worker) logger() *zerolog.Logger {
	return w.opts.Logger
}

func (w *worker) record(k Key, op operation) {
	if _, ok := w.ops[k]; !ok {
		w.order = append(w.order, k)
	}
	w.ops[k] = op
}

func (w *worker) ancestor() Container {
	switch {
	case w.binding.rebound:
		return w.binding.bound
	case w.opts.AncestorPolicy == SnapshotAncestor:
		return w.binding.snapshot
	}
	return w.origin.Ancestor()
}

func (w *worker) setAncestor(a Container) {
	w.binding.rebound = true
	w.binding.bound = a
}

func (w *worker) inheritedGet(k Key) (interface{}, bool) {
	if a := w.ancestor(); a != nil {
		return a.Get(k)
	}
	return nil, false
}

func (w *worker) inheritedHas(k Key) bool {
	a := w.ancestor()
	return a != nil && a.Has(k)
}

// length returns the effective length of a sequence origin.
func (w *worker) length() int {
	if op, ok := w.ops[LengthKey]; ok && op.kind != opDelete {
		if n, ok := lengthValue(op.desc.Value); ok {
			return n
		}
	}
	d, _ := w.origin.OwnDescriptor(LengthKey)
	n, _ := lengthValue(d.Value)
	return n
}

// beyondLength reports whether k is an element index a sequence origin no
// longer reaches.
func (w *worker) beyondLength(k Key) bool {
	if !w.seq {
		return false
	}
	i, ok := k.index()
	return ok && i >= w.length()
}

// own resolves the effective own descriptor of k: the log first, the
// origin second.
func (w *worker) own(k Key) (Descriptor, bool) {
	if w.beyondLength(k) {
		return Descriptor{}, false
	}
	if op, ok := w.ops[k]; ok {
		if op.kind == opDelete {
			return Descriptor{}, false
		}
		return op.desc, true
	}
	return w.origin.OwnDescriptor(k)
}

func (w *worker) get(k Key) (interface{}, bool) {
	if w.beyondLength(k) {
		return w.inheritedGet(k)
	}
	if op, ok := w.ops[k]; ok {
		if op.kind == opDelete {
			return w.inheritedGet(k)
		}
		return op.desc.Value, true
	}
	d, ok := w.origin.OwnDescriptor(k)
	if !ok {
		// inherited containers are handed out as they are, never buffered
		return w.inheritedGet(k)
	}
	if child, ok := wrapContainer(d.Value, w.opts); ok {
		d.Value = child
		w.record(k, operation{kind: opRead, desc: d})
		return child, true
	}
	return d.Value, true
}

func (w *worker) set(k Key, v interface{}) {
	if child, ok := wrapContainer(v, w.opts); ok {
		v = child
	}
	if w.seq {
		if k == LengthKey {
			w.setLength(v)
			return
		}
		if i, ok := k.index(); ok {
			w.grow(i + 1)
		}
	}
	d := DataDescriptor(v)
	if cur, ok := w.own(k); ok {
		d = cur
		d.Value = v
	}
	w.record(k, operation{kind: opWrite, desc: d})
}

// setLength truncates or grows a sequence origin. Truncation records a
// delete for every element that falls off the end.
func (w *worker) setLength(v interface{}) {
	n, ok := lengthValue(v)
	if !ok {
		return
	}
	for _, i := range w.presentFrom(n) {
		w.record(Index(i), operation{kind: opDelete})
	}
	d, _ := w.own(LengthKey)
	d.Value = n
	w.record(LengthKey, operation{kind: opWrite, desc: d})
}

// presentFrom lists the effectively present element indices at or past n,
// ascending. Only indices the origin holds or the log names are visited.
func (w *worker) presentFrom(n int) []int {
	seen := map[int]struct{}{}
	var found []int
	consider := func(i int) {
		if i < n {
			return
		}
		if _, ok := seen[i]; ok {
			return
		}
		seen[i] = struct{}{}
		if _, ok := w.own(Index(i)); ok {
			found = append(found, i)
		}
	}
	if origin, ok := w.origin.(*Array); ok {
		for _, i := range origin.indices() {
			consider(i)
		}
	}
	for _, k := range w.order {
		if i, ok := k.index(); ok {
			consider(i)
		}
	}
	sort.Ints(found)
	return found
}

func (w *worker) grow(n int) {
	if n > w.length() {
		w.setLength(n)
	}
}

func (w *worker) delete(k Key) bool {
	d, ok := w.own(k)
	if !ok {
		return true
	}
	if !d.Configurable {
		w.logger().Debug().Str("key", string(k)).Msg("rejected delete of non-configurable key")
		return false
	}
	w.record(k, operation{kind: opDelete})
	return true
}

func (w *worker) define(k Key, d Descriptor) bool {
	if cur, ok := w.own(k); ok && !cur.Configurable {
		w.logger().Debug().Str("key", string(k)).Msg("rejected define of non-configurable key")
		return false
	}
	if w.seq {
		if i, ok := k.index(); ok {
			w.grow(i + 1)
		}
	}
	w.record(k, operation{kind: opDefine, desc: d})
	return true
}

func (w *worker) has(k Key) bool {
	if w.beyondLength(k) {
		return w.inheritedHas(k)
	}
	if op, ok := w.ops[k]; ok {
		if op.kind == opDelete {
			return w.inheritedHas(k)
		}
		return true
	}
	if _, ok := w.origin.OwnDescriptor(k); ok {
		return true
	}
	return w.inheritedHas(k)
}

// ownKeys lists the origin's keys in their order, minus deleted ones,
// followed by keys only the log introduced, in the order they were
// recorded.
func (w *worker) ownKeys() []Key {
	originKeys := w.origin.OwnKeys()
	keys := make([]Key, 0, len(originKeys)+len(w.order))
	seen := make(map[Key]struct{}, len(originKeys))
	for _, k := range originKeys {
		seen[k] = struct{}{}
		if _, ok := w.own(k); ok {
			keys = append(keys, k)
		}
	}
	for _, k := range w.order {
		if _, ok := seen[k]; ok {
			continue
		}
		if _, ok := w.own(k); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// buffered reports whether the log holds anything besides cached reads.
func (w *worker) buffered() bool {
	if w.binding.rebound {
		return true
	}
	for _, k := range w.order {
		if w.ops[k].kind != opRead {
			return true
		}
	}
	return false
}
