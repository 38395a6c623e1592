package asmutable

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// DefaultMaxDepth is how deeply nested Facades may be materialized when
// Options.MaxDepth is not set.
const DefaultMaxDepth = 10_000

// AncestorPolicy selects how a Facade resolves its ancestor.
type AncestorPolicy uint8

const (
	// LiveAncestor resolves against the origin's current ancestor on every
	// lookup.
	LiveAncestor AncestorPolicy = iota
	// SnapshotAncestor resolves against the ancestor the origin had when
	// it was wrapped.
	SnapshotAncestor
)

func (p AncestorPolicy) String() string {
	switch p {
	case LiveAncestor:
		return "live"
	case SnapshotAncestor:
		return "snapshot"
	}
	return fmt.Sprintf("AncestorPolicy(%d)", uint8(p))
}

// Options controls how Facades are built. A nil *Options means defaults.
// Facades created while reading nested containers share their parent's
// options.
type Options struct {
	// AncestorPolicy selects live (default) or snapshot ancestor lookups.
	AncestorPolicy AncestorPolicy

	// MaxDepth bounds the nesting of Facades during materialization. 0 means
	// DefaultMaxDepth.
	MaxDepth int

	// Logger receives debug events. nil disables logging.
	Logger *zerolog.Logger
}

func (o *Options) normalize() *Options {
	n := Options{}
	if o != nil {
		n = *o
	}
	if n.MaxDepth <= 0 {
		n.MaxDepth = DefaultMaxDepth
	}
	if n.Logger == nil {
		nop := zerolog.Nop()
		n.Logger = &nop
	}
	return &n
}

// Facade is a buffered view over a container, its origin. Every structural
// operation against a Facade lands in its own log; the origin is never
// modified. Nested containers read through a Facade are themselves wrapped,
// and the same child Facade is returned by repeated reads. Unwrap (or
// Materialize) produces a plain container reflecting the buffered
// operations, sharing every untouched branch with the origin.
//
// A Facade is not safe for concurrent use.
type Facade struct {
	w *worker
}

// Wrap returns a Facade over v if v is a plain *Object or *Array. Any other
// value, including an existing Facade, is returned unchanged. Wrapping the
// same container twice yields two independent Facades.
func Wrap(v interface{}) interface{} {
	return WrapWith(v, nil)
}

// WrapWith is Wrap with explicit options. The options are copied, so later
// changes to opts do not reach the Facade. An existing Facade keeps the
// options it was created with.
func WrapWith(v interface{}, opts *Options) interface{} {
	if f, ok := v.(*Facade); ok {
		return f
	}
	if f, ok := wrapContainer(v, opts.normalize()); ok {
		return f
	}
	return v
}

// wrapContainer wraps a plain container. opts must be normalized and is
// shared with the new Facade.
func wrapContainer(v interface{}, opts *Options) (*Facade, bool) {
	var origin duplicable
	switch c := v.(type) {
	case *Object:
		if c == nil {
			return nil, false
		}
		origin = c
	case *Array:
		if c == nil {
			return nil, false
		}
		origin = c
	default:
		return nil, false
	}
	f := &Facade{w: newWorker(origin, opts)}
	opts.Logger.Debug().
		Str("policy", opts.AncestorPolicy.String()).
		Bool("sequence", f.w.seq).
		Msg("wrapped container")
	return f, true
}

// Origin returns the container the Facade reads through to.
func (f *Facade) Origin() Container {
	return f.w.origin
}

// IsDirty reports whether changes have been buffered directly on this
// Facade. Reads of nested containers do not count; changes made through a
// nested Facade are tracked by that Facade.
func (f *Facade) IsDirty() bool {
	return f.w.buffered()
}

// Get returns the effective value of k. A nested container read from the
// origin is returned wrapped.
func (f *Facade) Get(k Key) (interface{}, bool) {
	return f.w.get(k)
}

// Set buffers an assignment of v to k. It always succeeds; plain containers
// assigned are wrapped so later changes through them are buffered too.
func (f *Facade) Set(k Key, v interface{}) {
	f.w.set(k, v)
}

// Delete buffers the removal of k. It fails, leaving k untouched, if the
// effective descriptor of k is non-configurable.
func (f *Facade) Delete(k Key) bool {
	return f.w.delete(k)
}

// DefineProperty buffers d as the descriptor of k. It fails under the same
// condition as Delete.
func (f *Facade) DefineProperty(k Key, d Descriptor) bool {
	return f.w.define(k, d)
}

// Has reports whether k is effectively present, own or inherited.
func (f *Facade) Has(k Key) bool {
	return f.w.has(k)
}

// OwnKeys lists the origin's remaining keys in their order, then keys
// only the log introduced, in the order they were first written.
func (f *Facade) OwnKeys() []Key {
	return f.w.ownKeys()
}

// OwnDescriptor returns the buffered descriptor of k, or the origin's.
func (f *Facade) OwnDescriptor(k Key) (Descriptor, bool) {
	return f.w.own(k)
}

// Ancestor returns the ancestor under the Facade's AncestorPolicy, or the
// one given to SetAncestor.
func (f *Facade) Ancestor() Container {
	return f.w.ancestor()
}

// SetAncestor rebinds the ancestor for subsequent lookups. It always
// succeeds.
func (f *Facade) SetAncestor(a Container) bool {
	f.w.setAncestor(a)
	return true
}

// Extensible is always true: a Facade must be able to buffer new keys.
func (f *Facade) Extensible() bool {
	return true
}

// PreventExtensions always fails.
func (f *Facade) PreventExtensions() bool {
	return false
}

// MarshalJSON encodes the materialized value.
func (f *Facade) MarshalJSON() ([]byte, error) {
	c, err := f.Materialize()
	if err != nil {
		return nil, err
	}
	return json.Marshal(c)
}

// MarshalYAML encodes the materialized value.
func (f *Facade) MarshalYAML() (interface{}, error) {
	return f.Materialize()
}
