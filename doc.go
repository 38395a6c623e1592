/*
Package asmutable lets code mutate a nested, keyed container (object-like
or array-like) with ordinary imperative operations, while the container
itself is never altered in place. Only the branches that are actually
touched get duplicated; everything else stays reference-identical to the
source.

Uses

- Producing the next version of an immutable state tree without writing
deep-clone-and-patch code by hand

- Feeding consumers that decide whether to re-render or re-process a
subtree by comparing references

- Computing what changed between two versions (DiffIter, JSONPatch)

How it works

Wrap returns a Facade over a plain *Object or *Array, its origin. The
Facade implements Container, the same set of structural operations as the
plain types (Get, Set, Delete, Has, OwnKeys, OwnDescriptor,
DefineProperty, Ancestor, SetAncestor), so code written against Container
does not care which one it holds. Every change lands in a per-key log of
buffered operations, last write wins; keys that were never touched read
through to the origin. Nested containers read through a Facade are wrapped
lazily, and the child Facade is cached so repeated reads return the same
one.

Unwrap materializes a Facade: it shallow-duplicates the origin, applies the
log, recursively materializes the children, and returns the origin itself
whenever nothing ended up different. Unwrap(Wrap(x)) is x. The duplicate
carries every own property of the origin with its descriptor, so
materialized objects keep their non-enumerable properties.

	state := asmutable.NewObject().
		With("a", asmutable.NewObject().With("v", 1)).
		With("b", asmutable.NewObject().With("v", 2))
	draft := asmutable.Wrap(state).(*asmutable.Facade)
	a, _ := draft.Get("a")
	a.(asmutable.Container).Set("v", 10)
	next := asmutable.MustUnwrap(draft).(*asmutable.Object)
	// next.Get("b") is state's "b"; next.Get("a") is a new object

Ancestors

Objects may have an ancestor consulted for keys that are not own, like a
scoped map's parent. Options.AncestorPolicy chooses whether a Facade
resolves the ancestor live against the origin (the default) or against a
snapshot taken when it was wrapped; SetAncestor rebinds it either way.

Concurrency

A Facade belongs to one goroutine. Origins are never written, so other
goroutines may keep reading an origin while a Facade over it is being
mutated.

Inspiration

The copy-on-write node handling of persistent trees, where a node is
copied only when it is about to be written and unmodified subtrees are
shared between versions, applied to containers that are otherwise plain
mutable values.
*/
package asmutable
