package asmutable

// opKind tags the buffered change recorded for one key.
type opKind uint8

const (
	// opRead caches the Facade wrapping a nested container read from the
	// origin, together with the origin's descriptor for the key.
	opRead opKind = iota
	// opWrite records an assignment.
	opWrite
	// opDelete records a removal.
	opDelete
	// opDefine records a descriptor installed verbatim.
	opDefine
)

func (k opKind) String() string {
	switch k {
	case opRead:
		return "read"
	case opWrite:
		return "write"
	case opDelete:
		return "delete"
	case opDefine:
		return "define"
	}
	return "unknown"
}

// operation is the single effective log entry for a key. desc is unused
// for opDelete.
type operation struct {
	kind opKind
	desc Descriptor
}
