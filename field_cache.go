package asmutable

import (
	"reflect"
	"strings"

	lru "github.com/hashicorp/golang-lru"
)

// FieldCacheSize is the number of struct types whose field layout FromGo
// keeps cached.
const FieldCacheSize = 512

// structField is the part of a struct field FromGo needs.
type structField struct {
	name      string
	index     []int
	omitEmpty bool
}

// fieldCache maps a reflect.Type to its []structField. It is shared by all
// conversions and safe for concurrent use.
var fieldCache = newFieldCache(FieldCacheSize)

func newFieldCache(size int) *lru.ARCCache {
	cache, err := lru.NewARC(size)
	if err != nil {
		panic(err)
	}
	return cache
}

// structFields returns the exported fields of t, named by their json tag
// when present. Fields tagged "-" are skipped.
func structFields(t reflect.Type) []structField {
	if cached, ok := fieldCache.Get(t); ok {
		return cached.([]structField)
	}
	fields := make([]structField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		field := structField{name: sf.Name, index: sf.Index}
		if tag, ok := sf.Tag.Lookup("json"); ok {
			name, opts, hasOpts := strings.Cut(tag, ",")
			if name == "-" && !hasOpts {
				continue
			}
			if name != "" {
				field.name = name
			}
			for _, opt := range strings.Split(opts, ",") {
				if opt == "omitempty" {
					field.omitEmpty = true
				}
			}
		}
		fields = append(fields, field)
	}
	fieldCache.Add(t, fields)
	return fields
}
