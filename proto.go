package asmutable

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/types/known/structpb"
)

// FromProto converts a protobuf Value into containers. Struct fields are
// unordered on the wire, so members are ordered by name.
func FromProto(v *structpb.Value) interface{} {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StructValue:
		fields := k.StructValue.GetFields()
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		o := NewObject()
		for _, name := range names {
			o.Set(Key(name), FromProto(fields[name]))
		}
		return o
	case *structpb.Value_ListValue:
		a := NewArray()
		for _, e := range k.ListValue.GetValues() {
			a.Append(FromProto(e))
		}
		return a
	case *structpb.Value_NumberValue:
		return k.NumberValue
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_BoolValue:
		return k.BoolValue
	}
	return nil
}

// ToProto converts v, materializing any Facade, into a protobuf Value.
// Leaves must be representable by structpb.NewValue.
func ToProto(v interface{}) (*structpb.Value, error) {
	plain, err := ToGo(v)
	if err != nil {
		return nil, err
	}
	pv, err := structpb.NewValue(plain)
	if err != nil {
		return nil, fmt.Errorf("to proto: %w", err)
	}
	return pv, nil
}
