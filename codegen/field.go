package codegen

import (
	"google.golang.org/protobuf/types/descriptorpb"
)

// NoPresenceIndex is the PresenceIndex of fields without a presence slot.
const NoPresenceIndex = -1

// Field is one field of a message.
type Field struct {
	Name   string
	Number int32
	// Ref may be Unresolved until fixup.
	Ref         TypeRef
	Repeated    RepeatedKind
	Conditional ConditionalKind
	// PresenceIndex is the zero-based presence slot of the field within its
	// message, or NoPresenceIndex.
	PresenceIndex int

	// OneOf is the name of the enclosing real oneof, if any.
	OneOf        string
	JSONName     string
	DefaultValue string
	IsDeprecated bool
	IsPacked     bool

	originalName string
	fqn          string
	untypedRef   bool
}

// OriginalName returns the schema-exact name.
func (f *Field) OriginalName() string {
	return f.originalName
}

// FullyQualifiedName returns the schema name of the field, e.g. "pkg.Msg.field".
func (f *Field) FullyQualifiedName() string {
	return f.fqn
}

// Type returns the resolved type of f. It is nil before fixup.
func (f *Field) Type() Type {
	return resolvedType(f.Ref)
}

// HasPresenceIndex reports whether f owns a presence slot.
func (f *Field) HasPresenceIndex() bool {
	return f.PresenceIndex != NoPresenceIndex
}

// MapEntry returns the key/value pair type of a dictionary field.
func (f *Field) MapEntry() (*MapEntryType, bool) {
	if f.Repeated != Dictionary {
		return nil, false
	}
	e, ok := f.Type().(*MapEntryType)
	return e, ok
}

func (c *ParseContext) parseField(d *descriptorpb.FieldDescriptorProto, owner, syntax string, oneofs []string) *Field {
	f := &Field{
		Name:          c.normalizer.Name(d),
		Number:        d.GetNumber(),
		Ref:           c.typeRef(d),
		PresenceIndex: NoPresenceIndex,
		JSONName:      d.GetJsonName(),
		DefaultValue:  d.GetDefaultValue(),
		IsDeprecated:  d.GetOptions().GetDeprecated(),
		originalName:  d.GetName(),
		fqn:           qualify(owner, d.GetName()),
		untypedRef: d.Type == nil && d.GetTypeName() != "" &&
			d.GetLabel() != descriptorpb.FieldDescriptorProto_LABEL_REQUIRED,
	}

	if d.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED {
		f.Repeated = Repeated
		if o := d.GetOptions(); o != nil && o.Packed != nil {
			f.IsPacked = o.GetPacked()
		} else {
			f.IsPacked = syntax == "proto3" && d.Type != nil && isPackableKind(d.GetType())
		}
	}

	if d.OneofIndex != nil && !d.GetProto3Optional() {
		if i := int(d.GetOneofIndex()); i < len(oneofs) {
			f.OneOf = oneofs[i]
		}
	}

	switch {
	case f.Repeated == Repeated:
		f.Conditional = Always
	case f.OneOf != "":
		f.Conditional = OneOf
	case d.GetProto3Optional():
		f.Conditional = FieldPresence
	case d.GetType() == descriptorpb.FieldDescriptorProto_TYPE_MESSAGE,
		d.GetType() == descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		f.Conditional = FieldPresence
	case syntax != "proto3" && d.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL:
		f.Conditional = FieldPresence
	default:
		f.Conditional = Always
	}

	return f
}
