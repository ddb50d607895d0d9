package codegen

import (
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"
)

// Type is a node a field can point at. It is implemented by *Message, *Enum,
// *MapEntryType and Scalar.
type Type interface {
	// FullyQualifiedName returns the schema-exact name without the leading dot.
	// Scalars return their schema keyword.
	FullyQualifiedName() string

	isType()
}

// Scalar is a non-reference field kind such as int32 or string.
type Scalar descriptorpb.FieldDescriptorProto_Type

func (s Scalar) isType() {}

func (s Scalar) FullyQualifiedName() string {
	return s.String()
}

// String returns the schema keyword of s.
func (s Scalar) String() string {
	return strings.ToLower(strings.TrimPrefix(descriptorpb.FieldDescriptorProto_Type(s).String(), "TYPE_"))
}

// isReferenceKind reports whether t names another type instead of a scalar.
func isReferenceKind(t descriptorpb.FieldDescriptorProto_Type) bool {
	switch t {
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE,
		descriptorpb.FieldDescriptorProto_TYPE_GROUP,
		descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		return true
	}
	return false
}

func isPackableKind(t descriptorpb.FieldDescriptorProto_Type) bool {
	switch t {
	case descriptorpb.FieldDescriptorProto_TYPE_STRING,
		descriptorpb.FieldDescriptorProto_TYPE_BYTES,
		descriptorpb.FieldDescriptorProto_TYPE_MESSAGE,
		descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		return false
	}
	return true
}

// TypeRef is the type reference a field or method holds. It is either
// Unresolved, naming a type that had not been registered when the reference
// was parsed, or Resolved. After a successful fixup every TypeRef reachable
// from the compiled Set is Resolved.
type TypeRef interface {
	isTypeRef()
}

// Unresolved is a placeholder naming its target by fully-qualified name.
type Unresolved struct {
	Name string
}

// Resolved points at a registered type.
type Resolved struct {
	Type Type
}

func (Unresolved) isTypeRef() {}
func (Resolved) isTypeRef()   {}

// resolvedType returns the type r points at, or nil if r is still a placeholder.
func resolvedType(r TypeRef) Type {
	if res, ok := r.(Resolved); ok {
		return res.Type
	}
	return nil
}

// refName returns the name r refers to regardless of its resolution state.
func refName(r TypeRef) string {
	switch r := r.(type) {
	case Resolved:
		return r.Type.FullyQualifiedName()
	case Unresolved:
		return r.Name
	}
	return ""
}

// MapEntryType is the synthetic key/value entry the schema compiler generates
// for a map<K, V> field. It is registered like any other type but never
// appears among a message's nested messages.
type MapEntryType struct {
	Key, Value TypeRef

	fqn string
}

func (t *MapEntryType) isType() {}

func (t *MapEntryType) FullyQualifiedName() string {
	return t.fqn
}

// KeyType returns the resolved key type. It is nil before fixup.
func (t *MapEntryType) KeyType() Type {
	return resolvedType(t.Key)
}

// ValueType returns the resolved value type. It is nil before fixup.
func (t *MapEntryType) ValueType() Type {
	return resolvedType(t.Value)
}

// RepeatedKind describes how many values a field holds.
type RepeatedKind int

const (
	Single RepeatedKind = iota
	Repeated
	Dictionary
)

func (k RepeatedKind) String() string {
	switch k {
	case Single:
		return "single"
	case Repeated:
		return "repeated"
	case Dictionary:
		return "dictionary"
	}
	return "unknown"
}

// ConditionalKind describes how the presence of a field value is observed.
type ConditionalKind int

const (
	// Always means the field is always considered present, either because the
	// schema gives it no presence or because its storage can represent absence.
	Always ConditionalKind = iota
	// FieldPresence means the field needs an explicit presence slot.
	FieldPresence
	// OneOf means presence is tracked by the enclosing oneof.
	OneOf
)

func (k ConditionalKind) String() string {
	switch k {
	case Always:
		return "always"
	case FieldPresence:
		return "fieldPresence"
	case OneOf:
		return "oneOf"
	}
	return "unknown"
}

// Access is the accessibility generated types are emitted with.
type Access int

const (
	Public Access = iota
	Internal
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Internal:
		return "internal"
	}
	return "unknown"
}

// ParseAccess converts the name of an accessibility into Access.
func ParseAccess(s string) (Access, error) {
	switch strings.ToLower(s) {
	case "", "public":
		return Public, nil
	case "internal":
		return Internal, nil
	}
	return Public, errUnknownAccess(s)
}
