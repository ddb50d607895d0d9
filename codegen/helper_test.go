package codegen_test

import (
	"testing"

	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/ktr0731/protoir/codegen"
	"go.uber.org/goleak"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// parseProtos parses in-memory proto sources and returns the descriptors of names.
func parseProtos(t *testing.T, sources map[string]string, names ...string) []*descriptorpb.FileDescriptorProto {
	t.Helper()

	p := &protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(sources),
	}
	fds, err := p.ParseFiles(names...)
	if err != nil {
		t.Fatalf("failed to parse protos: %s", err)
	}
	out := make([]*descriptorpb.FileDescriptorProto, len(fds))
	for i, fd := range fds {
		out[i] = fd.AsFileDescriptorProto()
	}
	return out
}

func mustCompile(t *testing.T, files []*descriptorpb.FileDescriptorProto, opts ...codegen.CompileOption) *codegen.Set {
	t.Helper()

	set, err := codegen.Compile(files, opts...)
	if err != nil {
		t.Fatalf("Compile must not return an error, but got '%s'", err)
	}
	return set
}

func mustLookupMessage(t *testing.T, set *codegen.Set, fqn string) *codegen.Message {
	t.Helper()

	typ, ok := set.Lookup(fqn)
	if !ok {
		t.Fatalf("%s must be registered", fqn)
	}
	m, ok := typ.(*codegen.Message)
	if !ok {
		t.Fatalf("%s must be a message, but got %T", fqn, typ)
	}
	return m
}

func findField(t *testing.T, m *codegen.Message, name string) *codegen.Field {
	t.Helper()

	for _, f := range m.Fields {
		if f.OriginalName() == name {
			return f
		}
	}
	t.Fatalf("field %s not found in %s", name, m.FullyQualifiedName())
	return nil
}

// fieldSummary is the comparable shape of a fixed-up field.
type fieldSummary struct {
	Name          string
	Type          string
	Repeated      codegen.RepeatedKind
	Conditional   codegen.ConditionalKind
	PresenceIndex int
}

func summarizeFields(m *codegen.Message) []fieldSummary {
	out := make([]fieldSummary, len(m.Fields))
	for i, f := range m.Fields {
		out[i] = fieldSummary{
			Name:          f.OriginalName(),
			Type:          f.Type().FullyQualifiedName(),
			Repeated:      f.Repeated,
			Conditional:   f.Conditional,
			PresenceIndex: f.PresenceIndex,
		}
	}
	return out
}

// Builders for hand-written descriptors, used where protoc-produced input
// cannot express the case, e.g. mutually importing files.

func file(name, pkg string, msgs ...*descriptorpb.DescriptorProto) *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:        proto.String(name),
		Package:     proto.String(pkg),
		Syntax:      proto.String("proto3"),
		MessageType: msgs,
	}
}

func message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name:  proto.String(name),
		Field: fields,
	}
}

func messageField(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
		TypeName: proto.String(typeName),
	}
}

func scalarField(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

// repeatedField builds a repeated field without FieldOptions, the shape protoc
// emits when packed is not set explicitly.
func repeatedField(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
	d := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum(),
		Type:   typ.Enum(),
	}
	if typeName != "" {
		d.TypeName = proto.String(typeName)
	}
	return d
}
