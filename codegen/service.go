package codegen

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Service is a service declaration. Its method types are resolved during fixup.
type Service struct {
	Name         string
	Package      string
	IsDeprecated bool
	Methods      []*Method

	originalName string
	fqn          string
}

// Method is one RPC of a service.
type Method struct {
	Name            string
	Input, Output   TypeRef
	ClientStreaming bool
	ServerStreaming bool
	IsDeprecated    bool

	originalName string
	fqn          string
}

// OriginalName returns the schema-exact name.
func (s *Service) OriginalName() string {
	return s.originalName
}

func (s *Service) FullyQualifiedName() string {
	return s.fqn
}

// OriginalName returns the schema-exact name.
func (m *Method) OriginalName() string {
	return m.originalName
}

// InputType returns the resolved request message. It is nil before fixup.
func (m *Method) InputType() *Message {
	msg, _ := resolvedType(m.Input).(*Message)
	return msg
}

// OutputType returns the resolved response message. It is nil before fixup.
func (m *Method) OutputType() *Message {
	msg, _ := resolvedType(m.Output).(*Message)
	return msg
}

func (c *ParseContext) parseService(d *descriptorpb.ServiceDescriptorProto, pkg string) *Service {
	fqn := qualify(pkg, d.GetName())
	s := &Service{
		Name:         c.normalizer.Name(d),
		Package:      pkg,
		IsDeprecated: d.GetOptions().GetDeprecated(),
		originalName: d.GetName(),
		fqn:          fqn,
	}
	for _, md := range d.GetMethod() {
		s.Methods = append(s.Methods, &Method{
			Name:            c.normalizer.Name(md),
			Input:           c.ref(md.GetInputType()),
			Output:          c.ref(md.GetOutputType()),
			ClientStreaming: md.GetClientStreaming(),
			ServerStreaming: md.GetServerStreaming(),
			IsDeprecated:    md.GetOptions().GetDeprecated(),
			originalName:    md.GetName(),
			fqn:             qualify(fqn, md.GetName()),
		})
	}
	return s
}

func (s *Service) fixupPlaceholders(c *ParseContext) error {
	for _, m := range s.Methods {
		var err error
		if m.Input, err = c.fixupMethodRef(m.Input, m.fqn); err != nil {
			return err
		}
		if m.Output, err = c.fixupMethodRef(m.Output, m.fqn); err != nil {
			return err
		}
	}
	return nil
}

func (c *ParseContext) fixupMethodRef(r TypeRef, owner string) (TypeRef, error) {
	t, err := c.resolve(r, owner)
	if err != nil {
		return r, err
	}
	if _, ok := t.(*Message); !ok {
		return r, errors.Wrapf(ErrInvalidMethodType, "%s refers to %s", owner, t.FullyQualifiedName())
	}
	return Resolved{Type: t}, nil
}
