package codegen

import (
	"google.golang.org/protobuf/types/descriptorpb"
)

// Message is a message type. It exclusively owns its nested messages, enums
// and fields, and is referenced by any field whose type resolves to it.
type Message struct {
	// Name is the target-language identifier. Renderers may rename it.
	Name                 string
	FullyQualifiedPrefix string
	Package              string
	IsDeprecated         bool
	IsValueType          bool
	Access               Access

	// Nested collections keep descriptor declaration order.
	Messages []*Message
	Enums    []*Enum
	Fields   []*Field
	// OneOfs lists the real oneofs of the message. Synthetic oneofs of
	// proto3 optional fields are not included.
	OneOfs []string

	originalName string
	fqn          string
}

func (m *Message) isType() {}

func (m *Message) FullyQualifiedName() string {
	return m.fqn
}

// OriginalName returns the schema-exact name.
func (m *Message) OriginalName() string {
	return m.originalName
}

func (c *ParseContext) parseMessage(d *descriptorpb.DescriptorProto, scope, prefix string, file *File) (*Message, error) {
	fqn := qualify(scope, d.GetName())
	m := &Message{
		Name:                 c.normalizer.Name(d),
		FullyQualifiedPrefix: prefix,
		Package:              file.Package,
		IsDeprecated:         d.GetOptions().GetDeprecated(),
		IsValueType:          c.valueTypes[fqn],
		Access:               c.access,
		originalName:         d.GetName(),
		fqn:                  fqn,
	}
	// Register before descending so that fields and nested types can refer
	// to the message itself.
	if err := c.Register(fqn, m); err != nil {
		return nil, err
	}

	oneofs := realOneOfs(d)
	for _, name := range oneofs {
		if name != "" {
			m.OneOfs = append(m.OneOfs, name)
		}
	}

	for _, fd := range d.GetField() {
		m.Fields = append(m.Fields, c.parseField(fd, fqn, file.Syntax, oneofs))
	}

	if len(d.GetNestedType()) > 0 || len(d.GetEnumType()) > 0 {
		nestedPrefix := prefix + m.Name + c.separator
		for _, nd := range d.GetNestedType() {
			isEntry, err := c.AddMapEntry(fqn, nd)
			if err != nil {
				return nil, err
			}
			if isEntry {
				continue
			}
			nm, err := c.parseMessage(nd, fqn, nestedPrefix, file)
			if err != nil {
				return nil, err
			}
			m.Messages = append(m.Messages, nm)
		}
		for _, ed := range d.GetEnumType() {
			e, err := c.parseEnum(ed, fqn, nestedPrefix, file.Package)
			if err != nil {
				return nil, err
			}
			m.Enums = append(m.Enums, e)
		}
	}

	return m, nil
}

// realOneOfs returns the oneof names indexed like d.OneofDecl. Synthetic
// oneofs, which only contain a proto3 optional field, are left empty.
func realOneOfs(d *descriptorpb.DescriptorProto) []string {
	names := make([]string, len(d.GetOneofDecl()))
	for _, f := range d.GetField() {
		if f.OneofIndex == nil || f.GetProto3Optional() {
			continue
		}
		if i := int(f.GetOneofIndex()); i < len(names) {
			names[i] = d.GetOneofDecl()[i].GetName()
		}
	}
	return names
}

// fixupPlaceholders resolves the field types of m and its nested messages,
// then assigns presence indices in field declaration order.
func (m *Message) fixupPlaceholders(c *ParseContext) error {
	next := 0
	for _, f := range m.Fields {
		t, err := c.resolve(f.Ref, f.fqn)
		if err != nil {
			return err
		}
		f.Ref = Resolved{Type: t}

		msg, isMessage := t.(*Message)
		if f.untypedRef && isMessage && f.Conditional == Always && f.Repeated == Single {
			// A kind-less reference only learns it points at a message here.
			f.Conditional = FieldPresence
		}
		if f.Conditional == FieldPresence {
			if isMessage && !msg.IsValueType {
				// The reference itself represents absence.
				f.Conditional = Always
			} else {
				f.PresenceIndex = next
				next++
			}
		}
		if f.Repeated == Repeated {
			if _, ok := t.(*MapEntryType); ok {
				f.Repeated = Dictionary
			}
		}
	}
	for _, nm := range m.Messages {
		if err := nm.fixupPlaceholders(c); err != nil {
			return err
		}
	}
	return nil
}
