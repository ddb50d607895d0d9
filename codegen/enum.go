package codegen

import (
	"google.golang.org/protobuf/types/descriptorpb"
)

// Enum is an enum type. It is not modified after parsing.
type Enum struct {
	Name                 string
	FullyQualifiedPrefix string
	Package              string
	IsDeprecated         bool
	// Values keep declaration order.
	Values []*EnumValue

	originalName string
	fqn          string
}

// EnumValue is one literal of an enum.
type EnumValue struct {
	Name         string
	Number       int32
	IsDeprecated bool

	originalName string
}

func (e *Enum) isType() {}

func (e *Enum) FullyQualifiedName() string {
	return e.fqn
}

// OriginalName returns the schema-exact name.
func (e *Enum) OriginalName() string {
	return e.originalName
}

// OriginalName returns the schema-exact name.
func (v *EnumValue) OriginalName() string {
	return v.originalName
}

func (c *ParseContext) parseEnum(d *descriptorpb.EnumDescriptorProto, scope, prefix, pkg string) (*Enum, error) {
	fqn := qualify(scope, d.GetName())
	e := &Enum{
		Name:                 c.normalizer.Name(d),
		FullyQualifiedPrefix: prefix,
		Package:              pkg,
		IsDeprecated:         d.GetOptions().GetDeprecated(),
		Values:               make([]*EnumValue, 0, len(d.GetValue())),
		originalName:         d.GetName(),
		fqn:                  fqn,
	}
	for _, v := range d.GetValue() {
		e.Values = append(e.Values, &EnumValue{
			Name:         c.normalizer.Name(v),
			Number:       v.GetNumber(),
			IsDeprecated: v.GetOptions().GetDeprecated(),
			originalName: v.GetName(),
		})
	}
	if err := c.Register(fqn, e); err != nil {
		return nil, err
	}
	return e, nil
}
