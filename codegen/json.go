package codegen

import (
	"encoding/json"
)

// The JSON form omits empty collections, false flags, blank packages, public
// access and original names equal to the identifier. Type references render
// as names so recursive types stay finite.

func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Files []*File `json:"files,omitempty"`
	}{s.Files})
}

func (f *File) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name         string     `json:"name"`
		Package      string     `json:"package,omitempty"`
		Syntax       string     `json:"syntax,omitempty"`
		Dependencies []string   `json:"dependencies,omitempty"`
		Messages     []*Message `json:"messages,omitempty"`
		Enums        []*Enum    `json:"enums,omitempty"`
		Services     []*Service `json:"services,omitempty"`
	}{
		Name:         f.Name,
		Package:      f.Package,
		Syntax:       f.Syntax,
		Dependencies: f.Dependencies,
		Messages:     f.Messages,
		Enums:        f.Enums,
		Services:     f.Services,
	})
}

func (m *Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name                 string     `json:"name"`
		OriginalName         string     `json:"originalName,omitempty"`
		FullyQualifiedName   string     `json:"fullyQualifiedName"`
		FullyQualifiedPrefix string     `json:"fullyQualifiedPrefix,omitempty"`
		Package              string     `json:"package,omitempty"`
		IsDeprecated         bool       `json:"isDeprecated,omitempty"`
		IsValueType          bool       `json:"isValueType,omitempty"`
		Access               string     `json:"access,omitempty"`
		Fields               []*Field   `json:"fields,omitempty"`
		OneOfs               []string   `json:"oneOfs,omitempty"`
		Messages             []*Message `json:"messages,omitempty"`
		Enums                []*Enum    `json:"enums,omitempty"`
	}{
		Name:                 m.Name,
		OriginalName:         omitSame(m.originalName, m.Name),
		FullyQualifiedName:   m.fqn,
		FullyQualifiedPrefix: m.FullyQualifiedPrefix,
		Package:              m.Package,
		IsDeprecated:         m.IsDeprecated,
		IsValueType:          m.IsValueType,
		Access:               accessString(m.Access),
		Fields:               m.Fields,
		OneOfs:               m.OneOfs,
		Messages:             m.Messages,
		Enums:                m.Enums,
	})
}

func (f *Field) MarshalJSON() ([]byte, error) {
	v := struct {
		Name          string `json:"name"`
		OriginalName  string `json:"originalName,omitempty"`
		Number        int32  `json:"number"`
		Type          string `json:"type"`
		Key           string `json:"key,omitempty"`
		Value         string `json:"value,omitempty"`
		Repeated      string `json:"repeated,omitempty"`
		Conditional   string `json:"conditional,omitempty"`
		PresenceIndex *int   `json:"presenceIndex,omitempty"`
		OneOf         string `json:"oneOf,omitempty"`
		JSONName      string `json:"jsonName,omitempty"`
		DefaultValue  string `json:"defaultValue,omitempty"`
		IsDeprecated  bool   `json:"isDeprecated,omitempty"`
		IsPacked      bool   `json:"isPacked,omitempty"`
	}{
		Name:         f.Name,
		OriginalName: omitSame(f.originalName, f.Name),
		Number:       f.Number,
		Type:         refName(f.Ref),
		OneOf:        f.OneOf,
		JSONName:     f.JSONName,
		DefaultValue: f.DefaultValue,
		IsDeprecated: f.IsDeprecated,
		IsPacked:     f.IsPacked,
	}
	if e, ok := f.MapEntry(); ok {
		v.Key = refName(e.Key)
		v.Value = refName(e.Value)
	}
	if f.Repeated != Single {
		v.Repeated = f.Repeated.String()
	}
	if f.Conditional != Always {
		v.Conditional = f.Conditional.String()
	}
	if f.HasPresenceIndex() {
		i := f.PresenceIndex
		v.PresenceIndex = &i
	}
	return json.Marshal(v)
}

type enumValueJSON struct {
	Name         string `json:"name"`
	OriginalName string `json:"originalName,omitempty"`
	Number       int32  `json:"number"`
	IsDeprecated bool   `json:"isDeprecated,omitempty"`
}

func (e *Enum) MarshalJSON() ([]byte, error) {
	values := make([]enumValueJSON, len(e.Values))
	for i, v := range e.Values {
		values[i] = enumValueJSON{
			Name:         v.Name,
			OriginalName: omitSame(v.originalName, v.Name),
			Number:       v.Number,
			IsDeprecated: v.IsDeprecated,
		}
	}
	return json.Marshal(struct {
		Name                 string          `json:"name"`
		OriginalName         string          `json:"originalName,omitempty"`
		FullyQualifiedName   string          `json:"fullyQualifiedName"`
		FullyQualifiedPrefix string          `json:"fullyQualifiedPrefix,omitempty"`
		Package              string          `json:"package,omitempty"`
		IsDeprecated         bool            `json:"isDeprecated,omitempty"`
		Values               []enumValueJSON `json:"values,omitempty"`
	}{
		Name:                 e.Name,
		OriginalName:         omitSame(e.originalName, e.Name),
		FullyQualifiedName:   e.fqn,
		FullyQualifiedPrefix: e.FullyQualifiedPrefix,
		Package:              e.Package,
		IsDeprecated:         e.IsDeprecated,
		Values:               values,
	})
}

type methodJSON struct {
	Name            string `json:"name"`
	OriginalName    string `json:"originalName,omitempty"`
	Input           string `json:"input"`
	Output          string `json:"output"`
	ClientStreaming bool   `json:"clientStreaming,omitempty"`
	ServerStreaming bool   `json:"serverStreaming,omitempty"`
	IsDeprecated    bool   `json:"isDeprecated,omitempty"`
}

func (s *Service) MarshalJSON() ([]byte, error) {
	methods := make([]methodJSON, len(s.Methods))
	for i, m := range s.Methods {
		methods[i] = methodJSON{
			Name:            m.Name,
			OriginalName:    omitSame(m.originalName, m.Name),
			Input:           refName(m.Input),
			Output:          refName(m.Output),
			ClientStreaming: m.ClientStreaming,
			ServerStreaming: m.ServerStreaming,
			IsDeprecated:    m.IsDeprecated,
		}
	}
	return json.Marshal(struct {
		Name               string       `json:"name"`
		OriginalName       string       `json:"originalName,omitempty"`
		FullyQualifiedName string       `json:"fullyQualifiedName"`
		Package            string       `json:"package,omitempty"`
		IsDeprecated       bool         `json:"isDeprecated,omitempty"`
		Methods            []methodJSON `json:"methods,omitempty"`
	}{
		Name:               s.Name,
		OriginalName:       omitSame(s.originalName, s.Name),
		FullyQualifiedName: s.fqn,
		Package:            s.Package,
		IsDeprecated:       s.IsDeprecated,
		Methods:            methods,
	})
}

func omitSame(original, name string) string {
	if original == name {
		return ""
	}
	return original
}

func accessString(a Access) string {
	if a == Public {
		return ""
	}
	return a.String()
}
