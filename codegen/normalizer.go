package codegen

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Descriptor is any descriptor proto carrying a schema name, such as
// *descriptorpb.DescriptorProto or *descriptorpb.FieldDescriptorProto.
type Descriptor interface {
	GetName() string
}

// NameNormalizer decides the target-language identifier of a descriptor.
// It is consulted once per type, field, enum value, service and method.
// The schema-exact name is always kept as OriginalName regardless of the result.
type NameNormalizer interface {
	Name(d Descriptor) string
}

// NameNormalizerFunc adapts a function to NameNormalizer.
type NameNormalizerFunc func(d Descriptor) string

func (f NameNormalizerFunc) Name(d Descriptor) string {
	return f(d)
}

// NullNormalizer keeps schema names verbatim.
var NullNormalizer NameNormalizer = NameNormalizerFunc(func(d Descriptor) string {
	return d.GetName()
})

// AutoNormalizer converts schema names into PascalCase identifiers.
var AutoNormalizer NameNormalizer = NameNormalizerFunc(func(d Descriptor) string {
	return pascalCase(d.GetName())
})

// NormalizerByName returns the normalizer registered under name.
func NormalizerByName(name string) (NameNormalizer, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return AutoNormalizer, nil
	case "null":
		return NullNormalizer, nil
	}
	return nil, errors.Errorf("unknown name normalizer '%s', must be one of auto or null", name)
}

// pascalCase joins the words of s separated by '_', '-' or '.'. A word written
// entirely in upper case is title-cased, other words only get their first
// letter upper-cased, so "COLOR_RED" becomes "ColorRed" and "http_URLPath"
// becomes "HttpURLPath".
func pascalCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	var b strings.Builder
	for _, w := range words {
		rs := []rune(w)
		if isUpperWord(rs) {
			rs = []rune(strings.ToLower(w))
		}
		rs[0] = unicode.ToUpper(rs[0])
		b.WriteString(string(rs))
	}
	out := b.String()
	if out == "" {
		return s
	}
	if unicode.IsDigit([]rune(out)[0]) {
		return "X" + out
	}
	return out
}

func isUpperWord(rs []rune) bool {
	var hasLetter bool
	for _, r := range rs {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter && len(rs) > 1
}
