package codegen

import (
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

func TestPascalCase(t *testing.T) {
	cases := map[string]struct {
		in, expected string
	}{
		"snake case":          {"user_id", "UserId"},
		"upper snake case":    {"COLOR_RED", "ColorRed"},
		"camel case":          {"fooBar", "FooBar"},
		"acronym in a word":   {"http_URLPath", "HttpURLPath"},
		"single upper letter": {"a_b", "AB"},
		"digits":              {"field2_name", "Field2Name"},
		"leading digit":       {"_1st", "X1st"},
		"only separators":     {"__", "__"},
		"dotted":              {"foo.bar", "FooBar"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if actual := pascalCase(c.in); actual != c.expected {
				t.Errorf("expected %s, but got %s", c.expected, actual)
			}
		})
	}
}

func TestNormalizerByName(t *testing.T) {
	d := &descriptorpb.FieldDescriptorProto{Name: proto.String("user_id")}
	cases := map[string]struct {
		expected string
		hasErr   bool
	}{
		"":        {expected: "UserId"},
		"auto":    {expected: "UserId"},
		"NULL":    {expected: "user_id"},
		"unknown": {hasErr: true},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			n, err := NormalizerByName(name)
			if c.hasErr {
				if err == nil {
					t.Errorf("should return an error, but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("should not return an error, but got '%s'", err)
			}
			if actual := n.Name(d); actual != c.expected {
				t.Errorf("expected %s, but got %s", c.expected, actual)
			}
		})
	}
}
