// Package json provides a JSON presenter that formatting.
package json

import (
	gojson "encoding/json"

	"github.com/ktr0731/protoir/codegen"
	"github.com/pkg/errors"
)

// Presenter is a presenter that formats a set into JSON string.
type Presenter struct{}

// Format formats s into JSON string. If indent is not empty, Format indents the output.
func (p *Presenter) Format(s *codegen.Set, indent string) (string, error) {
	var b []byte
	var err error
	if indent == "" {
		b, err = gojson.Marshal(s)
	} else {
		b, err = gojson.MarshalIndent(s, "", indent)
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to format the set into JSON string")
	}
	return string(b), nil
}

func NewPresenter() *Presenter {
	return &Presenter{}
}
