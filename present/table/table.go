// Package table provides a table like formatting.
package table

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/ktr0731/protoir/codegen"
	"github.com/olekukonko/tablewriter"
)

// Presenter formats every field of the generated files as a row.
type Presenter struct{}

// fieldTable holds the columns of the output. Each field is a column and
// the i-th elements of all columns form the i-th row.
type fieldTable struct {
	Message     []string                  `table:"message"`
	Field       []string                  `table:"field"`
	Number      []int32                   `table:"number"`
	Type        []string                  `table:"type"`
	Repeated    []codegen.RepeatedKind    `table:"repeated"`
	Conditional []codegen.ConditionalKind `table:"conditional"`
	Presence    []string                  `table:"presence"`
}

func (t *fieldTable) addMessage(m *codegen.Message) {
	for _, f := range m.Fields {
		t.Message = append(t.Message, m.FullyQualifiedName())
		t.Field = append(t.Field, f.OriginalName())
		t.Number = append(t.Number, f.Number)
		t.Type = append(t.Type, typeName(f))
		t.Repeated = append(t.Repeated, f.Repeated)
		t.Conditional = append(t.Conditional, f.Conditional)
		if f.HasPresenceIndex() {
			t.Presence = append(t.Presence, fmt.Sprint(f.PresenceIndex))
		} else {
			t.Presence = append(t.Presence, "-")
		}
	}
	for _, nm := range m.Messages {
		t.addMessage(nm)
	}
}

func typeName(f *codegen.Field) string {
	if e, ok := f.MapEntry(); ok {
		return fmt.Sprintf("map<%s, %s>", e.KeyType().FullyQualifiedName(), e.ValueType().FullyQualifiedName())
	}
	return f.Type().FullyQualifiedName()
}

// Format ignores indent.
func (p *Presenter) Format(s *codegen.Set, indent string) (string, error) {
	var t fieldTable
	for _, f := range s.Files {
		for _, m := range f.Messages {
			t.addMessage(m)
		}
	}

	rv := reflect.ValueOf(t)
	var w bytes.Buffer
	table := tablewriter.NewWriter(&w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(processStructKeys(rv.Type()))
	table.AppendBulk(processStructValues(rv))
	table.Render()
	return w.String(), nil
}

func processStructKeys(rt reflect.Type) []string {
	keys := make([]string, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		key := sf.Tag.Get("table")
		if key == "" {
			key = strings.ToLower(sf.Name)
		}
		keys = append(keys, key)
	}
	return keys
}

// processStructValues transposes the columns of rv into rows.
func processStructValues(rv reflect.Value) [][]string {
	var n int
	for i := 0; i < rv.NumField(); i++ {
		if l := rv.Field(i).Len(); l > n {
			n = l
		}
	}

	vals := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, rv.NumField())
		for j := 0; j < rv.NumField(); j++ {
			if f := rv.Field(j); f.Len() > i {
				row[j] = fmt.Sprint(f.Index(i).Interface())
			}
		}
		vals = append(vals, row)
	}
	return vals
}

func NewPresenter() *Presenter {
	return &Presenter{}
}
