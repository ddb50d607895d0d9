package app

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/ktr0731/go-multierror"
	"github.com/pkg/errors"
)

// flags defines available command line flags.
type flags struct {
	source struct {
		path          []string
		proto         []string
		descriptorSet []string
		generate      []string
	}

	server struct {
		host       string
		port       string
		header     map[string][]string
		web        bool
		reflection bool
		tls        bool
		cacert     string
		cert       string
		certKey    string
		serverName string
	}

	compile struct {
		normalizer string
		valueTypes []string
		access     string
		separator  string
	}

	output struct {
		format string
		indent string
	}

	meta struct {
		edit       bool
		editGlobal bool
		verbose    bool
		version    bool
		help       bool
	}
}

// validate defines invalid conditions and validates whether f has invalid conditions.
func (f *flags) validate() error {
	var result error
	invalidCases := []struct {
		name string
		cond bool
	}{
		{"cannot specify both of --edit and --edit-global", f.meta.edit && f.meta.editGlobal},
		{"--version cannot be used with --edit or --edit-global", f.meta.version && (f.meta.edit || f.meta.editGlobal)},
	}
	for _, c := range invalidCases {
		if c.cond {
			result = multierror.Append(result, errors.New(c.name))
		}
	}
	return result
}

// -- stringToString Value.
type stringToStringSliceValue struct {
	value   *map[string][]string
	changed bool
}

func newStringToStringValue(val map[string][]string, p *map[string][]string) *stringToStringSliceValue {
	ssv := new(stringToStringSliceValue)
	ssv.value = p
	*ssv.value = val
	return ssv
}

// Format: a=1,b=2.
func (s *stringToStringSliceValue) Set(val string) error {
	var ss []string
	n := strings.Count(val, "=")
	switch n {
	case 0:
		return errors.Errorf("%s must be formatted as key=value", val)
	case 1:
		ss = append(ss, strings.Trim(val, `"`))
	default:
		r := csv.NewReader(strings.NewReader(val))
		var err error
		ss, err = r.Read()
		if err != nil {
			return err
		}
	}

	out := make(map[string][]string, len(ss))
	for _, pair := range ss {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return fmt.Errorf("%s must be formatted as key=value", pair)
		}
		out[kv[0]] = append(out[kv[0]], kv[1])
	}
	if !s.changed {
		*s.value = out
	} else {
		for k, v := range out {
			(*s.value)[k] = append((*s.value)[k], v...)
		}
	}
	s.changed = true
	return nil
}

func (s *stringToStringSliceValue) Type() string {
	return "key=value"
}

func (s *stringToStringSliceValue) String() string {
	keys := make([]string, 0, len(*s.value))
	for k := range *s.value {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	records := make([]string, 0, len(keys))
	for _, k := range keys {
		records = append(records, k+"="+strings.Join((*s.value)[k], ","))
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(records); err != nil {
		panic(err)
	}
	w.Flush()
	return "[" + strings.TrimSpace(buf.String()) + "]"
}
