package grpc

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Headers represents gRPC metadata sent with reflection requests. A key
// corresponds to one or more values.
type Headers map[string][]string

// NewHeaders validates m and returns it as Headers. Keys are lower-cased
// because gRPC metadata keys are case-insensitive.
func NewHeaders(m map[string][]string) (Headers, error) {
	h := Headers{}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range m[k] {
			if err := h.Add(k, v); err != nil {
				return nil, err
			}
		}
	}
	return h, nil
}

// Add appends a value v to a key k. k must consist of letters, digits, '-', '_' and '.'.
func (h Headers) Add(k, v string) error {
	k = strings.ToLower(k)
	if _, ok := h[k]; !ok {
		if k == "" {
			return errors.New("empty header key")
		}
		for _, r := range k {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' && r != '.' {
				return errors.Errorf("invalid char '%c' in key '%s'", r, k)
			}
		}
	}
	h[k] = distinct(append(h[k], v))
	return nil
}

// distinct removes duplicated elements.
func distinct(s []string) []string {
	newSlice := make([]string, 0, len(s))
	encountered := map[string]struct{}{}
	for _, v := range s {
		if _, found := encountered[v]; !found {
			newSlice = append(newSlice, v)
			encountered[v] = struct{}{}
		}
	}
	return newSlice
}
