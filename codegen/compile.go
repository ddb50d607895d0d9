// Package codegen builds the language-neutral model that drives source code
// generation from parsed protocol buffer descriptors.
//
// Compilation runs in two phases over one ParseContext. The parse phase walks
// every file and registers each message and enum under its fully-qualified
// name. A field whose type has not been registered yet, because it is declared
// later or in another file, keeps a placeholder. Once every file is parsed the
// fixup phase resolves the placeholders, assigns presence indices and turns
// map fields into dictionary fields.
package codegen

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/descriptorpb"
)

type compileOptions struct {
	generate     []string
	parseOptions []Option
}

// CompileOption configures Compile.
type CompileOption func(*compileOptions)

// WithFilesToGenerate restricts Set.Files to the named files. Types of the
// other files are still registered, so references into them resolve.
func WithFilesToGenerate(names ...string) CompileOption {
	return func(o *compileOptions) {
		o.generate = append(o.generate, names...)
	}
}

// WithParseOptions passes opts to the ParseContext of the compilation.
func WithParseOptions(opts ...Option) CompileOption {
	return func(o *compileOptions) {
		o.parseOptions = append(o.parseOptions, opts...)
	}
}

// Compile parses files and resolves the resulting model. files may be in any
// order; a reference into a file that appears later still resolves. Any
// duplicate or unresolved type aborts the compilation.
func Compile(files []*descriptorpb.FileDescriptorProto, opts ...CompileOption) (*Set, error) {
	var o compileOptions
	for _, opt := range opts {
		opt(&o)
	}

	ctx := NewParseContext(o.parseOptions...)
	for _, fd := range files {
		if _, err := ctx.ParseFile(fd); err != nil {
			return nil, err
		}
	}
	if err := ctx.Fixup(); err != nil {
		return nil, err
	}

	set := &Set{ctx: ctx}
	if len(o.generate) == 0 {
		set.Files = ctx.Files()
		return set, nil
	}

	byName := make(map[string]*File, len(ctx.Files()))
	for _, f := range ctx.Files() {
		byName[f.Name] = f
	}
	selected := make(map[string]bool, len(o.generate))
	for _, n := range o.generate {
		if _, ok := byName[n]; !ok {
			return nil, errors.Wrapf(ErrUnknownFile, "'%s' is not part of the compilation", n)
		}
		selected[n] = true
	}
	for _, f := range ctx.Files() {
		if selected[f.Name] {
			set.Files = append(set.Files, f)
		}
	}
	return set, nil
}
