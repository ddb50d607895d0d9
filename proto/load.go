package proto

import (
	"context"

	"github.com/ktr0731/protoir/codegen"
	"github.com/ktr0731/protoir/logger"
	"github.com/pkg/errors"
)

// Load reads every file of src and compiles them into one model. Files
// requested explicitly from src, such as the .proto files passed to
// NewFileSource, are selected for generation in addition to any selected by opts.
func Load(ctx context.Context, src Source, opts ...codegen.CompileOption) (*codegen.Set, error) {
	fds, err := src.Files(ctx)
	if err != nil {
		return nil, err
	}
	logger.Scriptln(func() []interface{} {
		names := make([]interface{}, 0, len(fds)+1)
		names = append(names, "loaded files:")
		for _, fd := range fds {
			names = append(names, fd.GetName())
		}
		return names
	})

	if g, ok := src.(generator); ok {
		opts = append([]codegen.CompileOption{codegen.WithFilesToGenerate(g.FilesToGenerate()...)}, opts...)
	}
	set, err := codegen.Compile(fds, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "proto: failed to compile descriptors")
	}
	return set, nil
}
