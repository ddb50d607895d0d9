// Package proto provides the descriptor sources schemas are compiled from.
package proto

import (
	"context"
	"os"

	"github.com/bufbuild/protocompile"
	"github.com/jhump/protoreflect/desc"
	"github.com/ktr0731/protoir/grpc/grpcreflection"
	"github.com/ktr0731/protoir/logger"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Source provides the file descriptors of one compilation.
//
//go:generate moq -out mock.go . Source
type Source interface {
	// Files returns every file of the compilation, each once, with
	// dependencies before the files importing them.
	Files(ctx context.Context) ([]*descriptorpb.FileDescriptorProto, error)
}

// generator is implemented by sources that know which of their files were
// requested explicitly. Other files are only dependencies.
type generator interface {
	FilesToGenerate() []string
}

type files struct {
	importPaths []string
	fnames      []string
}

// NewFileSource returns a Source compiling .proto files. Import paths work
// like protoc's -I, and the well-known types are always importable.
func NewFileSource(importPaths []string, fnames []string) Source {
	return &files{importPaths: importPaths, fnames: fnames}
}

func (f *files) Files(ctx context.Context) ([]*descriptorpb.FileDescriptorProto, error) {
	c := &protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			ImportPaths: f.importPaths,
		}),
	}
	compiled, err := c.Compile(ctx, f.fnames...)
	if err != nil {
		return nil, errors.Wrap(err, "proto: failed to compile proto files")
	}

	var col collector
	for _, fd := range compiled {
		col.addReflect(fd)
	}
	return col.files, nil
}

func (f *files) FilesToGenerate() []string {
	return f.fnames
}

type descriptorSets struct {
	paths []string
}

// NewDescriptorSetSource returns a Source reading binary FileDescriptorSets,
// such as the output of protoc --include_imports -o. Files are merged in the
// order of paths and a file contained in several sets is kept once.
func NewDescriptorSetSource(paths ...string) Source {
	return &descriptorSets{paths: paths}
}

func (s *descriptorSets) Files(ctx context.Context) ([]*descriptorpb.FileDescriptorProto, error) {
	sets := make([]*descriptorpb.FileDescriptorSet, len(s.paths))
	eg, ctx := errgroup.WithContext(ctx)
	for i, p := range s.paths {
		i, p := i, p
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := os.ReadFile(p)
			if err != nil {
				return errors.Wrapf(err, "proto: failed to read descriptor set '%s'", p)
			}
			var set descriptorpb.FileDescriptorSet
			if err := proto.Unmarshal(b, &set); err != nil {
				return errors.Wrapf(err, "proto: failed to decode descriptor set '%s'", p)
			}
			sets[i] = &set
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var c collector
	for _, set := range sets {
		for _, fd := range set.GetFile() {
			c.add(fd)
		}
	}
	return c.files, nil
}

type reflection struct {
	client grpcreflection.Client
}

// NewReflectionSource returns a Source listing the files of the services a
// reflection-enabled server exposes, along with their dependencies.
func NewReflectionSource(client grpcreflection.Client) Source {
	return &reflection{client: client}
}

func (r *reflection) Files(ctx context.Context) ([]*descriptorpb.FileDescriptorProto, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fds, err := r.client.ListFiles()
	if err != nil {
		return nil, errors.Wrap(err, "proto: failed to list files by gRPC reflection")
	}
	var c collector
	for _, fd := range fds {
		c.addDesc(fd)
	}
	return c.files, nil
}

// collector flattens file graphs into dependency order, keeping each file once.
type collector struct {
	files []*descriptorpb.FileDescriptorProto
	seen  map[string]bool
}

func (c *collector) visit(name string) bool {
	if c.seen == nil {
		c.seen = map[string]bool{}
	}
	if c.seen[name] {
		return false
	}
	c.seen[name] = true
	return true
}

func (c *collector) add(fd *descriptorpb.FileDescriptorProto) {
	if !c.visit(fd.GetName()) {
		logger.Printf("file %s appears more than once, skipped", fd.GetName())
		return
	}
	c.files = append(c.files, fd)
}

func (c *collector) addReflect(fd protoreflect.FileDescriptor) {
	if !c.visit(fd.Path()) {
		return
	}
	imports := fd.Imports()
	for i := 0; i < imports.Len(); i++ {
		c.addReflect(imports.Get(i).FileDescriptor)
	}
	c.files = append(c.files, protodesc.ToFileDescriptorProto(fd))
}

func (c *collector) addDesc(fd *desc.FileDescriptor) {
	if !c.visit(fd.GetName()) {
		return
	}
	for _, dep := range fd.GetDependencies() {
		c.addDesc(dep)
	}
	c.files = append(c.files, fd.AsFileDescriptorProto())
}
