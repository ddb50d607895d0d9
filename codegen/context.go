package codegen

import (
	"strings"

	"github.com/ktr0731/protoir/logger"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Option configures a ParseContext.
type Option func(*ParseContext)

// WithNameNormalizer replaces the default AutoNormalizer.
func WithNameNormalizer(n NameNormalizer) Option {
	return func(c *ParseContext) {
		c.normalizer = n
	}
}

// WithValueTypes marks messages whose storage cannot represent absence,
// by fully-qualified name. Presence-tracked fields of these types keep their
// presence slot.
func WithValueTypes(fqns ...string) Option {
	return func(c *ParseContext) {
		for _, n := range fqns {
			c.valueTypes[strings.TrimPrefix(n, ".")] = true
		}
	}
}

// WithAccess sets the accessibility of every parsed message.
func WithAccess(a Access) Option {
	return func(c *ParseContext) {
		c.access = a
	}
}

// WithNestedSeparator sets the separator appended to a parent's name when
// building the FullyQualifiedPrefix of nested types.
func WithNestedSeparator(sep string) Option {
	return func(c *ParseContext) {
		c.separator = sep
	}
}

// ParseContext is the type registry of one compilation. It maps
// fully-qualified schema names to model nodes and owns the normalization
// policy shared by every parse. A ParseContext is not safe for concurrent use.
//
// Files are parsed with ParseFile. Once every file has been parsed, Fixup
// resolves the remaining placeholders and freezes the context.
type ParseContext struct {
	normalizer NameNormalizer
	valueTypes map[string]bool
	access     Access
	separator  string

	// key: fully-qualified name without the leading dot.
	types map[string]Type
	// registration order, for deterministic iteration.
	order      []string
	mapEntries []*MapEntryType

	files     []*File
	fileNames map[string]bool
	frozen    bool
}

// NewParseContext returns an empty registry.
func NewParseContext(opts ...Option) *ParseContext {
	c := &ParseContext{
		normalizer: AutoNormalizer,
		valueTypes: map[string]bool{},
		access:     Public,
		separator:  ".",
		types:      map[string]Type{},
		fileNames:  map[string]bool{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Register records t under its fully-qualified name. It fails with a
// *DuplicateTypeError if the name is already taken.
func (c *ParseContext) Register(fqn string, t Type) error {
	if c.frozen {
		return errors.Wrapf(ErrRegistryFrozen, "failed to register '%s'", fqn)
	}
	fqn = strings.TrimPrefix(fqn, ".")
	if _, ok := c.types[fqn]; ok {
		return &DuplicateTypeError{Name: fqn}
	}
	c.types[fqn] = t
	c.order = append(c.order, fqn)
	logger.Printf("registered %T %s", t, fqn)
	return nil
}

// Resolve returns the type registered under name. A leading dot, as used by
// descriptor type names, is ignored.
func (c *ParseContext) Resolve(name string) (Type, bool) {
	t, ok := c.types[strings.TrimPrefix(name, ".")]
	return t, ok
}

// AddMapEntry reports whether d is the synthetic entry type of a map field,
// declared in the message named scope. Recognition relies only on the
// map_entry option the schema compiler sets; a two-field message without it
// is an ordinary message. A recognized entry is registered as *MapEntryType.
func (c *ParseContext) AddMapEntry(scope string, d *descriptorpb.DescriptorProto) (bool, error) {
	if !d.GetOptions().GetMapEntry() {
		return false, nil
	}
	fqn := qualify(scope, d.GetName())
	entry := &MapEntryType{fqn: fqn}
	for _, f := range d.GetField() {
		switch f.GetNumber() {
		case 1:
			entry.Key = c.typeRef(f)
		case 2:
			entry.Value = c.typeRef(f)
		}
	}
	if entry.Key == nil || entry.Value == nil {
		return true, errors.Wrapf(ErrMalformedMapEntry, "'%s' must declare key = 1 and value = 2", fqn)
	}
	if err := c.Register(fqn, entry); err != nil {
		return true, err
	}
	c.mapEntries = append(c.mapEntries, entry)
	return true, nil
}

// typeRef returns the reference of a field's declared type. Scalars and
// already registered types resolve immediately, anything else is left as a
// placeholder for Fixup.
func (c *ParseContext) typeRef(f *descriptorpb.FieldDescriptorProto) TypeRef {
	if f.Type != nil && !isReferenceKind(f.GetType()) {
		return Resolved{Type: Scalar(f.GetType())}
	}
	return c.ref(f.GetTypeName())
}

func (c *ParseContext) ref(name string) TypeRef {
	name = strings.TrimPrefix(name, ".")
	if t, ok := c.Resolve(name); ok {
		return Resolved{Type: t}
	}
	return Unresolved{Name: name}
}

// resolve turns a placeholder into a resolved reference. owner names the
// field or method holding r for error reporting.
func (c *ParseContext) resolve(r TypeRef, owner string) (Type, error) {
	switch r := r.(type) {
	case Resolved:
		return r.Type, nil
	case Unresolved:
		t, ok := c.Resolve(r.Name)
		if !ok {
			return nil, &UnresolvedTypeError{Field: owner, Target: r.Name}
		}
		logger.Printf("resolved %s -> %s", owner, r.Name)
		return t, nil
	}
	return nil, &UnresolvedTypeError{Field: owner}
}

// ParseFile runs the parse phase for one file. Every message and enum it
// declares is registered before Fixup is allowed to run.
func (c *ParseContext) ParseFile(fd *descriptorpb.FileDescriptorProto) (*File, error) {
	if c.frozen {
		return nil, errors.Wrapf(ErrRegistryFrozen, "failed to parse '%s'", fd.GetName())
	}
	if c.fileNames[fd.GetName()] {
		return nil, errors.Wrapf(ErrDuplicateFile, "'%s'", fd.GetName())
	}
	c.fileNames[fd.GetName()] = true

	f := &File{
		Name:         fd.GetName(),
		Package:      fd.GetPackage(),
		Syntax:       syntaxOf(fd),
		Dependencies: fd.GetDependency(),
	}
	for _, md := range fd.GetMessageType() {
		m, err := c.parseMessage(md, f.Package, "", f)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse '%s'", f.Name)
		}
		f.Messages = append(f.Messages, m)
	}
	for _, ed := range fd.GetEnumType() {
		e, err := c.parseEnum(ed, f.Package, "", f.Package)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse '%s'", f.Name)
		}
		f.Enums = append(f.Enums, e)
	}
	for _, sd := range fd.GetService() {
		f.Services = append(f.Services, c.parseService(sd, f.Package))
	}

	c.files = append(c.files, f)
	return f, nil
}

// Fixup resolves every placeholder left by the parse phase across all files
// parsed by c, assigns presence indices and reclassifies map fields. It must
// be called once, after the last ParseFile. The context is frozen afterwards
// whether or not Fixup succeeds.
func (c *ParseContext) Fixup() error {
	if c.frozen {
		return errors.Wrap(ErrRegistryFrozen, "fixup has already run")
	}
	c.frozen = true

	for _, e := range c.mapEntries {
		var err error
		if e.Key, err = c.fixupRef(e.Key, e.fqn+".key"); err != nil {
			return err
		}
		if e.Value, err = c.fixupRef(e.Value, e.fqn+".value"); err != nil {
			return err
		}
	}
	for _, f := range c.files {
		for _, m := range f.Messages {
			if err := m.fixupPlaceholders(c); err != nil {
				return errors.Wrapf(err, "failed to fix up '%s'", f.Name)
			}
		}
		for _, s := range f.Services {
			if err := s.fixupPlaceholders(c); err != nil {
				return errors.Wrapf(err, "failed to fix up '%s'", f.Name)
			}
		}
	}
	return nil
}

func (c *ParseContext) fixupRef(r TypeRef, owner string) (TypeRef, error) {
	t, err := c.resolve(r, owner)
	if err != nil {
		return r, err
	}
	return Resolved{Type: t}, nil
}

// Files returns the files parsed so far, in parse order.
func (c *ParseContext) Files() []*File {
	return c.files
}

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

func syntaxOf(fd *descriptorpb.FileDescriptorProto) string {
	if s := fd.GetSyntax(); s != "" {
		return s
	}
	return "proto2"
}
