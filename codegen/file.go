package codegen

// File is the model of one schema file.
type File struct {
	Name         string
	Package      string
	Syntax       string
	Dependencies []string

	Messages []*Message
	Enums    []*Enum
	Services []*Service
}

// Set is the result of a compilation. It is read-only: nothing mutates it
// after Compile returns.
type Set struct {
	// Files are the files selected for generation, in input order.
	Files []*File

	ctx *ParseContext
}

// Lookup returns any type registered in the compilation, including types of
// files that were not selected for generation.
func (s *Set) Lookup(fqn string) (Type, bool) {
	return s.ctx.Resolve(fqn)
}

// Types returns the fully-qualified names of every registered type in
// registration order.
func (s *Set) Types() []string {
	names := make([]string, len(s.ctx.order))
	copy(names, s.ctx.order)
	return names
}
