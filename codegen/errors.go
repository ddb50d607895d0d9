package codegen

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrDuplicateType is returned when two types share a fully-qualified name.
	// Schema names are unique, so this signals a broken descriptor set.
	ErrDuplicateType = errors.New("duplicate type registration")

	// ErrUnresolvedType is returned when a placeholder cannot be resolved once
	// every file of the compilation has been parsed.
	ErrUnresolvedType = errors.New("unresolved type reference")

	// ErrDuplicateFile is returned when a file of the same name is parsed twice.
	ErrDuplicateFile = errors.New("duplicate file")

	// ErrUnknownFile is returned when a file to generate is not part of the compilation.
	ErrUnknownFile = errors.New("unknown file")

	// ErrRegistryFrozen is returned when parsing or fixup is requested after fixup.
	ErrRegistryFrozen = errors.New("registry is frozen")

	// ErrInvalidMethodType is returned when a method input or output is not a message.
	ErrInvalidMethodType = errors.New("method type is not a message")

	// ErrMalformedMapEntry is returned when a map entry lacks its key or value field.
	ErrMalformedMapEntry = errors.New("malformed map entry")
)

// DuplicateTypeError reports the name registered twice.
type DuplicateTypeError struct {
	Name string
}

func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateType, e.Name)
}

func (e *DuplicateTypeError) Unwrap() error {
	return ErrDuplicateType
}

// UnresolvedTypeError reports the field whose type could not be resolved.
// Field is the fully-qualified name of the field or method, Target the type
// name it refers to.
type UnresolvedTypeError struct {
	Field  string
	Target string
}

func (e *UnresolvedTypeError) Error() string {
	return fmt.Sprintf("%s: %s refers to %s", ErrUnresolvedType, e.Field, e.Target)
}

func (e *UnresolvedTypeError) Unwrap() error {
	return ErrUnresolvedType
}

func errUnknownAccess(s string) error {
	return errors.Errorf("unknown access '%s', must be one of public or internal", s)
}
