// Package present defines presenters which render a compiled codegen.Set for inspection.
package present

import "github.com/ktr0731/protoir/codegen"

// Presenter formats a compiled set for displaying it.
type Presenter interface {
	// Format receives a compiled set s and returns the formatted output as string.
	// indent is used by presenters that support indentation.
	Format(s *codegen.Set, indent string) (string, error)
}
