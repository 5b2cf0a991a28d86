package cli

import (
	"errors"
	"io/fs"

	"github.com/gocribo/cribo/internal/cerr"
)

// Exit codes for spec.md §6: 0 success, non-zero for every named error
// category. The categories don't need to be distinguishable from the
// shell, only non-zero; this assigns stable distinct codes anyway so a
// calling script can tell them apart without parsing stderr.
const (
	ExitOK = iota
	ExitIOError
	ExitParseError
	ExitResolutionError
	ExitCircularDependency
	ExitAmbiguousExport
	ExitOther
)

// ExitCodeFor maps a pipeline error to a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	var parseErr *cerr.ParseError
	var resolutionErr *cerr.ResolutionError
	var relativeErr *cerr.InvalidRelativeImportError
	var cycleErr *cerr.CircularDependencyError
	var ambiguityErr *cerr.SymbolAmbiguityError
	var pathErr *fs.PathError
	switch {
	case errors.As(err, &parseErr):
		return ExitParseError
	case errors.As(err, &resolutionErr), errors.As(err, &relativeErr):
		return ExitResolutionError
	case errors.As(err, &cycleErr):
		return ExitCircularDependency
	case errors.As(err, &ambiguityErr):
		return ExitAmbiguousExport
	case errors.As(err, &pathErr):
		return ExitIOError
	default:
		return ExitOther
	}
}
