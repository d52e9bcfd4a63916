package pathresolver

import "fmt"

// NotFoundError means an import could not be resolved against any
// configured root, even after project-root normalization was attempted.
type NotFoundError struct {
	DottedName string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pathresolver: module %q not found under any root", e.DottedName)
}

// RelativeOutOfPackageError means a relative import's dot count walks
// further up the package hierarchy than the importing file's own package
// nesting allows.
type RelativeOutOfPackageError struct {
	FilePath string
	DotCount int
}

func (e *RelativeOutOfPackageError) Error() string {
	return fmt.Sprintf("pathresolver: relative import with %d leading dots in %q escapes its package", e.DotCount, e.FilePath)
}

// AmbiguousPackageError means two different roots provide different files
// under the same dotted name and neither takes unconditional precedence
// (i.e. the conflict is between peers, not resolved by root order alone
// reaching a single winner for the caller's purposes).
type AmbiguousPackageError struct {
	DottedName string
	Candidates []string
}

func (e *AmbiguousPackageError) Error() string {
	return fmt.Sprintf("pathresolver: %q is ambiguous across %d candidates", e.DottedName, len(e.Candidates))
}
