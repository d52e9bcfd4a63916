package pathresolver

import "strings"

// GetImportsFromAbsoluteName resolves a dotted name from an `import x.y.z`
// or `from x.y import z` statement against snap, as seen from fromFile.
//
// Resolution is tried in order:
//  1. The dotted name as given, if it resolves directly.
//  2. The dotted name with the importing file's own project root prepended,
//     covering project-internal imports written relative to the project
//     root rather than fully qualified.
//  3. NotFoundError.
//
// A pure function: it never mutates snap and the same arguments always
// produce the same result, so callers may memoize it freely.
func GetImportsFromAbsoluteName(snap *Snapshot, dottedName string, fromFile string) (Entry, error) {
	if dottedName == "" {
		return Entry{}, &NotFoundError{DottedName: dottedName}
	}

	if entry, ok := snap.Lookup(dottedName); ok {
		if amb, ambErr := checkAmbiguous(snap, dottedName); ambErr == nil && amb != nil {
			return Entry{}, amb
		}
		return entry, nil
	}

	currentModule, found := snap.ModuleForFile(fromFile)
	if found {
		projectRoot := firstComponent(currentModule)
		candidate := projectRoot + "." + dottedName
		if entry, ok := snap.Lookup(candidate); ok {
			if amb, ambErr := checkAmbiguous(snap, candidate); ambErr == nil && amb != nil {
				return Entry{}, amb
			}
			return entry, nil
		}
	}

	return Entry{}, &NotFoundError{DottedName: dottedName}
}

// checkAmbiguous reports a hard conflict only when two non-stub entries from
// different roots claim the same dotted name: source-vs-stub and same-root
// duplicates already have a deterministic winner via winnerOf.
func checkAmbiguous(snap *Snapshot, dottedName string) (*AmbiguousPackageError, error) {
	candidates := snap.Candidates(dottedName)
	if len(candidates) <= 1 {
		return nil, nil
	}
	distinctFiles := map[string]bool{}
	for _, c := range candidates {
		distinctFiles[c.FilePath] = true
	}
	if len(distinctFiles) <= 1 {
		return nil, nil
	}
	distinctRoots := map[string]bool{}
	for _, c := range candidates {
		if c.Kind != KindStub {
			distinctRoots[c.Root] = true
		}
	}
	if len(distinctRoots) <= 1 {
		return nil, nil
	}
	files := make([]string, 0, len(candidates))
	for _, c := range candidates {
		files = append(files, c.FilePath)
	}
	return &AmbiguousPackageError{DottedName: dottedName, Candidates: files}, nil
}

func firstComponent(dotted string) string {
	if i := strings.IndexByte(dotted, '.'); i >= 0 {
		return dotted[:i]
	}
	return dotted
}

// GetImportsFromRelativePath resolves `from .[.[.]][suffix] import ...`
// relative to fromFile's own registered module.
//
// dotCount counts the leading dots (1 for ".", 2 for "..", …); suffix is the
// dotted name after the dots, which may be empty ("from . import x").
//
// The algorithm walks up one package level per dot beyond the first (a
// single dot means "this package", matching Python's own semantics), then
// appends suffix. If the importing file isn't registered in snap at all,
// or the walk would need to go above the root, this returns
// RelativeOutOfPackageError rather than guessing.
func GetImportsFromRelativePath(snap *Snapshot, fromFile string, dotCount int, suffix string) (Entry, error) {
	currentModule, found := snap.ModuleForFile(fromFile)
	if !found {
		return Entry{}, &RelativeOutOfPackageError{FilePath: fromFile, DotCount: dotCount}
	}

	parts := strings.Split(currentModule, ".")
	if len(parts) > 0 {
		parts = parts[:len(parts)-1] // drop the file's own module component
	}

	levelsUp := dotCount - 1
	if levelsUp > len(parts) {
		return Entry{}, &RelativeOutOfPackageError{FilePath: fromFile, DotCount: dotCount}
	}
	if levelsUp > 0 {
		parts = parts[:len(parts)-levelsUp]
	}

	base := strings.Join(parts, ".")
	var resolved string
	switch {
	case suffix != "" && base != "":
		resolved = base + "." + suffix
	case suffix != "":
		resolved = suffix
	default:
		resolved = base
	}

	entry, ok := snap.Lookup(resolved)
	if !ok {
		return Entry{}, &NotFoundError{DottedName: resolved}
	}
	if amb, _ := checkAmbiguous(snap, resolved); amb != nil {
		return Entry{}, amb
	}
	return entry, nil
}
