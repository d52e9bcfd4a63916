// Package pathresolver implements the import path resolver: an immutable
// snapshot of a project's dotted-name ↔ file-path mapping and the pure
// functions that resolve Python import statements against it.
package pathresolver

import "sort"

// Kind distinguishes a regular module file from a stub (.pyi) or a
// namespace package directory that has no __init__.py of its own.
type Kind int

const (
	KindSource Kind = iota
	KindStub
	KindNamespacePackage
)

// Entry is one dotted name's resolution target.
type Entry struct {
	DottedName string
	FilePath   string
	Kind       Kind
	Root       string // the search root this entry was discovered under
}

// Snapshot is an immutable view of the resolver's state at a point in time.
// Every mutator (AddModule, RemoveModule, …) returns a new Snapshot; the
// receiver is left untouched so a caller holding an older Snapshot keeps
// observing the state it already read.
//
// Internally this is a set of plain maps copied on write rather than a
// persistent tree with structural sharing: the resolver's working set (one
// project's worth of modules) is small enough that copy-on-write maps are
// simpler to reason about than a path-copying tree, while still giving every
// holder of a Snapshot value the same "old view stays old" guarantee.
type Snapshot struct {
	modules      map[string]Entry   // dotted name -> entry (current winner per winnerOf)
	allByName    map[string][]Entry // dotted name -> every candidate (for AmbiguousPackage detection)
	fileToModule map[string]string  // absolute file path -> dotted name
	shortNames   map[string][]string
	roots        []string // search roots, in configured precedence order
}

// Empty returns a Snapshot with no modules and no roots.
func Empty() *Snapshot {
	return &Snapshot{
		modules:      map[string]Entry{},
		allByName:    map[string][]Entry{},
		fileToModule: map[string]string{},
		shortNames:   map[string][]string{},
	}
}

// WithRoots returns a new Snapshot with the given search roots, in
// precedence order (earliest root wins ties per the namespace-package
// resolution rule). Existing modules are preserved.
func (s *Snapshot) WithRoots(roots []string) *Snapshot {
	next := s.clone()
	next.roots = append([]string(nil), roots...)
	return next
}

// Roots returns the configured search roots in precedence order.
func (s *Snapshot) Roots() []string {
	return append([]string(nil), s.roots...)
}

// Lookup returns the winning entry for a dotted name, if any. A name with no
// entry of its own but with registered modules beneath it is a namespace
// package: it resolves to a KindNamespacePackage entry with no FilePath.
func (s *Snapshot) Lookup(dottedName string) (Entry, bool) {
	if e, ok := s.modules[dottedName]; ok {
		return e, true
	}
	if dottedName == "" {
		return Entry{}, false
	}
	prefix := dottedName + "."
	for name := range s.modules {
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			return Entry{DottedName: dottedName, Kind: KindNamespacePackage}, true
		}
	}
	return Entry{}, false
}

// Candidates returns every entry registered under dottedName, in the order
// they were added. Used to detect AmbiguousPackage: two roots providing
// different files under the same dotted name.
func (s *Snapshot) Candidates(dottedName string) []Entry {
	return append([]Entry(nil), s.allByName[dottedName]...)
}

// ModuleForFile returns the dotted name registered for an absolute file
// path, used to resolve relative imports against "what module am I in".
func (s *Snapshot) ModuleForFile(filePath string) (string, bool) {
	m, ok := s.fileToModule[filePath]
	return m, ok
}

// ShortNameCandidates returns every file path registered under a module's
// last dotted component, used to spot ambiguous short-name references.
func (s *Snapshot) ShortNameCandidates(shortName string) []string {
	return append([]string(nil), s.shortNames[shortName]...)
}

// AllModules returns every dotted name currently registered, sorted for
// deterministic iteration (tests, diagnostics listings).
func (s *Snapshot) AllModules() []string {
	names := make([]string, 0, len(s.modules))
	for name := range s.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Snapshot) clone() *Snapshot {
	next := &Snapshot{
		modules:      make(map[string]Entry, len(s.modules)),
		allByName:    make(map[string][]Entry, len(s.allByName)),
		fileToModule: make(map[string]string, len(s.fileToModule)),
		shortNames:   make(map[string][]string, len(s.shortNames)),
		roots:        append([]string(nil), s.roots...),
	}
	for k, v := range s.modules {
		next.modules[k] = v
	}
	for k, v := range s.allByName {
		next.allByName[k] = append([]Entry(nil), v...)
	}
	for k, v := range s.fileToModule {
		next.fileToModule[k] = v
	}
	for k, v := range s.shortNames {
		next.shortNames[k] = append([]string(nil), v...)
	}
	return next
}

// AddModule returns a new Snapshot with dottedName registered against
// filePath under root. If dottedName already resolves to an entry from an
// earlier-precedence root, the earlier entry keeps winning the plain Lookup
// but both remain visible via Candidates (so AmbiguousPackage detection
// still sees the conflict). A stub (KindStub) never displaces an
// already-registered source entry for the same name and root precedence;
// see winnerOf.
func (s *Snapshot) AddModule(dottedName, filePath string, kind Kind, root string) *Snapshot {
	next := s.clone()
	entry := Entry{DottedName: dottedName, FilePath: filePath, Kind: kind, Root: root}

	next.allByName[dottedName] = append(next.allByName[dottedName], entry)
	next.fileToModule[filePath] = dottedName

	if existing, ok := next.modules[dottedName]; !ok || winnerOf(existing, entry, next.roots) == entry {
		next.modules[dottedName] = entry
	}

	shortName := extractShortName(dottedName)
	if !containsString(next.shortNames[shortName], filePath) {
		next.shortNames[shortName] = append(next.shortNames[shortName], filePath)
	}
	return next
}

// RemoveModule returns a new Snapshot with filePath's registration removed.
// If another candidate remains for the same dotted name, the highest
// precedence remaining candidate becomes the new winner.
func (s *Snapshot) RemoveModule(filePath string) *Snapshot {
	dottedName, ok := s.fileToModule[filePath]
	if !ok {
		return s
	}
	next := s.clone()
	delete(next.fileToModule, filePath)

	remaining := next.allByName[dottedName][:0:0]
	for _, e := range next.allByName[dottedName] {
		if e.FilePath != filePath {
			remaining = append(remaining, e)
		}
	}
	if len(remaining) == 0 {
		delete(next.allByName, dottedName)
		delete(next.modules, dottedName)
	} else {
		next.allByName[dottedName] = remaining
		winner := remaining[0]
		for _, e := range remaining[1:] {
			winner = winnerOf(winner, e, next.roots)
		}
		next.modules[dottedName] = winner
	}

	shortName := extractShortName(dottedName)
	next.shortNames[shortName] = removeString(next.shortNames[shortName], filePath)
	if len(next.shortNames[shortName]) == 0 {
		delete(next.shortNames, shortName)
	}
	return next
}

// winnerOf picks which of two entries under the same dotted name should be
// the Lookup result: source beats stub, then earliest-configured root wins.
func winnerOf(a, b Entry, roots []string) Entry {
	if a.Kind != KindStub && b.Kind == KindStub {
		return a
	}
	if a.Kind == KindStub && b.Kind != KindStub {
		return b
	}
	ai, bi := rootIndex(roots, a.Root), rootIndex(roots, b.Root)
	if ai <= bi {
		return a
	}
	return b
}

func rootIndex(roots []string, root string) int {
	for i, r := range roots {
		if r == root {
			return i
		}
	}
	return len(roots)
}

func extractShortName(dottedName string) string {
	for i := len(dottedName) - 1; i >= 0; i-- {
		if dottedName[i] == '.' {
			return dottedName[i+1:]
		}
	}
	return dottedName
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
