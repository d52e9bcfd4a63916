package pathresolver

import (
	"os"
	"path/filepath"
	"strings"
)

// skipDirs lists directory names excluded while walking a search root:
// virtual envs, VCS metadata, and build/cache artifacts that never contain
// importable project source.
var skipDirs = map[string]bool{
	"__pycache__":   true,
	"venv":          true,
	"env":           true,
	".venv":         true,
	".env":          true,
	"node_modules":  true,
	".git":          true,
	".svn":          true,
	"dist":          true,
	"build":         true,
	"_build":        true,
	".eggs":         true,
	".tox":          true,
	".pytest_cache": true,
	".mypy_cache":   true,
	".coverage":     true,
	"htmlcov":       true,
}

// BuildFromRoots walks each of roots (in order, earliest = highest
// precedence) and returns a Snapshot populated with every .py/.pyi file
// found, skipping common non-source directories. Namespace packages
// (directories with Python files but no __init__.py) get no entry of their
// own; Snapshot.Lookup still resolves them by dotted name, as
// KindNamespacePackage, from the modules registered beneath them.
func BuildFromRoots(roots []string) (*Snapshot, error) {
	snap := Empty().WithRoots(roots)

	for _, root := range roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(absRoot); os.IsNotExist(err) {
			continue
		}

		walkErr := filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if skipDirs[info.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			kind, ok := classify(path)
			if !ok {
				return nil
			}
			modulePath, convErr := convertToModulePath(path, absRoot)
			if convErr != nil {
				return nil
			}
			snap = snap.AddModule(modulePath, path, kind, absRoot)
			return nil
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}
	return snap, nil
}

func classify(path string) (Kind, bool) {
	switch {
	case strings.HasSuffix(path, ".pyi"):
		return KindStub, true
	case strings.HasSuffix(path, ".py"):
		return KindSource, true
	default:
		return 0, false
	}
}

// convertToModulePath turns an absolute file path under root into a dotted
// module name: strips the extension, collapses a trailing __init__ into its
// containing package, and joins path separators with dots.
func convertToModulePath(path, root string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	rel = strings.TrimSuffix(rel, ".pyi")
	rel = strings.TrimSuffix(rel, ".py")
	rel = strings.TrimSuffix(rel, string(filepath.Separator)+"__init__")
	rel = strings.TrimSuffix(rel, "__init__")

	slash := filepath.ToSlash(rel)
	return strings.ReplaceAll(slash, "/", "."), nil
}

// AddModulePath registers a single file discovered after a filesystem
// create/rename event, returning the new Snapshot. root identifies which
// configured search root the file belongs under.
func AddModulePath(snap *Snapshot, path, root string) (*Snapshot, error) {
	kind, ok := classify(path)
	if !ok {
		return snap, nil
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	modulePath, err := convertToModulePath(path, absRoot)
	if err != nil {
		return snap, nil
	}
	return snap.AddModule(modulePath, path, kind, absRoot), nil
}

// RemoveModulePath unregisters path after a filesystem delete/rename event.
func RemoveModulePath(snap *Snapshot, path string) *Snapshot {
	return snap.RemoveModule(path)
}
