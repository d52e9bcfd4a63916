package pathresolver

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// resolvedKey identifies a memoized GetImportsFromAbsoluteName/
// GetImportsFromRelativePath call. Snapshots are immutable and cheap to
// compare by pointer identity, so the snapshot pointer itself is part of
// the key: a cache entry from an old snapshot is never served against a
// newer one.
type resolvedKey struct {
	snap     *Snapshot
	dotted   string
	fromFile string
	dotCount int
}

// ImportCache memoizes resolved imports per snapshot, bounded by an LRU so
// long-running servers watching large workspaces don't grow this unbounded
// across snapshot churn.
type ImportCache struct {
	entries *lru.Cache[resolvedKey, cachedResolution]
}

type cachedResolution struct {
	entry Entry
	err   error
}

// NewImportCache builds an ImportCache holding up to size resolved imports.
func NewImportCache(size int) (*ImportCache, error) {
	c, err := lru.New[resolvedKey, cachedResolution](size)
	if err != nil {
		return nil, err
	}
	return &ImportCache{entries: c}, nil
}

// ResolveAbsolute is GetImportsFromAbsoluteName with memoization keyed on
// (snapshot, dottedName, fromFile).
func (c *ImportCache) ResolveAbsolute(snap *Snapshot, dottedName, fromFile string) (Entry, error) {
	key := resolvedKey{snap: snap, dotted: dottedName, fromFile: fromFile}
	if hit, ok := c.entries.Get(key); ok {
		return hit.entry, hit.err
	}
	entry, err := GetImportsFromAbsoluteName(snap, dottedName, fromFile)
	c.entries.Add(key, cachedResolution{entry: entry, err: err})
	return entry, err
}

// ResolveRelative is GetImportsFromRelativePath with memoization keyed on
// (snapshot, fromFile, dotCount, suffix).
func (c *ImportCache) ResolveRelative(snap *Snapshot, fromFile string, dotCount int, suffix string) (Entry, error) {
	key := resolvedKey{snap: snap, dotted: suffix, fromFile: fromFile, dotCount: dotCount}
	if hit, ok := c.entries.Get(key); ok {
		return hit.entry, hit.err
	}
	entry, err := GetImportsFromRelativePath(snap, fromFile, dotCount, suffix)
	c.entries.Add(key, cachedResolution{entry: entry, err: err})
	return entry, err
}
