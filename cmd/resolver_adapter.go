package cmd

import (
	"github.com/microsoft/python-language-server-sub014/internal/pathresolver"
)

// resolverAdapter satisfies internal/binder.ImportResolver against a live
// pathresolver.Watcher, so the binder never needs to import
// internal/pathresolver's concrete types. It always resolves against
// whatever snapshot is current at call time, which may change between two
// calls during the same binder pass if a filesystem event lands
// mid-analysis — acceptable, since a re-bind is triggered by the same
// snapshot republish.
type resolverAdapter struct {
	watcher *pathresolver.Watcher
	cache   *pathresolver.ImportCache
}

func newResolverAdapter(watcher *pathresolver.Watcher, cache *pathresolver.ImportCache) *resolverAdapter {
	return &resolverAdapter{watcher: watcher, cache: cache}
}

func (a *resolverAdapter) ResolveAbsolute(dottedName, fromFile string) bool {
	_, err := a.cache.ResolveAbsolute(a.watcher.Current(), dottedName, fromFile)
	return err == nil
}

func (a *resolverAdapter) ResolveRelative(fromFile string, dotCount int, suffix string) bool {
	_, err := a.cache.ResolveRelative(a.watcher.Current(), fromFile, dotCount, suffix)
	return err == nil
}
