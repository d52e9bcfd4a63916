package diagnostics

import "sync"

// PublishFunc sends a finished diagnostic batch for a document to the
// client. The store calls it outside its own lock, so a slow or blocking
// client connection never stalls another document's Replace/Remove call.
type PublishFunc func(uri string, entries []Entry)

// Store holds the current diagnostic entries for every open document,
// guarded by a single mutex. Snapshot copies a document's entries under the
// lock, and Remove calls PublishFunc only after releasing it — the same
// discipline applied throughout this codebase's shared in-memory caches:
// never call out to the rest of the system while holding a lock a reader
// might also need.
type Store struct {
	mu       sync.Mutex
	byURI    map[string][]Entry
	severity *SeverityMap
	publish  PublishFunc
}

// NewStore builds an empty Store. publish may be nil in tests that only
// want to inspect Snapshot().
func NewStore(severity *SeverityMap, publish PublishFunc) *Store {
	return &Store{
		byURI:    map[string][]Entry{},
		severity: severity,
		publish:  publish,
	}
}

// Replace installs raw (unfiltered, pre-severity, pre-suppression) entries
// for uri, computed fresh from the binder's latest pass. It applies the
// severity map and any `# noqa` suppressions for source before storing, and
// does not publish by itself — publication happens on a later idle tick of
// the Publisher (see publish.go), batching rapid edits into one client
// round trip instead of one per keystroke.
func (s *Store) Replace(uri string, source []byte, raw []Entry) {
	suppressions := ParseSuppressions(source)

	filtered := make([]Entry, 0, len(raw))
	for _, e := range raw {
		severity := s.severity.Resolve(e.Code)
		if severity == SeverityDisabled {
			continue
		}
		if suppressions.Suppresses(e.Span.StartLine, e.Code) {
			continue
		}
		e.Severity = severity
		filtered = append(filtered, e)
	}

	s.mu.Lock()
	s.byURI[uri] = filtered
	s.mu.Unlock()
}

// Remove drops uri's entries entirely (the document closed) and publishes
// an empty batch immediately — a closed document must never be left with a
// stale diagnostic on a client's screen, so this bypasses the idle-tick
// batching Replace relies on.
func (s *Store) Remove(uri string) {
	s.mu.Lock()
	delete(s.byURI, uri)
	s.mu.Unlock()

	if s.publish != nil {
		s.publish(uri, nil)
	}
}

// Snapshot returns a copy of uri's current entries without publishing.
func (s *Store) Snapshot(uri string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.byURI[uri]...)
}

// URIs returns every document currently tracked. The Publisher does not use
// it; it tracks dirty documents in its own map.
func (s *Store) URIs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	uris := make([]string, 0, len(s.byURI))
	for uri := range s.byURI {
		uris = append(uris, uri)
	}
	return uris
}

// SeverityMap exposes the store's severity map so a config-change handler
// can push new overrides into it.
func (s *Store) SeverityMap() *SeverityMap {
	return s.severity
}
