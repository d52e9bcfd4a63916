package symbolworker

import lru "github.com/hashicorp/golang-lru/v2"

// OutlineCache retains the last completed Outline per document URI so a
// client reconnecting or re-requesting symbols for an untouched document
// doesn't have to wait on a fresh Worker round trip.
type OutlineCache struct {
	entries *lru.Cache[string, *Outline]
}

// NewOutlineCache builds an OutlineCache holding up to size documents'
// outlines, evicting least-recently-used entries beyond that.
func NewOutlineCache(size int) (*OutlineCache, error) {
	c, err := lru.New[string, *Outline](size)
	if err != nil {
		return nil, err
	}
	return &OutlineCache{entries: c}, nil
}

// Put records outline as the latest completed result for uri.
func (c *OutlineCache) Put(uri string, outline *Outline) {
	c.entries.Add(uri, outline)
}

// Get returns the last completed outline for uri, if any.
func (c *OutlineCache) Get(uri string) (*Outline, bool) {
	return c.entries.Get(uri)
}

// Invalidate drops uri's cached outline, used when a document closes.
func (c *OutlineCache) Invalidate(uri string) {
	c.entries.Remove(uri)
}
