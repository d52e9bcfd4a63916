package diagnostics

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Publisher batches rapid Replace calls into one publication per document
// per idle period. It is deliberately poll-based rather than timer-based:
// each edit just records a timestamp, and a single periodic loop checks
// which documents have gone quiet long enough to publish. Canceling and
// resetting a per-document timer on every keystroke is the obvious
// alternative, but it races the publish goroutine against whichever
// goroutine is currently resetting the timer; a flat poll loop has no timer
// to race against.
type Publisher struct {
	store        *Store
	mu           sync.Mutex
	lastEdit     map[string]time.Time
	idleAfter    time.Duration
	pollInterval time.Duration
}

// NewPublisher builds a Publisher that considers a document idle once
// idleAfter has elapsed since its last MarkDirty call, checked every
// pollInterval.
func NewPublisher(store *Store, idleAfter, pollInterval time.Duration) *Publisher {
	return &Publisher{
		store:        store,
		lastEdit:     map[string]time.Time{},
		idleAfter:    idleAfter,
		pollInterval: pollInterval,
	}
}

// MarkDirty records that uri changed just now, deferring its next
// publication until it's been idle for idleAfter.
func (p *Publisher) MarkDirty(uri string) {
	p.mu.Lock()
	p.lastEdit[uri] = time.Now()
	p.mu.Unlock()
}

// Run blocks, polling every pollInterval until ctx is canceled, publishing
// each document at most once per idle period (the "at most one publication
// per quiescent period" invariant).
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick publishes every document that's gone idle since the last poll. A
// busy workspace can have many documents come idle in the same tick, so
// each document's Snapshot+publish round trip runs on its own errgroup
// goroutine — one slow or blocking PublishFunc call then only delays that
// document's own notification, not every other idle document's.
func (p *Publisher) tick() {
	now := time.Now()

	p.mu.Lock()
	due := make([]string, 0, len(p.lastEdit))
	for uri, last := range p.lastEdit {
		if now.Sub(last) >= p.idleAfter {
			due = append(due, uri)
		}
	}
	for _, uri := range due {
		delete(p.lastEdit, uri)
	}
	p.mu.Unlock()

	var g errgroup.Group
	for _, uri := range due {
		uri := uri
		g.Go(func() error {
			entries := p.store.Snapshot(uri)
			if p.store.publish != nil {
				p.store.publish(uri, entries)
			}
			return nil
		})
	}
	g.Wait()
}
