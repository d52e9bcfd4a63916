// Package symbolworker implements the per-document symbol worker: a
// preemptible state machine that produces a hierarchical outline for one
// open document at a time, retrying transient AST fetch failures and
// canceling stale work the moment a newer request supersedes it.
package symbolworker

import (
	"context"
	"errors"
	"sync"
)

// ErrWorkerDisposed is delivered to any future still awaiting a result when
// its Worker is disposed — a disposed worker's FetchFunc never runs again,
// so a pending future would otherwise wait forever.
var ErrWorkerDisposed = errors.New("symbolworker: worker disposed")

// futureResult is what a completed (or abandoned) fetch delivers to every
// Future registered against it.
type futureResult struct {
	outline *Outline
	err     error
}

// Future is a handle to a document outline that may not exist yet: either a
// fetch is currently running, or the worker is WaitingForWork and hasn't
// been asked to start one. Wait blocks until a result arrives or ctx is
// canceled first.
type Future struct {
	ch chan futureResult
}

// Wait blocks for the future's result or ctx's cancellation, whichever
// comes first.
func (f *Future) Wait(ctx context.Context) (*Outline, error) {
	select {
	case r := <-f.ch:
		return r.outline, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// State is one document worker's position in its state machine. Every
// worker starts WaitingForWork and moves forward as work arrives and
// completes; Working can be preempted back to Working by a newer Request
// without ever passing through FinishedWork, or preempted back to
// WaitingForWork by MarkAsPending without starting replacement work. A
// caller always observes one of these three values, never an intermediate
// one.
type State int

const (
	WaitingForWork State = iota
	Working
	FinishedWork
)

func (s State) String() string {
	switch s {
	case WaitingForWork:
		return "waiting_for_work"
	case Working:
		return "working"
	case FinishedWork:
		return "finished_work"
	default:
		return "unknown"
	}
}

// Worker owns the outline-building lifecycle for exactly one document URI.
// It generalizes the single global indexing state machine this package's
// design is grounded on into one instance per open document, and adds
// preemption: requesting new work while Working cancels the in-flight
// attempt instead of queuing behind it, since only the latest edit's
// outline is ever useful to a client.
type Worker struct {
	uri string

	mu      sync.Mutex
	state   State
	version int // bumped on every Request; a completing Fetch checks this to detect preemption
	cancel  context.CancelFunc
	outline *Outline
	err     error

	fetch  FetchFunc
	onDone func(uri string, outline *Outline, err error)

	// pending holds every Future registered via GetSymbolsAsync while no
	// fresh outline is available yet. A surviving run() fans its result out
	// to all of them and clears the slice; MarkAsPending deliberately does
	// NOT touch it, so a Future registered before a preemption still
	// resolves against whatever later fetch actually completes.
	pending []chan futureResult
}

// FetchFunc parses and lowers one document's current content into an
// Outline. It must respect ctx cancellation so a preempted Worker can
// actually stop instead of finishing stale work that's discarded anyway.
type FetchFunc func(ctx context.Context, uri string) (*Outline, error)

// NewWorker builds a Worker for uri. onDone, if non-nil, is invoked exactly
// once per surviving (non-preempted) Fetch completion.
func NewWorker(uri string, fetch FetchFunc, onDone func(uri string, outline *Outline, err error)) *Worker {
	return &Worker{uri: uri, fetch: fetch, onDone: onDone}
}

// State returns the worker's current state.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Outline returns the most recently completed outline, if any, and whether
// one exists yet.
func (w *Worker) Outline() (*Outline, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.outline, w.outline != nil
}

// Request starts (or restarts) work for this document. A Request arriving
// while the worker is already Working cancels that attempt via a linked
// child context — cancel propagates to the retry loop in retry.go so a
// backoff sleep is interrupted immediately rather than run to completion.
func (w *Worker) Request(parent context.Context) {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	w.cancel = cancel
	w.version++
	myVersion := w.version
	w.state = Working
	w.mu.Unlock()

	go w.run(ctx, myVersion)
}

// MarkAsPending cancels any in-flight fetch and returns the worker to
// WaitingForWork without starting a replacement fetch — unlike Request,
// which cancels and immediately restarts. It's for a caller that knows this
// document is now stale (another edit is coming, or one just arrived) but
// wants to defer the next fetch to its own schedule, e.g. batching several
// rapid edits behind one debounce before calling Request. Any Future
// already registered via GetSymbolsAsync stays registered: it resolves
// against whichever fetch eventually completes, not against this
// cancellation.
func (w *Worker) MarkAsPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.version++
	w.state = WaitingForWork
}

// GetSymbolsAsync returns a Future for this document's next outline. If a
// finished outline is already sitting unclaimed (the worker is
// FinishedWork), the Future resolves immediately with it; otherwise it
// resolves whenever the fetch currently running — or the next one Request
// starts, if the worker is WaitingForWork or gets preempted in the
// meantime — completes.
func (w *Worker) GetSymbolsAsync() *Future {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(chan futureResult, 1)
	if w.state == FinishedWork {
		ch <- futureResult{outline: w.outline, err: w.err}
	} else {
		w.pending = append(w.pending, ch)
	}
	return &Future{ch: ch}
}

// Dispose cancels any in-flight work and marks the worker done; called when
// the document closes. A disposed Worker's FetchFunc is never invoked
// again, so any Future still waiting is resolved with ErrWorkerDisposed
// instead of being left to hang until its caller's context expires.
func (w *Worker) Dispose() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.state = FinishedWork
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()

	for _, ch := range pending {
		ch <- futureResult{err: ErrWorkerDisposed}
	}
}

func (w *Worker) run(ctx context.Context, myVersion int) {
	outline, err := fetchWithRetry(ctx, w.fetch, w.uri)

	w.mu.Lock()
	if myVersion != w.version {
		// A newer Request or MarkAsPending superseded this attempt while it
		// was running; its result is stale and must not overwrite a later
		// one, nor resolve futures waiting on the work that superseded it.
		w.mu.Unlock()
		return
	}
	w.outline, w.err = outline, err
	w.state = FinishedWork
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()

	for _, ch := range pending {
		ch <- futureResult{outline: outline, err: err}
	}

	if w.onDone != nil {
		w.onDone(w.uri, outline, err)
	}
}
