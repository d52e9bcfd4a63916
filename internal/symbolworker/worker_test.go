package symbolworker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForState(t *testing.T, w *Worker, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if w.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("worker never reached state %s, stuck at %s", want, w.State())
}

func TestWorker_FetchCompletesAndStoresOutline(t *testing.T) {
	done := make(chan struct{}, 1)
	w := NewWorker("file:///a.py", func(ctx context.Context, uri string) (*Outline, error) {
		return &Outline{URI: uri}, nil
	}, func(uri string, outline *Outline, err error) {
		done <- struct{}{}
	})

	w.Request(context.Background())
	<-done
	waitForState(t, w, FinishedWork)

	outline, ok := w.Outline()
	require.True(t, ok)
	assert.Equal(t, "file:///a.py", outline.URI)
}

func TestWorker_NewRequestPreemptsInFlightFetch(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	var onDoneCount int32

	w := NewWorker("file:///a.py", func(ctx context.Context, uri string) (*Outline, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			// first fetch blocks until canceled by the second Request
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &Outline{URI: uri}, nil
	}, func(uri string, outline *Outline, err error) {
		atomic.AddInt32(&onDoneCount, 1)
		close(release)
	})

	w.Request(context.Background())
	time.Sleep(20 * time.Millisecond) // let the first fetch start and block
	w.Request(context.Background())

	select {
	case <-release:
	case <-time.After(2 * time.Second):
		t.Fatal("second request never completed")
	}

	waitForState(t, w, FinishedWork)
	// only the surviving (second) fetch's completion should invoke onDone;
	// the first fetch's cancellation is discarded as stale, not reported.
	assert.Equal(t, int32(1), atomic.LoadInt32(&onDoneCount))

	outline, ok := w.Outline()
	require.True(t, ok)
	assert.Equal(t, "file:///a.py", outline.URI)
}

func TestWorker_DisposeCancelsInFlightWork(t *testing.T) {
	started := make(chan struct{})
	w := NewWorker("file:///a.py", func(ctx context.Context, uri string) (*Outline, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}, nil)

	w.Request(context.Background())
	<-started
	w.Dispose()

	assert.Equal(t, FinishedWork, w.State())
}

func TestFetchWithRetry_RetriesTransientFailuresThenSucceeds(t *testing.T) {
	var attempts int32
	outline, err := fetchWithRetry(context.Background(), func(ctx context.Context, uri string) (*Outline, error) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return nil, errors.New("transient AST fetch failure")
		}
		return &Outline{URI: uri}, nil
	}, "file:///a.py")

	require.NoError(t, err)
	assert.Equal(t, "file:///a.py", outline.URI)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestFetchWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	var attempts int32
	_, err := fetchWithRetry(context.Background(), func(ctx context.Context, uri string) (*Outline, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, errors.New("permanent failure")
	}, "file:///a.py")

	require.Error(t, err)
	assert.Equal(t, int32(maxFetchRetries+1), atomic.LoadInt32(&attempts))
}

func TestFetchWithRetry_ContextCancelAbortsRetryLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var attempts int32

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := fetchWithRetry(ctx, func(ctx context.Context, uri string) (*Outline, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, errors.New("keeps failing")
	}, "file:///a.py")

	require.Error(t, err)
	assert.Less(t, int(atomic.LoadInt32(&attempts)), maxFetchRetries+1)
}

func TestWorker_MarkAsPendingCancelsAndReturnsToWaiting(t *testing.T) {
	started := make(chan struct{})
	w := NewWorker("file:///a.py", func(ctx context.Context, uri string) (*Outline, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}, nil)

	w.Request(context.Background())
	<-started
	w.MarkAsPending()

	waitForState(t, w, WaitingForWork)
}

func TestWorker_GetSymbolsAsyncResolvesImmediatelyWhenAlreadyFinished(t *testing.T) {
	done := make(chan struct{}, 1)
	w := NewWorker("file:///a.py", func(ctx context.Context, uri string) (*Outline, error) {
		return &Outline{URI: uri}, nil
	}, func(uri string, outline *Outline, err error) {
		done <- struct{}{}
	})

	w.Request(context.Background())
	<-done
	waitForState(t, w, FinishedWork)

	outline, err := w.GetSymbolsAsync().Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "file:///a.py", outline.URI)
}

func TestWorker_GetSymbolsAsyncSurvivesPreemptionAndYieldsLatestVersion(t *testing.T) {
	var version int32
	release := make(chan struct{})
	w := NewWorker("file:///a.py", func(ctx context.Context, uri string) (*Outline, error) {
		n := atomic.AddInt32(&version, 1)
		if n == 1 {
			<-ctx.Done() // first fetch (doc_v1) blocks until preempted
			return nil, ctx.Err()
		}
		return &Outline{URI: uri, Symbols: []*Symbol{{Name: "doc_v2"}}}, nil
	}, func(uri string, outline *Outline, err error) {
		close(release)
	})

	w.Request(context.Background()) // start fetching doc_v1
	time.Sleep(20 * time.Millisecond)

	future := w.GetSymbolsAsync() // registered while doc_v1 is still in flight
	w.Request(context.Background()) // doc_v2 edit preempts doc_v1

	select {
	case <-release:
	case <-time.After(2 * time.Second):
		t.Fatal("doc_v2 fetch never completed")
	}

	outline, err := future.Wait(context.Background())
	require.NoError(t, err)
	require.Len(t, outline.Symbols, 1)
	assert.Equal(t, "doc_v2", outline.Symbols[0].Name)
}

func TestWorker_DisposeResolvesPendingFuturesWithError(t *testing.T) {
	started := make(chan struct{})
	w := NewWorker("file:///a.py", func(ctx context.Context, uri string) (*Outline, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}, nil)

	w.Request(context.Background())
	<-started
	future := w.GetSymbolsAsync()
	w.Dispose()

	_, err := future.Wait(context.Background())
	assert.ErrorIs(t, err, ErrWorkerDisposed)
}

func TestOutlineCache_PutGetInvalidate(t *testing.T) {
	cache, err := NewOutlineCache(4)
	require.NoError(t, err)

	_, ok := cache.Get("file:///a.py")
	assert.False(t, ok)

	cache.Put("file:///a.py", &Outline{URI: "file:///a.py"})
	outline, ok := cache.Get("file:///a.py")
	require.True(t, ok)
	assert.Equal(t, "file:///a.py", outline.URI)

	cache.Invalidate("file:///a.py")
	_, ok = cache.Get("file:///a.py")
	assert.False(t, ok)
}

func TestWorker_ConcurrentRequestsLeaveWorkerUsable(t *testing.T) {
	var wg sync.WaitGroup
	w := NewWorker("file:///a.py", func(ctx context.Context, uri string) (*Outline, error) {
		return &Outline{URI: uri}, nil
	}, nil)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Request(context.Background())
		}()
	}
	wg.Wait()

	waitForState(t, w, FinishedWork)
	_, ok := w.Outline()
	assert.True(t, ok)
}
