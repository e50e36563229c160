package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestProviderCacheSingleInit(t *testing.T) {
	c := NewProviderCache()
	var inits atomic.Int32

	init := func() (any, error) {
		inits.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "handle", nil
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([]any, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrInit(context.Background(), "local", init)
		}(i)
	}
	wg.Wait()

	if got := inits.Load(); got != 1 {
		t.Errorf("expected exactly one initialization, got %d", got)
	}
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if results[i] != "handle" {
			t.Errorf("worker %d got %v", i, results[i])
		}
	}
}

func TestProviderCacheReturnsCached(t *testing.T) {
	c := NewProviderCache()
	var inits atomic.Int32

	init := func() (any, error) {
		inits.Add(1)
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		h, err := c.GetOrInit(context.Background(), "local", init)
		if err != nil {
			t.Fatal(err)
		}
		if h != 42 {
			t.Errorf("got %v", h)
		}
	}
	if got := inits.Load(); got != 1 {
		t.Errorf("expected one initialization across repeated calls, got %d", got)
	}
}

func TestProviderCacheFailedInitRetries(t *testing.T) {
	c := NewProviderCache()
	var inits atomic.Int32
	loadErr := errors.New("model file corrupt")

	init := func() (any, error) {
		if inits.Add(1) == 1 {
			return nil, loadErr
		}
		return "recovered", nil
	}

	if _, err := c.GetOrInit(context.Background(), "local", init); !errors.Is(err, loadErr) {
		t.Fatalf("expected load error, got %v", err)
	}
	if c.Size() != 0 {
		t.Error("failed initialization must not stay cached")
	}

	h, err := c.GetOrInit(context.Background(), "local", init)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if h != "recovered" {
		t.Errorf("got %v", h)
	}
}

func TestProviderCacheCancelledCallerDoesNotAbortInit(t *testing.T) {
	c := NewProviderCache()
	started := make(chan struct{})
	release := make(chan struct{})

	init := func() (any, error) {
		close(started)
		<-release
		return "slow", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := c.GetOrInit(ctx, "local", init)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The load keeps running and its result serves the next caller.
	close(release)
	h, err := c.GetOrInit(context.Background(), "local", func() (any, error) {
		t.Error("init re-ran even though the first load completed")
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if h != "slow" {
		t.Errorf("got %v", h)
	}
}

func TestProviderCacheForgetDuringFailingInit(t *testing.T) {
	c := NewProviderCache()
	started := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan struct{})

	// First load blocks, then fails.
	go func() {
		defer close(firstDone)
		c.GetOrInit(context.Background(), "local", func() (any, error) {
			close(started)
			<-release
			return nil, errors.New("load failed")
		})
	}()
	<-started

	// Forget the in-flight entry and start a replacement load.
	c.Forget("local")
	h, err := c.GetOrInit(context.Background(), "local", func() (any, error) {
		return "replacement", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if h != "replacement" {
		t.Fatalf("got %v", h)
	}

	// The stale failing load must not evict the replacement entry.
	close(release)
	<-firstDone

	h, err = c.GetOrInit(context.Background(), "local", func() (any, error) {
		t.Error("replacement entry was evicted by a stale failed load")
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if h != "replacement" {
		t.Errorf("got %v", h)
	}
}

func TestProviderCacheForget(t *testing.T) {
	c := NewProviderCache()
	var inits atomic.Int32

	init := func() (any, error) {
		inits.Add(1)
		return "h", nil
	}

	if _, err := c.GetOrInit(context.Background(), "local", init); err != nil {
		t.Fatal(err)
	}
	c.Forget("local")
	if _, err := c.GetOrInit(context.Background(), "local", init); err != nil {
		t.Fatal(err)
	}
	if got := inits.Load(); got != 2 {
		t.Errorf("expected re-initialization after Forget, got %d inits", got)
	}
}
