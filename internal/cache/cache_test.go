package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type countingCleaner struct{ calls atomic.Int32 }

func (c *countingCleaner) CleanExpired() int {
	c.calls.Add(1)
	return 1
}

func TestManager_CleanupLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager()
	cl := &countingCleaner{}
	m.Register(cl)
	m.StartCleanup(5 * time.Millisecond)
	m.StartCleanup(5 * time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for cl.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	m.Stop()
	m.Stop()

	if cl.calls.Load() < 2 {
		t.Fatalf("cleaner called %d times", cl.calls.Load())
	}
}

func TestManager_StopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)
	m := NewManager()
	m.Register(&countingCleaner{})
	if n := m.CleanNow(); n != 1 {
		t.Fatalf("CleanNow = %d", n)
	}
	m.Stop()
}

func TestLoader_SharesConcurrentLoads(t *testing.T) {
	l := NewLoader(NewLRUCache[int](8, time.Minute))
	var calls atomic.Int32
	release := make(chan struct{})

	load := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := l.Get(context.Background(), "monthly:2025-03", load)
			if err != nil {
				t.Errorf("Get: %v", err)
			}
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() > 2 {
		t.Fatalf("load ran %d times", calls.Load())
	}
	for _, v := range results {
		if v != 42 {
			t.Fatalf("unexpected result %d", v)
		}
	}

	v, err := l.Get(context.Background(), "monthly:2025-03", func(context.Context) (int, error) {
		t.Fatal("should be served from cache")
		return 0, nil
	})
	if err != nil || v != 42 {
		t.Fatalf("cached Get = %d, %v", v, err)
	}
}

func TestLoader_ErrorsAreNotCached(t *testing.T) {
	l := NewLoader(NewLRUCache[string](8, time.Minute))
	boom := errors.New("store down")

	if _, err := l.Get(context.Background(), "k", func(context.Context) (string, error) {
		return "", boom
	}); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	v, err := l.Get(context.Background(), "k", func(context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil || v != "ok" {
		t.Fatalf("Get after error = %q, %v", v, err)
	}

	l.Invalidate()
	if l.Cache().Size() != 0 {
		t.Fatal("Invalidate should purge")
	}
}

func TestLoader_InvalidateDuringLoadIsNotCached(t *testing.T) {
	l := NewLoader(NewLRUCache[int](8, time.Minute))
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan int)
	go func() {
		v, _ := l.Get(context.Background(), "weekly:2025-03-10", func(context.Context) (int, error) {
			close(started)
			<-release
			return 0, nil // read before the write
		})
		done <- v
	}()

	<-started
	l.Invalidate() // write lands while the old load is blocked

	// A caller arriving after the write must not join the stale flight.
	fresh := make(chan int)
	go func() {
		v, _ := l.Get(context.Background(), "weekly:2025-03-10", func(context.Context) (int, error) {
			return 1, nil
		})
		fresh <- v
	}()
	if v := <-fresh; v != 1 {
		t.Fatalf("post-write Get = %d, want 1", v)
	}

	close(release)
	if v := <-done; v != 0 {
		t.Fatalf("pre-write Get = %d, want 0", v)
	}

	v, err := l.Get(context.Background(), "weekly:2025-03-10", func(context.Context) (int, error) {
		return 2, nil
	})
	if err != nil || v != 1 {
		t.Fatalf("cached value = %d, %v; want the post-write 1", v, err)
	}
}
