package obscache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/digiclimate/supplyrisk/internal/obscache"
)

func TestGetOrFetchCachesWithinTTL(t *testing.T) {
	now := time.Unix(1000, 0)
	c := obscache.New(5 * time.Minute).WithClock(func() time.Time { return now })

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return "fresh", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrFetch(context.Background(), "k", fetch)
		if err != nil {
			t.Fatalf("GetOrFetch error: %v", err)
		}
		if v != "fresh" {
			t.Fatalf("value = %v, want fresh", v)
		}
	}
	if calls != 1 {
		t.Fatalf("fetch called %d times, want 1", calls)
	}
}

func TestGetOrFetchExpires(t *testing.T) {
	now := time.Unix(1000, 0)
	c := obscache.New(5 * time.Minute).WithClock(func() time.Time { return now })

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	if _, err := c.GetOrFetch(context.Background(), "k", fetch); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	now = now.Add(5*time.Minute + time.Second)
	v, err := c.GetOrFetch(context.Background(), "k", fetch)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if calls != 2 {
		t.Fatalf("fetch called %d times, want 2", calls)
	}
	if v != 2 {
		t.Fatalf("value = %v, want 2", v)
	}
}

func TestGetOrFetchDoesNotCacheErrors(t *testing.T) {
	c := obscache.New(5 * time.Minute)

	calls := 0
	boom := errors.New("upstream down")
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return "ok", nil
	}

	if _, err := c.GetOrFetch(context.Background(), "k", fetch); !errors.Is(err, boom) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	v, err := c.GetOrFetch(context.Background(), "k", fetch)
	if err != nil {
		t.Fatalf("retry fetch: %v", err)
	}
	if v != "ok" {
		t.Fatalf("value = %v, want ok", v)
	}
}

func TestGetOrFetchSingleFlight(t *testing.T) {
	c := obscache.New(5 * time.Minute)

	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "shared", nil
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([]interface{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			v, err := c.GetOrFetch(context.Background(), "k", fetch)
			if err != nil {
				t.Errorf("worker %d: %v", idx, err)
				return
			}
			results[idx] = v
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("fetch called %d times, want 1", n)
	}
	for i, v := range results {
		if v != "shared" {
			t.Fatalf("worker %d got %v, want shared", i, v)
		}
	}
}

func TestDistinctKeysFetchIndependently(t *testing.T) {
	c := obscache.New(time.Minute)
	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}
	if _, err := c.GetOrFetch(context.Background(), "a", fetch); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetOrFetch(context.Background(), "b", fetch); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("fetch called %d times, want 2", calls)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
}

func TestZeroTTLDisablesCaching(t *testing.T) {
	c := obscache.New(0)
	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}
	for i := 0; i < 3; i++ {
		if _, err := c.GetOrFetch(context.Background(), "k", fetch); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 3 {
		t.Fatalf("fetch called %d times, want 3", calls)
	}
}

func TestClear(t *testing.T) {
	c := obscache.New(time.Minute)
	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}
	if _, err := c.GetOrFetch(context.Background(), "k", fetch); err != nil {
		t.Fatal(err)
	}
	c.Clear()
	if _, err := c.GetOrFetch(context.Background(), "k", fetch); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("fetch called %d times after Clear, want 2", calls)
	}
}
