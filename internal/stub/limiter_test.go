package stub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestLimiter_AcquireRelease(t *testing.T) {
	l := newLimiter(2, time.Second)
	ctx := context.Background()

	if got := l.load(); got != (Load{Active: 0, Available: 2, MaxConcurrent: 2}) {
		t.Errorf("initial load = %+v", got)
	}

	if err := l.acquire(ctx); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	if err := l.acquire(ctx); err != nil {
		t.Fatalf("second acquire failed: %v", err)
	}
	if got := l.load(); got.Active != 2 || got.Available != 0 {
		t.Errorf("after two acquires, load = %+v", got)
	}

	l.release()
	if got := l.load(); got.Active != 1 || got.Available != 1 {
		t.Errorf("after release, load = %+v", got)
	}
	l.release()
	if got := l.load().Active; got != 0 {
		t.Errorf("after second release, Active = %d, want 0", got)
	}
}

func TestLimiter_BlocksWhenFull(t *testing.T) {
	l := newLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := l.acquire(ctx); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	start := time.Now()
	err := l.acquire(ctx)
	if !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("acquire returned after %v, expected to wait", elapsed)
	}
}

func TestLimiter_CallerCancelled(t *testing.T) {
	l := newLimiter(1, time.Second)
	if err := l.acquire(context.Background()); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l := newLimiter(3, time.Second)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		peak    int
		current int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.acquire(ctx); err != nil {
				t.Errorf("acquire failed: %v", err)
				return
			}
			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
			l.release()
		}()
	}
	wg.Wait()

	if peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
	if got := l.load().Active; got != 0 {
		t.Errorf("Active = %d after all released, want 0", got)
	}
}

func TestServer_MaxConcurrent(t *testing.T) {
	routes := []Route{{Method: http.MethodGet, Path: "/slow", Status: http.StatusOK, Delay: 200 * time.Millisecond}}
	s := NewServer(routes, WithMaxConcurrent(1, 20*time.Millisecond))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	first := make(chan int, 1)
	go func() {
		resp, err := http.Get(ts.URL + "/slow")
		if err != nil {
			first <- 0
			return
		}
		resp.Body.Close()
		first <- resp.StatusCode
	}()

	deadline := time.Now().Add(time.Second)
	for s.Load().Active == 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}

	resp, err := http.Get(ts.URL + "/slow")
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("second request status = %d, want 503", resp.StatusCode)
	}
	if got := resp.Header.Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}

	if got := <-first; got != http.StatusOK {
		t.Errorf("first request status = %d, want 200", got)
	}
}

func TestServer_LoadWithoutLimit(t *testing.T) {
	if got := NewServer(nil).Load(); got != (Load{}) {
		t.Errorf("Load = %+v, want zero", got)
	}
	if NewServer(nil, WithMaxConcurrent(0, 0)).limiter != nil {
		t.Error("WithMaxConcurrent(0) should not install a limiter")
	}
}
