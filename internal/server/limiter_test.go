package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"
)

func TestResolveWorkers(t *testing.T) {
	t.Parallel()

	if got := ResolveWorkers(3); got != 3 {
		t.Errorf("ResolveWorkers(3) = %d, want 3", got)
	}

	auto := ResolveWorkers(0)
	if auto < MinWorkers || auto > MaxWorkers {
		t.Errorf("ResolveWorkers(0) = %d, want within [%d, %d]", auto, MinWorkers, MaxWorkers)
	}
	if procs := runtime.GOMAXPROCS(0); procs <= MaxWorkers && auto != procs {
		t.Errorf("ResolveWorkers(0) = %d, want GOMAXPROCS %d", auto, procs)
	}
}

func TestLimiter_BlocksUntilRelease(t *testing.T) {
	t.Parallel()

	l := newLimiter(1)
	if err := l.acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("second acquire = %v, want DeadlineExceeded", err)
	}

	l.release()
	if err := l.acquire(context.Background()); err != nil {
		t.Errorf("acquire after release: %v", err)
	}
}

func TestLimiter_MinimumSize(t *testing.T) {
	t.Parallel()

	if got := newLimiter(0).size(); got != MinWorkers {
		t.Errorf("size = %d, want %d", got, MinWorkers)
	}
}

func TestLimiter_Limit(t *testing.T) {
	t.Parallel()

	l := newLimiter(1)
	h := l.limit(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/convert", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("free slot: status = %d, want 204", rec.Code)
	}

	// Occupy the only slot, then send a request that has already given up.
	if err := l.acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer l.release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/convert", nil).WithContext(ctx))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("busy: status = %d, want 503", rec.Code)
	}
}
