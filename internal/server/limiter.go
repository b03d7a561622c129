package server

import (
	"context"
	"net/http"
	"runtime"
)

// Worker bounds for concurrent conversions.
const (
	// MinWorkers ensures at least one conversion can run.
	MinWorkers = 1

	// MaxWorkers caps automatic sizing; each conversion holds the whole
	// document and its artifact in memory.
	MaxWorkers = 16
)

// ResolveWorkers determines how many conversions may run at once.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers.
	n := runtime.GOMAXPROCS(0)
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// limiter bounds in-flight conversions with a counting semaphore.
type limiter struct {
	sem      chan struct{}
	inFlight interface{ Inc(); Dec() } // optional gauge
}

func newLimiter(n int) *limiter {
	if n < MinWorkers {
		n = MinWorkers
	}
	return &limiter{sem: make(chan struct{}, n)}
}

// acquire blocks until a slot is free or ctx is done.
func (l *limiter) acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		if l.inFlight != nil {
			l.inFlight.Inc()
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *limiter) release() {
	if l.inFlight != nil {
		l.inFlight.Dec()
	}
	<-l.sem
}

// size returns the number of slots.
func (l *limiter) size() int {
	return cap(l.sem)
}

// limit wraps a conversion handler so it waits for a free slot. A client
// that gives up while waiting gets 503.
func (l *limiter) limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := l.acquire(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "server busy")
			return
		}
		defer l.release()

		next(w, r)
	}
}
