package stub

// limiter.go caps the number of requests the stub serves at once, so tests
// can exercise how a client behaves against a saturated backend.
//
// Requests that cannot get a slot within maxWait are answered with
// 503 Service Unavailable and a Retry-After header.

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/the-sdet/sdetkit/internal/logging"
)

// ErrBusy is returned when every slot stays occupied for the whole wait.
var ErrBusy = errors.New("too many concurrent requests, please try again later")

// DefaultMaxWait is how long a request waits for a slot before rejection.
const DefaultMaxWait = 5 * time.Second

// limiter is a counting semaphore.
type limiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.Mutex
	active int
}

func newLimiter(maxConcurrent int, maxWait time.Duration) *limiter {
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	return &limiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// acquire waits up to maxWait for a slot. The caller must release it.
func (l *limiter) acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-waitCtx.Done():
		// the caller going away is not the stub being busy
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrBusy
	}
}

func (l *limiter) release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.slots
}

// Load is a snapshot of the stub's concurrency.
type Load struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

func (l *limiter) load() Load {
	l.mu.Lock()
	active := l.active
	l.mu.Unlock()

	return Load{
		Active:        active,
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}

// WithMaxConcurrent limits the stub to n requests in flight. Zero or less
// means no limit.
func WithMaxConcurrent(n int, maxWait time.Duration) Option {
	return func(s *Server) {
		if n > 0 {
			s.limiter = newLimiter(n, maxWait)
		}
	}
}

func (s *Server) limit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAdmin(r) {
			next.ServeHTTP(w, r)
			return
		}
		if err := s.limiter.acquire(r.Context()); err != nil {
			if errors.Is(err, ErrBusy) {
				logging.Warn(r.Context(), "stub saturated", "max_concurrent", cap(s.limiter.slots))
				w.Header().Set("Retry-After", strconv.Itoa(1))
				writeError(w, http.StatusServiceUnavailable, err.Error())
			}
			return
		}
		defer s.limiter.release()
		next.ServeHTTP(w, r)
	})
}

// Load reports how many requests are in flight. Without WithMaxConcurrent
// it returns the zero Load.
func (s *Server) Load() Load {
	if s.limiter == nil {
		return Load{}
	}
	return s.limiter.load()
}
