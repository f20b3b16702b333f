package dataset

// limiter.go caps how many uploaded files are decoded into tables at once.
// A decoded table is held in memory until it replaces a session's dataset,
// so the server admits a few decodes and queues the rest for a short while.

import (
	"context"
	"sync"
	"time"

	"github.com/JonMunkholm/tabclean/internal/core"
)

const (
	DefaultMaxConcurrent = 4
	DefaultMaxWait       = 10 * time.Second
)

// Limiter admits uploads for decoding. The server drains it on shutdown so
// no half-loaded dataset is dropped.
type Limiter struct {
	decoding chan struct{}
	queueFor time.Duration

	mu   sync.Mutex
	n    int
	idle chan struct{} // closed while n == 0
}

// NewLimiter admits maxConcurrent uploads, each queued for at most maxWait.
// Zero or negative values select DefaultMaxConcurrent and DefaultMaxWait.
func NewLimiter(maxConcurrent int, maxWait time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	idle := make(chan struct{})
	close(idle)
	return &Limiter{
		decoding: make(chan struct{}, maxConcurrent),
		queueFor: maxWait,
		idle:     idle,
	}
}

// Acquire admits one upload. It fails with core.ErrTooManyUploads (UPL002)
// when no slot frees up in time, or with ctx's error if the request goes
// away first. Every successful Acquire needs a matching Release.
func (l *Limiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.queueFor)
	defer timer.Stop()

	select {
	case l.decoding <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return core.ErrTooManyUploads
	}

	l.mu.Lock()
	if l.n == 0 {
		l.idle = make(chan struct{})
	}
	l.n++
	l.mu.Unlock()
	return nil
}

// Release frees the slot of a finished upload.
func (l *Limiter) Release() {
	l.mu.Lock()
	l.n--
	if l.n == 0 {
		close(l.idle)
	}
	l.mu.Unlock()
	<-l.decoding
}

// Active is the number of uploads being decoded.
func (l *Limiter) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.n
}

func (l *Limiter) Available() int {
	return cap(l.decoding) - len(l.decoding)
}

// WaitForDrain returns once no upload is being decoded, or with ctx's error.
func (l *Limiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
