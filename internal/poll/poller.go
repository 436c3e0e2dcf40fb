package poll

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FetchFunc performs one fetch. It is responsible for delivering its own
// result; the returned error is only logged.
type FetchFunc func(ctx context.Context) error

// Poller re-issues a fetch at a fixed interval while it is running.
//
// Every fetch runs on its own goroutine so a slow request never delays the
// next tick. Overlapping fetches are not deduplicated; whichever completes
// last is what the consumer ends up showing.
type Poller struct {
	name     string
	interval time.Duration
	fetch    FetchFunc
	logger   *zap.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}

	inflight sync.WaitGroup
}

// Option customises a Poller.
type Option func(*Poller)

// WithLogger sets the logger used for fetch failures.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithName labels log entries.
func WithName(name string) Option {
	return func(p *Poller) { p.name = name }
}

const defaultInterval = 10 * time.Second

// New builds a stopped Poller. A non-positive interval falls back to 10s.
func New(interval time.Duration, fetch FetchFunc, opts ...Option) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	p := &Poller{
		name:     "poll",
		interval: interval,
		fetch:    fetch,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval reports the configured cadence.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start issues the first fetch immediately and then one per interval until
// Stop is called or ctx is done. Starting a running poller does nothing.
//
// ctx is also handed to each fetch, so Stop alone does not cancel requests
// already on the wire.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.runningLocked() {
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	p.stop, p.done = stop, done

	ticker := time.NewTicker(p.interval)
	p.fire(ctx)

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.fire(ctx)
			}
		}
	}()
	p.logger.Debug("poller started", zap.String("poller", p.name), zap.Duration("interval", p.interval))
}

// Stop releases the ticker. It is safe to call on a stopped or never started
// poller. In-flight fetches keep running; use Wait to drain them.
func (p *Poller) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	p.logger.Debug("poller stopped", zap.String("poller", p.name))
}

// Running reports whether the ticker is held.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runningLocked()
}

// Wait blocks until every fetch issued so far has returned. Call it after
// Stop.
func (p *Poller) Wait() {
	p.inflight.Wait()
}

func (p *Poller) runningLocked() bool {
	if p.stop == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *Poller) fire(ctx context.Context) {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		if err := p.fetch(ctx); err != nil {
			p.logger.Warn("poll failed", zap.String("poller", p.name), zap.Error(err))
		}
	}()
}
