package entitystore

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Persister is anything that can write its state to disk, such as a Store or CategoryStore.
type Persister interface {
	Persist() error
}

// Flusher delays and coalesces persist requests. Every Schedule call made while a write is
// pending is served by that write.
type Flusher struct {
	target  Persister
	delay   time.Duration
	onError func(error)

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
}

type FlusherOption func(*Flusher)

// WithErrorHandler receives errors from delayed writes, which have no caller to return to.
func WithErrorHandler(fn func(error)) FlusherOption {
	return func(f *Flusher) {
		if fn != nil {
			f.onError = fn
		}
	}
}

func NewFlusher(target Persister, delay time.Duration, opts ...FlusherOption) *Flusher {
	f := &Flusher{
		target:  target,
		delay:   delay,
		onError: func(error) {},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Schedule asks for a write after the flusher's delay unless one is already pending.
func (f *Flusher) Schedule() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		return
	}

	f.generation++
	generation := f.generation

	f.timer = time.AfterFunc(f.delay, func() {
		f.fire(generation)
	})
}

func (f *Flusher) fire(generation uint64) {
	f.mu.Lock()
	if f.generation != generation {
		f.mu.Unlock()
		return
	}
	f.timer = nil
	f.mu.Unlock()

	if err := f.target.Persist(); err != nil {
		f.onError(err)
	}
}

// Pending reports whether a delayed write is armed.
func (f *Flusher) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.timer != nil
}

// Flush cancels any pending write and persists immediately.
func (f *Flusher) Flush() error {
	f.disarm()

	return f.target.Persist()
}

// Stop cancels any pending write, persisting right away if one was armed.
func (f *Flusher) Stop() error {
	if !f.disarm() {
		return nil
	}

	return f.target.Persist()
}

func (f *Flusher) disarm() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer == nil {
		return false
	}

	f.timer.Stop()
	f.timer = nil
	f.generation++

	return true
}

// PersistAll persists every target concurrently and returns the first error.
func PersistAll(ctx context.Context, targets ...Persister) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, target := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			return target.Persist()
		})
	}

	return g.Wait()
}
