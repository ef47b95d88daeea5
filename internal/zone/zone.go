// Package zone implements the cooperative, single-threaded scheduler the form
// engine runs on.
//
// All engine work happens inside a turn opened by Run. When the outermost
// turn ends, queued tasks run and then the stable callbacks fire, repeating
// until nothing is left. Timers and background work never touch engine state
// directly: their continuations are parked on a ready queue and executed at
// the start of the next turn.
package zone

import (
	"context"
	"sync"
	"time"
)

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks after a delay.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Zone is the scheduler. Run, Schedule, OnStable, After and Go must be called
// from the owning goroutine; timer and background continuations may be
// delivered from any goroutine.
type Zone struct {
	clock Clock

	depth  int
	tasks  []func()
	stable []func()

	mu          sync.Mutex
	ready       []func()
	outstanding int
	wake        chan struct{}
}

// Option configures a Zone.
type Option func(*Zone)

// WithClock replaces the wall clock, typically with a manual clock in tests.
func WithClock(c Clock) Option {
	return func(z *Zone) {
		if c != nil {
			z.clock = c
		}
	}
}

// New creates a Zone.
func New(opts ...Option) *Zone {
	z := &Zone{
		clock: realClock{},
		wake:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

// InTurn reports whether a turn is currently open.
func (z *Zone) InTurn() bool {
	return z.depth > 0
}

// Run executes fn inside a turn. Nested calls join the current turn.
func (z *Zone) Run(fn func()) {
	z.depth++
	func() {
		defer func() { z.depth-- }()
		if fn != nil {
			fn()
		}
	}()
	if z.depth == 0 {
		z.settle()
	}
}

// Flush opens an empty turn so delivered continuations and stable callbacks run.
func (z *Zone) Flush() {
	z.Run(nil)
}

// Schedule queues fn to run before the current turn settles.
func (z *Zone) Schedule(fn func()) {
	z.tasks = append(z.tasks, fn)
	if z.depth == 0 {
		z.Flush()
	}
}

// OnStable registers a one-shot callback fired once the current turn has no
// queued work left. Outside a turn it fires immediately.
func (z *Zone) OnStable(fn func()) {
	z.stable = append(z.stable, fn)
	if z.depth == 0 {
		z.Flush()
	}
}

// After delivers fn into a turn once d has elapsed. The returned function
// cancels the timer if it has not fired yet.
func (z *Zone) After(d time.Duration, fn func()) (cancel func()) {
	z.mu.Lock()
	z.outstanding++
	z.mu.Unlock()

	t := z.clock.AfterFunc(d, func() { z.deliver(fn) })
	return func() {
		if t.Stop() {
			z.mu.Lock()
			z.outstanding--
			z.mu.Unlock()
			z.signal()
		}
	}
}

// Go runs work on another goroutine. The continuation it returns, if any,
// runs inside a later turn.
func (z *Zone) Go(work func() func()) {
	z.mu.Lock()
	z.outstanding++
	z.mu.Unlock()

	go func() {
		z.deliver(work())
	}()
}

// Pending reports the number of timers and background jobs not yet delivered.
func (z *Zone) Pending() int {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.outstanding + len(z.ready)
}

// Wait flushes delivered work until no timers or background jobs remain.
func (z *Zone) Wait(ctx context.Context) error {
	for {
		z.Flush()
		if z.Pending() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-z.wake:
		}
	}
}

func (z *Zone) deliver(fn func()) {
	z.mu.Lock()
	z.outstanding--
	if fn != nil {
		z.ready = append(z.ready, fn)
	}
	z.mu.Unlock()
	z.signal()
}

func (z *Zone) signal() {
	select {
	case z.wake <- struct{}{}:
	default:
	}
}

func (z *Zone) takeReady() []func() {
	z.mu.Lock()
	defer z.mu.Unlock()
	ready := z.ready
	z.ready = nil
	return ready
}

// settle drains work at the end of the outermost turn.
func (z *Zone) settle() {
	z.depth++
	defer func() { z.depth-- }()

	for {
		if ready := z.takeReady(); len(ready) > 0 {
			for _, fn := range ready {
				fn()
			}
			continue
		}
		if len(z.tasks) > 0 {
			tasks := z.tasks
			z.tasks = nil
			for _, fn := range tasks {
				fn()
			}
			continue
		}
		if len(z.stable) > 0 {
			stable := z.stable
			z.stable = nil
			for _, fn := range stable {
				fn()
			}
			continue
		}
		return
	}
}
