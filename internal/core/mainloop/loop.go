// Package mainloop owns the host's single mutation-safe goroutine. Sessions
// marshal closures onto it with Call and block until the closure ran or the
// caller's context expired. The loop alone touches the scene graph; nothing
// here locks it.
package mainloop

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scenewire/scenewire/internal/core/observability/log"
)

type Options struct {
	TickInterval    time.Duration
	QueueSize       int
	MaxDrainPerTick int
}

// invocation is one marshaled call. The result slot is written exactly once,
// by the loop goroutine, before done closes; callers read it only after
// observing done. An abandoned caller simply never reads the slot.
type invocation struct {
	ctx  context.Context
	fn   func() (any, error)
	out  any
	err  error
	done chan struct{}
}

type Loop struct {
	tick     time.Duration
	maxDrain int
	queue    chan *invocation
	onTick   []func(dt float64)
	log      log.Log

	started  int32
	stopCh   chan struct{}
	closeCh  chan struct{}
	done     chan struct{}
	shutOnce sync.Once

	ticks   uint64
	dropped uint64
}

func New(opts Options, logger log.Log) *Loop {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 16 * time.Millisecond
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.MaxDrainPerTick <= 0 {
		opts.MaxDrainPerTick = 64
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Loop{
		tick:     opts.TickInterval,
		maxDrain: opts.MaxDrainPerTick,
		queue:    make(chan *invocation, opts.QueueSize),
		log:      logger.With(log.String("component", "mainloop")),
		stopCh:   make(chan struct{}),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// OnTick registers a per-frame callback. Must be called before Start.
func (l *Loop) OnTick(fn func(dt float64)) {
	if atomic.LoadInt32(&l.started) != 0 {
		panic("mainloop: OnTick after Start")
	}
	l.onTick = append(l.onTick, fn)
}

func (l *Loop) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&l.started, 0, 1) {
		return ErrAlreadyRunning
	}
	go l.run(ctx)
	l.log.Info("main loop started", log.Duration("tick", l.tick))
	return nil
}

// Stop drains queued invocations, then shuts the loop down. In-flight work
// finishes; new Calls fail.
func (l *Loop) Stop() error { return l.shutdown(false) }

// Close shuts down without draining: queued invocations fail with
// ErrLoopClosed.
func (l *Loop) Close() error { return l.shutdown(true) }

func (l *Loop) shutdown(force bool) error {
	if atomic.LoadInt32(&l.started) == 0 {
		return ErrNotRunning
	}
	l.shutOnce.Do(func() {
		if force {
			close(l.closeCh)
		} else {
			close(l.stopCh)
		}
	})
	<-l.done
	return nil
}

// Call runs fn on the loop goroutine and returns its result. A full queue
// fails immediately. If ctx expires while the invocation is still queued,
// the loop drops it without running; expiry during execution lets the work
// finish and discards the result.
func (l *Loop) Call(ctx context.Context, fn func() (any, error)) (any, error) {
	if atomic.LoadInt32(&l.started) == 0 {
		return nil, ErrNotRunning
	}
	select {
	case <-l.done:
		return nil, ErrLoopClosed
	default:
	}

	inv := &invocation{ctx: ctx, fn: fn, done: make(chan struct{})}
	select {
	case l.queue <- inv:
	default:
		return nil, ErrQueueFull
	}

	select {
	case <-inv.done:
		return inv.out, inv.err
	case <-ctx.Done():
		return nil, fmt.Errorf("invocation abandoned: %w", ctx.Err())
	case <-l.done:
		return nil, ErrLoopClosed
	}
}

// QueueDepth reports how many invocations wait for the next tick.
func (l *Loop) QueueDepth() int { return len(l.queue) }

// Ticks reports how many frames the loop has run.
func (l *Loop) Ticks() uint64 { return atomic.LoadUint64(&l.ticks) }

// Dropped reports invocations abandoned by their caller before running.
func (l *Loop) Dropped() uint64 { return atomic.LoadUint64(&l.dropped) }

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			l.failPending(ctx.Err())
			return
		case <-l.closeCh:
			l.failPending(ErrLoopClosed)
			return
		case <-l.stopCh:
			l.drain(len(l.queue))
			l.log.Info("main loop stopped", log.Uint64("ticks", l.Ticks()))
			return
		case now := <-ticker.C:
			l.drain(l.maxDrain)
			atomic.AddUint64(&l.ticks, 1)
			dt := now.Sub(last).Seconds()
			last = now
			for _, fn := range l.onTick {
				fn(dt)
			}
		}
	}
}

func (l *Loop) drain(budget int) {
	for i := 0; i < budget; i++ {
		select {
		case inv := <-l.queue:
			l.execute(inv)
		default:
			return
		}
	}
}

func (l *Loop) execute(inv *invocation) {
	if err := inv.ctx.Err(); err != nil {
		// the caller stopped waiting while this sat in the queue
		atomic.AddUint64(&l.dropped, 1)
		inv.err = fmt.Errorf("dropped before run: %w", err)
		close(inv.done)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			inv.out = nil
			inv.err = &PanicError{Value: r, Stack: stack}
			l.log.Error("invocation panicked",
				log.Any("panic", r),
				log.String("stack", string(stack)))
		}
		close(inv.done)
	}()
	inv.out, inv.err = inv.fn()
}

func (l *Loop) failPending(cause error) {
	for {
		select {
		case inv := <-l.queue:
			inv.err = cause
			close(inv.done)
		default:
			return
		}
	}
}
