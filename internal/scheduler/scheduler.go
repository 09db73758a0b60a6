// Package scheduler runs deferred reminder firings from a single
// time-ordered queue.
//
// One dispatcher goroutine sleeps until the earliest due entry, pops every
// entry that is due and hands each one to its own goroutine. A reminder id
// is present in the queue at most once: arming an id that is already armed
// moves the existing entry instead of adding a second one.
package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const defaultConcurrency = 8

// FireFunc is called once for every entry that comes due. The context is not
// cancelled by Stop, so a firing that has started runs to completion.
type FireFunc func(ctx context.Context, id uint)

type Option func(*Scheduler)

// WithClock sets the time source. Tests pass a clockwork fake clock.
func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithConcurrency bounds how many firings run at the same time. Firings over
// the limit wait in their own goroutine, never in the dispatcher.
func WithConcurrency(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

type Scheduler struct {
	fire        FireFunc
	clock       clockwork.Clock
	log         *slog.Logger
	concurrency int

	mu    sync.Mutex
	queue entryQueue
	index map[uint]*entry
	seq   uint64

	wake     chan struct{}
	sem      chan struct{}
	inflight sync.WaitGroup

	runMu   sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

func New(fire FireFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		fire:        fire,
		clock:       clockwork.NewRealClock(),
		log:         slog.Default(),
		concurrency: defaultConcurrency,
		index:       make(map[uint]*entry),
		wake:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sem = make(chan struct{}, s.concurrency)
	return s
}

// Arm schedules id to fire at due. An earlier arm of the same id is replaced.
// A due time in the past fires on the next dispatcher pass. Arm never blocks
// on a firing.
func (s *Scheduler) Arm(id uint, due time.Time) {
	s.mu.Lock()
	s.seq++
	if e, ok := s.index[id]; ok {
		e.due = due
		e.seq = s.seq
		heap.Fix(&s.queue, e.index)
	} else {
		e := &entry{id: id, due: due, seq: s.seq}
		heap.Push(&s.queue, e)
		s.index[id] = e
	}
	s.mu.Unlock()

	s.notify()
}

// Disarm removes id from the queue and reports whether it was armed. A firing
// that has already been dispatched is not affected.
func (s *Scheduler) Disarm(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.index[id]
	if !ok {
		return false
	}
	heap.Remove(&s.queue, e.index)
	delete(s.index, id)
	return true
}

// IsArmed reports whether id is waiting in the queue.
func (s *Scheduler) IsArmed(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok
}

// Due returns the time id is armed for.
func (s *Scheduler) Due(id uint) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.index[id]
	if !ok {
		return time.Time{}, false
	}
	return e.due, true
}

// Len returns the number of armed entries.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Start launches the dispatcher. It returns immediately; calling it on a
// running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stopped = make(chan struct{})

	go s.run(ctx, s.stopped)
	s.log.Info("scheduler started", "concurrency", s.concurrency)
}

// Stop halts dispatching and waits for in-flight firings to return. Armed
// entries stay queued and are dispatched if Start is called again.
func (s *Scheduler) Stop() {
	s.runMu.Lock()
	cancel, stopped := s.cancel, s.stopped
	s.cancel, s.stopped = nil, nil
	s.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
	s.inflight.Wait()
	s.log.Info("scheduler stopped", "armed", s.Len())
}

func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run(ctx context.Context, stopped chan<- struct{}) {
	defer close(stopped)

	for {
		due, next, ok := s.popDue()
		for _, id := range due {
			s.dispatch(ctx, id)
		}

		var (
			timer  clockwork.Timer
			expiry <-chan time.Time
		)
		if ok {
			timer = s.clock.NewTimer(next.Sub(s.clock.Now()))
			expiry = timer.Chan()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-s.wake:
		case <-expiry:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

// popDue removes every entry due at or before now and returns their ids in
// due order, along with the next pending due time if any.
func (s *Scheduler) popDue() ([]uint, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var due []uint
	for {
		e := s.queue.peek()
		if e == nil {
			return due, time.Time{}, false
		}
		if e.due.After(now) {
			return due, e.due, true
		}
		heap.Pop(&s.queue)
		delete(s.index, e.id)
		due = append(due, e.id)
	}
}

func (s *Scheduler) dispatch(ctx context.Context, id uint) {
	fireCtx := context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		s.sem <- struct{}{}
		defer func() { <-s.sem }()

		defer func() {
			if r := recover(); r != nil {
				s.log.Error("reminder fire panicked",
					"reminder_id", id,
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()),
				)
			}
		}()

		s.fire(fireCtx, id)
	}()
}
