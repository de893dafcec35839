package stream

import (
	"errors"
	"sync"

	"github.com/agentwire/go-sdk/pkg/core/events"
)

var (
	// ErrIllegalState indicates an Emit after the producer already signalled
	// completion. That is a producer bug, not a recoverable condition.
	ErrIllegalState = errors.New("emit on completed subscription")

	// ErrCancelled indicates an Emit after the consumer cancelled. The event
	// is silently discarded; the producer should stop emitting.
	ErrCancelled = errors.New("subscription cancelled")
)

// DefaultBufferSize is the producer-side buffer capacity of a new Subscription
const DefaultBufferSize = 64

// Subscription is one run's delivery channel. Events flow strictly in the
// order they were emitted; after the channel closes, Err reports how the
// run terminated. The terminal transition happens exactly once.
//
// Delivery runs through an internal forwarding loop: the producer emits
// into a buffered inbox, and a single goroutine hands events to the
// consumer one at a time. The loop checks for cancellation before every
// hand-off, so once Cancel is observed, events still sitting in the inbox
// are discarded instead of delivered — at most the one event already being
// offered can race the cancellation.
type Subscription struct {
	in        chan events.Event
	out       chan events.Event
	cancelled chan struct{}
	done      chan struct{}

	cancelOnce sync.Once
	finishOnce sync.Once

	mu       sync.Mutex
	err      error
	finished bool
	onCancel func()
}

// NewSubscription creates an active subscription
func NewSubscription() *Subscription {
	return NewSubscriptionBuffer(DefaultBufferSize)
}

// NewSubscriptionBuffer creates an active subscription with a specific
// producer buffer capacity.
func NewSubscriptionBuffer(size int) *Subscription {
	if size <= 0 {
		size = DefaultBufferSize
	}
	s := &Subscription{
		in:        make(chan events.Event, size),
		out:       make(chan events.Event),
		cancelled: make(chan struct{}),
		done:      make(chan struct{}),
	}
	go s.forward()
	return s
}

// forward is the delivery loop: inbox to consumer, stopping at the first
// observation of cancellation. On cancel it keeps draining the inbox so a
// producer that has not noticed yet is never blocked.
func (s *Subscription) forward() {
	terminate := func() {
		close(s.out)
		close(s.done)
		for range s.in {
		}
	}

	for {
		select {
		case <-s.cancelled:
			terminate()
			return
		case event, ok := <-s.in:
			if !ok {
				close(s.out)
				close(s.done)
				return
			}

			select {
			case <-s.cancelled:
				terminate()
				return
			default:
			}

			select {
			case s.out <- event:
			case <-s.cancelled:
				terminate()
				return
			}
		}
	}
}

// Events returns the ordered event channel. The channel closes when the
// run reaches a terminal state or the subscription is cancelled; check
// Err afterwards.
func (s *Subscription) Events() <-chan events.Event {
	return s.out
}

// Done is closed once the subscription reaches its terminal state
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err reports how the run terminated. It is meaningful once Events is
// closed (or Done fires); nil means clean completion or cancellation.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancelled reports whether the consumer cancelled the subscription
func (s *Subscription) Cancelled() bool {
	select {
	case <-s.cancelled:
		return true
	default:
		return false
	}
}

// OnCancel registers a hook invoked once if the consumer cancels, used to
// tear down resources backing the stream (e.g. aborting an HTTP request).
func (s *Subscription) OnCancel(fn func()) {
	s.mu.Lock()
	s.onCancel = fn
	s.mu.Unlock()
}

// Cancel requests cancellation. It is idempotent; buffered events that
// have not been handed to the consumer yet are discarded, and the
// terminal signal still fires exactly once.
func (s *Subscription) Cancel() {
	s.cancelOnce.Do(func() {
		close(s.cancelled)

		s.mu.Lock()
		hook := s.onCancel
		finished := s.finished
		s.mu.Unlock()

		if hook != nil && !finished {
			hook()
		}
	})
}

// Emit delivers one event to the consumer. It blocks while the producer
// buffer is full (backpressure), returns ErrCancelled after consumer
// cancellation, and ErrIllegalState if the producer already called Finish.
func (s *Subscription) Emit(event events.Event) error {
	s.mu.Lock()
	finished := s.finished
	s.mu.Unlock()

	if finished {
		return ErrIllegalState
	}

	select {
	case <-s.cancelled:
		return ErrCancelled
	default:
	}

	select {
	case s.in <- event:
		return nil
	case <-s.cancelled:
		return ErrCancelled
	}
}

// Finish marks the run terminal; the event channel closes once buffered
// events have been delivered. Exactly the first call wins; err is what
// Err will report (nil for clean completion and for cancellation).
func (s *Subscription) Finish(err error) {
	s.finishOnce.Do(func() {
		s.mu.Lock()
		s.finished = true
		if !s.Cancelled() {
			s.err = err
		}
		s.mu.Unlock()

		close(s.in)
	})
}
