package server

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/agentwire/go-sdk/pkg/core/events"
	"github.com/agentwire/go-sdk/pkg/state"
	"github.com/agentwire/go-sdk/pkg/stream"
)

// Emitter is the producer surface handed to an agent for one run. Every
// event passes validation and the lifecycle state machine before delivery;
// state events additionally fold into the run's state store so the server
// always knows the state a conforming client has reconstructed.
type Emitter struct {
	threadID string
	runID    string

	sub     *stream.Subscription
	tracker *events.RunTracker
	store   *state.Store
	logger  *logrus.Logger
}

func newEmitter(threadID, runID string, sub *stream.Subscription, store *state.Store, logger *logrus.Logger) *Emitter {
	return &Emitter{
		threadID: threadID,
		runID:    runID,
		sub:      sub,
		tracker:  events.NewRunTracker(),
		store:    store,
		logger:   logger,
	}
}

// ThreadID returns the thread this run belongs to
func (e *Emitter) ThreadID() string {
	return e.threadID
}

// RunID returns the run identifier
func (e *Emitter) RunID() string {
	return e.runID
}

// State returns the run's folded state document
func (e *Emitter) State() *state.Store {
	return e.store
}

// Emit validates and delivers one event. Lifecycle violations are
// returned without delivering the event, except for a RUN_FINISHED that
// leaves streams open: that still terminates the run on the wire and the
// violation is reported to the caller.
func (e *Emitter) Emit(event events.Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	if err := event.Validate(); err != nil {
		return err
	}

	unclosed := false
	if err := e.tracker.Observe(event); err != nil {
		if !errors.Is(err, events.ErrUnclosedStream) {
			return err
		}
		unclosed = true
		e.logger.WithError(err).WithField("run_id", e.runID).Warn("Run finished with unclosed streams")
	}

	// A delta that fails to apply is the producer's bug, but the run
	// continues: the event is withheld so clients never observe a patch
	// the server itself could not apply.
	if handled, err := e.store.ApplyEvent(event); err != nil {
		e.logger.WithError(err).WithField("run_id", e.runID).Error("State event rejected")
		return err
	} else if handled {
		e.logger.WithField("run_id", e.runID).Debug("State event folded")
	}

	if err := e.sub.Emit(event); err != nil {
		return err
	}

	if unclosed {
		return &events.LifecycleError{
			EventType: event.Type(),
			Phase:     e.tracker.Phase(),
			Err:       events.ErrUnclosedStream,
		}
	}
	return nil
}

// Phase reports the run's current lifecycle phase
func (e *Emitter) Phase() events.RunPhase {
	return e.tracker.Phase()
}

// StartRun emits RUN_STARTED for this run
func (e *Emitter) StartRun() error {
	return e.Emit(events.NewRunStartedEvent(e.threadID, e.runID))
}

// FinishRun emits RUN_FINISHED, optionally carrying a result value
func (e *Emitter) FinishRun(options ...events.RunFinishedOption) error {
	return e.Emit(events.NewRunFinishedEvent(e.threadID, e.runID, options...))
}

// ErrorRun emits RUN_ERROR with the given message
func (e *Emitter) ErrorRun(message string, options ...events.RunErrorOption) error {
	options = append([]events.RunErrorOption{events.WithRunID(e.runID)}, options...)
	return e.Emit(events.NewRunErrorEvent(message, options...))
}
