package events

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// RunPhase represents the lifecycle phase of a single run
type RunPhase int

const (
	PhaseCreated RunPhase = iota
	PhaseRunning
	PhaseFinished
	PhaseErrored
	PhaseCancelled
)

func (p RunPhase) String() string {
	switch p {
	case PhaseCreated:
		return "CREATED"
	case PhaseRunning:
		return "RUNNING"
	case PhaseFinished:
		return "FINISHED"
	case PhaseErrored:
		return "ERRORED"
	case PhaseCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the phase is sticky: no further events are
// processed once a run reaches it.
func (p RunPhase) Terminal() bool {
	return p == PhaseFinished || p == PhaseErrored || p == PhaseCancelled
}

// Lifecycle violation categories, wrapped by LifecycleError.
var (
	// ErrRunNotStarted indicates an event observed before RUN_STARTED.
	ErrRunNotStarted = errors.New("event before RUN_STARTED")

	// ErrRunAlreadyStarted indicates a second RUN_STARTED within one run.
	ErrRunAlreadyStarted = errors.New("run already started")

	// ErrDuplicateStart indicates a *_START for an id that is already open.
	ErrDuplicateStart = errors.New("stream id already open")

	// ErrUnopenedStream indicates a *_CONTENT/*_ARGS for an id with no open START.
	ErrUnopenedStream = errors.New("stream id not open")

	// ErrUnmatchedEnd indicates a *_END for an id with no open START.
	ErrUnmatchedEnd = errors.New("end without matching start")

	// ErrUnclosedStream indicates ids still open when RUN_FINISHED arrives.
	ErrUnclosedStream = errors.New("unclosed stream at run finish")
)

// LifecycleError describes a protocol-sequencing violation within a run
type LifecycleError struct {
	EventType EventType
	Phase     RunPhase
	ID        string // offending message/tool-call/step id, when applicable
	Err       error
}

func (e *LifecycleError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("lifecycle violation on %s (phase %s, id %s): %v", e.EventType, e.Phase, e.ID, e.Err)
	}
	return fmt.Sprintf("lifecycle violation on %s (phase %s): %v", e.EventType, e.Phase, e.Err)
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}

// RunTracker is the run lifecycle state machine. It advances
// Created -> Running -> {Finished, Errored, Cancelled} as events are
// observed, tracking open message, tool-call, and step ids so that every
// START is balanced by exactly one matching END before the run terminates.
//
// Observing an event after a terminal phase is a no-op: the event is not
// an error, but it is counted as a protocol anomaly for logging.
type RunTracker struct {
	mu sync.Mutex

	phase    RunPhase
	threadID string
	runID    string

	activeMessages  map[string]bool
	activeToolCalls map[string]bool
	activeSteps     map[string]bool
	thinking        bool
	thinkingText    bool

	anomalies int
}

// NewRunTracker creates a tracker in the Created phase
func NewRunTracker() *RunTracker {
	return &RunTracker{
		phase:           PhaseCreated,
		activeMessages:  make(map[string]bool),
		activeToolCalls: make(map[string]bool),
		activeSteps:     make(map[string]bool),
	}
}

// Phase returns the current lifecycle phase
func (t *RunTracker) Phase() RunPhase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// ThreadID returns the thread id observed on RUN_STARTED
func (t *RunTracker) ThreadID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.threadID
}

// RunID returns the run id observed on RUN_STARTED
func (t *RunTracker) RunID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runID
}

// Anomalies returns the count of events observed after a terminal phase
func (t *RunTracker) Anomalies() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.anomalies
}

// OpenStreams returns the ids of all currently open messages, tool calls,
// and steps, sorted for stable output.
func (t *RunTracker) OpenStreams() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.openStreamsLocked()
}

func (t *RunTracker) openStreamsLocked() []string {
	open := make([]string, 0, len(t.activeMessages)+len(t.activeToolCalls)+len(t.activeSteps))
	for id := range t.activeMessages {
		open = append(open, id)
	}
	for id := range t.activeToolCalls {
		open = append(open, id)
	}
	for name := range t.activeSteps {
		open = append(open, name)
	}
	sort.Strings(open)
	return open
}

// Cancel transitions the run to Cancelled. It is idempotent and a no-op
// once the run is already terminal.
func (t *RunTracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.phase.Terminal() {
		t.phase = PhaseCancelled
	}
}

// Observe advances the state machine with one event. A returned
// *LifecycleError reports a protocol violation; the event that caused it
// does not advance the machine except where noted (RUN_FINISHED with open
// ids still reaches Finished so the terminal contract holds).
func (t *RunTracker) Observe(event Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase.Terminal() {
		t.anomalies++
		return nil
	}

	violation := func(id string, err error) *LifecycleError {
		return &LifecycleError{EventType: event.Type(), Phase: t.phase, ID: id, Err: err}
	}

	if t.phase == PhaseCreated {
		switch ev := event.(type) {
		case *RunStartedEvent:
			t.phase = PhaseRunning
			t.threadID = ev.ThreadID
			t.runID = ev.RunID
			return nil
		case *RunErrorEvent:
			// A run may fail before it starts, e.g. on input rejection.
			t.phase = PhaseErrored
			return nil
		default:
			return violation("", ErrRunNotStarted)
		}
	}

	switch ev := event.(type) {
	case *RunStartedEvent:
		return violation("", ErrRunAlreadyStarted)

	case *RunFinishedEvent:
		open := t.openStreamsLocked()
		t.phase = PhaseFinished
		if len(open) > 0 {
			return violation("", fmt.Errorf("%w: %v", ErrUnclosedStream, open))
		}
		return nil

	case *RunErrorEvent:
		t.phase = PhaseErrored
		return nil

	case *TextMessageStartEvent:
		if t.activeMessages[ev.MessageID] {
			return violation(ev.MessageID, ErrDuplicateStart)
		}
		t.activeMessages[ev.MessageID] = true
		return nil

	case *TextMessageContentEvent:
		if !t.activeMessages[ev.MessageID] {
			return violation(ev.MessageID, ErrUnopenedStream)
		}
		return nil

	case *TextMessageChunkEvent:
		if !t.activeMessages[ev.MessageID] {
			return violation(ev.MessageID, ErrUnopenedStream)
		}
		return nil

	case *TextMessageEndEvent:
		if !t.activeMessages[ev.MessageID] {
			return violation(ev.MessageID, ErrUnmatchedEnd)
		}
		delete(t.activeMessages, ev.MessageID)
		return nil

	case *ToolCallStartEvent:
		if t.activeToolCalls[ev.ToolCallID] {
			return violation(ev.ToolCallID, ErrDuplicateStart)
		}
		t.activeToolCalls[ev.ToolCallID] = true
		return nil

	case *ToolCallArgsEvent:
		if !t.activeToolCalls[ev.ToolCallID] {
			return violation(ev.ToolCallID, ErrUnopenedStream)
		}
		return nil

	case *ToolCallEndEvent:
		if !t.activeToolCalls[ev.ToolCallID] {
			return violation(ev.ToolCallID, ErrUnmatchedEnd)
		}
		delete(t.activeToolCalls, ev.ToolCallID)
		return nil

	case *StepStartedEvent:
		if t.activeSteps[ev.StepName] {
			return violation(ev.StepName, ErrDuplicateStart)
		}
		t.activeSteps[ev.StepName] = true
		return nil

	case *StepFinishedEvent:
		if !t.activeSteps[ev.StepName] {
			return violation(ev.StepName, ErrUnmatchedEnd)
		}
		delete(t.activeSteps, ev.StepName)
		return nil

	case *ThinkingStartEvent:
		if t.thinking {
			return violation("", ErrDuplicateStart)
		}
		t.thinking = true
		return nil

	case *ThinkingEndEvent:
		if !t.thinking {
			return violation("", ErrUnmatchedEnd)
		}
		t.thinking = false
		return nil

	case *ThinkingTextMessageStartEvent:
		if t.thinkingText {
			return violation("", ErrDuplicateStart)
		}
		t.thinkingText = true
		return nil

	case *ThinkingTextMessageContentEvent:
		if !t.thinkingText {
			return violation("", ErrUnopenedStream)
		}
		return nil

	case *ThinkingTextMessageEndEvent:
		if !t.thinkingText {
			return violation("", ErrUnmatchedEnd)
		}
		t.thinkingText = false
		return nil

	default:
		// State, messages-snapshot, tool-call-result, raw, and custom
		// events are valid anywhere within Running.
		return nil
	}
}
