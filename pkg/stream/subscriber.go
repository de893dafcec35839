package stream

import (
	"github.com/agentwire/go-sdk/pkg/core/events"
)

// Subscriber receives run events through typed callbacks. Every field is
// optional; nil hooks are skipped. For each event the type-specific hook
// fires first, then the generic OnEvent hook, so consumers can mix both
// without double bookkeeping ambiguity.
//
// Exactly one of OnRunFailed or OnRunFinalized fires per run, always
// last. Cancellation finalizes without a failure callback.
type Subscriber struct {
	OnEvent func(events.Event)

	OnRunStarted  func(*events.RunStartedEvent)
	OnRunFinished func(*events.RunFinishedEvent)
	OnRunError    func(*events.RunErrorEvent)

	OnStepStarted  func(*events.StepStartedEvent)
	OnStepFinished func(*events.StepFinishedEvent)

	OnTextMessageStart   func(*events.TextMessageStartEvent)
	OnTextMessageContent func(*events.TextMessageContentEvent)
	OnTextMessageChunk   func(*events.TextMessageChunkEvent)
	OnTextMessageEnd     func(*events.TextMessageEndEvent)

	OnToolCallStart  func(*events.ToolCallStartEvent)
	OnToolCallArgs   func(*events.ToolCallArgsEvent)
	OnToolCallEnd    func(*events.ToolCallEndEvent)
	OnToolCallResult func(*events.ToolCallResultEvent)

	OnStateSnapshot    func(*events.StateSnapshotEvent)
	OnStateDelta       func(*events.StateDeltaEvent)
	OnMessagesSnapshot func(*events.MessagesSnapshotEvent)

	OnThinkingStart func(*events.ThinkingStartEvent)
	OnThinkingEnd   func(*events.ThinkingEndEvent)

	OnRaw    func(*events.RawEvent)
	OnCustom func(*events.CustomEvent)

	// OnRunFailed fires when the run terminated with an error.
	OnRunFailed func(error)

	// OnRunFinalized fires when the run completed cleanly or was cancelled.
	OnRunFinalized func()
}

// Dispatch routes one event to the matching typed hook and then to OnEvent
func (s *Subscriber) Dispatch(event events.Event) {
	switch e := event.(type) {
	case *events.RunStartedEvent:
		if s.OnRunStarted != nil {
			s.OnRunStarted(e)
		}
	case *events.RunFinishedEvent:
		if s.OnRunFinished != nil {
			s.OnRunFinished(e)
		}
	case *events.RunErrorEvent:
		if s.OnRunError != nil {
			s.OnRunError(e)
		}
	case *events.StepStartedEvent:
		if s.OnStepStarted != nil {
			s.OnStepStarted(e)
		}
	case *events.StepFinishedEvent:
		if s.OnStepFinished != nil {
			s.OnStepFinished(e)
		}
	case *events.TextMessageStartEvent:
		if s.OnTextMessageStart != nil {
			s.OnTextMessageStart(e)
		}
	case *events.TextMessageContentEvent:
		if s.OnTextMessageContent != nil {
			s.OnTextMessageContent(e)
		}
	case *events.TextMessageChunkEvent:
		if s.OnTextMessageChunk != nil {
			s.OnTextMessageChunk(e)
		}
	case *events.TextMessageEndEvent:
		if s.OnTextMessageEnd != nil {
			s.OnTextMessageEnd(e)
		}
	case *events.ToolCallStartEvent:
		if s.OnToolCallStart != nil {
			s.OnToolCallStart(e)
		}
	case *events.ToolCallArgsEvent:
		if s.OnToolCallArgs != nil {
			s.OnToolCallArgs(e)
		}
	case *events.ToolCallEndEvent:
		if s.OnToolCallEnd != nil {
			s.OnToolCallEnd(e)
		}
	case *events.ToolCallResultEvent:
		if s.OnToolCallResult != nil {
			s.OnToolCallResult(e)
		}
	case *events.StateSnapshotEvent:
		if s.OnStateSnapshot != nil {
			s.OnStateSnapshot(e)
		}
	case *events.StateDeltaEvent:
		if s.OnStateDelta != nil {
			s.OnStateDelta(e)
		}
	case *events.MessagesSnapshotEvent:
		if s.OnMessagesSnapshot != nil {
			s.OnMessagesSnapshot(e)
		}
	case *events.ThinkingStartEvent:
		if s.OnThinkingStart != nil {
			s.OnThinkingStart(e)
		}
	case *events.ThinkingEndEvent:
		if s.OnThinkingEnd != nil {
			s.OnThinkingEnd(e)
		}
	case *events.RawEvent:
		if s.OnRaw != nil {
			s.OnRaw(e)
		}
	case *events.CustomEvent:
		if s.OnCustom != nil {
			s.OnCustom(e)
		}
	}

	if s.OnEvent != nil {
		s.OnEvent(event)
	}
}

// Pump consumes a subscription to completion, dispatching every delivered
// event in order and then firing the single terminal callback. It blocks
// until the subscription terminates. Once cancellation is observed, no
// further hooks are dispatched; the terminal callback still fires.
func (s *Subscriber) Pump(sub *Subscription) {
	for event := range sub.Events() {
		if sub.Cancelled() {
			break
		}
		s.Dispatch(event)
	}

	if err := sub.Err(); err != nil {
		if s.OnRunFailed != nil {
			s.OnRunFailed(err)
		}
		return
	}

	if s.OnRunFinalized != nil {
		s.OnRunFinalized()
	}
}
