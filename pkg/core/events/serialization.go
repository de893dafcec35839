package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Decode failure categories. DecodeError wraps one of these sentinels so
// callers can distinguish unreadable frames from recognized-but-invalid ones
// with errors.Is.
var (
	// ErrMalformedFrame indicates a payload that is not well-formed JSON or
	// lacks the type discriminator entirely.
	ErrMalformedFrame = errors.New("malformed event frame")

	// ErrInvalidVariant indicates a recognized discriminator whose required
	// fields are missing or mistyped.
	ErrInvalidVariant = errors.New("invalid event variant")
)

// DecodeError describes a failure to decode a wire frame into an Event.
type DecodeError struct {
	EventType EventType // recognized discriminator, if any
	Field     string    // offending field, when known
	Err       error
}

func (e *DecodeError) Error() string {
	switch {
	case e.EventType != "" && e.Field != "":
		return fmt.Sprintf("decode %s: field %s: %v", e.EventType, e.Field, e.Err)
	case e.EventType != "":
		return fmt.Sprintf("decode %s: %v", e.EventType, e.Err)
	default:
		return fmt.Sprintf("decode event: %v", e.Err)
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EventFromJSON parses an event from JSON data.
//
// The type discriminator is extracted first, without committing to a full
// parse. Unknown discriminators decode to a RawEvent carrying the whole
// payload, so frames from newer producers never fail. Malformed JSON and
// recognized-but-invalid variants return a *DecodeError.
func EventFromJSON(data []byte) (Event, error) {
	var probe struct {
		Type EventType `json:"type"`
	}

	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("%w: %v", ErrMalformedFrame, err)}
	}

	if probe.Type == "" {
		return nil, &DecodeError{Err: fmt.Errorf("%w: missing type discriminator", ErrMalformedFrame)}
	}

	event, ok := eventForType(probe.Type)
	if !ok {
		// Forward compatibility: carry the unrecognized payload through as RAW.
		var payload any
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, &DecodeError{Err: fmt.Errorf("%w: %v", ErrMalformedFrame, err)}
		}
		source := string(probe.Type)
		return NewRawEvent(payload, WithSource(source)), nil
	}

	if err := json.Unmarshal(data, event); err != nil {
		decodeErr := &DecodeError{
			EventType: probe.Type,
			Err:       fmt.Errorf("%w: %v", ErrInvalidVariant, err),
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			decodeErr.Field = typeErr.Field
		}
		return nil, decodeErr
	}

	if err := event.Validate(); err != nil {
		return nil, &DecodeError{
			EventType: probe.Type,
			Err:       fmt.Errorf("%w: %v", ErrInvalidVariant, err),
		}
	}

	return event, nil
}

// eventForType returns an empty concrete event for a known discriminator
func eventForType(eventType EventType) (Event, bool) {
	switch eventType {
	case EventTypeRunStarted:
		return &RunStartedEvent{}, true
	case EventTypeRunFinished:
		return &RunFinishedEvent{}, true
	case EventTypeRunError:
		return &RunErrorEvent{}, true
	case EventTypeStepStarted:
		return &StepStartedEvent{}, true
	case EventTypeStepFinished:
		return &StepFinishedEvent{}, true
	case EventTypeTextMessageStart:
		return &TextMessageStartEvent{}, true
	case EventTypeTextMessageContent:
		return &TextMessageContentEvent{}, true
	case EventTypeTextMessageChunk:
		return &TextMessageChunkEvent{}, true
	case EventTypeTextMessageEnd:
		return &TextMessageEndEvent{}, true
	case EventTypeToolCallStart:
		return &ToolCallStartEvent{}, true
	case EventTypeToolCallArgs:
		return &ToolCallArgsEvent{}, true
	case EventTypeToolCallEnd:
		return &ToolCallEndEvent{}, true
	case EventTypeToolCallResult:
		return &ToolCallResultEvent{}, true
	case EventTypeStateSnapshot:
		return &StateSnapshotEvent{}, true
	case EventTypeStateDelta:
		return &StateDeltaEvent{}, true
	case EventTypeMessagesSnapshot:
		return &MessagesSnapshotEvent{}, true
	case EventTypeThinkingStart:
		return &ThinkingStartEvent{}, true
	case EventTypeThinkingEnd:
		return &ThinkingEndEvent{}, true
	case EventTypeThinkingTextMessageStart:
		return &ThinkingTextMessageStartEvent{}, true
	case EventTypeThinkingTextMessageContent:
		return &ThinkingTextMessageContentEvent{}, true
	case EventTypeThinkingTextMessageEnd:
		return &ThinkingTextMessageEndEvent{}, true
	case EventTypeRaw:
		return &RawEvent{}, true
	case EventTypeCustom:
		return &CustomEvent{}, true
	default:
		return nil, false
	}
}

// EventToJSON serializes any event to its wire form. It is the inverse of
// EventFromJSON: decoding the output yields a value equal to the input
// (JSON field order aside).
func EventToJSON(event Event) ([]byte, error) {
	if event == nil {
		return nil, fmt.Errorf("event cannot be nil")
	}
	return event.ToJSON()
}
