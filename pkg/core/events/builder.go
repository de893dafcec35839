package events

import (
	"fmt"
	"time"
)

// EventBuilder provides a fluent interface for building events
type EventBuilder struct {
	eventType EventType
	timestamp *int64

	// Common fields
	threadID   string
	runID      string
	messageID  string
	toolCallID string
	stepName   string

	// Message fields
	role  *string
	delta string

	// Tool fields
	toolCallName    string
	parentMessageID *string
	resultContent   string

	// Run fields
	result any

	// Error fields
	errorMessage string
	errorCode    *string

	// State fields
	snapshot any
	deltaOps []JSONPatchOperation
	messages []Message

	// Custom fields
	customName  string
	customValue any
	rawEvent    any
	rawSource   *string

	// Auto-generation flags
	autoGenerateIDs bool
}

// NewEventBuilder creates a new event builder
func NewEventBuilder() *EventBuilder {
	return &EventBuilder{}
}

// RunStarted configures the builder for a RUN_STARTED event
func (b *EventBuilder) RunStarted() *EventBuilder {
	b.eventType = EventTypeRunStarted
	return b
}

// RunFinished configures the builder for a RUN_FINISHED event
func (b *EventBuilder) RunFinished() *EventBuilder {
	b.eventType = EventTypeRunFinished
	return b
}

// RunError configures the builder for a RUN_ERROR event
func (b *EventBuilder) RunError() *EventBuilder {
	b.eventType = EventTypeRunError
	return b
}

// StepStarted configures the builder for a STEP_STARTED event
func (b *EventBuilder) StepStarted() *EventBuilder {
	b.eventType = EventTypeStepStarted
	return b
}

// StepFinished configures the builder for a STEP_FINISHED event
func (b *EventBuilder) StepFinished() *EventBuilder {
	b.eventType = EventTypeStepFinished
	return b
}

// TextMessageStart configures the builder for a TEXT_MESSAGE_START event
func (b *EventBuilder) TextMessageStart() *EventBuilder {
	b.eventType = EventTypeTextMessageStart
	return b
}

// TextMessageContent configures the builder for a TEXT_MESSAGE_CONTENT event
func (b *EventBuilder) TextMessageContent() *EventBuilder {
	b.eventType = EventTypeTextMessageContent
	return b
}

// TextMessageEnd configures the builder for a TEXT_MESSAGE_END event
func (b *EventBuilder) TextMessageEnd() *EventBuilder {
	b.eventType = EventTypeTextMessageEnd
	return b
}

// ToolCallStart configures the builder for a TOOL_CALL_START event
func (b *EventBuilder) ToolCallStart() *EventBuilder {
	b.eventType = EventTypeToolCallStart
	return b
}

// ToolCallArgs configures the builder for a TOOL_CALL_ARGS event
func (b *EventBuilder) ToolCallArgs() *EventBuilder {
	b.eventType = EventTypeToolCallArgs
	return b
}

// ToolCallEnd configures the builder for a TOOL_CALL_END event
func (b *EventBuilder) ToolCallEnd() *EventBuilder {
	b.eventType = EventTypeToolCallEnd
	return b
}

// ToolCallResult configures the builder for a TOOL_CALL_RESULT event
func (b *EventBuilder) ToolCallResult() *EventBuilder {
	b.eventType = EventTypeToolCallResult
	return b
}

// StateSnapshot configures the builder for a STATE_SNAPSHOT event
func (b *EventBuilder) StateSnapshot() *EventBuilder {
	b.eventType = EventTypeStateSnapshot
	return b
}

// StateDelta configures the builder for a STATE_DELTA event
func (b *EventBuilder) StateDelta() *EventBuilder {
	b.eventType = EventTypeStateDelta
	return b
}

// MessagesSnapshot configures the builder for a MESSAGES_SNAPSHOT event
func (b *EventBuilder) MessagesSnapshot() *EventBuilder {
	b.eventType = EventTypeMessagesSnapshot
	return b
}

// Raw configures the builder for a RAW event
func (b *EventBuilder) Raw() *EventBuilder {
	b.eventType = EventTypeRaw
	return b
}

// Custom configures the builder for a CUSTOM event
func (b *EventBuilder) Custom() *EventBuilder {
	b.eventType = EventTypeCustom
	return b
}

// WithThreadID sets the thread ID
func (b *EventBuilder) WithThreadID(threadID string) *EventBuilder {
	b.threadID = threadID
	return b
}

// WithRunID sets the run ID
func (b *EventBuilder) WithRunID(runID string) *EventBuilder {
	b.runID = runID
	return b
}

// WithMessageID sets the message ID
func (b *EventBuilder) WithMessageID(messageID string) *EventBuilder {
	b.messageID = messageID
	return b
}

// WithToolCallID sets the tool call ID
func (b *EventBuilder) WithToolCallID(toolCallID string) *EventBuilder {
	b.toolCallID = toolCallID
	return b
}

// WithStepName sets the step name
func (b *EventBuilder) WithStepName(stepName string) *EventBuilder {
	b.stepName = stepName
	return b
}

// WithRole sets the message role
func (b *EventBuilder) WithRole(role string) *EventBuilder {
	b.role = &role
	return b
}

// WithDelta sets the content delta
func (b *EventBuilder) WithDelta(delta string) *EventBuilder {
	b.delta = delta
	return b
}

// WithToolCallName sets the tool call name
func (b *EventBuilder) WithToolCallName(name string) *EventBuilder {
	b.toolCallName = name
	return b
}

// WithParentMessageID sets the parent message ID
func (b *EventBuilder) WithParentMessageID(parentMessageID string) *EventBuilder {
	b.parentMessageID = &parentMessageID
	return b
}

// WithResultContent sets the tool call result content
func (b *EventBuilder) WithResultContent(content string) *EventBuilder {
	b.resultContent = content
	return b
}

// WithRunResult sets the result value carried by a RUN_FINISHED event
func (b *EventBuilder) WithRunResult(result any) *EventBuilder {
	b.result = result
	return b
}

// WithErrorMessage sets the error message
func (b *EventBuilder) WithErrorMessage(message string) *EventBuilder {
	b.errorMessage = message
	return b
}

// WithErrorCode sets the error code
func (b *EventBuilder) WithErrorCode(code string) *EventBuilder {
	b.errorCode = &code
	return b
}

// WithSnapshot sets the state snapshot value
func (b *EventBuilder) WithSnapshot(snapshot any) *EventBuilder {
	b.snapshot = snapshot
	return b
}

// WithDeltaOperations sets the JSON patch operations
func (b *EventBuilder) WithDeltaOperations(ops []JSONPatchOperation) *EventBuilder {
	b.deltaOps = ops
	return b
}

// AddDeltaOperation appends a single JSON patch operation
func (b *EventBuilder) AddDeltaOperation(op, path string, value any) *EventBuilder {
	b.deltaOps = append(b.deltaOps, JSONPatchOperation{Op: op, Path: path, Value: value})
	return b
}

// WithMessages sets the message list for a messages snapshot
func (b *EventBuilder) WithMessages(messages []Message) *EventBuilder {
	b.messages = messages
	return b
}

// WithCustomName sets the custom event name
func (b *EventBuilder) WithCustomName(name string) *EventBuilder {
	b.customName = name
	return b
}

// WithCustomValue sets the custom event value
func (b *EventBuilder) WithCustomValue(value any) *EventBuilder {
	b.customValue = value
	return b
}

// WithRawEvent sets the raw event payload
func (b *EventBuilder) WithRawEvent(event any) *EventBuilder {
	b.rawEvent = event
	return b
}

// WithRawSource sets the raw event source
func (b *EventBuilder) WithRawSource(source string) *EventBuilder {
	b.rawSource = &source
	return b
}

// WithTimestamp sets an explicit timestamp (Unix milliseconds)
func (b *EventBuilder) WithTimestamp(timestamp int64) *EventBuilder {
	b.timestamp = &timestamp
	return b
}

// WithCurrentTimestamp sets the timestamp to now
func (b *EventBuilder) WithCurrentTimestamp() *EventBuilder {
	now := time.Now().UnixMilli()
	b.timestamp = &now
	return b
}

// WithAutoGenerateIDs enables automatic ID generation for empty ID fields
func (b *EventBuilder) WithAutoGenerateIDs() *EventBuilder {
	b.autoGenerateIDs = true
	return b
}

// Build creates the event based on the configured type and fields
func (b *EventBuilder) Build() (Event, error) {
	if b.eventType == "" {
		return nil, fmt.Errorf("event type must be specified before building")
	}

	if b.autoGenerateIDs {
		b.fillGeneratedIDs()
	}

	var event Event
	switch b.eventType {
	case EventTypeRunStarted:
		event = &RunStartedEvent{
			BaseEvent: b.baseEvent(),
			ThreadID:  b.threadID,
			RunID:     b.runID,
		}
	case EventTypeRunFinished:
		event = &RunFinishedEvent{
			BaseEvent: b.baseEvent(),
			ThreadID:  b.threadID,
			RunID:     b.runID,
			Result:    b.result,
		}
	case EventTypeRunError:
		event = &RunErrorEvent{
			BaseEvent: b.baseEvent(),
			Message:   b.errorMessage,
			Code:      b.errorCode,
			RunID:     b.runID,
		}
	case EventTypeStepStarted:
		event = &StepStartedEvent{
			BaseEvent: b.baseEvent(),
			StepName:  b.stepName,
		}
	case EventTypeStepFinished:
		event = &StepFinishedEvent{
			BaseEvent: b.baseEvent(),
			StepName:  b.stepName,
		}
	case EventTypeTextMessageStart:
		event = &TextMessageStartEvent{
			BaseEvent: b.baseEvent(),
			MessageID: b.messageID,
			Role:      b.role,
		}
	case EventTypeTextMessageContent:
		event = &TextMessageContentEvent{
			BaseEvent: b.baseEvent(),
			MessageID: b.messageID,
			Delta:     b.delta,
		}
	case EventTypeTextMessageEnd:
		event = &TextMessageEndEvent{
			BaseEvent: b.baseEvent(),
			MessageID: b.messageID,
		}
	case EventTypeToolCallStart:
		event = &ToolCallStartEvent{
			BaseEvent:       b.baseEvent(),
			ToolCallID:      b.toolCallID,
			ToolCallName:    b.toolCallName,
			ParentMessageID: b.parentMessageID,
		}
	case EventTypeToolCallArgs:
		event = &ToolCallArgsEvent{
			BaseEvent:  b.baseEvent(),
			ToolCallID: b.toolCallID,
			Delta:      b.delta,
		}
	case EventTypeToolCallEnd:
		event = &ToolCallEndEvent{
			BaseEvent:  b.baseEvent(),
			ToolCallID: b.toolCallID,
		}
	case EventTypeToolCallResult:
		event = &ToolCallResultEvent{
			BaseEvent:  b.baseEvent(),
			MessageID:  b.messageID,
			ToolCallID: b.toolCallID,
			Content:    b.resultContent,
			Role:       b.role,
		}
	case EventTypeStateSnapshot:
		event = &StateSnapshotEvent{
			BaseEvent: b.baseEvent(),
			Snapshot:  b.snapshot,
		}
	case EventTypeStateDelta:
		event = &StateDeltaEvent{
			BaseEvent: b.baseEvent(),
			Delta:     b.deltaOps,
		}
	case EventTypeMessagesSnapshot:
		event = &MessagesSnapshotEvent{
			BaseEvent: b.baseEvent(),
			Messages:  b.messages,
		}
	case EventTypeRaw:
		event = &RawEvent{
			BaseEvent: b.baseEvent(),
			Event:     b.rawEvent,
			Source:    b.rawSource,
		}
	case EventTypeCustom:
		event = &CustomEvent{
			BaseEvent: b.baseEvent(),
			Name:      b.customName,
			Value:     b.customValue,
		}
	default:
		return nil, fmt.Errorf("unsupported event type: %s", b.eventType)
	}

	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("built event failed validation: %w", err)
	}

	return event, nil
}

func (b *EventBuilder) baseEvent() *BaseEvent {
	base := NewBaseEvent(b.eventType)
	if b.timestamp != nil {
		base.TimestampMs = b.timestamp
	}
	return base
}

func (b *EventBuilder) fillGeneratedIDs() {
	switch b.eventType {
	case EventTypeRunStarted, EventTypeRunFinished:
		if b.runID == "" {
			b.runID = GenerateRunID()
		}
		if b.threadID == "" {
			b.threadID = GenerateThreadID()
		}
	case EventTypeTextMessageStart, EventTypeTextMessageContent, EventTypeTextMessageEnd:
		if b.messageID == "" {
			b.messageID = GenerateMessageID()
		}
	case EventTypeToolCallStart, EventTypeToolCallArgs, EventTypeToolCallEnd:
		if b.toolCallID == "" {
			b.toolCallID = GenerateToolCallID()
		}
	}
}
