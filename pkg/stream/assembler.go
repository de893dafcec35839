package stream

import (
	"strings"
	"sync"

	"github.com/agentwire/go-sdk/pkg/core/events"
)

// pendingMessage accumulates text deltas for one open message
type pendingMessage struct {
	role    string
	content strings.Builder
}

// pendingToolCall accumulates argument deltas for one open tool call
type pendingToolCall struct {
	name            string
	parentMessageID string
	args            strings.Builder
}

// MessageAssembler folds streaming events into the conversation they
// describe: text deltas concatenate in arrival order into messages, tool
// call argument deltas into tool calls, and MESSAGES_SNAPSHOT replaces the
// whole transcript. Events outside the message domain are ignored, so the
// assembler can observe a full run stream unfiltered.
type MessageAssembler struct {
	mu        sync.Mutex
	messages  []events.Message
	open      map[string]*pendingMessage
	openCalls map[string]*pendingToolCall
}

// NewMessageAssembler creates an empty assembler
func NewMessageAssembler() *MessageAssembler {
	return &MessageAssembler{
		open:      make(map[string]*pendingMessage),
		openCalls: make(map[string]*pendingToolCall),
	}
}

// Observe folds one event into the transcript
func (a *MessageAssembler) Observe(event events.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch e := event.(type) {
	case *events.TextMessageStartEvent:
		pending := &pendingMessage{role: events.RoleAssistant}
		if e.Role != nil {
			pending.role = *e.Role
		}
		a.open[e.MessageID] = pending

	case *events.TextMessageContentEvent:
		if pending, ok := a.open[e.MessageID]; ok {
			pending.content.WriteString(e.Delta)
		}

	case *events.TextMessageChunkEvent:
		// Chunks carry their own identity and may arrive without an
		// explicit start.
		pending, ok := a.open[e.MessageID]
		if !ok {
			pending = &pendingMessage{role: events.RoleAssistant}
			if e.Role != nil {
				pending.role = *e.Role
			}
			a.open[e.MessageID] = pending
		}
		pending.content.WriteString(e.Delta)

	case *events.TextMessageEndEvent:
		a.finalizeMessage(e.MessageID)

	case *events.ToolCallStartEvent:
		pending := &pendingToolCall{name: e.ToolCallName}
		if e.ParentMessageID != nil {
			pending.parentMessageID = *e.ParentMessageID
		}
		a.openCalls[e.ToolCallID] = pending

	case *events.ToolCallArgsEvent:
		if pending, ok := a.openCalls[e.ToolCallID]; ok {
			pending.args.WriteString(e.Delta)
		}

	case *events.ToolCallEndEvent:
		a.finalizeToolCall(e.ToolCallID)

	case *events.ToolCallResultEvent:
		role := events.RoleTool
		if e.Role != nil && *e.Role != "" {
			role = *e.Role
		}
		content := e.Content
		toolCallID := e.ToolCallID
		a.messages = append(a.messages, events.Message{
			ID:         e.MessageID,
			Role:       role,
			Content:    &content,
			ToolCallID: &toolCallID,
		})

	case *events.MessagesSnapshotEvent:
		a.messages = append([]events.Message(nil), e.Messages...)
		a.open = make(map[string]*pendingMessage)
		a.openCalls = make(map[string]*pendingToolCall)
	}
}

func (a *MessageAssembler) finalizeMessage(messageID string) {
	pending, ok := a.open[messageID]
	if !ok {
		return
	}
	delete(a.open, messageID)

	content := pending.content.String()
	a.messages = append(a.messages, events.Message{
		ID:      messageID,
		Role:    pending.role,
		Content: &content,
	})
}

func (a *MessageAssembler) finalizeToolCall(toolCallID string) {
	pending, ok := a.openCalls[toolCallID]
	if !ok {
		return
	}
	delete(a.openCalls, toolCallID)

	call := events.ToolCall{
		ID:   toolCallID,
		Type: "function",
		Function: events.Function{
			Name:      pending.name,
			Arguments: pending.args.String(),
		},
	}

	// Attach to the parent assistant message when it is already in the
	// transcript, otherwise record a standalone assistant message carrying
	// just the call.
	if pending.parentMessageID != "" {
		for i := range a.messages {
			if a.messages[i].ID == pending.parentMessageID {
				a.messages[i].ToolCalls = append(a.messages[i].ToolCalls, call)
				return
			}
		}
	}

	id := pending.parentMessageID
	if id == "" {
		id = toolCallID
	}
	a.messages = append(a.messages, events.Message{
		ID:        id,
		Role:      events.RoleAssistant,
		ToolCalls: []events.ToolCall{call},
	})
}

// Messages returns a copy of the transcript assembled so far. Messages
// still streaming (no end event yet) are not included.
func (a *MessageAssembler) Messages() []events.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]events.Message(nil), a.messages...)
}

// OpenMessageIDs reports the ids of messages still streaming
func (a *MessageAssembler) OpenMessageIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]string, 0, len(a.open))
	for id := range a.open {
		ids = append(ids, id)
	}
	return ids
}
