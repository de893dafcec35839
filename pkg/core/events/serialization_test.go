package events

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestEventFromJSONRoundTrip(t *testing.T) {
	role := "assistant"
	tests := []struct {
		name  string
		event Event
	}{
		{"run started", NewRunStartedEvent("thread-1", "run-1")},
		{"run finished with result", NewRunFinishedEvent("thread-1", "run-1", WithResult("done"))},
		{"run error", NewRunErrorEvent("boom", WithErrorCode("E1"), WithRunID("run-1"))},
		{"step started", NewStepStartedEvent("plan")},
		{"step finished", NewStepFinishedEvent("plan")},
		{"message start", NewTextMessageStartEvent("msg-1", WithRole(role))},
		{"message content", NewTextMessageContentEvent("msg-1", "hello")},
		{"message chunk", NewTextMessageChunkEvent("msg-1", "hel")},
		{"message end", NewTextMessageEndEvent("msg-1")},
		{"tool call start", NewToolCallStartEvent("tool-1", "search", WithParentMessageID("msg-1"))},
		{"tool call args", NewToolCallArgsEvent("tool-1", `{"q":`)},
		{"tool call end", NewToolCallEndEvent("tool-1")},
		{"tool call result", NewToolCallResultEvent("msg-2", "tool-1", "42")},
		{"state snapshot", NewStateSnapshotEvent(map[string]any{"counter": 1})},
		{"state delta", NewStateDeltaEvent([]JSONPatchOperation{{Op: "add", Path: "/x", Value: 1}})},
		{"messages snapshot", NewMessagesSnapshotEvent([]Message{{ID: "msg-1", Role: RoleUser, Content: strPtr("hi")}})},
		{"raw", NewRawEvent(map[string]any{"k": "v"}, WithSource("upstream"))},
		{"custom", NewCustomEvent("trace", WithValue(7.0))},
		{"thinking start", NewThinkingStartEvent(WithTitle("reasoning"))},
		{"thinking end", NewThinkingEndEvent()},
		{"thinking text content", NewThinkingTextMessageContentEvent("hmm")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.event.ToJSON()
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}

			decoded, err := EventFromJSON(data)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if decoded.Type() != tt.event.Type() {
				t.Errorf("type = %s, want %s", decoded.Type(), tt.event.Type())
			}

			reencoded, err := decoded.ToJSON()
			if err != nil {
				t.Fatalf("re-encode failed: %v", err)
			}

			var a, b map[string]any
			if err := json.Unmarshal(data, &a); err != nil {
				t.Fatal(err)
			}
			if err := json.Unmarshal(reencoded, &b); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(a, b) {
				t.Errorf("round trip changed the payload: %s vs %s", data, reencoded)
			}
		})
	}
}

func TestEventFromJSONUnknownType(t *testing.T) {
	payload := []byte(`{"type":"AUDIO_DELTA","messageId":"msg-1","chunk":"base64"}`)

	event, err := EventFromJSON(payload)
	if err != nil {
		t.Fatalf("unknown type must not fail: %v", err)
	}

	raw, ok := event.(*RawEvent)
	if !ok {
		t.Fatalf("got %T, want *RawEvent", event)
	}
	if raw.Source == nil || *raw.Source != "AUDIO_DELTA" {
		t.Errorf("source should carry the unknown discriminator, got %v", raw.Source)
	}

	fields, ok := raw.Event.(map[string]any)
	if !ok {
		t.Fatalf("raw payload type %T", raw.Event)
	}
	if fields["messageId"] != "msg-1" {
		t.Errorf("payload not preserved: %v", fields)
	}
}

func TestEventFromJSONMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"truncated json", `{"type":"RUN_STARTED","threadId":`},
		{"not an object", `[1,2,3]`},
		{"missing discriminator", `{"threadId":"t","runId":"r"}`},
		{"empty discriminator", `{"type":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EventFromJSON([]byte(tt.data))
			if !errors.Is(err, ErrMalformedFrame) {
				t.Errorf("err = %v, want ErrMalformedFrame", err)
			}
		})
	}
}

func TestEventFromJSONInvalidVariant(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantField string
	}{
		{"mistyped field", `{"type":"TEXT_MESSAGE_CONTENT","messageId":"msg-1","delta":42}`, "delta"},
		{"missing required field", `{"type":"RUN_STARTED","threadId":"t"}`, ""},
		{"empty delta", `{"type":"TOOL_CALL_ARGS","toolCallId":"tool-1","delta":""}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EventFromJSON([]byte(tt.data))
			if !errors.Is(err, ErrInvalidVariant) {
				t.Fatalf("err = %v, want ErrInvalidVariant", err)
			}

			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("err type %T, want *DecodeError", err)
			}
			if tt.wantField != "" && decodeErr.Field != tt.wantField {
				t.Errorf("field = %q, want %q", decodeErr.Field, tt.wantField)
			}
		})
	}
}
