package sse

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentwire/go-sdk/pkg/core/events"
)

// chunkReader returns its payload in fixed-size slices to simulate frames
// split across network reads.
type chunkReader struct {
	data  []byte
	chunk int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.chunk
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func TestWriterFrameFormat(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter()

	event := events.NewTextMessageContentEvent("msg-1", "hello")
	require.NoError(t, writer.WriteEvent(context.Background(), &buf, event))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "data: "), "frame must start with the data field")
	assert.True(t, strings.HasSuffix(out, "\n\n"), "frame must end with a blank line")
	assert.Equal(t, 1, strings.Count(out, "\n\n"), "exactly one frame")

	payload := strings.TrimSuffix(strings.TrimPrefix(out, "data: "), "\n\n")
	decoded, err := events.EventFromJSON([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, events.EventTypeTextMessageContent, decoded.Type())
}

func TestWriterRejectsNil(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter()

	assert.Error(t, writer.WriteEvent(context.Background(), &buf, nil))
	assert.Error(t, writer.WriteEvent(context.Background(), nil, events.NewTextMessageEndEvent("msg-1")))
}

func TestWriterHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := NewWriter().WriteEvent(ctx, &buf, events.NewTextMessageEndEvent("msg-1"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestReaderReassemblesSplitFrames(t *testing.T) {
	var wire bytes.Buffer
	writer := NewWriter()
	ctx := context.Background()

	sent := []events.Event{
		events.NewRunStartedEvent("thread-1", "run-1"),
		events.NewTextMessageStartEvent("msg-1", events.WithRole("assistant")),
		events.NewTextMessageContentEvent("msg-1", "split across reads"),
		events.NewTextMessageEndEvent("msg-1"),
		events.NewRunFinishedEvent("thread-1", "run-1"),
	}
	for _, ev := range sent {
		require.NoError(t, writer.WriteEvent(ctx, &wire, ev))
	}

	// Tiny read chunks force every frame boundary to land mid-read.
	for _, chunk := range []int{1, 3, 7} {
		decoder := NewDecoder(&chunkReader{data: append([]byte(nil), wire.Bytes()...), chunk: chunk})

		var got []events.EventType
		for {
			event, err := decoder.Decode()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			got = append(got, event.Type())
		}

		require.Len(t, got, len(sent), "chunk size %d", chunk)
		for i, ev := range sent {
			assert.Equal(t, ev.Type(), got[i])
		}
	}
}

func TestReaderSkipsCommentsAndUnknownFields(t *testing.T) {
	input := ": keep-alive\n" +
		"id: 7\n" +
		"event: message\n" +
		"data: {\"type\":\"TEXT_MESSAGE_END\",\"messageId\":\"msg-1\"}\n" +
		"\n"

	reader := NewReader(strings.NewReader(input))
	payload, err := reader.Next()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"TEXT_MESSAGE_END","messageId":"msg-1"}`, string(payload))

	_, err = reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderDiscardsIncompleteTrailingFrame(t *testing.T) {
	input := "data: {\"type\":\"TEXT_MESSAGE_END\",\"messageId\":\"msg-1\"}\n\n" +
		"data: {\"type\":\"TEXT_MESSAGE_END\"" // no terminator

	reader := NewReader(strings.NewReader(input))

	payload, err := reader.Next()
	require.NoError(t, err)
	assert.Contains(t, string(payload), "msg-1")

	_, err = reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoderDropsUndecodableFrames(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	input := "data: {not json}\n\n" +
		"data: {\"type\":\"TEXT_MESSAGE_CONTENT\",\"messageId\":\"msg-1\",\"delta\":42}\n\n" +
		"data: {\"type\":\"TEXT_MESSAGE_END\",\"messageId\":\"msg-1\"}\n\n"

	decoder := NewDecoder(strings.NewReader(input)).WithLogger(logger)

	event, err := decoder.Decode()
	require.NoError(t, err, "bad frames must be dropped, not terminate the stream")
	assert.Equal(t, events.EventTypeTextMessageEnd, event.Type())

	_, err = decoder.Decode()
	assert.ErrorIs(t, err, io.EOF)
}
