// Package sse implements Server-Sent Events framing for AgentWire event
// streams: `data: <json>` lines terminated by a blank line, one event per
// frame.
package sse

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/agentwire/go-sdk/pkg/core/events"
)

// Writer writes events as SSE frames. The encoder side adds only the frame
// boundary markers; the body is exactly the event codec's output.
type Writer struct {
	logger *logrus.Logger
}

// NewWriter creates a new SSE writer
func NewWriter() *Writer {
	return &Writer{
		logger: logrus.StandardLogger(),
	}
}

// WithLogger sets a custom logger for the writer
func (w *Writer) WithLogger(logger *logrus.Logger) *Writer {
	w.logger = logger
	return w
}

// WriteEvent writes a single event as an SSE frame and flushes the
// destination if it supports flushing.
func (w *Writer) WriteEvent(ctx context.Context, dst io.Writer, event events.Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	if dst == nil {
		return fmt.Errorf("writer cannot be nil")
	}

	data, err := event.ToJSON()
	if err != nil {
		w.logger.WithError(err).WithField("event_type", event.Type()).Error("Failed to encode event")
		return fmt.Errorf("event encoding failed: %w", err)
	}

	return w.WriteBytes(ctx, dst, data)
}

// WriteBytes writes pre-encoded event JSON as an SSE frame
func (w *Writer) WriteBytes(ctx context.Context, dst io.Writer, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := dst.Write([]byte(frame(data))); err != nil {
		w.logger.WithError(err).Error("Failed to write SSE frame")
		return fmt.Errorf("SSE write failed: %w", err)
	}

	return flush(dst)
}

// frame builds a `data: <json>\n\n` frame. Newlines inside the JSON are
// escaped so the payload stays a single data line.
func frame(data []byte) string {
	escaped := strings.ReplaceAll(string(data), "\n", "\\n")
	escaped = strings.ReplaceAll(escaped, "\r", "\\r")

	var b strings.Builder
	b.WriteString("data: ")
	b.WriteString(escaped)
	b.WriteString("\n\n")
	return b.String()
}

// errFlusher is implemented by writers whose flush can fail
type errFlusher interface {
	Flush() error
}

func flush(dst io.Writer) error {
	switch f := dst.(type) {
	case errFlusher:
		if err := f.Flush(); err != nil {
			return fmt.Errorf("SSE flush failed: %w", err)
		}
	case http.Flusher:
		f.Flush()
	}
	return nil
}
