package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentwire/go-sdk/pkg/core"
	"github.com/agentwire/go-sdk/pkg/core/events"
	"github.com/agentwire/go-sdk/pkg/encoding/sse"
	"github.com/agentwire/go-sdk/pkg/server"
	"github.com/agentwire/go-sdk/pkg/stream"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	c, err := New(Config{Endpoint: endpoint, Logger: quietLogger()})
	require.NoError(t, err)
	return c
}

func runInput() *core.RunAgentInput {
	prompt := "what is the answer?"
	return &core.RunAgentInput{
		ThreadID: events.GenerateThreadID(),
		RunID:    events.GenerateRunID(),
		Messages: []events.Message{
			{ID: events.GenerateMessageID(), Role: events.RoleUser, Content: &prompt},
		},
	}
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
	}{
		{"empty endpoint", ""},
		{"unsupported scheme", "ftp://example.com/run"},
		{"garbage url", "http://bad url with spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{Endpoint: tt.endpoint})
			require.Error(t, err)

			var configErr *core.ConfigError
			assert.ErrorAs(t, err, &configErr)
		})
	}
}

func TestRunRejectsInvalidInput(t *testing.T) {
	c := newClient(t, "http://localhost:1/agents/echo")

	_, err := c.Run(context.Background(), nil)
	assert.Error(t, err)

	_, err = c.Run(context.Background(), &core.RunAgentInput{})
	assert.Error(t, err, "missing ids must fail before any request is sent")
}

func TestRunEndToEnd(t *testing.T) {
	srv := server.New(server.Config{Logger: quietLogger()})
	srv.RegisterAgent("echo", server.AgentFunc(func(ctx context.Context, input *core.RunAgentInput, emitter *server.Emitter) error {
		if err := emitter.StartRun(); err != nil {
			return err
		}
		messageID := events.GenerateMessageID()
		if err := emitter.Emit(events.NewTextMessageStartEvent(messageID, events.WithRole("assistant"))); err != nil {
			return err
		}
		for _, delta := range []string{"The answer ", "is 42."} {
			if err := emitter.Emit(events.NewTextMessageContentEvent(messageID, delta)); err != nil {
				return err
			}
		}
		if err := emitter.Emit(events.NewTextMessageEndEvent(messageID)); err != nil {
			return err
		}
		return emitter.FinishRun(events.WithResult("ok"))
	}))

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c := newClient(t, ts.URL+"/agents/echo")
	sub, err := c.Run(context.Background(), runInput())
	require.NoError(t, err)

	assembler := stream.NewMessageAssembler()
	var types []events.EventType
	for event := range sub.Events() {
		types = append(types, event.Type())
		assembler.Observe(event)
	}
	require.NoError(t, sub.Err())

	require.NotEmpty(t, types)
	assert.Equal(t, events.EventTypeRunStarted, types[0])
	assert.Equal(t, events.EventTypeRunFinished, types[len(types)-1])

	messages := assembler.Messages()
	require.Len(t, messages, 1)
	require.NotNil(t, messages[0].Content)
	assert.Equal(t, "The answer is 42.", *messages[0].Content)
}

func TestRunSurfacesRunError(t *testing.T) {
	srv := server.New(server.Config{Logger: quietLogger()})
	srv.RegisterAgent("broken", server.AgentFunc(func(ctx context.Context, input *core.RunAgentInput, emitter *server.Emitter) error {
		if err := emitter.StartRun(); err != nil {
			return err
		}
		return emitter.ErrorRun("model refused", events.WithErrorCode("REFUSAL"))
	}))

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c := newClient(t, ts.URL+"/agents/broken")
	sub, err := c.Run(context.Background(), runInput())
	require.NoError(t, err)

	var runErr *events.RunErrorEvent
	for event := range sub.Events() {
		if e, ok := event.(*events.RunErrorEvent); ok {
			runErr = e
		}
	}

	// RUN_ERROR is a protocol-level outcome delivered as an event; the
	// transport itself completed cleanly.
	require.NoError(t, sub.Err())
	require.NotNil(t, runErr)
	assert.Equal(t, "model refused", runErr.Message)
	require.NotNil(t, runErr.Code)
	assert.Equal(t, "REFUSAL", *runErr.Code)
}

func TestRunTransportFailures(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusInternalServerError)
		}))
		defer ts.Close()

		c := newClient(t, ts.URL)
		_, err := c.Run(context.Background(), runInput())
		var transportErr *core.TransportError
		require.ErrorAs(t, err, &transportErr)
	})

	t.Run("conflict maps to ErrRunConflict", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "duplicate", http.StatusConflict)
		}))
		defer ts.Close()

		c := newClient(t, ts.URL)
		_, err := c.Run(context.Background(), runInput())
		assert.ErrorIs(t, err, core.ErrRunConflict)
	})

	t.Run("wrong content type", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"events":[]}`)
		}))
		defer ts.Close()

		c := newClient(t, ts.URL)
		_, err := c.Run(context.Background(), runInput())
		var transportErr *core.TransportError
		require.ErrorAs(t, err, &transportErr)
	})
}

func TestRunStreamEndsWithoutTerminalEvent(t *testing.T) {
	writer := sse.NewWriter()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_ = writer.WriteEvent(r.Context(), w, events.NewRunStartedEvent("t", "r"))
		// Connection drops mid-run: no RUN_FINISHED or RUN_ERROR.
	}))
	defer ts.Close()

	c := newClient(t, ts.URL)
	sub, err := c.Run(context.Background(), runInput())
	require.NoError(t, err)

	for range sub.Events() {
	}

	err = sub.Err()
	require.Error(t, err, "truncated stream must surface a transport error")
	assert.ErrorIs(t, err, core.ErrStreamClosed)
	var transportErr *core.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestRunCancellation(t *testing.T) {
	writer := sse.NewWriter()
	sent := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_ = writer.WriteEvent(r.Context(), w, events.NewRunStartedEvent("t", "r"))
		close(sent)
		// Keep the stream open until the client hangs up.
		<-r.Context().Done()
	}))
	defer ts.Close()

	c := newClient(t, ts.URL)
	sub, err := c.Run(context.Background(), runInput())
	require.NoError(t, err)

	select {
	case <-sent:
	case <-time.After(5 * time.Second):
		t.Fatal("server never sent the first event")
	}

	sub.Cancel()
	sub.Cancel() // idempotent

	select {
	case <-sub.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("subscription never terminated after cancel")
	}

	assert.NoError(t, sub.Err(), "cancellation is not a failure")
	assert.True(t, sub.Cancelled())
}

func TestRunSendsAuth(t *testing.T) {
	tests := []struct {
		name       string
		config     Config
		wantHeader string
		wantValue  string
	}{
		{
			name:       "bearer by default",
			config:     Config{APIKey: "secret"},
			wantHeader: "Authorization",
			wantValue:  "Bearer secret",
		},
		{
			name:       "custom scheme",
			config:     Config{APIKey: "secret", AuthScheme: "Token"},
			wantHeader: "Authorization",
			wantValue:  "Token secret",
		},
		{
			name:       "custom header",
			config:     Config{APIKey: "secret", AuthHeader: "X-API-Key"},
			wantHeader: "X-API-Key",
			wantValue:  "secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			writer := sse.NewWriter()
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get(tt.wantHeader)
				w.Header().Set("Content-Type", "text/event-stream")
				_ = writer.WriteEvent(r.Context(), w, events.NewRunStartedEvent("t", "r"))
				_ = writer.WriteEvent(r.Context(), w, events.NewRunFinishedEvent("t", "r"))
			}))
			defer ts.Close()

			tt.config.Endpoint = ts.URL
			tt.config.Logger = quietLogger()
			c, err := New(tt.config)
			require.NoError(t, err)

			sub, err := c.Run(context.Background(), runInput())
			require.NoError(t, err)
			for range sub.Events() {
			}
			require.NoError(t, sub.Err())

			assert.Equal(t, tt.wantValue, got)
		})
	}
}

func TestRunConnectionRefused(t *testing.T) {
	c := newClient(t, "http://127.0.0.1:1/agents/echo")

	_, err := c.Run(context.Background(), runInput())
	var transportErr *core.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "connect", transportErr.Operation)
	assert.False(t, errors.Is(err, core.ErrRunConflict))
}
