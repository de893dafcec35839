package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/agentwire/go-sdk/pkg/core"
	"github.com/agentwire/go-sdk/pkg/core/events"
	"github.com/agentwire/go-sdk/pkg/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo echo agent at POST /agents/echo",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.New(server.Config{
				Address: addr,
				Logger:  logrus.StandardLogger(),
			})
			srv.RegisterAgent("echo", server.AgentFunc(echoAgent))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// echoAgent streams the latest user message back one word at a time
func echoAgent(ctx context.Context, input *core.RunAgentInput, emitter *server.Emitter) error {
	if err := emitter.StartRun(); err != nil {
		return err
	}

	reply := "Hello from the echo agent."
	for i := len(input.Messages) - 1; i >= 0; i-- {
		msg := input.Messages[i]
		if msg.Role == events.RoleUser && msg.Content != nil {
			reply = *msg.Content
			break
		}
	}

	messageID := events.GenerateMessageID()
	if err := emitter.Emit(events.NewTextMessageStartEvent(messageID, events.WithRole(events.RoleAssistant))); err != nil {
		return err
	}

	for i, word := range strings.Fields(reply) {
		if err := ctx.Err(); err != nil {
			return err
		}
		delta := word
		if i > 0 {
			delta = " " + word
		}
		if err := emitter.Emit(events.NewTextMessageContentEvent(messageID, delta)); err != nil {
			return err
		}
	}

	if err := emitter.Emit(events.NewTextMessageEndEvent(messageID)); err != nil {
		return err
	}

	return emitter.FinishRun(events.WithResult(map[string]any{
		"echoed": fmt.Sprintf("%d bytes", len(reply)),
	}))
}
