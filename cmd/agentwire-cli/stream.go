package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/agentwire/go-sdk/pkg/client"
	"github.com/agentwire/go-sdk/pkg/core"
	"github.com/agentwire/go-sdk/pkg/core/events"
	"github.com/agentwire/go-sdk/pkg/stream"
)

func newStreamCmd() *cobra.Command {
	var endpoint string
	var apiKey string

	cmd := &cobra.Command{
		Use:   "stream [prompt...]",
		Short: "Run a remote agent and print its event stream",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(client.Config{
				Endpoint: endpoint,
				APIKey:   apiKey,
				Logger:   logrus.StandardLogger(),
			})
			if err != nil {
				return err
			}

			prompt := strings.Join(args, " ")
			input := &core.RunAgentInput{
				ThreadID: events.GenerateThreadID(),
				RunID:    events.GenerateRunID(),
				Messages: []events.Message{
					{
						ID:      events.GenerateMessageID(),
						Role:    events.RoleUser,
						Content: &prompt,
					},
				},
			}

			sub, err := c.Run(cmd.Context(), input)
			if err != nil {
				return err
			}

			// Abort the run if the command context ends first.
			go func() {
				<-cmd.Context().Done()
				sub.Cancel()
			}()

			return printRun(cmd.OutOrStdout(), sub)
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "http://localhost:8080/agents/echo", "agent run endpoint")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key sent with the request")
	return cmd
}

func printRun(out io.Writer, sub *stream.Subscription) error {
	var runErr error

	subscriber := &stream.Subscriber{
		OnTextMessageContent: func(e *events.TextMessageContentEvent) {
			fmt.Fprint(out, e.Delta)
		},
		OnTextMessageEnd: func(e *events.TextMessageEndEvent) {
			fmt.Fprintln(out)
		},
		OnToolCallStart: func(e *events.ToolCallStartEvent) {
			fmt.Fprintf(out, "[tool call: %s]\n", e.ToolCallName)
		},
		OnToolCallResult: func(e *events.ToolCallResultEvent) {
			fmt.Fprintf(out, "[tool result: %s]\n", e.Content)
		},
		OnRunError: func(e *events.RunErrorEvent) {
			fmt.Fprintf(out, "[run error: %s]\n", e.Message)
		},
		OnRunFailed: func(err error) {
			runErr = err
		},
	}

	subscriber.Pump(sub)
	return runErr
}
