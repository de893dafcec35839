package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentwire/go-sdk/pkg/core/events"
	"github.com/agentwire/go-sdk/pkg/encoding/ndjson"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Lint an NDJSON event stream against the run lifecycle rules",
		Long: `Reads one JSON event per line (from a file or stdin), decodes each
through the event codec and replays the stream through the run lifecycle
state machine. Lifecycle violations and unbalanced start/end pairs are
reported; the command fails if any are found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				input = f
			}
			return runValidate(cmd.OutOrStdout(), input)
		},
	}
	return cmd
}

func runValidate(out io.Writer, input io.Reader) error {
	decoder := ndjson.NewDecoder(input)
	tracker := events.NewRunTracker()

	total := 0
	violations := 0

	for {
		event, err := decoder.Decode()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("stream read failed: %w", err)
		}

		total++
		if err := tracker.Observe(event); err != nil {
			violations++
			fmt.Fprintf(out, "event %d (%s): %v\n", total, event.Type(), err)
		}
	}

	if open := tracker.OpenStreams(); len(open) > 0 {
		violations += len(open)
		for _, id := range open {
			fmt.Fprintf(out, "unclosed stream: %s\n", id)
		}
	}

	fmt.Fprintf(out, "%d events, phase %s, %d anomalies, %d violations\n",
		total, tracker.Phase(), tracker.Anomalies(), violations)

	if violations > 0 {
		return fmt.Errorf("stream failed validation with %d violations", violations)
	}
	return nil
}
