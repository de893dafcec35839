package core

import (
	"encoding/json"
	"fmt"

	"github.com/agentwire/go-sdk/pkg/core/events"
)

// Tool declares a tool available to the agent: a name, a human-readable
// description, and a JSON-Schema-like parameter specification.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"`
}

// Context is one contextual value forwarded to the agent
type Context struct {
	Description string `json:"description"`
	Value       string `json:"value"`
}

// RunAgentInput is the request that starts a run. ThreadID and RunID are
// required and together key idempotency: a backend must not start two
// concurrent runs sharing a RunID. All other fields may be empty.
type RunAgentInput struct {
	ThreadID       string           `json:"threadId"`
	RunID          string           `json:"runId"`
	State          json.RawMessage  `json:"state,omitempty"`
	Messages       []events.Message `json:"messages"`
	Tools          []Tool           `json:"tools"`
	Context        []Context        `json:"context"`
	ForwardedProps json.RawMessage  `json:"forwardedProps,omitempty"`
}

// Validate validates the run input
func (in *RunAgentInput) Validate() error {
	if in.ThreadID == "" {
		return fmt.Errorf("RunAgentInput validation failed: threadId field is required")
	}

	if in.RunID == "" {
		return fmt.Errorf("RunAgentInput validation failed: runId field is required")
	}

	for i, msg := range in.Messages {
		if err := events.ValidateMessage(msg); err != nil {
			return fmt.Errorf("RunAgentInput validation failed: invalid message at index %d: %w", i, err)
		}
	}

	for i, tool := range in.Tools {
		if tool.Name == "" {
			return fmt.Errorf("RunAgentInput validation failed: tool at index %d has no name", i)
		}
	}

	return nil
}
