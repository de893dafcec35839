package core

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrAgentNotFound = errors.New("agent not found")
	ErrRunConflict   = errors.New("run already in progress")
	ErrStreamClosed  = errors.New("stream closed")
)

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value any
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field %s (value: %v): %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// AgentError represents agent-specific errors
type AgentError struct {
	AgentName string
	RunID     string
	Err       error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent %s failed during run %s: %v", e.AgentName, e.RunID, e.Err)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

// TransportError represents a failure of the byte stream carrying events:
// connection drops, timeouts, unexpected HTTP statuses. Transport errors
// always terminate the affected run.
type TransportError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error in %s (endpoint: %s): %v", e.Operation, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
